package workbook

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/costplan/backend/internal/implcost"
	"github.com/costplan/backend/internal/model"
)

var createdAt = time.Date(2025, 4, 2, 8, 15, 30, 123456789, time.UTC)

func TestWriteDecode_PreservesPlan(t *testing.T) {
	plan := model.SamplePlan(createdAt)
	salary := model.Amount(50000)
	plan.Implementation[0].Salary = &salary
	plan.Implementation[0].Description = "two contractors"
	require.NoError(t, plan.RenameBusiness("Business B", "Retail"))

	var buf bytes.Buffer
	require.NoError(t, Write(plan, &buf))

	got, rep, err := Decode(&buf)
	require.NoError(t, err)
	assert.Empty(t, rep.Warnings)
	assert.Equal(t, 10, rep.Records)
	assert.Equal(t, 3, rep.Changes)
	assert.Equal(t, 7, rep.Implementation)

	for _, want := range plan.Records {
		r, ok := got.Record(want.ID)
		require.True(t, ok, "record %d", want.ID)
		assert.Equal(t, want.Business, r.Business)
		assert.Equal(t, want.Category(), r.Category())
		assert.Equal(t, want.Functions, r.Functions)
		assert.True(t, want.TotalCost.Equal(r.TotalCost), "record %d total", want.ID)
		assert.True(t, want.CreatedAt.Equal(r.CreatedAt))
		assert.Equal(t, want.Label(), r.Label())
	}

	for _, want := range plan.Changes {
		c, ok := got.Change(want.ID)
		require.True(t, ok)
		assert.Equal(t, want.Type(), c.Type())
		assert.Equal(t, want.Year, c.Year)
		assert.True(t, want.CreatedAt.Equal(c.CreatedAt))
		assert.Equal(t, want.Description, c.Description)
	}
	c7, _ := got.Change(plan.Changes[2].ID)
	assert.Equal(t, model.Onshore, c7.Location.To)

	for _, e := range got.Implementation {
		_, _, ok := got.ChangeByRef(e.Key.ChangeRef)
		assert.True(t, ok, "entry %s has no change", e.Key.ChangeRef)
	}
	first, ok := got.Entry(plan.Implementation[0].Key)
	require.True(t, ok)
	require.NotNil(t, first.Salary)
	assert.True(t, first.Salary.Equal(salary))
	assert.Equal(t, "two contractors", first.Description)
	assert.Equal(t, "[2 1 0 0 0]", toStrings(first.Values))

	for business, rates := range plan.Assumptions {
		for loc, v := range rates.Locations {
			gv, err := got.Assumptions.UnitCost(business, loc)
			require.NoError(t, err)
			assert.True(t, v.Equal(gv))
		}
		for typ, v := range rates.Implementation {
			gv, err := got.Assumptions.ImplementationRate(business, typ)
			require.NoError(t, err)
			assert.True(t, v.Equal(gv))
		}
	}
	assert.Equal(t, "Retail", got.DisplayName("Business B"))
	assert.Equal(t, plan.Functions, got.Functions)
}

func toStrings(v model.YearValues) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = x.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func newFile(t *testing.T, sheets map[string][][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestDecode_TwoSheetLayoutIsTolerant(t *testing.T) {
	buf := newFile(t, map[string][][]any{
		SheetRecords: {
			{"id", "business", "category", "functions", "function_descriptions", "tech_name", "location", "count", "unit_cost", "total_cost", "timestamp"},
			{1, "Business A", "Resource", `["Development"]`, `{"Development":"core"}`, "", "Onshore", "five", "100,000", "", "2025-01-15T10:30:00.123456"},
			{2, "Business A", "Hardware", `["Support"]`},
			{2, "Business A", "Technology", "Support, Testing", "not json", "Pager", "", "", "", "abc"},
			{},
			{3, "Business C", "Resource", `["Ops"]`, "", "", "Onshore", 2, 50000, 100000},
		},
		SheetChanges: {
			{"record_id", "timestamp", "type", "from", "to", "implementation_year", "description"},
			{1, "2025-01-15T10:31:00", "count_change", 5, 3, 2, "automation"},
			{1, "", "bogus", 1, 2, 2},
			{2, "", "cost_change", 10, 5, 9},
			{42, "", "count_change", 1, 0, 1},
			{"x", "", "count_change", 1, 0, 1},
		},
	})

	plan, rep, err := Decode(buf)
	require.NoError(t, err)

	require.Len(t, plan.Records, 3)
	r1, _ := plan.Record(1)
	assert.Equal(t, 0, r1.Resource.Count)
	assert.True(t, r1.Resource.UnitCost.Equal(model.Amount(100000)))
	assert.Equal(t, "core", r1.Functions[0].Description)
	assert.Equal(t, 2025, r1.CreatedAt.Year())

	r2, _ := plan.Record(2)
	assert.Equal(t, []string{"Support", "Testing"}, r2.FunctionNames())
	assert.True(t, r2.TotalCost.IsZero())

	assert.True(t, plan.HasBusiness("Business C"))
	assert.True(t, plan.HasFunction("Ops"))
	// no Assumptions sheet: defaults apply
	_, err = plan.Assumptions.UnitCost("Business A", model.Onshore)
	assert.NoError(t, err)

	require.Len(t, plan.Changes, 2)
	assert.Equal(t, 3, plan.Changes[0].Count.To)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", plan.Changes[0].ID.String())
	assert.Len(t, plan.Orphans(), 1)

	joined := strings.Join(rep.Warnings, "\n")
	for _, want := range []string{
		`Records row 2: count "five" is not a whole number`,
		`Records row 3: unknown category "Hardware", skipped`,
		`Records row 4: total_cost "abc" is not a number`,
		`Records row 4: function_descriptions is not valid JSON`,
		`Changes row 3: unknown change type "bogus", skipped`,
		`Changes row 4: implementation year out of range: 9, skipped`,
		`Changes row 5: record 42 does not exist`,
		`Changes row 6: record_id "x" is not a whole number`,
	} {
		assert.Contains(t, joined, want)
	}
}

func TestDecode_SkipsImplementationRowsWithoutChange(t *testing.T) {
	buf := newFile(t, map[string][][]any{
		SheetRecords: {
			{"id", "business", "category", "functions", "function_descriptions", "tech_name", "location", "count", "unit_cost", "total_cost", "timestamp"},
			{1, "Business A", "Resource", `["Development"]`, "", "", "Onshore", 2, 100000, 200000, "2025-01-15T10:30:00"},
		},
		SheetChanges: {
			{"record_id", "timestamp", "type", "from", "to", "implementation_year", "description"},
			{1, "2025-01-15T10:31:00", "count_change", 2, 1, 2, "automation"},
		},
		SheetImplementation: {
			{"business", "record_id", "change_timestamp", "implementation_type", "year_1", "year_2", "year_3", "year_4", "year_5", "salary", "description"},
			{"Business A", 1, "2025-01-15T10:31:00", "Rebadge", 1, 0, 0, 0, 0},
			{"Business A", 99, "2025-01-15T10:31:00", "Rebadge", 10, 0, 0, 0, 0},
			{"Business A", 1, "2025-02-01T00:00:00", "Rebadge", 5, 0, 0, 0, 0},
		},
	})

	plan, rep, err := Decode(buf)
	require.NoError(t, err)

	require.Len(t, plan.Implementation, 1)
	assert.Equal(t, 1, plan.Implementation[0].Key.RecordID)

	joined := strings.Join(rep.Warnings, "\n")
	assert.Contains(t, joined, "Implementation row 3: no change matches")
	assert.Contains(t, joined, "Implementation row 4: no change matches")
	assert.NotContains(t, joined, "entry kept")

	rate, err := plan.Assumptions.ImplementationRate("Business A", model.Rebadge)
	require.NoError(t, err)
	sum := implcost.Aggregate("Business A", plan.Implementation, plan.Assumptions)
	assert.True(t, sum.GrandTotal().Equal(rate), "grand total %s", sum.GrandTotal())
}

func TestDecode_MissingRequiredSheet(t *testing.T) {
	buf := newFile(t, map[string][][]any{
		SheetRecords: {{"id", "business"}},
	})

	_, _, err := Decode(buf)
	assert.ErrorIs(t, err, ErrMissingSheet)
}

func TestDecode_NotAWorkbook(t *testing.T) {
	_, _, err := Decode(strings.NewReader("id,business\n1,A\n"))
	assert.Error(t, err)
}

func TestDecode_AssumptionsSheetReplacesDefaults(t *testing.T) {
	buf := newFile(t, map[string][][]any{
		SheetRecords: {{"id"}},
		SheetChanges: {{"record_id"}},
		SheetAssumptions: {
			{"business", "rate_type", "rate"},
			{"Business Z", "Onshore", 120000},
			{"Business Z", "Rebadge", "n/a"},
			{"Business Z", "Moonbase", 1},
		},
	})

	plan, rep, err := Decode(buf)
	require.NoError(t, err)

	v, err := plan.Assumptions.UnitCost("Business Z", model.Onshore)
	require.NoError(t, err)
	assert.True(t, v.Equal(model.Amount(120000)))
	_, err = plan.Assumptions.UnitCost("Business A", model.Onshore)
	assert.ErrorIs(t, err, model.ErrMissingRate)
	assert.True(t, plan.HasBusiness("Business Z"))
	assert.Len(t, rep.Warnings, 2)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "cost_analysis_20250402_081530.xlsx", FileName(createdAt))
}
