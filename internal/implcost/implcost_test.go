package implcost

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/costplan/backend/internal/model"
)

var changeAt = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func entry(business string, t model.ImplementationType, values ...int64) *model.ImplementationEntry {
	return &model.ImplementationEntry{
		Key: model.ImplementationKey{
			ChangeRef: model.ChangeRef{Business: business, RecordID: 1, ChangeAt: changeAt},
			Type:      t,
		},
		Values: model.YearValuesOf(values...),
	}
}

func withSalary(e *model.ImplementationEntry, salary int64) *model.ImplementationEntry {
	s := model.Amount(salary)
	e.Salary = &s
	return e
}

func yearStrings(v model.YearValues) []string {
	out := make([]string, len(v))
	for i, x := range v {
		out[i] = x.String()
	}
	return out
}

func TestAggregate_ResourceUsesBusinessRate(t *testing.T) {
	s := Aggregate("Business A", []*model.ImplementationEntry{
		entry("Business A", model.Rebadge, 2, 1, 0, 0, 0),
	}, model.DefaultAssumptions())

	assert.Equal(t, []string{"30000", "15000", "0", "0", "0"}, yearStrings(s.ByType[model.Rebadge]))
	assert.Equal(t, "45000", s.TypeTotal(model.Rebadge).String())
	require.Len(t, s.Lines, 1)
	assert.Equal(t, RateFromAssumptions, s.Lines[0].Source)
	assert.Empty(t, s.Warnings)
}

func TestAggregate_SalaryOverride(t *testing.T) {
	tests := []struct {
		name   string
		salary *int64
		want   []string
		source string
	}{
		{"absent", nil, []string{"30000", "15000", "0", "0", "0"}, RateFromAssumptions},
		{"zero falls back", ptr(int64(0)), []string{"30000", "15000", "0", "0", "0"}, RateFromAssumptions},
		{"negative falls back", ptr(int64(-10)), []string{"30000", "15000", "0", "0", "0"}, RateFromAssumptions},
		{"positive overrides", ptr(int64(50000)), []string{"100000", "50000", "0", "0", "0"}, RateFromEntry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := entry("Business A", model.Rebadge, 2, 1, 0, 0, 0)
			if tt.salary != nil {
				e = withSalary(e, *tt.salary)
			}
			s := Aggregate("Business A", []*model.ImplementationEntry{e}, model.DefaultAssumptions())
			assert.Equal(t, tt.want, yearStrings(s.ByType[model.Rebadge]))
			assert.Equal(t, tt.source, s.Lines[0].Source)
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestAggregate_TechnologyIsDirectCost(t *testing.T) {
	s := Aggregate("Business A", []*model.ImplementationEntry{
		withSalary(entry("Business A", model.InternalBuild, 100000, 50000, 25000, 10000, 0), 99),
	}, model.DefaultAssumptions())

	assert.Equal(t, []string{"100000", "50000", "25000", "10000", "0"}, yearStrings(s.ByType[model.InternalBuild]))
	assert.Nil(t, s.Lines[0].Rate)
	assert.Equal(t, "185000", s.GrandTotal().String())
}

func TestAggregate_IsAdditive(t *testing.T) {
	rates := model.DefaultAssumptions()
	a := entry("Business B", model.HouseResources, 1, 2, 1, 0, 0)
	b := withSalary(entry("Business B", model.HouseResources, 3, 0, 0, 1, 0), 30000)

	both := Aggregate("Business B", []*model.ImplementationEntry{a, b}, rates)
	onlyA := Aggregate("Business B", []*model.ImplementationEntry{a}, rates)
	onlyB := Aggregate("Business B", []*model.ImplementationEntry{b}, rates)

	for y := range model.Horizon {
		want := onlyA.ByType[model.HouseResources][y].Add(onlyB.ByType[model.HouseResources][y])
		assert.True(t, both.ByType[model.HouseResources][y].Equal(want), "year %d", y+1)
	}
	assert.True(t, both.GrandTotal().Equal(onlyA.GrandTotal().Add(onlyB.GrandTotal())))
}

func TestAggregate_IgnoresOtherBusinesses(t *testing.T) {
	s := Aggregate("Business A", []*model.ImplementationEntry{
		entry("Business B", model.NewHire, 5, 5, 5, 5, 5),
		nil,
	}, model.DefaultAssumptions())

	assert.Empty(t, s.ByType)
	assert.Empty(t, s.Types())
	assert.True(t, s.GrandTotal().IsZero())
}

func TestAggregate_MissingRateWarnsAndContinues(t *testing.T) {
	rates := model.DefaultAssumptions()
	delete(rates["Business A"].Implementation, model.NewHire)

	s := Aggregate("Business A", []*model.ImplementationEntry{
		entry("Business A", model.NewHire, 1, 1, 0, 0, 0),
		entry("Business A", model.Rebadge, 1, 0, 0, 0, 0),
	}, rates)

	require.Len(t, s.Warnings, 1)
	assert.Contains(t, s.Warnings[0], "New Hire")
	assert.True(t, s.TypeTotal(model.NewHire).IsZero())
	assert.Equal(t, "15000", s.TypeTotal(model.Rebadge).String())
	assert.Equal(t, RateMissing, s.Lines[0].Source)
}

func TestAggregate_UnsetValuesCountAsZero(t *testing.T) {
	e := &model.ImplementationEntry{
		Key: model.ImplementationKey{ChangeRef: model.ChangeRef{Business: "Business A", RecordID: 1}, Type: model.Rebadge},
	}
	e.Values[0] = model.Amount(1)

	s := Aggregate("Business A", []*model.ImplementationEntry{e}, model.DefaultAssumptions())

	assert.Equal(t, "15000", s.GrandTotal().String())
	assert.True(t, s.YearTotal(2).IsZero())
}

func TestAggregate_SamplePlan(t *testing.T) {
	p := model.SamplePlan(changeAt)

	s := Aggregate("Business A", p.Implementation, p.Assumptions)

	assert.Equal(t, []model.ImplementationType{model.Rebadge, model.HouseResources, model.NewHire, model.InternalBuild}, s.Types())
	assert.Equal(t, "175000", s.YearTotal(1).String())
	assert.Equal(t, "0", s.YearTotal(5).String())
	assert.Equal(t, "0", s.YearTotal(6).String())
	assert.Equal(t, "385000", s.GrandTotal().String())
	assert.Len(t, s.Lines, 4)
}

func TestSummary_MarshalJSONIncludesTotals(t *testing.T) {
	s := Aggregate("Business A", []*model.ImplementationEntry{
		entry("Business A", model.Rebadge, 2, 1, 0, 0, 0),
		entry("Business A", model.InternalBuild, 0, 500, 0, 0, 0),
	}, model.DefaultAssumptions())

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var got struct {
		Business   string            `json:"business"`
		TypeTotals map[string]string `json:"type_totals"`
		YearTotals []string          `json:"year_totals"`
		GrandTotal string            `json:"grand_total"`
		Lines      []json.RawMessage `json:"lines"`
	}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "Business A", got.Business)
	assert.Equal(t, "45000", got.TypeTotals[string(model.Rebadge)])
	assert.Equal(t, []string{"30000", "15500", "0", "0", "0"}, got.YearTotals)
	assert.Equal(t, "45500", got.GrandTotal)
	assert.Len(t, got.Lines, 2)
}
