package workbook

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/costplan/backend/internal/model"
)

// ErrMissingSheet is returned when a required sheet is absent.
var ErrMissingSheet = errors.New("missing sheet")

// Report describes what Decode loaded and what it had to repair or skip.
type Report struct {
	Records        int      `json:"records"`
	Changes        int      `json:"changes"`
	Implementation int      `json:"implementation"`
	Warnings       []string `json:"warnings"`
}

func (r *Report) warn(sheet string, row int, format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf("%s row %d: ", sheet, row)+fmt.Sprintf(format, args...))
}

// Decode reads a workbook written by Write, or the two-sheet Records/Changes
// layout. Unreadable numbers load as zero and rows that cannot be interpreted
// are skipped; both are listed in the report. Only a missing Records or Changes
// sheet or an unreadable file is an error.
func Decode(r io.Reader) (*model.Plan, Report, error) {
	var rep Report
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, rep, fmt.Errorf("workbook: open: %w", err)
	}
	defer f.Close()

	d := &decoder{f: f, rep: &rep, plan: model.NewPlan()}
	recordRows, err := d.table(SheetRecords, true)
	if err != nil {
		return nil, rep, err
	}
	changeRows, err := d.table(SheetChanges, true)
	if err != nil {
		return nil, rep, err
	}
	implRows, err := d.table(SheetImplementation, false)
	if err != nil {
		return nil, rep, err
	}
	rateRows, err := d.table(SheetAssumptions, false)
	if err != nil {
		return nil, rep, err
	}
	businessRows, err := d.table(SheetBusinesses, false)
	if err != nil {
		return nil, rep, err
	}
	functionRows, err := d.table(SheetFunctions, false)
	if err != nil {
		return nil, rep, err
	}

	if businessRows != nil {
		d.businesses(businessRows)
	}
	if rateRows != nil {
		d.assumptions(rateRows)
	}
	if functionRows != nil {
		d.functions(functionRows)
	}
	d.records(recordRows)
	d.changes(changeRows)
	if implRows != nil {
		d.implementation(implRows)
	}

	rep.Records = len(d.plan.Records)
	rep.Changes = len(d.plan.Changes)
	rep.Implementation = len(d.plan.Implementation)
	return d.plan, rep, nil
}

type decoder struct {
	f    *excelize.File
	rep  *Report
	plan *model.Plan
}

// rows is a sheet body addressed by header name.
type rows struct {
	sheet string
	index map[string]int
	body  [][]string
}

type row struct {
	t   *rows
	n   int
	raw []string
}

func (r row) get(col string) string {
	i, ok := r.t.index[col]
	if !ok || i >= len(r.raw) {
		return ""
	}
	return strings.TrimSpace(r.raw[i])
}

func (t *rows) each(fn func(r row)) {
	for i, raw := range t.body {
		if isBlank(raw) {
			continue
		}
		fn(row{t: t, n: i + 2, raw: raw})
	}
}

func isBlank(raw []string) bool {
	for _, c := range raw {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func (d *decoder) table(sheet string, required bool) (*rows, error) {
	idx, err := d.f.GetSheetIndex(sheet)
	if err != nil {
		return nil, fmt.Errorf("workbook: %s: %w", sheet, err)
	}
	if idx < 0 {
		if required {
			return nil, fmt.Errorf("workbook: %w %q", ErrMissingSheet, sheet)
		}
		return nil, nil
	}
	all, err := d.f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("workbook: read %s: %w", sheet, err)
	}
	t := &rows{sheet: sheet, index: map[string]int{}}
	if len(all) == 0 {
		return t, nil
	}
	for i, h := range all[0] {
		t.index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	t.body = all[1:]
	return t, nil
}

// money reads an amount, substituting zero (with a warning) for junk. Blank is zero.
func (d *decoder) money(r row, col string) model.Money {
	s := r.get(col)
	if s == "" || strings.EqualFold(s, "nan") {
		return decimal.Zero
	}
	v, err := model.ParseMoney(s)
	if err != nil {
		d.rep.warn(r.t.sheet, r.n, "%s %q is not a number, using 0", col, s)
		return decimal.Zero
	}
	return v
}

// integer reads a whole number; "5.0" is accepted since spreadsheets store numbers as floats.
func (d *decoder) integer(r row, col string) (int, bool) {
	s := r.get(col)
	if s == "" || strings.EqualFold(s, "nan") {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	if v, err := decimal.NewFromString(s); err == nil && v.IsInteger() {
		return int(v.IntPart()), true
	}
	d.rep.warn(r.t.sheet, r.n, "%s %q is not a whole number, using 0", col, s)
	return 0, false
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func (d *decoder) timestamp(r row, col string) time.Time {
	s := r.get(col)
	if s == "" {
		return time.Time{}
	}
	t, ok := parseTime(s)
	if !ok {
		d.rep.warn(r.t.sheet, r.n, "%s %q is not a timestamp", col, s)
	}
	return t
}

func (d *decoder) businesses(t *rows) {
	d.plan.Businesses = nil
	t.each(func(r row) {
		key := r.get("key")
		if key == "" {
			d.rep.warn(t.sheet, r.n, "business key is empty, skipped")
			return
		}
		d.plan.AddBusiness(key, r.get("display_name"))
	})
}

func (d *decoder) assumptions(t *rows) {
	d.plan.Assumptions = model.Assumptions{}
	t.each(func(r row) {
		business := r.get("business")
		name := r.get("rate_type")
		if business == "" {
			d.rep.warn(t.sheet, r.n, "business is empty, skipped")
			return
		}
		rates, ok := d.plan.Assumptions[business]
		if !ok {
			rates = model.BusinessRates{
				Locations:      map[model.Location]model.Money{},
				Implementation: map[model.ImplementationType]model.Money{},
			}
		}
		v := d.money(r, "rate")
		if loc, ok := model.ParseLocation(name); ok {
			rates.Locations[loc] = v
		} else if it, ok := model.ParseImplementationType(name); ok {
			rates.Implementation[it] = v
		} else {
			d.rep.warn(t.sheet, r.n, "unknown rate type %q, skipped", name)
			return
		}
		d.plan.Assumptions[business] = rates
		d.plan.AddBusiness(business, "")
	})
}

func (d *decoder) functions(t *rows) {
	d.plan.Functions = nil
	t.each(func(r row) {
		if name := r.get("name"); name != "" && !d.plan.HasFunction(name) {
			d.plan.Functions = append(d.plan.Functions, name)
		}
	})
	if !d.plan.HasFunction(model.UnassignedFunction) {
		d.plan.Functions = append(d.plan.Functions, model.UnassignedFunction)
	}
}

func (d *decoder) records(t *rows) {
	t.each(func(r row) {
		business := r.get("business")
		if business == "" {
			d.rep.warn(t.sheet, r.n, "business is empty, skipped")
			return
		}
		cat, ok := model.ParseCategory(r.get("category"))
		if !ok {
			d.rep.warn(t.sheet, r.n, "unknown category %q, skipped", r.get("category"))
			return
		}

		rec := &model.Record{
			Business:  business,
			Functions: d.functionTags(r),
			Comments:  r.get("comments"),
			CreatedAt: d.timestamp(r, "timestamp"),
			TotalCost: d.money(r, "total_cost"),
		}
		switch cat {
		case model.CategoryResource:
			loc, ok := model.ParseLocation(r.get("location"))
			if !ok {
				d.rep.warn(t.sheet, r.n, "unknown location %q, skipped", r.get("location"))
				return
			}
			count, _ := d.integer(r, "count")
			stored := rec.TotalCost
			rec.Resource = &model.ResourceLine{Location: loc, Count: count, UnitCost: d.money(r, "unit_cost")}
			rec.Recalculate()
			if !stored.Equal(rec.TotalCost) {
				d.rep.warn(t.sheet, r.n, "total_cost %s recomputed as %s", stored, rec.TotalCost)
			}
		case model.CategoryTechnology:
			rec.Technology = &model.TechnologyLine{Name: r.get("tech_name")}
		}

		id, ok := d.integer(r, "id")
		if _, dup := d.plan.Record(id); !ok || id <= 0 || dup {
			id = d.plan.NextRecordID()
			d.rep.warn(t.sheet, r.n, "missing or duplicate id, assigned %d", id)
		}
		rec.ID = id
		if err := rec.Validate(); err != nil {
			d.rep.warn(t.sheet, r.n, "%v, skipped", err)
			return
		}
		for _, fn := range rec.Functions {
			if !d.plan.HasFunction(fn.Name) {
				d.plan.Functions = append(d.plan.Functions, fn.Name)
			}
		}
		d.plan.AddBusiness(business, "")
		d.plan.Records = append(d.plan.Records, rec)
	})
}

// functionTags reads the JSON-encoded function list, falling back to a comma list.
func (d *decoder) functionTags(r row) []model.Function {
	raw := r.get("functions")
	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		for _, n := range strings.Split(raw, ",") {
			if n = strings.Trim(strings.TrimSpace(n), `[]'"`); n != "" {
				names = append(names, n)
			}
		}
	}
	if len(names) == 0 {
		d.rep.warn(r.t.sheet, r.n, "no functions, tagged %s", model.UnassignedFunction)
		names = []string{model.UnassignedFunction}
	}

	descriptions := map[string]string{}
	if s := r.get("function_descriptions"); s != "" {
		if err := json.Unmarshal([]byte(s), &descriptions); err != nil {
			d.rep.warn(r.t.sheet, r.n, "function_descriptions is not valid JSON, ignored")
		}
	}
	return model.ZipFunctions(names, descriptions)
}

func (d *decoder) changes(t *rows) {
	t.each(func(r row) {
		recordID, ok := d.integer(r, "record_id")
		if !ok {
			d.rep.warn(t.sheet, r.n, "record_id is missing, skipped")
			return
		}
		year, _ := d.integer(r, "implementation_year")

		var c *model.Change
		switch typ := model.ChangeType(r.get("type")); typ {
		case model.CountChange:
			from, _ := d.integer(r, "from")
			to, _ := d.integer(r, "to")
			c = model.NewCountChange(recordID, from, to, year)
		case model.LocationChange:
			from, _ := model.ParseLocation(r.get("from"))
			to, ok := model.ParseLocation(r.get("to"))
			if !ok {
				d.rep.warn(t.sheet, r.n, "unknown location %q, skipped", r.get("to"))
				return
			}
			c = model.NewLocationChange(recordID, from, to, year)
		case model.CostChange:
			c = model.NewCostChange(recordID, d.money(r, "from"), d.money(r, "to"), year)
		default:
			d.rep.warn(t.sheet, r.n, "unknown change type %q, skipped", typ)
			return
		}

		if id, err := uuid.Parse(r.get("id")); err == nil {
			c.ID = id
		}
		c.Description = r.get("description")
		c.CreatedAt = d.timestamp(r, "timestamp")
		if err := c.Validate(); err != nil {
			d.rep.warn(t.sheet, r.n, "%v, skipped", err)
			return
		}
		if _, ok := d.plan.Record(recordID); !ok {
			d.rep.warn(t.sheet, r.n, "record %d does not exist, change kept but ignored", recordID)
		}
		d.plan.Changes = append(d.plan.Changes, c)
	})
}

func (d *decoder) implementation(t *rows) {
	t.each(func(r row) {
		typ, ok := model.ParseImplementationType(r.get("implementation_type"))
		if !ok {
			d.rep.warn(t.sheet, r.n, "unknown implementation type %q, skipped", r.get("implementation_type"))
			return
		}
		recordID, _ := d.integer(r, "record_id")
		e := &model.ImplementationEntry{
			Key: model.ImplementationKey{
				ChangeRef: model.ChangeRef{
					Business: r.get("business"),
					RecordID: recordID,
					ChangeAt: d.timestamp(r, "change_timestamp"),
				},
				Type: typ,
			},
			Description: r.get("description"),
		}
		for y := range e.Values {
			e.Values[y] = d.money(r, fmt.Sprintf("year_%d", y+1))
		}
		if s := r.get("salary"); s != "" {
			if v := d.money(r, "salary"); v.IsPositive() {
				e.Salary = &v
			}
		}
		if _, _, ok := d.plan.ChangeByRef(e.Key.ChangeRef); !ok {
			d.rep.warn(t.sheet, r.n, "no change matches %s, skipped", e.Key.ChangeRef)
			return
		}
		d.plan.SetEntry(e)
	})
}
