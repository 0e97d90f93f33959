// Package workbook stores a plan as an .xlsx file, one sheet per table.
package workbook

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/costplan/backend/internal/model"
)

const (
	SheetRecords        = "Records"
	SheetChanges        = "Changes"
	SheetImplementation = "Implementation"
	SheetAssumptions    = "Assumptions"
	SheetBusinesses     = "Businesses"
	SheetFunctions      = "Functions"
)

// ContentType is the MIME type of the encoded workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	recordHeader = []string{"id", "business", "category", "functions", "function_descriptions",
		"tech_name", "location", "count", "unit_cost", "total_cost", "comments", "timestamp"}
	changeHeader = []string{"id", "record_id", "timestamp", "type", "from", "to",
		"implementation_year", "description"}
	implementationHeader = []string{"business", "record_id", "change_timestamp", "implementation_type",
		"year_1", "year_2", "year_3", "year_4", "year_5", "salary", "description"}
	assumptionHeader = []string{"business", "rate_type", "rate"}
	businessHeader   = []string{"key", "display_name"}
	functionHeader   = []string{"name"}
)

// FileName is the name a snapshot taken at t is saved under.
func FileName(t time.Time) string {
	return "cost_analysis_" + t.Format("20060102_150405") + ".xlsx"
}

// Encode builds a workbook holding every table of plan.
func Encode(plan *model.Plan) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetRecords); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetChanges, SheetImplementation, SheetAssumptions, SheetBusinesses, SheetFunctions} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	w := &sheetWriter{f: f}
	w.table(SheetRecords, recordHeader, len(plan.Records), func(i int) []any { return recordRow(plan.Records[i]) })
	w.table(SheetChanges, changeHeader, len(plan.Changes), func(i int) []any { return changeRow(plan.Changes[i]) })
	w.table(SheetImplementation, implementationHeader, len(plan.Implementation), func(i int) []any {
		return implementationRow(plan.Implementation[i])
	})

	rates := assumptionRows(plan.Assumptions, plan.Businesses)
	w.table(SheetAssumptions, assumptionHeader, len(rates), func(i int) []any { return rates[i] })
	w.table(SheetBusinesses, businessHeader, len(plan.Businesses), func(i int) []any {
		return []any{plan.Businesses[i].Key, plan.Businesses[i].DisplayName}
	})
	w.table(SheetFunctions, functionHeader, len(plan.Functions), func(i int) []any { return []any{plan.Functions[i]} })
	if w.err != nil {
		return nil, w.err
	}
	return f, nil
}

// Write encodes plan and writes the xlsx bytes to out.
func Write(plan *model.Plan, out io.Writer) error {
	f, err := Encode(plan)
	if err != nil {
		return fmt.Errorf("workbook: encode: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("workbook: write: %w", err)
	}
	return nil
}

type sheetWriter struct {
	f   *excelize.File
	err error
}

func (w *sheetWriter) table(sheet string, header []string, n int, row func(i int) []any) {
	if w.err != nil {
		return
	}
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if w.err = w.f.SetSheetRow(sheet, "A1", &cells); w.err != nil {
		return
	}
	for i := 0; i < n; i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			w.err = err
			return
		}
		values := row(i)
		if w.err = w.f.SetSheetRow(sheet, cell, &values); w.err != nil {
			return
		}
	}
}

func recordRow(r *model.Record) []any {
	functions, _ := json.Marshal(r.FunctionNames())
	descriptions := make(map[string]string, len(r.Functions))
	for _, fn := range r.Functions {
		descriptions[fn.Name] = fn.Description
	}
	descJSON, _ := json.Marshal(descriptions)

	row := []any{r.ID, r.Business, string(r.Category()), string(functions), string(descJSON),
		nil, nil, nil, nil, r.TotalCost.InexactFloat64(), r.Comments, formatTime(r.CreatedAt)}
	if r.Technology != nil {
		row[5] = r.Technology.Name
	}
	if r.Resource != nil {
		row[6] = string(r.Resource.Location)
		row[7] = r.Resource.Count
		row[8] = r.Resource.UnitCost.InexactFloat64()
	}
	return row
}

func changeRow(c *model.Change) []any {
	row := []any{c.ID.String(), c.RecordID, formatTime(c.CreatedAt), string(c.Type()), nil, nil, c.Year, c.Description}
	switch {
	case c.Count != nil:
		row[4], row[5] = c.Count.From, c.Count.To
	case c.Location != nil:
		row[4], row[5] = string(c.Location.From), string(c.Location.To)
	case c.Cost != nil:
		row[4], row[5] = c.Cost.From.InexactFloat64(), c.Cost.To.InexactFloat64()
	}
	return row
}

func implementationRow(e *model.ImplementationEntry) []any {
	row := []any{e.Key.Business, e.Key.RecordID, formatTime(e.Key.ChangeAt), string(e.Key.Type)}
	for _, v := range e.Values {
		row = append(row, v.InexactFloat64())
	}
	if s, ok := e.SalaryOverride(); ok {
		row = append(row, s.InexactFloat64())
	} else {
		row = append(row, nil)
	}
	return append(row, e.Description)
}

// assumptionRows lists rates business by business in a stable order.
func assumptionRows(a model.Assumptions, businesses []model.Business) [][]any {
	var keys []string
	for _, b := range businesses {
		if _, ok := a[b.Key]; ok {
			keys = append(keys, b.Key)
		}
	}
	for _, k := range slices.Sorted(maps.Keys(a)) {
		if !slices.Contains(keys, k) {
			keys = append(keys, k)
		}
	}

	var rows [][]any
	for _, k := range keys {
		rates := a[k]
		for _, loc := range model.Locations() {
			if v, ok := rates.Locations[loc]; ok {
				rows = append(rows, []any{k, string(loc), v.InexactFloat64()})
			}
		}
		for _, t := range model.ImplementationTypes() {
			if v, ok := rates.Implementation[t]; ok {
				rows = append(rows, []any{k, string(t), v.InexactFloat64()})
			}
		}
	}
	return rows
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
