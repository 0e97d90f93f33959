// Package implcost totals the cost of executing changes per implementation type and year.
package implcost

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/costplan/backend/internal/model"
)

// Line is the priced form of a single entry.
type Line struct {
	Key    model.ImplementationKey  `json:"-"`
	Type   model.ImplementationType `json:"implementation_type"`
	Units  model.YearValues         `json:"units"`
	Rate   *model.Money             `json:"rate,omitempty"`
	Cost   model.YearValues         `json:"cost"`
	Total  model.Money              `json:"total"`
	Source string                   `json:"rate_source,omitempty"`
}

// Rate sources reported on resource lines.
const (
	RateFromEntry       = "entry"
	RateFromAssumptions = "assumptions"
	RateMissing         = "missing"
)

// Summary holds per-type yearly totals for one business.
type Summary struct {
	Business string                                        `json:"business"`
	ByType   map[model.ImplementationType]model.YearValues `json:"by_type"`
	Lines    []Line                                        `json:"lines"`
	Warnings []string                                      `json:"warnings,omitempty"`
}

// Aggregate prices the entries of business and sums them per type and year.
//
// Resource types multiply headcount by the entry's salary when positive, else by
// the business rate for the type. Technology types are already dollar amounts.
// A missing rate prices the entry at zero and adds a warning; it never fails.
func Aggregate(business string, entries []*model.ImplementationEntry, rates model.Assumptions) Summary {
	s := Summary{
		Business: business,
		ByType:   make(map[model.ImplementationType]model.YearValues),
	}
	for _, e := range entries {
		if e == nil || e.Key.Business != business {
			continue
		}
		line := price(e, rates)
		if line.Source == RateMissing {
			s.Warnings = append(s.Warnings, fmt.Sprintf("no %s rate for %s, change %s priced at zero",
				e.Key.Type, business, e.Key.ChangeRef))
		}
		acc, ok := s.ByType[e.Key.Type]
		if !ok {
			acc = model.YearValuesOf()
		}
		for y := range acc {
			acc[y] = acc[y].Add(line.Cost[y])
		}
		s.ByType[e.Key.Type] = acc
		s.Lines = append(s.Lines, line)
	}
	return s
}

func price(e *model.ImplementationEntry, rates model.Assumptions) Line {
	line := Line{Key: e.Key, Type: e.Key.Type, Units: e.Values}
	if !e.Key.Type.IsResource() {
		line.Cost = line.Units
		line.Total = line.Cost.Sum()
		return line
	}

	rate, ok := e.SalaryOverride()
	line.Source = RateFromEntry
	if !ok {
		var err error
		rate, err = rates.ImplementationRate(e.Key.Business, e.Key.Type)
		line.Source = RateFromAssumptions
		if err != nil {
			rate, line.Source = decimal.Zero, RateMissing
		}
	}
	line.Rate = &rate
	for y := range line.Cost {
		line.Cost[y] = line.Units[y].Mul(rate)
	}
	line.Total = line.Cost.Sum()
	return line
}

// Types lists the types present in the summary in display order.
func (s Summary) Types() []model.ImplementationType {
	var out []model.ImplementationType
	for _, t := range model.ImplementationTypes() {
		if _, ok := s.ByType[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// TypeTotal is the five-year total for one type.
func (s Summary) TypeTotal(t model.ImplementationType) model.Money {
	return s.ByType[t].Sum()
}

// YearTotal is the cost across all types in year y (1-based).
func (s Summary) YearTotal(y int) model.Money {
	total := decimal.Zero
	if !model.ValidImplementationYear(y) {
		return total
	}
	for _, v := range s.ByType {
		total = total.Add(v[y-1])
	}
	return total
}

// GrandTotal is the cost across all types and years.
func (s Summary) GrandTotal() model.Money {
	total := decimal.Zero
	for _, v := range s.ByType {
		total = total.Add(v.Sum())
	}
	return total
}

// MarshalJSON adds the derived totals to the encoded summary.
func (s Summary) MarshalJSON() ([]byte, error) {
	type plain Summary
	typeTotals := make(map[model.ImplementationType]model.Money, len(s.ByType))
	for t := range s.ByType {
		typeTotals[t] = s.TypeTotal(t)
	}
	yearTotals := make([]model.Money, model.Horizon)
	for y := range yearTotals {
		yearTotals[y] = s.YearTotal(y + 1)
	}
	return json.Marshal(struct {
		plain
		TypeTotals map[model.ImplementationType]model.Money `json:"type_totals"`
		YearTotals []model.Money                            `json:"year_totals"`
		GrandTotal model.Money                              `json:"grand_total"`
	}{plain(s), typeTotals, yearTotals, s.GrandTotal()})
}
