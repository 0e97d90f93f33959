// Package projection turns a record and its proposed changes into a per-year cost series.
// Every function here is pure: inputs are never mutated and nothing is cached.
package projection

import (
	"github.com/shopspring/decimal"

	"github.com/costplan/backend/internal/model"
)

// ProjectCost returns the annual cost of rec in effect at year.
//
// Changes for other records are ignored. The remaining ones with Year <= year are
// applied in (Year, CreatedAt) order and each replaces the effective cost, so the
// last applicable change wins. Year 0 and below is the baseline; years past the
// horizon see every change.
func ProjectCost(rec *model.Record, changes []*model.Change, rates model.Assumptions, year int) model.Money {
	cost := rec.TotalCost
	for _, c := range applicable(rec, changes, year) {
		cost = apply(rec, cost, c, rates)
	}
	return cost
}

// Series returns the cost for years 0 through Horizon.
func Series(rec *model.Record, changes []*model.Change, rates model.Assumptions) [model.Horizon + 1]model.Money {
	var out [model.Horizon + 1]model.Money
	for y := range out {
		out[y] = ProjectCost(rec, changes, rates, y)
	}
	return out
}

// FiveYearSavings sums cost(0) - cost(y) over the projected years.
// Positive is a net saving, negative a net increase.
func FiveYearSavings(rec *model.Record, changes []*model.Change, rates model.Assumptions) model.Money {
	series := Series(rec, changes, rates)
	total := decimal.Zero
	for y := 1; y <= model.Horizon; y++ {
		total = total.Add(series[0].Sub(series[y]))
	}
	return total
}

// ChangeImpact is the saving of a single change taken on its own: the drop in
// annual cost from the record's current cost times the years it is in effect.
// A change for another record, with an invalid year or of a type the record does
// not support yields zero.
func ChangeImpact(rec *model.Record, c *model.Change, rates model.Assumptions) model.Money {
	if c.RecordID != rec.ID {
		return decimal.Zero
	}
	years := model.YearsAffected(c.Year)
	if years == 0 {
		return decimal.Zero
	}
	next := apply(rec, rec.TotalCost, c, rates)
	return rec.TotalCost.Sub(next).Mul(decimal.NewFromInt(int64(years)))
}

// ProjectCount returns the headcount of a Resource record at year. Location
// changes keep the count; Technology records have none.
func ProjectCount(rec *model.Record, changes []*model.Change, year int) int {
	if rec.Resource == nil {
		return 0
	}
	count := rec.Resource.Count
	for _, c := range applicable(rec, changes, year) {
		if c.Count != nil {
			count = c.Count.To
		}
	}
	return count
}

func applicable(rec *model.Record, changes []*model.Change, year int) []*model.Change {
	var out []*model.Change
	for _, c := range changes {
		if c.RecordID == rec.ID && c.Year <= year {
			out = append(out, c)
		}
	}
	model.SortChanges(out)
	return out
}

// apply returns the cost after c takes effect. Count and location changes on a
// record without a resource line leave the prior cost unchanged, as does a
// location without a rate.
func apply(rec *model.Record, prior model.Money, c *model.Change, rates model.Assumptions) model.Money {
	switch {
	case c.Count != nil:
		if rec.Resource == nil {
			return prior
		}
		return rec.Resource.UnitCost.Mul(decimal.NewFromInt(int64(c.Count.To)))
	case c.Location != nil:
		if rec.Resource == nil {
			return prior
		}
		unit, err := rates.UnitCost(rec.Business, c.Location.To)
		if err != nil {
			return prior
		}
		return unit.Mul(decimal.NewFromInt(int64(rec.Resource.Count)))
	case c.Cost != nil:
		return c.Cost.To
	}
	return prior
}
