package projection

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/costplan/backend/internal/model"
)

// Summary compares the current total against the end-of-horizon projection.
type Summary struct {
	Current    model.Money `json:"current"`
	Future     model.Money `json:"future"`
	Savings    model.Money `json:"savings"`
	SavingsPct model.Money `json:"savings_pct"`
}

// Summarize totals records at year 0 and at the horizon.
func Summarize(records []*model.Record, changes []*model.Change, rates model.Assumptions) Summary {
	s := Summary{Current: decimal.Zero, Future: decimal.Zero, SavingsPct: decimal.Zero}
	for _, r := range records {
		s.Current = s.Current.Add(r.TotalCost)
		s.Future = s.Future.Add(ProjectCost(r, changes, rates, model.Horizon))
	}
	s.Savings = s.Current.Sub(s.Future)
	if !s.Current.IsZero() {
		s.SavingsPct = s.Savings.Div(s.Current).Mul(decimal.NewFromInt(100)).Round(1)
	}
	return s
}

type TimelinePoint struct {
	Year       int         `json:"year"`
	Current    model.Money `json:"current"`
	Projected  model.Money `json:"projected"`
	Annual     model.Money `json:"annual_savings"`
	Cumulative model.Money `json:"cumulative_savings"`
}

// Timeline returns one point per year 0..Horizon with annual and running savings.
func Timeline(records []*model.Record, changes []*model.Change, rates model.Assumptions) []TimelinePoint {
	points := make([]TimelinePoint, 0, model.Horizon+1)
	cumulative := decimal.Zero
	for y := 0; y <= model.Horizon; y++ {
		p := TimelinePoint{Year: y, Current: decimal.Zero, Projected: decimal.Zero}
		for _, r := range records {
			p.Current = p.Current.Add(r.TotalCost)
			p.Projected = p.Projected.Add(ProjectCost(r, changes, rates, y))
		}
		p.Annual = p.Current.Sub(p.Projected)
		cumulative = cumulative.Add(p.Annual)
		p.Cumulative = cumulative
		points = append(points, p)
	}
	return points
}

// FunctionCost is the cost attributed to one function tag. A record tagged with
// several functions counts in full under each of them.
type FunctionCost struct {
	Function   string      `json:"function"`
	Resource   model.Money `json:"resource"`
	Technology model.Money `json:"technology"`
	Units      int         `json:"units"`
}

// ByFunction breaks costs and headcount down by function at year. Functions are
// reported in catalog order followed by any tags missing from the catalog.
func ByFunction(records []*model.Record, changes []*model.Change, rates model.Assumptions, catalog []string, year int) []FunctionCost {
	names := slices.Clone(catalog)
	for _, r := range records {
		for _, f := range r.Functions {
			if !slices.Contains(names, f.Name) {
				names = append(names, f.Name)
			}
		}
	}

	out := make([]FunctionCost, 0, len(names))
	for _, name := range names {
		fc := FunctionCost{Function: name, Resource: decimal.Zero, Technology: decimal.Zero}
		for _, r := range records {
			if !r.HasFunction(name) {
				continue
			}
			cost := ProjectCost(r, changes, rates, year)
			if r.Resource != nil {
				fc.Resource = fc.Resource.Add(cost)
				fc.Units += ProjectCount(r, changes, year)
			} else {
				fc.Technology = fc.Technology.Add(cost)
			}
		}
		out = append(out, fc)
	}
	return out
}

// RankedChange is a change with its standalone impact.
type RankedChange struct {
	Change *model.Change `json:"change"`
	Record *model.Record `json:"-"`
	Label  string        `json:"record_label"`
	Impact model.Money   `json:"impact"`
}

// RankChanges orders changes by the magnitude of their impact, largest first.
// Changes whose record is missing are skipped.
func RankChanges(records []*model.Record, changes []*model.Change, rates model.Assumptions) []RankedChange {
	byID := make(map[int]*model.Record, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}
	var out []RankedChange
	for _, c := range changes {
		r, ok := byID[c.RecordID]
		if !ok {
			continue
		}
		out = append(out, RankedChange{
			Change: c,
			Record: r,
			Label:  r.Label(),
			Impact: ChangeImpact(r, c, rates),
		})
	}
	slices.SortStableFunc(out, func(a, b RankedChange) int {
		if n := b.Impact.Abs().Cmp(a.Impact.Abs()); n != 0 {
			return n
		}
		return cmp.Or(model.CompareChanges(a.Change, b.Change), cmp.Compare(a.Record.ID, b.Record.ID))
	})
	return out
}
