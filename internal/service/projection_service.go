package service

import (
	"context"
	"fmt"

	"github.com/costplan/backend/internal/implcost"
	"github.com/costplan/backend/internal/model"
	"github.com/costplan/backend/internal/projection"
	"github.com/costplan/backend/internal/repository"
)

// ChangeView is a change with its impact and a readable description.
// Applies reports whether the change type fits the record category.
type ChangeView struct {
	Change  *model.Change `json:"change"`
	Impact  model.Money   `json:"impact"`
	Applies bool          `json:"applies"`
	Text    string        `json:"text"`
}

// RecordProjection is the projected cost of one record over the horizon.
type RecordProjection struct {
	Record  *model.Record `json:"record"`
	Label   string        `json:"label"`
	Series  []model.Money `json:"series"`
	Savings model.Money   `json:"five_year_savings"`
	Changes []ChangeView  `json:"changes"`
}

// FunctionBreakdown compares per-function costs now and at the horizon.
type FunctionBreakdown struct {
	Current []projection.FunctionCost `json:"current"`
	Future  []projection.FunctionCost `json:"future"`
}

// Dashboard aggregates a business, or the whole workspace when Business is empty.
type Dashboard struct {
	Business       string                     `json:"business,omitempty"`
	DisplayName    string                     `json:"display_name,omitempty"`
	Summary        projection.Summary         `json:"summary"`
	Timeline       []projection.TimelinePoint `json:"timeline"`
	Records        []RecordProjection         `json:"records"`
	Changes        []projection.RankedChange  `json:"changes"`
	Functions      FunctionBreakdown          `json:"functions"`
	Implementation []implcost.Summary         `json:"implementation"`
}

// ProjectionService computes projected costs from the current plan.
type ProjectionService interface {
	Record(ctx context.Context, ws string, id int) (*RecordProjection, error)
	Dashboard(ctx context.Context, ws, business string) (*Dashboard, error)
}

// ProjectionServiceImpl implements ProjectionService.
type ProjectionServiceImpl struct {
	repo repository.PlanRepository
}

// NewProjectionService creates a ProjectionServiceImpl.
func NewProjectionService(repo repository.PlanRepository) ProjectionService {
	return &ProjectionServiceImpl{repo: repo}
}

func (s *ProjectionServiceImpl) Record(ctx context.Context, ws string, id int) (*RecordProjection, error) {
	var out *RecordProjection
	err := s.repo.View(ctx, ws, func(p *model.Plan) error {
		rec, ok := p.Record(id)
		if !ok {
			return fmt.Errorf("%w: %d", ErrRecordNotFound, id)
		}
		rp := project(rec, p.ChangesFor(id), p.Assumptions)
		out = &rp
		return nil
	})
	return out, err
}

func (s *ProjectionServiceImpl) Dashboard(ctx context.Context, ws, business string) (*Dashboard, error) {
	var out *Dashboard
	err := s.repo.View(ctx, ws, func(p *model.Plan) error {
		if business != "" && !p.HasBusiness(business) {
			return unknownBusiness(business)
		}
		records := p.RecordsFor(business, "")
		changes := p.ChangesForBusiness(business)
		rates := p.Assumptions

		d := &Dashboard{
			Business: business,
			Summary:  projection.Summarize(records, changes, rates),
			Timeline: projection.Timeline(records, changes, rates),
			Changes:  projection.RankChanges(records, changes, rates),
			Functions: FunctionBreakdown{
				Current: projection.ByFunction(records, changes, rates, p.Functions, 0),
				Future:  projection.ByFunction(records, changes, rates, p.Functions, model.Horizon),
			},
		}
		if business != "" {
			d.DisplayName = p.DisplayName(business)
		}
		for _, rec := range records {
			d.Records = append(d.Records, project(rec, p.ChangesFor(rec.ID), rates))
		}
		for _, b := range p.Businesses {
			if business == "" || b.Key == business {
				d.Implementation = append(d.Implementation, implcost.Aggregate(b.Key, p.EntriesFor(b.Key), rates))
			}
		}
		out = d
		return nil
	})
	return out, err
}

func project(rec *model.Record, changes []*model.Change, rates model.Assumptions) RecordProjection {
	series := projection.Series(rec, changes, rates)
	rp := RecordProjection{
		Record:  rec,
		Label:   rec.Label(),
		Series:  series[:],
		Savings: projection.FiveYearSavings(rec, changes, rates),
		Changes: make([]ChangeView, 0, len(changes)),
	}
	for _, c := range changes {
		rp.Changes = append(rp.Changes, ChangeView{
			Change:  c,
			Impact:  projection.ChangeImpact(rec, c, rates),
			Applies: c.AppliesTo(rec.Category()),
			Text:    projection.Describe(c, rec),
		})
	}
	return rp
}
