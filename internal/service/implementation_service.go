package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/costplan/backend/internal/implcost"
	"github.com/costplan/backend/internal/model"
	"github.com/costplan/backend/internal/repository"
)

// ImplementationService manages the cost of carrying out changes.
type ImplementationService interface {
	List(ctx context.Context, ws, business string) ([]*model.ImplementationEntry, error)
	Set(ctx context.Context, ws string, in ImplementationInput) (*model.ImplementationEntry, error)
	Summary(ctx context.Context, ws, business string) (implcost.Summary, error)
}

// ImplementationServiceImpl implements ImplementationService.
type ImplementationServiceImpl struct {
	repo repository.PlanRepository
}

// NewImplementationService creates an ImplementationServiceImpl.
func NewImplementationService(repo repository.PlanRepository) ImplementationService {
	return &ImplementationServiceImpl{repo: repo}
}

func (s *ImplementationServiceImpl) List(ctx context.Context, ws, business string) ([]*model.ImplementationEntry, error) {
	var out []*model.ImplementationEntry
	err := s.repo.View(ctx, ws, func(p *model.Plan) error {
		if business != "" && !p.HasBusiness(business) {
			return unknownBusiness(business)
		}
		out = p.EntriesFor(business)
		return nil
	})
	return out, err
}

// Set stores the values for one (change, type) pair, replacing any previous ones.
func (s *ImplementationServiceImpl) Set(ctx context.Context, ws string, in ImplementationInput) (*model.ImplementationEntry, error) {
	if err := check(&in); err != nil {
		return nil, err
	}
	values, err := in.values()
	if err != nil {
		return nil, err
	}
	var out *model.ImplementationEntry
	err = s.repo.Update(ctx, ws, func(p *model.Plan) error {
		c, ok := p.Change(in.ChangeID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrChangeNotFound, in.ChangeID)
		}
		rec, ok := p.Record(c.RecordID)
		if !ok {
			return fmt.Errorf("%w: %d", ErrRecordNotFound, c.RecordID)
		}
		t, ok := model.ParseImplementationType(in.Type)
		if !ok || !slices.Contains(model.ImplementationTypesFor(rec.Category()), t) {
			return fieldError("implementation_type", fmt.Sprintf("not valid for %s records", rec.Category()))
		}
		e := &model.ImplementationEntry{
			Key:         model.ImplementationKey{ChangeRef: c.Ref(rec.Business), Type: t},
			Values:      values,
			Salary:      in.salary(),
			Description: in.Description,
		}
		p.SetEntry(e)
		out = e.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ImplementationServiceImpl) Summary(ctx context.Context, ws, business string) (implcost.Summary, error) {
	var out implcost.Summary
	err := s.repo.View(ctx, ws, func(p *model.Plan) error {
		if !p.HasBusiness(business) {
			return unknownBusiness(business)
		}
		out = implcost.Aggregate(business, p.EntriesFor(business), p.Assumptions)
		return nil
	})
	return out, err
}
