package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/costplan/backend/internal/model"
	"github.com/costplan/backend/internal/repository"
)

// Settings is everything a workspace prices and labels its records with.
type Settings struct {
	Businesses []model.Business  `json:"businesses"`
	Rates      model.Assumptions `json:"rates"`
	Functions  []string          `json:"functions"`
}

// AssumptionService manages rates, business names and the function catalog.
type AssumptionService interface {
	Get(ctx context.Context, ws string) (*Settings, error)
	UpdateRates(ctx context.Context, ws, business string, rates model.BusinessRates) (int, error)
	RenameBusiness(ctx context.Context, ws, key, display string) error
	Functions(ctx context.Context, ws string) ([]string, error)
	AddFunction(ctx context.Context, ws, name string) error
	RenameFunction(ctx context.Context, ws, from, to string) error
	RemoveFunction(ctx context.Context, ws, name string) error
}

// AssumptionServiceImpl implements AssumptionService.
type AssumptionServiceImpl struct {
	repo repository.PlanRepository
}

// NewAssumptionService creates an AssumptionServiceImpl.
func NewAssumptionService(repo repository.PlanRepository) AssumptionService {
	return &AssumptionServiceImpl{repo: repo}
}

func (s *AssumptionServiceImpl) Get(ctx context.Context, ws string) (*Settings, error) {
	var out *Settings
	err := s.repo.View(ctx, ws, func(p *model.Plan) error {
		out = &Settings{Businesses: p.Businesses, Rates: p.Assumptions, Functions: p.Functions}
		return nil
	})
	return out, err
}

// UpdateRates replaces the rates of a business and reprices its Resource
// records. It returns how many records were repriced.
func (s *AssumptionServiceImpl) UpdateRates(ctx context.Context, ws, business string, rates model.BusinessRates) (int, error) {
	if err := checkRates(rates); err != nil {
		return 0, err
	}
	var n int
	err := s.repo.Update(ctx, ws, func(p *model.Plan) error {
		if !p.HasBusiness(business) {
			return unknownBusiness(business)
		}
		n = p.ApplyRates(business, rates)
		return nil
	})
	if err != nil {
		return 0, err
	}
	slog.Info("rates updated", "workspace", ws, "business", business, "repriced", n)
	return n, nil
}

func checkRates(rates model.BusinessRates) error {
	for _, loc := range model.Locations() {
		v, ok := rates.Locations[loc]
		if !ok {
			return fieldError("locations."+string(loc), "required")
		}
		if v.IsNegative() {
			return fieldError("locations."+string(loc), "gte=0")
		}
	}
	for t, v := range rates.Implementation {
		if !t.IsResource() {
			return fieldError("implementation."+string(t), "not a resource implementation type")
		}
		if v.IsNegative() {
			return fieldError("implementation."+string(t), "gte=0")
		}
	}
	return nil
}

// RenameBusiness changes the display name only; records keep the internal key.
func (s *AssumptionServiceImpl) RenameBusiness(ctx context.Context, ws, key, display string) error {
	return s.repo.Update(ctx, ws, func(p *model.Plan) error {
		err := p.RenameBusiness(key, display)
		if errors.Is(err, model.ErrNotFound) {
			return unknownBusiness(key)
		}
		return catalogError(err)
	})
}

func (s *AssumptionServiceImpl) Functions(ctx context.Context, ws string) ([]string, error) {
	var out []string
	err := s.repo.View(ctx, ws, func(p *model.Plan) error {
		out = p.Functions
		return nil
	})
	return out, err
}

func (s *AssumptionServiceImpl) AddFunction(ctx context.Context, ws, name string) error {
	return s.repo.Update(ctx, ws, func(p *model.Plan) error {
		return catalogError(p.AddFunction(name))
	})
}

// RenameFunction renames a catalog entry and retags every record using it.
func (s *AssumptionServiceImpl) RenameFunction(ctx context.Context, ws, from, to string) error {
	return s.repo.Update(ctx, ws, func(p *model.Plan) error {
		return catalogError(p.RenameFunction(from, to))
	})
}

// RemoveFunction drops a catalog entry; records tagged with it become Unassigned.
func (s *AssumptionServiceImpl) RemoveFunction(ctx context.Context, ws, name string) error {
	err := s.repo.Update(ctx, ws, func(p *model.Plan) error {
		return catalogError(p.RemoveFunction(name))
	})
	if err != nil {
		return fmt.Errorf("remove function %q: %w", name, err)
	}
	return nil
}
