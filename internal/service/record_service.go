package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/costplan/backend/internal/model"
	"github.com/costplan/backend/internal/repository"
)

// RecordService manages the current cost records of a workspace.
type RecordService interface {
	List(ctx context.Context, ws, business string, cat model.Category) ([]*model.Record, error)
	Get(ctx context.Context, ws string, id int) (*model.Record, error)
	Create(ctx context.Context, ws string, in RecordInput) (*model.Record, error)
	Update(ctx context.Context, ws string, id int, patch RecordPatch) (*model.Record, error)
	Delete(ctx context.Context, ws string, id int) error
}

// RecordServiceImpl implements RecordService.
type RecordServiceImpl struct {
	repo repository.PlanRepository
	now  func() time.Time
}

// NewRecordService creates a RecordServiceImpl.
func NewRecordService(repo repository.PlanRepository) RecordService {
	return &RecordServiceImpl{repo: repo, now: time.Now}
}

// List filters by business and category; empty values match everything.
func (s *RecordServiceImpl) List(ctx context.Context, ws, business string, cat model.Category) ([]*model.Record, error) {
	var out []*model.Record
	err := s.repo.View(ctx, ws, func(p *model.Plan) error {
		out = p.RecordsFor(business, cat)
		return nil
	})
	return out, err
}

func (s *RecordServiceImpl) Get(ctx context.Context, ws string, id int) (*model.Record, error) {
	var out *model.Record
	err := s.repo.View(ctx, ws, func(p *model.Plan) error {
		rec, ok := p.Record(id)
		if !ok {
			return fmt.Errorf("%w: %d", ErrRecordNotFound, id)
		}
		out = rec
		return nil
	})
	return out, err
}

// Create adds a record with the next sequential id. Function tags missing from
// the catalog are added to it.
func (s *RecordServiceImpl) Create(ctx context.Context, ws string, in RecordInput) (*model.Record, error) {
	if err := check(&in); err != nil {
		return nil, err
	}
	var out *model.Record
	err := s.repo.Update(ctx, ws, func(p *model.Plan) error {
		if !p.HasBusiness(in.Business) {
			return unknownBusiness(in.Business)
		}
		rec, err := in.build(p.Assumptions)
		if err != nil {
			return err
		}
		rec.ID = p.NextRecordID()
		rec.CreatedAt = s.now()
		if err := rec.Validate(); err != nil {
			return invalid(err)
		}
		addToCatalog(p, rec)
		p.Records = append(p.Records, rec)
		out = rec.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("record created", "workspace", ws, "record_id", out.ID, "category", out.Category())
	return out, nil
}

// Update edits a record in place. Changes already recorded against it keep
// their starting values.
func (s *RecordServiceImpl) Update(ctx context.Context, ws string, id int, patch RecordPatch) (*model.Record, error) {
	if err := check(&patch); err != nil {
		return nil, err
	}
	var out *model.Record
	err := s.repo.Update(ctx, ws, func(p *model.Plan) error {
		rec, ok := p.Record(id)
		if !ok {
			return fmt.Errorf("%w: %d", ErrRecordNotFound, id)
		}
		if err := patch.apply(rec, p.Assumptions); err != nil {
			return err
		}
		if err := rec.Validate(); err != nil {
			return invalid(err)
		}
		addToCatalog(p, rec)
		out = rec.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the record and everything that refers to it.
func (s *RecordServiceImpl) Delete(ctx context.Context, ws string, id int) error {
	err := s.repo.Update(ctx, ws, func(p *model.Plan) error {
		return p.DeleteRecord(id)
	})
	if err != nil {
		return err
	}
	slog.Info("record deleted", "workspace", ws, "record_id", id)
	return nil
}

func addToCatalog(p *model.Plan, rec *model.Record) {
	for _, name := range rec.FunctionNames() {
		if !p.HasFunction(name) {
			p.Functions = append(p.Functions, name)
		}
	}
}
