package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/costplan/backend/internal/model"
	"github.com/costplan/backend/internal/repository"
)

// ChangeService manages proposed changes to records.
type ChangeService interface {
	List(ctx context.Context, ws string, recordID int) ([]*model.Change, error)
	Create(ctx context.Context, ws string, in ChangeInput) (*model.Change, error)
	Delete(ctx context.Context, ws string, id uuid.UUID) error
}

// ChangeServiceImpl implements ChangeService.
type ChangeServiceImpl struct {
	repo repository.PlanRepository
	now  func() time.Time
}

// NewChangeService creates a ChangeServiceImpl.
func NewChangeService(repo repository.PlanRepository) ChangeService {
	return &ChangeServiceImpl{repo: repo, now: time.Now}
}

// List returns the changes of one record in application order, or every
// change when recordID is 0.
func (s *ChangeServiceImpl) List(ctx context.Context, ws string, recordID int) ([]*model.Change, error) {
	var out []*model.Change
	err := s.repo.View(ctx, ws, func(p *model.Plan) error {
		if recordID == 0 {
			out = p.Changes
			model.SortChanges(out)
			return nil
		}
		if _, ok := p.Record(recordID); !ok {
			return fmt.Errorf("%w: %d", ErrRecordNotFound, recordID)
		}
		out = p.ChangesFor(recordID)
		return nil
	})
	return out, err
}

// Create records a change against an existing record and seeds zeroed
// implementation entries for every type that applies to the record.
//
// A change whose type does not fit the record category is stored anyway; a
// count or location change on a Technology record projects as a no-op.
func (s *ChangeServiceImpl) Create(ctx context.Context, ws string, in ChangeInput) (*model.Change, error) {
	if err := check(&in); err != nil {
		return nil, err
	}
	var (
		out *model.Change
		rec *model.Record
	)
	err := s.repo.Update(ctx, ws, func(p *model.Plan) error {
		r, ok := p.Record(in.RecordID)
		if !ok {
			return fmt.Errorf("%w: %d", ErrRecordNotFound, in.RecordID)
		}
		c, err := in.build(r)
		if err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			if errors.Is(err, ErrInvalidYear) {
				return err
			}
			return invalid(err)
		}
		if c.Location != nil && r.Resource != nil {
			if _, err := p.Assumptions.UnitCost(r.Business, c.Location.To); err != nil {
				return err
			}
		}
		c.CreatedAt = s.stamp(p.ChangesFor(r.ID))
		p.Changes = append(p.Changes, c)

		ref := c.Ref(r.Business)
		for _, t := range model.ImplementationTypesFor(r.Category()) {
			key := model.ImplementationKey{ChangeRef: ref, Type: t}
			if _, ok := p.Entry(key); !ok {
				p.SetEntry(&model.ImplementationEntry{Key: key, Values: model.YearValuesOf()})
			}
		}
		out, rec = c.Clone(), r.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !out.AppliesTo(rec.Category()) {
		slog.Warn("change type does not match record category",
			"workspace", ws, "record_id", rec.ID, "category", rec.Category(), "type", out.Type())
	}
	slog.Info("change created", "workspace", ws, "change_id", out.ID, "record_id", out.RecordID, "type", out.Type())
	return out, nil
}

// Delete removes the change and its implementation entries.
func (s *ChangeServiceImpl) Delete(ctx context.Context, ws string, id uuid.UUID) error {
	return s.repo.Update(ctx, ws, func(p *model.Plan) error {
		return p.DeleteChange(id)
	})
}

// stamp returns a creation time later than every existing change of the
// record, so that the (record, time) pair stays unique.
func (s *ChangeServiceImpl) stamp(existing []*model.Change) time.Time {
	at := s.now().UTC()
	for _, c := range existing {
		if !at.After(c.CreatedAt) {
			at = c.CreatedAt.UTC().Add(time.Microsecond)
		}
	}
	return at
}
