package service

import (
	"context"
	"io"
	"time"

	"github.com/costplan/backend/internal/model"
	"github.com/costplan/backend/internal/storage"
)

var testNow = time.Date(2025, 4, 2, 8, 15, 30, 0, time.UTC)

func fixedNow() time.Time { return testNow }

// ---------------------------------------------------------------------------
// Mock PlanRepository
// ---------------------------------------------------------------------------

// mockPlanRepository keeps a single plan. Unset funcs fall back to clone and
// commit semantics so services see the same behavior as the real store.
type mockPlanRepository struct {
	plan    *model.Plan
	updates int

	viewFunc    func(ctx context.Context, ws string, fn func(*model.Plan) error) error
	updateFunc  func(ctx context.Context, ws string, fn func(*model.Plan) error) error
	replaceFunc func(ctx context.Context, ws string, plan *model.Plan) error
	dropFunc    func(ctx context.Context, ws string) error
}

func newMockRepo(plan *model.Plan) *mockPlanRepository {
	if plan == nil {
		plan = model.NewPlan()
	}
	return &mockPlanRepository{plan: plan}
}

func sampleRepo() *mockPlanRepository {
	return newMockRepo(model.SamplePlan(testNow))
}

func (m *mockPlanRepository) Ping(context.Context) error { return nil }

func (m *mockPlanRepository) View(ctx context.Context, ws string, fn func(*model.Plan) error) error {
	if m.viewFunc != nil {
		return m.viewFunc(ctx, ws, fn)
	}
	return fn(m.plan.Clone())
}

func (m *mockPlanRepository) Update(ctx context.Context, ws string, fn func(*model.Plan) error) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, ws, fn)
	}
	draft := m.plan.Clone()
	if err := fn(draft); err != nil {
		return err
	}
	m.plan = draft
	m.updates++
	return nil
}

func (m *mockPlanRepository) Replace(ctx context.Context, ws string, plan *model.Plan) error {
	if m.replaceFunc != nil {
		return m.replaceFunc(ctx, ws, plan)
	}
	m.plan = plan.Clone()
	m.updates++
	return nil
}

func (m *mockPlanRepository) Drop(ctx context.Context, ws string) error {
	if m.dropFunc != nil {
		return m.dropFunc(ctx, ws)
	}
	m.plan = model.NewPlan()
	return nil
}

func (m *mockPlanRepository) Workspaces(context.Context) int { return 1 }

// ---------------------------------------------------------------------------
// Mock Storage
// ---------------------------------------------------------------------------

type mockStorage struct {
	saveFunc   func(ctx context.Context, key string, data io.Reader, contentType string) (string, error)
	listFunc   func(ctx context.Context, prefix string) ([]storage.Object, error)
	deleteFunc func(ctx context.Context, key string) error
}

func (m *mockStorage) Save(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, key, data, contentType)
	}
	return "/exports/" + key, nil
}

func (m *mockStorage) List(ctx context.Context, prefix string) ([]storage.Object, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, prefix)
	}
	return nil, nil
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, key)
	}
	return nil
}
