package repository

import (
	"context"
	"sync"
	"time"

	"github.com/costplan/backend/internal/model"
)

type workspace struct {
	plan    *model.Plan
	touched time.Time
}

// MemPlanRepository keeps plans in memory, keyed by workspace id.
// A workspace is created with default assumptions on its first Update.
type MemPlanRepository struct {
	mu         sync.RWMutex
	workspaces map[string]*workspace
	closed     bool
	now        func() time.Time
	newPlan    func() *model.Plan
}

// NewMemPlanRepository creates an empty repository.
func NewMemPlanRepository() *MemPlanRepository {
	return &MemPlanRepository{
		workspaces: make(map[string]*workspace),
		now:        time.Now,
		newPlan:    model.NewPlan,
	}
}

func (r *MemPlanRepository) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrClosed
	}
	return nil
}

// View runs fn against a copy of the workspace plan. Edits made by fn are discarded.
// An unknown workspace is viewed as a new, empty plan.
func (r *MemPlanRepository) View(ctx context.Context, id string, fn func(*model.Plan) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.RLock()
	if r.closed {
		r.mu.RUnlock()
		return ErrClosed
	}
	var plan *model.Plan
	if ws, ok := r.workspaces[id]; ok {
		plan = ws.plan.Clone()
	} else {
		plan = r.newPlan()
	}
	r.mu.RUnlock()
	return fn(plan)
}

// Update runs fn against a copy of the workspace plan and stores the copy only
// when fn succeeds. Updates to the same repository are serialized.
func (r *MemPlanRepository) Update(ctx context.Context, id string, fn func(*model.Plan) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	var draft *model.Plan
	if ws, ok := r.workspaces[id]; ok {
		draft = ws.plan.Clone()
	} else {
		draft = r.newPlan()
	}
	if err := fn(draft); err != nil {
		return err
	}
	r.workspaces[id] = &workspace{plan: draft, touched: r.now()}
	return nil
}

// Replace stores a copy of plan as the workspace state.
func (r *MemPlanRepository) Replace(ctx context.Context, id string, plan *model.Plan) error {
	return r.Update(ctx, id, func(p *model.Plan) error {
		*p = *plan.Clone()
		return nil
	})
}

func (r *MemPlanRepository) Drop(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if _, ok := r.workspaces[id]; !ok {
		return ErrNotFound
	}
	delete(r.workspaces, id)
	return nil
}

func (r *MemPlanRepository) Workspaces(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.workspaces)
}

// Prune drops workspaces that have not been updated within maxIdle and
// returns how many were removed.
func (r *MemPlanRepository) Prune(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, ws := range r.workspaces {
		if ws.touched.Before(cutoff) {
			delete(r.workspaces, id)
			n++
		}
	}
	return n
}

// RunJanitor prunes idle workspaces every interval until ctx is done.
func (r *MemPlanRepository) RunJanitor(ctx context.Context, interval, maxIdle time.Duration, onPrune func(n int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Prune(maxIdle); n > 0 && onPrune != nil {
				onPrune(n)
			}
		}
	}
}

// Close releases every workspace. Later calls fail with ErrClosed.
func (r *MemPlanRepository) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.workspaces = make(map[string]*workspace)
}
