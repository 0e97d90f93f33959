package repository

import (
	"context"

	"github.com/costplan/backend/internal/model"
)

// DB reports whether the backing store is usable.
type DB interface {
	Ping(ctx context.Context) error
}

// PlanRepository holds one plan per workspace. Callers never get a live
// reference: View passes a copy and Update commits fn's edits only when fn
// returns nil, so a multi-step edit such as a cascading delete is all or nothing.
type PlanRepository interface {
	DB
	View(ctx context.Context, workspace string, fn func(*model.Plan) error) error
	Update(ctx context.Context, workspace string, fn func(*model.Plan) error) error
	Replace(ctx context.Context, workspace string, plan *model.Plan) error
	Drop(ctx context.Context, workspace string) error
	Workspaces(ctx context.Context) int
}
