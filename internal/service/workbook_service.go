package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/costplan/backend/internal/model"
	"github.com/costplan/backend/internal/repository"
	"github.com/costplan/backend/internal/storage"
	"github.com/costplan/backend/internal/workbook"
)

const snapshotPrefix = "snapshots"

// WorkbookService moves whole plans in and out of .xlsx workbooks.
type WorkbookService interface {
	Export(ctx context.Context, ws string) ([]byte, error)
	Import(ctx context.Context, ws string, r io.Reader) (workbook.Report, error)
	Snapshot(ctx context.Context, ws string) (storage.Object, error)
	Snapshots(ctx context.Context, ws string) ([]storage.Object, error)
	DeleteSnapshot(ctx context.Context, ws, name string) error
	LoadSample(ctx context.Context, ws string) error
	Reset(ctx context.Context, ws string) error
}

// WorkbookServiceImpl implements WorkbookService.
type WorkbookServiceImpl struct {
	repo  repository.PlanRepository
	store storage.Storage
	now   func() time.Time
}

// NewWorkbookService creates a WorkbookServiceImpl. Snapshots are written to store.
func NewWorkbookService(repo repository.PlanRepository, store storage.Storage) WorkbookService {
	return &WorkbookServiceImpl{repo: repo, store: store, now: time.Now}
}

func (s *WorkbookServiceImpl) Export(ctx context.Context, ws string) ([]byte, error) {
	var buf bytes.Buffer
	err := s.repo.View(ctx, ws, func(p *model.Plan) error {
		return workbook.Write(p, &buf)
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Import replaces the workspace plan with the decoded workbook. Rows that
// could not be read are reported as warnings rather than failing the import.
func (s *WorkbookServiceImpl) Import(ctx context.Context, ws string, r io.Reader) (workbook.Report, error) {
	plan, rep, err := workbook.Decode(r)
	if err != nil {
		return rep, invalid(err)
	}
	if err := s.repo.Replace(ctx, ws, plan); err != nil {
		return rep, err
	}
	if len(rep.Warnings) > 0 {
		slog.Warn("workbook imported with warnings", "workspace", ws, "warnings", len(rep.Warnings))
	}
	slog.Info("workbook imported", "workspace", ws,
		"records", rep.Records, "changes", rep.Changes, "implementation", rep.Implementation)
	return rep, nil
}

// Snapshot saves the current plan to storage under a timestamped name.
func (s *WorkbookServiceImpl) Snapshot(ctx context.Context, ws string) (storage.Object, error) {
	data, err := s.Export(ctx, ws)
	if err != nil {
		return storage.Object{}, err
	}
	at := s.now()
	key := path.Join(snapshotPrefix, ws, workbook.FileName(at))
	url, err := s.store.Save(ctx, key, bytes.NewReader(data), workbook.ContentType)
	if err != nil {
		return storage.Object{}, fmt.Errorf("save snapshot: %w", err)
	}
	slog.Info("snapshot saved", "workspace", ws, "key", key)
	return storage.Object{Key: key, URL: url, Size: int64(len(data)), ModTime: at}, nil
}

func (s *WorkbookServiceImpl) Snapshots(ctx context.Context, ws string) ([]storage.Object, error) {
	return s.store.List(ctx, path.Join(snapshotPrefix, ws))
}

// DeleteSnapshot removes a snapshot by file name. Names are confined to the
// workspace's own snapshot directory.
func (s *WorkbookServiceImpl) DeleteSnapshot(ctx context.Context, ws, name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fieldError("name", "invalid snapshot name")
	}
	return s.store.Delete(ctx, path.Join(snapshotPrefix, ws, name))
}

// LoadSample replaces the workspace plan with the demonstration data.
func (s *WorkbookServiceImpl) LoadSample(ctx context.Context, ws string) error {
	return s.repo.Replace(ctx, ws, model.SamplePlan(s.now().UTC()))
}

// Reset discards the workspace plan; the next access starts from defaults.
func (s *WorkbookServiceImpl) Reset(ctx context.Context, ws string) error {
	err := s.repo.Drop(ctx, ws)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}
