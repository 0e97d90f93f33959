package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/costplan/backend/internal/implcost"
	"github.com/costplan/backend/internal/model"
	"github.com/costplan/backend/internal/service"
	"github.com/costplan/backend/internal/storage"
	"github.com/costplan/backend/internal/workbook"
	"github.com/costplan/backend/pkg/auth"
)

const testWorkspace = "ws-1"

// wsRequest builds a request that has passed the session middleware.
func wsRequest(method, url, body string) *http.Request {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, url, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, url, nil)
	}
	r.Header.Set("Content-Type", "application/json")
	return r.WithContext(auth.WithWorkspace(r.Context(), testWorkspace))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return body
}

// ---------------------------------------------------------------------------
// RecordService
// ---------------------------------------------------------------------------

type mockRecordService struct {
	listFunc   func(ctx context.Context, ws, business string, cat model.Category) ([]*model.Record, error)
	getFunc    func(ctx context.Context, ws string, id int) (*model.Record, error)
	createFunc func(ctx context.Context, ws string, in service.RecordInput) (*model.Record, error)
	updateFunc func(ctx context.Context, ws string, id int, patch service.RecordPatch) (*model.Record, error)
	deleteFunc func(ctx context.Context, ws string, id int) error
}

func (m *mockRecordService) List(ctx context.Context, ws, business string, cat model.Category) ([]*model.Record, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, ws, business, cat)
	}
	return nil, nil
}

func (m *mockRecordService) Get(ctx context.Context, ws string, id int) (*model.Record, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, ws, id)
	}
	return nil, service.ErrRecordNotFound
}

func (m *mockRecordService) Create(ctx context.Context, ws string, in service.RecordInput) (*model.Record, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, ws, in)
	}
	return nil, nil
}

func (m *mockRecordService) Update(ctx context.Context, ws string, id int, patch service.RecordPatch) (*model.Record, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, ws, id, patch)
	}
	return nil, nil
}

func (m *mockRecordService) Delete(ctx context.Context, ws string, id int) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, ws, id)
	}
	return nil
}

// ---------------------------------------------------------------------------
// ChangeService
// ---------------------------------------------------------------------------

type mockChangeService struct {
	listFunc   func(ctx context.Context, ws string, recordID int) ([]*model.Change, error)
	createFunc func(ctx context.Context, ws string, in service.ChangeInput) (*model.Change, error)
	deleteFunc func(ctx context.Context, ws string, id uuid.UUID) error
}

func (m *mockChangeService) List(ctx context.Context, ws string, recordID int) ([]*model.Change, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, ws, recordID)
	}
	return nil, nil
}

func (m *mockChangeService) Create(ctx context.Context, ws string, in service.ChangeInput) (*model.Change, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, ws, in)
	}
	return nil, nil
}

func (m *mockChangeService) Delete(ctx context.Context, ws string, id uuid.UUID) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, ws, id)
	}
	return nil
}

// ---------------------------------------------------------------------------
// ImplementationService
// ---------------------------------------------------------------------------

type mockImplementationService struct {
	listFunc    func(ctx context.Context, ws, business string) ([]*model.ImplementationEntry, error)
	setFunc     func(ctx context.Context, ws string, in service.ImplementationInput) (*model.ImplementationEntry, error)
	summaryFunc func(ctx context.Context, ws, business string) (implcost.Summary, error)
}

func (m *mockImplementationService) List(ctx context.Context, ws, business string) ([]*model.ImplementationEntry, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, ws, business)
	}
	return nil, nil
}

func (m *mockImplementationService) Set(ctx context.Context, ws string, in service.ImplementationInput) (*model.ImplementationEntry, error) {
	if m.setFunc != nil {
		return m.setFunc(ctx, ws, in)
	}
	return nil, nil
}

func (m *mockImplementationService) Summary(ctx context.Context, ws, business string) (implcost.Summary, error) {
	if m.summaryFunc != nil {
		return m.summaryFunc(ctx, ws, business)
	}
	return implcost.Summary{Business: business}, nil
}

// ---------------------------------------------------------------------------
// AssumptionService
// ---------------------------------------------------------------------------

type mockAssumptionService struct {
	getFunc            func(ctx context.Context, ws string) (*service.Settings, error)
	updateRatesFunc    func(ctx context.Context, ws, business string, rates model.BusinessRates) (int, error)
	renameBusinessFunc func(ctx context.Context, ws, key, display string) error
	functionsFunc      func(ctx context.Context, ws string) ([]string, error)
	addFunctionFunc    func(ctx context.Context, ws, name string) error
	renameFunctionFunc func(ctx context.Context, ws, from, to string) error
	removeFunctionFunc func(ctx context.Context, ws, name string) error
}

func (m *mockAssumptionService) Get(ctx context.Context, ws string) (*service.Settings, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, ws)
	}
	return &service.Settings{}, nil
}

func (m *mockAssumptionService) UpdateRates(ctx context.Context, ws, business string, rates model.BusinessRates) (int, error) {
	if m.updateRatesFunc != nil {
		return m.updateRatesFunc(ctx, ws, business, rates)
	}
	return 0, nil
}

func (m *mockAssumptionService) RenameBusiness(ctx context.Context, ws, key, display string) error {
	if m.renameBusinessFunc != nil {
		return m.renameBusinessFunc(ctx, ws, key, display)
	}
	return nil
}

func (m *mockAssumptionService) Functions(ctx context.Context, ws string) ([]string, error) {
	if m.functionsFunc != nil {
		return m.functionsFunc(ctx, ws)
	}
	return nil, nil
}

func (m *mockAssumptionService) AddFunction(ctx context.Context, ws, name string) error {
	if m.addFunctionFunc != nil {
		return m.addFunctionFunc(ctx, ws, name)
	}
	return nil
}

func (m *mockAssumptionService) RenameFunction(ctx context.Context, ws, from, to string) error {
	if m.renameFunctionFunc != nil {
		return m.renameFunctionFunc(ctx, ws, from, to)
	}
	return nil
}

func (m *mockAssumptionService) RemoveFunction(ctx context.Context, ws, name string) error {
	if m.removeFunctionFunc != nil {
		return m.removeFunctionFunc(ctx, ws, name)
	}
	return nil
}

// ---------------------------------------------------------------------------
// ProjectionService
// ---------------------------------------------------------------------------

type mockProjectionService struct {
	recordFunc    func(ctx context.Context, ws string, id int) (*service.RecordProjection, error)
	dashboardFunc func(ctx context.Context, ws, business string) (*service.Dashboard, error)
}

func (m *mockProjectionService) Record(ctx context.Context, ws string, id int) (*service.RecordProjection, error) {
	if m.recordFunc != nil {
		return m.recordFunc(ctx, ws, id)
	}
	return &service.RecordProjection{}, nil
}

func (m *mockProjectionService) Dashboard(ctx context.Context, ws, business string) (*service.Dashboard, error) {
	if m.dashboardFunc != nil {
		return m.dashboardFunc(ctx, ws, business)
	}
	return &service.Dashboard{Business: business}, nil
}

// ---------------------------------------------------------------------------
// WorkbookService
// ---------------------------------------------------------------------------

type mockWorkbookService struct {
	exportFunc         func(ctx context.Context, ws string) ([]byte, error)
	importFunc         func(ctx context.Context, ws string, r io.Reader) (workbook.Report, error)
	snapshotFunc       func(ctx context.Context, ws string) (storage.Object, error)
	snapshotsFunc      func(ctx context.Context, ws string) ([]storage.Object, error)
	deleteSnapshotFunc func(ctx context.Context, ws, name string) error
	loadSampleFunc     func(ctx context.Context, ws string) error
	resetFunc          func(ctx context.Context, ws string) error
}

func (m *mockWorkbookService) Export(ctx context.Context, ws string) ([]byte, error) {
	if m.exportFunc != nil {
		return m.exportFunc(ctx, ws)
	}
	return nil, nil
}

func (m *mockWorkbookService) Import(ctx context.Context, ws string, r io.Reader) (workbook.Report, error) {
	if m.importFunc != nil {
		return m.importFunc(ctx, ws, r)
	}
	return workbook.Report{}, nil
}

func (m *mockWorkbookService) Snapshot(ctx context.Context, ws string) (storage.Object, error) {
	if m.snapshotFunc != nil {
		return m.snapshotFunc(ctx, ws)
	}
	return storage.Object{}, nil
}

func (m *mockWorkbookService) Snapshots(ctx context.Context, ws string) ([]storage.Object, error) {
	if m.snapshotsFunc != nil {
		return m.snapshotsFunc(ctx, ws)
	}
	return nil, nil
}

func (m *mockWorkbookService) DeleteSnapshot(ctx context.Context, ws, name string) error {
	if m.deleteSnapshotFunc != nil {
		return m.deleteSnapshotFunc(ctx, ws, name)
	}
	return nil
}

func (m *mockWorkbookService) LoadSample(ctx context.Context, ws string) error {
	if m.loadSampleFunc != nil {
		return m.loadSampleFunc(ctx, ws)
	}
	return nil
}

func (m *mockWorkbookService) Reset(ctx context.Context, ws string) error {
	if m.resetFunc != nil {
		return m.resetFunc(ctx, ws)
	}
	return nil
}
