package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/costplan/backend/internal/model"
	"github.com/costplan/backend/internal/service"
)

func sampleRecord(id int) *model.Record {
	rec := model.NewResourceRecord("Business A", []model.Function{{Name: "Development"}},
		model.Onshore, 5, model.Amount(100000))
	rec.ID = id
	return rec
}

func TestRecordHandler_List_RequiresWorkspace(t *testing.T) {
	h := NewRecordHandler(&mockRecordService{})
	req := httptest.NewRequest("GET", "/api/records", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestRecordHandler_List_PassesFilters(t *testing.T) {
	var gotWS, gotBusiness string
	var gotCat model.Category
	h := NewRecordHandler(&mockRecordService{
		listFunc: func(ctx context.Context, ws, business string, cat model.Category) ([]*model.Record, error) {
			gotWS, gotBusiness, gotCat = ws, business, cat
			return []*model.Record{sampleRecord(1)}, nil
		},
	})
	req := wsRequest("GET", "/api/records?business=Business+A&category=Resource", "")
	rec := httptest.NewRecorder()

	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotWS != testWorkspace || gotBusiness != "Business A" || gotCat != model.CategoryResource {
		t.Errorf("unexpected filters: ws=%q business=%q category=%q", gotWS, gotBusiness, gotCat)
	}
	body := decodeBody(t, rec)
	records, ok := body["records"].([]any)
	if !ok || len(records) != 1 {
		t.Fatalf("expected 1 record, got %v", body["records"])
	}
	first := records[0].(map[string]any)
	if first["total_cost"] != "500000" {
		t.Errorf("expected total_cost 500000, got %v", first["total_cost"])
	}
}

func TestRecordHandler_List_EmptyIsArray(t *testing.T) {
	h := NewRecordHandler(&mockRecordService{})
	rec := httptest.NewRecorder()

	h.List(rec, wsRequest("GET", "/api/records", ""))

	body := decodeBody(t, rec)
	if records, ok := body["records"].([]any); !ok || len(records) != 0 {
		t.Errorf("expected empty array, got %v", body["records"])
	}
}

func TestRecordHandler_List_InvalidCategory(t *testing.T) {
	h := NewRecordHandler(&mockRecordService{})
	rec := httptest.NewRecorder()

	h.List(rec, wsRequest("GET", "/api/records?category=Hardware", ""))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestRecordHandler_Get(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		err      error
		wantCode int
	}{
		{"found", "3", nil, http.StatusOK},
		{"not found", "99", service.ErrRecordNotFound, http.StatusNotFound},
		{"bad id", "abc", nil, http.StatusBadRequest},
		{"zero id", "0", nil, http.StatusBadRequest},
		{"store failure", "3", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewRecordHandler(&mockRecordService{
				getFunc: func(ctx context.Context, ws string, id int) (*model.Record, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return sampleRecord(id), nil
				},
			})
			req := wsRequest("GET", "/api/records/"+tt.id, "")
			req.SetPathValue("id", tt.id)
			rec := httptest.NewRecorder()

			h.Get(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, rec.Code)
			}
		})
	}
}

func TestRecordHandler_Create_Success(t *testing.T) {
	var got service.RecordInput
	h := NewRecordHandler(&mockRecordService{
		createFunc: func(ctx context.Context, ws string, in service.RecordInput) (*model.Record, error) {
			got = in
			return sampleRecord(11), nil
		},
	})
	body := `{"business":"Business A","category":"Resource","functions":["Development"],"location":"Onshore","count":5}`
	rec := httptest.NewRecorder()

	h.Create(rec, wsRequest("POST", "/api/records", body))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if got.Business != "Business A" || got.Count != 5 || got.Location != "Onshore" {
		t.Errorf("unexpected input: %+v", got)
	}
	resp := decodeBody(t, rec)
	if resp["id"] != float64(11) {
		t.Errorf("expected id 11, got %v", resp["id"])
	}
}

func TestRecordHandler_Create_InvalidJSON(t *testing.T) {
	h := NewRecordHandler(&mockRecordService{})
	rec := httptest.NewRecorder()

	h.Create(rec, wsRequest("POST", "/api/records", "{"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "invalid_json" {
		t.Errorf("expected invalid_json, got %v", body["error"])
	}
}

func TestRecordHandler_Create_ValidationFields(t *testing.T) {
	h := NewRecordHandler(&mockRecordService{
		createFunc: func(ctx context.Context, ws string, in service.RecordInput) (*model.Record, error) {
			return nil, &service.ValidationError{Fields: map[string]string{"location": "required_if"}}
		},
	})
	rec := httptest.NewRecorder()

	h.Create(rec, wsRequest("POST", "/api/records", `{"business":"Business A"}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "invalid_input" {
		t.Errorf("expected invalid_input, got %v", body["error"])
	}
	fields, _ := body["fields"].(map[string]any)
	if fields["location"] != "required_if" {
		t.Errorf("expected location field error, got %v", body["fields"])
	}
}

func TestRecordHandler_Create_UnknownBusiness(t *testing.T) {
	h := NewRecordHandler(&mockRecordService{
		createFunc: func(ctx context.Context, ws string, in service.RecordInput) (*model.Record, error) {
			return nil, fmt.Errorf("%w: %q", service.ErrUnknownBusiness, in.Business)
		},
	})
	rec := httptest.NewRecorder()

	h.Create(rec, wsRequest("POST", "/api/records", `{"business":"Nowhere"}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "unknown_business" {
		t.Errorf("expected unknown_business, got %v", body["error"])
	}
}

func TestRecordHandler_Update(t *testing.T) {
	var gotID int
	var gotPatch service.RecordPatch
	h := NewRecordHandler(&mockRecordService{
		updateFunc: func(ctx context.Context, ws string, id int, patch service.RecordPatch) (*model.Record, error) {
			gotID, gotPatch = id, patch
			return sampleRecord(id), nil
		},
	})
	req := wsRequest("PATCH", "/api/records/4", `{"count":3}`)
	req.SetPathValue("id", "4")
	rec := httptest.NewRecorder()

	h.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotID != 4 || gotPatch.Count == nil || *gotPatch.Count != 3 {
		t.Errorf("unexpected update: id=%d patch=%+v", gotID, gotPatch)
	}
	if gotPatch.Location != nil {
		t.Error("absent fields must stay nil")
	}
}

func TestRecordHandler_Delete(t *testing.T) {
	deleted := 0
	h := NewRecordHandler(&mockRecordService{
		deleteFunc: func(ctx context.Context, ws string, id int) error {
			if id == 99 {
				return service.ErrRecordNotFound
			}
			deleted = id
			return nil
		},
	})

	req := wsRequest("DELETE", "/api/records/2", "")
	req.SetPathValue("id", "2")
	rec := httptest.NewRecorder()
	h.Delete(rec, req)
	if rec.Code != http.StatusOK || deleted != 2 {
		t.Errorf("expected record 2 deleted with 200, got %d (deleted=%d)", rec.Code, deleted)
	}

	req = wsRequest("DELETE", "/api/records/99", "")
	req.SetPathValue("id", "99")
	rec = httptest.NewRecorder()
	h.Delete(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "record_not_found" {
		t.Errorf("expected record_not_found, got %v", body["error"])
	}
}
