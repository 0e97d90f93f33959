package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/costplan/backend/internal/model"
	"github.com/costplan/backend/internal/service"
)

func TestAssumptionHandler_Get(t *testing.T) {
	h := NewAssumptionHandler(&mockAssumptionService{
		getFunc: func(ctx context.Context, ws string) (*service.Settings, error) {
			return &service.Settings{
				Businesses: model.DefaultBusinesses(),
				Rates:      model.DefaultAssumptions(),
				Functions:  model.DefaultFunctions(),
			}, nil
		},
	})
	rec := httptest.NewRecorder()

	h.Get(rec, wsRequest("GET", "/api/assumptions", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	rates, _ := body["rates"].(map[string]any)
	if _, ok := rates["Business A"]; !ok {
		t.Errorf("expected Business A rates, got %v", body["rates"])
	}
}

func TestAssumptionHandler_UpdateRates(t *testing.T) {
	var gotBusiness string
	var gotRates model.BusinessRates
	h := NewAssumptionHandler(&mockAssumptionService{
		updateRatesFunc: func(ctx context.Context, ws, business string, rates model.BusinessRates) (int, error) {
			gotBusiness, gotRates = business, rates
			return 4, nil
		},
	})
	req := wsRequest("PUT", "/api/assumptions/Business%20A",
		`{"locations":{"Onshore":"110000","Offshore":45000},"implementation":{"Rebadge":16000}}`)
	req.SetPathValue("business", "Business A")
	rec := httptest.NewRecorder()

	h.UpdateRates(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotBusiness != "Business A" {
		t.Errorf("expected Business A, got %q", gotBusiness)
	}
	if v := gotRates.Locations[model.Onshore]; v.String() != "110000" {
		t.Errorf("expected onshore 110000, got %s", v)
	}
	if body := decodeBody(t, rec); body["repriced"] != float64(4) {
		t.Errorf("expected repriced 4, got %v", body["repriced"])
	}
}

func TestAssumptionHandler_UpdateRates_Invalid(t *testing.T) {
	h := NewAssumptionHandler(&mockAssumptionService{
		updateRatesFunc: func(ctx context.Context, ws, business string, rates model.BusinessRates) (int, error) {
			return 0, &service.ValidationError{Fields: map[string]string{"locations.Offshore": "required"}}
		},
	})
	req := wsRequest("PUT", "/api/assumptions/Business%20A", `{"locations":{"Onshore":1}}`)
	req.SetPathValue("business", "Business A")
	rec := httptest.NewRecorder()

	h.UpdateRates(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestAssumptionHandler_RenameBusiness(t *testing.T) {
	var gotKey, gotDisplay string
	h := NewAssumptionHandler(&mockAssumptionService{
		renameBusinessFunc: func(ctx context.Context, ws, key, display string) error {
			if key != "Business A" {
				return fmt.Errorf("%w: %q", service.ErrUnknownBusiness, key)
			}
			gotKey, gotDisplay = key, display
			return nil
		},
	})

	req := wsRequest("PUT", "/api/businesses/Business%20A", `{"display_name":"Retail"}`)
	req.SetPathValue("key", "Business A")
	rec := httptest.NewRecorder()
	h.RenameBusiness(rec, req)
	if rec.Code != http.StatusOK || gotKey != "Business A" || gotDisplay != "Retail" {
		t.Errorf("expected rename with 200, got %d (%q -> %q)", rec.Code, gotKey, gotDisplay)
	}

	req = wsRequest("PUT", "/api/businesses/Business%20A", `{"display_name":"  "}`)
	req.SetPathValue("key", "Business A")
	rec = httptest.NewRecorder()
	h.RenameBusiness(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for blank display name, got %d", rec.Code)
	}

	req = wsRequest("PUT", "/api/businesses/Nope", `{"display_name":"X"}`)
	req.SetPathValue("key", "Nope")
	rec = httptest.NewRecorder()
	h.RenameBusiness(rec, req)
	if body := decodeBody(t, rec); body["error"] != "unknown_business" {
		t.Errorf("expected unknown_business, got %v", body["error"])
	}
}

func TestAssumptionHandler_FunctionCatalog(t *testing.T) {
	catalog := []string{"Development", "Unassigned"}
	h := NewAssumptionHandler(&mockAssumptionService{
		functionsFunc: func(ctx context.Context, ws string) ([]string, error) {
			return catalog, nil
		},
		addFunctionFunc: func(ctx context.Context, ws, name string) error {
			catalog = append(catalog, name)
			return nil
		},
		renameFunctionFunc: func(ctx context.Context, ws, from, to string) error {
			for i, n := range catalog {
				if n == from {
					catalog[i] = to
					return nil
				}
			}
			return fmt.Errorf("function %q: %w", from, service.ErrNotFound)
		},
		removeFunctionFunc: func(ctx context.Context, ws, name string) error {
			if name == model.UnassignedFunction {
				return fmt.Errorf("%w: cannot remove", service.ErrInvalidInput)
			}
			return nil
		},
	})

	rec := httptest.NewRecorder()
	h.AddFunction(rec, wsRequest("POST", "/api/functions", `{"name":"Operations"}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("add: expected 201, got %d", rec.Code)
	}

	req := wsRequest("PUT", "/api/functions/Development", `{"name":"Engineering"}`)
	req.SetPathValue("name", "Development")
	rec = httptest.NewRecorder()
	h.RenameFunction(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("rename: expected 200, got %d", rec.Code)
	}

	req = wsRequest("PUT", "/api/functions/Missing", `{"name":"Other"}`)
	req.SetPathValue("name", "Missing")
	rec = httptest.NewRecorder()
	h.RenameFunction(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("rename missing: expected 404, got %d", rec.Code)
	}

	req = wsRequest("DELETE", "/api/functions/Unassigned", "")
	req.SetPathValue("name", "Unassigned")
	rec = httptest.NewRecorder()
	h.RemoveFunction(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("remove Unassigned: expected 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Functions(rec, wsRequest("GET", "/api/functions", ""))
	names, _ := decodeBody(t, rec)["functions"].([]any)
	want := []string{"Engineering", "Unassigned", "Operations"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i, n := range want {
		if names[i] != n {
			t.Errorf("functions[%d]: expected %s, got %v", i, n, names[i])
		}
	}
}
