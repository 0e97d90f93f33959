package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/costplan/backend/internal/service"
	"github.com/costplan/backend/internal/storage"
	"github.com/costplan/backend/internal/workbook"
)

// WorkbookHandler moves whole plans in and out of .xlsx files.
type WorkbookHandler struct {
	svc      service.WorkbookService
	maxBytes int64
	now      func() time.Time
}

// NewWorkbookHandler creates a WorkbookHandler. Uploads larger than maxBytes
// are rejected.
func NewWorkbookHandler(svc service.WorkbookService, maxBytes int64) *WorkbookHandler {
	return &WorkbookHandler{svc: svc, maxBytes: maxBytes, now: time.Now}
}

// Export handles GET /api/workbook
func (h *WorkbookHandler) Export(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	data, err := h.svc.Export(r.Context(), ws)
	if err != nil {
		writeServiceError(w, err, "export_failed", "workspace", ws)
		return
	}

	name := workbook.FileName(h.now())
	w.Header().Set("Content-Type", workbook.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

// Import handles POST /api/workbook. The workbook is read from the "file"
// field of a multipart form, or from the raw body otherwise.
func (h *WorkbookHandler) Import(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	var body io.Reader = r.Body
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "multipart/form-data" {
		file, _, err := r.FormFile("file")
		if err != nil {
			if tooLarge(err) {
				writeError(w, http.StatusRequestEntityTooLarge, "file_too_large")
				return
			}
			writeError(w, http.StatusBadRequest, "file_required")
			return
		}
		defer file.Close()
		body = file
	}

	rep, err := h.svc.Import(r.Context(), ws, body)
	if err != nil {
		if tooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "file_too_large")
			return
		}
		writeServiceError(w, err, "import_failed", "workspace", ws)
		return
	}
	if rep.Warnings == nil {
		rep.Warnings = []string{}
	}
	writeJSON(w, http.StatusOK, rep)
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// Snapshot handles POST /api/workbook/snapshots
func (h *WorkbookHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	obj, err := h.svc.Snapshot(r.Context(), ws)
	if err != nil {
		writeServiceError(w, err, "snapshot_failed", "workspace", ws)
		return
	}
	writeJSON(w, http.StatusCreated, obj)
}

// Snapshots handles GET /api/workbook/snapshots
func (h *WorkbookHandler) Snapshots(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	objs, err := h.svc.Snapshots(r.Context(), ws)
	if err != nil {
		writeServiceError(w, err, "list_failed", "workspace", ws)
		return
	}
	if objs == nil {
		objs = []storage.Object{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"snapshots": objs})
}

// DeleteSnapshot handles DELETE /api/workbook/snapshots/{name}
func (h *WorkbookHandler) DeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	name := r.PathValue("name")
	if err := h.svc.DeleteSnapshot(r.Context(), ws, name); err != nil {
		if errors.Is(err, storage.ErrInvalidKey) {
			writeError(w, http.StatusBadRequest, "invalid_name")
			return
		}
		writeServiceError(w, err, "delete_failed", "workspace", ws, "name", name)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// LoadSample handles POST /api/workbook/sample
func (h *WorkbookHandler) LoadSample(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	if err := h.svc.LoadSample(r.Context(), ws); err != nil {
		writeServiceError(w, err, "sample_failed", "workspace", ws)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Reset handles DELETE /api/workbook. The workspace starts over from defaults.
func (h *WorkbookHandler) Reset(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	if err := h.svc.Reset(r.Context(), ws); err != nil {
		writeServiceError(w, err, "reset_failed", "workspace", ws)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
