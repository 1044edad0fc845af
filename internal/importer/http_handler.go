package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rpattn/klinik/internal/auth"
	"github.com/rpattn/klinik/internal/domain"
	"github.com/rpattn/klinik/internal/logging"
	"github.com/rpattn/klinik/internal/repository"

	"github.com/go-chi/chi/v5"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// uploadExtensions are the formats accepted over HTTP. CSV stays a CLI format.
var uploadExtensions = map[string]bool{".xlsx": true, ".xls": true}

// HandlerConfig bounds uploads.
type HandlerConfig struct {
	MaxUploadBytes int64
	UploadDir      string
}

// Handler exposes imports, templates and the audit trail over HTTP.
type Handler struct {
	service *Service
	logs    repository.ImportLogRepository
	cfg     HandlerConfig
}

// NewHTTPHandler wraps the service.
func NewHTTPHandler(service *Service, logs repository.ImportLogRepository, cfg HandlerConfig) *Handler {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = os.TempDir()
	}
	return &Handler{service: service, logs: logs, cfg: cfg}
}

// Routes mounts the import endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/logs", h.ListLogs)
	r.Post("/{kind}", h.Upload)
	r.Get("/{kind}/template", h.Template)
}

// Upload handles POST /{kind} with a multipart "file" field.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "identity required")
		return
	}

	kind := chi.URLParam(r, "kind")
	if _, ok := h.service.Registry().Get(kind); !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown import kind %q", kind))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", h.cfg.MaxUploadBytes))
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid form data: %v", err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("file required: %v", err))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !uploadExtensions[ext] {
		writeError(w, http.StatusUnsupportedMediaType, "only .xlsx and .xls files are accepted")
		return
	}

	path, err := h.spool(file, ext)
	if err != nil {
		logging.FromContext(r.Context()).Error().Err(err).Msg("failed to store upload")
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	dryRun, _ := strconv.ParseBool(r.FormValue("dryRun"))

	report, err := h.service.Import(r.Context(), Request{
		Kind:       kind,
		FilePath:   path,
		FileName:   header.Filename,
		Scope:      identity.Scope,
		Actor:      identity.UserID,
		RemoveFile: true,
		DryRun:     dryRun,
	})
	switch {
	case errors.Is(err, ErrSourceUnreadable), errors.Is(err, ErrEmptyDataset), errors.Is(err, ErrTooManyRows):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, report)
	case report.Succeeded():
		writeJSON(w, http.StatusOK, report)
	default:
		writeJSON(w, http.StatusUnprocessableEntity, report)
	}
}

// spool copies the upload to a temp file the reader can reopen by path.
func (h *Handler) spool(src io.Reader, ext string) (string, error) {
	dst, err := os.CreateTemp(h.cfg.UploadDir, "import-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return dst.Name(), nil
}

// Template handles GET /{kind}/template.
func (h *Handler) Template(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	data, err := h.service.ExportTemplate(kind)
	if errors.Is(err, ErrUnknownKind) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		logging.FromContext(r.Context()).Error().Err(err).Str("kind", kind).Msg("failed to build template")
		writeError(w, http.StatusInternalServerError, "failed to build template")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", TemplateFileName(kind)))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ListLogs handles GET /logs?kind=&limit=&offset= for the caller's scope.
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "identity required")
		return
	}

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	entries, err := h.logs.List(r.Context(), identity.Scope, strings.TrimSpace(q.Get("kind")), limit, offset)
	if err != nil {
		logging.FromContext(r.Context()).Error().Err(err).Msg("failed to list import logs")
		writeError(w, http.StatusInternalServerError, "failed to list import logs")
		return
	}
	if entries == nil {
		entries = []domain.ImportLogEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
