package importer

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/rpattn/klinik/internal/auth"
	"github.com/rpattn/klinik/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

type handlerFixture struct {
	store     *memStore
	uploadDir string
	identity  auth.Identity
	router    http.Handler
}

func newHandlerFixture(t *testing.T, maxBytes int64) *handlerFixture {
	t.Helper()

	fx := &handlerFixture{
		store:     newMemStore(),
		uploadDir: t.TempDir(),
		identity:  auth.Identity{UserID: uuid.New(), Scope: testScope()},
	}
	h := NewHTTPHandler(newTestService(fx.store), fx.store.ImportLogs(), HandlerConfig{
		MaxUploadBytes: maxBytes,
		UploadDir:      fx.uploadDir,
	})

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.ContextWithIdentity(r.Context(), fx.identity)))
		})
	})
	r.Route("/api/imports", h.Routes)
	fx.router = r
	return fx
}

func (fx *handlerFixture) upload(t *testing.T, kind, filename string, data []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/imports/"+kind, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)
	return rec
}

func readFixture(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return data
}

func decodeReport(t *testing.T, rec *httptest.ResponseRecorder) Report {
	t.Helper()
	var report Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v (%s)", err, rec.Body.String())
	}
	return report
}

func TestUploadSucceeds(t *testing.T) {
	fx := newHandlerFixture(t, 10<<20)
	data := readFixture(t, writeWorkbook(t, diagnosisHeaders, []string{"A00", "Kolera", ""}))

	rec := fx.upload(t, "diagnosa", "diagnosa.xlsx", data, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	report := decodeReport(t, rec)
	if report.Created != 1 || report.TotalRows != 1 || report.Status != StatusSucceeded {
		t.Fatalf("unexpected report %+v", report)
	}

	entries, err := os.ReadDir(fx.uploadDir)
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected spooled upload to be removed, found %d files", len(entries))
	}

	if len(fx.store.logs) != 1 || fx.store.logs[0].FileName != "diagnosa.xlsx" || fx.store.logs[0].ActorID != fx.identity.UserID {
		t.Fatalf("unexpected audit entries %+v", fx.store.logs)
	}
}

func TestUploadWithRowErrorsIsUnprocessable(t *testing.T) {
	fx := newHandlerFixture(t, 10<<20)
	data := readFixture(t, writeWorkbook(t, diagnosisHeaders,
		[]string{"J00", "Nasopharyngitis akut", ""},
		[]string{"J01", "", ""},
	))

	rec := fx.upload(t, "diagnosa", "diagnosa.xlsx", data, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	report := decodeReport(t, rec)
	if report.ErrorCount != 1 || report.Errors[0] != "Baris 2: nama wajib diisi" {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestUploadDryRun(t *testing.T) {
	fx := newHandlerFixture(t, 10<<20)
	data := readFixture(t, writeWorkbook(t, diagnosisHeaders, []string{"A00", "Kolera", ""}))

	rec := fx.upload(t, "diagnosa", "diagnosa.xlsx", data, map[string]string{"dryRun": "true"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if report := decodeReport(t, rec); !report.DryRun || report.Created != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(fx.store.committed.diagnoses) != 0 {
		t.Fatalf("dry run must not commit")
	}
}

func TestUploadRejections(t *testing.T) {
	workbook := func(t *testing.T) []byte {
		return readFixture(t, writeWorkbook(t, diagnosisHeaders, []string{"A00", "Kolera", ""}))
	}

	cases := []struct {
		name     string
		kind     string
		filename string
		data     func(t *testing.T) []byte
		maxBytes int64
		want     int
	}{
		{"unknown kind", "pasien", "data.xlsx", workbook, 10 << 20, http.StatusNotFound},
		{"wrong extension", "diagnosa", "data.csv", func(*testing.T) []byte { return []byte("kode,nama\nA00,Kolera\n") }, 10 << 20, http.StatusUnsupportedMediaType},
		{"too large", "diagnosa", "data.xlsx", workbook, 512, http.StatusRequestEntityTooLarge},
		{"header only", "diagnosa", "data.xlsx", func(t *testing.T) []byte { return readFixture(t, writeWorkbook(t, diagnosisHeaders)) }, 10 << 20, http.StatusBadRequest},
		{"not a workbook", "diagnosa", "data.xlsx", func(*testing.T) []byte { return []byte("garbage") }, 10 << 20, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newHandlerFixture(t, tc.maxBytes)
			rec := fx.upload(t, tc.kind, tc.filename, tc.data(t), nil)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
			if len(fx.store.committed.diagnoses) != 0 {
				t.Fatalf("rejected upload must not write")
			}
		})
	}
}

func TestTemplateDownload(t *testing.T) {
	fx := newHandlerFixture(t, 10<<20)

	req := httptest.NewRequest(http.MethodGet, "/api/imports/laboratorium/template", nil)
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="template_import_laboratorium.xlsx"` {
		t.Fatalf("unexpected content disposition %q", cd)
	}

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("open template: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Laboratorium")
	if err != nil {
		t.Fatalf("read template rows: %v", err)
	}
	if len(rows) < 1 || len(rows[0]) != len(labHeaders) || rows[0][0] != "nama" || rows[0][4] != "harga" {
		t.Fatalf("unexpected template header %v", rows)
	}

	missing := httptest.NewRecorder()
	fx.router.ServeHTTP(missing, httptest.NewRequest(http.MethodGet, "/api/imports/pasien/template", nil))
	if missing.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown template, got %d", missing.Code)
	}
}

func TestListLogsIsScoped(t *testing.T) {
	fx := newHandlerFixture(t, 10<<20)
	other := testScope()
	fx.store.logs = []domain.ImportLogEntry{
		{ID: uuid.New(), Kind: "diagnosa", Scope: fx.identity.Scope, Status: "succeeded"},
		{ID: uuid.New(), Kind: "inventory", Scope: fx.identity.Scope, Status: "failed"},
		{ID: uuid.New(), Kind: "diagnosa", Scope: other, Status: "succeeded"},
	}

	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/imports/logs?kind=diagnosa", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var entries []domain.ImportLogEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode entries: %v", err)
	}
	if len(entries) != 1 || entries[0].Kind != "diagnosa" || entries[0].Scope != fx.identity.Scope {
		t.Fatalf("unexpected entries %+v", entries)
	}
}
