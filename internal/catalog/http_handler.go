// Package catalog serves read-only views of imported master data.
package catalog

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rpattn/klinik/internal/auth"
	"github.com/rpattn/klinik/internal/domain"
	"github.com/rpattn/klinik/internal/entityloader"
	"github.com/rpattn/klinik/internal/logging"
	"github.com/rpattn/klinik/internal/middleware"
	"github.com/rpattn/klinik/internal/repository"

	"github.com/google/uuid"
)

// LabTestView is a lab test with its reference ranges.
type LabTestView struct {
	domain.LabTest
	ReferenceRanges []domain.ReferenceRange `json:"reference_ranges"`
}

type Handler struct {
	labTests repository.LabTestRepository
}

func NewHandler(labTests repository.LabTestRepository) *Handler {
	return &Handler{labTests: labTests}
}

// ListLabTests handles GET /lab-tests?limit=&offset= for the caller's scope.
func (h *Handler) ListLabTests(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "identity required"})
		return
	}

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	logger := logging.FromContext(r.Context())

	tests, err := h.labTests.List(r.Context(), identity.Scope, limit, offset)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list lab tests")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list lab tests"})
		return
	}

	loader := middleware.ReferenceRangeLoaderFromContext(r.Context())
	if loader == nil {
		loader = entityloader.NewReferenceRangeLoader(h.labTests)
	}

	ids := make([]uuid.UUID, len(tests))
	for i, t := range tests {
		ids[i] = t.ID
	}
	ranges, err := loader.LoadAll(r.Context(), ids)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load reference ranges")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load reference ranges"})
		return
	}

	views := make([]LabTestView, len(tests))
	for i, t := range tests {
		views[i] = LabTestView{LabTest: t, ReferenceRanges: ranges[t.ID]}
		if views[i].ReferenceRanges == nil {
			views[i].ReferenceRanges = []domain.ReferenceRange{}
		}
	}
	writeJSON(w, http.StatusOK, views)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
