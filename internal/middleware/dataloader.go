package middleware

import (
	"context"
	"net/http"

	"github.com/rpattn/klinik/internal/entityloader"
	"github.com/rpattn/klinik/internal/repository"
)

type ctxKey string

const referenceRangeLoaderKey ctxKey = "referenceRangeLoader"

// DataLoaderMiddleware attaches a fresh reference range loader to every request
func DataLoaderMiddleware(repo repository.LabTestRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loader := entityloader.NewReferenceRangeLoader(repo)
			ctx := context.WithValue(r.Context(), referenceRangeLoaderKey, loader)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ReferenceRangeLoaderFromContext retrieves the loader from context
func ReferenceRangeLoaderFromContext(ctx context.Context) *entityloader.ReferenceRangeLoader {
	if l, ok := ctx.Value(referenceRangeLoaderKey).(*entityloader.ReferenceRangeLoader); ok {
		return l
	}
	return nil
}
