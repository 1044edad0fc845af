package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rpattn/klinik/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Headers read by the development identity middleware.
const (
	HeaderUserID    = "X-User-ID"
	HeaderCompanyID = "X-Company-ID"
	HeaderPlantID   = "X-Plant-ID"
)

// Claims carries the tenant of the bearer. Subject is the user id.
type Claims struct {
	jwt.RegisteredClaims
	CompanyID string `json:"company_id"`
	PlantID   string `json:"plant_id"`
}

// Identity converts the string claims into ids.
func (c Claims) Identity() (Identity, error) {
	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid subject: %w", err)
	}
	companyID, err := uuid.Parse(c.CompanyID)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid company_id: %w", err)
	}
	plantID, err := uuid.Parse(c.PlantID)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid plant_id: %w", err)
	}
	return Identity{UserID: userID, Scope: domain.Scope{CompanyID: companyID, PlantID: plantID}}, nil
}

// JWTMiddleware requires an HS256 bearer token signed with signingKey.
func JWTMiddleware(signingKey []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				unauthorized(w, "invalid authorization format")
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
				return signingKey, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				unauthorized(w, "invalid token")
				return
			}

			identity, err := claims.Identity()
			if err != nil {
				unauthorized(w, err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
		})
	}
}

// HeaderMiddleware takes the identity from plain request headers. Development only.
func HeaderMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := identityFromHeaders(r.Header)
			if err != nil {
				unauthorized(w, err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
		})
	}
}

func identityFromHeaders(h http.Header) (Identity, error) {
	var identity Identity
	for _, field := range []struct {
		header string
		dest   *uuid.UUID
	}{
		{HeaderUserID, &identity.UserID},
		{HeaderCompanyID, &identity.Scope.CompanyID},
		{HeaderPlantID, &identity.Scope.PlantID},
	} {
		id, err := uuid.Parse(strings.TrimSpace(h.Get(field.header)))
		if err != nil {
			return Identity{}, fmt.Errorf("invalid %s header", field.header)
		}
		*field.dest = id
	}
	return identity, nil
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
