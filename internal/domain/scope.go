package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Scope identifies the tenant (company + plant) a record belongs to.
type Scope struct {
	CompanyID uuid.UUID `json:"company_id"`
	PlantID   uuid.UUID `json:"plant_id"`
}

// Audit carries the bookkeeping columns shared by every master-data record.
type Audit struct {
	IsActive  bool      `json:"is_active"`
	CreatedBy uuid.UUID `json:"created_by"`
	UpdatedBy uuid.UUID `json:"updated_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newAudit(actor uuid.UUID) Audit {
	now := time.Now()
	return Audit{
		IsActive:  true,
		CreatedBy: actor,
		UpdatedBy: actor,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// touched returns a copy stamped as modified by actor. Creation columns are kept.
func (a Audit) touched(actor uuid.UUID) Audit {
	return Audit{
		IsActive:  a.IsActive,
		CreatedBy: a.CreatedBy,
		UpdatedBy: actor,
		CreatedAt: a.CreatedAt,
		UpdatedAt: time.Now(),
	}
}

// NameKey normalizes a scoped natural key for comparison.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// copyString detaches an optional value from the caller's pointer.
func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
