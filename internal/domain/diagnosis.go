package domain

import "github.com/google/uuid"

// Diagnosis is a coded diagnosis entry. Code is unique across all tenants.
type Diagnosis struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Audit
}

// NewDiagnosis creates a new active diagnosis owned by actor
func NewDiagnosis(code, name string, description *string, actor uuid.UUID) Diagnosis {
	return Diagnosis{
		ID:          uuid.New(),
		Code:        code,
		Name:        name,
		Description: copyString(description),
		Audit:       newAudit(actor),
	}
}

// WithDetails returns a new diagnosis with updated name and description
func (d Diagnosis) WithDetails(name string, description *string, actor uuid.UUID) Diagnosis {
	return Diagnosis{
		ID:          d.ID,
		Code:        d.Code,
		Name:        name,
		Description: copyString(description),
		Audit:       d.Audit.touched(actor),
	}
}
