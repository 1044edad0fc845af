package domain

import "github.com/google/uuid"

// Department is a clinic unit, unique by name within its scope.
type Department struct {
	ID          uuid.UUID `json:"id"`
	Scope       Scope     `json:"scope"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Audit
}

// NewDepartment creates a new active department
func NewDepartment(scope Scope, name string, description *string, actor uuid.UUID) Department {
	return Department{
		ID:          uuid.New(),
		Scope:       scope,
		Name:        name,
		Description: copyString(description),
		Audit:       newAudit(actor),
	}
}

// WithDescription returns a new department with updated description
func (d Department) WithDescription(description *string, actor uuid.UUID) Department {
	return Department{
		ID:          d.ID,
		Scope:       d.Scope,
		Name:        d.Name,
		Description: copyString(description),
		Audit:       d.Audit.touched(actor),
	}
}
