package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReferenceType tags which population a reference range applies to.
type ReferenceType string

const (
	ReferenceUniversal ReferenceType = "universal"
	ReferenceMale      ReferenceType = "male"
	ReferenceFemale    ReferenceType = "female"
)

// LabTestDetails holds the columns of a lab test that may change after creation.
type LabTestDetails struct {
	DepartmentID *uuid.UUID
	Unit         *string
	Method       *string
	Price        decimal.Decimal
}

// LabTest is an orderable laboratory examination, unique by name within its scope.
type LabTest struct {
	ID           uuid.UUID       `json:"id"`
	Scope        Scope           `json:"scope"`
	DepartmentID *uuid.UUID      `json:"department_id,omitempty"`
	Name         string          `json:"name"`
	Unit         *string         `json:"unit,omitempty"`
	Method       *string         `json:"method,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Audit
}

// ReferenceRange is a normal-value range attached to a lab test.
type ReferenceRange struct {
	ID        uuid.UUID     `json:"id"`
	LabTestID uuid.UUID     `json:"lab_test_id"`
	Type      ReferenceType `json:"type"`
	Value     string        `json:"value"`
	CreatedAt time.Time     `json:"created_at"`
}

// NewLabTest creates a new active lab test
func NewLabTest(scope Scope, name string, details LabTestDetails, actor uuid.UUID) LabTest {
	return LabTest{
		ID:           uuid.New(),
		Scope:        scope,
		DepartmentID: copyUUID(details.DepartmentID),
		Name:         name,
		Unit:         copyString(details.Unit),
		Method:       copyString(details.Method),
		Price:        details.Price,
		Audit:        newAudit(actor),
	}
}

// WithDetails returns a new lab test with the mutable columns replaced
func (t LabTest) WithDetails(details LabTestDetails, actor uuid.UUID) LabTest {
	return LabTest{
		ID:           t.ID,
		Scope:        t.Scope,
		DepartmentID: copyUUID(details.DepartmentID),
		Name:         t.Name,
		Unit:         copyString(details.Unit),
		Method:       copyString(details.Method),
		Price:        details.Price,
		Audit:        t.Audit.touched(actor),
	}
}

// NewReferenceRange creates a reference range row for a lab test
func NewReferenceRange(labTestID uuid.UUID, typ ReferenceType, value string) ReferenceRange {
	return ReferenceRange{
		ID:        uuid.New(),
		LabTestID: labTestID,
		Type:      typ,
		Value:     value,
		CreatedAt: time.Now(),
	}
}

func copyUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
