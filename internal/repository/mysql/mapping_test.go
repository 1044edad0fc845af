package mysql

import (
	"testing"
	"time"

	"github.com/rpattn/klinik/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var _ repository.Store = (*store)(nil)
var _ repository.Tx = (*sqlTx)(nil)
var _ repository.LabTestRepository = (*labTestRepository)(nil)
var _ repository.ImportLogRepository = (*importLogRepository)(nil)

func TestLabTestRowToDomain(t *testing.T) {
	dept := uuid.New()
	unit := "mg/dL"
	now := time.Now()

	row := labTestRow{
		ID:           uuid.New(),
		CompanyID:    uuid.New(),
		PlantID:      uuid.New(),
		DepartmentID: &dept,
		Name:         "Glukosa Puasa",
		Unit:         &unit,
		Price:        decimal.RequireFromString("45000.00"),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	test := row.toDomain()
	if test.Scope.CompanyID != row.CompanyID || test.Scope.PlantID != row.PlantID {
		t.Fatalf("scope not mapped: %+v", test.Scope)
	}
	if test.DepartmentID == nil || *test.DepartmentID != dept {
		t.Fatalf("department not mapped")
	}
	if test.Method != nil {
		t.Fatalf("expected absent method")
	}
	if !test.Price.Equal(decimal.NewFromInt(45000)) || !test.IsActive {
		t.Fatalf("unexpected mapping %+v", test)
	}
}

func TestDiagnosisRowToDomain(t *testing.T) {
	actor := uuid.New()
	row := diagnosisRow{ID: uuid.New(), Code: "J06.9", Name: "ISPA", CreatedBy: actor, UpdatedBy: actor}

	d := row.toDomain()
	if d.Code != "J06.9" || d.CreatedBy != actor || d.Description != nil {
		t.Fatalf("unexpected mapping %+v", d)
	}
}
