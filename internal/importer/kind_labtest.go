package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/rpattn/klinik/internal/domain"
	"github.com/rpattn/klinik/internal/repository"
	"github.com/rpattn/klinik/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LabTestRecord is a validated row of the laboratory sheet.
type LabTestRecord struct {
	Name         string
	Department   *string
	DepartmentID *uuid.UUID
	Unit         *string
	Method       *string
	Price        decimal.Decimal
	Ranges       map[domain.ReferenceType]string
}

// referenceColumns maps sheet columns to reference range types, in insert order.
var referenceColumns = []struct {
	column string
	typ    domain.ReferenceType
}{
	{"rujukan_umum", domain.ReferenceUniversal},
	{"rujukan_pria", domain.ReferenceMale},
	{"rujukan_wanita", domain.ReferenceFemale},
}

// LabTestKind imports lab tests keyed by name within the tenant. Reference
// ranges are written only when the test is created.
func LabTestKind() *Kind[LabTestRecord] {
	return &Kind[LabTestRecord]{
		Code:     "laboratorium",
		Label:    "Laboratorium",
		KeyField: "nama",
		Validator: validator.NewRowValidator(
			validator.FieldDefinition{Name: "nama", Type: validator.FieldTypeString, Required: true, MaxLength: 300,
				Description: "Nama pemeriksaan, unik per klinik", Example: "Hemoglobin"},
			validator.FieldDefinition{Name: "departemen", Type: validator.FieldTypeString, MaxLength: 100,
				Description: "Nama departemen yang sudah terdaftar", Example: "Laboratorium"},
			validator.FieldDefinition{Name: "satuan", Type: validator.FieldTypeString, MaxLength: 50,
				Description: "Satuan hasil", Example: "g/dL"},
			validator.FieldDefinition{Name: "metode", Type: validator.FieldTypeString, MaxLength: 100,
				Description: "Metode pemeriksaan", Example: "Cyanmethemoglobin"},
			validator.FieldDefinition{Name: "harga", Type: validator.FieldTypeDecimal, Required: true, NonNegative: true,
				Description: "Tarif pemeriksaan (angka, tidak negatif)", Example: "35000"},
			validator.FieldDefinition{Name: "rujukan_umum", Type: validator.FieldTypeString, MaxLength: 100,
				Description: "Nilai rujukan umum", Example: ""},
			validator.FieldDefinition{Name: "rujukan_pria", Type: validator.FieldTypeString, MaxLength: 100,
				Description: "Nilai rujukan pria", Example: "13-17"},
			validator.FieldDefinition{Name: "rujukan_wanita", Type: validator.FieldTypeString, MaxLength: 100,
				Description: "Nilai rujukan wanita", Example: "12-15"},
		),
		Decode: func(v validator.ValidationResult) LabTestRecord {
			r := LabTestRecord{
				Name:       v.String("nama"),
				Department: v.OptionalString("departemen"),
				Unit:       v.OptionalString("satuan"),
				Method:     v.OptionalString("metode"),
				Price:      v.Decimal("harga"),
				Ranges:     map[domain.ReferenceType]string{},
			}
			for _, col := range referenceColumns {
				if value := v.OptionalString(col.column); value != nil {
					r.Ranges[col.typ] = *value
				}
			}
			return r
		},
		NaturalKey: func(r LabTestRecord) string { return domain.NameKey(r.Name) },
		Resolve:    resolveLabDepartment,
		Reconcile:  reconcileLabTest,
	}
}

func resolveLabDepartment(ctx context.Context, rc *RunContext, repos repository.Repositories, r *LabTestRecord) (string, error) {
	if r.Department == nil {
		return "", nil
	}

	dept, err := repos.Departments.FindByName(ctx, rc.Scope, *r.Department)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Sprintf("departemen '%s' tidak ditemukan", *r.Department), nil
	}
	if err != nil {
		return "", err
	}

	id := dept.ID
	r.DepartmentID = &id
	return "", nil
}

func reconcileLabTest(ctx context.Context, rc *RunContext, repos repository.Repositories, r LabTestRecord) (Action, uuid.UUID, error) {
	details := domain.LabTestDetails{
		DepartmentID: r.DepartmentID,
		Unit:         r.Unit,
		Method:       r.Method,
		Price:        r.Price,
	}

	existing, err := repos.LabTests.FindByName(ctx, rc.Scope, r.Name)
	switch {
	case err == nil:
		updated := existing.WithDetails(details, rc.Actor)
		if err := repos.LabTests.Update(ctx, updated); err != nil {
			return 0, uuid.Nil, err
		}
		return ActionUpdated, updated.ID, nil
	case errors.Is(err, repository.ErrNotFound):
		created := domain.NewLabTest(rc.Scope, r.Name, details, rc.Actor)
		if err := repos.LabTests.Create(ctx, created); err != nil {
			return 0, uuid.Nil, err
		}

		var ranges []domain.ReferenceRange
		for _, col := range referenceColumns {
			if value, ok := r.Ranges[col.typ]; ok {
				ranges = append(ranges, domain.NewReferenceRange(created.ID, col.typ, value))
			}
		}
		if len(ranges) > 0 {
			if err := repos.LabTests.AddReferenceRanges(ctx, ranges); err != nil {
				return 0, uuid.Nil, err
			}
		}
		return ActionCreated, created.ID, nil
	default:
		return 0, uuid.Nil, err
	}
}
