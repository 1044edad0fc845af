package importer

import (
	"context"
	"errors"

	"github.com/rpattn/klinik/internal/domain"
	"github.com/rpattn/klinik/internal/repository"
	"github.com/rpattn/klinik/pkg/validator"

	"github.com/google/uuid"
)

// DepartmentRecord is a validated row of the department sheet.
type DepartmentRecord struct {
	Name        string
	Description *string
}

// DepartmentKind imports departments keyed by name within the tenant.
func DepartmentKind() *Kind[DepartmentRecord] {
	return &Kind[DepartmentRecord]{
		Code:     "departemen",
		Label:    "Departemen",
		KeyField: "nama",
		Validator: validator.NewRowValidator(
			validator.FieldDefinition{Name: "nama", Type: validator.FieldTypeString, Required: true, MaxLength: 100,
				Description: "Nama departemen, unik per klinik", Example: "Poli Umum"},
			validator.FieldDefinition{Name: "deskripsi", Type: validator.FieldTypeString, MaxLength: 300,
				Description: "Keterangan tambahan", Example: "Pelayanan dokter umum"},
		),
		Decode: func(v validator.ValidationResult) DepartmentRecord {
			return DepartmentRecord{
				Name:        v.String("nama"),
				Description: v.OptionalString("deskripsi"),
			}
		},
		NaturalKey: func(r DepartmentRecord) string { return domain.NameKey(r.Name) },
		Reconcile:  reconcileDepartment,
	}
}

func reconcileDepartment(ctx context.Context, rc *RunContext, repos repository.Repositories, r DepartmentRecord) (Action, uuid.UUID, error) {
	existing, err := repos.Departments.FindByName(ctx, rc.Scope, r.Name)
	switch {
	case err == nil:
		updated := existing.WithDescription(r.Description, rc.Actor)
		if err := repos.Departments.Update(ctx, updated); err != nil {
			return 0, uuid.Nil, err
		}
		return ActionUpdated, updated.ID, nil
	case errors.Is(err, repository.ErrNotFound):
		created := domain.NewDepartment(rc.Scope, r.Name, r.Description, rc.Actor)
		if err := repos.Departments.Create(ctx, created); err != nil {
			return 0, uuid.Nil, err
		}
		return ActionCreated, created.ID, nil
	default:
		return 0, uuid.Nil, err
	}
}
