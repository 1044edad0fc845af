package importer

import (
	"context"
	"errors"

	"github.com/rpattn/klinik/internal/domain"
	"github.com/rpattn/klinik/internal/repository"
	"github.com/rpattn/klinik/pkg/validator"

	"github.com/google/uuid"
)

// DiagnosisRecord is a validated row of the diagnosis sheet.
type DiagnosisRecord struct {
	Code        string
	Name        string
	Description *string
}

// DiagnosisKind imports diagnoses keyed globally by code.
func DiagnosisKind() *Kind[DiagnosisRecord] {
	return &Kind[DiagnosisRecord]{
		Code:     "diagnosa",
		Label:    "Diagnosa",
		KeyField: "kode",
		Validator: validator.NewRowValidator(
			validator.FieldDefinition{Name: "kode", Type: validator.FieldTypeString, Required: true, MaxLength: 50,
				Description: "Kode diagnosa (ICD-10), unik", Example: "A09"},
			validator.FieldDefinition{Name: "nama", Type: validator.FieldTypeString, Required: true, MaxLength: 300,
				Description: "Nama diagnosa", Example: "Diare dan gastroenteritis"},
			validator.FieldDefinition{Name: "deskripsi", Type: validator.FieldTypeString, MaxLength: 1000,
				Description: "Keterangan tambahan", Example: "Diduga infeksi"},
		),
		Decode: func(v validator.ValidationResult) DiagnosisRecord {
			return DiagnosisRecord{
				Code:        v.String("kode"),
				Name:        v.String("nama"),
				Description: v.OptionalString("deskripsi"),
			}
		},
		NaturalKey: func(r DiagnosisRecord) string { return r.Code },
		Reconcile:  reconcileDiagnosis,
	}
}

func reconcileDiagnosis(ctx context.Context, rc *RunContext, repos repository.Repositories, r DiagnosisRecord) (Action, uuid.UUID, error) {
	existing, err := repos.Diagnoses.FindByCode(ctx, r.Code)
	switch {
	case err == nil:
		updated := existing.WithDetails(r.Name, r.Description, rc.Actor)
		if err := repos.Diagnoses.Update(ctx, updated); err != nil {
			return 0, uuid.Nil, err
		}
		return ActionUpdated, updated.ID, nil
	case errors.Is(err, repository.ErrNotFound):
		created := domain.NewDiagnosis(r.Code, r.Name, r.Description, rc.Actor)
		if err := repos.Diagnoses.Create(ctx, created); err != nil {
			return 0, uuid.Nil, err
		}
		return ActionCreated, created.ID, nil
	default:
		return 0, uuid.Nil, err
	}
}
