package importer

import (
	"context"
	"errors"

	"github.com/rpattn/klinik/internal/domain"
	"github.com/rpattn/klinik/internal/repository"
	"github.com/rpattn/klinik/pkg/validator"

	"github.com/google/uuid"
)

// InventoryRecord is a validated row of the inventory sheet.
type InventoryRecord struct {
	Name    string
	Details domain.InventoryDetails
}

// InventoryKind imports stock items keyed by name within the tenant.
func InventoryKind() *Kind[InventoryRecord] {
	return &Kind[InventoryRecord]{
		Code:     "inventory",
		Label:    "Inventory",
		KeyField: "nama",
		Validator: validator.NewRowValidator(
			validator.FieldDefinition{Name: "nama", Type: validator.FieldTypeString, Required: true, MaxLength: 300,
				Description: "Nama barang, unik per klinik", Example: "Paracetamol 500 mg"},
			validator.FieldDefinition{Name: "kode", Type: validator.FieldTypeString, MaxLength: 50,
				Description: "Kode barang", Example: "OBT-0001"},
			validator.FieldDefinition{Name: "kategori", Type: validator.FieldTypeString, MaxLength: 100,
				Description: "Kategori barang", Example: "Obat"},
			validator.FieldDefinition{Name: "satuan", Type: validator.FieldTypeString, MaxLength: 50,
				Description: "Satuan stok", Example: "Tablet"},
			validator.FieldDefinition{Name: "harga", Type: validator.FieldTypeDecimal, Required: true, NonNegative: true,
				Description: "Harga satuan (angka, tidak negatif)", Example: "500"},
			validator.FieldDefinition{Name: "stok", Type: validator.FieldTypeInteger, Required: true, NonNegative: true,
				Description: "Jumlah stok (bilangan bulat, tidak negatif)", Example: "1000"},
			validator.FieldDefinition{Name: "deskripsi", Type: validator.FieldTypeString, MaxLength: 300,
				Description: "Keterangan tambahan", Example: ""},
		),
		Decode: func(v validator.ValidationResult) InventoryRecord {
			return InventoryRecord{
				Name: v.String("nama"),
				Details: domain.InventoryDetails{
					Code:        v.OptionalString("kode"),
					Category:    v.OptionalString("kategori"),
					Unit:        v.OptionalString("satuan"),
					Price:       v.Decimal("harga"),
					Stock:       v.Int("stok"),
					Description: v.OptionalString("deskripsi"),
				},
			}
		},
		NaturalKey: func(r InventoryRecord) string { return domain.NameKey(r.Name) },
		Reconcile:  reconcileInventory,
	}
}

func reconcileInventory(ctx context.Context, rc *RunContext, repos repository.Repositories, r InventoryRecord) (Action, uuid.UUID, error) {
	existing, err := repos.Inventory.FindByName(ctx, rc.Scope, r.Name)
	switch {
	case err == nil:
		updated := existing.WithDetails(r.Details, rc.Actor)
		if err := repos.Inventory.Update(ctx, updated); err != nil {
			return 0, uuid.Nil, err
		}
		return ActionUpdated, updated.ID, nil
	case errors.Is(err, repository.ErrNotFound):
		created := domain.NewInventoryItem(rc.Scope, r.Name, r.Details, rc.Actor)
		if err := repos.Inventory.Create(ctx, created); err != nil {
			return 0, uuid.Nil, err
		}
		return ActionCreated, created.ID, nil
	default:
		return 0, uuid.Nil, err
	}
}
