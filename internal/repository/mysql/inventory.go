package mysql

import (
	"context"
	"fmt"
	"time"

	"github.com/rpattn/klinik/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type inventoryRow struct {
	ID          uuid.UUID       `db:"id"`
	CompanyID   uuid.UUID       `db:"company_id"`
	PlantID     uuid.UUID       `db:"plant_id"`
	Name        string          `db:"name"`
	Code        *string         `db:"code"`
	Category    *string         `db:"category"`
	Unit        *string         `db:"unit"`
	Price       decimal.Decimal `db:"price"`
	Stock       int             `db:"stock"`
	Description *string         `db:"description"`
	IsActive    bool            `db:"is_active"`
	CreatedBy   uuid.UUID       `db:"created_by"`
	UpdatedBy   uuid.UUID       `db:"updated_by"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

type inventoryRepository struct {
	q sqlx.ExtContext
}

func (r *inventoryRepository) FindByName(ctx context.Context, scope domain.Scope, name string) (domain.InventoryItem, error) {
	var row inventoryRow
	err := sqlx.GetContext(ctx, r.q, &row,
		`SELECT id, company_id, plant_id, name, code, category, unit, price, stock, description,
		        is_active, created_by, updated_by, created_at, updated_at
		 FROM inventory_items WHERE company_id = ? AND plant_id = ? AND name_key = ?`,
		scope.CompanyID, scope.PlantID, domain.NameKey(name),
	)
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("failed to find inventory item %q: %w", name, notFound(err))
	}
	return domain.InventoryItem{
		ID:          row.ID,
		Scope:       domain.Scope{CompanyID: row.CompanyID, PlantID: row.PlantID},
		Name:        row.Name,
		Code:        row.Code,
		Category:    row.Category,
		Unit:        row.Unit,
		Price:       row.Price,
		Stock:       row.Stock,
		Description: row.Description,
		Audit: domain.Audit{
			IsActive:  row.IsActive,
			CreatedBy: row.CreatedBy,
			UpdatedBy: row.UpdatedBy,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		},
	}, nil
}

func (r *inventoryRepository) Create(ctx context.Context, item domain.InventoryItem) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO inventory_items (id, company_id, plant_id, name, name_key, code, category, unit, price, stock,
		                              description, is_active, created_by, updated_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Scope.CompanyID, item.Scope.PlantID, item.Name, domain.NameKey(item.Name),
		item.Code, item.Category, item.Unit, item.Price, item.Stock, item.Description,
		item.IsActive, item.CreatedBy, item.UpdatedBy, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create inventory item: %w", err)
	}
	return nil
}

func (r *inventoryRepository) Update(ctx context.Context, item domain.InventoryItem) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE inventory_items
		 SET code = ?, category = ?, unit = ?, price = ?, stock = ?, description = ?, updated_by = ?, updated_at = ?
		 WHERE id = ?`,
		item.Code, item.Category, item.Unit, item.Price, item.Stock, item.Description,
		item.UpdatedBy, item.UpdatedAt, item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update inventory item: %w", err)
	}
	return mustAffect(res, "inventory item "+item.ID.String())
}
