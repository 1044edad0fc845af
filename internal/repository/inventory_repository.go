package repository

import (
	"context"
	"fmt"

	"github.com/rpattn/klinik/internal/domain"

	"github.com/shopspring/decimal"
)

type inventoryRepository struct {
	q DBTX
}

// NewInventoryRepository creates a pgx backed inventory repository
func NewInventoryRepository(q DBTX) InventoryRepository {
	return &inventoryRepository{q: q}
}

func (r *inventoryRepository) FindByName(ctx context.Context, scope domain.Scope, name string) (domain.InventoryItem, error) {
	var (
		item  domain.InventoryItem
		price string
	)
	err := r.q.QueryRow(
		ctx,
		`SELECT id, company_id, plant_id, name, code, category, unit, price::text, stock, description,
		        is_active, created_by, updated_by, created_at, updated_at
		 FROM inventory_items
		 WHERE company_id = $1 AND plant_id = $2 AND name_key = $3`,
		scope.CompanyID, scope.PlantID, domain.NameKey(name),
	).Scan(
		&item.ID,
		&item.Scope.CompanyID,
		&item.Scope.PlantID,
		&item.Name,
		&item.Code,
		&item.Category,
		&item.Unit,
		&price,
		&item.Stock,
		&item.Description,
		&item.IsActive,
		&item.CreatedBy,
		&item.UpdatedBy,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("failed to find inventory item %q: %w", name, notFound(err))
	}

	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("invalid price %q: %w", price, err)
	}
	item.Price = parsed
	return item, nil
}

func (r *inventoryRepository) Create(ctx context.Context, item domain.InventoryItem) error {
	_, err := r.q.Exec(
		ctx,
		`INSERT INTO inventory_items (id, company_id, plant_id, name, name_key, code, category, unit, price, stock,
		                              description, is_active, created_by, updated_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::numeric, $10, $11, $12, $13, $14, $15, $16)`,
		item.ID, item.Scope.CompanyID, item.Scope.PlantID, item.Name, domain.NameKey(item.Name),
		item.Code, item.Category, item.Unit, item.Price.String(), item.Stock, item.Description,
		item.IsActive, item.CreatedBy, item.UpdatedBy, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create inventory item: %w", err)
	}
	return nil
}

func (r *inventoryRepository) Update(ctx context.Context, item domain.InventoryItem) error {
	tag, err := r.q.Exec(
		ctx,
		`UPDATE inventory_items
		 SET code = $2, category = $3, unit = $4, price = $5::numeric, stock = $6, description = $7,
		     updated_by = $8, updated_at = $9
		 WHERE id = $1`,
		item.ID, item.Code, item.Category, item.Unit, item.Price.String(), item.Stock, item.Description,
		item.UpdatedBy, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update inventory item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update inventory item %s: %w", item.ID, ErrNotFound)
	}
	return nil
}
