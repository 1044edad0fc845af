package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryDetails holds the columns of an inventory item that may change after creation.
type InventoryDetails struct {
	Code        *string
	Category    *string
	Unit        *string
	Price       decimal.Decimal
	Stock       int
	Description *string
}

// InventoryItem is a stocked consumable or medicine, unique by name within its scope.
type InventoryItem struct {
	ID          uuid.UUID       `json:"id"`
	Scope       Scope           `json:"scope"`
	Name        string          `json:"name"`
	Code        *string         `json:"code,omitempty"`
	Category    *string         `json:"category,omitempty"`
	Unit        *string         `json:"unit,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Description *string         `json:"description,omitempty"`
	Audit
}

// NewInventoryItem creates a new active inventory item
func NewInventoryItem(scope Scope, name string, details InventoryDetails, actor uuid.UUID) InventoryItem {
	return InventoryItem{
		ID:          uuid.New(),
		Scope:       scope,
		Name:        name,
		Code:        copyString(details.Code),
		Category:    copyString(details.Category),
		Unit:        copyString(details.Unit),
		Price:       details.Price,
		Stock:       details.Stock,
		Description: copyString(details.Description),
		Audit:       newAudit(actor),
	}
}

// WithDetails returns a new inventory item with the mutable columns replaced
func (i InventoryItem) WithDetails(details InventoryDetails, actor uuid.UUID) InventoryItem {
	return InventoryItem{
		ID:          i.ID,
		Scope:       i.Scope,
		Name:        i.Name,
		Code:        copyString(details.Code),
		Category:    copyString(details.Category),
		Unit:        copyString(details.Unit),
		Price:       details.Price,
		Stock:       details.Stock,
		Description: copyString(details.Description),
		Audit:       i.Audit.touched(actor),
	}
}
