package dto

import (
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// AddInventoryRequest body para POST /api/inventory/:kind.
type AddInventoryRequest struct {
	LocationID      *string `json:"location_id,omitempty"`
	ItemID          string  `json:"item_id"`
	Category        string  `json:"category"`
	Subcategory     *string `json:"subcategory,omitempty"`
	Description     string  `json:"description"`
	InitialQuantity int     `json:"initial_quantity"`
}

// UpdateClassificationRequest body para PATCH /api/inventory/:kind/:recordId.
type UpdateClassificationRequest struct {
	Category    string  `json:"category"`
	Subcategory *string `json:"subcategory,omitempty"`
	Description *string `json:"description,omitempty"`
}

// InventoryRecordResponse registro de inventario.
type InventoryRecordResponse struct {
	ID           string    `json:"id"`
	LocationType string    `json:"location_type"`
	LocationID   *string   `json:"location_id,omitempty"`
	ItemID       string    `json:"item_id"`
	Quantity     int       `json:"quantity"`
	Category     string    `json:"category"`
	Subcategory  *string   `json:"subcategory,omitempty"`
	Description  string    `json:"description"`
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AddInventoryResponse registro creado y, si hubo cantidad inicial, su movimiento.
type AddInventoryResponse struct {
	Record   InventoryRecordResponse `json:"record"`
	Movement *StockMovementResponse  `json:"movement,omitempty"`
}

// NewInventoryRecordResponse mapea la entidad.
func NewInventoryRecordResponse(r *entity.InventoryRecord) InventoryRecordResponse {
	out := InventoryRecordResponse{
		ID:           r.ID,
		LocationType: string(r.Kind),
		LocationID:   r.LocationID,
		ItemID:       r.ItemID,
		Quantity:     r.Quantity,
		Category:     string(r.Category),
		Description:  r.Description,
		Version:      r.Version,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.Subcategory != nil {
		s := string(*r.Subcategory)
		out.Subcategory = &s
	}
	return out
}
