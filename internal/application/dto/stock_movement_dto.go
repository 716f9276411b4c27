package dto

import (
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// AdjustRequest body para POST /api/stock-movements/:kind/:recordId/adjust.
type AdjustRequest struct {
	QuantityChange int    `json:"quantity_change"`
	Reason         string `json:"reason"`
	Notes          string `json:"notes"`
}

// TransferRequest body para POST /api/stock-movements/transfer.
type TransferRequest struct {
	SourceLocationType      string `json:"source_location_type"`
	SourceInventoryID       string `json:"source_inventory_id"`
	DestinationLocationType string `json:"destination_location_type"`
	DestinationInventoryID  string `json:"destination_inventory_id"`
	Quantity                int    `json:"quantity"`
	Notes                   string `json:"notes"`
}

// StockMovementResponse movimiento del libro.
type StockMovementResponse struct {
	ID               int64     `json:"id"`
	LocationType     string    `json:"location_type"`
	ItemID           string    `json:"item_id"`
	FromLocationID   *string   `json:"from_location_id,omitempty"`
	ToLocationID     *string   `json:"to_location_id,omitempty"`
	PreviousQuantity int       `json:"previous_quantity"`
	CurrentQuantity  int       `json:"current_quantity"`
	QuantityChange   int       `json:"quantity_change"`
	Reason           string    `json:"reason"`
	ActorID          *string   `json:"actor_id,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	Transfer         bool      `json:"transfer"`
	TransferID       string    `json:"transfer_id,omitempty"`
	At               time.Time `json:"at"`
}

// TransferResponse ambas patas del traslado.
type TransferResponse struct {
	TransferID string                `json:"transfer_id"`
	Withdrawal StockMovementResponse `json:"withdrawal"`
	Deposit    StockMovementResponse `json:"deposit"`
}

// StockMovementPage página de movimientos.
type StockMovementPage struct {
	Content []StockMovementResponse `json:"content"`
	PageResponse
}

// AuditLogPage página del log de auditoría.
type AuditLogPage struct {
	Content []entity.AuditRow `json:"content"`
	PageResponse
}

// NewStockMovementResponse mapea la entidad.
func NewStockMovementResponse(m *entity.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:               m.ID,
		LocationType:     string(m.LocationKind),
		ItemID:           m.ItemID,
		FromLocationID:   m.FromLocationID,
		ToLocationID:     m.ToLocationID,
		PreviousQuantity: m.PreviousQuantity,
		CurrentQuantity:  m.NewQuantity,
		QuantityChange:   m.QuantityChange,
		Reason:           string(m.Reason),
		ActorID:          m.ActorID,
		Notes:            m.Metadata.Notes,
		Transfer:         m.Metadata.Transfer,
		TransferID:       m.Metadata.TransferID,
		At:               m.OccurredAt,
	}
}

// NewStockMovementPage mapea una página del libro.
func NewStockMovementPage(p entity.Page[entity.StockMovement]) StockMovementPage {
	content := make([]StockMovementResponse, len(p.Items))
	for i := range p.Items {
		content[i] = NewStockMovementResponse(&p.Items[i])
	}
	return StockMovementPage{Content: content, PageResponse: NewPageResponse(p.Page, p.PageSize, p.Total)}
}

// NewAuditLogPage mapea una página proyectada.
func NewAuditLogPage(p entity.Page[entity.AuditRow]) AuditLogPage {
	content := p.Items
	if content == nil {
		content = []entity.AuditRow{}
	}
	return AuditLogPage{Content: content, PageResponse: NewPageResponse(p.Page, p.PageSize, p.Total)}
}
