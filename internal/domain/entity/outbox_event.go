package entity

import (
	"encoding/json"
	"time"
)

// Tipos de evento y entidad publicados vía outbox.
const (
	EventTypeStockMovement  = "STOCK_MOVEMENT"
	EntityTypeStockMovement = "stock_movement"
)

// OutboxEvent evento pendiente de publicación, escrito en la misma transacción que el movimiento.
type OutboxEvent struct {
	ID              string
	EventType       string
	EntityType      string
	EntityID        string
	Topic           string
	Payload         json.RawMessage
	PublishAttempts int
	LastError       string
	CreatedAt       time.Time
	PublishedAt     *time.Time
}

// StockMovementEvent payload publicado por cada movimiento confirmado.
type StockMovementEvent struct {
	MovementID       int64          `json:"movement_id"`
	ItemID           string         `json:"item_id"`
	LocationType     LocationKind   `json:"location_type"`
	LocationCode     string         `json:"location_code,omitempty"`
	FromLocationID   *string        `json:"from_location_id,omitempty"`
	ToLocationID     *string        `json:"to_location_id,omitempty"`
	PreviousQuantity int            `json:"previous_quantity"`
	CurrentQuantity  int            `json:"current_quantity"`
	QuantityChange   int            `json:"quantity_change"`
	Reason           MovementReason `json:"reason"`
	ActorID          *string        `json:"actor_id,omitempty"`
	Transfer         bool           `json:"transfer"`
	TransferID       string         `json:"transfer_id,omitempty"`
	At               time.Time      `json:"at"`
}

// NewStockMovementEvent arma el payload a partir del movimiento confirmado.
func NewStockMovementEvent(m *StockMovement, locationCode string) StockMovementEvent {
	return StockMovementEvent{
		MovementID:       m.ID,
		ItemID:           m.ItemID,
		LocationType:     m.LocationKind,
		LocationCode:     locationCode,
		FromLocationID:   m.FromLocationID,
		ToLocationID:     m.ToLocationID,
		PreviousQuantity: m.PreviousQuantity,
		CurrentQuantity:  m.NewQuantity,
		QuantityChange:   m.QuantityChange,
		Reason:           m.Reason,
		ActorID:          m.ActorID,
		Transfer:         m.Metadata.Transfer,
		TransferID:       m.Metadata.TransferID,
		At:               m.OccurredAt,
	}
}
