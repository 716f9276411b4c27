package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditRow vista enriquecida de un StockMovement para reportes (no se persiste).
// Los campos resueltos quedan vacíos cuando el id no se encuentra.
type AuditRow struct {
	ID               int64           `json:"id"`
	LocationKind     LocationKind    `json:"location_type"`
	ItemID           string          `json:"item_id"`
	ItemSKU          string          `json:"item_sku,omitempty"`
	ItemName         string          `json:"item_name,omitempty"`
	FromLocationID   *string         `json:"from_location_id,omitempty"`
	FromLocationCode string          `json:"from_location_code,omitempty"`
	ToLocationID     *string         `json:"to_location_id,omitempty"`
	ToLocationCode   string          `json:"to_location_code,omitempty"`
	PreviousQuantity int             `json:"previous_quantity"`
	NewQuantity      int             `json:"current_quantity"`
	QuantityChange   int             `json:"quantity_change"`
	Reason           MovementReason  `json:"reason"`
	ReasonLabel      string          `json:"reason_label"`
	ActorID          *string         `json:"actor_id,omitempty"`
	ActorName        string          `json:"actor_name,omitempty"`
	Transfer         bool            `json:"transfer"`
	TransferID       string          `json:"transfer_id,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	ValueChange      decimal.Decimal `json:"value_change"`
	OccurredAt       time.Time       `json:"at"`
}
