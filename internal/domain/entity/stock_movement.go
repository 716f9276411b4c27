package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// MovementReason motivo de un cambio de cantidad.
type MovementReason string

// Motivos de movimiento.
const (
	ReasonInitialStock MovementReason = "INITIAL_STOCK"
	ReasonRestock      MovementReason = "RESTOCK"
	ReasonSale         MovementReason = "SALE"
	ReasonDamage       MovementReason = "DAMAGE"
	ReasonAdjustment   MovementReason = "ADJUSTMENT"
	ReasonExpiry       MovementReason = "EXPIRY"
)

// Valid indica si el motivo pertenece a la enumeración.
func (r MovementReason) Valid() bool {
	switch r {
	case ReasonInitialStock, ReasonRestock, ReasonSale, ReasonDamage, ReasonAdjustment, ReasonExpiry:
		return true
	}
	return false
}

// ParseMovementReason acepta mayúsculas o minúsculas ("restock", "RESTOCK").
func ParseMovementReason(s string) (MovementReason, error) {
	r := MovementReason(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", domain.InvalidInputf("motivo desconocido %q", s)
	}
	return r, nil
}

// MovementMetadata datos libres del movimiento (jsonb).
// Transfer y TransferID correlacionan las dos patas de un traslado.
type MovementMetadata struct {
	Notes           string       `json:"notes,omitempty"`
	InventoryID     string       `json:"inventory_id,omitempty"`
	Transfer        bool         `json:"transfer,omitempty"`
	TransferID      string       `json:"transfer_id,omitempty"`
	CounterpartKind LocationKind `json:"counterpart_kind,omitempty"`
}

// ItemSummary datos del producto adjuntos por la lectura (join con products).
type ItemSummary struct {
	SKU      string
	Name     string
	UnitCost decimal.Decimal
}

// StockMovement entrada inmutable del libro de movimientos.
// Invariante: NewQuantity = PreviousQuantity + QuantityChange y NewQuantity >= 0.
type StockMovement struct {
	ID               int64
	LocationKind     LocationKind
	ItemID           string
	FromLocationID   *string
	ToLocationID     *string
	PreviousQuantity int
	NewQuantity      int
	QuantityChange   int
	Reason           MovementReason
	ActorID          *string
	OccurredAt       time.Time
	Metadata         MovementMetadata

	Item *ItemSummary
}

// IsTransfer indica si el movimiento es una pata de un traslado.
func (m *StockMovement) IsTransfer() bool {
	return m.Metadata.Transfer
}

// FromKind tipo de ubicación del lado "from". En la pata de depósito de un traslado
// el origen pertenece a la otra pata.
func (m *StockMovement) FromKind() LocationKind {
	if m.Metadata.Transfer && m.QuantityChange > 0 && m.Metadata.CounterpartKind != "" {
		return m.Metadata.CounterpartKind
	}
	return m.LocationKind
}

// ToKind tipo de ubicación del lado "to".
func (m *StockMovement) ToKind() LocationKind {
	if m.Metadata.Transfer && m.QuantityChange < 0 && m.Metadata.CounterpartKind != "" {
		return m.Metadata.CounterpartKind
	}
	return m.LocationKind
}
