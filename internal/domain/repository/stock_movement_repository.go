package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// MovementFilter filtros del historial de movimientos. Campos vacíos no filtran.
type MovementFilter struct {
	ItemID       string
	LocationKind entity.LocationKind
	ActorID      string
	Reason       entity.MovementReason
	Since        *time.Time
	Until        *time.Time
	Search       string // sku o nombre, sin distinguir mayúsculas
}

// StockMovementRepository puerto del libro de movimientos (sólo inserción y lectura).
type StockMovementRepository interface {
	// Create inserta el movimiento y asigna su ID secuencial.
	Create(ctx context.Context, movement *entity.StockMovement) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id int64) (*entity.StockMovement, error)
	List(ctx context.Context, filter MovementFilter, page entity.PageRequest) (entity.Page[entity.StockMovement], error)
	ListByTransfer(ctx context.Context, transferID string) ([]entity.StockMovement, error)
}
