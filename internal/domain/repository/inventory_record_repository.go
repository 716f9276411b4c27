package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// InventoryRecordStore puerto de persistencia de registros de inventario para UN tipo de ubicación.
// Hay una implementación por variante; el resto del sistema la obtiene vía InventoryStores.
type InventoryRecordStore interface {
	Kind() entity.LocationKind
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.InventoryRecord, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.InventoryRecord, error)
	Create(ctx context.Context, record *entity.InventoryRecord) error
	// Update persiste cantidad y clasificación si la versión no cambió; incrementa Version.
	// Devuelve domain.ErrConcurrentUpdate si otra escritura ganó.
	Update(ctx context.Context, record *entity.InventoryRecord) error
	Delete(ctx context.Context, id string) error
	ListByLocation(ctx context.Context, locationID *string) ([]*entity.InventoryRecord, error)
	LocationExists(ctx context.Context, locationID string) (bool, error)
}

// InventoryStores despacha al store del tipo de ubicación pedido.
type InventoryStores interface {
	For(kind entity.LocationKind) (InventoryRecordStore, error)
}

// LocationDirectory resuelve códigos visibles de ubicaciones en lote (una consulta por tipo).
type LocationDirectory interface {
	FindCodes(ctx context.Context, kind entity.LocationKind, ids []string) (map[string]string, error)
}
