package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Registry acceso polimórfico a "la cantidad del artículo I en la ubicación L de tipo K".
// El despacho por tipo vive en InventoryStores; nadie más ramifica por tipo de ubicación.
type Registry struct {
	stores    repository.InventoryStores
	locations repository.LocationDirectory
}

// NewRegistry construye el registro sobre stores (de pool o de tx).
func NewRegistry(stores repository.InventoryStores, locations repository.LocationDirectory) *Registry {
	return &Registry{stores: stores, locations: locations}
}

// Load obtiene el registro bloqueando la fila hasta el fin de la transacción.
func (r *Registry) Load(ctx context.Context, kind entity.LocationKind, recordID string) (*entity.InventoryRecord, error) {
	store, err := r.stores.For(kind)
	if err != nil {
		return nil, err
	}
	rec, err := store.GetForUpdate(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

// Get obtiene el registro sin bloquear (lecturas).
func (r *Registry) Get(ctx context.Context, kind entity.LocationKind, recordID string) (*entity.InventoryRecord, error) {
	store, err := r.stores.For(kind)
	if err != nil {
		return nil, err
	}
	rec, err := store.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

// CurrentQuantity proyección pura de la cantidad.
func (r *Registry) CurrentQuantity(rec *entity.InventoryRecord) int {
	return rec.Quantity
}

// ApplyQuantity persiste la nueva cantidad validando las reglas de ubicación en escritura.
// El registro recibido no se modifica; se devuelve la versión persistida.
func (r *Registry) ApplyQuantity(ctx context.Context, rec *entity.InventoryRecord, newQuantity int) (*entity.InventoryRecord, error) {
	if newQuantity < 0 {
		return nil, domain.NewInsufficientInventory(rec.Quantity-newQuantity, rec.Quantity)
	}
	next := *rec
	next.Quantity = newQuantity
	if err := next.ValidatePlacement(); err != nil {
		return nil, err
	}
	store, err := r.stores.For(rec.Kind)
	if err != nil {
		return nil, err
	}
	if err := store.Update(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

// ResolveLocationCode código visible de la ubicación, best-effort: nunca falla,
// devuelve ok=false si no se puede resolver.
func (r *Registry) ResolveLocationCode(ctx context.Context, kind entity.LocationKind, locationID string) (string, bool) {
	if kind == entity.LocationNotAssigned {
		return entity.NotAssignedCode, true
	}
	if locationID == "" || r.locations == nil {
		return "", false
	}
	codes, err := r.locations.FindCodes(ctx, kind, []string{locationID})
	if err != nil {
		return "", false
	}
	code, ok := codes[locationID]
	return code, ok && code != ""
}

// Create valida y persiste un registro nuevo.
func (r *Registry) Create(ctx context.Context, rec *entity.InventoryRecord) error {
	if err := rec.ValidatePlacement(); err != nil {
		return err
	}
	store, err := r.stores.For(rec.Kind)
	if err != nil {
		return err
	}
	if rec.Kind.HasLocation() {
		ok, err := store.LocationExists(ctx, rec.LocationIDValue())
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrNotFound
		}
	}
	return store.Create(ctx, rec)
}

// Save persiste cambios de clasificación validando las reglas.
func (r *Registry) Save(ctx context.Context, rec *entity.InventoryRecord) error {
	if err := rec.ValidatePlacement(); err != nil {
		return err
	}
	store, err := r.stores.For(rec.Kind)
	if err != nil {
		return err
	}
	return store.Update(ctx, rec)
}

// Remove elimina el registro (acción explícita de un operador).
func (r *Registry) Remove(ctx context.Context, kind entity.LocationKind, recordID string) error {
	if _, err := r.Load(ctx, kind, recordID); err != nil {
		return err
	}
	store, err := r.stores.For(kind)
	if err != nil {
		return err
	}
	return store.Delete(ctx, recordID)
}

// ListByLocation registros de una ubicación; para NOT_ASSIGNED locationID se ignora.
func (r *Registry) ListByLocation(ctx context.Context, kind entity.LocationKind, locationID string) ([]*entity.InventoryRecord, error) {
	store, err := r.stores.For(kind)
	if err != nil {
		return nil, err
	}
	if !kind.HasLocation() {
		return store.ListByLocation(ctx, nil)
	}
	ok, err := store.LocationExists(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	return store.ListByLocation(ctx, &locationID)
}
