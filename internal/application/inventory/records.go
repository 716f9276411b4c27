package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// RecordService altas, reclasificación y bajas de registros de inventario hechas por un operador.
// Las cantidades sólo cambian a través del Ledger.
type RecordService struct {
	ledger *Ledger
}

// NewRecordService construye el servicio sobre el mismo Ledger que registra los movimientos.
func NewRecordService(ledger *Ledger) *RecordService {
	return &RecordService{ledger: ledger}
}

// AddInventoryInput alta de un registro. InitialQuantity > 0 queda registrado como INITIAL_STOCK.
type AddInventoryInput struct {
	Kind            entity.LocationKind
	LocationID      *string
	ItemID          string
	Category        entity.ProductCategory
	Subcategory     *entity.ProductSubcategory
	Description     string
	InitialQuantity int
	ActorID         *string
}

// AddInventory crea el registro y, si trae cantidad inicial, su movimiento en la misma transacción.
// El movimiento devuelto es nil cuando la cantidad inicial es cero.
func (s *RecordService) AddInventory(ctx context.Context, in AddInventoryInput) (*entity.InventoryRecord, *entity.StockMovement, error) {
	if in.ItemID == "" {
		return nil, nil, domain.InvalidInputf("id de artículo requerido")
	}
	if in.InitialQuantity < 0 {
		return nil, nil, domain.InvalidInputf("la cantidad inicial no puede ser negativa")
	}
	if !in.Kind.Valid() {
		return nil, nil, domain.InvalidInputf("tipo de ubicación desconocido %q", in.Kind)
	}

	l := s.ledger
	now := l.now()
	rec := &entity.InventoryRecord{
		ID:          uuid.New().String(),
		Kind:        in.Kind,
		LocationID:  in.LocationID,
		ItemID:      in.ItemID,
		Quantity:    0,
		Category:    in.Category,
		Subcategory: in.Subcategory,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if !in.Kind.HasLocation() {
		rec.LocationID = nil
	}

	var movement *entity.StockMovement
	err := l.txRunner.Run(ctx, func(tx TxRepos) error {
		reg := NewRegistry(tx.Stores, tx.Locations)
		if err := reg.Create(ctx, rec); err != nil {
			return err
		}
		if in.InitialQuantity == 0 {
			return nil
		}
		locked, err := reg.Load(ctx, rec.Kind, rec.ID)
		if err != nil {
			return err
		}
		movement, err = l.applyInTx(ctx, tx, reg, locked, ledgerChange{
			delta:   in.InitialQuantity,
			reason:  entity.ReasonInitialStock,
			actorID: in.ActorID,
			at:      now,
			meta:    entity.MovementMetadata{InventoryID: rec.ID},
		})
		if err != nil {
			return err
		}
		rec, err = reg.Get(ctx, rec.Kind, rec.ID)
		return err
	})
	if err != nil {
		l.deny("add_inventory", err)
		return nil, nil, err
	}
	if movement != nil {
		l.recorded(movement)
	}
	l.log.Info().
		Str("inventory_id", rec.ID).
		Str("location_type", string(rec.Kind)).
		Str("item_id", rec.ItemID).
		Int("quantity", rec.Quantity).
		Msg("registro de inventario creado")
	return rec, movement, nil
}

// ClassificationInput nuevos valores de clasificación; la cantidad no se toca.
// Los campos vacíos conservan el valor guardado. Sin subcategoría explícita, ésta se
// conserva mientras la categoría resultante la admita y se descarta en otro caso.
type ClassificationInput struct {
	Category    entity.ProductCategory
	Subcategory *entity.ProductSubcategory
	Description *string
}

// UpdateClassification cambia categoría/subcategoría/descripción validando las reglas de la ubicación.
func (s *RecordService) UpdateClassification(ctx context.Context, kind entity.LocationKind, recordID string, in ClassificationInput) (*entity.InventoryRecord, error) {
	l := s.ledger
	var updated *entity.InventoryRecord
	err := l.txRunner.Run(ctx, func(tx TxRepos) error {
		reg := NewRegistry(tx.Stores, tx.Locations)
		rec, err := reg.Load(ctx, kind, recordID)
		if err != nil {
			return err
		}
		next := *rec
		if in.Category != "" {
			next.Category = in.Category
		}
		switch {
		case in.Subcategory != nil:
			next.Subcategory = in.Subcategory
		case !next.Category.RequiresSubcategory():
			next.Subcategory = nil
		}
		if in.Description != nil {
			next.Description = *in.Description
		}
		next.UpdatedAt = l.now()
		if err := reg.Save(ctx, &next); err != nil {
			return err
		}
		updated = &next
		return nil
	})
	if err != nil {
		l.deny("update_classification", err)
		return nil, err
	}
	return updated, nil
}

// RemoveInventory elimina el registro. Los movimientos históricos se conservan.
func (s *RecordService) RemoveInventory(ctx context.Context, kind entity.LocationKind, recordID string) error {
	l := s.ledger
	err := l.txRunner.Run(ctx, func(tx TxRepos) error {
		return NewRegistry(tx.Stores, tx.Locations).Remove(ctx, kind, recordID)
	})
	if err != nil {
		l.deny("remove_inventory", err)
		return err
	}
	l.log.Info().
		Str("inventory_id", recordID).
		Str("location_type", string(kind)).
		Msg("registro de inventario eliminado")
	return nil
}

// ListByLocation registros de una ubicación (NOT_ASSIGNED ignora locationID).
func (s *RecordService) ListByLocation(ctx context.Context, kind entity.LocationKind, locationID string) ([]*entity.InventoryRecord, error) {
	if !kind.Valid() {
		return nil, domain.InvalidInputf("tipo de ubicación desconocido %q", kind)
	}
	var out []*entity.InventoryRecord
	err := s.ledger.txRunner.Run(ctx, func(tx TxRepos) error {
		var err error
		out, err = NewRegistry(tx.Stores, tx.Locations).ListByLocation(ctx, kind, locationID)
		return err
	})
	return out, err
}
