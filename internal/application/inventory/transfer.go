package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// TransferCoordinator traslada stock entre dos registros (posiblemente de tipos distintos)
// como una sola operación: retiro + depósito en la misma transacción.
type TransferCoordinator struct {
	ledger *Ledger
}

// NewTransferCoordinator usa el Ledger como primitiva de ambas patas.
func NewTransferCoordinator(ledger *Ledger) *TransferCoordinator {
	return &TransferCoordinator{ledger: ledger}
}

// TransferInput entrada de un traslado. El destino debe existir (se crea antes con AddInventory).
type TransferInput struct {
	SourceKind entity.LocationKind
	SourceID   string
	DestKind   entity.LocationKind
	DestID     string
	Quantity   int
	ActorID    *string
	Notes      string
}

func (in TransferInput) validate() error {
	if !in.SourceKind.Valid() {
		return domain.InvalidInputf("tipo de ubicación origen desconocido %q", in.SourceKind)
	}
	if !in.DestKind.Valid() {
		return domain.InvalidInputf("tipo de ubicación destino desconocido %q", in.DestKind)
	}
	if in.SourceID == "" || in.DestID == "" {
		return domain.InvalidInputf("ids de inventario origen y destino requeridos")
	}
	if in.SourceKind == in.DestKind && in.SourceID == in.DestID {
		return domain.InvalidInputf("origen y destino son el mismo registro")
	}
	if in.Quantity <= 0 {
		return domain.InvalidInputf("la cantidad a trasladar debe ser positiva")
	}
	return nil
}

type recordRef struct {
	kind entity.LocationKind
	id   string
}

func (r recordRef) less(o recordRef) bool {
	if r.kind != o.kind {
		return r.kind < o.kind
	}
	return r.id < o.id
}

// Transfer descuenta Quantity del origen y la suma al destino. Devuelve (retiro, depósito).
// Ambas filas quedan bloqueadas hasta el commit; cualquier fallo deshace las dos patas.
func (c *TransferCoordinator) Transfer(ctx context.Context, in TransferInput) (*entity.StockMovement, *entity.StockMovement, error) {
	l := c.ledger
	start := time.Now()
	ctx, span := tracer.Start(ctx, "TransferCoordinator.Transfer")
	defer span.End()
	span.SetAttributes(
		attribute.String("source_location_type", string(in.SourceKind)),
		attribute.String("destination_location_type", string(in.DestKind)),
		attribute.Int("quantity", in.Quantity),
	)

	if err := in.validate(); err != nil {
		l.deny("transfer", err)
		return nil, nil, err
	}

	var withdrawal, deposit *entity.StockMovement
	err := l.txRunner.Run(ctx, func(tx TxRepos) error {
		reg := NewRegistry(tx.Stores, tx.Locations)

		// Orden fijo (tipo, id) para que dos traslados cruzados no se bloqueen mutuamente.
		src := recordRef{in.SourceKind, in.SourceID}
		dst := recordRef{in.DestKind, in.DestID}
		first, second := src, dst
		if dst.less(src) {
			first, second = dst, src
		}
		loaded := make(map[recordRef]*entity.InventoryRecord, 2)
		for _, ref := range []recordRef{first, second} {
			rec, err := reg.Load(ctx, ref.kind, ref.id)
			if err != nil {
				return err
			}
			loaded[ref] = rec
		}
		source, dest := loaded[src], loaded[dst]

		if source.ItemID != dest.ItemID {
			return domain.InvalidInputf("origen (%s) y destino (%s) guardan artículos distintos", source.ItemID, dest.ItemID)
		}
		if available := reg.CurrentQuantity(source); available < in.Quantity {
			return domain.NewInsufficientInventory(in.Quantity, available)
		}

		at := l.now()
		transferID := uuid.New().String()
		var err error
		withdrawal, err = l.applyInTx(ctx, tx, reg, source, ledgerChange{
			delta:   -in.Quantity,
			reason:  entity.ReasonAdjustment,
			actorID: in.ActorID,
			at:      at,
			meta: entity.MovementMetadata{
				Notes:           in.Notes,
				InventoryID:     source.ID,
				Transfer:        true,
				TransferID:      transferID,
				CounterpartKind: dest.Kind,
			},
			explicitSides: true,
			from:          source.LocationID,
			to:            dest.LocationID,
		})
		if err != nil {
			return err
		}
		deposit, err = l.applyInTx(ctx, tx, reg, dest, ledgerChange{
			delta:   in.Quantity,
			reason:  entity.ReasonAdjustment,
			actorID: in.ActorID,
			at:      at,
			meta: entity.MovementMetadata{
				Notes:           in.Notes,
				InventoryID:     dest.ID,
				Transfer:        true,
				TransferID:      transferID,
				CounterpartKind: source.Kind,
			},
			explicitSides: true,
			from:          source.LocationID,
			to:            dest.LocationID,
		})
		return err
	})
	l.metrics.ObserveOperation("transfer", start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		l.deny("transfer", err)
		return nil, nil, err
	}

	l.recorded(withdrawal)
	l.recorded(deposit)
	l.metrics.TransfersCompleted.Inc()
	l.log.Info().
		Str("transfer_id", withdrawal.Metadata.TransferID).
		Str("item_id", withdrawal.ItemID).
		Str("source_location_type", string(in.SourceKind)).
		Str("destination_location_type", string(in.DestKind)).
		Int("quantity", in.Quantity).
		Msg("traslado confirmado")
	return withdrawal, deposit, nil
}
