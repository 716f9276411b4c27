package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/metrics"
)

var tracer = otel.Tracer("github.com/jhoicas/stock-ledger/internal/application/inventory")

// DefaultEventTopic tópico de los eventos de movimiento en el outbox.
const DefaultEventTopic = "stock.movement"

// Ledger único escritor de StockMovement y guardián de la invariante de cantidad no negativa.
type Ledger struct {
	txRunner  TxRunner
	movements repository.StockMovementRepository
	log       zerolog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
	topic     string
}

// LedgerOption ajusta un Ledger en construcción.
type LedgerOption func(*Ledger)

// WithClock reemplaza el reloj del sistema (tests, reprocesos).
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) { l.now = now }
}

// WithEventTopic cambia el tópico de los eventos encolados.
func WithEventTopic(topic string) LedgerOption {
	return func(l *Ledger) { l.topic = topic }
}

// NewLedger construye el libro. movements es el repositorio de lectura (pool).
func NewLedger(txRunner TxRunner, movements repository.StockMovementRepository, log zerolog.Logger, m *metrics.Metrics, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		txRunner:  txRunner,
		movements: movements,
		log:       log.With().Str("component", "ledger").Logger(),
		metrics:   m,
		now:       func() time.Time { return time.Now().UTC() },
		topic:     DefaultEventTopic,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// AdjustInput entrada de un ajuste sobre un registro.
// Delta positivo suma, negativo resta. OccurredAt nil = reloj del sistema.
type AdjustInput struct {
	Kind       entity.LocationKind
	RecordID   string
	Delta      int
	Reason     entity.MovementReason
	ActorID    *string
	Notes      string
	OccurredAt *time.Time
}

func (in AdjustInput) validate() error {
	if !in.Kind.Valid() {
		return domain.InvalidInputf("tipo de ubicación desconocido %q", in.Kind)
	}
	if in.RecordID == "" {
		return domain.InvalidInputf("id de inventario requerido")
	}
	if in.Delta == 0 {
		return domain.InvalidInputf("la variación de cantidad no puede ser cero")
	}
	if !in.Reason.Valid() {
		return domain.InvalidInputf("motivo desconocido %q", in.Reason)
	}
	return nil
}

// Adjust aplica delta al registro y agrega exactamente un movimiento, todo en una transacción.
// Si la cantidad resultante fuese negativa devuelve *domain.InsufficientInventoryError sin escribir nada.
func (l *Ledger) Adjust(ctx context.Context, in AdjustInput) (*entity.StockMovement, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "Ledger.Adjust")
	defer span.End()
	span.SetAttributes(
		attribute.String("location_type", string(in.Kind)),
		attribute.String("record_id", in.RecordID),
		attribute.Int("delta", in.Delta),
	)

	if err := in.validate(); err != nil {
		l.deny("adjust", err)
		return nil, err
	}

	var movement *entity.StockMovement
	err := l.txRunner.Run(ctx, func(tx TxRepos) error {
		reg := NewRegistry(tx.Stores, tx.Locations)
		rec, err := reg.Load(ctx, in.Kind, in.RecordID)
		if err != nil {
			return err
		}
		movement, err = l.applyInTx(ctx, tx, reg, rec, ledgerChange{
			delta:   in.Delta,
			reason:  in.Reason,
			actorID: in.ActorID,
			at:      l.at(in.OccurredAt),
			meta:    entity.MovementMetadata{Notes: in.Notes, InventoryID: rec.ID},
		})
		return err
	})
	l.metrics.ObserveOperation("adjust", start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		l.deny("adjust", err)
		return nil, err
	}
	l.recorded(movement)
	return movement, nil
}

// ledgerChange describe una mutación ya validada. Sin explicitSides, from/to se
// completan con la ubicación del registro según el signo de delta.
type ledgerChange struct {
	delta         int
	reason        entity.MovementReason
	actorID       *string
	at            time.Time
	meta          entity.MovementMetadata
	explicitSides bool
	from          *string
	to            *string
}

// applyInTx primitiva del libro: calcula, valida, persiste cantidad y agrega el movimiento y su evento.
// rec debe haberse cargado con Load dentro de la misma transacción.
func (l *Ledger) applyInTx(ctx context.Context, tx TxRepos, reg *Registry, rec *entity.InventoryRecord, ch ledgerChange) (*entity.StockMovement, error) {
	previous := reg.CurrentQuantity(rec)
	next := previous + ch.delta
	if next < 0 {
		return nil, domain.NewInsufficientInventory(-ch.delta, previous)
	}
	if _, err := reg.ApplyQuantity(ctx, rec, next); err != nil {
		return nil, err
	}

	from, to := ch.from, ch.to
	if !ch.explicitSides {
		if ch.delta < 0 {
			from = rec.LocationID
		} else {
			to = rec.LocationID
		}
	}
	movement := &entity.StockMovement{
		LocationKind:     rec.Kind,
		ItemID:           rec.ItemID,
		FromLocationID:   from,
		ToLocationID:     to,
		PreviousQuantity: previous,
		NewQuantity:      next,
		QuantityChange:   ch.delta,
		Reason:           ch.reason,
		ActorID:          ch.actorID,
		OccurredAt:       ch.at,
		Metadata:         ch.meta,
	}
	if err := tx.Movements.Create(ctx, movement); err != nil {
		return nil, err
	}
	if err := l.enqueueEvent(ctx, tx, reg, rec, movement); err != nil {
		return nil, err
	}
	return movement, nil
}

func (l *Ledger) enqueueEvent(ctx context.Context, tx TxRepos, reg *Registry, rec *entity.InventoryRecord, m *entity.StockMovement) error {
	if tx.Outbox == nil {
		return nil
	}
	code, _ := reg.ResolveLocationCode(ctx, rec.Kind, rec.LocationIDValue())
	payload, err := json.Marshal(entity.NewStockMovementEvent(m, code))
	if err != nil {
		return fmt.Errorf("marshal stock movement event: %w", err)
	}
	return tx.Outbox.Enqueue(ctx, &entity.OutboxEvent{
		ID:         uuid.New().String(),
		EventType:  entity.EventTypeStockMovement,
		EntityType: entity.EntityTypeStockMovement,
		EntityID:   strconv.FormatInt(m.ID, 10),
		Topic:      l.topic,
		Payload:    payload,
		CreatedAt:  m.OccurredAt,
	})
}

func (l *Ledger) at(explicit *time.Time) time.Time {
	if explicit != nil {
		return explicit.UTC()
	}
	return l.now()
}

func (l *Ledger) recorded(m *entity.StockMovement) {
	l.metrics.MovementsRecorded.WithLabelValues(string(m.Reason), string(m.LocationKind)).Inc()
	l.log.Debug().
		Int64("movement_id", m.ID).
		Str("location_type", string(m.LocationKind)).
		Str("item_id", m.ItemID).
		Int("previous", m.PreviousQuantity).
		Int("current", m.NewQuantity).
		Str("reason", string(m.Reason)).
		Msg("movimiento registrado")
}

func (l *Ledger) deny(op string, err error) {
	cause := denyCause(err)
	l.metrics.Denied(op, cause)
	var insufficient *domain.InsufficientInventoryError
	if errors.As(err, &insufficient) {
		l.log.Info().
			Str("operation", op).
			Int("requested", insufficient.Requested).
			Int("available", insufficient.Available).
			Msg("inventario insuficiente")
		return
	}
	if cause == "other" {
		l.log.Error().Err(err).Str("operation", op).Msg("operación de inventario fallida")
		return
	}
	l.log.Info().Err(err).Str("operation", op).Str("cause", cause).Msg("operación de inventario rechazada")
}

func denyCause(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientInventory):
		return "insufficient"
	case errors.Is(err, domain.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConcurrentUpdate):
		return "conflict"
	}
	return "other"
}

// ListMovements historial filtrado y paginado (más recientes primero).
func (l *Ledger) ListMovements(ctx context.Context, filter repository.MovementFilter, page entity.PageRequest) (entity.Page[entity.StockMovement], error) {
	if filter.LocationKind != "" && !filter.LocationKind.Valid() {
		return entity.Page[entity.StockMovement]{}, domain.InvalidInputf("tipo de ubicación desconocido %q", filter.LocationKind)
	}
	if filter.Reason != "" && !filter.Reason.Valid() {
		return entity.Page[entity.StockMovement]{}, domain.InvalidInputf("motivo desconocido %q", filter.Reason)
	}
	if filter.Since != nil && filter.Until != nil && filter.Until.Before(*filter.Since) {
		return entity.Page[entity.StockMovement]{}, domain.InvalidInputf("rango de fechas invertido")
	}
	return l.movements.List(ctx, filter, page.Normalize())
}

// History movimientos de un artículo en cualquier ubicación.
func (l *Ledger) History(ctx context.Context, itemID string, page entity.PageRequest) (entity.Page[entity.StockMovement], error) {
	if itemID == "" {
		return entity.Page[entity.StockMovement]{}, domain.InvalidInputf("id de artículo requerido")
	}
	return l.ListMovements(ctx, repository.MovementFilter{ItemID: itemID}, page)
}

// GetMovement obtiene un movimiento por id.
func (l *Ledger) GetMovement(ctx context.Context, id int64) (*entity.StockMovement, error) {
	m, err := l.movements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	return m, nil
}
