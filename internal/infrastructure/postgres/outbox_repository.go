package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.OutboxRepository = (*OutboxRepo)(nil)

// OutboxRepo tabla event_outbox. Enqueue se llama con la tx del movimiento;
// el relay usa el pool.
type OutboxRepo struct {
	q Querier
}

// NewOutboxRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOutboxRepository(q Querier) *OutboxRepo {
	return &OutboxRepo{q: q}
}

// Enqueue inserta el evento pendiente.
func (r *OutboxRepo) Enqueue(ctx context.Context, e *entity.OutboxEvent) error {
	query := `
		INSERT INTO event_outbox (id, event_type, entity_type, entity_id, topic, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, e.ID, e.EventType, e.EntityType, e.EntityID, e.Topic, []byte(e.Payload), e.CreatedAt)
	if err != nil {
		return mapError("enqueue outbox event", err)
	}
	return nil
}

// FetchPending eventos sin publicar, más antiguos primero.
func (r *OutboxRepo) FetchPending(ctx context.Context, limit int) ([]*entity.OutboxEvent, error) {
	query := `
		SELECT id, event_type, entity_type, entity_id, topic, payload, publish_attempts,
		       COALESCE(last_error, ''), created_at
		FROM event_outbox
		WHERE published_at IS NULL
		ORDER BY created_at, id
		LIMIT $1`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, mapError("fetch pending outbox events", err)
	}
	defer rows.Close()

	out := make([]*entity.OutboxEvent, 0)
	for rows.Next() {
		var (
			e       entity.OutboxEvent
			payload []byte
		)
		if err := rows.Scan(&e.ID, &e.EventType, &e.EntityType, &e.EntityID, &e.Topic, &payload,
			&e.PublishAttempts, &e.LastError, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		e.Payload = payload
		out = append(out, &e)
	}
	return out, rows.Err()
}

// MarkPublished marca el evento como entregado.
func (r *OutboxRepo) MarkPublished(ctx context.Context, id string, at time.Time) error {
	_, err := r.q.Exec(ctx, `UPDATE event_outbox SET published_at = $2, last_error = NULL WHERE id = $1`, id, at)
	if err != nil {
		return mapError("mark outbox event published", err)
	}
	return nil
}

// MarkFailed incrementa el contador de intentos y guarda el último error.
func (r *OutboxRepo) MarkFailed(ctx context.Context, id string, lastErr string) error {
	_, err := r.q.Exec(ctx, `UPDATE event_outbox SET publish_attempts = publish_attempts + 1, last_error = $2 WHERE id = $1`, id, lastErr)
	if err != nil {
		return mapError("mark outbox event failed", err)
	}
	return nil
}
