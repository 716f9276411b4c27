package messaging

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/metrics"
)

// Relay lee el outbox y publica los eventos pendientes. Entrega al menos una vez:
// un evento publicado cuyo MarkPublished falle se reenvía en la siguiente pasada.
type Relay struct {
	outbox    repository.OutboxRepository
	publisher Publisher
	interval  time.Duration
	batchSize int
	log       zerolog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewRelay construye el relay.
func NewRelay(outbox repository.OutboxRepository, publisher Publisher, interval time.Duration, batchSize int, log zerolog.Logger, m *metrics.Metrics) *Relay {
	if interval <= 0 {
		interval = time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Relay{
		outbox:    outbox,
		publisher: publisher,
		interval:  interval,
		batchSize: batchSize,
		log:       log.With().Str("component", "outbox_relay").Logger(),
		metrics:   m,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run publica en bucle hasta que ctx se cancele.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	r.log.Info().Dur("interval", r.interval).Msg("relay de outbox iniciado")
	for {
		if _, err := r.Flush(ctx); err != nil && ctx.Err() == nil {
			r.log.Error().Err(err).Msg("no se pudo leer el outbox")
		}
		select {
		case <-ctx.Done():
			r.log.Info().Msg("relay de outbox detenido")
			return
		case <-ticker.C:
		}
	}
}

// Flush una pasada: publica hasta batchSize eventos y devuelve cuántos se entregaron.
// Se detiene en el primer fallo de publicación para no desordenar la entrega.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	events, err := r.outbox.FetchPending(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}
	published := 0
	for _, e := range events {
		if err := r.publisher.Publish(ctx, e); err != nil {
			r.metrics.OutboxFailed.Inc()
			r.log.Warn().Err(err).Str("event_id", e.ID).Int("attempts", e.PublishAttempts+1).Msg("publicación fallida")
			if markErr := r.outbox.MarkFailed(ctx, e.ID, err.Error()); markErr != nil {
				r.log.Error().Err(markErr).Str("event_id", e.ID).Msg("no se pudo registrar el fallo")
			}
			break
		}
		if err := r.outbox.MarkPublished(ctx, e.ID, r.now()); err != nil {
			return published, err
		}
		r.metrics.OutboxPublished.Inc()
		published++
	}
	if published > 0 {
		r.log.Debug().Int("published", published).Msg("eventos publicados")
	}
	return published, nil
}
