package messaging_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/messaging"
	"github.com/jhoicas/stock-ledger/pkg/metrics"
)

// fakePublisher guarda los eventos publicados; failOn hace fallar un id concreto.
type fakePublisher struct {
	mu        sync.Mutex
	published []string
	failOn    string
}

func (p *fakePublisher) Publish(_ context.Context, e *entity.OutboxEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e.ID == p.failOn {
		return errors.New("broker no disponible")
	}
	p.published = append(p.published, e.ID)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) ids() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.published...)
}

func enqueue(t *testing.T, store *memory.Store, ids ...string) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, store.Enqueue(context.Background(), &entity.OutboxEvent{
			ID:        id,
			EventType: entity.EventTypeStockMovement,
			Topic:     "stock.movement",
			Payload:   []byte(`{}`),
			CreatedAt: time.Now().UTC(),
		}))
	}
}

func TestRelayFlush_PublicaYMarcaEnOrden(t *testing.T) {
	store := memory.New()
	enqueue(t, store, "e1", "e2", "e3")
	pub := &fakePublisher{}
	m := metrics.New(prometheus.NewRegistry())
	relay := messaging.NewRelay(store, pub, time.Second, 10, zerolog.Nop(), m)

	n, err := relay.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"e1", "e2", "e3"}, pub.ids())
	assert.Equal(t, 3.0, testutil.ToFloat64(m.OutboxPublished))

	pending, err := store.FetchPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	n, err = relay.Flush(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "nada se publica dos veces")
}

func TestRelayFlush_SeDetieneEnElPrimerFallo(t *testing.T) {
	store := memory.New()
	enqueue(t, store, "e1", "e2", "e3")
	pub := &fakePublisher{failOn: "e2"}
	m := metrics.New(prometheus.NewRegistry())
	relay := messaging.NewRelay(store, pub, time.Second, 10, zerolog.Nop(), m)

	n, err := relay.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"e1"}, pub.ids(), "e3 no debe adelantarse a e2")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxFailed))

	pending, err := store.FetchPending(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "e2", pending[0].ID)
	assert.Equal(t, 1, pending[0].PublishAttempts)
	assert.Equal(t, "broker no disponible", pending[0].LastError)

	pub.mu.Lock()
	pub.failOn = ""
	pub.mu.Unlock()
	n, err = relay.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"e1", "e2", "e3"}, pub.ids())
}

func TestRelayFlush_RespetaElTamanoDeLote(t *testing.T) {
	store := memory.New()
	enqueue(t, store, "e1", "e2", "e3", "e4", "e5")
	pub := &fakePublisher{}
	relay := messaging.NewRelay(store, pub, time.Second, 2, zerolog.Nop(), metrics.New(prometheus.NewRegistry()))

	n, err := relay.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRelayRun_TerminaAlCancelar(t *testing.T) {
	store := memory.New()
	enqueue(t, store, "e1")
	pub := &fakePublisher{}
	relay := messaging.NewRelay(store, pub, 10*time.Millisecond, 10, zerolog.Nop(), metrics.New(prometheus.NewRegistry()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		relay.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return len(pub.ids()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("el relay no se detuvo tras cancelar el contexto")
	}
}
