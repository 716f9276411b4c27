package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/pkg/metrics"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	binID   = "bin-0001"
	rackID  = "rack-0001"
	itemID  = "item-plush-0001"
	otherID = "item-blind-0001"
	actorU  = "user-0001"
)

type fixture struct {
	store     *memory.Store
	metrics   *metrics.Metrics
	ledger    *inventory.Ledger
	transfers *inventory.TransferCoordinator
	records   *inventory.RecordService
}

// newFixture arma un libro en memoria con un box bin, un rack, dos artículos y un actor.
func newFixture(t *testing.T, opts ...inventory.LedgerOption) *fixture {
	t.Helper()
	store := memory.New()
	seedCatalog(store)
	return newFixtureWith(t, store, store, opts...)
}

// newFixtureWith permite envolver el TxRunner (p.ej. para inyectar fallos).
func newFixtureWith(t *testing.T, store *memory.Store, runner inventory.TxRunner, opts ...inventory.LedgerOption) *fixture {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	ledger := inventory.NewLedger(runner, store, zerolog.Nop(), m, opts...)
	return &fixture{
		store:     store,
		metrics:   m,
		ledger:    ledger,
		transfers: inventory.NewTransferCoordinator(ledger),
		records:   inventory.NewRecordService(ledger),
	}
}

func seedCatalog(store *memory.Store) {
	store.AddLocation(entity.LocationBoxBin, binID, "BB-01")
	store.AddLocation(entity.LocationRack, rackID, "R-01")
	store.AddProduct(itemID, "PL-001", "Peluche", decimal.RequireFromString("12.50"))
	store.AddProduct(otherID, "BB-001", "Blind box", decimal.RequireFromString("9.90"))
	store.AddUser(actorU, "Ana Operadora")
}

func ptr[T any](v T) *T { return &v }

// addRecord crea un registro de PLUSHIE con cantidad inicial en la ubicación dada.
func (f *fixture) addRecord(t *testing.T, kind entity.LocationKind, locationID *string, item string, qty int) *entity.InventoryRecord {
	t.Helper()
	rec, _, err := f.records.AddInventory(context.Background(), inventory.AddInventoryInput{
		Kind:            kind,
		LocationID:      locationID,
		ItemID:          item,
		Category:        entity.CategoryPlushie,
		InitialQuantity: qty,
		ActorID:         ptr(actorU),
	})
	require.NoError(t, err)
	require.NotNil(t, rec)
	return rec
}

func (f *fixture) quantity(t *testing.T, kind entity.LocationKind, id string) int {
	t.Helper()
	rec, ok := f.store.Record(kind, id)
	require.True(t, ok, "el registro %s/%s debe existir", kind, id)
	return rec.Quantity
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

// failingRunner delega en el store pero hace fallar Update en los registros de failKind.
type failingRunner struct {
	inner    *memory.Store
	failKind entity.LocationKind
}

var errDiskFull = errors.New("disk full")

func (r failingRunner) Run(ctx context.Context, fn func(tx inventory.TxRepos) error) error {
	return r.inner.Run(ctx, func(tx inventory.TxRepos) error {
		tx.Stores = failingStores{InventoryStores: tx.Stores, kind: r.failKind}
		return fn(tx)
	})
}

type failingStores struct {
	repository.InventoryStores
	kind entity.LocationKind
}

func (s failingStores) For(kind entity.LocationKind) (repository.InventoryRecordStore, error) {
	st, err := s.InventoryStores.For(kind)
	if err != nil || kind != s.kind {
		return st, err
	}
	return failingUpdate{InventoryRecordStore: st}, nil
}

type failingUpdate struct {
	repository.InventoryRecordStore
}

func (failingUpdate) Update(context.Context, *entity.InventoryRecord) error {
	return errDiskFull
}
