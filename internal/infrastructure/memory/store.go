// Package memory implementa todos los puertos de persistencia en memoria.
// Se usa con STORAGE_DRIVER=memory y en los tests de los casos de uso.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ inventory.TxRunner                 = (*Store)(nil)
	_ repository.StockMovementRepository = (*Store)(nil)
	_ repository.LocationDirectory       = (*Store)(nil)
	_ repository.UserDirectory           = (*Store)(nil)
	_ repository.CredentialStore         = (*Store)(nil)
	_ repository.OutboxRepository        = (*Store)(nil)
)

// Store base de datos en memoria. Las transacciones se serializan con un mutex y
// trabajan sobre una copia que sólo reemplaza al estado vigente en el commit.
type Store struct {
	mu    sync.Mutex
	state *state
}

// New crea un store vacío.
func New() *Store {
	return &Store{state: newState()}
}

type state struct {
	records      map[entity.LocationKind]map[string]entity.InventoryRecord
	locations    map[entity.LocationKind]map[string]string
	products     map[string]entity.ItemSummary
	users        map[string]string
	accounts     map[string]entity.User
	movements    []entity.StockMovement
	outbox       []entity.OutboxEvent
	nextMovement int64
}

func newState() *state {
	st := &state{
		records:   make(map[entity.LocationKind]map[string]entity.InventoryRecord),
		locations: make(map[entity.LocationKind]map[string]string),
		products:  make(map[string]entity.ItemSummary),
		users:     make(map[string]string),
		accounts:  make(map[string]entity.User),
	}
	for _, k := range entity.LocationKinds() {
		st.records[k] = make(map[string]entity.InventoryRecord)
		st.locations[k] = make(map[string]string)
	}
	return st
}

// clone copia profunda de lo mutable; los movimientos son inmutables y se copian por valor.
func (st *state) clone() *state {
	c := &state{
		records:      make(map[entity.LocationKind]map[string]entity.InventoryRecord, len(st.records)),
		locations:    st.locations,
		products:     st.products,
		users:        st.users,
		accounts:     st.accounts,
		movements:    append([]entity.StockMovement(nil), st.movements...),
		outbox:       append([]entity.OutboxEvent(nil), st.outbox...),
		nextMovement: st.nextMovement,
	}
	for k, recs := range st.records {
		m := make(map[string]entity.InventoryRecord, len(recs))
		for id, r := range recs {
			m[id] = r
		}
		c.records[k] = m
	}
	return c
}

// AddLocation registra una ubicación física con su código visible.
func (s *Store) AddLocation(kind entity.LocationKind, id, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if kind.HasLocation() {
		s.state.locations[kind][id] = code
	}
}

// AddProduct registra un artículo; sólo los artículos conocidos pueden tener inventario.
func (s *Store) AddProduct(id, sku, name string, unitCost decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.products[id] = entity.ItemSummary{SKU: sku, Name: name, UnitCost: unitCost}
}

// AddUser registra el nombre visible de un actor.
func (s *Store) AddUser(id, fullName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.users[id] = fullName
}

// AddAccount registra un usuario con credenciales; también queda como actor con nombre.
func (s *Store) AddAccount(u entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.users[u.ID] = u.FullName
	s.state.accounts[strings.ToLower(u.Email)] = u
}

// FindByEmail usuario por email; nil, nil si no existe.
func (s *Store) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.state.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// Run ejecuta fn sobre una copia del estado; si fn devuelve error la copia se descarta.
func (s *Store) Run(ctx context.Context, fn func(tx inventory.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	v := &view{st: work}
	if err := fn(inventory.TxRepos{
		Stores:    v,
		Locations: v,
		Movements: v,
		Outbox:    v,
	}); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *Store) locked() (*view, func()) {
	s.mu.Lock()
	return &view{st: s.state}, s.mu.Unlock
}

// Create agrega un movimiento fuera de una transacción.
func (s *Store) Create(ctx context.Context, m *entity.StockMovement) error {
	v, unlock := s.locked()
	defer unlock()
	return v.Create(ctx, m)
}

// GetByID obtiene un movimiento. nil, nil si no existe.
func (s *Store) GetByID(ctx context.Context, id int64) (*entity.StockMovement, error) {
	v, unlock := s.locked()
	defer unlock()
	return v.GetByID(ctx, id)
}

// List historial filtrado y paginado.
func (s *Store) List(ctx context.Context, filter repository.MovementFilter, page entity.PageRequest) (entity.Page[entity.StockMovement], error) {
	v, unlock := s.locked()
	defer unlock()
	return v.List(ctx, filter, page)
}

// ListByTransfer patas de un traslado.
func (s *Store) ListByTransfer(ctx context.Context, transferID string) ([]entity.StockMovement, error) {
	v, unlock := s.locked()
	defer unlock()
	return v.ListByTransfer(ctx, transferID)
}

// FindCodes códigos de ubicación del tipo dado.
func (s *Store) FindCodes(ctx context.Context, kind entity.LocationKind, ids []string) (map[string]string, error) {
	v, unlock := s.locked()
	defer unlock()
	return v.FindCodes(ctx, kind, ids)
}

// FindNames nombres de actores.
func (s *Store) FindNames(_ context.Context, ids []string) (map[string]string, error) {
	_, unlock := s.locked()
	defer unlock()
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if name, ok := s.state.users[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

// Enqueue agrega un evento fuera de una transacción.
func (s *Store) Enqueue(ctx context.Context, e *entity.OutboxEvent) error {
	v, unlock := s.locked()
	defer unlock()
	return v.Enqueue(ctx, e)
}

// FetchPending eventos sin publicar.
func (s *Store) FetchPending(ctx context.Context, limit int) ([]*entity.OutboxEvent, error) {
	v, unlock := s.locked()
	defer unlock()
	return v.FetchPending(ctx, limit)
}

// MarkPublished marca el evento como entregado.
func (s *Store) MarkPublished(ctx context.Context, id string, at time.Time) error {
	v, unlock := s.locked()
	defer unlock()
	return v.MarkPublished(ctx, id, at)
}

// MarkFailed registra un intento fallido.
func (s *Store) MarkFailed(ctx context.Context, id string, lastErr string) error {
	v, unlock := s.locked()
	defer unlock()
	return v.MarkFailed(ctx, id, lastErr)
}

// Record lectura directa de un registro (tests y diagnóstico).
func (s *Store) Record(kind entity.LocationKind, id string) (entity.InventoryRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.state.records[kind][id]
	return r, ok
}

// Movements copia de todos los movimientos en orden de inserción.
func (s *Store) Movements() []entity.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.StockMovement(nil), s.state.movements...)
}

// view implementa los puertos sobre un estado sin tomar el mutex (el llamador ya lo tiene).
type view struct {
	st *state
}

func (v *view) For(kind entity.LocationKind) (repository.InventoryRecordStore, error) {
	if !kind.Valid() {
		return nil, domain.InvalidInputf("tipo de ubicación desconocido %q", kind)
	}
	return &recordStore{st: v.st, kind: kind}, nil
}

func (v *view) FindCodes(_ context.Context, kind entity.LocationKind, ids []string) (map[string]string, error) {
	if !kind.Valid() {
		return nil, domain.InvalidInputf("tipo de ubicación desconocido %q", kind)
	}
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if code, ok := v.st.locations[kind][id]; ok {
			out[id] = code
		}
	}
	return out, nil
}

func (v *view) Create(_ context.Context, m *entity.StockMovement) error {
	v.st.nextMovement++
	m.ID = v.st.nextMovement
	stored := *m
	stored.Item = nil
	v.st.movements = append(v.st.movements, stored)
	return nil
}

func (v *view) withItem(m entity.StockMovement) entity.StockMovement {
	if p, ok := v.st.products[m.ItemID]; ok {
		item := p
		m.Item = &item
	}
	return m
}

func (v *view) GetByID(_ context.Context, id int64) (*entity.StockMovement, error) {
	for _, m := range v.st.movements {
		if m.ID == id {
			out := v.withItem(m)
			return &out, nil
		}
	}
	return nil, nil
}

func (v *view) List(_ context.Context, f repository.MovementFilter, page entity.PageRequest) (entity.Page[entity.StockMovement], error) {
	page = page.Normalize()
	search := strings.ToLower(f.Search)

	matched := make([]entity.StockMovement, 0)
	for _, m := range v.st.movements {
		if f.ItemID != "" && m.ItemID != f.ItemID {
			continue
		}
		if f.LocationKind != "" && m.LocationKind != f.LocationKind {
			continue
		}
		if f.ActorID != "" && (m.ActorID == nil || *m.ActorID != f.ActorID) {
			continue
		}
		if f.Reason != "" && m.Reason != f.Reason {
			continue
		}
		if f.Since != nil && m.OccurredAt.Before(*f.Since) {
			continue
		}
		if f.Until != nil && !m.OccurredAt.Before(*f.Until) {
			continue
		}
		m = v.withItem(m)
		if search != "" {
			if m.Item == nil {
				continue
			}
			if !strings.Contains(strings.ToLower(m.Item.SKU), search) && !strings.Contains(strings.ToLower(m.Item.Name), search) {
				continue
			}
		}
		matched = append(matched, m)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].OccurredAt.Equal(matched[j].OccurredAt) {
			return matched[i].OccurredAt.After(matched[j].OccurredAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	start := page.Offset()
	if start < 0 || start > len(matched) {
		start = len(matched)
	}
	end := start + page.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return entity.Page[entity.StockMovement]{
		Items:    append([]entity.StockMovement{}, matched[start:end]...),
		Total:    total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}, nil
}

func (v *view) ListByTransfer(_ context.Context, transferID string) ([]entity.StockMovement, error) {
	out := make([]entity.StockMovement, 0, 2)
	for _, m := range v.st.movements {
		if m.Metadata.TransferID == transferID {
			out = append(out, v.withItem(m))
		}
	}
	return out, nil
}

func (v *view) Enqueue(_ context.Context, e *entity.OutboxEvent) error {
	for _, existing := range v.st.outbox {
		if existing.ID == e.ID {
			return domain.ErrDuplicate
		}
	}
	v.st.outbox = append(v.st.outbox, *e)
	return nil
}

func (v *view) FetchPending(_ context.Context, limit int) ([]*entity.OutboxEvent, error) {
	out := make([]*entity.OutboxEvent, 0)
	for i := range v.st.outbox {
		if len(out) >= limit {
			break
		}
		if v.st.outbox[i].PublishedAt == nil {
			e := v.st.outbox[i]
			out = append(out, &e)
		}
	}
	return out, nil
}

func (v *view) MarkPublished(_ context.Context, id string, at time.Time) error {
	for i := range v.st.outbox {
		if v.st.outbox[i].ID == id {
			t := at
			v.st.outbox[i].PublishedAt = &t
			v.st.outbox[i].LastError = ""
			return nil
		}
	}
	return domain.ErrNotFound
}

func (v *view) MarkFailed(_ context.Context, id string, lastErr string) error {
	for i := range v.st.outbox {
		if v.st.outbox[i].ID == id {
			v.st.outbox[i].PublishAttempts++
			v.st.outbox[i].LastError = lastErr
			return nil
		}
	}
	return domain.ErrNotFound
}

// recordStore registros de un tipo dentro de una vista.
type recordStore struct {
	st   *state
	kind entity.LocationKind
}

func (r *recordStore) Kind() entity.LocationKind { return r.kind }

func (r *recordStore) GetByID(_ context.Context, id string) (*entity.InventoryRecord, error) {
	rec, ok := r.st.records[r.kind][id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// GetForUpdate igual que GetByID: la transacción ya tiene el store en exclusiva.
func (r *recordStore) GetForUpdate(ctx context.Context, id string) (*entity.InventoryRecord, error) {
	return r.GetByID(ctx, id)
}

func (r *recordStore) Create(_ context.Context, rec *entity.InventoryRecord) error {
	recs := r.st.records[r.kind]
	if _, exists := recs[rec.ID]; exists {
		return domain.ErrDuplicate
	}
	if _, ok := r.st.products[rec.ItemID]; !ok {
		return domain.ErrNotFound
	}
	for _, other := range recs {
		if other.ItemID == rec.ItemID && other.LocationIDValue() == rec.LocationIDValue() {
			return domain.ErrDuplicate
		}
	}
	rec.Kind = r.kind
	rec.Version = 1
	recs[rec.ID] = *rec
	return nil
}

func (r *recordStore) Update(_ context.Context, rec *entity.InventoryRecord) error {
	current, ok := r.st.records[r.kind][rec.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if current.Version != rec.Version {
		return domain.ErrConcurrentUpdate
	}
	rec.Version++
	rec.UpdatedAt = time.Now().UTC()
	r.st.records[r.kind][rec.ID] = *rec
	return nil
}

func (r *recordStore) Delete(_ context.Context, id string) error {
	if _, ok := r.st.records[r.kind][id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.st.records[r.kind], id)
	return nil
}

func (r *recordStore) ListByLocation(_ context.Context, locationID *string) ([]*entity.InventoryRecord, error) {
	out := make([]*entity.InventoryRecord, 0)
	for _, rec := range r.st.records[r.kind] {
		if locationID != nil && rec.LocationIDValue() != *locationID {
			continue
		}
		rec := rec
		out = append(out, &rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *recordStore) LocationExists(_ context.Context, locationID string) (bool, error) {
	if !r.kind.HasLocation() {
		return true, nil
	}
	_, ok := r.st.locations[r.kind][locationID]
	return ok, nil
}
