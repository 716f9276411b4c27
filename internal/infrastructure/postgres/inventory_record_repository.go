package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// inventoryTable describe las tablas que respaldan un tipo de ubicación.
// locations vacío = el tipo no tiene ubicación física (NOT_ASSIGNED).
type inventoryTable struct {
	kind      entity.LocationKind
	inventory string
	locations string
}

var inventoryTables = map[entity.LocationKind]inventoryTable{
	entity.LocationBoxBin:            {entity.LocationBoxBin, "box_bin_inventory", "box_bins"},
	entity.LocationRack:              {entity.LocationRack, "rack_inventory", "racks"},
	entity.LocationCabinet:           {entity.LocationCabinet, "cabinet_inventory", "cabinets"},
	entity.LocationSingleClawMachine: {entity.LocationSingleClawMachine, "single_claw_machine_inventory", "single_claw_machines"},
	entity.LocationDoubleClawMachine: {entity.LocationDoubleClawMachine, "double_claw_machine_inventory", "double_claw_machines"},
	entity.LocationKeychainMachine:   {entity.LocationKeychainMachine, "keychain_machine_inventory", "keychain_machines"},
	entity.LocationFourCornerMachine: {entity.LocationFourCornerMachine, "four_corner_machine_inventory", "four_corner_machines"},
	entity.LocationPusherMachine:     {entity.LocationPusherMachine, "pusher_machine_inventory", "pusher_machines"},
	entity.LocationNotAssigned:       {entity.LocationNotAssigned, "not_assigned_inventory", ""},
}

func tableFor(kind entity.LocationKind) (inventoryTable, error) {
	t, ok := inventoryTables[kind]
	if !ok {
		return inventoryTable{}, domain.InvalidInputf("tipo de ubicación desconocido %q", kind)
	}
	return t, nil
}

const recordColumns = `id, location_id, item_id, quantity, category, subcategory, description, version, created_at, updated_at`

var _ repository.InventoryStores = (*InventoryStores)(nil)

// InventoryStores despacho por tipo sobre un mismo Querier (pool o tx).
type InventoryStores struct {
	q Querier
}

// NewInventoryStores construye el despachador. Pasar pool o tx (Querier).
func NewInventoryStores(q Querier) *InventoryStores {
	return &InventoryStores{q: q}
}

// For devuelve el store del tipo pedido.
func (s *InventoryStores) For(kind entity.LocationKind) (repository.InventoryRecordStore, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	return &InventoryRecordRepo{q: s.q, table: t}, nil
}

var _ repository.InventoryRecordStore = (*InventoryRecordRepo)(nil)

// InventoryRecordRepo registros de inventario de un tipo de ubicación.
type InventoryRecordRepo struct {
	q     Querier
	table inventoryTable
}

// Kind tipo de ubicación servido.
func (r *InventoryRecordRepo) Kind() entity.LocationKind { return r.table.kind }

// GetByID obtiene un registro sin bloquear. nil, nil si no existe.
func (r *InventoryRecordRepo) GetByID(ctx context.Context, id string) (*entity.InventoryRecord, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate obtiene el registro y bloquea la fila hasta el fin de la tx (SELECT FOR UPDATE).
func (r *InventoryRecordRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryRecord, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *InventoryRecordRepo) get(ctx context.Context, id, suffix string) (*entity.InventoryRecord, error) {
	if !validUUID(id) {
		return nil, nil
	}
	query := `SELECT ` + recordColumns + ` FROM ` + r.table.inventory + ` WHERE id = $1` + suffix
	rec, err := r.scan(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get inventory record", err)
	}
	return rec, nil
}

// Create inserta el registro con version 1.
func (r *InventoryRecordRepo) Create(ctx context.Context, rec *entity.InventoryRecord) error {
	query := `INSERT INTO ` + r.table.inventory + ` (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 1, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		rec.ID, rec.LocationID, rec.ItemID, rec.Quantity, string(rec.Category),
		subcategoryArg(rec.Subcategory), rec.Description, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return mapError("insert inventory record", err)
	}
	rec.Version = 1
	return nil
}

// Update persiste cantidad y clasificación si la versión leída sigue vigente.
func (r *InventoryRecordRepo) Update(ctx context.Context, rec *entity.InventoryRecord) error {
	query := `UPDATE ` + r.table.inventory + `
		SET quantity = $2, category = $3, subcategory = $4, description = $5,
		    version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $6
		RETURNING version, updated_at`
	err := r.q.QueryRow(ctx, query,
		rec.ID, rec.Quantity, string(rec.Category), subcategoryArg(rec.Subcategory), rec.Description, rec.Version,
	).Scan(&rec.Version, &rec.UpdatedAt)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return mapError("update inventory record", err)
	}
	current, getErr := r.GetByID(ctx, rec.ID)
	if getErr != nil {
		return getErr
	}
	if current == nil {
		return domain.ErrNotFound
	}
	return domain.ErrConcurrentUpdate
}

// Delete elimina el registro.
func (r *InventoryRecordRepo) Delete(ctx context.Context, id string) error {
	if !validUUID(id) {
		return domain.ErrNotFound
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM `+r.table.inventory+` WHERE id = $1`, id)
	if err != nil {
		return mapError("delete inventory record", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByLocation registros de una ubicación ordenados por fecha de alta. locationID nil = NOT_ASSIGNED.
func (r *InventoryRecordRepo) ListByLocation(ctx context.Context, locationID *string) ([]*entity.InventoryRecord, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if locationID == nil {
		rows, err = r.q.Query(ctx, `SELECT `+recordColumns+` FROM `+r.table.inventory+` ORDER BY created_at, id`)
	} else {
		if !validUUID(*locationID) {
			return []*entity.InventoryRecord{}, nil
		}
		rows, err = r.q.Query(ctx, `SELECT `+recordColumns+` FROM `+r.table.inventory+` WHERE location_id = $1 ORDER BY created_at, id`, *locationID)
	}
	if err != nil {
		return nil, mapError("list inventory records", err)
	}
	defer rows.Close()

	out := make([]*entity.InventoryRecord, 0)
	for rows.Next() {
		rec, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// LocationExists indica si la ubicación física existe en la tabla de su tipo.
func (r *InventoryRecordRepo) LocationExists(ctx context.Context, locationID string) (bool, error) {
	if r.table.locations == "" {
		return true, nil
	}
	if !validUUID(locationID) {
		return false, nil
	}
	var ok bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+r.table.locations+` WHERE id = $1)`, locationID).Scan(&ok)
	if err != nil {
		return false, mapError("location exists", err)
	}
	return ok, nil
}

func (r *InventoryRecordRepo) scan(row pgx.Row) (*entity.InventoryRecord, error) {
	var (
		rec         entity.InventoryRecord
		category    string
		subcategory *string
	)
	if err := row.Scan(
		&rec.ID, &rec.LocationID, &rec.ItemID, &rec.Quantity, &category, &subcategory,
		&rec.Description, &rec.Version, &rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	rec.Kind = r.table.kind
	rec.Category = entity.ProductCategory(category)
	if subcategory != nil {
		sc := entity.ProductSubcategory(*subcategory)
		rec.Subcategory = &sc
	}
	return &rec, nil
}

func subcategoryArg(s *entity.ProductSubcategory) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}

var _ repository.LocationDirectory = (*LocationDirectory)(nil)

// LocationDirectory resuelve códigos de ubicación: una consulta por tipo.
type LocationDirectory struct {
	q Querier
}

// NewLocationDirectory construye el directorio. Pasar pool o tx (Querier).
func NewLocationDirectory(q Querier) *LocationDirectory {
	return &LocationDirectory{q: q}
}

// FindCodes id -> código para los ids del tipo dado. Los ids desconocidos no aparecen.
func (d *LocationDirectory) FindCodes(ctx context.Context, kind entity.LocationKind, ids []string) (map[string]string, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(ids))
	if t.locations == "" {
		return out, nil
	}
	uuids := parseUUIDs(ids)
	if len(uuids) == 0 {
		return out, nil
	}
	rows, err := d.q.Query(ctx, `SELECT id, code FROM `+t.locations+` WHERE id = ANY($1)`, uuids)
	if err != nil {
		return nil, mapError("find location codes", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, code string
		if err := rows.Scan(&id, &code); err != nil {
			return nil, fmt.Errorf("scan location code: %w", err)
		}
		out[id] = code
	}
	return out, rows.Err()
}
