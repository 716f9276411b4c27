package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

var dialect = goqu.Dialect("postgres")

// StockMovementRepo libro de movimientos sobre PostgreSQL (usable con pool o tx).
// Las lecturas adjuntan sku, nombre y costo del producto con un LEFT JOIN.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create inserta el movimiento y asigna el ID generado por la secuencia.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	meta, err := json.Marshal(m.Metadata)
	if err != nil {
		return fmt.Errorf("marshal movement metadata: %w", err)
	}
	query := `
		INSERT INTO stock_movements (
			location_kind, item_id, from_location_id, to_location_id,
			previous_quantity, new_quantity, quantity_change, reason, actor_id, occurred_at, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`
	err = r.q.QueryRow(ctx, query,
		string(m.LocationKind), m.ItemID, m.FromLocationID, m.ToLocationID,
		m.PreviousQuantity, m.NewQuantity, m.QuantityChange, string(m.Reason), m.ActorID, m.OccurredAt, meta,
	).Scan(&m.ID)
	if err != nil {
		return mapError("insert stock movement", err)
	}
	return nil
}

// GetByID obtiene un movimiento. nil, nil si no existe.
func (r *StockMovementRepo) GetByID(ctx context.Context, id int64) (*entity.StockMovement, error) {
	items, err := r.query(ctx, "get stock movement", baseSelect().Where(goqu.I("m.id").Eq(id)))
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// List historial filtrado, más recientes primero, con el total para paginar.
func (r *StockMovementRepo) List(ctx context.Context, filter repository.MovementFilter, page entity.PageRequest) (entity.Page[entity.StockMovement], error) {
	page = page.Normalize()
	if (filter.ItemID != "" && !validUUID(filter.ItemID)) || (filter.ActorID != "" && !validUUID(filter.ActorID)) {
		return entity.Page[entity.StockMovement]{Items: []entity.StockMovement{}, Page: page.Page, PageSize: page.PageSize}, nil
	}
	where := filterExpressions(filter)

	countSQL, countArgs, err := dialect.From(goqu.T("stock_movements").As("m")).
		LeftJoin(goqu.T("products").As("p"), goqu.On(goqu.I("p.id").Eq(goqu.I("m.item_id")))).
		Select(goqu.COUNT(goqu.Star())).
		Where(where...).
		Prepared(true).
		ToSQL()
	if err != nil {
		return entity.Page[entity.StockMovement]{}, fmt.Errorf("build count query: %w", err)
	}
	var total int64
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return entity.Page[entity.StockMovement]{}, mapError("count stock movements", err)
	}

	ds := baseSelect().
		Where(where...).
		Order(goqu.I("m.occurred_at").Desc(), goqu.I("m.id").Desc()).
		Limit(uint(page.PageSize)).
		Offset(uint(page.Offset()))
	items, err := r.query(ctx, "list stock movements", ds)
	if err != nil {
		return entity.Page[entity.StockMovement]{}, err
	}
	return entity.Page[entity.StockMovement]{Items: items, Total: total, Page: page.Page, PageSize: page.PageSize}, nil
}

// ListByTransfer las dos patas de un traslado, retiro primero.
func (r *StockMovementRepo) ListByTransfer(ctx context.Context, transferID string) ([]entity.StockMovement, error) {
	ds := baseSelect().
		Where(goqu.L("m.metadata->>'transfer_id'").Eq(transferID)).
		Order(goqu.I("m.id").Asc())
	return r.query(ctx, "list transfer movements", ds)
}

func baseSelect() *goqu.SelectDataset {
	return dialect.From(goqu.T("stock_movements").As("m")).
		LeftJoin(goqu.T("products").As("p"), goqu.On(goqu.I("p.id").Eq(goqu.I("m.item_id")))).
		Select(
			goqu.I("m.id"), goqu.I("m.location_kind"), goqu.I("m.item_id"),
			goqu.I("m.from_location_id"), goqu.I("m.to_location_id"),
			goqu.I("m.previous_quantity"), goqu.I("m.new_quantity"), goqu.I("m.quantity_change"),
			goqu.I("m.reason"), goqu.I("m.actor_id"), goqu.I("m.occurred_at"), goqu.I("m.metadata"),
			goqu.I("p.sku"), goqu.I("p.name"), goqu.I("p.unit_cost"),
		).
		Prepared(true)
}

func filterExpressions(f repository.MovementFilter) []exp.Expression {
	var where []exp.Expression
	if f.ItemID != "" {
		where = append(where, goqu.I("m.item_id").Eq(f.ItemID))
	}
	if f.LocationKind != "" {
		where = append(where, goqu.I("m.location_kind").Eq(string(f.LocationKind)))
	}
	if f.ActorID != "" {
		where = append(where, goqu.I("m.actor_id").Eq(f.ActorID))
	}
	if f.Reason != "" {
		where = append(where, goqu.I("m.reason").Eq(string(f.Reason)))
	}
	if f.Since != nil {
		where = append(where, goqu.I("m.occurred_at").Gte(*f.Since))
	}
	if f.Until != nil {
		where = append(where, goqu.I("m.occurred_at").Lt(*f.Until))
	}
	if f.Search != "" {
		pattern := containsPattern(f.Search)
		where = append(where, goqu.Or(
			goqu.I("p.sku").ILike(pattern),
			goqu.I("p.name").ILike(pattern),
		))
	}
	return where
}

func (r *StockMovementRepo) query(ctx context.Context, op string, ds *goqu.SelectDataset) ([]entity.StockMovement, error) {
	sql, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()

	out := make([]entity.StockMovement, 0)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, mapError(op, err)
	}
	return out, nil
}

func scanMovement(row pgx.Row) (entity.StockMovement, error) {
	var (
		m        entity.StockMovement
		kind     string
		reason   string
		meta     []byte
		sku      *string
		name     *string
		unitCost decimal.NullDecimal
	)
	if err := row.Scan(
		&m.ID, &kind, &m.ItemID, &m.FromLocationID, &m.ToLocationID,
		&m.PreviousQuantity, &m.NewQuantity, &m.QuantityChange,
		&reason, &m.ActorID, &m.OccurredAt, &meta,
		&sku, &name, &unitCost,
	); err != nil {
		return m, err
	}
	m.LocationKind = entity.LocationKind(kind)
	m.Reason = entity.MovementReason(reason)
	m.OccurredAt = m.OccurredAt.UTC()
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &m.Metadata); err != nil {
			return m, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	if sku != nil {
		m.Item = &entity.ItemSummary{SKU: *sku, Name: deref(name)}
		if unitCost.Valid {
			m.Item.UnitCost = unitCost.Decimal
		}
	}
	return m, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
