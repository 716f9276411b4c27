package audit

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/metrics"
)

var tracer = otel.Tracer("github.com/jhoicas/stock-ledger/internal/application/audit")

// Projector convierte movimientos del libro en filas de auditoría legibles.
// Por cada llamada emite a lo sumo 1 + K consultas en lote (actores + una por tipo de ubicación).
type Projector struct {
	users     repository.UserDirectory
	locations repository.LocationDirectory
	log       zerolog.Logger
	metrics   *metrics.Metrics
}

// NewProjector construye el proyector.
func NewProjector(users repository.UserDirectory, locations repository.LocationDirectory, log zerolog.Logger, m *metrics.Metrics) *Projector {
	return &Projector{
		users:     users,
		locations: locations,
		log:       log.With().Str("component", "audit_projector").Logger(),
		metrics:   m,
	}
}

// Project mapea movements a filas en el mismo orden. Nunca falla por datos sin resolver:
// los nombres y códigos ausentes quedan vacíos.
func (p *Projector) Project(ctx context.Context, movements []entity.StockMovement) ([]entity.AuditRow, error) {
	ctx, span := tracer.Start(ctx, "Projector.Project")
	defer span.End()
	span.SetAttributes(attribute.Int("movements", len(movements)))

	if len(movements) == 0 {
		return []entity.AuditRow{}, nil
	}

	actorIDs, idsByKind := collectLookups(movements)

	var names map[string]string
	kinds := make([]entity.LocationKind, 0, len(idsByKind))
	for k := range idsByKind {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	codes := make([]map[string]string, len(kinds))

	g, gctx := errgroup.WithContext(ctx)
	if len(actorIDs) > 0 {
		g.Go(func() error {
			p.metrics.ProjectorLookups.WithLabelValues("actors").Inc()
			res, err := p.users.FindNames(gctx, actorIDs)
			if err != nil {
				p.log.Warn().Err(err).Int("ids", len(actorIDs)).Msg("no se pudieron resolver nombres de actores")
				return nil
			}
			names = res
			return nil
		})
	}
	for i, kind := range kinds {
		i, kind := i, kind
		ids := idsByKind[kind]
		g.Go(func() error {
			p.metrics.ProjectorLookups.WithLabelValues(string(kind)).Inc()
			res, err := p.locations.FindCodes(gctx, kind, ids)
			if err != nil {
				p.log.Warn().Err(err).Str("location_type", string(kind)).Int("ids", len(ids)).Msg("no se pudieron resolver códigos de ubicación")
				return nil
			}
			codes[i] = res
			return nil
		})
	}
	// Los fallos de consulta degradan a vacío; sólo la cancelación corta la proyección.
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	codesByKind := make(map[entity.LocationKind]map[string]string, len(kinds))
	for i, kind := range kinds {
		codesByKind[kind] = codes[i]
	}

	caser := cases.Title(language.English)
	rows := make([]entity.AuditRow, len(movements))
	for i := range movements {
		rows[i] = assemble(&movements[i], names, codesByKind, caser)
	}
	p.metrics.ProjectedRows.Add(float64(len(rows)))
	return rows, nil
}

// ProjectPage proyecta el contenido de la página conservando total, página y tamaño.
func (p *Projector) ProjectPage(ctx context.Context, page entity.Page[entity.StockMovement]) (entity.Page[entity.AuditRow], error) {
	rows, err := p.Project(ctx, page.Items)
	if err != nil {
		return entity.Page[entity.AuditRow]{}, err
	}
	return entity.MapPage(page, rows), nil
}

// collectLookups ids distintos de actores y de ubicaciones agrupados por el tipo de cada lado.
func collectLookups(movements []entity.StockMovement) ([]string, map[entity.LocationKind][]string) {
	seenActors := make(map[string]struct{})
	actorIDs := make([]string, 0)
	seenLoc := make(map[entity.LocationKind]map[string]struct{})
	idsByKind := make(map[entity.LocationKind][]string)

	addLoc := func(kind entity.LocationKind, id *string) {
		if id == nil || *id == "" || !kind.HasLocation() {
			return
		}
		set, ok := seenLoc[kind]
		if !ok {
			set = make(map[string]struct{})
			seenLoc[kind] = set
		}
		if _, dup := set[*id]; dup {
			return
		}
		set[*id] = struct{}{}
		idsByKind[kind] = append(idsByKind[kind], *id)
	}

	for i := range movements {
		m := &movements[i]
		if m.ActorID != nil && *m.ActorID != "" {
			if _, dup := seenActors[*m.ActorID]; !dup {
				seenActors[*m.ActorID] = struct{}{}
				actorIDs = append(actorIDs, *m.ActorID)
			}
		}
		addLoc(m.FromKind(), m.FromLocationID)
		addLoc(m.ToKind(), m.ToLocationID)
	}
	return actorIDs, idsByKind
}

func assemble(m *entity.StockMovement, names map[string]string, codes map[entity.LocationKind]map[string]string, caser cases.Caser) entity.AuditRow {
	row := entity.AuditRow{
		ID:               m.ID,
		LocationKind:     m.LocationKind,
		ItemID:           m.ItemID,
		FromLocationID:   m.FromLocationID,
		ToLocationID:     m.ToLocationID,
		PreviousQuantity: m.PreviousQuantity,
		NewQuantity:      m.NewQuantity,
		QuantityChange:   m.QuantityChange,
		Reason:           m.Reason,
		ReasonLabel:      reasonLabel(caser, m.Reason),
		ActorID:          m.ActorID,
		Transfer:         m.Metadata.Transfer,
		TransferID:       m.Metadata.TransferID,
		Notes:            m.Metadata.Notes,
		ValueChange:      decimal.Zero,
		OccurredAt:       m.OccurredAt,
	}
	if m.ActorID != nil {
		row.ActorName = names[*m.ActorID]
	}
	row.FromLocationCode = sideCode(m.FromKind(), m.FromLocationID, fromSideUsed(m), codes)
	row.ToLocationCode = sideCode(m.ToKind(), m.ToLocationID, toSideUsed(m), codes)
	if m.Item != nil {
		row.ItemSKU = m.Item.SKU
		row.ItemName = m.Item.Name
		row.ValueChange = m.Item.UnitCost.Mul(decimal.NewFromInt(int64(m.QuantityChange)))
	}
	return row
}

// fromSideUsed indica si el lado origen participa: retiros y ambas patas de un traslado.
func fromSideUsed(m *entity.StockMovement) bool {
	return m.IsTransfer() || m.QuantityChange < 0
}

func toSideUsed(m *entity.StockMovement) bool {
	return m.IsTransfer() || m.QuantityChange > 0
}

func sideCode(kind entity.LocationKind, id *string, used bool, codes map[entity.LocationKind]map[string]string) string {
	if !kind.HasLocation() {
		if used && id == nil {
			return entity.NotAssignedCode
		}
		return ""
	}
	if id == nil {
		return ""
	}
	return codes[kind][*id]
}

func reasonLabel(caser cases.Caser, r entity.MovementReason) string {
	return caser.String(strings.ReplaceAll(strings.ToLower(string(r)), "_", " "))
}
