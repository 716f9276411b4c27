package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/audit"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// StockMovementHandler ajustes, traslados e historial del libro (protegido).
type StockMovementHandler struct {
	ledger    *inventory.Ledger
	transfers *inventory.TransferCoordinator
	projector *audit.Projector
}

// NewStockMovementHandler construye el handler.
func NewStockMovementHandler(ledger *inventory.Ledger, transfers *inventory.TransferCoordinator, projector *audit.Projector) *StockMovementHandler {
	return &StockMovementHandler{ledger: ledger, transfers: transfers, projector: projector}
}

// Adjust godoc
// @Summary      Ajustar la cantidad de un registro de inventario
// @Tags         stock-movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        kind      path  string             true  "Tipo de ubicación (BOX_BIN, RACK, ...)"
// @Param        recordId  path  string             true  "ID del registro de inventario"
// @Param        body      body  dto.AdjustRequest  true  "quantity_change (≠ 0), reason, notes"
// @Success      201  {object}  dto.StockMovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/stock-movements/{kind}/{recordId}/adjust [post]
func (h *StockMovementHandler) Adjust(c *fiber.Ctx) error {
	kind, err := entity.ParseLocationKind(c.Params("kind"))
	if err != nil {
		return writeError(c, err)
	}
	var in dto.AdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	reason, err := entity.ParseMovementReason(in.Reason)
	if err != nil {
		return writeError(c, err)
	}
	m, err := h.ledger.Adjust(c.UserContext(), inventory.AdjustInput{
		Kind:     kind,
		RecordID: c.Params("recordId"),
		Delta:    in.QuantityChange,
		Reason:   reason,
		ActorID:  actorID(c),
		Notes:    in.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewStockMovementResponse(m))
}

// Transfer godoc
// @Summary      Trasladar stock entre dos registros de inventario
// @Tags         stock-movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "origen, destino (debe existir) y cantidad > 0"
// @Success      201  {object}  dto.TransferResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock-movements/transfer [post]
func (h *StockMovementHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	srcKind, err := entity.ParseLocationKind(in.SourceLocationType)
	if err != nil {
		return writeError(c, err)
	}
	dstKind, err := entity.ParseLocationKind(in.DestinationLocationType)
	if err != nil {
		return writeError(c, err)
	}
	withdrawal, deposit, err := h.transfers.Transfer(c.UserContext(), inventory.TransferInput{
		SourceKind: srcKind,
		SourceID:   in.SourceInventoryID,
		DestKind:   dstKind,
		DestID:     in.DestinationInventoryID,
		Quantity:   in.Quantity,
		ActorID:    actorID(c),
		Notes:      in.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TransferResponse{
		TransferID: withdrawal.Metadata.TransferID,
		Withdrawal: dto.NewStockMovementResponse(withdrawal),
		Deposit:    dto.NewStockMovementResponse(deposit),
	})
}

// ItemHistory godoc
// @Summary      Historial de movimientos de un artículo
// @Tags         stock-movements
// @Security     Bearer
// @Produce      json
// @Param        itemId     path   string  true   "ID del artículo"
// @Param        page       query  int     false  "Página (1..)"
// @Param        page_size  query  int     false  "Tamaño de página (máx. 100)"
// @Success      200  {object}  dto.StockMovementPage
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock-movements/items/{itemId} [get]
func (h *StockMovementHandler) ItemHistory(c *fiber.Ctx) error {
	var pq dto.PageQuery
	if err := c.QueryParser(&pq); err != nil {
		return writeError(c, domain.InvalidInputf("paginación inválida"))
	}
	page, err := h.ledger.History(c.UserContext(), c.Params("itemId"), entity.PageRequest{Page: pq.Page, PageSize: pq.PageSize})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewStockMovementPage(page))
}

// AuditLog godoc
// @Summary      Log de auditoría de movimientos
// @Description  Movimientos filtrados con nombre del actor, códigos de ubicación y valor del cambio.
// @Tags         stock-movements
// @Security     Bearer
// @Produce      json
// @Param        item_id        query  string  false  "Artículo"
// @Param        location_type  query  string  false  "Tipo de ubicación"
// @Param        actor_id       query  string  false  "Actor"
// @Param        reason         query  string  false  "Motivo"
// @Param        from           query  string  false  "Desde (RFC3339)"
// @Param        to             query  string  false  "Hasta, exclusivo (RFC3339)"
// @Param        search         query  string  false  "SKU o nombre"
// @Param        page           query  int     false  "Página (1..)"
// @Param        page_size      query  int     false  "Tamaño de página (máx. 100)"
// @Success      200  {object}  dto.AuditLogPage
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock-movements/audit-log [get]
func (h *StockMovementHandler) AuditLog(c *fiber.Ctx) error {
	filter, err := parseMovementFilter(c)
	if err != nil {
		return writeError(c, err)
	}
	var pq dto.PageQuery
	if err := c.QueryParser(&pq); err != nil {
		return writeError(c, domain.InvalidInputf("paginación inválida"))
	}
	movements, err := h.ledger.ListMovements(c.UserContext(), filter, entity.PageRequest{Page: pq.Page, PageSize: pq.PageSize})
	if err != nil {
		return writeError(c, err)
	}
	rows, err := h.projector.ProjectPage(c.UserContext(), movements)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewAuditLogPage(rows))
}

func parseMovementFilter(c *fiber.Ctx) (repository.MovementFilter, error) {
	f := repository.MovementFilter{
		ItemID:  c.Query("item_id"),
		ActorID: c.Query("actor_id"),
		Search:  c.Query("search"),
	}
	if v := c.Query("location_type"); v != "" {
		kind, err := entity.ParseLocationKind(v)
		if err != nil {
			return f, err
		}
		f.LocationKind = kind
	}
	if v := c.Query("reason"); v != "" {
		reason, err := entity.ParseMovementReason(v)
		if err != nil {
			return f, err
		}
		f.Reason = reason
	}
	for _, p := range []struct {
		key string
		dst **time.Time
	}{{"from", &f.Since}, {"to", &f.Until}} {
		v := c.Query(p.key)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, domain.InvalidInputf("%s debe ser RFC3339", p.key)
		}
		t = t.UTC()
		*p.dst = &t
	}
	return f, nil
}
