package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// InventoryHandler alta, clasificación y baja de registros de inventario (protegido).
type InventoryHandler struct {
	records *inventory.RecordService
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(records *inventory.RecordService) *InventoryHandler {
	return &InventoryHandler{records: records}
}

// Add godoc
// @Summary      Registrar un artículo en una ubicación
// @Description  Crea el registro; una cantidad inicial > 0 queda en el libro como INITIAL_STOCK.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        kind  path  string                   true  "Tipo de ubicación"
// @Param        body  body  dto.AddInventoryRequest  true  "location_id (salvo NOT_ASSIGNED), item_id, category, subcategory, initial_quantity"
// @Success      201  {object}  dto.AddInventoryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/inventory/{kind} [post]
func (h *InventoryHandler) Add(c *fiber.Ctx) error {
	kind, err := entity.ParseLocationKind(c.Params("kind"))
	if err != nil {
		return writeError(c, err)
	}
	var in dto.AddInventoryRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	rec, movement, err := h.records.AddInventory(c.UserContext(), inventory.AddInventoryInput{
		Kind:            kind,
		LocationID:      in.LocationID,
		ItemID:          in.ItemID,
		Category:        category(in.Category),
		Subcategory:     subcategory(in.Subcategory),
		Description:     in.Description,
		InitialQuantity: in.InitialQuantity,
		ActorID:         actorID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	out := dto.AddInventoryResponse{Record: dto.NewInventoryRecordResponse(rec)}
	if movement != nil {
		m := dto.NewStockMovementResponse(movement)
		out.Movement = &m
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListByLocation godoc
// @Summary      Registros de inventario de una ubicación
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        kind        path  string  true  "Tipo de ubicación"
// @Param        locationId  path  string  true  "ID de la ubicación"
// @Success      200  {array}   dto.InventoryRecordResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/{kind}/locations/{locationId} [get]
func (h *InventoryHandler) ListByLocation(c *fiber.Ctx) error {
	kind, err := entity.ParseLocationKind(c.Params("kind"))
	if err != nil {
		return writeError(c, err)
	}
	list, err := h.records.ListByLocation(c.UserContext(), kind, c.Params("locationId"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.InventoryRecordResponse, len(list))
	for i, r := range list {
		out[i] = dto.NewInventoryRecordResponse(r)
	}
	return c.JSON(out)
}

// UpdateClassification godoc
// @Summary      Cambiar categoría, subcategoría o descripción
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        kind      path  string                           true  "Tipo de ubicación"
// @Param        recordId  path  string                           true  "ID del registro"
// @Param        body      body  dto.UpdateClassificationRequest  true  "category, subcategory, description"
// @Success      200  {object}  dto.InventoryRecordResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/inventory/{kind}/{recordId} [patch]
func (h *InventoryHandler) UpdateClassification(c *fiber.Ctx) error {
	kind, err := entity.ParseLocationKind(c.Params("kind"))
	if err != nil {
		return writeError(c, err)
	}
	var in dto.UpdateClassificationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	rec, err := h.records.UpdateClassification(c.UserContext(), kind, c.Params("recordId"), inventory.ClassificationInput{
		Category:    category(in.Category),
		Subcategory: subcategory(in.Subcategory),
		Description: in.Description,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewInventoryRecordResponse(rec))
}

// Remove godoc
// @Summary      Eliminar un registro de inventario
// @Tags         inventory
// @Security     Bearer
// @Param        kind      path  string  true  "Tipo de ubicación"
// @Param        recordId  path  string  true  "ID del registro"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/{kind}/{recordId} [delete]
func (h *InventoryHandler) Remove(c *fiber.Ctx) error {
	kind, err := entity.ParseLocationKind(c.Params("kind"))
	if err != nil {
		return writeError(c, err)
	}
	if err := h.records.RemoveInventory(c.UserContext(), kind, c.Params("recordId")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func category(s string) entity.ProductCategory {
	return entity.ProductCategory(strings.ToUpper(strings.TrimSpace(s)))
}

func subcategory(s *string) *entity.ProductSubcategory {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	sub := entity.ProductSubcategory(strings.ToUpper(strings.TrimSpace(*s)))
	return &sub
}
