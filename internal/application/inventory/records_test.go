package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// AddInventory
// ──────────────────────────────────────────────────────────────────────────────

func TestAddInventory_ConStockInicialRegistraMovimiento(t *testing.T) {
	f := newFixture(t)

	rec, m, err := f.records.AddInventory(context.Background(), inventory.AddInventoryInput{
		Kind:            entity.LocationBoxBin,
		LocationID:      ptr(binID),
		ItemID:          itemID,
		Category:        entity.CategoryPlushie,
		Description:     "peluches grandes",
		InitialQuantity: 12,
		ActorID:         ptr(actorU),
	})
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.Equal(t, 12, rec.Quantity)
	assert.Equal(t, entity.LocationBoxBin, rec.Kind)
	assert.Equal(t, "peluches grandes", rec.Description)
	assert.Equal(t, entity.ReasonInitialStock, m.Reason)
	assert.Equal(t, 0, m.PreviousQuantity)
	assert.Equal(t, 12, m.NewQuantity)
	assert.Equal(t, binID, *m.ToLocationID)
	assert.Equal(t, rec.ID, m.Metadata.InventoryID)
	assert.Len(t, f.store.Movements(), 1)
}

func TestAddInventory_SinStockInicialNoRegistraMovimiento(t *testing.T) {
	f := newFixture(t)

	rec, m, err := f.records.AddInventory(context.Background(), inventory.AddInventoryInput{
		Kind: entity.LocationRack, LocationID: ptr(rackID), ItemID: itemID, Category: entity.CategoryFigurine,
	})
	require.NoError(t, err)
	assert.Nil(t, m)
	assert.Equal(t, 0, rec.Quantity)
	assert.Empty(t, f.store.Movements())
}

func TestAddInventory_NotAssignedIgnoraLaUbicacion(t *testing.T) {
	f := newFixture(t)

	rec, _, err := f.records.AddInventory(context.Background(), inventory.AddInventoryInput{
		Kind: entity.LocationNotAssigned, LocationID: ptr(rackID), ItemID: itemID,
		Category: entity.CategoryGundam, InitialQuantity: 1,
	})
	require.NoError(t, err)
	assert.Nil(t, rec.LocationID)
}

func TestAddInventory_CategoriaNoPermitidaEnBin_InvalidState(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.records.AddInventory(context.Background(), inventory.AddInventoryInput{
		Kind: entity.LocationBoxBin, LocationID: ptr(binID), ItemID: itemID,
		Category: entity.CategoryFigurine, InitialQuantity: 5,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	recs, err := f.records.ListByLocation(context.Background(), entity.LocationBoxBin, binID)
	require.NoError(t, err)
	assert.Empty(t, recs, "no debe crearse el registro")
	assert.Empty(t, f.store.Movements(), "ni su movimiento")
}

func TestAddInventory_ReglasDeSubcategoria(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.records.AddInventory(context.Background(), inventory.AddInventoryInput{
		Kind: entity.LocationRack, LocationID: ptr(rackID), ItemID: otherID,
		Category: entity.CategoryBlindBox,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState, "BLIND_BOX exige subcategoría")

	popmart := entity.SubcategoryPopmart
	_, _, err = f.records.AddInventory(context.Background(), inventory.AddInventoryInput{
		Kind: entity.LocationRack, LocationID: ptr(rackID), ItemID: otherID,
		Category: entity.CategoryPlushie, Subcategory: &popmart,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState, "otras categorías no admiten subcategoría")

	rec, _, err := f.records.AddInventory(context.Background(), inventory.AddInventoryInput{
		Kind: entity.LocationRack, LocationID: ptr(rackID), ItemID: otherID,
		Category: entity.CategoryBlindBox, Subcategory: &popmart, InitialQuantity: 24,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SubcategoryPopmart, *rec.Subcategory)
}

func TestAddInventory_Rechazos(t *testing.T) {
	f := newFixture(t)
	f.addRecord(t, entity.LocationRack, ptr(rackID), itemID, 1)

	_, _, err := f.records.AddInventory(context.Background(), inventory.AddInventoryInput{
		Kind: entity.LocationRack, LocationID: ptr(rackID), ItemID: itemID, Category: entity.CategoryPlushie,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate, "un artículo por ubicación")

	_, _, err = f.records.AddInventory(context.Background(), inventory.AddInventoryInput{
		Kind: entity.LocationRack, LocationID: ptr("rack-fantasma"), ItemID: itemID, Category: entity.CategoryPlushie,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound, "la ubicación debe existir")

	_, _, err = f.records.AddInventory(context.Background(), inventory.AddInventoryInput{
		Kind: entity.LocationBoxBin, LocationID: ptr(binID), ItemID: "item-desconocido", Category: entity.CategoryPlushie,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound, "el artículo debe existir")

	_, _, err = f.records.AddInventory(context.Background(), inventory.AddInventoryInput{
		Kind: entity.LocationBoxBin, LocationID: ptr(binID), ItemID: itemID, Category: entity.CategoryPlushie, InitialQuantity: -1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, _, err = f.records.AddInventory(context.Background(), inventory.AddInventoryInput{
		Kind: entity.LocationBoxBin, LocationID: ptr(binID), Category: entity.CategoryPlushie,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, _, err = f.records.AddInventory(context.Background(), inventory.AddInventoryInput{
		Kind: entity.LocationBoxBin, ItemID: itemID, Category: entity.CategoryPlushie,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState, "un box bin requiere id de ubicación")
}

// ──────────────────────────────────────────────────────────────────────────────
// UpdateClassification
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateClassification_ConservaLaCantidad(t *testing.T) {
	f := newFixture(t)
	rec := f.addRecord(t, entity.LocationRack, ptr(rackID), itemID, 7)
	movements := f.store.Movements()

	dreams := entity.SubcategoryDreams
	desc := "estante superior"
	updated, err := f.records.UpdateClassification(context.Background(), entity.LocationRack, rec.ID, inventory.ClassificationInput{
		Category:    entity.CategoryBlindBox,
		Subcategory: &dreams,
		Description: &desc,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.CategoryBlindBox, updated.Category)
	assert.Equal(t, entity.SubcategoryDreams, *updated.Subcategory)
	assert.Equal(t, "estante superior", updated.Description)
	assert.Equal(t, 7, updated.Quantity)
	assert.Greater(t, updated.Version, rec.Version)

	stored, _ := f.store.Record(entity.LocationRack, rec.ID)
	assert.Equal(t, entity.CategoryBlindBox, stored.Category)
	assert.Equal(t, movements, f.store.Movements(), "reclasificar no toca el libro")
}

func TestUpdateClassification_SoloDescripcionConservaSubcategoria(t *testing.T) {
	f := newFixture(t)
	popmart := entity.SubcategoryPopmart
	rec, _, err := f.records.AddInventory(context.Background(), inventory.AddInventoryInput{
		Kind: entity.LocationRack, LocationID: ptr(rackID), ItemID: otherID,
		Category: entity.CategoryBlindBox, Subcategory: &popmart, InitialQuantity: 2,
	})
	require.NoError(t, err)

	desc := "vitrina de novedades"
	updated, err := f.records.UpdateClassification(context.Background(), entity.LocationRack, rec.ID, inventory.ClassificationInput{
		Description: &desc,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Subcategory)
	assert.Equal(t, entity.SubcategoryPopmart, *updated.Subcategory)
	assert.Equal(t, entity.CategoryBlindBox, updated.Category)
	assert.Equal(t, "vitrina de novedades", updated.Description)

	stored, _ := f.store.Record(entity.LocationRack, rec.ID)
	require.NotNil(t, stored.Subcategory)
	assert.Equal(t, entity.SubcategoryPopmart, *stored.Subcategory)
}

func TestUpdateClassification_CambiarCategoriaDescartaSubcategoria(t *testing.T) {
	f := newFixture(t)
	popmart := entity.SubcategoryPopmart
	rec, _, err := f.records.AddInventory(context.Background(), inventory.AddInventoryInput{
		Kind: entity.LocationRack, LocationID: ptr(rackID), ItemID: otherID,
		Category: entity.CategoryBlindBox, Subcategory: &popmart,
	})
	require.NoError(t, err)

	updated, err := f.records.UpdateClassification(context.Background(), entity.LocationRack, rec.ID, inventory.ClassificationInput{
		Category: entity.CategoryFigurine,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.CategoryFigurine, updated.Category)
	assert.Nil(t, updated.Subcategory)

	_, err = f.records.UpdateClassification(context.Background(), entity.LocationRack, rec.ID, inventory.ClassificationInput{
		Category:    entity.CategoryKuji,
		Subcategory: &popmart,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState, "sólo BLIND_BOX admite subcategoría")
}

func TestUpdateClassification_ReglaDeBin_InvalidState(t *testing.T) {
	f := newFixture(t)
	rec := f.addRecord(t, entity.LocationBoxBin, ptr(binID), itemID, 3)

	_, err := f.records.UpdateClassification(context.Background(), entity.LocationBoxBin, rec.ID, inventory.ClassificationInput{
		Category: entity.CategoryKuji,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	stored, _ := f.store.Record(entity.LocationBoxBin, rec.ID)
	assert.Equal(t, entity.CategoryPlushie, stored.Category)
}

func TestUpdateClassification_RegistroInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.records.UpdateClassification(context.Background(), entity.LocationRack, "no-existe", inventory.ClassificationInput{
		Category: entity.CategoryPlushie,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// RemoveInventory / ListByLocation
// ──────────────────────────────────────────────────────────────────────────────

func TestRemoveInventory_ConservaElHistorial(t *testing.T) {
	f := newFixture(t)
	rec := f.addRecord(t, entity.LocationBoxBin, ptr(binID), itemID, 3)

	require.NoError(t, f.records.RemoveInventory(context.Background(), entity.LocationBoxBin, rec.ID))

	_, ok := f.store.Record(entity.LocationBoxBin, rec.ID)
	assert.False(t, ok)
	assert.Len(t, f.store.Movements(), 1, "los movimientos históricos se conservan")

	_, err := f.ledger.Adjust(context.Background(), inventory.AdjustInput{
		Kind: entity.LocationBoxBin, RecordID: rec.ID, Delta: 1, Reason: entity.ReasonRestock,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = f.records.RemoveInventory(context.Background(), entity.LocationBoxBin, rec.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListByLocation(t *testing.T) {
	f := newFixture(t)
	f.addRecord(t, entity.LocationRack, ptr(rackID), itemID, 3)
	f.addRecord(t, entity.LocationRack, ptr(rackID), otherID, 1)
	f.addRecord(t, entity.LocationBoxBin, ptr(binID), itemID, 2)

	recs, err := f.records.ListByLocation(context.Background(), entity.LocationRack, rackID)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	for _, r := range recs {
		assert.Equal(t, rackID, r.LocationIDValue())
	}

	_, err = f.records.ListByLocation(context.Background(), entity.LocationRack, "rack-fantasma")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.records.ListByLocation(context.Background(), "SHELF", rackID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	unassigned, err := f.records.ListByLocation(context.Background(), entity.LocationNotAssigned, "")
	require.NoError(t, err)
	assert.Empty(t, unassigned)
}
