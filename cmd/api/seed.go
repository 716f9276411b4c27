package main

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/auth"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

const (
	demoBinID    = "6a0c1e9e-2f1b-4c44-9a52-1b7d3f0a0001"
	demoRackID   = "6a0c1e9e-2f1b-4c44-9a52-1b7d3f0a0002"
	demoPlushID  = "1f3e5d7c-0000-4000-8000-000000000001"
	demoBlindID  = "1f3e5d7c-0000-4000-8000-000000000002"
	demoOperator = "9b2d4f60-0000-4000-8000-000000000001"

	demoEmail    = "operador@demo.local"
	demoPassword = "demo1234"
)

// seedDemo deja un box bin, un rack con stock y un operador (operador@demo.local / demo1234)
// para probar la API con STORAGE_DRIVER=memory.
func seedDemo(ctx context.Context, store *memory.Store, records *inventory.RecordService) error {
	store.AddLocation(entity.LocationBoxBin, demoBinID, "BB-01")
	store.AddLocation(entity.LocationRack, demoRackID, "R-01")
	store.AddProduct(demoPlushID, "PL-001", "Peluche Pikachu", decimal.RequireFromString("12.50"))
	store.AddProduct(demoBlindID, "BB-POP-01", "Blind box Popmart", decimal.RequireFromString("9.90"))
	hash, err := auth.HashPassword(demoPassword)
	if err != nil {
		return err
	}
	store.AddAccount(entity.User{
		ID:           demoOperator,
		FullName:     "Operador Demo",
		Email:        demoEmail,
		PasswordHash: hash,
		Role:         entity.RoleEmployee,
		Active:       true,
	})

	binID, rackID, actor := demoBinID, demoRackID, demoOperator
	popmart := entity.SubcategoryPopmart
	seeds := []inventory.AddInventoryInput{
		{Kind: entity.LocationBoxBin, LocationID: &binID, ItemID: demoPlushID, Category: entity.CategoryPlushie, InitialQuantity: 10, ActorID: &actor},
		{Kind: entity.LocationRack, LocationID: &rackID, ItemID: demoPlushID, Category: entity.CategoryPlushie, InitialQuantity: 0, ActorID: &actor},
		{Kind: entity.LocationRack, LocationID: &rackID, ItemID: demoBlindID, Category: entity.CategoryBlindBox, Subcategory: &popmart, InitialQuantity: 24, ActorID: &actor},
	}
	for _, in := range seeds {
		if _, _, err := records.AddInventory(ctx, in); err != nil {
			return err
		}
	}
	return nil
}
