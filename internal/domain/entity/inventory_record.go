package entity

import (
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// ProductCategory clasificación del artículo guardado en una ubicación.
type ProductCategory string

const (
	CategoryPlushie       ProductCategory = "PLUSHIE"
	CategoryKeychain      ProductCategory = "KEYCHAIN"
	CategoryFigurine      ProductCategory = "FIGURINE"
	CategoryGachapon      ProductCategory = "GACHAPON"
	CategoryBlindBox      ProductCategory = "BLIND_BOX"
	CategoryBuildKit      ProductCategory = "BUILD_KIT"
	CategoryGundam        ProductCategory = "GUNDAM"
	CategoryKuji          ProductCategory = "KUJI"
	CategoryMiscellaneous ProductCategory = "MISCELLANEOUS"
)

// ProductSubcategory sólo aplica a BLIND_BOX.
type ProductSubcategory string

const (
	SubcategoryDreams        ProductSubcategory = "DREAMS"
	SubcategoryPokemon       ProductSubcategory = "POKEMON"
	SubcategoryPopmart       ProductSubcategory = "POPMART"
	SubcategorySanrioSanX    ProductSubcategory = "SANRIO_SAN_X"
	SubcategoryFiftyTwoToys  ProductSubcategory = "FIFTY_TWO_TOYS"
	SubcategoryRolife        ProductSubcategory = "ROLIFE"
	SubcategoryToyCity       ProductSubcategory = "TOY_CITY"
	SubcategoryMiniso        ProductSubcategory = "MINISO"
	SubcategoryMiscellaneous ProductSubcategory = "MISCELLANEOUS"
)

var validCategories = map[ProductCategory]struct{}{
	CategoryPlushie: {}, CategoryKeychain: {}, CategoryFigurine: {}, CategoryGachapon: {},
	CategoryBlindBox: {}, CategoryBuildKit: {}, CategoryGundam: {}, CategoryKuji: {},
	CategoryMiscellaneous: {},
}

var validSubcategories = map[ProductSubcategory]struct{}{
	SubcategoryDreams: {}, SubcategoryPokemon: {}, SubcategoryPopmart: {}, SubcategorySanrioSanX: {},
	SubcategoryFiftyTwoToys: {}, SubcategoryRolife: {}, SubcategoryToyCity: {}, SubcategoryMiniso: {},
	SubcategoryMiscellaneous: {},
}

// binCategories categorías que admite un BOX_BIN.
var binCategories = map[ProductCategory]struct{}{
	CategoryPlushie:  {},
	CategoryKeychain: {},
}

// Valid indica si la categoría existe.
func (c ProductCategory) Valid() bool {
	_, ok := validCategories[c]
	return ok
}

// Valid indica si la subcategoría existe.
func (s ProductSubcategory) Valid() bool {
	_, ok := validSubcategories[s]
	return ok
}

// RequiresSubcategory es true únicamente para BLIND_BOX.
func (c ProductCategory) RequiresSubcategory() bool {
	return c == CategoryBlindBox
}

// InventoryRecord cantidad de un artículo en una ubicación de un tipo dado.
// LocationID es nil sólo cuando Kind es NOT_ASSIGNED.
type InventoryRecord struct {
	ID          string
	Kind        LocationKind
	LocationID  *string
	ItemID      string
	Quantity    int
	Category    ProductCategory
	Subcategory *ProductSubcategory
	Description string
	Version     int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LocationIDValue devuelve el id de ubicación o "" si no tiene.
func (r *InventoryRecord) LocationIDValue() string {
	if r.LocationID == nil {
		return ""
	}
	return *r.LocationID
}

// ValidatePlacement aplica las reglas de categoría/subcategoría del tipo de ubicación.
// Se invoca en cada escritura (alta, actualización y cambio de cantidad).
func (r *InventoryRecord) ValidatePlacement() error {
	if !r.Kind.Valid() {
		return domain.InvalidInputf("tipo de ubicación desconocido %q", r.Kind)
	}
	if r.Kind.HasLocation() && r.LocationIDValue() == "" {
		return domain.InvalidStatef("%s requiere id de ubicación", r.Kind)
	}
	if !r.Kind.HasLocation() && r.LocationID != nil {
		return domain.InvalidStatef("%s no admite id de ubicación", r.Kind)
	}
	if !r.Category.Valid() {
		return domain.InvalidStatef("categoría desconocida %q", r.Category)
	}
	if r.Kind == LocationBoxBin {
		if _, ok := binCategories[r.Category]; !ok {
			return domain.InvalidStatef("los box bins sólo admiten PLUSHIE o KEYCHAIN, recibido %s", r.Category)
		}
	}
	if r.Category.RequiresSubcategory() {
		if r.Subcategory == nil {
			return domain.InvalidStatef("la categoría %s requiere subcategoría", r.Category)
		}
		if !r.Subcategory.Valid() {
			return domain.InvalidStatef("subcategoría desconocida %q", *r.Subcategory)
		}
	} else if r.Subcategory != nil {
		return domain.InvalidStatef("la categoría %s no admite subcategoría", r.Category)
	}
	if r.Quantity < 0 {
		return domain.InvalidStatef("cantidad negativa %d", r.Quantity)
	}
	return nil
}
