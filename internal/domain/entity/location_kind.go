package entity

import (
	"strings"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// LocationKind identifica el tipo de ubicación física (y por ende la tabla de inventario que la respalda).
type LocationKind string

// Tipos de ubicación soportados.
const (
	LocationBoxBin            LocationKind = "BOX_BIN"
	LocationRack              LocationKind = "RACK"
	LocationCabinet           LocationKind = "CABINET"
	LocationSingleClawMachine LocationKind = "SINGLE_CLAW_MACHINE"
	LocationDoubleClawMachine LocationKind = "DOUBLE_CLAW_MACHINE"
	LocationKeychainMachine   LocationKind = "KEYCHAIN_MACHINE"
	LocationFourCornerMachine LocationKind = "FOUR_CORNER_MACHINE"
	LocationPusherMachine     LocationKind = "PUSHER_MACHINE"
	LocationNotAssigned       LocationKind = "NOT_ASSIGNED"
)

// NotAssignedCode es el código visible para stock sin ubicación física.
const NotAssignedCode = "Not Assigned"

// LocationKinds lista todos los tipos en orden estable.
func LocationKinds() []LocationKind {
	return []LocationKind{
		LocationBoxBin,
		LocationRack,
		LocationCabinet,
		LocationSingleClawMachine,
		LocationDoubleClawMachine,
		LocationKeychainMachine,
		LocationFourCornerMachine,
		LocationPusherMachine,
		LocationNotAssigned,
	}
}

// Valid indica si el valor pertenece a la enumeración.
func (k LocationKind) Valid() bool {
	for _, v := range LocationKinds() {
		if k == v {
			return true
		}
	}
	return false
}

// HasLocation es false sólo para NOT_ASSIGNED, que no tiene id de ubicación.
func (k LocationKind) HasLocation() bool {
	return k != LocationNotAssigned
}

// ParseLocationKind acepta "box-bin", "Box Bin", "BOX_BIN", etc.
func ParseLocationKind(s string) (LocationKind, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	k := LocationKind(norm)
	if !k.Valid() {
		return "", domain.InvalidInputf("tipo de ubicación desconocido %q", s)
	}
	return k, nil
}
