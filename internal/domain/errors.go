package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound              = errors.New("recurso no encontrado")
	ErrInvalidInput          = errors.New("entrada inválida")
	ErrInvalidState          = errors.New("estado inválido para la ubicación")
	ErrInsufficientInventory = errors.New("inventario insuficiente")
	ErrDuplicate             = errors.New("recurso duplicado")
	ErrConcurrentUpdate      = errors.New("el registro fue modificado por otra operación")
	ErrUnauthorized          = errors.New("no autorizado")
	ErrForbidden             = errors.New("acceso denegado")
)

// InsufficientInventoryError detalla una disminución rechazada: cuánto se pidió y cuánto había.
type InsufficientInventoryError struct {
	Requested int
	Available int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("%s: solicitado %d, disponible %d", ErrInsufficientInventory, e.Requested, e.Available)
}

// Is permite errors.Is(err, ErrInsufficientInventory).
func (e *InsufficientInventoryError) Is(target error) bool {
	return target == ErrInsufficientInventory
}

// NewInsufficientInventory construye el error tipado.
func NewInsufficientInventory(requested, available int) error {
	return &InsufficientInventoryError{Requested: requested, Available: available}
}

// InvalidStatef envuelve ErrInvalidState con el detalle de la regla violada.
func InvalidStatef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

// InvalidInputf envuelve ErrInvalidInput con el campo o valor rechazado.
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
