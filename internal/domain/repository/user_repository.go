package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// UserDirectory resuelve nombres de actores en lote (id → nombre completo).
// Los ids desconocidos simplemente no aparecen en el mapa.
type UserDirectory interface {
	FindNames(ctx context.Context, ids []string) (map[string]string, error)
}

// CredentialStore búsqueda de usuario por email para el login. nil, nil si no existe.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}
