package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.UserDirectory   = (*UserRepo)(nil)
	_ repository.CredentialStore = (*UserRepo)(nil)
)

// UserRepo lectura de actores sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador. Pasar pool o tx (Querier).
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// FindNames id -> nombre completo en una sola consulta.
func (r *UserRepo) FindNames(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	uuids := parseUUIDs(ids)
	if len(uuids) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `SELECT id, full_name FROM users WHERE id = ANY($1)`, uuids)
	if err != nil {
		return nil, mapError("find user names", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan user name: %w", err)
		}
		out[id] = name
	}
	return out, rows.Err()
}

// FindByEmail usuario por email (sin distinguir mayúsculas). nil, nil si no existe.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var u entity.User
	err := r.q.QueryRow(ctx,
		`SELECT id, full_name, email, password_hash, role, active FROM users WHERE lower(email) = $1`,
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Role, &u.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("find user by email", err)
	}
	return &u, nil
}
