package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agendahub/agendahub/pkg/pg"
)

// PGStore is the Postgres-backed user store.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a user store on the given pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	if pool == nil {
		panic("user: pgxpool is required")
	}
	return &PGStore{pool: pool}
}

const userColumns = `id, organization_id, name, email, cellphone, tax_id, role, api_token, created_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.OrganizationID, &u.Name, &u.Email, &u.Cellphone,
		&u.TaxID, &u.Role, &u.APIToken, &u.CreatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func (s *PGStore) ByID(ctx context.Context, id uuid.UUID) (*User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *PGStore) ByAPIToken(ctx context.Context, token string) (*User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE api_token = $1`, token)
	return scanUser(row)
}

func (s *PGStore) FirstInOrganization(ctx context.Context, orgID uuid.UUID) (*User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE organization_id = $1
		 ORDER BY created_at ASC LIMIT 1`, orgID)
	return scanUser(row)
}

func (s *PGStore) AdminsInOrganization(ctx context.Context, orgID uuid.UUID) ([]*User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE organization_id = $1 AND role IN ('admin', 'superadmin')
		 ORDER BY created_at ASC`, orgID)
	if err != nil {
		return nil, fmt.Errorf("query admins: %w", err)
	}
	defer rows.Close()

	var out []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate admins: %w", err)
	}
	return out, nil
}
