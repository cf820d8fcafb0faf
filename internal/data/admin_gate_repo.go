package data

// Package data contains Postgres-backed repositories for the web client's own
// persistent state. Only the admin gate keeps durable state here; everything
// else the client shows comes from the marketplace API.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carhub/carhub-web/internal/data/pgxutil"
	domainauth "github.com/carhub/carhub-web/internal/domain/auth"
	"github.com/carhub/carhub-web/internal/ports"
)

var (
	// ErrGrantNotFound is returned when an admin gate grant does not exist.
	// It aliases the ports sentinel so callers can branch without importing
	// this package.
	ErrGrantNotFound = ports.ErrGrantNotFound
	// ErrGrantExists is returned when a grant token collides with an existing one.
	ErrGrantExists = errors.New("admin gate grant already exists")
)

// AdminGateRepo persists admin gate grants. Grants carry no expiry and no
// user identity; the token in the browser cookie is the whole credential.
type AdminGateRepo struct {
	DB *sql.DB
}

// NewAdminGateRepo creates a new AdminGateRepo.
func NewAdminGateRepo(db *sql.DB) *AdminGateRepo {
	return &AdminGateRepo{DB: db}
}

// CreateGrant inserts a new grant.
func (r *AdminGateRepo) CreateGrant(ctx context.Context, grant domainauth.AdminGrant) error {
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, err := conn.Exec(ctx,
			`INSERT INTO admin_gate_grants (token, created_at) VALUES ($1, $2)`,
			grant.Token, grant.CreatedAt)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrGrantExists
		}
		return fmt.Errorf("create admin gate grant: %w", err)
	}
	return nil
}

// GetGrant retrieves a grant by token.
func (r *AdminGateRepo) GetGrant(ctx context.Context, token string) (domainauth.AdminGrant, error) {
	var grant domainauth.AdminGrant
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		row := conn.QueryRow(ctx,
			`SELECT token, created_at FROM admin_gate_grants WHERE token = $1`, token)
		return row.Scan(&grant.Token, &grant.CreatedAt)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainauth.AdminGrant{}, ErrGrantNotFound
		}
		return domainauth.AdminGrant{}, fmt.Errorf("get admin gate grant: %w", err)
	}
	return grant, nil
}

// DeleteGrant removes a grant. Nothing in the product routes a gate logout;
// this exists for operational cleanup and tests.
func (r *AdminGateRepo) DeleteGrant(ctx context.Context, token string) error {
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, `DELETE FROM admin_gate_grants WHERE token = $1`, token)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete admin gate grant: %w", err)
	}
	return nil
}
