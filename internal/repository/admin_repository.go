package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/teacher-admin/internal/models"
)

// AdminRepository reads operator accounts from the admin_users table.
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository creates a new instance of AdminRepository.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// FindByEmail returns an operator by email address, sql.ErrNoRows when absent.
func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	const query = `SELECT id, email, password_hash, full_name, active, last_login, created_at, updated_at FROM admin_users WHERE lower(email) = lower($1) LIMIT 1`
	var user models.AdminUser
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find admin by email: %w", err)
	}
	return &user, nil
}

// UpdateLastLogin records a successful sign-in.
func (r *AdminRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE admin_users SET last_login = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// Ping checks connectivity for readiness probes.
func (r *AdminRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
