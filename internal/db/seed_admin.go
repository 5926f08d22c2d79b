package db

import (
	"context"
	"errors"
	"time"

	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/config"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/domain/user"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/security"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureAdminUser seeds the bootstrap admin on startup. If the account
// already exists its role is forced back to admin, so a bad manual edit
// can never leave the portal without an admin.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	var id string
	var role string

	err := pool.QueryRow(ctx, `SELECT id, role FROM users WHERE email = $1`, cfg.AdminEmail).Scan(&id, &role)

	if err == nil {
		if user.Role(role) == user.RoleAdmin {
			return nil
		}

		_, err = pool.Exec(ctx,
			`UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`,
			id, user.RoleAdmin,
		)
		return err
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Name:         cfg.AdminName,
		Role:         user.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, name, phone, role, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.Phone, u.Role, u.CreatedAt, u.UpdatedAt,
	)

	return err
}
