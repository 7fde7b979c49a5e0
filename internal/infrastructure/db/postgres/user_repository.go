package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
)

// UserRepository persists user accounts in PostgreSQL.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, email, password_hash, phone, address, role, status, created_at, updated_at`

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u            domain.User
		role, status string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.Address,
		&role, &status, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	u.Status = domain.UserStatus(status)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	created := *user
	created.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		created.ID, created.Name, created.Email, created.PasswordHash, created.Phone, created.Address,
		string(created.Role), string(created.Status), created.CreatedAt, created.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	uid, err := parseID(id, domain.ErrUserNotFound)
	if err != nil {
		return nil, err
	}
	return findUser(ctx, r.db, `SELECT `+userColumns+` FROM users WHERE id = $1`, uid)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return findUser(ctx, r.db, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func findUser(ctx context.Context, q querier, query string, arg any) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	u, err := scanUser(q.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	uid, err := parseID(user.ID, domain.ErrUserNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET name = $2, phone = $3, address = $4, role = $5, status = $6, updated_at = $7
		WHERE id = $1`,
		uid, user.Name, user.Phone, user.Address, string(user.Role), string(user.Status), user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return affectedOne(res, domain.ErrUserNotFound)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	uid, err := parseID(id, domain.ErrUserNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`,
		uid, passwordHash, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return affectedOne(res, domain.ErrUserNotFound)
}
