package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository persists users in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Insert writes a new user. A duplicate email comes back as ErrEmailTaken.
func (r *Repository) Insert(ctx context.Context, u User) (User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt == 0 {
		u.CreatedAt = time.Now().Unix()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	return u, nil
}

// GetByID returns a user by id, or nil when missing.
func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.get(ctx, `SELECT id, name, email, password_hash, created_at FROM users WHERE id = $1`, id)
}

// GetByEmail returns a user by email, or nil when missing.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.get(ctx, `SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1`, email)
}

func (r *Repository) get(ctx context.Context, query, arg string) (*User, error) {
	row := r.db.QueryRowContext(ctx, query, arg)
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// UpdateFields applies the non-nil columns. Hash is the new password hash when
// the password changes.
func (r *Repository) UpdateFields(ctx context.Context, id string, name, email, hash *string) error {
	sets := []string{}
	args := []any{}
	add := func(col string, val any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)+1))
		args = append(args, val)
	}
	if name != nil {
		add("name", *name)
	}
	if email != nil {
		add("email", *email)
	}
	if hash != nil {
		add("password_hash", *hash)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	query := "UPDATE users SET " + sets[0]
	for _, s := range sets[1:] {
		query += ", " + s
	}
	query += fmt.Sprintf(" WHERE id = $%d", len(args))
	_, err := r.db.ExecContext(ctx, query, args...)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

// Delete removes a user; dependent rows cascade at the schema level.
func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}
