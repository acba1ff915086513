package identity

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrUserNotFound occurs when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// Repository persists users.
type Repository interface {
	Create(ctx context.Context, user User) (User, error)
	FindByUsername(ctx context.Context, username string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id int64) (User, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user and returns it with its assigned identifier.
func (r *PostgresRepository) Create(ctx context.Context, user User) (User, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO users (email, username, first_name, last_name, password_hash, role, is_active, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id`,
		user.Email, user.Username, user.FirstName, user.LastName,
		user.PasswordHash, user.Role, user.Active, user.CreatedAt.UTC()).Scan(&user.ID)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// FindByUsername fetches a user by username.
func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (User, error) {
	return r.findOne(ctx, `SELECT id, email, username, first_name, last_name, password_hash, role, is_active, created_at
        FROM users WHERE username = $1`, username)
}

// FindByEmail fetches a user by email address.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	return r.findOne(ctx, `SELECT id, email, username, first_name, last_name, password_hash, role, is_active, created_at
        FROM users WHERE email = $1`, email)
}

// FindByID fetches a user by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (User, error) {
	return r.findOne(ctx, `SELECT id, email, username, first_name, last_name, password_hash, role, is_active, created_at
        FROM users WHERE id = $1`, id)
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg any) (User, error) {
	var (
		user      User
		createdAt time.Time
	)
	err := r.db.QueryRow(ctx, query, arg).Scan(&user.ID, &user.Email, &user.Username,
		&user.FirstName, &user.LastName, &user.PasswordHash, &user.Role, &user.Active, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	user.CreatedAt = createdAt.UTC()
	return user, nil
}
