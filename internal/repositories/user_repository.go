package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"messenger/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

const userColumns = `id, username, email, first_name, last_name, avatar, online`

// UserRepository abstracts account persistence.
type UserRepository interface {
	CreateUser(ctx context.Context, username, email, passwordHash, firstName, lastName string) (models.User, error)
	GetUser(ctx context.Context, userID int) (models.User, error)
	GetCredentials(ctx context.Context, username string) (models.User, string, error)
	UpdateProfile(ctx context.Context, userID int, email, firstName, lastName, avatar string) (models.User, error)
	SetOnline(ctx context.Context, userID int, online bool) error
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// CreateUser registers a new account.
func (r *UserRepo) CreateUser(ctx context.Context, username, email, passwordHash, firstName, lastName string) (models.User, error) {
	var user models.User
	err := r.db.QueryRowxContext(ctx, `INSERT INTO users (username, email, password_hash, first_name, last_name)
        VALUES ($1, $2, $3, $4, $5) RETURNING `+userColumns,
		username, email, passwordHash, firstName, lastName).StructScan(&user)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return models.User{}, ErrUserExists
	}
	return user, err
}

// GetUser fetches a user by id.
func (r *UserRepo) GetUser(ctx context.Context, userID int) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// GetCredentials fetches a user and their password hash by username.
func (r *UserRepo) GetCredentials(ctx context.Context, username string) (models.User, string, error) {
	var row struct {
		models.User
		PasswordHash string `db:"password_hash"`
	}
	err := r.db.GetContext(ctx, &row, `SELECT `+userColumns+`, password_hash FROM users WHERE username=$1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, "", ErrUserNotFound
	}
	return row.User, row.PasswordHash, err
}

// UpdateProfile updates the mutable profile fields.
func (r *UserRepo) UpdateProfile(ctx context.Context, userID int, email, firstName, lastName, avatar string) (models.User, error) {
	var user models.User
	err := r.db.QueryRowxContext(ctx, `UPDATE users SET email=$2, first_name=$3, last_name=$4, avatar=$5
        WHERE id=$1 RETURNING `+userColumns,
		userID, email, firstName, lastName, avatar).StructScan(&user)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// SetOnline flips the user's presence flag.
func (r *UserRepo) SetOnline(ctx context.Context, userID int, online bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET online=$2 WHERE id=$1`, userID, online)
	return err
}
