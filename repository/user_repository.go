package repository

import (
	"context"
	"errors"
	"fmt"

	"aurora-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the Postgres error code for unique-constraint violations
const uniqueViolation = "23505"

// UserRepository handles database operations for user accounts
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. A duplicate email surfaces as
// models.ErrDuplicateEmail.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, photo, address, phone, date_of_birth)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Photo,
		user.Address,
		user.Phone,
		user.DateOfBirth,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if isUniqueViolation(err) {
		return models.ErrDuplicateEmail
	}
	return err
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getBy(ctx, "id = $1", id)
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, "email = $1", email)
}

func (r *UserRepository) getBy(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, name, email, password_hash, photo, address, phone, date_of_birth,
			created_at, updated_at
		FROM users
		WHERE ` + where

	err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Photo,
		&user.Address,
		&user.Phone,
		&user.DateOfBirth,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// ProfileUpdate carries the editable profile fields. Nil fields are left
// untouched.
type ProfileUpdate struct {
	Name        *string
	Email       *string
	Photo       *string
	Address     *string
	Phone       *string
	DateOfBirth *string
}

// Empty reports whether the update would change nothing.
func (u ProfileUpdate) Empty() bool {
	return u.Name == nil && u.Email == nil && u.Photo == nil &&
		u.Address == nil && u.Phone == nil && u.DateOfBirth == nil
}

// UpdateProfile applies the non-nil fields of update and returns the updated
// user. An email collision surfaces as models.ErrDuplicateEmail.
func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*models.User, error) {
	query := "UPDATE users SET updated_at = NOW()"
	args := []interface{}{id}
	argIndex := 2

	set := func(column string, value interface{}) {
		query += fmt.Sprintf(", %s = $%d", column, argIndex)
		args = append(args, value)
		argIndex++
	}

	if update.Name != nil {
		set("name", *update.Name)
	}
	if update.Email != nil {
		set("email", *update.Email)
	}
	if update.Photo != nil {
		set("photo", *update.Photo)
	}
	if update.Address != nil {
		set("address", *update.Address)
	}
	if update.Phone != nil {
		set("phone", *update.Phone)
	}
	if update.DateOfBirth != nil {
		set("date_of_birth", *update.DateOfBirth)
	}

	query += `
		WHERE id = $1
		RETURNING id, name, email, password_hash, photo, address, phone, date_of_birth,
			created_at, updated_at`

	user := &models.User{}
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Photo,
		&user.Address,
		&user.Phone,
		&user.DateOfBirth,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrUserNotFound
	}
	if isUniqueViolation(err) {
		return nil, models.ErrDuplicateEmail
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// UpdatePhoto sets only the photo reference
func (r *UserRepository) UpdatePhoto(ctx context.Context, id uuid.UUID, photo string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET photo = $2, updated_at = NOW() WHERE id = $1`, id, photo)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
