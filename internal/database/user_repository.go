package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/voyagehub/travel-backend/internal/apperr"
	"github.com/voyagehub/travel-backend/internal/models"
)

const userColumns = `id, name, email, password_hash, role, phone, address, profile_picture,
	is_active, last_login_at, created_at, updated_at`

var userSortColumns = map[string]string{
	"name":        "name",
	"email":       "email",
	"role":        "role",
	"createdAt":   "created_at",
	"lastLoginAt": "last_login_at",
}

// UserRepository handles user database operations
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// Create inserts a user. PasswordHash must already be set.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = models.RoleCustomer
	}
	user.Email = models.NormalizeEmail(user.Email)

	query := `
		INSERT INTO users (
			id, name, email, password_hash, role,
			phone, address, profile_picture, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Role,
		user.Phone, user.Address, user.ProfilePicture, user.IsActive,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	return translateError("failed to create user", err)
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = $1`, id); err != nil {
		return nil, notFoundOr("User", id, "failed to get user", err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email, nil when no account matches
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	if err := r.db.GetContext(ctx, &user, query, models.NormalizeEmail(email)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// ExistsByEmail reports whether another account already uses email
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2)`
	if err := r.db.GetContext(ctx, &exists, query, models.NormalizeEmail(email), excludeID); err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// Update writes profile, role and activation columns
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET name = $2, email = $3, role = $4, phone = $5, address = $6,
		    profile_picture = $7, is_active = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		user.ID, user.Name, models.NormalizeEmail(user.Email), user.Role,
		user.Phone, user.Address, user.ProfilePicture, user.IsActive,
	).Scan(&user.UpdatedAt)
	return notFoundOr("User", user.ID, "failed to update user", err)
}

// UpdatePassword replaces the stored hash
func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return requireAffected(result, "User", id)
}

// UpdateLastLogin stamps the login time
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// Delete removes a user. Users with bookings are protected by RESTRICT.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return translateError("failed to delete user", err)
	}
	return requireAffected(result, "User", id)
}

// DeleteAll removes every user matching f except keepID, normally the caller
func (r *UserRepository) DeleteAll(ctx context.Context, f models.UserFilter, keepID uuid.UUID) (int64, error) {
	where := userWhere(f)
	where.add("id <> ?", keepID)
	return deleteWhere(ctx, r.db, "users", where)
}

// List returns a page of users and the total match count
func (r *UserRepository) List(ctx context.Context, f models.UserFilter) ([]models.User, int, error) {
	users := []models.User{}
	total, err := listPage(ctx, r.db, &users, "users", userColumns,
		userWhere(f), orderBy(f.ListParams, userSortColumns, "created_at"), f.ListParams)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func userWhere(f models.UserFilter) *whereBuilder {
	w := &whereBuilder{}
	w.addIf(f.Role != "", "role = ?", f.Role)
	if f.Search != "" {
		pattern := likePattern(f.Search)
		w.add("(name ILIKE ? OR email ILIKE ?)", pattern, pattern)
	}
	return w
}

// requireAffected turns a zero-row write into NotFound
func requireAffected(result sql.Result, resource string, id interface{}) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperr.NotFound(resource, id)
	}
	return nil
}
