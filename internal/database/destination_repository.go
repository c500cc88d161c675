package database

import (
	"context"

	"github.com/google/uuid"

	"github.com/voyagehub/travel-backend/internal/apperr"
	"github.com/voyagehub/travel-backend/internal/models"
)

const destinationColumns = `id, name, description, country, city, photo, created_at, updated_at`

var destinationSortColumns = map[string]string{
	"name":      "name",
	"country":   "country",
	"city":      "city",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// DestinationRepository handles destination database operations
type DestinationRepository struct {
	db DB
}

// NewDestinationRepository creates a new destination repository
func NewDestinationRepository(db DB) *DestinationRepository {
	return &DestinationRepository{db: db}
}

// Create inserts a destination. The case-insensitive (name, country, city)
// index turns races past the validation stage into a Conflict.
func (r *DestinationRepository) Create(ctx context.Context, d *models.Destination) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	query := `
		INSERT INTO destinations (id, name, description, country, city, photo)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query, d.ID, d.Name, d.Description, d.Country, d.City, d.Photo).
		Scan(&d.CreatedAt, &d.UpdatedAt)
	return translateError("failed to create destination", err)
}

// GetByID retrieves a destination by ID
func (r *DestinationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Destination, error) {
	var d models.Destination
	query := `SELECT ` + destinationColumns + ` FROM destinations WHERE id = $1`
	if err := r.db.GetContext(ctx, &d, query, id); err != nil {
		return nil, notFoundOr("Destination", id, "failed to get destination", err)
	}
	return &d, nil
}

// Update writes every mutable column of d
func (r *DestinationRepository) Update(ctx context.Context, d *models.Destination) error {
	query := `
		UPDATE destinations
		SET name = $2, description = $3, country = $4, city = $5, photo = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query, d.ID, d.Name, d.Description, d.Country, d.City, d.Photo).
		Scan(&d.UpdatedAt)
	return notFoundOr("Destination", d.ID, "failed to update destination", err)
}

// Delete removes a destination with its hotels, rooms and flights.
// Fails with Conflict when any of those are still booked.
func (r *DestinationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM destinations WHERE id = $1`, id)
	if err != nil {
		return translateError("failed to delete destination", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return translateError("failed to get rows affected", err)
	}
	if rows == 0 {
		return apperr.NotFound("Destination", id)
	}
	return nil
}

// DeleteAll removes every destination matching the filter in one statement
func (r *DestinationRepository) DeleteAll(ctx context.Context, f models.DestinationFilter) (int64, error) {
	return deleteWhere(ctx, r.db, "destinations", destinationWhere(f))
}

// List returns a page of destinations and the total match count
func (r *DestinationRepository) List(ctx context.Context, f models.DestinationFilter) ([]models.Destination, int, error) {
	destinations := []models.Destination{}
	total, err := listPage(ctx, r.db, &destinations, "destinations", destinationColumns,
		destinationWhere(f), orderBy(f.ListParams, destinationSortColumns, "created_at"), f.ListParams)
	if err != nil {
		return nil, 0, err
	}
	return destinations, total, nil
}

// ExistsByNameCountryCity checks the case-insensitive uniqueness key,
// ignoring excludeID so updates do not collide with themselves.
func (r *DestinationRepository) ExistsByNameCountryCity(ctx context.Context, name, country, city string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM destinations
			WHERE LOWER(name) = LOWER($1) AND LOWER(country) = LOWER($2) AND LOWER(city) = LOWER($3)
			  AND id <> $4
		)`
	if err := r.db.GetContext(ctx, &exists, query, name, country, city, excludeID); err != nil {
		return false, translateError("failed to check destination uniqueness", err)
	}
	return exists, nil
}

func destinationWhere(f models.DestinationFilter) *whereBuilder {
	w := &whereBuilder{}
	w.addIf(f.Country != "", "LOWER(country) = LOWER(?)", f.Country)
	w.addIf(f.City != "", "LOWER(city) = LOWER(?)", f.City)
	if f.Search != "" {
		pattern := likePattern(f.Search)
		w.add("(name ILIKE ? OR description ILIKE ? OR city ILIKE ?)", pattern, pattern, pattern)
	}
	return w
}
