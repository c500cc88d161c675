package database

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/voyagehub/travel-backend/internal/apperr"
	"github.com/voyagehub/travel-backend/internal/models"
)

const tourColumns = `id, name, description, type, status, price, max_guests, guests_booked,
	start_date, end_date, created_at, updated_at`

var tourSortColumns = map[string]string{
	"name":      "name",
	"price":     "price",
	"startDate": "start_date",
	"endDate":   "end_date",
	"maxGuests": "max_guests",
	"createdAt": "created_at",
}

// TourRepository handles tour database operations
type TourRepository struct {
	db DB
}

// NewTourRepository creates a new tour repository
func NewTourRepository(db DB) *TourRepository {
	return &TourRepository{db: db}
}

func (r *TourRepository) Create(ctx context.Context, t *models.Tour) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	query := `
		INSERT INTO tours (id, name, description, type, status, price, max_guests, guests_booked, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8, $9)
		RETURNING guests_booked, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		t.ID, t.Name, t.Description, t.Type, t.Status, t.Price, t.MaxGuests, t.StartDate, t.EndDate,
	).Scan(&t.GuestsBooked, &t.CreatedAt, &t.UpdatedAt)
	return translateError("failed to create tour", err)
}

func (r *TourRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tour, error) {
	var t models.Tour
	if err := r.db.GetContext(ctx, &t, `SELECT `+tourColumns+` FROM tours WHERE id = $1`, id); err != nil {
		return nil, notFoundOr("Tour", id, "failed to get tour", err)
	}
	return &t, nil
}

// Update writes the mutable columns. guests_booked is owned by bookings;
// the table constraint rejects max_guests below it.
func (r *TourRepository) Update(ctx context.Context, t *models.Tour) error {
	query := `
		UPDATE tours
		SET name = $2, description = $3, type = $4, status = $5, price = $6, max_guests = $7,
		    start_date = $8, end_date = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING guests_booked, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		t.ID, t.Name, t.Description, t.Type, t.Status, t.Price, t.MaxGuests, t.StartDate, t.EndDate,
	).Scan(&t.GuestsBooked, &t.UpdatedAt)
	return notFoundOr("Tour", t.ID, "failed to update tour", err)
}

func (r *TourRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tours WHERE id = $1`, id)
	if err != nil {
		return translateError("failed to delete tour", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return translateError("failed to get rows affected", err)
	}
	if rows == 0 {
		return apperr.NotFound("Tour", id)
	}
	return nil
}

func (r *TourRepository) DeleteAll(ctx context.Context, f models.TourFilter) (int64, error) {
	return deleteWhere(ctx, r.db, "tours", tourWhere(f))
}

func (r *TourRepository) List(ctx context.Context, f models.TourFilter) ([]models.Tour, int, error) {
	tours := []models.Tour{}
	total, err := listPage(ctx, r.db, &tours, "tours", tourColumns,
		tourWhere(f), orderBy(f.ListParams, tourSortColumns, "start_date"), f.ListParams)
	if err != nil {
		return nil, 0, err
	}
	return tours, total, nil
}

// Search is the SQL fallback used when no search cluster is configured
func (r *TourRepository) Search(ctx context.Context, q string, limit int) ([]models.TourSearchHit, error) {
	var tours []models.Tour
	pattern := likePattern(q)
	query := `SELECT ` + tourColumns + ` FROM tours
		WHERE name ILIKE $1 OR description ILIKE $1 OR type ILIKE $1
		ORDER BY (name ILIKE $1) DESC, start_date ASC
		LIMIT $2`
	if err := r.db.SelectContext(ctx, &tours, query, pattern, limit); err != nil {
		return nil, translateError("failed to search tours", err)
	}

	hits := make([]models.TourSearchHit, 0, len(tours))
	for _, t := range tours {
		hits = append(hits, models.TourSearchHit{ID: t.ID, Name: t.Name, Type: t.Type, Status: t.Status, Price: t.Price})
	}
	return hits, nil
}

// ListAll streams every tour for search reindexing
func (r *TourRepository) ListAll(ctx context.Context) ([]models.Tour, error) {
	var tours []models.Tour
	if err := r.db.SelectContext(ctx, &tours, `SELECT `+tourColumns+` FROM tours ORDER BY created_at`); err != nil {
		return nil, translateError("failed to list tours", err)
	}
	return tours, nil
}

func tourWhere(f models.TourFilter) *whereBuilder {
	w := &whereBuilder{}
	w.addIf(f.Type != "", "type = ?", f.Type)
	w.addIf(f.Status != "", "status = ?", f.Status)
	if f.MinPrice != nil {
		w.add("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		w.add("price <= ?", *f.MaxPrice)
	}
	if f.StartFrom != nil {
		w.add("start_date >= ?", *f.StartFrom)
	}
	if f.StartTo != nil {
		w.add("start_date < ?", f.StartTo.Add(24*time.Hour))
	}
	if f.Search != "" {
		pattern := likePattern(f.Search)
		w.add("(name ILIKE ? OR description ILIKE ?)", pattern, pattern)
	}
	return w
}
