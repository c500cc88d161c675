package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagehub/travel-backend/internal/apperr"
	"github.com/voyagehub/travel-backend/internal/models"
)

func newMockDB(t *testing.T) (DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return &PostgresDB{DB: sqlx.NewDb(mockDB, "sqlmock")}, mock
}

func TestTranslateError(t *testing.T) {
	t.Run("Unique violation", func(t *testing.T) {
		err := translateError("op", &pq.Error{Code: pqUniqueViolation, Constraint: "users_email_key"})
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
		assert.Contains(t, err.Error(), "email already exists")
	})

	t.Run("Referenced row", func(t *testing.T) {
		err := translateError("op", &pq.Error{
			Code:    pqForeignKeyViolation,
			Message: `update or delete on table "tours" violates foreign key constraint`,
			Table:   "bookings",
		})
		require.True(t, apperr.IsKind(err, apperr.KindConflict))
		assert.Equal(t, "REFERENCED", apperr.As(err).Code)
	})

	t.Run("Missing reference", func(t *testing.T) {
		err := translateError("op", &pq.Error{
			Code:       pqForeignKeyViolation,
			Message:    `insert or update on table "hotels" violates foreign key constraint`,
			Constraint: "hotels_destination_id_fkey",
		})
		assert.Equal(t, "MISSING_REFERENCE", apperr.As(err).Code)
		assert.Contains(t, apperr.As(err).Message, "destination")
	})

	t.Run("Plain error is wrapped", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := translateError("failed to do thing", cause)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	})

	t.Run("Nil", func(t *testing.T) {
		assert.NoError(t, translateError("op", nil))
	})
}

func TestConstraintSubject(t *testing.T) {
	assert.Equal(t, "destination", constraintSubject("hotels_destination_id_fkey"))
	assert.Equal(t, "email", constraintSubject("users_email_key"))
	assert.Equal(t, "booking active", constraintSubject("payments_booking_active_key"))
	assert.Equal(t, "record", constraintSubject("pkey"))
}

func TestOrderBy(t *testing.T) {
	allowed := map[string]string{"name": "name"}
	assert.Equal(t, " ORDER BY name ASC, id ASC", orderBy(models.ListParams{SortBy: "name", SortOrder: "asc"}, allowed, "created_at"))
	assert.Equal(t, " ORDER BY created_at DESC, id DESC", orderBy(models.ListParams{SortBy: "1; DROP TABLE users"}, allowed, "created_at"))
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, `%50\%\_off%`, likePattern(" 50%_off "))
}

func TestDestinationRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDestinationRepository(db)
	id := uuid.New()

	t.Run("Found", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(`(?s)SELECT .* FROM destinations WHERE id = \$1`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "country", "city", "photo", "created_at", "updated_at"}).
				AddRow(id.String(), "Zanzibar", "", "Tanzania", "Stone Town", nil, now, now))

		d, err := repo.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "Zanzibar", d.Name)
		assert.Nil(t, d.Photo)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery(`(?s)SELECT .* FROM destinations WHERE id = \$1`).
			WithArgs(id).
			WillReturnError(sql.ErrNoRows)

		d, err := repo.GetByID(context.Background(), id)
		assert.Nil(t, d)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDestinationRepository_CreateDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDestinationRepository(db)

	mock.ExpectQuery(`INSERT INTO destinations`).
		WillReturnError(&pq.Error{Code: pqUniqueViolation, Constraint: "destinations_name_country_city_key"})

	err := repo.Create(context.Background(), &models.Destination{Name: "Paris", Country: "France", City: "Paris"})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDestinationRepository_DeleteAll(t *testing.T) {
	t.Run("Unbooked destinations go with their flights and hotels", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewDestinationRepository(db)

		mock.ExpectExec(`^DELETE FROM destinations$`).WillReturnResult(sqlmock.NewResult(0, 3))

		n, err := repo.DeleteAll(context.Background(), models.DestinationFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Booked flight blocks the whole delete", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewDestinationRepository(db)

		mock.ExpectExec(`^DELETE FROM destinations WHERE LOWER\(country\) = LOWER\(\$1\)$`).
			WithArgs("Kenya").
			WillReturnError(&pq.Error{
				Code:    pqForeignKeyViolation,
				Message: `update or delete on table "flights" violates foreign key constraint "bookings_flight_id_fkey" on table "bookings"`,
				Table:   "bookings",
			})

		n, err := repo.DeleteAll(context.Background(), models.DestinationFilter{Country: "Kenya"})
		assert.Zero(t, n)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
		assert.Equal(t, "REFERENCED", apperr.As(err).Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Single delete reports the same conflict", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewDestinationRepository(db)
		id := uuid.New()

		mock.ExpectExec(`DELETE FROM destinations WHERE id = \$1`).
			WithArgs(id).
			WillReturnError(&pq.Error{
				Code:    pqForeignKeyViolation,
				Message: `update or delete on table "rooms" violates foreign key constraint "bookings_room_id_fkey" on table "bookings"`,
				Table:   "bookings",
			})

		err := repo.Delete(context.Background(), id)
		assert.Equal(t, "REFERENCED", apperr.As(err).Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSchema_DestinationDeletePolicy(t *testing.T) {
	// inventory under a destination cascades with it
	assert.Contains(t, createHotelsTable, "destination_id UUID NOT NULL REFERENCES destinations(id) ON DELETE CASCADE")
	assert.Contains(t, createRoomsTable, "hotel_id UUID NOT NULL REFERENCES hotels(id) ON DELETE CASCADE")
	assert.Contains(t, createFlightsTable, "origin_id UUID NOT NULL REFERENCES destinations(id) ON DELETE CASCADE")
	assert.Contains(t, createFlightsTable, "destination_id UUID NOT NULL REFERENCES destinations(id) ON DELETE CASCADE")

	// booked inventory stops the cascade
	assert.Contains(t, createBookingsTable, "flight_id UUID REFERENCES flights(id) ON DELETE RESTRICT")
	assert.Contains(t, createBookingsTable, "room_id UUID REFERENCES rooms(id) ON DELETE RESTRICT")
	assert.Contains(t, createBookingsTable, "tour_id UUID REFERENCES tours(id) ON DELETE RESTRICT")
	assert.Contains(t, createPaymentsTable, "booking_id UUID NOT NULL REFERENCES bookings(id) ON DELETE CASCADE")
}

func TestBookingRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	userID, tourID := uuid.New(), uuid.New()
	now := time.Now()
	f := models.BookingFilter{Status: "PENDING", UserID: userID.String()}
	f.Normalize()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE status = \$1 AND user_id = \$2`).
		WithArgs("PENDING", userID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`(?s)SELECT .* FROM bookings WHERE status = \$1 AND user_id = \$2 ORDER BY booking_date DESC, id DESC LIMIT \$3 OFFSET \$4`).
		WithArgs("PENDING", userID.String(), 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "booking_type", "tour_id", "room_id", "flight_id", "quantity", "unit_price",
			"total_price", "status", "notes", "booking_date", "cancelled_at", "created_at", "updated_at",
		}).AddRow(uuid.New().String(), userID.String(), "TOUR", tourID.String(), nil, nil, 2, 150.0, 300.0, "PENDING", "", now, nil, now, now))

	bookings, total, err := repo.List(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, bookings, 1)
	assert.Equal(t, models.TourRef(tourID), bookings[0].Item)
	assert.Equal(t, 300.0, bookings[0].TotalPrice)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepository_FindActiveByBooking(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository(db)
	bookingID := uuid.New()

	mock.ExpectQuery(`(?s)SELECT .* FROM payments\s+WHERE booking_id = \$1 AND status IN`).
		WithArgs(bookingID).
		WillReturnError(sql.ErrNoRows)

	p, err := repo.FindActiveByBooking(context.Background(), bookingID)
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepository_DeleteMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository(db)
	id := uuid.New()

	mock.ExpectExec(`DELETE FROM payments WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), id)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestUserRepository_GetByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	t.Run("Normalizes email", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(`(?s)SELECT .* FROM users WHERE email = \$1`).
			WithArgs("ada@example.com").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "name", "email", "password_hash", "role", "phone", "address", "profile_picture",
				"is_active", "last_login_at", "created_at", "updated_at",
			}).AddRow(uuid.New().String(), "Ada", "ada@example.com", "hash", "ADMIN", nil, nil, nil, true, nil, now, now))

		user, err := repo.GetByEmail(context.Background(), "  Ada@Example.com ")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, models.RoleAdmin, user.Role)
		assert.False(t, user.Phone.Valid)
	})

	t.Run("Unknown email", func(t *testing.T) {
		mock.ExpectQuery(`(?s)SELECT .* FROM users WHERE email = \$1`).
			WithArgs("nobody@example.com").
			WillReturnError(sql.ErrNoRows)

		user, err := repo.GetByEmail(context.Background(), "nobody@example.com")
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_DeleteAllKeepsCaller(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	keep := uuid.New()

	mock.ExpectExec(`DELETE FROM users WHERE role = \$1 AND id <> \$2`).
		WithArgs("CUSTOMER", keep).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteAll(context.Background(), models.UserFilter{Role: "CUSTOMER"}, keep)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_StoresHashOnly(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRefreshTokenRepository(db)
	userID := uuid.New()
	expires := time.Now().Add(time.Hour)

	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(sqlmock.AnyArg(), userID, hashToken("secret-token"), sqlmock.AnyArg(), sqlmock.AnyArg(), expires).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Store(context.Background(), userID, "secret-token", "10.0.0.1", "curl", expires))
	assert.Len(t, hashToken("secret-token"), 64)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepository_TopTours(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReportRepository(db)
	tourID := uuid.New()

	mock.ExpectQuery(`FROM bookings b\s+JOIN tours t ON t.id = b.tour_id WHERE b.booking_type = \$1 AND b.status <> \$2\s+GROUP BY t.id, t.name\s+HAVING COUNT\(b.id\) >= \$3\s+ORDER BY revenue DESC, booking_count DESC, t.name\s+LIMIT \$4`).
		WithArgs(models.BookingTypeTour, models.BookingStatusCancelled, 2, 5).
		WillReturnRows(sqlmock.NewRows([]string{"tour_id", "name", "booking_count", "guest_count", "revenue"}).
			AddRow(tourID.String(), "Serengeti Safari", 4, 9, 4500.0))

	tours, err := repo.TopTours(context.Background(), models.TopToursFilter{MinBookings: 2, Limit: 5, RankBy: "revenue"})
	require.NoError(t, err)
	require.Len(t, tours, 1)
	assert.Equal(t, 9, tours[0].GuestCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_WithinTx(t *testing.T) {
	db, mock := newMockDB(t)
	manager := NewTxManager(db)
	tourID := uuid.New()

	t.Run("Commits on success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT name, price, max_guests, guests_booked, status FROM tours WHERE id = \$1 FOR UPDATE`).
			WithArgs(tourID).
			WillReturnRows(sqlmock.NewRows([]string{"name", "price", "max_guests", "guests_booked", "status"}).
				AddRow("Safari", 100.0, 2, 1, "UPCOMING"))
		mock.ExpectExec(`UPDATE tours SET guests_booked = GREATEST\(guests_booked \+ \$2, 0\)`).
			WithArgs(tourID, 1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := manager.WithinTx(context.Background(), func(tx TravelTx) error {
			inv, err := tx.LockInventory(context.Background(), models.TourRef(tourID))
			if err != nil {
				return err
			}
			assert.Equal(t, 1, inv.Remaining())
			assert.True(t, inv.Open)
			return tx.AdjustInventory(context.Background(), inv.Ref, 1)
		})
		require.NoError(t, err)
	})

	t.Run("Rolls back on error", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := manager.WithinTx(context.Background(), func(tx TravelTx) error {
			return apperr.CapacityExceeded("full")
		})
		assert.True(t, apperr.IsKind(err, apperr.KindCapacityExceeded))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
