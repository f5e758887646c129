package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadhlanhapp/tripplanner-backend/models"
	"github.com/fadhlanhapp/tripplanner-backend/utils"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(db), mock
}

func TestExpenseRepository_CreateExpense(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	expense := &models.Expense{
		ID: "e1", TripID: "t1", Category: utils.CategoryFood, Description: "Dinner", PaidTo: "Shack",
		Amount: decimal.NewFromInt(900), PaidBy: "a", PaymentDate: now,
		SplitBetween: []string{"a", "b"}, CreatedAt: now,
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO expenses").
		WithArgs("e1", "t1", "food", "Dinner", "Shack", expense.Amount, "a", now, now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO expense_participants").WithArgs("e1", "a", 0).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO expense_participants").WithArgs("e1", "b", 1).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, store.CreateExpense(context.Background(), expense))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseRepository_FindExpenses(t *testing.T) {
	store, mock := newMockStore(t)
	paid := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM expenses e WHERE e.trip_id = \$1 AND e.paid_by = \$2 ORDER BY e.payment_date DESC`).
		WithArgs("t1", "a", 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "trip_id", "category", "description", "paid_to", "amount", "paid_by", "payment_date", "created_at"}).
			AddRow("e1", "t1", "food", "Dinner", "Shack", "900.00", "a", paid, paid).
			AddRow("e2", "t1", "travel", "Cab", "Driver", "120.50", "a", paid, paid))
	mock.ExpectQuery("SELECT expense_id, user_id FROM expense_participants").
		WithArgs(pq.Array([]string{"e1", "e2"})).
		WillReturnRows(sqlmock.NewRows([]string{"expense_id", "user_id"}).
			AddRow("e1", "a").AddRow("e1", "b").AddRow("e1", "c").AddRow("e2", "b"))

	expenses, err := store.FindExpenses(context.Background(), ExpenseFilter{TripID: "t1", PaidBy: "a", Limit: 5, NewestFirst: true})
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Equal(t, []string{"a", "b", "c"}, expenses[0].SplitBetween)
	assert.Equal(t, []string{"b"}, expenses[1].SplitBetween)
	assert.True(t, expenses[1].Amount.Equal(decimal.RequireFromString("120.5")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseRepository_FindExpensesEmpty(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`FROM expenses e WHERE EXISTS`).
		WithArgs("b").
		WillReturnRows(sqlmock.NewRows([]string{"id", "trip_id", "category", "description", "paid_to", "amount", "paid_by", "payment_date", "created_at"}))

	expenses, err := store.FindExpenses(context.Background(), ExpenseFilter{Participant: "b"})
	require.NoError(t, err)
	assert.NotNil(t, expenses)
	assert.Empty(t, expenses)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTripRepository_FindTripNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("FROM trips t WHERE t.id").WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := store.FindTrip(context.Background(), "missing")
	assert.True(t, utils.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTripRepository_FindTrip(t *testing.T) {
	store, mock := newMockStore(t)
	start := time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 4)

	mock.ExpectQuery("FROM trips t WHERE t.id").WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "notes", "cover_image", "start_date", "end_date", "planned_budget", "created_by", "created_at"}).
			AddRow("t1", "Goa Trip", "Beaches", "", "", start, end, "15000", "a", start))
	mock.ExpectQuery("SELECT trip_id, user_id FROM trip_members").WithArgs(pq.Array([]string{"t1"})).
		WillReturnRows(sqlmock.NewRows([]string{"trip_id", "user_id"}).AddRow("t1", "a").AddRow("t1", "b"))
	mock.ExpectQuery("FROM itinerary_items").WithArgs(pq.Array([]string{"t1"})).
		WillReturnRows(sqlmock.NewRows([]string{"trip_id", "date", "place_to_visit", "checklist", "notes"}).
			AddRow("t1", start, "Baga Beach", "{sunscreen,towel}", "").
			AddRow("t1", end, "Fort Aguada", "{}", "sunset"))

	trip, err := store.FindTrip(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, trip.Members)
	require.Len(t, trip.Itinerary, 2)
	assert.Equal(t, []string{"sunscreen", "towel"}, trip.Itinerary[0].Checklist)
	assert.Equal(t, "Fort Aguada", trip.Itinerary[1].PlaceToVisit)
	assert.True(t, trip.PlannedBudget.Valid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTripRepository_AddMemberIsIdempotent(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id FROM trips WHERE id").WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("t1"))
	mock.ExpectExec("INSERT INTO trip_members .* ON CONFLICT DO NOTHING").WithArgs("t1", "b").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FROM trips t WHERE t.id").WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "notes", "cover_image", "start_date", "end_date", "planned_budget", "created_by", "created_at"}).
			AddRow("t1", "Goa Trip", "", "", "", time.Now(), time.Now(), nil, "a", time.Now()))
	mock.ExpectQuery("FROM trip_members").WillReturnRows(sqlmock.NewRows([]string{"trip_id", "user_id"}).AddRow("t1", "a").AddRow("t1", "b"))
	mock.ExpectQuery("FROM itinerary_items").WillReturnRows(sqlmock.NewRows([]string{"trip_id", "date", "place_to_visit", "checklist", "notes"}))

	trip, err := store.AddMember(context.Background(), "t1", "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, trip.Members)
	assert.False(t, trip.PlannedBudget.Valid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTripRepository_DeleteTrip(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM trips WHERE id").WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM trips WHERE id").WithArgs("t2").WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := store.DeleteTrip(context.Background(), "t1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.DeleteTrip(context.Background(), "t2")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationRepository_AcceptInvitation(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM invitations WHERE id = \\$1 FOR UPDATE").WithArgs("i1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "trip_id", "inviter", "invitee", "created_at"}).
			AddRow("i1", "t1", "a", "b", created))
	mock.ExpectExec("INSERT INTO trip_members .* ON CONFLICT DO NOTHING").WithArgs("t1", "b").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM invitations WHERE id").WithArgs("i1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	inv, err := store.AcceptInvitation(context.Background(), "i1")
	require.NoError(t, err)
	assert.Equal(t, "b", inv.Invitee)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationRepository_AcceptMissingInvitation(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM invitations WHERE id = \\$1 FOR UPDATE").WithArgs("i1").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := store.AcceptInvitation(context.Background(), "i1")
	assert.True(t, utils.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationRepository_CreateDuplicate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO invitations").WillReturnError(&pq.Error{Code: uniqueViolation})

	err := store.CreateInvitation(context.Background(), &models.Invitation{ID: "i2", TripID: "t1", Inviter: "a", Invitee: "b"})
	assert.True(t, utils.IsConflict(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SearchUsersEscapesPattern(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("FROM users").WithArgs("me", `50\%%`, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "full_name", "avatar", "password_hash", "refresh_token", "created_at"}))

	users, err := store.SearchUsers(context.Background(), "50%", "me", 10)
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_RoundTrip(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Now()

	mock.ExpectExec("INSERT INTO bookings").
		WithArgs("bk1", "t1", "hotel", "", sqlmock.AnyArg(), created).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("FROM bookings WHERE trip_id").WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "trip_id", "booking_type", "receipt", "details", "created_at"}).
			AddRow("bk1", "t1", "hotel", "", []byte(`{"hotelName":"Taj","location":"Panaji"}`), created))

	err := store.CreateBooking(context.Background(), &models.Booking{
		ID: "bk1", TripID: "t1", Details: models.HotelDetails{HotelName: "Taj", Location: "Panaji"}, CreatedAt: created,
	})
	require.NoError(t, err)

	bookings, err := store.FindBookings(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	hotel, ok := bookings[0].Details.(models.HotelDetails)
	require.True(t, ok)
	assert.Equal(t, "Taj", hotel.HotelName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
