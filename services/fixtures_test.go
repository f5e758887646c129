package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fadhlanhapp/tripplanner-backend/models"
	"github.com/fadhlanhapp/tripplanner-backend/repository"
)

var testLoc = time.FixedZone("UTC+05:30", 5*3600+30*60)

// fixedNow is the clock every service under test sees
var fixedNow = time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedUsers(t *testing.T, store *repository.MemoryStore, ids ...string) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, store.CreateUser(context.Background(), &models.User{
			ID:        id,
			Username:  id,
			Email:     id + "@example.com",
			FullName:  strings.ToUpper(id[:1]) + id[1:],
			CreatedAt: fixedNow,
		}))
	}
}

func seedTrip(t *testing.T, store *repository.MemoryStore, id, creator string, start, end time.Time, members ...string) *models.TripPlan {
	t.Helper()
	trip := models.NewTrip(id, creator, fixedNow)
	trip.Name = "Trip " + id
	trip.Description = "desc " + id
	trip.StartDate = start
	trip.EndDate = end
	for _, m := range members {
		if m != creator {
			trip.Members = append(trip.Members, m)
		}
	}
	require.NoError(t, store.CreateTrip(context.Background(), trip))
	return trip
}

func seedExpense(t *testing.T, store *repository.MemoryStore, id, tripID, paidBy, amount, category string, paidOn time.Time, split ...string) {
	t.Helper()
	require.NoError(t, store.CreateExpense(context.Background(), &models.Expense{
		ID:           id,
		TripID:       tripID,
		Category:     category,
		Description:  "expense " + id,
		PaidTo:       "vendor",
		Amount:       money(amount),
		PaidBy:       paidBy,
		PaymentDate:  paidOn,
		SplitBetween: split,
		CreatedAt:    paidOn,
	}))
}

type testServices struct {
	store       *repository.MemoryStore
	trips       *TripService
	invitations *InvitationService
	expenses    *ExpenseService
	bookings    *BookingService
	aggregator  *ExpenseAggregator
	summary     *TripSummaryBuilder
	exports     *ExportService
}

func newTestServices(t *testing.T, users ...string) *testServices {
	t.Helper()
	store := repository.NewMemoryStore()
	seedUsers(t, store, users...)

	invitations := NewInvitationService(store, store, store)
	invitations.Now = clock
	trips := NewTripService(store, invitations, testLoc)
	trips.Now = clock
	expenses := NewExpenseService(store, store, testLoc)
	expenses.Now = clock
	bookings := NewBookingService(store, store, testLoc)
	bookings.Now = clock
	aggregator := NewExpenseAggregator(store, store, testLoc)
	summary := NewTripSummaryBuilder(store, store, store, aggregator)
	summary.Now = clock
	exports := NewExportService(store, store, store, testLoc)
	exports.Now = clock

	return &testServices{
		store:       store,
		trips:       trips,
		invitations: invitations,
		expenses:    expenses,
		bookings:    bookings,
		aggregator:  aggregator,
		summary:     summary,
		exports:     exports,
	}
}

func (s *testServices) createTrip(t *testing.T, creator string, req models.CreateTripRequest) *models.CreateTripResponse {
	t.Helper()
	if req.TripName == "" {
		req.TripName = "Goa Trip"
	}
	if req.TripDesc == "" {
		req.TripDesc = "beaches"
	}
	if req.StartDate == "" {
		req.StartDate = "2024-07-01"
	}
	if req.EndDate == "" {
		req.EndDate = "2024-07-04"
	}
	resp, err := s.trips.CreateTrip(context.Background(), creator, req)
	require.NoError(t, err)
	return resp
}
