package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadhlanhapp/tripplanner-backend/models"
	"github.com/fadhlanhapp/tripplanner-backend/repository"
	"github.com/fadhlanhapp/tripplanner-backend/utils"
)

func newGoaTrip(t *testing.T) (*repository.MemoryStore, *SettlementService) {
	store := repository.NewMemoryStore()
	seedUsers(t, store, "a", "b", "c")
	seedTrip(t, store, "goa", "a", day(2024, time.May, 1), day(2024, time.May, 4), "b", "c")
	seedExpense(t, store, "hotel", "goa", "a", "900", utils.CategoryAccommodation, day(2024, time.May, 1), "a", "b", "c")
	return store, NewSettlementService(store, store, store)
}

func owedMap(entries []models.OwedEntry) map[string]string {
	out := map[string]string{}
	for _, e := range entries {
		out[e.User.ID] = e.Amount.String()
	}
	return out
}

func TestSettlementService_GoaTrip(t *testing.T) {
	_, service := newGoaTrip(t)
	ctx := context.Background()

	owedToA, err := service.AmountOwedToUser(ctx, "goa", "a")
	require.NoError(t, err)
	require.Len(t, owedToA, 2)
	assert.Equal(t, "b", owedToA[0].User.ID)
	assert.Equal(t, "B", owedToA[0].User.FullName)
	assert.Equal(t, map[string]string{"b": "300", "c": "300"}, owedMap(owedToA))

	owedByB, err := service.AmountOwedByUser(ctx, "goa", "b")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "300"}, owedMap(owedByB))

	owedByA, err := service.AmountOwedByUser(ctx, "goa", "a")
	require.NoError(t, err)
	assert.Empty(t, owedByA)
}

func TestSettlementService_OwedIsNotNetted(t *testing.T) {
	store, service := newGoaTrip(t)
	seedExpense(t, store, "dinner", "goa", "b", "60", utils.CategoryFood, day(2024, time.May, 2), "a", "b")
	ctx := context.Background()

	owedByA, err := service.AmountOwedByUser(ctx, "goa", "a")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"b": "30"}, owedMap(owedByA))

	owedToA, err := service.AmountOwedToUser(ctx, "goa", "a")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"b": "300", "c": "300"}, owedMap(owedToA))
}

func TestSettlementService_RoundsThirds(t *testing.T) {
	store, service := newGoaTrip(t)
	seedExpense(t, store, "snacks", "goa", "c", "100", utils.CategoryFood, day(2024, time.May, 2), "a", "b", "c")

	owedByB, err := service.AmountOwedByUser(context.Background(), "goa", "b")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "300", "c": "33.33"}, owedMap(owedByB))
}

func TestSettlementService_SuggestSettlements(t *testing.T) {
	store, service := newGoaTrip(t)
	seedExpense(t, store, "cab", "goa", "b", "150", utils.CategoryTravel, day(2024, time.May, 2), "b", "c")

	result, err := service.SuggestSettlements(context.Background(), "goa")
	require.NoError(t, err)

	require.Len(t, result.Balances, 3)
	balances := map[string]string{}
	for _, b := range result.Balances {
		balances[b.User.ID] = b.Balance.String()
	}
	// a: +600, b: 150-375 = -225, c: -375
	assert.Equal(t, map[string]string{"a": "600", "b": "-225", "c": "-375"}, balances)

	require.Len(t, result.Settlements, 2)
	assert.Equal(t, "c", result.Settlements[0].From.ID)
	assert.Equal(t, "a", result.Settlements[0].To.ID)
	assert.Equal(t, "375", result.Settlements[0].Amount.String())
	assert.Equal(t, "b", result.Settlements[1].From.ID)
	assert.Equal(t, "225", result.Settlements[1].Amount.String())
}

func TestSettlementService_NoExpenses(t *testing.T) {
	store := repository.NewMemoryStore()
	seedUsers(t, store, "a", "b")
	seedTrip(t, store, "empty", "a", day(2024, time.May, 1), day(2024, time.May, 1), "b")
	service := NewSettlementService(store, store, store)

	result, err := service.SuggestSettlements(context.Background(), "empty")
	require.NoError(t, err)
	assert.Len(t, result.Balances, 2)
	assert.Empty(t, result.Settlements)
}

func TestSettlementService_UnsplitExpenseIsComputationError(t *testing.T) {
	store, service := newGoaTrip(t)
	seedExpense(t, store, "broken", "goa", "a", "10", utils.CategoryOther, day(2024, time.May, 2))

	_, err := service.AmountOwedToUser(context.Background(), "goa", "a")
	assert.True(t, utils.IsComputation(err))
}

func TestCalculateOptimalSettlements_GreedyPairing(t *testing.T) {
	transfers := calculateOptimalSettlements(map[string]decimal.Decimal{
		"x": money("50"),
		"y": money("-20"),
		"z": money("-30"),
		"w": decimal.Zero,
	})

	require.Len(t, transfers, 2)
	assert.Equal(t, "z", transfers[0].from)
	assert.Equal(t, "x", transfers[0].to)
	assert.True(t, transfers[0].amount.Equal(money("30")))
	assert.Equal(t, "y", transfers[1].from)
	assert.True(t, transfers[1].amount.Equal(money("20")))
}
