package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadhlanhapp/tripplanner-backend/models"
	"github.com/fadhlanhapp/tripplanner-backend/utils"
)

func TestMemoryStore_AcceptInvitationOnce(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.CreateTrip(ctx, models.NewTrip("t1", "a", time.Now())))
	require.NoError(t, store.CreateInvitation(ctx, &models.Invitation{ID: "i1", TripID: "t1", Inviter: "a", Invitee: "b"}))

	_, err := store.AcceptInvitation(ctx, "i1")
	require.NoError(t, err)

	_, err = store.AcceptInvitation(ctx, "i1")
	assert.True(t, utils.IsNotFound(err))

	trip, err := store.FindTrip(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, trip.Members)
}

func TestMemoryStore_DuplicateInvitation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.CreateInvitation(ctx, &models.Invitation{ID: "i1", TripID: "t1", Invitee: "b"}))
	err := store.CreateInvitation(ctx, &models.Invitation{ID: "i2", TripID: "t1", Invitee: "b"})
	assert.True(t, utils.IsConflict(err))
}

func TestMemoryStore_FindExpensesOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }

	for i, d := range []int{3, 1, 2} {
		require.NoError(t, store.CreateExpense(ctx, &models.Expense{
			ID: string(rune('x' + i)), TripID: "t1", Amount: decimal.NewFromInt(10), PaidBy: "a",
			PaymentDate: day(d), SplitBetween: []string{"a"},
		}))
	}

	oldest, err := store.FindExpenses(ctx, ExpenseFilter{TripID: "t1"})
	require.NoError(t, err)
	require.Len(t, oldest, 3)
	assert.Equal(t, day(1), oldest[0].PaymentDate)

	newest, err := store.FindExpenses(ctx, ExpenseFilter{TripID: "t1", NewestFirst: true, Limit: 2})
	require.NoError(t, err)
	require.Len(t, newest, 2)
	assert.Equal(t, day(3), newest[0].PaymentDate)
	assert.Equal(t, day(2), newest[1].PaymentDate)

	none, err := store.FindExpenses(ctx, ExpenseFilter{TripID: "other"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.CreateTrip(ctx, models.NewTrip("t1", "a", time.Now())))

	trip, err := store.FindTrip(ctx, "t1")
	require.NoError(t, err)
	trip.Members = append(trip.Members, "mallory")

	again, err := store.FindTrip(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, again.Members)
}

func TestMemoryStore_RemoveMember(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	trip := models.NewTrip("t1", "a", time.Now())
	trip.Members = append(trip.Members, "b", "c")
	require.NoError(t, store.CreateTrip(ctx, trip))

	removed, err := store.RemoveMember(ctx, "t1", "b")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.RemoveMember(ctx, "t1", "b")
	require.NoError(t, err)
	assert.False(t, removed)

	got, err := store.FindTrip(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, got.Members)
}

func TestMemoryStore_AddMemberIsSetAdd(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.CreateTrip(ctx, models.NewTrip("t1", "a", time.Now())))

	for i := 0; i < 2; i++ {
		trip, err := store.AddMember(ctx, "t1", "b")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, trip.Members)
	}

	// an invitation accepted after a direct add leaves a single membership
	require.NoError(t, store.CreateInvitation(ctx, &models.Invitation{ID: "i1", TripID: "t1", Inviter: "a", Invitee: "b"}))
	_, err := store.AcceptInvitation(ctx, "i1")
	require.NoError(t, err)

	trip, err := store.FindTrip(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, trip.Members)

	_, err = store.AddMember(ctx, "missing", "b")
	assert.True(t, utils.IsNotFound(err))
}

func TestMemoryStore_AcceptInvitationForDeletedTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.CreateInvitation(ctx, &models.Invitation{ID: "i1", TripID: "gone", Inviter: "a", Invitee: "b"}))

	_, err := store.AcceptInvitation(ctx, "i1")
	assert.True(t, utils.IsNotFound(err))

	inv, err := store.FindInvitation(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, "b", inv.Invitee)
}
