// repository/store.go
package repository

import (
	"context"

	"github.com/fadhlanhapp/tripplanner-backend/models"
)

// ExpenseFilter narrows FindExpenses; zero fields are ignored
type ExpenseFilter struct {
	TripID      string
	PaidBy      string
	Participant string
	Limit       int
	NewestFirst bool
}

// TripFilter narrows FindTrips; zero fields are ignored
type TripFilter struct {
	CreatedBy string
	MemberID  string
}

// InvitationFilter narrows FindInvitations; zero fields are ignored
type InvitationFilter struct {
	TripID  string
	Invitee string
}

// ExpenseStore persists expenses and their split members
type ExpenseStore interface {
	CreateExpense(ctx context.Context, expense *models.Expense) error
	FindExpenses(ctx context.Context, filter ExpenseFilter) ([]*models.Expense, error)
	DeleteExpensesByTrip(ctx context.Context, tripID string) (int64, error)
}

// TripStore persists trips with their members and itinerary
type TripStore interface {
	CreateTrip(ctx context.Context, trip *models.TripPlan) error
	FindTrip(ctx context.Context, tripID string) (*models.TripPlan, error)
	FindTrips(ctx context.Context, filter TripFilter) ([]*models.TripPlan, error)
	UpdateTrip(ctx context.Context, trip *models.TripPlan) error
	AppendItineraryItem(ctx context.Context, tripID string, item models.ItineraryItem) (*models.TripPlan, error)
	// AddMember adds userID to the trip's members; adding an existing member is a no-op
	AddMember(ctx context.Context, tripID, userID string) (*models.TripPlan, error)
	RemoveMember(ctx context.Context, tripID, userID string) (bool, error)
	DeleteTrip(ctx context.Context, tripID string) (bool, error)
}

// UserStore persists user accounts
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUser(ctx context.Context, userID string) (*models.User, error)
	// FindUserByLogin looks a user up by username or email
	FindUserByLogin(ctx context.Context, login string) (*models.User, error)
	FindUsers(ctx context.Context, userIDs []string) ([]*models.User, error)
	SearchUsers(ctx context.Context, prefix, excludeID string, limit int) ([]*models.User, error)
	UpdateRefreshToken(ctx context.Context, userID, token string) error
}

// InvitationStore persists pending trip invitations
type InvitationStore interface {
	CreateInvitation(ctx context.Context, invitation *models.Invitation) error
	FindInvitation(ctx context.Context, invitationID string) (*models.Invitation, error)
	FindInvitations(ctx context.Context, filter InvitationFilter) ([]*models.Invitation, error)
	DeleteInvitation(ctx context.Context, invitationID string) (bool, error)
	DeleteInvitationsByTrip(ctx context.Context, tripID string) (int64, error)
	// AcceptInvitation adds the invitee to the trip and deletes the invitation in one step.
	// A missing invitation is a not found error.
	AcceptInvitation(ctx context.Context, invitationID string) (*models.Invitation, error)
}

// BookingStore persists hotel and travel bookings
type BookingStore interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	FindBookings(ctx context.Context, tripID string) ([]*models.Booking, error)
	DeleteBookingsByTrip(ctx context.Context, tripID string) (int64, error)
}

// LedgerStore is the full persistence surface used by the services
type LedgerStore interface {
	ExpenseStore
	TripStore
	UserStore
	InvitationStore
	BookingStore
	Close() error
}
