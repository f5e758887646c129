// repository/memory.go
package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/fadhlanhapp/tripplanner-backend/models"
	"github.com/fadhlanhapp/tripplanner-backend/utils"
)

// MemoryStore is an in-process LedgerStore. Records are copied on the way
// in and out so callers never share state with the store.
type MemoryStore struct {
	mu          sync.RWMutex
	expenses    map[string]*models.Expense
	trips       map[string]*models.TripPlan
	users       map[string]*models.User
	invitations map[string]*models.Invitation
	bookings    map[string]*models.Booking
}

var _ LedgerStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		expenses:    map[string]*models.Expense{},
		trips:       map[string]*models.TripPlan{},
		users:       map[string]*models.User{},
		invitations: map[string]*models.Invitation{},
		bookings:    map[string]*models.Booking{},
	}
}

// Close is a no-op
func (s *MemoryStore) Close() error { return nil }

func copyExpense(e *models.Expense) *models.Expense {
	c := *e
	c.SplitBetween = append([]string{}, e.SplitBetween...)
	return &c
}

func copyTrip(t *models.TripPlan) *models.TripPlan {
	c := *t
	c.Members = append([]string{}, t.Members...)
	c.Itinerary = make([]models.ItineraryItem, len(t.Itinerary))
	for i, item := range t.Itinerary {
		item.Checklist = append([]string{}, item.Checklist...)
		c.Itinerary[i] = item
	}
	return &c
}

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

func copyInvitation(i *models.Invitation) *models.Invitation {
	c := *i
	return &c
}

func copyBooking(b *models.Booking) *models.Booking {
	c := *b
	return &c
}

// CreateExpense saves an expense
func (s *MemoryStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses[expense.ID] = copyExpense(expense)
	return nil
}

// FindExpenses returns the expenses matching filter
func (s *MemoryStore) FindExpenses(ctx context.Context, filter ExpenseFilter) ([]*models.Expense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	expenses := []*models.Expense{}
	for _, e := range s.expenses {
		if filter.TripID != "" && e.TripID != filter.TripID {
			continue
		}
		if filter.PaidBy != "" && e.PaidBy != filter.PaidBy {
			continue
		}
		if filter.Participant != "" && !utils.ContainsID(e.SplitBetween, filter.Participant) {
			continue
		}
		expenses = append(expenses, copyExpense(e))
	}

	sort.Slice(expenses, func(i, j int) bool {
		a, b := expenses[i], expenses[j]
		if !a.PaymentDate.Equal(b.PaymentDate) {
			return a.PaymentDate.Before(b.PaymentDate) != filter.NewestFirst
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt) != filter.NewestFirst
		}
		return a.ID < b.ID
	})

	if filter.Limit > 0 && len(expenses) > filter.Limit {
		expenses = expenses[:filter.Limit]
	}
	return expenses, nil
}

// DeleteExpensesByTrip removes every expense of a trip
func (s *MemoryStore) DeleteExpensesByTrip(ctx context.Context, tripID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, e := range s.expenses {
		if e.TripID == tripID {
			delete(s.expenses, id)
			n++
		}
	}
	return n, nil
}

// CreateTrip saves a trip
func (s *MemoryStore) CreateTrip(ctx context.Context, trip *models.TripPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := copyTrip(trip)
	c.Members = utils.UniqueIDs(c.Members)
	s.trips[trip.ID] = c
	return nil
}

// FindTrip returns a trip by ID
func (s *MemoryStore) FindTrip(ctx context.Context, tripID string) (*models.TripPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	trip, ok := s.trips[tripID]
	if !ok {
		return nil, utils.NewNotFoundError("trip")
	}
	return copyTrip(trip), nil
}

// FindTrips returns the trips matching filter ordered by start date
func (s *MemoryStore) FindTrips(ctx context.Context, filter TripFilter) ([]*models.TripPlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	trips := []*models.TripPlan{}
	for _, t := range s.trips {
		if filter.CreatedBy != "" && t.CreatedBy != filter.CreatedBy {
			continue
		}
		if filter.MemberID != "" && !t.HasMember(filter.MemberID) {
			continue
		}
		trips = append(trips, copyTrip(t))
	}
	sort.Slice(trips, func(i, j int) bool {
		if !trips[i].StartDate.Equal(trips[j].StartDate) {
			return trips[i].StartDate.Before(trips[j].StartDate)
		}
		return trips[i].ID < trips[j].ID
	})
	return trips, nil
}

// UpdateTrip saves the trip's own fields; members and itinerary are untouched
func (s *MemoryStore) UpdateTrip(ctx context.Context, trip *models.TripPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.trips[trip.ID]
	if !ok {
		return utils.NewNotFoundError("trip")
	}
	updated := copyTrip(trip)
	updated.Members = existing.Members
	updated.Itinerary = existing.Itinerary
	updated.CreatedBy = existing.CreatedBy
	updated.CreatedAt = existing.CreatedAt
	s.trips[trip.ID] = updated
	return nil
}

// AppendItineraryItem adds an item at the end of the trip's itinerary
func (s *MemoryStore) AppendItineraryItem(ctx context.Context, tripID string, item models.ItineraryItem) (*models.TripPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	trip, ok := s.trips[tripID]
	if !ok {
		return nil, utils.NewNotFoundError("trip")
	}
	item.Checklist = append([]string{}, item.Checklist...)
	trip.Itinerary = append(trip.Itinerary, item)
	return copyTrip(trip), nil
}

// AddMember adds userID to the trip; existing members are left as they are
func (s *MemoryStore) AddMember(ctx context.Context, tripID, userID string) (*models.TripPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	trip, err := s.addMemberLocked(tripID, userID)
	if err != nil {
		return nil, err
	}
	return copyTrip(trip), nil
}

// addMemberLocked is the membership set-add; callers hold s.mu
func (s *MemoryStore) addMemberLocked(tripID, userID string) (*models.TripPlan, error) {
	trip, ok := s.trips[tripID]
	if !ok {
		return nil, utils.NewNotFoundError("trip")
	}
	if !trip.HasMember(userID) {
		trip.Members = append(trip.Members, userID)
	}
	return trip, nil
}

// RemoveMember removes userID from the trip's members
func (s *MemoryStore) RemoveMember(ctx context.Context, tripID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	trip, ok := s.trips[tripID]
	if !ok {
		return false, nil
	}
	for i, member := range trip.Members {
		if member == userID {
			trip.Members = append(trip.Members[:i:i], trip.Members[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// DeleteTrip removes a trip
func (s *MemoryStore) DeleteTrip(ctx context.Context, tripID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trips[tripID]; !ok {
		return false, nil
	}
	delete(s.trips, tripID)
	return true, nil
}

// CreateUser saves a user; a taken username or email is a conflict
func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return utils.NewConflictError("username or email already registered")
		}
	}
	s.users[user.ID] = copyUser(user)
	return nil
}

// FindUser returns a user by ID
func (s *MemoryStore) FindUser(ctx context.Context, userID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, utils.NewNotFoundError("user")
	}
	return copyUser(user), nil
}

// FindUserByLogin returns a user by username or email
func (s *MemoryStore) FindUserByLogin(ctx context.Context, login string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == login || u.Email == login {
			return copyUser(u), nil
		}
	}
	return nil, utils.NewNotFoundError("user")
}

// FindUsers returns the users with the given IDs ordered by ID
func (s *MemoryStore) FindUsers(ctx context.Context, userIDs []string) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := []*models.User{}
	for _, id := range utils.UniqueIDs(userIDs) {
		if u, ok := s.users[id]; ok {
			users = append(users, copyUser(u))
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// SearchUsers finds users whose username or full name starts with prefix
func (s *MemoryStore) SearchUsers(ctx context.Context, prefix, excludeID string, limit int) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := []*models.User{}
	for _, u := range s.users {
		if u.ID == excludeID {
			continue
		}
		if utils.HasPrefixFold(u.Username, prefix) || utils.HasPrefixFold(u.FullName, prefix) {
			users = append(users, copyUser(u))
		}
	}
	sort.Slice(users, func(i, j int) bool {
		a, b := strings.ToLower(users[i].FullName), strings.ToLower(users[j].FullName)
		if a != b {
			return a < b
		}
		return users[i].ID < users[j].ID
	})
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

// UpdateRefreshToken stores the user's current refresh token
func (s *MemoryStore) UpdateRefreshToken(ctx context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return utils.NewNotFoundError("user")
	}
	user.RefreshToken = token
	return nil
}

// CreateInvitation saves an invitation; one per trip and invitee
func (s *MemoryStore) CreateInvitation(ctx context.Context, invitation *models.Invitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range s.invitations {
		if inv.TripID == invitation.TripID && inv.Invitee == invitation.Invitee {
			return utils.NewConflictError("user is already invited to this trip")
		}
	}
	s.invitations[invitation.ID] = copyInvitation(invitation)
	return nil
}

// FindInvitation returns an invitation by ID
func (s *MemoryStore) FindInvitation(ctx context.Context, invitationID string) (*models.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invitations[invitationID]
	if !ok {
		return nil, utils.NewNotFoundError("invitation")
	}
	return copyInvitation(inv), nil
}

// FindInvitations returns the invitations matching filter, oldest first
func (s *MemoryStore) FindInvitations(ctx context.Context, filter InvitationFilter) ([]*models.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	invitations := []*models.Invitation{}
	for _, inv := range s.invitations {
		if filter.TripID != "" && inv.TripID != filter.TripID {
			continue
		}
		if filter.Invitee != "" && inv.Invitee != filter.Invitee {
			continue
		}
		invitations = append(invitations, copyInvitation(inv))
	}
	sort.Slice(invitations, func(i, j int) bool {
		if !invitations[i].CreatedAt.Equal(invitations[j].CreatedAt) {
			return invitations[i].CreatedAt.Before(invitations[j].CreatedAt)
		}
		return invitations[i].ID < invitations[j].ID
	})
	return invitations, nil
}

// DeleteInvitation removes an invitation
func (s *MemoryStore) DeleteInvitation(ctx context.Context, invitationID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invitations[invitationID]; !ok {
		return false, nil
	}
	delete(s.invitations, invitationID)
	return true, nil
}

// DeleteInvitationsByTrip removes every invitation of a trip
func (s *MemoryStore) DeleteInvitationsByTrip(ctx context.Context, tripID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, inv := range s.invitations {
		if inv.TripID == tripID {
			delete(s.invitations, id)
			n++
		}
	}
	return n, nil
}

// AcceptInvitation adds the invitee to the trip and deletes the invitation under one lock
func (s *MemoryStore) AcceptInvitation(ctx context.Context, invitationID string) (*models.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invitations[invitationID]
	if !ok {
		return nil, utils.NewNotFoundError("invitation")
	}
	if _, err := s.addMemberLocked(inv.TripID, inv.Invitee); err != nil {
		return nil, err
	}
	delete(s.invitations, invitationID)
	return copyInvitation(inv), nil
}

// CreateBooking saves a booking
func (s *MemoryStore) CreateBooking(ctx context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[booking.ID] = copyBooking(booking)
	return nil
}

// FindBookings returns the bookings of a trip, oldest first
func (s *MemoryStore) FindBookings(ctx context.Context, tripID string) ([]*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bookings := []*models.Booking{}
	for _, b := range s.bookings {
		if b.TripID == tripID {
			bookings = append(bookings, copyBooking(b))
		}
	}
	sort.Slice(bookings, func(i, j int) bool {
		if !bookings[i].CreatedAt.Equal(bookings[j].CreatedAt) {
			return bookings[i].CreatedAt.Before(bookings[j].CreatedAt)
		}
		return bookings[i].ID < bookings[j].ID
	})
	return bookings, nil
}

// DeleteBookingsByTrip removes every booking of a trip
func (s *MemoryStore) DeleteBookingsByTrip(ctx context.Context, tripID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, b := range s.bookings {
		if b.TripID == tripID {
			delete(s.bookings, id)
			n++
		}
	}
	return n, nil
}
