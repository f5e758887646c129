// services/trip_service.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/shopspring/decimal"

	"github.com/fadhlanhapp/tripplanner-backend/models"
	"github.com/fadhlanhapp/tripplanner-backend/repository"
	"github.com/fadhlanhapp/tripplanner-backend/utils"
)

// TripService handles trip lifecycle and membership
type TripService struct {
	store       repository.LedgerStore
	invitations *InvitationService
	loc         *time.Location

	Now func() time.Time
}

// NewTripService creates a new trip service. Calendar dates in requests are read in loc.
func NewTripService(store repository.LedgerStore, invitations *InvitationService, loc *time.Location) *TripService {
	if loc == nil {
		loc = time.UTC
	}
	return &TripService{
		store:       store,
		invitations: invitations,
		loc:         loc,
		Now:         time.Now,
	}
}

func validateBudget(budget *decimal.Decimal) (decimal.NullDecimal, error) {
	if budget == nil {
		return decimal.NullDecimal{}, nil
	}
	if err := utils.ValidatePositive(*budget, "planned budget"); err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(*budget), nil
}

func (s *TripService) parseDate(value, field string) (time.Time, error) {
	t, err := utils.ParseDate(value, s.loc)
	if err != nil {
		return time.Time{}, utils.NewValidationError(fmt.Sprintf("%s is invalid", field))
	}
	return t, nil
}

func (s *TripService) parseItineraryItem(req models.ItineraryItemRequest) (models.ItineraryItem, error) {
	if err := utils.ValidateRequired(req.PlaceToVisit, "place to visit"); err != nil {
		return models.ItineraryItem{}, err
	}
	date, err := s.parseDate(req.Date, "itinerary date")
	if err != nil {
		return models.ItineraryItem{}, err
	}
	checklist := req.Checklist
	if checklist == nil {
		checklist = []string{}
	}
	return models.ItineraryItem{
		Date:         date,
		PlaceToVisit: strings.TrimSpace(req.PlaceToVisit),
		Checklist:    checklist,
		Notes:        strings.TrimSpace(req.Notes),
	}, nil
}

func validateDateRange(start, end time.Time) error {
	if end.Before(start) {
		return utils.NewValidationError("End date must be after start date")
	}
	return nil
}

// CreateTrip creates a trip with userID as creator and only member, then
// invites everyone else listed. Invitation failures are counted, not fatal.
func (s *TripService) CreateTrip(ctx context.Context, userID string, req models.CreateTripRequest) (*models.CreateTripResponse, error) {
	defer newrelic.FromContext(ctx).StartSegment("trip.CreateTrip").End()

	if err := utils.ValidateRequired(req.TripName, "trip name"); err != nil {
		return nil, err
	}
	if err := utils.ValidateRequired(req.TripDesc, "trip description"); err != nil {
		return nil, err
	}
	start, err := s.parseDate(req.StartDate, "start date")
	if err != nil {
		return nil, err
	}
	end, err := s.parseDate(req.EndDate, "end date")
	if err != nil {
		return nil, err
	}
	if err := validateDateRange(start, end); err != nil {
		return nil, err
	}
	budget, err := validateBudget(req.PlannedBudget)
	if err != nil {
		return nil, err
	}

	trip := models.NewTrip(utils.GenerateID(), userID, s.Now())
	trip.Name = strings.TrimSpace(req.TripName)
	trip.Description = strings.TrimSpace(req.TripDesc)
	trip.Notes = req.Notes
	trip.CoverImage = req.CoverImage
	trip.StartDate = start
	trip.EndDate = end
	trip.PlannedBudget = budget
	for _, itemReq := range req.Itinerary {
		item, err := s.parseItineraryItem(itemReq)
		if err != nil {
			return nil, err
		}
		trip.Itinerary = append(trip.Itinerary, item)
	}

	if err := s.store.CreateTrip(ctx, trip); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "trip created", "trip_id", trip.ID, "created_by", userID)

	var invitees []string
	for _, member := range utils.UniqueIDs(req.TripMembers) {
		if member != userID {
			invitees = append(invitees, member)
		}
	}
	sent, failed, _ := s.invitations.fanOut(ctx, trip.ID, userID, invitees)

	return &models.CreateTripResponse{
		Trip:              trip,
		InvitationsSent:   sent,
		InvitationsFailed: failed,
	}, nil
}

// GetTrip returns a trip the user belongs to
func (s *TripService) GetTrip(ctx context.Context, tripID, userID string) (*models.TripPlan, error) {
	return requireTripMember(ctx, s.store, tripID, userID)
}

// RequireMember checks that userID belongs to tripID
func (s *TripService) RequireMember(ctx context.Context, tripID, userID string) error {
	_, err := requireTripMember(ctx, s.store, tripID, userID)
	return err
}

// UpdateTrip changes the trip's own fields. Members, itinerary and creator are kept.
func (s *TripService) UpdateTrip(ctx context.Context, tripID, userID string, req models.UpdateTripRequest) (*models.TripPlan, error) {
	defer newrelic.FromContext(ctx).StartSegment("trip.UpdateTrip").End()

	trip, err := requireTripMember(ctx, s.store, tripID, userID)
	if err != nil {
		return nil, err
	}

	if req.TripName != nil {
		if err := utils.ValidateRequired(*req.TripName, "trip name"); err != nil {
			return nil, err
		}
		trip.Name = strings.TrimSpace(*req.TripName)
	}
	if req.TripDesc != nil {
		if err := utils.ValidateRequired(*req.TripDesc, "trip description"); err != nil {
			return nil, err
		}
		trip.Description = strings.TrimSpace(*req.TripDesc)
	}
	if req.Notes != nil {
		trip.Notes = *req.Notes
	}
	if req.CoverImage != nil {
		trip.CoverImage = *req.CoverImage
	}
	if req.StartDate != nil {
		if trip.StartDate, err = s.parseDate(*req.StartDate, "start date"); err != nil {
			return nil, err
		}
	}
	if req.EndDate != nil {
		if trip.EndDate, err = s.parseDate(*req.EndDate, "end date"); err != nil {
			return nil, err
		}
	}
	if err := validateDateRange(trip.StartDate, trip.EndDate); err != nil {
		return nil, err
	}
	if req.PlannedBudget != nil {
		if trip.PlannedBudget, err = validateBudget(req.PlannedBudget); err != nil {
			return nil, err
		}
	}

	if err := s.store.UpdateTrip(ctx, trip); err != nil {
		return nil, err
	}
	return s.store.FindTrip(ctx, tripID)
}

// AddItineraryItem appends an item to the trip's itinerary
func (s *TripService) AddItineraryItem(ctx context.Context, tripID, userID string, req models.ItineraryItemRequest) (*models.TripPlan, error) {
	defer newrelic.FromContext(ctx).StartSegment("trip.AddItineraryItem").End()

	if _, err := requireTripMember(ctx, s.store, tripID, userID); err != nil {
		return nil, err
	}
	item, err := s.parseItineraryItem(req)
	if err != nil {
		return nil, err
	}
	return s.store.AppendItineraryItem(ctx, tripID, item)
}

// RemoveMember removes memberID from the trip. Only the creator may do this,
// and the creator cannot remove themself.
func (s *TripService) RemoveMember(ctx context.Context, tripID, userID, memberID string) (*models.TripPlan, error) {
	defer newrelic.FromContext(ctx).StartSegment("trip.RemoveMember").End()

	trip, err := requireTripCreator(ctx, s.store, tripID, userID)
	if err != nil {
		return nil, err
	}
	if memberID == trip.CreatedBy {
		return nil, utils.NewValidationError("The trip organiser cannot be removed from the trip")
	}

	removed, err := s.store.RemoveMember(ctx, tripID, memberID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, utils.NewNotFoundError("trip member")
	}
	return s.store.FindTrip(ctx, tripID)
}

// DeleteTrip removes a trip and everything attached to it. Dependents are
// deleted first and any failure stops the delete before the trip goes.
func (s *TripService) DeleteTrip(ctx context.Context, tripID, userID string) error {
	defer newrelic.FromContext(ctx).StartSegment("trip.DeleteTrip").End()

	if _, err := requireTripCreator(ctx, s.store, tripID, userID); err != nil {
		return err
	}

	invitations, err := s.store.DeleteInvitationsByTrip(ctx, tripID)
	if err != nil {
		return utils.NewInternalError("Error occurred while deleting the invitations", err)
	}
	bookings, err := s.store.DeleteBookingsByTrip(ctx, tripID)
	if err != nil {
		return utils.NewInternalError("Error occurred while deleting the bookings", err)
	}
	expenses, err := s.store.DeleteExpensesByTrip(ctx, tripID)
	if err != nil {
		return utils.NewInternalError("Error occurred while deleting the expenses", err)
	}

	deleted, err := s.store.DeleteTrip(ctx, tripID)
	if err != nil {
		return err
	}
	if !deleted {
		return utils.NewNotFoundError("trip")
	}

	slog.InfoContext(ctx, "trip deleted", "trip_id", tripID,
		"invitations", invitations, "bookings", bookings, "expenses", expenses)
	return nil
}

// InvitedAndAddedMembers lists the trip's members followed by its pending invitees
func (s *TripService) InvitedAndAddedMembers(ctx context.Context, tripID, userID string) ([]models.TripMember, error) {
	defer newrelic.FromContext(ctx).StartSegment("trip.InvitedAndAddedMembers").End()

	trip, err := requireTripMember(ctx, s.store, tripID, userID)
	if err != nil {
		return nil, err
	}
	invitations, err := s.store.FindInvitations(ctx, repository.InvitationFilter{TripID: tripID})
	if err != nil {
		return nil, err
	}

	ids := append([]string{}, trip.Members...)
	for _, inv := range invitations {
		ids = append(ids, inv.Invitee)
	}
	refs, err := loadUserRefs(ctx, s.store, ids)
	if err != nil {
		return nil, err
	}

	members := make([]models.TripMember, 0, len(ids))
	for _, id := range trip.Members {
		members = append(members, models.TripMember{UserRef: refs.get(id), UserType: utils.UserTypeMember})
	}
	for _, inv := range invitations {
		members = append(members, models.TripMember{UserRef: refs.get(inv.Invitee), UserType: utils.UserTypeInvited})
	}
	return members, nil
}

// SearchTripMembers matches trip members whose full name starts with prefix.
// Without a prefix the first few members are returned.
func (s *TripService) SearchTripMembers(ctx context.Context, tripID, userID, prefix string) ([]models.UserRef, error) {
	defer newrelic.FromContext(ctx).StartSegment("trip.SearchTripMembers").End()

	trip, err := requireTripMember(ctx, s.store, tripID, userID)
	if err != nil {
		return nil, err
	}
	refs, err := loadUserRefs(ctx, s.store, trip.Members)
	if err != nil {
		return nil, err
	}

	members := refs.list(trip.Members)
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		if len(members) > utils.DefaultMemberSearchLimit {
			members = members[:utils.DefaultMemberSearchLimit]
		}
		return members, nil
	}

	matches := []models.UserRef{}
	for _, member := range members {
		if utils.HasPrefixFold(member.FullName, prefix) {
			matches = append(matches, member)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return strings.ToLower(matches[i].FullName) < strings.ToLower(matches[j].FullName)
	})
	return matches, nil
}

// TripsCreatedBy lists the trips userID created
func (s *TripService) TripsCreatedBy(ctx context.Context, userID string) ([]*models.TripPlan, error) {
	return s.store.FindTrips(ctx, repository.TripFilter{CreatedBy: userID})
}

// TripsJoinedBy lists the trips userID is a member of but did not create
func (s *TripService) TripsJoinedBy(ctx context.Context, userID string) ([]*models.TripPlan, error) {
	trips, err := s.store.FindTrips(ctx, repository.TripFilter{MemberID: userID})
	if err != nil {
		return nil, err
	}
	joined := make([]*models.TripPlan, 0, len(trips))
	for _, trip := range trips {
		if trip.CreatedBy != userID {
			joined = append(joined, trip)
		}
	}
	return joined, nil
}
