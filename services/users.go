package services

import (
	"context"

	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/fadhlanhapp/tripplanner-backend/models"
	"github.com/fadhlanhapp/tripplanner-backend/repository"
	"github.com/fadhlanhapp/tripplanner-backend/utils"
)

// userRefs resolves display fields for ids in one store call.
// Users that no longer exist map to a ref carrying only the id.
type userRefs map[string]models.UserRef

func loadUserRefs(ctx context.Context, users repository.UserStore, ids []string) (userRefs, error) {
	defer newrelic.FromContext(ctx).StartSegment("users.loadRefs").End()

	ids = utils.UniqueIDs(ids)
	refs := make(userRefs, len(ids))
	if len(ids) == 0 {
		return refs, nil
	}
	found, err := users.FindUsers(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, user := range found {
		refs[user.ID] = user.Ref()
	}
	return refs, nil
}

func (r userRefs) get(id string) models.UserRef {
	if ref, ok := r[id]; ok {
		return ref
	}
	return models.UserRef{ID: id}
}

func (r userRefs) list(ids []string) []models.UserRef {
	out := make([]models.UserRef, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.get(id))
	}
	return out
}

// requireTripMember loads a trip and checks that userID belongs to it
func requireTripMember(ctx context.Context, trips repository.TripStore, tripID, userID string) (*models.TripPlan, error) {
	trip, err := trips.FindTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if !trip.HasMember(userID) {
		return nil, utils.NewForbiddenError(utils.ErrNotTripMember)
	}
	return trip, nil
}

// requireTripCreator loads a trip and checks that userID created it
func requireTripCreator(ctx context.Context, trips repository.TripStore, tripID, userID string) (*models.TripPlan, error) {
	trip, err := trips.FindTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.CreatedBy != userID {
		return nil, utils.NewForbiddenError(utils.ErrCreatorOnly)
	}
	return trip, nil
}
