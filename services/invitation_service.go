package services

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"golang.org/x/sync/errgroup"

	"github.com/fadhlanhapp/tripplanner-backend/models"
	"github.com/fadhlanhapp/tripplanner-backend/repository"
	"github.com/fadhlanhapp/tripplanner-backend/utils"
)

// fanOutLimit bounds concurrent invitation writes for one request
const fanOutLimit = 8

// InvitationService handles the pending, accepted and declined lifecycle of trip invitations
type InvitationService struct {
	invitations repository.InvitationStore
	trips       repository.TripStore
	users       repository.UserStore

	Now func() time.Time
}

// NewInvitationService creates a new invitation service
func NewInvitationService(invitations repository.InvitationStore, trips repository.TripStore, users repository.UserStore) *InvitationService {
	return &InvitationService{
		invitations: invitations,
		trips:       trips,
		users:       users,
		Now:         time.Now,
	}
}

// InvitationView is an invitation with its trip and inviter resolved
type InvitationView struct {
	ID        string         `json:"_id"`
	TripID    string         `json:"tripId"`
	TripName  string         `json:"tripName"`
	Inviter   models.UserRef `json:"inviter"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Invite sends invitations for tripID from inviterID. Members and the inviter
// are skipped; each remaining invitee is attempted independently.
func (s *InvitationService) Invite(ctx context.Context, tripID, inviterID string, invitees []string) (*models.InviteResponse, error) {
	defer newrelic.FromContext(ctx).StartSegment("invitation.Invite").End()

	trip, err := requireTripMember(ctx, s.trips, tripID, inviterID)
	if err != nil {
		return nil, err
	}

	invitees = utils.UniqueIDs(invitees)
	if err := utils.ValidateNotEmpty(invitees, "invitees"); err != nil {
		return nil, err
	}

	pending := make([]string, 0, len(invitees))
	for _, invitee := range invitees {
		if invitee != inviterID && !trip.HasMember(invitee) {
			pending = append(pending, invitee)
		}
	}

	sent, failed, firstErr := s.fanOut(ctx, trip.ID, inviterID, pending)
	if len(pending) == 1 && firstErr != nil {
		return nil, firstErr
	}
	return &models.InviteResponse{InvitationsSent: sent, InvitationsFailed: failed}, nil
}

// fanOut creates one invitation per invitee concurrently. Failures are logged
// and counted; nothing already created is rolled back.
func (s *InvitationService) fanOut(ctx context.Context, tripID, inviterID string, invitees []string) (sent, failed int, firstErr error) {
	if len(invitees) == 0 {
		return 0, 0, nil
	}

	known, err := loadUserRefs(ctx, s.users, invitees)
	if err != nil {
		slog.WarnContext(ctx, "failed to resolve invitees", "trip_id", tripID, "error", err)
		return 0, len(invitees), err
	}

	var (
		ok, bad atomic.Int64
		errOnce sync.Once
		g       errgroup.Group
	)
	record := func(err error) {
		bad.Add(1)
		errOnce.Do(func() { firstErr = err })
	}

	g.SetLimit(fanOutLimit)
	for _, invitee := range invitees {
		if _, exists := known[invitee]; !exists {
			record(utils.NewNotFoundError("user"))
			continue
		}
		invitee := invitee
		g.Go(func() error {
			err := s.invitations.CreateInvitation(ctx, &models.Invitation{
				ID:        utils.GenerateID(),
				TripID:    tripID,
				Inviter:   inviterID,
				Invitee:   invitee,
				CreatedAt: s.Now(),
			})
			if err != nil {
				slog.WarnContext(ctx, "failed to send invitation", "trip_id", tripID, "invitee", invitee, "error", err)
				record(err)
				return nil
			}
			ok.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	return int(ok.Load()), int(bad.Load()), firstErr
}

// Accept adds userID to the invitation's trip and removes the invitation.
// Accepting twice is a not found error because the invitation is gone.
func (s *InvitationService) Accept(ctx context.Context, invitationID, userID string) (*models.TripPlan, error) {
	defer newrelic.FromContext(ctx).StartSegment("invitation.Accept").End()

	inv, err := s.invitations.FindInvitation(ctx, invitationID)
	if err != nil {
		return nil, err
	}
	if inv.Invitee != userID {
		return nil, utils.NewForbiddenError("Only the invited user can accept this invitation")
	}

	accepted, err := s.invitations.AcceptInvitation(ctx, invitationID)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "invitation accepted", "invitation_id", invitationID, "trip_id", accepted.TripID, "user_id", userID)
	return s.trips.FindTrip(ctx, accepted.TripID)
}

// Decline removes the invitation without touching trip membership
func (s *InvitationService) Decline(ctx context.Context, invitationID, userID string) error {
	defer newrelic.FromContext(ctx).StartSegment("invitation.Decline").End()

	inv, err := s.invitations.FindInvitation(ctx, invitationID)
	if err != nil {
		return err
	}
	if inv.Invitee != userID {
		return utils.NewForbiddenError("Only the invited user can decline this invitation")
	}

	deleted, err := s.invitations.DeleteInvitation(ctx, invitationID)
	if err != nil {
		return err
	}
	if !deleted {
		return utils.NewNotFoundError("invitation")
	}
	return nil
}

// ForUser lists the invitations waiting for userID
func (s *InvitationService) ForUser(ctx context.Context, userID string) ([]InvitationView, error) {
	defer newrelic.FromContext(ctx).StartSegment("invitation.ForUser").End()

	invitations, err := s.invitations.FindInvitations(ctx, repository.InvitationFilter{Invitee: userID})
	if err != nil {
		return nil, err
	}

	inviters := make([]string, 0, len(invitations))
	for _, inv := range invitations {
		inviters = append(inviters, inv.Inviter)
	}
	refs, err := loadUserRefs(ctx, s.users, inviters)
	if err != nil {
		return nil, err
	}

	views := make([]InvitationView, 0, len(invitations))
	for _, inv := range invitations {
		trip, err := s.trips.FindTrip(ctx, inv.TripID)
		if utils.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		views = append(views, InvitationView{
			ID:        inv.ID,
			TripID:    inv.TripID,
			TripName:  trip.Name,
			Inviter:   refs.get(inv.Inviter),
			CreatedAt: inv.CreatedAt,
		})
	}
	return views, nil
}
