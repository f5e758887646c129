package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadhlanhapp/tripplanner-backend/repository"
	"github.com/fadhlanhapp/tripplanner-backend/utils"
)

func newInvitationFixture(t *testing.T) *testServices {
	s := newTestServices(t, "asha", "ben", "chen")
	seedTrip(t, s.store, "goa", "asha", day(2024, time.July, 1), day(2024, time.July, 3))
	return s
}

func pendingFor(t *testing.T, s *testServices, invitee string) string {
	t.Helper()
	invitations, err := s.store.FindInvitations(context.Background(), repository.InvitationFilter{Invitee: invitee})
	require.NoError(t, err)
	require.Len(t, invitations, 1)
	return invitations[0].ID
}

func TestInvitationService_AcceptAddsMember(t *testing.T) {
	s := newInvitationFixture(t)
	ctx := context.Background()

	resp, err := s.invitations.Invite(ctx, "goa", "asha", []string{"ben"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.InvitationsSent)

	trip, err := s.invitations.Accept(ctx, pendingFor(t, s, "ben"), "ben")
	require.NoError(t, err)
	assert.Equal(t, []string{"asha", "ben"}, trip.Members)
}

func TestInvitationService_AcceptTwiceIsNotFound(t *testing.T) {
	s := newInvitationFixture(t)
	ctx := context.Background()
	_, err := s.invitations.Invite(ctx, "goa", "asha", []string{"ben"})
	require.NoError(t, err)
	id := pendingFor(t, s, "ben")

	_, err = s.invitations.Accept(ctx, id, "ben")
	require.NoError(t, err)

	_, err = s.invitations.Accept(ctx, id, "ben")
	assert.True(t, utils.IsNotFound(err))

	trip, err := s.store.FindTrip(ctx, "goa")
	require.NoError(t, err)
	assert.Equal(t, []string{"asha", "ben"}, trip.Members)
}

func TestInvitationService_OnlyInviteeMayRespond(t *testing.T) {
	s := newInvitationFixture(t)
	ctx := context.Background()
	_, err := s.invitations.Invite(ctx, "goa", "asha", []string{"ben"})
	require.NoError(t, err)
	id := pendingFor(t, s, "ben")

	_, err = s.invitations.Accept(ctx, id, "chen")
	assert.True(t, utils.IsForbidden(err))
	assert.True(t, utils.IsForbidden(s.invitations.Decline(ctx, id, "chen")))
}

func TestInvitationService_Decline(t *testing.T) {
	s := newInvitationFixture(t)
	ctx := context.Background()
	_, err := s.invitations.Invite(ctx, "goa", "asha", []string{"ben"})
	require.NoError(t, err)
	id := pendingFor(t, s, "ben")

	require.NoError(t, s.invitations.Decline(ctx, id, "ben"))
	assert.True(t, utils.IsNotFound(s.invitations.Decline(ctx, id, "ben")))

	trip, err := s.store.FindTrip(ctx, "goa")
	require.NoError(t, err)
	assert.Equal(t, []string{"asha"}, trip.Members)
}

func TestInvitationService_InviteRules(t *testing.T) {
	s := newInvitationFixture(t)
	ctx := context.Background()

	_, err := s.invitations.Invite(ctx, "goa", "ben", []string{"chen"})
	assert.True(t, utils.IsForbidden(err), "non-members cannot invite")

	_, err = s.invitations.Invite(ctx, "goa", "asha", nil)
	assert.True(t, utils.IsValidation(err))

	_, err = s.invitations.Invite(ctx, "goa", "asha", []string{"ben"})
	require.NoError(t, err)
	_, err = s.invitations.Invite(ctx, "goa", "asha", []string{"ben"})
	assert.True(t, utils.IsConflict(err), "duplicate single invitation")

	_, err = s.invitations.Invite(ctx, "goa", "asha", []string{"ghost"})
	assert.True(t, utils.IsNotFound(err))

	resp, err := s.invitations.Invite(ctx, "goa", "asha", []string{"asha", "ben", "chen", "ghost"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.InvitationsSent)
	assert.Equal(t, 2, resp.InvitationsFailed)
}

func TestInvitationService_ForUser(t *testing.T) {
	s := newInvitationFixture(t)
	seedTrip(t, s.store, "kochi", "chen", day(2024, time.August, 1), day(2024, time.August, 3))
	ctx := context.Background()

	_, err := s.invitations.Invite(ctx, "goa", "asha", []string{"ben"})
	require.NoError(t, err)
	_, err = s.invitations.Invite(ctx, "kochi", "chen", []string{"ben"})
	require.NoError(t, err)

	views, err := s.invitations.ForUser(ctx, "ben")
	require.NoError(t, err)
	require.Len(t, views, 2)

	byTrip := map[string]InvitationView{}
	for _, v := range views {
		byTrip[v.TripID] = v
	}
	assert.Equal(t, "Trip goa", byTrip["goa"].TripName)
	assert.Equal(t, "Asha", byTrip["goa"].Inviter.FullName)
	assert.Equal(t, "Chen", byTrip["kochi"].Inviter.FullName)

	none, err := s.invitations.ForUser(ctx, "asha")
	require.NoError(t, err)
	assert.Empty(t, none)
}
