// handlers/trip_handlers.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/fadhlanhapp/tripplanner-backend/models"
	"github.com/fadhlanhapp/tripplanner-backend/utils"
)

// CreateTrip handles the creation of a new trip
func (h *Handler) CreateTrip(c *gin.Context) {
	var request models.CreateTripRequest
	if !bindJSON(c, &request) {
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	resp, err := h.svc.Trips.CreateTrip(ctx, userID(c), request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleCreated(c, resp)
}

// Dashboard returns the caller's upcoming, created and joined trips
func (h *Handler) Dashboard(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	dashboard, err := h.svc.Summary.Dashboard(ctx, userID(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, dashboard)
}

// ExpenseSummaryForUser summarizes every trip of the caller
func (h *Handler) ExpenseSummaryForUser(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	summaries, err := h.svc.Summary.ExpenseSummaryForUser(ctx, userID(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, summaries)
}

// GetTrip returns one trip
func (h *Handler) GetTrip(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	trip, err := h.svc.Trips.GetTrip(ctx, c.Param("tripId"), userID(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, trip)
}

// UpdateTrip patches a trip's own fields
func (h *Handler) UpdateTrip(c *gin.Context) {
	var request models.UpdateTripRequest
	if !bindJSON(c, &request) {
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	trip, err := h.svc.Trips.UpdateTrip(ctx, c.Param("tripId"), userID(c), request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, trip)
}

// DeleteTrip removes a trip with its expenses, bookings and invitations
func (h *Handler) DeleteTrip(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := h.svc.Trips.DeleteTrip(ctx, c.Param("tripId"), userID(c)); err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, gin.H{"message": "Trip deleted"})
}

// AddItinerary appends an itinerary item
func (h *Handler) AddItinerary(c *gin.Context) {
	var request models.ItineraryItemRequest
	if !bindJSON(c, &request) {
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	trip, err := h.svc.Trips.AddItineraryItem(ctx, c.Param("tripId"), userID(c), request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleCreated(c, trip)
}

// TripSummary returns the trip overview with its expense total
func (h *Handler) TripSummary(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	tripID := c.Param("tripId")
	if err := h.svc.Trips.RequireMember(ctx, tripID, userID(c)); err != nil {
		utils.HandleError(c, err)
		return
	}
	summary, err := h.svc.Summary.TripSummary(ctx, tripID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, summary)
}

// TripExpenseSummary returns the total, budget and recent expenses of a trip
func (h *Handler) TripExpenseSummary(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	tripID := c.Param("tripId")
	if err := h.svc.Trips.RequireMember(ctx, tripID, userID(c)); err != nil {
		utils.HandleError(c, err)
		return
	}
	summary, err := h.svc.Summary.TripExpenseSummary(ctx, tripID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, summary)
}

// Invite sends trip invitations
func (h *Handler) Invite(c *gin.Context) {
	var request models.InviteRequest
	if !bindJSON(c, &request) {
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	resp, err := h.svc.Invitations.Invite(ctx, request.TripID, userID(c), request.Invitees)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, resp)
}

// RemoveMember removes a member from a trip
func (h *Handler) RemoveMember(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	trip, err := h.svc.Trips.RemoveMember(ctx, c.Param("tripId"), userID(c), c.Param("memberId"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, trip)
}

// Members lists members and pending invitees
func (h *Handler) Members(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	members, err := h.svc.Trips.InvitedAndAddedMembers(ctx, c.Param("tripId"), userID(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, members)
}

// SearchMembers matches trip members by name prefix
func (h *Handler) SearchMembers(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	members, err := h.svc.Trips.SearchTripMembers(ctx, c.Param("tripId"), userID(c), searchParameter(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, members)
}
