package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/fadhlanhapp/tripplanner-backend/models"
	"github.com/fadhlanhapp/tripplanner-backend/utils"
)

// AddBooking records a hotel or travel booking
func (h *Handler) AddBooking(c *gin.Context) {
	var request models.AddBookingRequest
	if !bindJSON(c, &request) {
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	booking, err := h.svc.Bookings.AddBooking(ctx, userID(c), request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleCreated(c, booking)
}

// ListBookings returns a trip with its bookings
func (h *Handler) ListBookings(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	bookings, err := h.svc.Bookings.ListBookings(ctx, c.Param("tripId"), userID(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, bookings)
}
