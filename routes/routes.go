package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fadhlanhapp/tripplanner-backend/handlers"
	"github.com/fadhlanhapp/tripplanner-backend/middleware"
)

// SetupRoutes configures all API routes for the application. metrics may be
// nil, in which case /metrics is not served.
func SetupRoutes(router *gin.Engine, h *handlers.Handler, metrics http.Handler) {
	v1 := router.Group("/api/v1")

	// Public endpoints
	v1.GET("/health", h.Health)
	if metrics != nil {
		v1.GET("/metrics", gin.WrapH(metrics))
	}
	v1.POST("/users/register", h.Register)
	v1.POST("/users/login", h.Login)
	v1.POST("/users/refresh-token", h.RefreshToken)

	secured := v1.Group("")
	secured.Use(middleware.RequireAuth(h.Services().Auth))

	// User endpoints
	users := secured.Group("/users")
	{
		users.POST("/logout", h.Logout)
		users.GET("/me", h.CurrentUser)
		users.GET("/search", h.SearchUsers)
		users.GET("/trips/created", h.TripsCreated)
		users.GET("/trips/joined", h.TripsJoined)
		users.GET("/invitations", h.Invitations)
		users.POST("/invitations/:inviteId/accept", h.AcceptInvitation)
		users.POST("/invitations/:inviteId/decline", h.DeclineInvitation)
	}

	// Trip endpoints
	trips := secured.Group("/trips")
	{
		trips.POST("", h.CreateTrip)
		trips.GET("/dashboard", h.Dashboard)
		trips.GET("/expense-summary", h.ExpenseSummaryForUser)
		trips.POST("/invite", h.Invite)
		trips.GET("/:tripId", h.GetTrip)
		trips.PATCH("/:tripId", h.UpdateTrip)
		trips.DELETE("/:tripId", h.DeleteTrip)
		trips.POST("/:tripId/itineraries", h.AddItinerary)
		trips.GET("/:tripId/summary", h.TripSummary)
		trips.GET("/:tripId/expense-summary", h.TripExpenseSummary)
		trips.GET("/:tripId/members", h.Members)
		trips.GET("/:tripId/members/search", h.SearchMembers)
		trips.POST("/:tripId/members/:memberId/remove", h.RemoveMember)
		trips.GET("/:tripId/export.xlsx", h.ExportTripWorkbook)
		trips.GET("/:tripId/summary.pdf", h.ExportTripSummaryPDF)
	}

	// Expense endpoints
	expenses := secured.Group("/expenses")
	{
		expenses.GET("/reports/categories", h.CategoryReport)
		expenses.GET("/reports/monthly", h.MonthlyReport)
		expenses.POST("/:tripId", h.AddExpense)
		expenses.GET("/:tripId", h.ListExpenses)
		expenses.GET("/:tripId/contributions", h.Contributions)
		expenses.GET("/:tripId/owed-to-me", h.OwedToMe)
		expenses.GET("/:tripId/owed-by-me", h.OwedByMe)
		expenses.GET("/:tripId/settlements", h.Settlements)
	}

	// Booking endpoints
	bookings := secured.Group("/bookings")
	{
		bookings.POST("", h.AddBooking)
		bookings.GET("/:tripId", h.ListBookings)
	}
}
