package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/fadhlanhapp/tripplanner-backend/auth"
	"github.com/fadhlanhapp/tripplanner-backend/middleware"
	"github.com/fadhlanhapp/tripplanner-backend/repository"
	"github.com/fadhlanhapp/tripplanner-backend/services"
	"github.com/fadhlanhapp/tripplanner-backend/utils"
)

// HandlerServices contains all service dependencies
type HandlerServices struct {
	Auth        *services.AuthService
	Trips       *services.TripService
	Invitations *services.InvitationService
	Expenses    *services.ExpenseService
	Aggregator  *services.ExpenseAggregator
	Settlements *services.SettlementService
	Summary     *services.TripSummaryBuilder
	Bookings    *services.BookingService
	Exports     *services.ExportService
}

// NewHandlerServices wires every service onto one store. Calendar dates and
// reports use loc.
func NewHandlerServices(store repository.LedgerStore, tokens *auth.TokenManager, loc *time.Location) *HandlerServices {
	invitations := services.NewInvitationService(store, store, store)
	aggregator := services.NewExpenseAggregator(store, store, loc)
	return &HandlerServices{
		Auth:        services.NewAuthService(store, tokens),
		Trips:       services.NewTripService(store, invitations, loc),
		Invitations: invitations,
		Expenses:    services.NewExpenseService(store, store, loc),
		Aggregator:  aggregator,
		Settlements: services.NewSettlementService(store, store, store),
		Summary:     services.NewTripSummaryBuilder(store, store, store, aggregator),
		Bookings:    services.NewBookingService(store, store, loc),
		Exports:     services.NewExportService(store, store, store, loc),
	}
}

// Handler serves the HTTP API
type Handler struct {
	svc            *HandlerServices
	requestTimeout time.Duration
	ping           func(context.Context) error
}

// NewHandler creates a handler. Each request's context is bounded by
// requestTimeout when it is positive; ping backs the health check.
func NewHandler(svc *HandlerServices, requestTimeout time.Duration, ping func(context.Context) error) *Handler {
	return &Handler{svc: svc, requestTimeout: requestTimeout, ping: ping}
}

// Services exposes the wired services, e.g. for the auth middleware
func (h *Handler) Services() *HandlerServices {
	return h.svc
}

// requestContext carries the New Relic transaction and the request deadline into services
func (h *Handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	ctx := c.Request.Context()
	if txn := nrgin.Transaction(c); txn != nil {
		ctx = newrelic.NewContext(ctx, txn)
	}
	if h.requestTimeout > 0 {
		return context.WithTimeout(ctx, h.requestTimeout)
	}
	return context.WithCancel(ctx)
}

// bindJSON decodes the body into req, answering 400 on failure
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.HandleError(c, utils.NewBadRequestError(utils.ErrInvalidRequest))
		return false
	}
	return true
}

// Health reports whether the store is reachable
func (h *Handler) Health(c *gin.Context) {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func userID(c *gin.Context) string {
	return middleware.UserID(c)
}

func searchParameter(c *gin.Context) string {
	if q := c.Query("searchParameter"); q != "" {
		return q
	}
	return c.Query("q")
}
