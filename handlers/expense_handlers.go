// handlers/expense_handlers.go
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/fadhlanhapp/tripplanner-backend/models"
	"github.com/fadhlanhapp/tripplanner-backend/utils"
)

// AddExpense records an expense on a trip
func (h *Handler) AddExpense(c *gin.Context) {
	var request models.AddExpenseRequest
	if !bindJSON(c, &request) {
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	expense, err := h.svc.Expenses.AddExpense(ctx, c.Param("tripId"), userID(c), request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleCreated(c, expense)
}

// tripRead runs read for a trip the caller belongs to and writes its result
func (h *Handler) tripRead(c *gin.Context, read func(ctx context.Context, tripID string) (any, error)) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	tripID := c.Param("tripId")
	if err := h.svc.Trips.RequireMember(ctx, tripID, userID(c)); err != nil {
		utils.HandleError(c, err)
		return
	}
	result, err := read(ctx, tripID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, result)
}

// ListExpenses lists a trip's expenses, newest first
func (h *Handler) ListExpenses(c *gin.Context) {
	h.tripRead(c, func(ctx context.Context, tripID string) (any, error) {
		return h.svc.Expenses.ListTripExpenses(ctx, tripID)
	})
}

// Contributions totals what each member paid
func (h *Handler) Contributions(c *gin.Context) {
	h.tripRead(c, func(ctx context.Context, tripID string) (any, error) {
		return h.svc.Aggregator.ContributionsByUser(ctx, tripID)
	})
}

// OwedToMe lists what other members owe the caller
func (h *Handler) OwedToMe(c *gin.Context) {
	h.tripRead(c, func(ctx context.Context, tripID string) (any, error) {
		return h.svc.Settlements.AmountOwedToUser(ctx, tripID, userID(c))
	})
}

// OwedByMe lists what the caller owes other members
func (h *Handler) OwedByMe(c *gin.Context) {
	h.tripRead(c, func(ctx context.Context, tripID string) (any, error) {
		return h.svc.Settlements.AmountOwedByUser(ctx, tripID, userID(c))
	})
}

// Settlements proposes the transfers that settle a trip
func (h *Handler) Settlements(c *gin.Context) {
	h.tripRead(c, func(ctx context.Context, tripID string) (any, error) {
		return h.svc.Settlements.SuggestSettlements(ctx, tripID)
	})
}

// CategoryReport totals the caller's payments per year and category
func (h *Handler) CategoryReport(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	totals, err := h.svc.Aggregator.ByCategoryByYear(ctx, userID(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, totals)
}

// MonthlyReport totals the caller's payments per month
func (h *Handler) MonthlyReport(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	totals, err := h.svc.Aggregator.ByMonthByYear(ctx, userID(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, totals)
}
