package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/fadhlanhapp/tripplanner-backend/models"
	"github.com/fadhlanhapp/tripplanner-backend/repository"
	"github.com/fadhlanhapp/tripplanner-backend/utils"
)

// categoryAliases maps spellings older clients send to the stored category
var categoryAliases = map[string]string{
	"accomodation": utils.CategoryAccommodation,
	"others":       utils.CategoryOther,
}

// NormalizeCategory lowercases a category and resolves known aliases
func NormalizeCategory(category string) string {
	category = strings.ToLower(strings.TrimSpace(category))
	if canonical, ok := categoryAliases[category]; ok {
		return canonical
	}
	return category
}

// ExpenseService records and lists trip expenses
type ExpenseService struct {
	expenses repository.ExpenseStore
	trips    repository.TripStore
	loc      *time.Location

	Now func() time.Time
}

// NewExpenseService creates a new expense service. Payment dates are read in loc.
func NewExpenseService(expenses repository.ExpenseStore, trips repository.TripStore, loc *time.Location) *ExpenseService {
	if loc == nil {
		loc = time.UTC
	}
	return &ExpenseService{
		expenses: expenses,
		trips:    trips,
		loc:      loc,
		Now:      time.Now,
	}
}

// AddExpense validates and records an expense for tripID on behalf of userID.
// The payer defaults to the caller; payer and split members must be trip members.
func (s *ExpenseService) AddExpense(ctx context.Context, tripID, userID string, req models.AddExpenseRequest) (*models.Expense, error) {
	defer newrelic.FromContext(ctx).StartSegment("expense.AddExpense").End()

	trip, err := requireTripMember(ctx, s.trips, tripID, userID)
	if err != nil {
		return nil, err
	}

	expense, err := s.buildExpense(trip, userID, req)
	if err != nil {
		return nil, err
	}

	if err := s.expenses.CreateExpense(ctx, expense); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "expense added", "trip_id", tripID, "expense_id", expense.ID, "amount", expense.Amount.String())
	return expense, nil
}

func (s *ExpenseService) buildExpense(trip *models.TripPlan, userID string, req models.AddExpenseRequest) (*models.Expense, error) {
	category := NormalizeCategory(req.Category)
	if err := utils.ValidateOneOf(category, utils.ExpenseCategories, "category"); err != nil {
		return nil, err
	}
	if err := utils.ValidateRequired(req.Description, "description"); err != nil {
		return nil, err
	}
	if err := utils.ValidateRequired(req.PaidTo, "paid to"); err != nil {
		return nil, err
	}
	if err := utils.ValidatePositive(req.Amount, "amount"); err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.PaymentDate) == "" {
		return nil, utils.NewValidationError("Payment Date is required")
	}
	paymentDate, err := utils.ParseDate(req.PaymentDate, s.loc)
	if err != nil {
		return nil, utils.NewValidationError("Payment Date is invalid")
	}
	if paymentDate.After(utils.EndOfDay(s.Now(), s.loc)) {
		return nil, utils.NewValidationError("Payment Date cannot be in the future")
	}

	splitBetween := utils.UniqueIDs(req.SplitBetween)
	if len(splitBetween) == 0 {
		return nil, utils.NewValidationError("Split between must be a non-empty list of user IDs")
	}

	paidBy := strings.TrimSpace(req.PaidBy)
	if paidBy == "" {
		paidBy = userID
	}
	if !trip.HasMember(paidBy) {
		return nil, utils.NewValidationError("Payer must be a trip member")
	}
	for _, member := range splitBetween {
		if !trip.HasMember(member) {
			return nil, utils.NewValidationError(fmt.Sprintf("User %s is not a member of this trip", member))
		}
	}

	return &models.Expense{
		ID:           utils.GenerateID(),
		TripID:       trip.ID,
		Category:     category,
		Description:  strings.TrimSpace(req.Description),
		PaidTo:       strings.TrimSpace(req.PaidTo),
		Amount:       req.Amount,
		PaidBy:       paidBy,
		PaymentDate:  paymentDate,
		SplitBetween: splitBetween,
		CreatedAt:    s.Now(),
	}, nil
}

// ListTripExpenses returns every expense of a trip, newest payment first
func (s *ExpenseService) ListTripExpenses(ctx context.Context, tripID string) ([]*models.Expense, error) {
	defer newrelic.FromContext(ctx).StartSegment("expense.ListTripExpenses").End()

	return s.expenses.FindExpenses(ctx, repository.ExpenseFilter{TripID: tripID, NewestFirst: true})
}
