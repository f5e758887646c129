package services

import (
	"context"
	"sort"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/shopspring/decimal"

	"github.com/fadhlanhapp/tripplanner-backend/models"
	"github.com/fadhlanhapp/tripplanner-backend/repository"
	"github.com/fadhlanhapp/tripplanner-backend/utils"
)

// ExpenseAggregator folds expenses into totals by trip, category, month and payer
type ExpenseAggregator struct {
	expenses repository.ExpenseStore
	users    repository.UserStore
	loc      *time.Location
}

// NewExpenseAggregator creates a new expense aggregator. Calendar buckets use loc.
func NewExpenseAggregator(expenses repository.ExpenseStore, users repository.UserStore, loc *time.Location) *ExpenseAggregator {
	if loc == nil {
		loc = time.UTC
	}
	return &ExpenseAggregator{
		expenses: expenses,
		users:    users,
		loc:      loc,
	}
}

// TotalForTrip sums every expense of a trip
func (a *ExpenseAggregator) TotalForTrip(ctx context.Context, tripID string) (decimal.Decimal, error) {
	defer newrelic.FromContext(ctx).StartSegment("aggregator.TotalForTrip").End()

	expenses, err := a.expenses.FindExpenses(ctx, repository.ExpenseFilter{TripID: tripID})
	if err != nil {
		return decimal.Zero, err
	}
	return sumAmounts(expenses), nil
}

// ByCategoryByYear totals the expenses userID paid per year and category
func (a *ExpenseAggregator) ByCategoryByYear(ctx context.Context, userID string) ([]models.CategoryTotal, error) {
	defer newrelic.FromContext(ctx).StartSegment("aggregator.ByCategoryByYear").End()

	expenses, err := a.expenses.FindExpenses(ctx, repository.ExpenseFilter{PaidBy: userID})
	if err != nil {
		return nil, err
	}
	return groupByCategoryYear(expenses, a.loc), nil
}

// ByMonthByYear totals the expenses userID paid per calendar month
func (a *ExpenseAggregator) ByMonthByYear(ctx context.Context, userID string) ([]models.MonthTotal, error) {
	defer newrelic.FromContext(ctx).StartSegment("aggregator.ByMonthByYear").End()

	expenses, err := a.expenses.FindExpenses(ctx, repository.ExpenseFilter{PaidBy: userID})
	if err != nil {
		return nil, err
	}
	return groupByMonthYear(expenses, a.loc), nil
}

// ContributionsByUser totals what each payer put into a trip, largest first
func (a *ExpenseAggregator) ContributionsByUser(ctx context.Context, tripID string) ([]models.ContributionEntry, error) {
	defer newrelic.FromContext(ctx).StartSegment("aggregator.ContributionsByUser").End()

	expenses, err := a.expenses.FindExpenses(ctx, repository.ExpenseFilter{TripID: tripID})
	if err != nil {
		return nil, err
	}

	totals := groupByPayer(expenses)
	payers := make([]string, 0, len(totals))
	for payer := range totals {
		payers = append(payers, payer)
	}
	refs, err := loadUserRefs(ctx, a.users, payers)
	if err != nil {
		return nil, err
	}

	entries := make([]models.ContributionEntry, 0, len(totals))
	for payer, total := range totals {
		entries = append(entries, models.ContributionEntry{
			User:      refs.get(payer),
			TotalPaid: utils.RoundMoney(total),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if c := entries[i].TotalPaid.Cmp(entries[j].TotalPaid); c != 0 {
			return c > 0
		}
		return entries[i].User.ID < entries[j].User.ID
	})
	return entries, nil
}

func sumAmounts(expenses []*models.Expense) decimal.Decimal {
	amounts := make([]decimal.Decimal, 0, len(expenses))
	for _, expense := range expenses {
		amounts = append(amounts, expense.Amount)
	}
	return utils.RoundMoney(utils.SumMoney(amounts...))
}

type categoryKey struct {
	year     int
	category string
}

func groupByCategoryYear(expenses []*models.Expense, loc *time.Location) []models.CategoryTotal {
	totals := map[categoryKey]decimal.Decimal{}
	for _, expense := range expenses {
		key := categoryKey{year: expense.PaymentDate.In(loc).Year(), category: expense.Category}
		totals[key] = totals[key].Add(expense.Amount)
	}

	result := make([]models.CategoryTotal, 0, len(totals))
	for key, total := range totals {
		result = append(result, models.CategoryTotal{
			Year:        key.year,
			Category:    key.category,
			TotalAmount: utils.RoundMoney(total),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Year != result[j].Year {
			return result[i].Year < result[j].Year
		}
		return result[i].Category < result[j].Category
	})
	return result
}

type monthKey struct {
	year  int
	month time.Month
}

func groupByMonthYear(expenses []*models.Expense, loc *time.Location) []models.MonthTotal {
	totals := map[monthKey]decimal.Decimal{}
	for _, expense := range expenses {
		local := expense.PaymentDate.In(loc)
		key := monthKey{year: local.Year(), month: local.Month()}
		totals[key] = totals[key].Add(expense.Amount)
	}

	result := make([]models.MonthTotal, 0, len(totals))
	for key, total := range totals {
		result = append(result, models.MonthTotal{
			Year:        key.year,
			Month:       key.month.String(),
			MonthNumber: int(key.month),
			TotalAmount: utils.RoundMoney(total),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Year != result[j].Year {
			return result[i].Year < result[j].Year
		}
		return result[i].MonthNumber < result[j].MonthNumber
	})
	return result
}

// groupByPayer sums amounts per payer, skipping expenses without one
func groupByPayer(expenses []*models.Expense) map[string]decimal.Decimal {
	totals := map[string]decimal.Decimal{}
	for _, expense := range expenses {
		if expense.PaidBy == "" {
			continue
		}
		totals[expense.PaidBy] = totals[expense.PaidBy].Add(expense.Amount)
	}
	return totals
}
