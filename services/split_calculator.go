package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fadhlanhapp/tripplanner-backend/models"
	"github.com/fadhlanhapp/tripplanner-backend/utils"
)

// ErrInvalidExpense is the cause of a computation error for an expense nobody shares
var ErrInvalidExpense = errors.New("expense has no split members")

// ShareOf returns the even share each split member owes for an expense.
// The result is unrounded; callers round once after summing.
func ShareOf(expense *models.Expense) (decimal.Decimal, error) {
	n := len(expense.SplitBetween)
	if n == 0 {
		return decimal.Zero, utils.NewComputationError("failed to split expense",
			fmt.Errorf("%w: %s", ErrInvalidExpense, expense.ID))
	}
	return expense.Amount.Div(decimal.NewFromInt(int64(n))), nil
}

// Shares maps every split member of an expense to their share
func Shares(expense *models.Expense) (map[string]decimal.Decimal, error) {
	share, err := ShareOf(expense)
	if err != nil {
		return nil, err
	}
	shares := make(map[string]decimal.Decimal, len(expense.SplitBetween))
	for _, member := range expense.SplitBetween {
		shares[member] = shares[member].Add(share)
	}
	return shares, nil
}
