// repository/expense_repository.go
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/fadhlanhapp/tripplanner-backend/models"
)

// ExpenseRepository handles database operations for expenses
type ExpenseRepository struct {
	DB *sql.DB
}

// NewExpenseRepository creates a new ExpenseRepository
func NewExpenseRepository(db *sql.DB) *ExpenseRepository {
	return &ExpenseRepository{DB: db}
}

// CreateExpense saves an expense and its split members
func (r *ExpenseRepository) CreateExpense(ctx context.Context, expense *models.Expense) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses
         (id, trip_id, category, description, paid_to, amount, paid_by, payment_date, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		expense.ID, expense.TripID, expense.Category, expense.Description, expense.PaidTo,
		expense.Amount, expense.PaidBy, expense.PaymentDate, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i, participant := range expense.SplitBetween {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_participants (expense_id, user_id, position) VALUES ($1, $2, $3)",
			expense.ID, participant, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense participant: %w", err)
		}
	}

	return tx.Commit()
}

// FindExpenses retrieves the expenses matching filter, oldest payment first unless NewestFirst is set
func (r *ExpenseRepository) FindExpenses(ctx context.Context, filter ExpenseFilter) ([]*models.Expense, error) {
	var where whereBuilder
	if filter.TripID != "" {
		where.add("e.trip_id = $%d", filter.TripID)
	}
	if filter.PaidBy != "" {
		where.add("e.paid_by = $%d", filter.PaidBy)
	}
	if filter.Participant != "" {
		where.add("EXISTS (SELECT 1 FROM expense_participants p WHERE p.expense_id = e.id AND p.user_id = $%d)", filter.Participant)
	}

	query := `SELECT e.id, e.trip_id, e.category, e.description, e.paid_to, e.amount,
          e.paid_by, e.payment_date, e.created_at
         FROM expenses e` + where.clause()
	if filter.NewestFirst {
		query += " ORDER BY e.payment_date DESC, e.created_at DESC, e.id"
	} else {
		query += " ORDER BY e.payment_date ASC, e.created_at ASC, e.id"
	}
	if filter.Limit > 0 {
		query += " LIMIT " + where.placeholder(filter.Limit)
	}

	rows, err := r.DB.QueryContext(ctx, query, where.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get expenses: %w", err)
	}
	defer rows.Close()

	expenses := []*models.Expense{}
	byID := map[string]*models.Expense{}
	var ids []string
	for rows.Next() {
		var expense models.Expense
		err = rows.Scan(
			&expense.ID, &expense.TripID, &expense.Category, &expense.Description, &expense.PaidTo,
			&expense.Amount, &expense.PaidBy, &expense.PaymentDate, &expense.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expense.SplitBetween = []string{}
		expenses = append(expenses, &expense)
		byID[expense.ID] = &expense
		ids = append(ids, expense.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read expenses: %w", err)
	}
	if len(ids) == 0 {
		return expenses, nil
	}

	// Load all split members in one round trip
	pRows, err := r.DB.QueryContext(ctx,
		`SELECT expense_id, user_id FROM expense_participants
         WHERE expense_id = ANY($1) ORDER BY expense_id, position`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense participants: %w", err)
	}
	defer pRows.Close()

	for pRows.Next() {
		var expenseID, userID string
		if err := pRows.Scan(&expenseID, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		if expense, ok := byID[expenseID]; ok {
			expense.SplitBetween = append(expense.SplitBetween, userID)
		}
	}
	if err := pRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read expense participants: %w", err)
	}

	return expenses, nil
}

// DeleteExpensesByTrip removes every expense of a trip
func (r *ExpenseRepository) DeleteExpensesByTrip(ctx context.Context, tripID string) (int64, error) {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM expenses WHERE trip_id = $1", tripID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expenses: %w", err)
	}
	return result.RowsAffected()
}
