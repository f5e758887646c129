package services

import (
	"context"
	"sort"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/shopspring/decimal"

	"github.com/fadhlanhapp/tripplanner-backend/models"
	"github.com/fadhlanhapp/tripplanner-backend/repository"
	"github.com/fadhlanhapp/tripplanner-backend/utils"
)

// SettlementService handles who-owes-whom calculations for a trip
type SettlementService struct {
	expenses repository.ExpenseStore
	trips    repository.TripStore
	users    repository.UserStore
}

// NewSettlementService creates a new settlement service
func NewSettlementService(expenses repository.ExpenseStore, trips repository.TripStore, users repository.UserStore) *SettlementService {
	return &SettlementService{
		expenses: expenses,
		trips:    trips,
		users:    users,
	}
}

// AmountOwedToUser lists what every other split member owes userID for the
// trip expenses userID paid. The payer's own share is absorbed.
func (s *SettlementService) AmountOwedToUser(ctx context.Context, tripID, userID string) ([]models.OwedEntry, error) {
	defer newrelic.FromContext(ctx).StartSegment("settlement.AmountOwedToUser").End()

	expenses, err := s.expenses.FindExpenses(ctx, repository.ExpenseFilter{TripID: tripID, PaidBy: userID})
	if err != nil {
		return nil, err
	}

	owed, err := owedToPayer(expenses, userID)
	if err != nil {
		return nil, err
	}
	return s.toEntries(ctx, owed)
}

// AmountOwedByUser lists what userID owes each payer for the trip expenses
// userID shares but someone else paid.
func (s *SettlementService) AmountOwedByUser(ctx context.Context, tripID, userID string) ([]models.OwedEntry, error) {
	defer newrelic.FromContext(ctx).StartSegment("settlement.AmountOwedByUser").End()

	expenses, err := s.expenses.FindExpenses(ctx, repository.ExpenseFilter{TripID: tripID, Participant: userID})
	if err != nil {
		return nil, err
	}

	owed, err := owedByMember(expenses, userID)
	if err != nil {
		return nil, err
	}
	return s.toEntries(ctx, owed)
}

func owedToPayer(expenses []*models.Expense, payer string) (map[string]decimal.Decimal, error) {
	owed := map[string]decimal.Decimal{}
	for _, expense := range expenses {
		if expense.PaidBy != payer {
			continue
		}
		share, err := ShareOf(expense)
		if err != nil {
			return nil, err
		}
		for _, member := range expense.SplitBetween {
			if member == payer {
				continue
			}
			owed[member] = owed[member].Add(share)
		}
	}
	return owed, nil
}

func owedByMember(expenses []*models.Expense, member string) (map[string]decimal.Decimal, error) {
	owed := map[string]decimal.Decimal{}
	for _, expense := range expenses {
		if expense.PaidBy == member || expense.PaidBy == "" || !utils.ContainsID(expense.SplitBetween, member) {
			continue
		}
		share, err := ShareOf(expense)
		if err != nil {
			return nil, err
		}
		owed[expense.PaidBy] = owed[expense.PaidBy].Add(share)
	}
	return owed, nil
}

// toEntries enriches counterparties with display fields, ordered by id
func (s *SettlementService) toEntries(ctx context.Context, owed map[string]decimal.Decimal) ([]models.OwedEntry, error) {
	ids := make([]string, 0, len(owed))
	for id := range owed {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	refs, err := loadUserRefs(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}

	entries := make([]models.OwedEntry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, models.OwedEntry{
			User:   refs.get(id),
			Amount: utils.RoundMoney(owed[id]),
		})
	}
	return entries, nil
}

// SuggestSettlements nets every member's paid and owed amounts and proposes
// the transfers that settle the trip, largest creditor with largest debtor first.
func (s *SettlementService) SuggestSettlements(ctx context.Context, tripID string) (*models.SettlementResult, error) {
	defer newrelic.FromContext(ctx).StartSegment("settlement.SuggestSettlements").End()

	trip, err := s.trips.FindTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenses.FindExpenses(ctx, repository.ExpenseFilter{TripID: tripID})
	if err != nil {
		return nil, err
	}

	ledger, err := calculateBalances(expenses, trip.Members)
	if err != nil {
		return nil, err
	}

	people := make([]string, 0, len(ledger))
	for person := range ledger {
		people = append(people, person)
	}
	sort.Strings(people)

	refs, err := loadUserRefs(ctx, s.users, people)
	if err != nil {
		return nil, err
	}

	balances := make(map[string]decimal.Decimal, len(ledger))
	result := &models.SettlementResult{
		Balances:    make([]models.MemberBalance, 0, len(people)),
		Settlements: []models.NetSettlement{},
	}
	for _, person := range people {
		entry := ledger[person]
		balance := utils.RoundMoney(entry.paid.Sub(entry.owed))
		balances[person] = balance
		result.Balances = append(result.Balances, models.MemberBalance{
			User:    refs.get(person),
			Paid:    utils.RoundMoney(entry.paid),
			Owed:    utils.RoundMoney(entry.owed),
			Balance: balance,
		})
	}

	for _, transfer := range calculateOptimalSettlements(balances) {
		result.Settlements = append(result.Settlements, models.NetSettlement{
			From:   refs.get(transfer.from),
			To:     refs.get(transfer.to),
			Amount: transfer.amount,
		})
	}
	return result, nil
}

type paidOwed struct {
	paid decimal.Decimal
	owed decimal.Decimal
}

// calculateBalances calculates how much each person has paid and owes.
// Every listed member gets an entry even without expenses.
func calculateBalances(expenses []*models.Expense, members []string) (map[string]*paidOwed, error) {
	ledger := map[string]*paidOwed{}
	entry := func(person string) *paidOwed {
		if _, ok := ledger[person]; !ok {
			ledger[person] = &paidOwed{}
		}
		return ledger[person]
	}
	for _, member := range members {
		entry(member)
	}

	for _, expense := range expenses {
		share, err := ShareOf(expense)
		if err != nil {
			return nil, err
		}
		if expense.PaidBy != "" {
			payer := entry(expense.PaidBy)
			payer.paid = payer.paid.Add(expense.Amount)
		}
		for _, member := range expense.SplitBetween {
			debtor := entry(member)
			debtor.owed = debtor.owed.Add(share)
		}
	}
	return ledger, nil
}

// personBalance is one side of the greedy pairing; debts are stored positive
type personBalance struct {
	Person  string
	Balance decimal.Decimal
}

type transfer struct {
	from   string
	to     string
	amount decimal.Decimal
}

// calculateOptimalSettlements calculates the optimal settlements
func calculateOptimalSettlements(balances map[string]decimal.Decimal) []transfer {
	creditors := extractCreditors(balances)
	debtors := extractDebtors(balances)

	sortByBalance(creditors)
	sortByBalance(debtors)

	return generateSettlements(creditors, debtors)
}

// extractCreditors extracts people who are owed money
func extractCreditors(balances map[string]decimal.Decimal) []personBalance {
	var creditors []personBalance
	for person, balance := range balances {
		if balance.IsPositive() {
			creditors = append(creditors, personBalance{Person: person, Balance: balance})
		}
	}
	return creditors
}

// extractDebtors extracts people who owe money, with the debt stored as positive
func extractDebtors(balances map[string]decimal.Decimal) []personBalance {
	var debtors []personBalance
	for person, balance := range balances {
		if balance.IsNegative() {
			debtors = append(debtors, personBalance{Person: person, Balance: balance.Neg()})
		}
	}
	return debtors
}

// sortByBalance sorts by balance descending, then by person for stable output
func sortByBalance(slice []personBalance) {
	sort.Slice(slice, func(i, j int) bool {
		if c := slice[i].Balance.Cmp(slice[j].Balance); c != 0 {
			return c > 0
		}
		return slice[i].Person < slice[j].Person
	})
}

// generateSettlements creates the actual settlement transactions
func generateSettlements(creditors, debtors []personBalance) []transfer {
	var transfers []transfer

	i, j := 0, 0
	for i < len(creditors) && j < len(debtors) {
		amount := utils.RoundMoney(utils.MinMoney(creditors[i].Balance, debtors[j].Balance))

		if amount.IsPositive() {
			transfers = append(transfers, transfer{
				from:   debtors[j].Person,
				to:     creditors[i].Person,
				amount: amount,
			})
		}

		creditors[i].Balance = creditors[i].Balance.Sub(amount)
		debtors[j].Balance = debtors[j].Balance.Sub(amount)

		// Move to next creditor/debtor if balance is settled
		if utils.RoundMoney(creditors[i].Balance).IsZero() {
			i++
		}
		if utils.RoundMoney(debtors[j].Balance).IsZero() {
			j++
		}
	}

	return transfers
}
