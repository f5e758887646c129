package services

import (
	"context"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/fadhlanhapp/tripplanner-backend/models"
	"github.com/fadhlanhapp/tripplanner-backend/repository"
	"github.com/fadhlanhapp/tripplanner-backend/utils"
)

// TotalDays is the number of calendar days (UTC) from a trip's start to its end
func TotalDays(trip *models.TripPlan) int {
	return utils.CalendarDaysBetween(trip.StartDate, trip.EndDate)
}

// TotalNights is TotalDays minus one, so a same-day trip has -1 nights
func TotalNights(trip *models.TripPlan) int {
	return TotalDays(trip) - 1
}

// PlacesToVisit lists the itinerary places in order
func PlacesToVisit(trip *models.TripPlan) []string {
	places := make([]string, 0, len(trip.Itinerary))
	for _, item := range trip.Itinerary {
		places = append(places, item.PlaceToVisit)
	}
	return places
}

// TotalMembers counts the trip's members
func TotalMembers(trip *models.TripPlan) int {
	return len(trip.Members)
}

// TripSummaryBuilder combines trip metadata with expense totals
type TripSummaryBuilder struct {
	trips      repository.TripStore
	expenses   repository.ExpenseStore
	users      repository.UserStore
	aggregator *ExpenseAggregator

	// Now is the clock used to pick the upcoming trip
	Now func() time.Time
}

// NewTripSummaryBuilder creates a new trip summary builder
func NewTripSummaryBuilder(trips repository.TripStore, expenses repository.ExpenseStore, users repository.UserStore, aggregator *ExpenseAggregator) *TripSummaryBuilder {
	return &TripSummaryBuilder{
		trips:      trips,
		expenses:   expenses,
		users:      users,
		aggregator: aggregator,
		Now:        time.Now,
	}
}

func summarize(trip *models.TripPlan, total decimal.Decimal) *models.TripSummary {
	return &models.TripSummary{
		TripID:        trip.ID,
		Name:          trip.Name,
		Description:   trip.Description,
		PlacesToVisit: PlacesToVisit(trip),
		TotalMembers:  TotalMembers(trip),
		PlannedBudget: trip.PlannedBudget,
		TotalDays:     TotalDays(trip),
		TotalNights:   TotalNights(trip),
		TotalExpenses: total,
	}
}

func card(trip *models.TripPlan) models.TripCard {
	return models.TripCard{
		TripID:        trip.ID,
		Name:          trip.Name,
		Description:   trip.Description,
		CoverImage:    trip.CoverImage,
		StartDate:     trip.StartDate,
		EndDate:       trip.EndDate,
		TotalDays:     TotalDays(trip),
		TotalNights:   TotalNights(trip),
		TotalMembers:  TotalMembers(trip),
		PlannedBudget: trip.PlannedBudget,
		PlacesToVisit: PlacesToVisit(trip),
	}
}

// TripSummary builds the overview of one trip; a trip without expenses totals 0
func (b *TripSummaryBuilder) TripSummary(ctx context.Context, tripID string) (*models.TripSummary, error) {
	defer newrelic.FromContext(ctx).StartSegment("summary.TripSummary").End()

	trip, err := b.trips.FindTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	total, err := b.aggregator.TotalForTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return summarize(trip, total), nil
}

// Dashboard splits the user's trips into the next upcoming trip, trips they
// created and trips they joined as a non-creator member.
func (b *TripSummaryBuilder) Dashboard(ctx context.Context, userID string) (*models.Dashboard, error) {
	defer newrelic.FromContext(ctx).StartSegment("summary.Dashboard").End()

	trips, err := b.trips.FindTrips(ctx, repository.TripFilter{MemberID: userID})
	if err != nil {
		return nil, err
	}
	return buildDashboard(trips, userID, b.Now()), nil
}

func buildDashboard(trips []*models.TripPlan, userID string, now time.Time) *models.Dashboard {
	dashboard := &models.Dashboard{
		CreatedTrips: []models.TripCard{},
		JoinedTrips:  []models.TripCard{},
	}

	var upcoming *models.TripPlan
	for _, trip := range trips {
		if !trip.HasMember(userID) {
			continue
		}
		if trip.CreatedBy == userID {
			dashboard.CreatedTrips = append(dashboard.CreatedTrips, card(trip))
		} else {
			dashboard.JoinedTrips = append(dashboard.JoinedTrips, card(trip))
		}
		if trip.StartDate.Before(now) {
			continue
		}
		if upcoming == nil || trip.StartDate.Before(upcoming.StartDate) ||
			(trip.StartDate.Equal(upcoming.StartDate) && trip.ID < upcoming.ID) {
			upcoming = trip
		}
	}

	if upcoming != nil {
		c := card(upcoming)
		dashboard.UpcomingTrip = &c
	}
	return dashboard
}

// TripExpenseSummary reports the trip total, its budget and the five most
// recent expenses. The three reads run concurrently.
func (b *TripSummaryBuilder) TripExpenseSummary(ctx context.Context, tripID string) (*models.TripExpenseSummary, error) {
	defer newrelic.FromContext(ctx).StartSegment("summary.TripExpenseSummary").End()

	var (
		total  decimal.Decimal
		trip   *models.TripPlan
		recent []*models.Expense
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = b.aggregator.TotalForTrip(gctx, tripID)
		return err
	})
	g.Go(func() error {
		var err error
		trip, err = b.trips.FindTrip(gctx, tripID)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = b.expenses.FindExpenses(gctx, repository.ExpenseFilter{
			TripID:      tripID,
			Limit:       utils.RecentExpenseLimit,
			NewestFirst: true,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	views, err := b.expenseViews(ctx, recent)
	if err != nil {
		return nil, err
	}

	return &models.TripExpenseSummary{
		TripID:         trip.ID,
		TotalExpenses:  total,
		PlannedBudget:  trip.PlannedBudget,
		RecentExpenses: views,
	}, nil
}

// ExpenseSummaryForUser summarizes every trip userID is a member of, with members resolved
func (b *TripSummaryBuilder) ExpenseSummaryForUser(ctx context.Context, userID string) ([]models.MemberTripSummary, error) {
	defer newrelic.FromContext(ctx).StartSegment("summary.ExpenseSummaryForUser").End()

	trips, err := b.trips.FindTrips(ctx, repository.TripFilter{MemberID: userID})
	if err != nil {
		return nil, err
	}

	var memberIDs []string
	for _, trip := range trips {
		memberIDs = append(memberIDs, trip.Members...)
	}
	refs, err := loadUserRefs(ctx, b.users, memberIDs)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.MemberTripSummary, 0, len(trips))
	for _, trip := range trips {
		total, err := b.aggregator.TotalForTrip(ctx, trip.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, models.MemberTripSummary{
			TripSummary: *summarize(trip, total),
			Members:     refs.list(trip.Members),
		})
	}
	return summaries, nil
}

// expenseViews resolves payer and split members of expenses to display fields
func (b *TripSummaryBuilder) expenseViews(ctx context.Context, expenses []*models.Expense) ([]models.ExpenseView, error) {
	var ids []string
	for _, expense := range expenses {
		ids = append(ids, expense.PaidBy)
		ids = append(ids, expense.SplitBetween...)
	}
	refs, err := loadUserRefs(ctx, b.users, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.ExpenseView, 0, len(expenses))
	for _, expense := range expenses {
		views = append(views, models.ExpenseView{
			ID:           expense.ID,
			Category:     expense.Category,
			Description:  expense.Description,
			PaidTo:       expense.PaidTo,
			Amount:       utils.RoundMoney(expense.Amount),
			PaidBy:       refs.get(expense.PaidBy),
			PaymentDate:  expense.PaymentDate,
			SplitBetween: refs.list(expense.SplitBetween),
		})
	}
	return views, nil
}
