package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// CategoryTotal is the amount a user paid in one category during one year
type CategoryTotal struct {
	Year        int             `json:"year"`
	Category    string          `json:"category"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// MonthTotal is the amount a user paid during one calendar month
type MonthTotal struct {
	Year        int             `json:"year"`
	Month       string          `json:"month"`
	MonthNumber int             `json:"monthNumber"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// ContributionEntry is the total a member paid for a trip
type ContributionEntry struct {
	User      UserRef         `json:"user"`
	TotalPaid decimal.Decimal `json:"totalPaid"`
}

// OwedEntry is an amount owed between the caller and a counterparty
type OwedEntry struct {
	User   UserRef         `json:"user"`
	Amount decimal.Decimal `json:"amount"`
}

// MemberBalance is a member's paid minus owed position in a trip
type MemberBalance struct {
	User    UserRef         `json:"user"`
	Paid    decimal.Decimal `json:"paid"`
	Owed    decimal.Decimal `json:"owed"`
	Balance decimal.Decimal `json:"balance"`
}

// NetSettlement represents a payment from one member to another
type NetSettlement struct {
	From   UserRef         `json:"from"`
	To     UserRef         `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// SettlementResult represents the result of calculating settlements
type SettlementResult struct {
	Balances    []MemberBalance `json:"balances"`
	Settlements []NetSettlement `json:"settlements"`
}

// TripSummary is the overview of a single trip
type TripSummary struct {
	TripID        string              `json:"tripId"`
	Name          string              `json:"tripName"`
	Description   string              `json:"tripDesc"`
	PlacesToVisit []string            `json:"placesToVisit"`
	TotalMembers  int                 `json:"totalMembers"`
	PlannedBudget decimal.NullDecimal `json:"plannedBudget"`
	TotalDays     int                 `json:"totalDays"`
	TotalNights   int                 `json:"totalNights"`
	TotalExpenses decimal.Decimal     `json:"totalExpenses"`
}

// TripCard is the dashboard view of a trip
type TripCard struct {
	TripID        string              `json:"tripId"`
	Name          string              `json:"tripName"`
	Description   string              `json:"tripDesc"`
	CoverImage    string              `json:"coverImage"`
	StartDate     time.Time           `json:"startDate"`
	EndDate       time.Time           `json:"endDate"`
	TotalDays     int                 `json:"totalDays"`
	TotalNights   int                 `json:"totalNights"`
	TotalMembers  int                 `json:"totalMembers"`
	PlannedBudget decimal.NullDecimal `json:"plannedBudget"`
	PlacesToVisit []string            `json:"placesToVisit"`
}

// Dashboard groups the trips a user is involved in
type Dashboard struct {
	UpcomingTrip *TripCard  `json:"upcomingTrip"`
	CreatedTrips []TripCard `json:"createdTrips"`
	JoinedTrips  []TripCard `json:"joinedTrips"`
}

// MarshalJSON writes a missing upcoming trip as an empty list, which clients already expect.
func (d Dashboard) MarshalJSON() ([]byte, error) {
	var upcoming interface{} = []TripCard{}
	if d.UpcomingTrip != nil {
		upcoming = d.UpcomingTrip
	}
	created := d.CreatedTrips
	if created == nil {
		created = []TripCard{}
	}
	joined := d.JoinedTrips
	if joined == nil {
		joined = []TripCard{}
	}
	return json.Marshal(struct {
		UpcomingTrip interface{} `json:"upcomingTrip"`
		CreatedTrips []TripCard  `json:"createdTrips"`
		JoinedTrips  []TripCard  `json:"joinedTrips"`
	}{upcoming, created, joined})
}

// ExpenseView is an expense with its people resolved to display fields
type ExpenseView struct {
	ID           string          `json:"_id"`
	Category     string          `json:"category"`
	Description  string          `json:"description"`
	PaidTo       string          `json:"paidTo"`
	Amount       decimal.Decimal `json:"amount"`
	PaidBy       UserRef         `json:"paidBy"`
	PaymentDate  time.Time       `json:"paymentDate"`
	SplitBetween []UserRef       `json:"splitBetween"`
}

// TripExpenseSummary is the spending overview of a trip
type TripExpenseSummary struct {
	TripID         string              `json:"tripId"`
	TotalExpenses  decimal.Decimal     `json:"totalExpenses"`
	PlannedBudget  decimal.NullDecimal `json:"plannedBudget"`
	RecentExpenses []ExpenseView       `json:"recentExpenses"`
}

// MemberTripSummary is a trip summary with its members resolved
type MemberTripSummary struct {
	TripSummary
	Members []UserRef `json:"tripMembers"`
}

// TripMember is a member or pending invitee of a trip
type TripMember struct {
	UserRef
	UserType string `json:"userType"`
}
