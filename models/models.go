// models/models.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is an account that can own, join and spend on trips
type User struct {
	ID           string    `json:"_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	Avatar       string    `json:"avatar"`
	PasswordHash string    `json:"-"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Ref returns the display fields used when enriching aggregates
func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, FullName: u.FullName, Avatar: u.Avatar}
}

// UserRef is the display projection of a user
type UserRef struct {
	ID       string `json:"_id"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}

// ItineraryItem is one planned stop of a trip
type ItineraryItem struct {
	Date         time.Time `json:"date"`
	PlaceToVisit string    `json:"placeToVisit"`
	Checklist    []string  `json:"checklist"`
	Notes        string    `json:"notes"`
}

// TripPlan represents a group trip and its members
type TripPlan struct {
	ID            string              `json:"_id"`
	Name          string              `json:"tripName"`
	Description   string              `json:"tripDesc"`
	Notes         string              `json:"notes"`
	CoverImage    string              `json:"coverImage"`
	StartDate     time.Time           `json:"startDate"`
	EndDate       time.Time           `json:"endDate"`
	Itinerary     []ItineraryItem     `json:"itinerary"`
	Members       []string            `json:"tripMembers"`
	PlannedBudget decimal.NullDecimal `json:"plannedBudget"`
	CreatedBy     string              `json:"createdBy"`
	CreatedAt     time.Time           `json:"createdAt"`
}

// HasMember reports whether userID belongs to the trip
func (t *TripPlan) HasMember(userID string) bool {
	for _, member := range t.Members {
		if member == userID {
			return true
		}
	}
	return false
}

// Expense represents a shared expense of a trip
type Expense struct {
	ID           string          `json:"_id"`
	TripID       string          `json:"tripId"`
	Category     string          `json:"category"`
	Description  string          `json:"description"`
	PaidTo       string          `json:"paidTo"`
	Amount       decimal.Decimal `json:"amount"`
	PaidBy       string          `json:"paidBy"`
	PaymentDate  time.Time       `json:"paymentDate"`
	SplitBetween []string        `json:"splitBetween"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Invitation is a pending request for a user to join a trip
type Invitation struct {
	ID        string    `json:"_id"`
	TripID    string    `json:"tripId"`
	Inviter   string    `json:"inviter"`
	Invitee   string    `json:"invitee"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewTrip creates a new TripPlan with the creator as its first member
func NewTrip(id, createdBy string, now time.Time) *TripPlan {
	return &TripPlan{
		ID:        id,
		CreatedBy: createdBy,
		Members:   []string{createdBy},
		Itinerary: []ItineraryItem{},
		CreatedAt: now,
	}
}
