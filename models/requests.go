package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// RegisterRequest request model
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"fullName" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Avatar   string `json:"avatar"`
}

// LoginRequest request model; either username or email identifies the user
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest request model
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// AuthResponse response model
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// ItineraryItemRequest request model
type ItineraryItemRequest struct {
	Date         string   `json:"date" binding:"required"`
	PlaceToVisit string   `json:"placeToVisit" binding:"required"`
	Checklist    []string `json:"checklist"`
	Notes        string   `json:"notes"`
}

// CreateTripRequest request model
type CreateTripRequest struct {
	TripName      string                 `json:"tripName" binding:"required"`
	TripDesc      string                 `json:"tripDesc" binding:"required"`
	Notes         string                 `json:"notes"`
	CoverImage    string                 `json:"coverImage"`
	StartDate     string                 `json:"startDate" binding:"required"`
	EndDate       string                 `json:"endDate" binding:"required"`
	TripMembers   []string               `json:"tripMembers"`
	PlannedBudget *decimal.Decimal       `json:"plannedBudget"`
	Itinerary     []ItineraryItemRequest `json:"itinerary"`
}

// CreateTripResponse response model
type CreateTripResponse struct {
	Trip              *TripPlan `json:"trip"`
	InvitationsSent   int       `json:"invitationsSent"`
	InvitationsFailed int       `json:"invitationsFailed"`
}

// UpdateTripRequest request model; nil fields are left unchanged
type UpdateTripRequest struct {
	TripName      *string          `json:"tripName"`
	TripDesc      *string          `json:"tripDesc"`
	Notes         *string          `json:"notes"`
	CoverImage    *string          `json:"coverImage"`
	StartDate     *string          `json:"startDate"`
	EndDate       *string          `json:"endDate"`
	PlannedBudget *decimal.Decimal `json:"plannedBudget"`
}

// InviteRequest request model
type InviteRequest struct {
	TripID   string   `json:"tripId" binding:"required"`
	Invitees []string `json:"invitees" binding:"required,min=1"`
}

// InviteResponse response model
type InviteResponse struct {
	InvitationsSent   int `json:"invitationsSent"`
	InvitationsFailed int `json:"invitationsFailed"`
}

// AddExpenseRequest request model
type AddExpenseRequest struct {
	Category     string          `json:"category" binding:"required"`
	Description  string          `json:"description" binding:"required"`
	PaidTo       string          `json:"paidTo" binding:"required"`
	Amount       decimal.Decimal `json:"amount"`
	PaidBy       string          `json:"paidBy"`
	PaymentDate  string          `json:"paymentDate" binding:"required"`
	SplitBetween []string        `json:"splitBetween"`
}

// AddBookingRequest request model
type AddBookingRequest struct {
	TripID         string          `json:"tripId" binding:"required"`
	BookingType    string          `json:"bookingType" binding:"required"`
	BookingReceipt string          `json:"bookingReceipt"`
	BookingDetails json.RawMessage `json:"bookingDetails" binding:"required"`
}
