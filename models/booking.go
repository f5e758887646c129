package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Booking type tags
const (
	BookingTypeHotel  = "hotel"
	BookingTypeTravel = "travel"
)

// BookingDetails is implemented by every booking variant
type BookingDetails interface {
	BookingType() string
}

// HotelDetails describes a hotel stay
type HotelDetails struct {
	HotelName string    `json:"hotelName"`
	CheckIn   time.Time `json:"checkInDate"`
	CheckOut  time.Time `json:"checkoutDate"`
	Location  string    `json:"location"`
}

func (HotelDetails) BookingType() string { return BookingTypeHotel }

// TravelDetails describes a leg of travel. Times use the "hh:mm AM" form.
type TravelDetails struct {
	TravelType    string    `json:"travelType"`
	Source        string    `json:"source"`
	Destination   string    `json:"destination"`
	DepartureDate time.Time `json:"departureDate"`
	DepartureTime string    `json:"departureTime"`
	ArrivalDate   time.Time `json:"arrivalDate"`
	ArrivalTime   string    `json:"arrivalTime"`
}

func (TravelDetails) BookingType() string { return BookingTypeTravel }

// Booking is a hotel or travel reservation attached to a trip
type Booking struct {
	ID        string         `json:"_id"`
	TripID    string         `json:"tripId"`
	Receipt   string         `json:"bookingReceipt"`
	Details   BookingDetails `json:"-"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Type returns the booking tag derived from its details
func (b *Booking) Type() string {
	if b.Details == nil {
		return ""
	}
	return b.Details.BookingType()
}

type bookingJSON struct {
	ID          string          `json:"_id"`
	TripID      string          `json:"tripId"`
	BookingType string          `json:"bookingType"`
	Receipt     string          `json:"bookingReceipt"`
	Details     json.RawMessage `json:"bookingDetails"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (b Booking) MarshalJSON() ([]byte, error) {
	details, err := json.Marshal(b.Details)
	if err != nil {
		return nil, err
	}
	return json.Marshal(bookingJSON{
		ID:          b.ID,
		TripID:      b.TripID,
		BookingType: b.Type(),
		Receipt:     b.Receipt,
		Details:     details,
		CreatedAt:   b.CreatedAt,
	})
}

func (b *Booking) UnmarshalJSON(data []byte) error {
	var raw bookingJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	details, err := DecodeBookingDetails(raw.BookingType, raw.Details)
	if err != nil {
		return err
	}
	*b = Booking{
		ID:        raw.ID,
		TripID:    raw.TripID,
		Receipt:   raw.Receipt,
		Details:   details,
		CreatedAt: raw.CreatedAt,
	}
	return nil
}

// DecodeBookingDetails picks the variant named by bookingType and decodes data into it
func DecodeBookingDetails(bookingType string, data []byte) (BookingDetails, error) {
	switch bookingType {
	case BookingTypeHotel:
		var hotel HotelDetails
		if err := json.Unmarshal(data, &hotel); err != nil {
			return nil, fmt.Errorf("invalid hotel details: %w", err)
		}
		return hotel, nil
	case BookingTypeTravel:
		var travel TravelDetails
		if err := json.Unmarshal(data, &travel); err != nil {
			return nil, fmt.Errorf("invalid travel details: %w", err)
		}
		return travel, nil
	default:
		return nil, fmt.Errorf("unknown booking type %q", bookingType)
	}
}
