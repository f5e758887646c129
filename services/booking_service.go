package services

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/fadhlanhapp/tripplanner-backend/models"
	"github.com/fadhlanhapp/tripplanner-backend/repository"
	"github.com/fadhlanhapp/tripplanner-backend/utils"
)

// clockTime matches 12-hour times such as "9:05 AM" or "12:30pm"
var clockTime = regexp.MustCompile(`^(0?[1-9]|1[0-2]):[0-5][0-9] ?([APap]\.?[Mm]\.?)$`)

type hotelDetailsInput struct {
	HotelName    string `json:"hotelName"`
	CheckInDate  string `json:"checkInDate"`
	CheckoutDate string `json:"checkoutDate"`
	Location     string `json:"location"`
}

type travelDetailsInput struct {
	TravelType    string `json:"travelType"`
	Source        string `json:"source"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departureDate"`
	DepartureTime string `json:"departureTime"`
	ArrivalDate   string `json:"arrivalDate"`
	ArrivalTime   string `json:"arrivalTime"`
}

// TripBookings is a trip with its bookings
type TripBookings struct {
	TripID   string            `json:"tripId"`
	TripName string            `json:"tripName"`
	TripDesc string            `json:"tripDesc"`
	Bookings []*models.Booking `json:"bookings"`
}

// BookingService records hotel and travel bookings for trips
type BookingService struct {
	bookings repository.BookingStore
	trips    repository.TripStore
	loc      *time.Location

	Now func() time.Time
}

// NewBookingService creates a new booking service
func NewBookingService(bookings repository.BookingStore, trips repository.TripStore, loc *time.Location) *BookingService {
	if loc == nil {
		loc = time.UTC
	}
	return &BookingService{
		bookings: bookings,
		trips:    trips,
		loc:      loc,
		Now:      time.Now,
	}
}

// AddBooking validates the details for the booking type and saves the booking
func (s *BookingService) AddBooking(ctx context.Context, userID string, req models.AddBookingRequest) (*models.Booking, error) {
	defer newrelic.FromContext(ctx).StartSegment("booking.AddBooking").End()

	if _, err := requireTripMember(ctx, s.trips, req.TripID, userID); err != nil {
		return nil, err
	}

	details, err := s.parseDetails(strings.ToLower(strings.TrimSpace(req.BookingType)), req.BookingDetails)
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		ID:        utils.GenerateID(),
		TripID:    req.TripID,
		Receipt:   strings.TrimSpace(req.BookingReceipt),
		Details:   details,
		CreatedAt: s.Now(),
	}
	if err := s.bookings.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// ListBookings returns a trip with all its bookings
func (s *BookingService) ListBookings(ctx context.Context, tripID, userID string) (*TripBookings, error) {
	defer newrelic.FromContext(ctx).StartSegment("booking.ListBookings").End()

	trip, err := requireTripMember(ctx, s.trips, tripID, userID)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookings.FindBookings(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return &TripBookings{
		TripID:   trip.ID,
		TripName: trip.Name,
		TripDesc: trip.Description,
		Bookings: bookings,
	}, nil
}

func (s *BookingService) parseDetails(bookingType string, raw json.RawMessage) (models.BookingDetails, error) {
	invalid := utils.NewValidationError("Invalid booking details")

	// Some clients send the details as a JSON encoded string
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		raw = json.RawMessage(encoded)
	}

	switch bookingType {
	case models.BookingTypeHotel:
		var in hotelDetailsInput
		if err := json.Unmarshal(raw, &in); err != nil {
			return nil, invalid
		}
		if strings.TrimSpace(in.HotelName) == "" || strings.TrimSpace(in.Location) == "" {
			return nil, invalid
		}
		checkIn, err1 := utils.ParseDate(in.CheckInDate, s.loc)
		checkOut, err2 := utils.ParseDate(in.CheckoutDate, s.loc)
		if err1 != nil || err2 != nil || checkOut.Before(checkIn) {
			return nil, invalid
		}
		return models.HotelDetails{
			HotelName: strings.TrimSpace(in.HotelName),
			CheckIn:   checkIn,
			CheckOut:  checkOut,
			Location:  strings.TrimSpace(in.Location),
		}, nil

	case models.BookingTypeTravel:
		var in travelDetailsInput
		if err := json.Unmarshal(raw, &in); err != nil {
			return nil, invalid
		}
		travelType := strings.ToLower(strings.TrimSpace(in.TravelType))
		if utils.ValidateOneOf(travelType, utils.TravelTypes, "travel type") != nil {
			return nil, invalid
		}
		if strings.TrimSpace(in.Source) == "" || strings.TrimSpace(in.Destination) == "" {
			return nil, invalid
		}
		departure, err1 := utils.ParseDate(in.DepartureDate, s.loc)
		arrival, err2 := utils.ParseDate(in.ArrivalDate, s.loc)
		if err1 != nil || err2 != nil || arrival.Before(departure) {
			return nil, invalid
		}
		if !clockTime.MatchString(strings.TrimSpace(in.DepartureTime)) || !clockTime.MatchString(strings.TrimSpace(in.ArrivalTime)) {
			return nil, utils.NewValidationError("Invalid Time Format")
		}
		return models.TravelDetails{
			TravelType:    travelType,
			Source:        strings.TrimSpace(in.Source),
			Destination:   strings.TrimSpace(in.Destination),
			DepartureDate: departure,
			DepartureTime: strings.TrimSpace(in.DepartureTime),
			ArrivalDate:   arrival,
			ArrivalTime:   strings.TrimSpace(in.ArrivalTime),
		}, nil

	default:
		return nil, utils.NewValidationError("booking type must be hotel or travel")
	}
}
