package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadhlanhapp/tripplanner-backend/models"
	"github.com/fadhlanhapp/tripplanner-backend/utils"
)

func TestBookingService_HotelAndTravel(t *testing.T) {
	s := newTestServices(t, "asha")
	seedTrip(t, s.store, "goa", "asha", day(2024, time.July, 1), day(2024, time.July, 3))
	ctx := context.Background()

	hotel, err := s.bookings.AddBooking(ctx, "asha", models.AddBookingRequest{
		TripID:         "goa",
		BookingType:    "Hotel",
		BookingReceipt: "https://example.com/r1.png",
		BookingDetails: json.RawMessage(`{"hotelName":"Sea View","checkInDate":"2024-07-01","checkoutDate":"2024-07-03","location":"Calangute"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, models.BookingTypeHotel, hotel.Type())

	// details sent as an encoded string
	encoded, err := json.Marshal(`{"travelType":"Flight","source":"BOM","destination":"GOI","departureDate":"2024-07-01","departureTime":"9:05 AM","arrivalDate":"2024-07-01","arrivalTime":"10:15 am"}`)
	require.NoError(t, err)
	travel, err := s.bookings.AddBooking(ctx, "asha", models.AddBookingRequest{
		TripID:         "goa",
		BookingType:    "travel",
		BookingDetails: encoded,
	})
	require.NoError(t, err)
	details, ok := travel.Details.(models.TravelDetails)
	require.True(t, ok)
	assert.Equal(t, "flight", details.TravelType)

	listed, err := s.bookings.ListBookings(ctx, "goa", "asha")
	require.NoError(t, err)
	assert.Equal(t, "Trip goa", listed.TripName)
	assert.Len(t, listed.Bookings, 2)
}

func TestBookingService_InvalidDetails(t *testing.T) {
	s := newTestServices(t, "asha")
	seedTrip(t, s.store, "goa", "asha", day(2024, time.July, 1), day(2024, time.July, 3))

	tests := []struct {
		name        string
		bookingType string
		details     string
	}{
		{"unknown type", "cruise", `{}`},
		{"hotel missing name", "hotel", `{"checkInDate":"2024-07-01","checkoutDate":"2024-07-03","location":"x"}`},
		{"checkout before checkin", "hotel", `{"hotelName":"h","checkInDate":"2024-07-03","checkoutDate":"2024-07-01","location":"x"}`},
		{"unknown travel type", "travel", `{"travelType":"rocket","source":"a","destination":"b","departureDate":"2024-07-01","departureTime":"9:00 AM","arrivalDate":"2024-07-01","arrivalTime":"10:00 AM"}`},
		{"24h clock", "travel", `{"travelType":"train","source":"a","destination":"b","departureDate":"2024-07-01","departureTime":"21:00","arrivalDate":"2024-07-02","arrivalTime":"10:00 AM"}`},
		{"not json", "hotel", `"nope"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.bookings.AddBooking(context.Background(), "asha", models.AddBookingRequest{
				TripID:         "goa",
				BookingType:    tt.bookingType,
				BookingDetails: json.RawMessage(tt.details),
			})
			assert.True(t, utils.IsValidation(err), "got %v", err)
		})
	}
}

func TestBookingService_RequiresMembership(t *testing.T) {
	s := newTestServices(t, "asha", "ben")
	seedTrip(t, s.store, "goa", "asha", day(2024, time.July, 1), day(2024, time.July, 3))

	_, err := s.bookings.ListBookings(context.Background(), "goa", "ben")
	assert.True(t, utils.IsForbidden(err))
}
