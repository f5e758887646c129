// repository/booking_repository.go
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/fadhlanhapp/tripplanner-backend/models"
)

// BookingRepository handles database operations for bookings
type BookingRepository struct {
	DB *sql.DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{DB: db}
}

// CreateBooking saves a booking with its details as JSON
func (r *BookingRepository) CreateBooking(ctx context.Context, booking *models.Booking) error {
	details, err := json.Marshal(booking.Details)
	if err != nil {
		return fmt.Errorf("failed to encode booking details: %w", err)
	}

	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO bookings (id, trip_id, booking_type, receipt, details, created_at)
         VALUES ($1, $2, $3, $4, $5, $6)`,
		booking.ID, booking.TripID, booking.Type(), booking.Receipt, details, booking.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

// FindBookings retrieves the bookings of a trip, oldest first
func (r *BookingRepository) FindBookings(ctx context.Context, tripID string) ([]*models.Booking, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, trip_id, booking_type, receipt, details, created_at
         FROM bookings WHERE trip_id = $1 ORDER BY created_at, id`,
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}
	defer rows.Close()

	bookings := []*models.Booking{}
	for rows.Next() {
		var booking models.Booking
		var bookingType string
		var details []byte
		if err := rows.Scan(&booking.ID, &booking.TripID, &bookingType, &booking.Receipt, &details, &booking.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		booking.Details, err = models.DecodeBookingDetails(bookingType, details)
		if err != nil {
			return nil, fmt.Errorf("failed to decode booking %s: %w", booking.ID, err)
		}
		bookings = append(bookings, &booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bookings: %w", err)
	}
	return bookings, nil
}

// DeleteBookingsByTrip removes every booking of a trip
func (r *BookingRepository) DeleteBookingsByTrip(ctx context.Context, tripID string) (int64, error) {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM bookings WHERE trip_id = $1", tripID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete bookings: %w", err)
	}
	return result.RowsAffected()
}
