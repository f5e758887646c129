// repository/trip_repository.go
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/fadhlanhapp/tripplanner-backend/models"
	"github.com/fadhlanhapp/tripplanner-backend/utils"
)

// TripRepository handles database operations for trips
type TripRepository struct {
	DB *sql.DB
}

// NewTripRepository creates a new TripRepository
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{DB: db}
}

const tripColumns = `t.id, t.name, t.description, t.notes, t.cover_image, t.start_date, t.end_date,
          t.planned_budget, t.created_by, t.created_at`

// CreateTrip saves a trip with its members and itinerary
func (r *TripRepository) CreateTrip(ctx context.Context, trip *models.TripPlan) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO trips
         (id, name, description, notes, cover_image, start_date, end_date, planned_budget, created_by, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		trip.ID, trip.Name, trip.Description, trip.Notes, trip.CoverImage, trip.StartDate,
		trip.EndDate, trip.PlannedBudget, trip.CreatedBy, trip.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert trip: %w", err)
	}

	for _, member := range trip.Members {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO trip_members (trip_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
			trip.ID, member,
		)
		if err != nil {
			return fmt.Errorf("failed to insert trip member: %w", err)
		}
	}

	for i, item := range trip.Itinerary {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO itinerary_items (trip_id, position, date, place_to_visit, checklist, notes)
             VALUES ($1, $2, $3, $4, $5, $6)`,
			trip.ID, i, item.Date, item.PlaceToVisit, pq.Array(item.Checklist), item.Notes,
		)
		if err != nil {
			return fmt.Errorf("failed to insert itinerary item: %w", err)
		}
	}

	return tx.Commit()
}

// FindTrip retrieves a trip by its ID
func (r *TripRepository) FindTrip(ctx context.Context, tripID string) (*models.TripPlan, error) {
	var trip models.TripPlan
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+tripColumns+" FROM trips t WHERE t.id = $1",
		tripID,
	).Scan(
		&trip.ID, &trip.Name, &trip.Description, &trip.Notes, &trip.CoverImage, &trip.StartDate,
		&trip.EndDate, &trip.PlannedBudget, &trip.CreatedBy, &trip.CreatedAt,
	)
	if err != nil {
		return nil, notFoundOr(err, "trip", "get trip")
	}

	if err := r.loadDetails(ctx, map[string]*models.TripPlan{trip.ID: &trip}); err != nil {
		return nil, err
	}
	return &trip, nil
}

// FindTrips retrieves the trips matching filter ordered by start date
func (r *TripRepository) FindTrips(ctx context.Context, filter TripFilter) ([]*models.TripPlan, error) {
	var where whereBuilder
	if filter.CreatedBy != "" {
		where.add("t.created_by = $%d", filter.CreatedBy)
	}
	if filter.MemberID != "" {
		where.add("EXISTS (SELECT 1 FROM trip_members m WHERE m.trip_id = t.id AND m.user_id = $%d)", filter.MemberID)
	}

	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+tripColumns+" FROM trips t"+where.clause()+" ORDER BY t.start_date ASC, t.id",
		where.args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get trips: %w", err)
	}
	defer rows.Close()

	trips := []*models.TripPlan{}
	byID := map[string]*models.TripPlan{}
	for rows.Next() {
		var trip models.TripPlan
		if err := rows.Scan(
			&trip.ID, &trip.Name, &trip.Description, &trip.Notes, &trip.CoverImage, &trip.StartDate,
			&trip.EndDate, &trip.PlannedBudget, &trip.CreatedBy, &trip.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, &trip)
		byID[trip.ID] = &trip
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trips: %w", err)
	}

	if err := r.loadDetails(ctx, byID); err != nil {
		return nil, err
	}
	return trips, nil
}

// loadDetails fills members and itinerary for every trip in one query each
func (r *TripRepository) loadDetails(ctx context.Context, trips map[string]*models.TripPlan) error {
	if len(trips) == 0 {
		return nil
	}
	ids := make([]string, 0, len(trips))
	for id, trip := range trips {
		ids = append(ids, id)
		trip.Members = []string{}
		trip.Itinerary = []models.ItineraryItem{}
	}

	mRows, err := r.DB.QueryContext(ctx,
		"SELECT trip_id, user_id FROM trip_members WHERE trip_id = ANY($1) ORDER BY joined_at, user_id",
		pq.Array(ids),
	)
	if err != nil {
		return fmt.Errorf("failed to get trip members: %w", err)
	}
	defer mRows.Close()

	for mRows.Next() {
		var tripID, userID string
		if err := mRows.Scan(&tripID, &userID); err != nil {
			return fmt.Errorf("failed to scan trip member: %w", err)
		}
		if trip, ok := trips[tripID]; ok {
			trip.Members = append(trip.Members, userID)
		}
	}
	if err := mRows.Err(); err != nil {
		return fmt.Errorf("failed to read trip members: %w", err)
	}

	iRows, err := r.DB.QueryContext(ctx,
		`SELECT trip_id, date, place_to_visit, checklist, notes FROM itinerary_items
         WHERE trip_id = ANY($1) ORDER BY trip_id, position`,
		pq.Array(ids),
	)
	if err != nil {
		return fmt.Errorf("failed to get itinerary: %w", err)
	}
	defer iRows.Close()

	for iRows.Next() {
		var tripID string
		var item models.ItineraryItem
		var checklist pq.StringArray
		if err := iRows.Scan(&tripID, &item.Date, &item.PlaceToVisit, &checklist, &item.Notes); err != nil {
			return fmt.Errorf("failed to scan itinerary item: %w", err)
		}
		item.Checklist = []string(checklist)
		if item.Checklist == nil {
			item.Checklist = []string{}
		}
		if trip, ok := trips[tripID]; ok {
			trip.Itinerary = append(trip.Itinerary, item)
		}
	}
	return iRows.Err()
}

// UpdateTrip saves the trip's own fields; members and itinerary are untouched
func (r *TripRepository) UpdateTrip(ctx context.Context, trip *models.TripPlan) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE trips SET name = $2, description = $3, notes = $4, cover_image = $5,
         start_date = $6, end_date = $7, planned_budget = $8 WHERE id = $1`,
		trip.ID, trip.Name, trip.Description, trip.Notes, trip.CoverImage,
		trip.StartDate, trip.EndDate, trip.PlannedBudget,
	)
	if err != nil {
		return fmt.Errorf("failed to update trip: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update trip: %w", err)
	}
	if affected == 0 {
		return utils.NewNotFoundError("trip")
	}
	return nil
}

// AppendItineraryItem adds an item at the end of the trip's itinerary
func (r *TripRepository) AppendItineraryItem(ctx context.Context, tripID string, item models.ItineraryItem) (*models.TripPlan, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Lock the trip so concurrent appends get distinct positions
	var id string
	if err := tx.QueryRowContext(ctx, "SELECT id FROM trips WHERE id = $1 FOR UPDATE", tripID).Scan(&id); err != nil {
		return nil, notFoundOr(err, "trip", "lock trip")
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO itinerary_items (trip_id, position, date, place_to_visit, checklist, notes)
         VALUES ($1, (SELECT COALESCE(MAX(position) + 1, 0) FROM itinerary_items WHERE trip_id = $1), $2, $3, $4, $5)`,
		tripID, item.Date, item.PlaceToVisit, pq.Array(item.Checklist), item.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert itinerary item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit itinerary item: %w", err)
	}
	return r.FindTrip(ctx, tripID)
}

// AddMember adds userID to the trip; existing members are left as they are
func (r *TripRepository) AddMember(ctx context.Context, tripID, userID string) (*models.TripPlan, error) {
	var id string
	if err := r.DB.QueryRowContext(ctx, "SELECT id FROM trips WHERE id = $1", tripID).Scan(&id); err != nil {
		return nil, notFoundOr(err, "trip", "get trip")
	}

	if err := insertMember(ctx, r.DB, tripID, userID); err != nil {
		return nil, err
	}
	return r.FindTrip(ctx, tripID)
}

// execer is satisfied by both *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// insertMember is the membership set-add shared by AddMember and AcceptInvitation
func insertMember(ctx context.Context, ex execer, tripID, userID string) error {
	_, err := ex.ExecContext(ctx,
		"INSERT INTO trip_members (trip_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		tripID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to add trip member: %w", err)
	}
	return nil
}

// RemoveMember removes userID from the trip's members
func (r *TripRepository) RemoveMember(ctx context.Context, tripID, userID string) (bool, error) {
	result, err := r.DB.ExecContext(ctx,
		"DELETE FROM trip_members WHERE trip_id = $1 AND user_id = $2",
		tripID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to remove trip member: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to remove trip member: %w", err)
	}
	return affected > 0, nil
}

// DeleteTrip removes a trip; members and itinerary go with it
func (r *TripRepository) DeleteTrip(ctx context.Context, tripID string) (bool, error) {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM trips WHERE id = $1", tripID)
	if err != nil {
		return false, fmt.Errorf("failed to delete trip: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete trip: %w", err)
	}
	return affected > 0, nil
}
