// repository/invitation_repository.go
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fadhlanhapp/tripplanner-backend/models"
	"github.com/fadhlanhapp/tripplanner-backend/utils"
)

// InvitationRepository handles database operations for invitations
type InvitationRepository struct {
	DB *sql.DB
}

// NewInvitationRepository creates a new InvitationRepository
func NewInvitationRepository(db *sql.DB) *InvitationRepository {
	return &InvitationRepository{DB: db}
}

// CreateInvitation saves an invitation; a second invitation for the same user and trip is a conflict
func (r *InvitationRepository) CreateInvitation(ctx context.Context, invitation *models.Invitation) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO invitations (id, trip_id, inviter, invitee, created_at) VALUES ($1, $2, $3, $4, $5)",
		invitation.ID, invitation.TripID, invitation.Inviter, invitation.Invitee, invitation.CreatedAt,
	)
	if isUniqueViolation(err) {
		return utils.NewConflictError("user is already invited to this trip")
	}
	if err != nil {
		return fmt.Errorf("failed to insert invitation: %w", err)
	}
	return nil
}

// FindInvitation retrieves an invitation by ID
func (r *InvitationRepository) FindInvitation(ctx context.Context, invitationID string) (*models.Invitation, error) {
	var inv models.Invitation
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, trip_id, inviter, invitee, created_at FROM invitations WHERE id = $1",
		invitationID,
	).Scan(&inv.ID, &inv.TripID, &inv.Inviter, &inv.Invitee, &inv.CreatedAt)
	if err != nil {
		return nil, notFoundOr(err, "invitation", "get invitation")
	}
	return &inv, nil
}

// FindInvitations retrieves the invitations matching filter, oldest first
func (r *InvitationRepository) FindInvitations(ctx context.Context, filter InvitationFilter) ([]*models.Invitation, error) {
	var where whereBuilder
	if filter.TripID != "" {
		where.add("trip_id = $%d", filter.TripID)
	}
	if filter.Invitee != "" {
		where.add("invitee = $%d", filter.Invitee)
	}

	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, trip_id, inviter, invitee, created_at FROM invitations"+where.clause()+" ORDER BY created_at, id",
		where.args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get invitations: %w", err)
	}
	defer rows.Close()

	invitations := []*models.Invitation{}
	for rows.Next() {
		var inv models.Invitation
		if err := rows.Scan(&inv.ID, &inv.TripID, &inv.Inviter, &inv.Invitee, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, &inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read invitations: %w", err)
	}
	return invitations, nil
}

// DeleteInvitation removes an invitation
func (r *InvitationRepository) DeleteInvitation(ctx context.Context, invitationID string) (bool, error) {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM invitations WHERE id = $1", invitationID)
	if err != nil {
		return false, fmt.Errorf("failed to delete invitation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete invitation: %w", err)
	}
	return affected > 0, nil
}

// DeleteInvitationsByTrip removes every invitation of a trip
func (r *InvitationRepository) DeleteInvitationsByTrip(ctx context.Context, tripID string) (int64, error) {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM invitations WHERE trip_id = $1", tripID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete invitations: %w", err)
	}
	return result.RowsAffected()
}

// AcceptInvitation adds the invitee to the trip and deletes the invitation in one transaction
func (r *InvitationRepository) AcceptInvitation(ctx context.Context, invitationID string) (*models.Invitation, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// A concurrent accept blocks here and then sees no row
	var inv models.Invitation
	err = tx.QueryRowContext(ctx,
		"SELECT id, trip_id, inviter, invitee, created_at FROM invitations WHERE id = $1 FOR UPDATE",
		invitationID,
	).Scan(&inv.ID, &inv.TripID, &inv.Inviter, &inv.Invitee, &inv.CreatedAt)
	if err != nil {
		return nil, notFoundOr(err, "invitation", "lock invitation")
	}

	if err := insertMember(ctx, tx, inv.TripID, inv.Invitee); err != nil {
		return nil, err
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM invitations WHERE id = $1", inv.ID); err != nil {
		return nil, fmt.Errorf("failed to delete invitation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit invitation: %w", err)
	}
	return &inv, nil
}
