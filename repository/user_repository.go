// repository/user_repository.go
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/fadhlanhapp/tripplanner-backend/models"
	"github.com/fadhlanhapp/tripplanner-backend/utils"
)

// UserRepository handles database operations for users
type UserRepository struct {
	DB *sql.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

const userColumns = "id, username, email, full_name, avatar, password_hash, refresh_token, created_at"

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.FullName, &user.Avatar,
		&user.PasswordHash, &user.RefreshToken, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser saves a new user; a taken username or email is a conflict
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
		user.ID, user.Username, user.Email, user.FullName, user.Avatar,
		user.PasswordHash, user.RefreshToken, user.CreatedAt,
	)
	if isUniqueViolation(err) {
		return utils.NewConflictError("username or email already registered")
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// FindUser retrieves a user by ID
func (r *UserRepository) FindUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", userID))
	if err != nil {
		return nil, notFoundOr(err, "user", "get user")
	}
	return user, nil
}

// FindUserByLogin retrieves a user by username or email
func (r *UserRepository) FindUserByLogin(ctx context.Context, login string) (*models.User, error) {
	user, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = $1 OR email = $1", login))
	if err != nil {
		return nil, notFoundOr(err, "user", "get user")
	}
	return user, nil
}

// FindUsers retrieves the users with the given IDs; unknown IDs are skipped
func (r *UserRepository) FindUsers(ctx context.Context, userIDs []string) ([]*models.User, error) {
	users := []*models.User{}
	if len(userIDs) == 0 {
		return users, nil
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ANY($1) ORDER BY id", pq.Array(userIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	defer rows.Close()
	return collectUsers(rows, users)
}

// SearchUsers finds users whose username or full name starts with prefix
func (r *UserRepository) SearchUsers(ctx context.Context, prefix, excludeID string, limit int) ([]*models.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
         WHERE id <> $1 AND (username ILIKE $2 OR full_name ILIKE $2)
         ORDER BY full_name, id LIMIT $3`,
		excludeID, likePrefix(prefix), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()
	return collectUsers(rows, []*models.User{})
}

func collectUsers(rows *sql.Rows, users []*models.User) ([]*models.User, error) {
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}
	return users, nil
}

// UpdateRefreshToken stores the user's current refresh token; empty clears it
func (r *UserRepository) UpdateRefreshToken(ctx context.Context, userID, token string) error {
	result, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_token = $2 WHERE id = $1", userID, token)
	if err != nil {
		return fmt.Errorf("failed to update refresh token: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update refresh token: %w", err)
	}
	if affected == 0 {
		return utils.NewNotFoundError("user")
	}
	return nil
}
