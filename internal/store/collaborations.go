package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// User is an account that can own playlists and collaborate on others.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// UserByID returns a single user.
func (s *Store) UserByID(ctx context.Context, id string) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username
		FROM users
		WHERE id = $1`, id).Scan(&user.ID, &user.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// CreateCollaboration grants a user shared access to a playlist.
func (s *Store) CreateCollaboration(ctx context.Context, id, playlistID, userID string) error {
	var returned string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO collaborations (id, playlist_id, user_id)
		VALUES ($1, $2, $3)
		RETURNING id`, id, playlistID, userID).Scan(&returned)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNothingInserted
	}
	if err != nil {
		return fmt.Errorf("insert collaboration: %w", err)
	}
	return nil
}

// DeleteCollaboration revokes a user's shared access to a playlist.
func (s *Store) DeleteCollaboration(ctx context.Context, playlistID, userID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM collaborations
		WHERE playlist_id = $1 AND user_id = $2`, playlistID, userID)
	if err != nil {
		return fmt.Errorf("delete collaboration: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrCollaborationNotFound
	}
	return nil
}

// CollaboratorIDs returns the ids of every user holding a grant on the
// playlist. A playlist with no grants yields an empty slice.
func (s *Store) CollaboratorIDs(ctx context.Context, playlistID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id
		FROM collaborations
		WHERE playlist_id = $1`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("list collaborators: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan collaborator: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collaborators: %w", err)
	}
	return ids, nil
}

// CollaborationExists fails with ErrCollaborationNotFound when the user has no
// grant on the playlist.
func (s *Store) CollaborationExists(ctx context.Context, playlistID, userID string) error {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id
		FROM collaborations
		WHERE playlist_id = $1 AND user_id = $2`, playlistID, userID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCollaborationNotFound
	}
	if err != nil {
		return fmt.Errorf("check collaboration: %w", err)
	}
	return nil
}
