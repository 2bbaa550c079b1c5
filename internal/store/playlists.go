package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Playlist is a named, owned collection of songs. Username is the owner's
// display name when the row was joined against users.
type Playlist struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Owner    string `json:"-"`
	Username string `json:"username"`
}

// PlaylistWithSongs bundles a playlist with its current song set.
type PlaylistWithSongs struct {
	Playlist
	Songs []Song `json:"songs"`
}

// CreatePlaylist persists a new playlist under the given owner.
func (s *Store) CreatePlaylist(ctx context.Context, id, name, owner string) error {
	var returned string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO playlists (id, name, owner)
		VALUES ($1, $2, $3)
		RETURNING id`, id, name, owner).Scan(&returned)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNothingInserted
	}
	if err != nil {
		return fmt.Errorf("insert playlist: %w", err)
	}
	return nil
}

// PlaylistsByUser returns every playlist the user owns or collaborates on.
func (s *Store) PlaylistsByUser(ctx context.Context, userID string) ([]Playlist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT playlists.id, playlists.name, users.username
		FROM playlists
		LEFT JOIN users ON users.id = playlists.owner
		LEFT JOIN collaborations ON collaborations.playlist_id = playlists.id
		WHERE playlists.owner = $1 OR collaborations.user_id = $1
		ORDER BY playlists.id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	defer rows.Close()

	playlists := make([]Playlist, 0)
	for rows.Next() {
		var playlist Playlist
		if err := rows.Scan(&playlist.ID, &playlist.Name, &playlist.Username); err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		playlists = append(playlists, playlist)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}
	return playlists, nil
}

// PlaylistOwner returns the owner id of a playlist.
func (s *Store) PlaylistOwner(ctx context.Context, id string) (string, error) {
	var owner string
	err := s.db.QueryRowContext(ctx, `
		SELECT owner
		FROM playlists
		WHERE id = $1`, id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrPlaylistNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get playlist owner: %w", err)
	}
	return owner, nil
}

// PlaylistWithOwner returns a playlist joined with its owner's username.
func (s *Store) PlaylistWithOwner(ctx context.Context, id string) (Playlist, error) {
	var playlist Playlist
	err := s.db.QueryRowContext(ctx, `
		SELECT playlists.id, playlists.name, playlists.owner, users.username
		FROM playlists
		INNER JOIN users ON users.id = playlists.owner
		WHERE playlists.id = $1`, id).
		Scan(&playlist.ID, &playlist.Name, &playlist.Owner, &playlist.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return Playlist{}, ErrPlaylistNotFound
	}
	if err != nil {
		return Playlist{}, fmt.Errorf("get playlist: %w", err)
	}
	return playlist, nil
}

// DeletePlaylist removes a playlist. Song associations and activity rows go
// with it via ON DELETE CASCADE.
func (s *Store) DeletePlaylist(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM playlists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrPlaylistNotFound
	}
	return nil
}
