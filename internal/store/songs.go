package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Song is a track that can be added to playlists.
type Song struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Performer string `json:"performer"`
}

// SongByID returns a single song.
func (s *Store) SongByID(ctx context.Context, id string) (Song, error) {
	var song Song
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, performer
		FROM songs
		WHERE id = $1`, id).Scan(&song.ID, &song.Title, &song.Performer)
	if errors.Is(err, sql.ErrNoRows) {
		return Song{}, ErrSongNotFound
	}
	if err != nil {
		return Song{}, fmt.Errorf("get song: %w", err)
	}
	return song, nil
}

// SongsInPlaylist returns the songs associated with a playlist.
func (s *Store) SongsInPlaylist(ctx context.Context, playlistID string) ([]Song, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT songs.id, songs.title, songs.performer
		FROM songs
		INNER JOIN songs_playlists ON songs.id = songs_playlists.song_id
		WHERE songs_playlists.playlist_id = $1
		ORDER BY songs_playlists.id ASC`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("list playlist songs: %w", err)
	}
	defer rows.Close()

	songs := make([]Song, 0)
	for rows.Next() {
		var song Song
		if err := rows.Scan(&song.ID, &song.Title, &song.Performer); err != nil {
			return nil, fmt.Errorf("scan playlist song: %w", err)
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlist songs: %w", err)
	}
	return songs, nil
}

// PlaylistHasSong reports whether the association row already exists.
func (s *Store) PlaylistHasSong(ctx context.Context, playlistID, songID string) (bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id
		FROM songs_playlists
		WHERE playlist_id = $1 AND song_id = $2`, playlistID, songID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check playlist song: %w", err)
	}
	return true, nil
}

// AddSongToPlaylist creates the (playlist, song) association.
func (s *Store) AddSongToPlaylist(ctx context.Context, playlistID, songID string) error {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO songs_playlists (playlist_id, song_id)
		VALUES ($1, $2)
		RETURNING id`, playlistID, songID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNothingInserted
	}
	if err != nil {
		return fmt.Errorf("insert playlist song: %w", err)
	}
	return nil
}

// RemoveSongFromPlaylist deletes the (playlist, song) association.
func (s *Store) RemoveSongFromPlaylist(ctx context.Context, playlistID, songID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM songs_playlists
		WHERE playlist_id = $1 AND song_id = $2`, playlistID, songID)
	if err != nil {
		return fmt.Errorf("delete playlist song: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrSongNotInPlaylist
	}
	return nil
}
