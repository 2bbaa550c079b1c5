package store

import (
	"database/sql"
	"errors"
)

var (
	// ErrPlaylistNotFound signals the playlist does not exist.
	ErrPlaylistNotFound = errors.New("playlist not found")
	// ErrSongNotFound signals the song does not exist.
	ErrSongNotFound = errors.New("song not found")
	// ErrUserNotFound signals the user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrCollaborationNotFound signals the user is not a collaborator on the playlist.
	ErrCollaborationNotFound = errors.New("collaboration not found")
	// ErrSongNotInPlaylist signals the song is not part of the playlist.
	ErrSongNotInPlaylist = errors.New("song not in playlist")
	// ErrDuplicateSong signals the song is already part of the playlist.
	ErrDuplicateSong = errors.New("song already in playlist")
	// ErrNothingInserted signals a write that should have persisted a row persisted none.
	ErrNothingInserted = errors.New("insert affected no rows")
)

// Store provides persistence backed by Postgres.
type Store struct {
	db *sql.DB
}

// New sets up a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}
