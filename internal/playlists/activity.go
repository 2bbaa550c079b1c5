package playlists

import (
	"context"

	"harmonia/internal/cache"
	"harmonia/internal/store"
)

// Song-set mutations recorded in the activity trail.
const (
	ActionAdd    = "add"
	ActionDelete = "delete"
)

// RecordActivity appends an entry to the playlist's activity trail. Playlist
// and song existence are the caller's responsibility; a no-op insert here is
// an unexpected persistence failure.
func (s *Service) RecordActivity(ctx context.Context, playlistID, userID, songID, action string) error {
	if err := s.store.InsertActivity(ctx, playlistID, userID, songID, action); err != nil {
		return err
	}
	s.invalidate(ctx, cache.KeyPlaylistActivity(playlistID))
	return nil
}

// Activities returns the playlist's activity trail, oldest entry first.
func (s *Service) Activities(ctx context.Context, playlistID string) ([]store.Activity, Provenance, error) {
	return readThrough(ctx, s, cache.KeyPlaylistActivity(playlistID), func(ctx context.Context) ([]store.Activity, error) {
		if _, err := s.store.PlaylistOwner(ctx, playlistID); err != nil {
			return nil, err
		}
		return s.store.ActivitiesByPlaylist(ctx, playlistID)
	})
}
