package playlists

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"harmonia/internal/cache"
	"harmonia/internal/store"
)

// Provenance records whether a read was served from the cache or recomputed
// from the store.
type Provenance string

const (
	// FromCache marks a result deserialized from a cache hit.
	FromCache Provenance = "cache"
	// FromStore marks a result queried from the database.
	FromStore Provenance = "db"
)

// Store is the persistence surface the playlist service needs. *store.Store
// satisfies it.
type Store interface {
	CreatePlaylist(ctx context.Context, id, name, owner string) error
	PlaylistsByUser(ctx context.Context, userID string) ([]store.Playlist, error)
	PlaylistOwner(ctx context.Context, id string) (string, error)
	PlaylistWithOwner(ctx context.Context, id string) (store.Playlist, error)
	DeletePlaylist(ctx context.Context, id string) error
	CollaboratorIDs(ctx context.Context, playlistID string) ([]string, error)
	SongByID(ctx context.Context, id string) (store.Song, error)
	SongsInPlaylist(ctx context.Context, playlistID string) ([]store.Song, error)
	PlaylistHasSong(ctx context.Context, playlistID, songID string) (bool, error)
	AddSongToPlaylist(ctx context.Context, playlistID, songID string) error
	RemoveSongFromPlaylist(ctx context.Context, playlistID, songID string) error
	InsertActivity(ctx context.Context, playlistID, userID, songID, action string) error
	ActivitiesByPlaylist(ctx context.Context, playlistID string) ([]store.Activity, error)
}

// Service coordinates playlist reads and writes against the store, keeping
// the cache consistent by invalidating after every committed mutation.
type Service struct {
	store         Store
	cache         cache.Cache
	collaborators CollaborationResolver
	log           zerolog.Logger
}

// New creates a Service.
func New(st Store, c cache.Cache, collaborators CollaborationResolver, log zerolog.Logger) *Service {
	return &Service{store: st, cache: c, collaborators: collaborators, log: log}
}

// readThrough serves a cache-aside read: cache hit wins, any cache trouble
// degrades to the store, and a successful store read repopulates the key.
// Load failures (including not-found) are never cached.
func readThrough[T any](ctx context.Context, s *Service, key string, load func(context.Context) (T, error)) (T, Provenance, error) {
	data, hit, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		s.log.Warn().Err(err).Str("key", key).Msg("cache read failed, falling back to store")
	case hit:
		v, derr := cache.Decode[T](data)
		if derr == nil {
			return v, FromCache, nil
		}
		s.log.Warn().Err(derr).Str("key", key).Msg("cache entry undecodable, falling back to store")
	}

	v, err := load(ctx)
	if err != nil {
		var zero T
		return zero, FromStore, err
	}

	if data, err := cache.Encode(v); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache encode failed")
	} else if err := s.cache.Set(ctx, key, data, cache.DefaultTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
	return v, FromStore, nil
}

// invalidate drops a cache key after a committed write. An unreachable cache
// cannot serve a stale hit either, so failures are logged, not propagated.
func (s *Service) invalidate(ctx context.Context, key string) {
	if err := s.cache.Delete(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache invalidation failed")
	}
}

// Add creates a playlist and returns its id.
func (s *Service) Add(ctx context.Context, name, owner string) (string, error) {
	id := "playlist-" + uuid.NewString()
	if err := s.store.CreatePlaylist(ctx, id, name, owner); err != nil {
		return "", err
	}
	s.invalidate(ctx, cache.KeyUserPlaylists(owner))
	s.log.Debug().Str("playlist_id", id).Str("owner", owner).Msg("playlist created")
	return id, nil
}

// ListByUser returns the playlists the user owns or collaborates on.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]store.Playlist, Provenance, error) {
	return readThrough(ctx, s, cache.KeyUserPlaylists(userID), func(ctx context.Context) ([]store.Playlist, error) {
		return s.store.PlaylistsByUser(ctx, userID)
	})
}

// Delete removes a playlist and every cache key it can stale: the owner's
// and each collaborator's playlist list, plus the playlist's songs and
// activity keys. Owner and collaborators are resolved first because the rows
// are gone once the delete commits.
func (s *Service) Delete(ctx context.Context, id string) error {
	owner, err := s.store.PlaylistOwner(ctx, id)
	if err != nil {
		return err
	}
	collaborators, err := s.store.CollaboratorIDs(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeletePlaylist(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, cache.KeyUserPlaylists(owner))
	for _, userID := range collaborators {
		s.invalidate(ctx, cache.KeyUserPlaylists(userID))
	}
	s.invalidate(ctx, cache.KeyPlaylistSongs(id))
	s.invalidate(ctx, cache.KeyPlaylistActivity(id))
	s.log.Debug().Str("playlist_id", id).Msg("playlist deleted")
	return nil
}

// AddSong associates a song with a playlist. A song may appear in a playlist
// at most once; the duplicate check happens here rather than leaning on the
// store's unique constraint.
func (s *Service) AddSong(ctx context.Context, playlistID, songID string) error {
	if _, err := s.store.SongByID(ctx, songID); err != nil {
		return err
	}
	exists, err := s.store.PlaylistHasSong(ctx, playlistID, songID)
	if err != nil {
		return err
	}
	if exists {
		return store.ErrDuplicateSong
	}
	if err := s.store.AddSongToPlaylist(ctx, playlistID, songID); err != nil {
		return err
	}
	s.invalidate(ctx, cache.KeyPlaylistSongs(playlistID))
	return nil
}

// Songs returns a playlist with its song set.
func (s *Service) Songs(ctx context.Context, playlistID string) (store.PlaylistWithSongs, Provenance, error) {
	return readThrough(ctx, s, cache.KeyPlaylistSongs(playlistID), func(ctx context.Context) (store.PlaylistWithSongs, error) {
		playlist, err := s.store.PlaylistWithOwner(ctx, playlistID)
		if err != nil {
			return store.PlaylistWithSongs{}, err
		}
		songs, err := s.store.SongsInPlaylist(ctx, playlistID)
		if err != nil {
			return store.PlaylistWithSongs{}, err
		}
		return store.PlaylistWithSongs{Playlist: playlist, Songs: songs}, nil
	})
}

// RemoveSong deletes a song association from a playlist.
func (s *Service) RemoveSong(ctx context.Context, playlistID, songID string) error {
	if err := s.store.RemoveSongFromPlaylist(ctx, playlistID, songID); err != nil {
		return err
	}
	s.invalidate(ctx, cache.KeyPlaylistSongs(playlistID))
	return nil
}
