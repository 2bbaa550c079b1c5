package collaborations

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"harmonia/internal/cache"
	"harmonia/internal/store"
)

// Store is the persistence surface the collaboration service needs.
// *store.Store satisfies it.
type Store interface {
	UserByID(ctx context.Context, id string) (store.User, error)
	CreateCollaboration(ctx context.Context, id, playlistID, userID string) error
	DeleteCollaboration(ctx context.Context, playlistID, userID string) error
	CollaborationExists(ctx context.Context, playlistID, userID string) error
}

// Service manages shared-access grants on playlists.
type Service struct {
	store Store
	cache cache.Cache
	log   zerolog.Logger
}

// New creates a Service.
func New(st Store, c cache.Cache, log zerolog.Logger) *Service {
	return &Service{store: st, cache: c, log: log}
}

// Add grants userID collaborator access to a playlist and returns the grant
// id. The collaborator's playlist list gains an entry, so its key is dropped.
func (s *Service) Add(ctx context.Context, playlistID, userID string) (string, error) {
	if _, err := s.store.UserByID(ctx, userID); err != nil {
		return "", err
	}
	id := "collab-" + uuid.NewString()
	if err := s.store.CreateCollaboration(ctx, id, playlistID, userID); err != nil {
		return "", err
	}
	s.invalidate(ctx, cache.KeyUserPlaylists(userID))
	return id, nil
}

// Delete revokes userID's collaborator access to a playlist.
func (s *Service) Delete(ctx context.Context, playlistID, userID string) error {
	if err := s.store.DeleteCollaboration(ctx, playlistID, userID); err != nil {
		return err
	}
	s.invalidate(ctx, cache.KeyUserPlaylists(userID))
	return nil
}

// VerifyCollaborator fails with store.ErrCollaborationNotFound when userID
// holds no grant on the playlist.
func (s *Service) VerifyCollaborator(ctx context.Context, playlistID, userID string) error {
	return s.store.CollaborationExists(ctx, playlistID, userID)
}

func (s *Service) invalidate(ctx context.Context, key string) {
	if err := s.cache.Delete(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache invalidation failed")
	}
}
