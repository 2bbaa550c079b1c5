package playlists

import (
	"context"
	"errors"
)

// ErrForbidden signals the playlist exists but the user has no rights on it.
var ErrForbidden = errors.New("forbidden")

// CollaborationResolver confirms whether a user holds a shared-access grant
// on a playlist.
type CollaborationResolver interface {
	VerifyCollaborator(ctx context.Context, playlistID, userID string) error
}

// VerifyOwner succeeds only when userID owns the playlist. A missing playlist
// is ErrPlaylistNotFound, never ErrForbidden.
func (s *Service) VerifyOwner(ctx context.Context, playlistID, userID string) error {
	owner, err := s.store.PlaylistOwner(ctx, playlistID)
	if err != nil {
		return err
	}
	if owner != userID {
		return ErrForbidden
	}
	return nil
}

// VerifyAccess succeeds when userID owns the playlist or collaborates on it.
// Not-found outcomes take precedence over the collaborator fallback, and when
// the fallback fails the original ownership error is returned so each access
// path surfaces one stable failure kind.
func (s *Service) VerifyAccess(ctx context.Context, playlistID, userID string) error {
	err := s.VerifyOwner(ctx, playlistID, userID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrForbidden) {
		return err
	}
	if s.collaborators.VerifyCollaborator(ctx, playlistID, userID) == nil {
		return nil
	}
	return err
}
