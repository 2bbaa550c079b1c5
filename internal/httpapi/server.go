package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"harmonia/internal/playlists"
	"harmonia/internal/store"
)

// PlaylistService coordinates playlist-related operations.
type PlaylistService interface {
	Add(ctx context.Context, name, owner string) (string, error)
	ListByUser(ctx context.Context, userID string) ([]store.Playlist, playlists.Provenance, error)
	Delete(ctx context.Context, id string) error
	AddSong(ctx context.Context, playlistID, songID string) error
	Songs(ctx context.Context, playlistID string) (store.PlaylistWithSongs, playlists.Provenance, error)
	RemoveSong(ctx context.Context, playlistID, songID string) error
	RecordActivity(ctx context.Context, playlistID, userID, songID, action string) error
	Activities(ctx context.Context, playlistID string) ([]store.Activity, playlists.Provenance, error)
	VerifyOwner(ctx context.Context, playlistID, userID string) error
	VerifyAccess(ctx context.Context, playlistID, userID string) error
}

// CollaborationService manages shared-access grants.
type CollaborationService interface {
	Add(ctx context.Context, playlistID, userID string) (string, error)
	Delete(ctx context.Context, playlistID, userID string) error
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	playlists      PlaylistService
	collaborations CollaborationService
	auth           *Authenticator
	log            zerolog.Logger
}

// New configures a Server with the given services.
func New(playlistSvc PlaylistService, collaborationSvc CollaborationService, auth *Authenticator, log zerolog.Logger) *Server {
	return &Server{
		playlists:      playlistSvc,
		collaborations: collaborationSvc,
		auth:           auth,
		log:            log,
	}
}

// Routes exposes the HTTP handlers for playlist and collaboration management.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("POST /playlists", s.handleCreatePlaylist)
	mux.HandleFunc("GET /playlists", s.handleListPlaylists)
	mux.HandleFunc("DELETE /playlists/{id}", s.handleDeletePlaylist)

	mux.HandleFunc("POST /playlists/{id}/songs", s.handleAddSong)
	mux.HandleFunc("GET /playlists/{id}/songs", s.handleListSongs)
	mux.HandleFunc("DELETE /playlists/{id}/songs", s.handleRemoveSong)

	mux.HandleFunc("GET /playlists/{id}/activities", s.handleActivities)

	mux.HandleFunc("POST /collaborations", s.handleAddCollaboration)
	mux.HandleFunc("DELETE /collaborations", s.handleDeleteCollaboration)

	return mux
}

// dataSourceHeader reports read provenance so clients and tests can tell a
// cache hit from a store read.
const dataSourceHeader = "X-Data-Source"

func setProvenance(w http.ResponseWriter, p playlists.Provenance) {
	w.Header().Set(dataSourceHeader, string(p))
}

func respond(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// writeError maps the service error taxonomy onto HTTP statuses: not-found
// sentinels to 404, forbidden to 403, invariant violations to 400, and
// anything else to a logged 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrPlaylistNotFound),
		errors.Is(err, store.ErrSongNotFound),
		errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrCollaborationNotFound),
		errors.Is(err, store.ErrSongNotInPlaylist):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, playlists.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, store.ErrDuplicateSong):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		s.log.Error().Err(err).Msg("request failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
