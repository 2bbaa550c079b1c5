package httpapi

import (
	"encoding/json"
	"net/http"

	"harmonia/internal/playlists"
	"harmonia/internal/store"
)

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	id, err := s.playlists.Add(r.Context(), req.Name, userID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	respond(w, http.StatusCreated, struct {
		PlaylistID string `json:"playlistId"`
	}{PlaylistID: id})
}

func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	items, provenance, err := s.playlists.ListByUser(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	setProvenance(w, provenance)
	respond(w, http.StatusOK, struct {
		Playlists []store.Playlist `json:"playlists"`
	}{Playlists: items})
}

func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	playlistID := r.PathValue("id")

	if err := s.playlists.VerifyOwner(r.Context(), playlistID, userID); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.playlists.Delete(r.Context(), playlistID); err != nil {
		s.writeError(w, err)
		return
	}

	respond(w, http.StatusOK, struct {
		Message string `json:"message"`
	}{Message: "playlist deleted"})
}

func (s *Server) handleAddSong(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	playlistID := r.PathValue("id")

	var req struct {
		SongID string `json:"songId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SongID == "" {
		http.Error(w, "songId is required", http.StatusBadRequest)
		return
	}

	if err := s.playlists.VerifyAccess(r.Context(), playlistID, userID); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.playlists.AddSong(r.Context(), playlistID, req.SongID); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.playlists.RecordActivity(r.Context(), playlistID, userID, req.SongID, playlists.ActionAdd); err != nil {
		s.writeError(w, err)
		return
	}

	respond(w, http.StatusCreated, struct {
		Message string `json:"message"`
	}{Message: "song added to playlist"})
}

func (s *Server) handleListSongs(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	playlistID := r.PathValue("id")

	if err := s.playlists.VerifyAccess(r.Context(), playlistID, userID); err != nil {
		s.writeError(w, err)
		return
	}
	playlist, provenance, err := s.playlists.Songs(r.Context(), playlistID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	setProvenance(w, provenance)
	respond(w, http.StatusOK, struct {
		Playlist store.PlaylistWithSongs `json:"playlist"`
	}{Playlist: playlist})
}

func (s *Server) handleRemoveSong(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	playlistID := r.PathValue("id")

	var req struct {
		SongID string `json:"songId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SongID == "" {
		http.Error(w, "songId is required", http.StatusBadRequest)
		return
	}

	if err := s.playlists.VerifyAccess(r.Context(), playlistID, userID); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.playlists.RemoveSong(r.Context(), playlistID, req.SongID); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.playlists.RecordActivity(r.Context(), playlistID, userID, req.SongID, playlists.ActionDelete); err != nil {
		s.writeError(w, err)
		return
	}

	respond(w, http.StatusOK, struct {
		Message string `json:"message"`
	}{Message: "song removed from playlist"})
}

func (s *Server) handleActivities(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	playlistID := r.PathValue("id")

	if err := s.playlists.VerifyAccess(r.Context(), playlistID, userID); err != nil {
		s.writeError(w, err)
		return
	}
	activities, provenance, err := s.playlists.Activities(r.Context(), playlistID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	setProvenance(w, provenance)
	respond(w, http.StatusOK, struct {
		PlaylistID string           `json:"playlistId"`
		Activities []store.Activity `json:"activities"`
	}{PlaylistID: playlistID, Activities: activities})
}
