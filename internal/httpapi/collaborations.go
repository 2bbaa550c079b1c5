package httpapi

import (
	"encoding/json"
	"net/http"
)

type collaborationRequest struct {
	PlaylistID string `json:"playlistId"`
	UserID     string `json:"userId"`
}

func decodeCollaboration(w http.ResponseWriter, r *http.Request) (collaborationRequest, bool) {
	var req collaborationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlaylistID == "" || req.UserID == "" {
		http.Error(w, "playlistId and userId are required", http.StatusBadRequest)
		return collaborationRequest{}, false
	}
	return req, true
}

func (s *Server) handleAddCollaboration(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	req, ok := decodeCollaboration(w, r)
	if !ok {
		return
	}

	// Only the owner may manage grants.
	if err := s.playlists.VerifyOwner(r.Context(), req.PlaylistID, userID); err != nil {
		s.writeError(w, err)
		return
	}
	id, err := s.collaborations.Add(r.Context(), req.PlaylistID, req.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	respond(w, http.StatusCreated, struct {
		CollaborationID string `json:"collaborationId"`
	}{CollaborationID: id})
}

func (s *Server) handleDeleteCollaboration(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	req, ok := decodeCollaboration(w, r)
	if !ok {
		return
	}

	if err := s.playlists.VerifyOwner(r.Context(), req.PlaylistID, userID); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.collaborations.Delete(r.Context(), req.PlaylistID, req.UserID); err != nil {
		s.writeError(w, err)
		return
	}

	respond(w, http.StatusOK, struct {
		Message string `json:"message"`
	}{Message: "collaboration deleted"})
}
