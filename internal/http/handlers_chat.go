package http

import (
	"errors"
	"net/http"

	"worklog/internal/chat"
	"worklog/internal/log"
)

type chatRequest struct {
	Prompt string `json:"prompt"`
}

type chatResponse struct {
	Reply string `json:"reply"`
	Error string `json:"error,omitempty"`
}

// handleChat relays one prompt. Upstream failures come back as 502 with the
// error text in both reply and error so a chat surface can display it.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.deps.Chat == nil {
		writeError(w, http.StatusNotFound, "chat is not configured")
		return
	}
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reply, err := s.deps.Chat.Ask(r.Context(), req.Prompt)
	if err != nil {
		var extErr *chat.ErrExternalService
		if !errors.As(err, &extErr) {
			s.writeServiceError(w, r, "chat", err)
			return
		}
		s.metrics.IncExternalError(extErr.Service)
		log.FromContext(r.Context()).WithComponent(log.ComponentChat).WarnContext(r.Context(), "Chat request failed",
			log.FieldError, err.Error())
		writeJSON(w, http.StatusBadGateway, chatResponse{Reply: "error: " + err.Error(), Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}
