package api

import (
	"net/http"
	"strconv"
	"strings"
)

type sendMessageRequest struct {
	Text string `json:"text"`
}

func (s *HTTPServer) handleConversations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	claims := claimsFrom(r.Context())

	conversations, err := s.messages.Conversations(r.Context(), claims.Role)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversations": conversations})
}

// handleChatSubpath dispatches /api/v1/chats/{userID}/messages.
func (s *HTTPServer) handleChatSubpath(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/chats/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[1] != "messages" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	conversationID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid conversation id")
		return
	}

	claims := claimsFrom(r.Context())

	switch r.Method {
	case http.MethodGet:
		messages, err := s.messages.History(r.Context(), claims.UserID, claims.Role, conversationID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"messages": messages})

	case http.MethodPost:
		var body sendMessageRequest
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		message, err := s.messages.Send(r.Context(), claims.UserID, claims.Role, conversationID, body.Text)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"message": message})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
