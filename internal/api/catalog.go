package api

import (
	"net/http"

	"github.com/bhakti2406/local-service-finder/internal/models"
)

type addReviewRequest struct {
	Service string `json:"service"`
	Rating  int    `json:"rating"`
	Text    string `json:"text"`
}

func (s *HTTPServer) handleServices(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		services, err := s.catalog.ListServices(r.Context(), r.URL.Query().Get("location"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"services": services})

	case http.MethodPost:
		s.authenticated(s.handleAddService)(w, r)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleAddService(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	var svc models.Service
	if err := decodeJSON(r, &svc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.catalog.AddService(r.Context(), claims.Role, &svc); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"service": svc})
}

func (s *HTTPServer) handleReviews(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		reviews, err := s.catalog.ListReviews(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"reviews": reviews})

	case http.MethodPost:
		s.authenticated(s.handleAddReview)(w, r)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleAddReview(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	var body addReviewRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	review, err := s.catalog.AddReview(r.Context(), claims.UserID, body.Service, body.Text, body.Rating)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"review": review})
}
