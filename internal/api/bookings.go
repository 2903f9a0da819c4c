package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type createBookingRequest struct {
	ServiceName string  `json:"service_name"`
	Problem     string  `json:"problem"`
	Price       float64 `json:"price"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	claims := claimsFrom(r.Context())

	var body createBookingRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	booking, err := s.bookings.Create(r.Context(), claims.UserID, body.ServiceName, body.Problem, body.Price)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"booking": booking})
}

// handleBookingSubpath dispatches /api/v1/bookings/{my,all,export} and
// /api/v1/bookings/{id}/status.
func (s *HTTPServer) handleBookingSubpath(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/bookings/")

	switch rest {
	case "my":
		s.handleMyBookings(w, r)
		return
	case "all":
		s.handleAllBookings(w, r)
		return
	case "export":
		s.handleExportBookings(w, r)
		return
	}

	parts := strings.Split(rest, "/")
	if len(parts) == 2 && parts[1] == "status" {
		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid booking id")
			return
		}
		s.handleBookingStatus(w, r, id)
		return
	}

	writeError(w, http.StatusNotFound, "not found")
}

func (s *HTTPServer) handleMyBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	claims := claimsFrom(r.Context())

	bookings, err := s.bookings.ListOwn(r.Context(), claims.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *HTTPServer) handleAllBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	claims := claimsFrom(r.Context())

	bookings, err := s.bookings.ListAll(r.Context(), claims.Role)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *HTTPServer) handleExportBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	claims := claimsFrom(r.Context())

	bookings, err := s.bookings.ListAll(r.Context(), claims.Role)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	path, err := s.exporter.ExportBookings(bookings)
	if err != nil {
		s.logger.Error().Err(err).Msg("bookings export failed")
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	defer os.Remove(path)

	w.Header().Set("Content-Disposition", "attachment; filename="+filepath.Base(path))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	http.ServeFile(w, r, path)
}

func (s *HTTPServer) handleBookingStatus(w http.ResponseWriter, r *http.Request, bookingID int64) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	claims := claimsFrom(r.Context())

	var body updateStatusRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	booking, err := s.bookings.Transition(r.Context(), claims.UserID, claims.Role, bookingID, body.Status)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"booking": booking})
}
