package models

import "time"

const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusRejected  = "rejected"
	StatusCompleted = "completed"
)

type Booking struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	ServiceName string    `json:"service_name"`
	Problem     string    `json:"problem"`
	Price       float64   `json:"price"`
	Status      string    `json:"status"` // pending, accepted, rejected, completed
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// statusGraph holds the legal successors of each booking status.
// Rejected and completed are terminal.
var statusGraph = map[string][]string{
	StatusPending:   {StatusAccepted, StatusRejected},
	StatusAccepted:  {StatusCompleted},
	StatusRejected:  {},
	StatusCompleted: {},
}

// ValidStatus reports whether status is a known booking status.
func ValidStatus(status string) bool {
	_, ok := statusGraph[status]
	return ok
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range statusGraph[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TerminalStatus reports whether no further transitions are allowed.
func TerminalStatus(status string) bool {
	next, ok := statusGraph[status]
	return ok && len(next) == 0
}
