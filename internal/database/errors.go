package database

import (
	"fmt"

	"github.com/bhakti2406/local-service-finder/internal/models"
)

// wrapTransient tags a driver failure with the shared transient sentinel so
// callers can classify it without inspecting driver error types. The original
// error stays in the chain.
func wrapTransient(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, models.ErrTransient, err)
}
