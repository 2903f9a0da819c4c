package database

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bhakti2406/local-service-finder/internal/models"
)

func (db *DB) CreateService(ctx context.Context, service *models.Service) error {
	cities, err := json.Marshal(normalizeCities(service.AvailableCities))
	if err != nil {
		return wrapTransient("marshal cities", err)
	}

	query := `INSERT INTO services (name, price, service_location, available_cities, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		service.Name,
		service.Price,
		strings.ToLower(service.ServiceLocation),
		string(cities),
		now,
		now,
	)
	if err != nil {
		return wrapTransient("create service", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return wrapTransient("create service id", err)
	}
	service.ID = id
	service.ServiceLocation = strings.ToLower(service.ServiceLocation)
	service.AvailableCities = normalizeCities(service.AvailableCities)
	service.CreatedAt = now
	service.UpdatedAt = now
	return nil
}

// GetServices lists the catalog. A non-empty location keeps only services
// whose home location or available cities match it, case-insensitively.
func (db *DB) GetServices(ctx context.Context, location string) ([]*models.Service, error) {
	query := `SELECT id, name, price, service_location, available_cities, created_at, updated_at
              FROM services ORDER BY created_at DESC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapTransient("query services", err)
	}
	defer rows.Close()

	location = strings.ToLower(strings.TrimSpace(location))

	var services []*models.Service
	for rows.Next() {
		s := &models.Service{}
		var citiesRaw string
		err := rows.Scan(&s.ID, &s.Name, &s.Price, &s.ServiceLocation, &citiesRaw, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, wrapTransient("scan service", err)
		}
		if err := json.Unmarshal([]byte(citiesRaw), &s.AvailableCities); err != nil {
			return nil, wrapTransient("unmarshal cities", err)
		}

		if location != "" && !serviceMatchesLocation(s, location) {
			continue
		}
		services = append(services, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapTransient("iterate services", err)
	}
	return services, nil
}

func serviceMatchesLocation(s *models.Service, location string) bool {
	if s.ServiceLocation == location {
		return true
	}
	for _, city := range s.AvailableCities {
		if city == location {
			return true
		}
	}
	return false
}

func normalizeCities(cities []string) []string {
	out := make([]string, 0, len(cities))
	for _, city := range cities {
		if trimmed := strings.ToLower(strings.TrimSpace(city)); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
