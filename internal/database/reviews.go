package database

import (
	"context"
	"time"

	"github.com/bhakti2406/local-service-finder/internal/models"
)

func (db *DB) CreateReview(ctx context.Context, review *models.Review) error {
	query := `INSERT INTO reviews (service, rating, text, user_id, user_name, created_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		review.Service,
		review.Rating,
		review.Text,
		review.UserID,
		review.UserName,
		now,
	)
	if err != nil {
		return wrapTransient("create review", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return wrapTransient("create review id", err)
	}
	review.ID = id
	review.CreatedAt = now
	return nil
}

func (db *DB) GetReviews(ctx context.Context) ([]*models.Review, error) {
	query := `SELECT id, service, rating, text, user_id, user_name, created_at
              FROM reviews ORDER BY created_at DESC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapTransient("query reviews", err)
	}
	defer rows.Close()

	var reviews []*models.Review
	for rows.Next() {
		r := &models.Review{}
		err := rows.Scan(&r.ID, &r.Service, &r.Rating, &r.Text, &r.UserID, &r.UserName, &r.CreatedAt)
		if err != nil {
			return nil, wrapTransient("scan review", err)
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapTransient("iterate reviews", err)
	}
	return reviews, nil
}
