package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bhakti2406/local-service-finder/internal/models"

	"github.com/rs/zerolog"
)

type CatalogService struct {
	store  CatalogStore
	users  UserStore
	logger *zerolog.Logger
}

func NewCatalogService(store CatalogStore, users UserStore, logger *zerolog.Logger) *CatalogService {
	return &CatalogService{
		store:  store,
		users:  users,
		logger: logger,
	}
}

// AddService publishes a catalog entry. Admin only.
func (s *CatalogService) AddService(ctx context.Context, actorRole string, svc *models.Service) error {
	if actorRole != models.RoleAdmin {
		return fmt.Errorf("%w: admin role required", models.ErrForbidden)
	}
	svc.Name = strings.TrimSpace(svc.Name)
	if svc.Name == "" {
		return fmt.Errorf("%w: service name is required", models.ErrValidation)
	}
	if svc.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", models.ErrValidation)
	}

	if err := s.store.CreateService(ctx, svc); err != nil {
		return err
	}
	s.logger.Info().Int64("service_id", svc.ID).Str("name", svc.Name).Msg("service added to catalog")
	return nil
}

// ListServices returns catalog entries, optionally filtered to a city.
func (s *CatalogService) ListServices(ctx context.Context, location string) ([]*models.Service, error) {
	return s.store.GetServices(ctx, strings.TrimSpace(location))
}

// AddReview records a rating from the given user.
func (s *CatalogService) AddReview(ctx context.Context, userID int64, serviceName, text string, rating int) (*models.Review, error) {
	serviceName = strings.TrimSpace(serviceName)
	if serviceName == "" {
		return nil, fmt.Errorf("%w: service name is required", models.ErrValidation)
	}
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", models.ErrValidation)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	review := &models.Review{
		Service:  serviceName,
		Rating:   rating,
		Text:     strings.TrimSpace(text),
		UserID:   user.ID,
		UserName: user.Name,
	}
	if err := s.store.CreateReview(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// ListReviews returns all reviews, newest first.
func (s *CatalogService) ListReviews(ctx context.Context) ([]*models.Review, error) {
	return s.store.GetReviews(ctx)
}
