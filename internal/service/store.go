package service

import (
	"context"

	"github.com/bhakti2406/local-service-finder/internal/models"
)

// Store interfaces narrow what each service sees of the database. *database.DB
// satisfies all of them.

type BookingStore interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	UpdateBookingStatusFrom(ctx context.Context, id int64, fromStatus, toStatus string) error
	GetUserBookings(ctx context.Context, userID int64) ([]*models.Booking, error)
	GetAllBookings(ctx context.Context) ([]*models.Booking, error)
}

type MessageStore interface {
	AppendMessage(ctx context.Context, message *models.Message) error
	GetConversationMessages(ctx context.Context, conversationID int64) ([]*models.Message, error)
	GetConversations(ctx context.Context) ([]*models.Conversation, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateUserProfile(ctx context.Context, id int64, name, phone, location string) error
}

type CatalogStore interface {
	CreateService(ctx context.Context, service *models.Service) error
	GetServices(ctx context.Context, location string) ([]*models.Service, error)
	CreateReview(ctx context.Context, review *models.Review) error
	GetReviews(ctx context.Context) ([]*models.Review, error)
}
