package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/bhakti2406/local-service-finder/internal/auth"
	"github.com/bhakti2406/local-service-finder/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.ID = 42
	}
	return args.Error(0)
}
func (m *mockUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *mockUserStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *mockUserStore) UpdateUserProfile(ctx context.Context, id int64, name, phone, location string) error {
	return m.Called(ctx, id, name, phone, location).Error(0)
}

func newUserService(store UserStore) *UserService {
	logger := zerolog.New(io.Discard)
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	return NewUserService(store, tokens, &logger)
}

func TestRegisterValidation(t *testing.T) {
	store := new(mockUserStore)
	svc := newUserService(store)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "", "a@b.com", "secret1", "", "")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, _, err = svc.Register(ctx, "Asha", "not-an-email", "secret1", "", "")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, _, err = svc.Register(ctx, "Asha", "a@b.com", "short", "", "")
	assert.ErrorIs(t, err, models.ErrValidation)

	store.AssertNotCalled(t, "CreateUser")
}

func TestRegisterIssuesToken(t *testing.T) {
	store := new(mockUserStore)
	svc := newUserService(store)
	ctx := context.Background()

	store.On("CreateUser", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Role == models.RoleReceiver && u.PasswordHash != "secret1"
	})).Return(nil).Once()

	user, token, err := svc.Register(ctx, "Asha", "asha@example.com", "secret1", "99887", "pune")
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.NotEmpty(t, token)

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, models.RoleReceiver, claims.Role)
	store.AssertExpectations(t)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := new(mockUserStore)
	svc := newUserService(store)
	ctx := context.Background()

	store.On("CreateUser", ctx, mock.Anything).Return(models.ErrEmailTaken).Once()

	_, _, err := svc.Register(ctx, "Asha", "asha@example.com", "secret1", "", "")
	assert.ErrorIs(t, err, models.ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	store := new(mockUserStore)
	svc := newUserService(store)
	ctx := context.Background()

	hash, err := auth.HashPassword("secret1")
	require.NoError(t, err)
	user := &models.User{ID: 7, Email: "asha@example.com", PasswordHash: hash, Role: models.RoleReceiver}

	store.On("GetUserByEmail", ctx, "asha@example.com").Return(user, nil)
	store.On("GetUserByEmail", ctx, "ghost@example.com").Return(nil, models.ErrNotFound)

	got, token, err := svc.Login(ctx, "asha@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)
	assert.NotEmpty(t, token)

	// Wrong password and unknown email look the same.
	_, _, err = svc.Login(ctx, "asha@example.com", "wrong")
	assert.ErrorIs(t, err, models.ErrBadCredentials)

	_, _, err = svc.Login(ctx, "ghost@example.com", "secret1")
	assert.ErrorIs(t, err, models.ErrBadCredentials)
}

func TestUpdateProfile(t *testing.T) {
	store := new(mockUserStore)
	svc := newUserService(store)
	ctx := context.Background()

	_, err := svc.UpdateProfile(ctx, 7, "  ", "", "")
	assert.ErrorIs(t, err, models.ErrValidation)

	store.On("UpdateUserProfile", ctx, int64(7), "New Name", "123", "mumbai").Return(nil).Once()
	store.On("GetUserByID", ctx, int64(7)).Return(&models.User{ID: 7, Name: "New Name"}, nil).Once()

	user, err := svc.UpdateProfile(ctx, 7, "New Name", "123", "mumbai")
	require.NoError(t, err)
	assert.Equal(t, "New Name", user.Name)
	store.AssertExpectations(t)
}
