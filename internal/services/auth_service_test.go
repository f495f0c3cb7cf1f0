package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"giftlink/internal/models"
	"giftlink/internal/repositories"
	"giftlink/internal/services"
)

const testJWTSecret = "test_jwt_secret"

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func parseClaims(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	return claims
}

func notFound(what string) error {
	return fmt.Errorf("%s: %w", what, repositories.ErrNotFound)
}

func TestAuthService_Register(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Second, nil)
	ctx := context.Background()

	user := &models.User{Email: " Test@Example.com", FirstName: "Test", Password: "password123"}

	mockRepo.On("GetByEmail", mock.Anything, "test@example.com").Return(nil, notFound("user")).Once()
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) { args.Get(1).(*models.User).ID = "user-1" }).
		Return(nil).Once()

	token, err := authService.Register(ctx, user)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "test@example.com", user.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))
	assert.False(t, user.CreatedAt.IsZero())

	claims := parseClaims(t, token)
	assert.Equal(t, "user-1", claims["user_id"])
	assert.Equal(t, "test@example.com", claims["email"])
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Second, nil)

	mockRepo.On("GetByEmail", mock.Anything, "test@example.com").Return(&models.User{ID: "1"}, nil).Once()

	_, err := authService.Register(context.Background(), &models.User{Email: "test@example.com", Password: "password123"})
	assert.True(t, errors.Is(err, services.ErrEmailTaken))
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Register_LostInsertRace(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Second, nil)

	mockRepo.On("GetByEmail", mock.Anything, "dup@example.com").Return(nil, notFound("user")).Once()
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).
		Return(fmt.Errorf("user with email dup@example.com: %w", repositories.ErrDuplicate)).Once()

	token, err := authService.Register(context.Background(), &models.User{Email: "dup@example.com", Password: "password123"})
	assert.Empty(t, token)
	assert.True(t, errors.Is(err, services.ErrEmailTaken), "got %v", err)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Register_Concurrent(t *testing.T) {
	authService := services.NewAuthService(repositories.NewMockUserRepository(), testJWTSecret, time.Second, nil)

	const n = 8
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := authService.Register(context.Background(), &models.User{Email: "dup@example.com", Password: "password123"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errors.Is(err, services.ErrEmailTaken), "got %v", err)
	}
	assert.Equal(t, 1, succeeded)
}

func TestAuthService_Register_LookupFailure(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Second, nil)

	mockRepo.On("GetByEmail", mock.Anything, "test@example.com").Return(nil, errors.New("connection refused")).Once()

	_, err := authService.Register(context.Background(), &models.User{Email: "test@example.com", Password: "password123"})
	assert.Error(t, err)
	assert.False(t, errors.Is(err, services.ErrEmailTaken))
	assert.Contains(t, err.Error(), "connection refused")
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Second, nil)
	ctx := context.Background()

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &models.User{
		ID:        "user-123",
		Email:     "test@example.com",
		FirstName: "Test",
		Password:  string(hashedPassword),
	}

	mockRepo.On("GetByEmail", mock.Anything, "test@example.com").Return(user, nil).Once()
	token, got, err := authService.Login(ctx, "test@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user, got)

	claims := parseClaims(t, token)
	assert.Equal(t, user.ID, claims["user_id"])
	assert.Equal(t, user.Email, claims["email"])
	mockRepo.AssertExpectations(t)

	// wrong password
	mockRepo.On("GetByEmail", mock.Anything, "test@example.com").Return(user, nil).Once()
	_, _, err = authService.Login(ctx, "test@example.com", "wrongpassword")
	assert.True(t, errors.Is(err, services.ErrInvalidCredentials))

	// unknown email gets the same error
	mockRepo.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, notFound("user")).Once()
	_, _, err = authService.Login(ctx, "nobody@example.com", "password123")
	assert.True(t, errors.Is(err, services.ErrInvalidCredentials))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Second, nil)
	ctx := context.Background()

	user := &models.User{ID: "user-123", Email: "test@example.com", FirstName: "Old"}
	mockRepo.On("GetByID", mock.Anything, "user-123").Return(user, nil).Once()
	mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.FirstName == "New" && u.LastName == "Name"
	})).Return(nil).Once()

	token, err := authService.UpdateProfile(ctx, "user-123", "New", "Name")
	require.NoError(t, err)
	assert.Equal(t, "user-123", parseClaims(t, token)["user_id"])
	mockRepo.AssertExpectations(t)

	mockRepo.On("GetByID", mock.Anything, "missing").Return(nil, notFound("user")).Once()
	_, err = authService.UpdateProfile(ctx, "missing", "New", "Name")
	assert.True(t, errors.Is(err, repositories.ErrNotFound))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	authService := services.NewAuthService(new(MockUserRepository), testJWTSecret, time.Second, nil)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"email":   "test@example.com",
		"exp":     jwt.TimeFunc().Add(time.Hour).Unix(),
	})
	validTokenString, _ := token.SignedString([]byte(testJWTSecret))

	claims, err := authService.ValidateToken(validTokenString)
	assert.NoError(t, err)
	assert.Equal(t, "user-123", claims["user_id"])
	assert.Equal(t, "test@example.com", claims["email"])

	_, err = authService.ValidateToken("invalid.token.string")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")

	otherSecret, _ := token.SignedString([]byte("another_secret"))
	_, err = authService.ValidateToken(otherSecret)
	assert.Error(t, err)

	expiredToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"exp":     jwt.TimeFunc().Add(-time.Hour).Unix(),
	})
	expiredTokenString, _ := expiredToken.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(expiredTokenString)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")
}
