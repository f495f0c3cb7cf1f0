package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"giftlink/internal/logger"
	"giftlink/internal/models"
	"giftlink/internal/repositories"
)

var (
	// ErrEmailTaken is returned by Register when the email is already stored.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration
	timeout    time.Duration
	log        *logger.Logger
}

// NewAuthService creates a new AuthService. Tokens are valid for 24 hours.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, queryTimeout time.Duration, log *logger.Logger) *AuthService {
	if log == nil {
		log = logger.NewNop()
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour,
		timeout:    queryTimeout,
		log:        log.Named("auth"),
	}
}

// Register hashes the password, stores the user and returns a signed token.
func (s *AuthService) Register(ctx context.Context, user *models.User) (string, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	_, err := s.userRepo.GetByEmail(ctx, user.Email)
	switch {
	case err == nil:
		return "", fmt.Errorf("%w: %s", ErrEmailTaken, user.Email)
	case !errors.Is(err, repositories.ErrNotFound):
		return "", fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)
	user.CreatedAt = time.Now().UTC()

	if err := s.userRepo.Create(ctx, user); err != nil {
		// A concurrent registration can win between the lookup and the insert.
		if errors.Is(err, repositories.ErrDuplicate) {
			return "", fmt.Errorf("%w: %s", ErrEmailTaken, user.Email)
		}
		return "", fmt.Errorf("failed to register user: %w", err)
	}

	s.log.WithContext(ctx).Info("user registered", zap.String("user_id", user.ID))
	return s.generateToken(user)
}

// Login authenticates a user and returns a JWT token together with the user.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// UpdateProfile changes the first and last name of the user and issues a
// fresh token.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, firstName, lastName string) (string, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	user.FirstName = firstName
	user.LastName = lastName
	if err := s.userRepo.Update(ctx, user); err != nil {
		return "", fmt.Errorf("failed to update user %s: %w", userID, err)
	}
	return s.generateToken(user)
}

func (s *AuthService) generateToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     now.Add(s.tokenDurat).Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
