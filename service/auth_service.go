package service

import (
	"context"
	"errors"

	"aurora-backend/models"
	"aurora-backend/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMissingFields      = errors.New("required fields missing")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoUpdateFields     = errors.New("no valid update fields provided")
)

// UserStore is the persistence surface the auth service needs. Implemented
// by repository.UserRepository.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update repository.ProfileUpdate) (*models.User, error)
	UpdatePhoto(ctx context.Context, id uuid.UUID, photo string) error
}

// AuthService handles account creation, login and profile maintenance
type AuthService struct {
	users  UserStore
	tokens *TokenService
}

// AuthServiceOption is a functional option for AuthService
type AuthServiceOption func(*AuthService)

// AuthWithUserStore sets the user store
func AuthWithUserStore(store UserStore) AuthServiceOption {
	return func(s *AuthService) {
		s.users = store
	}
}

// AuthWithTokenService sets the token service
func AuthWithTokenService(tokens *TokenService) AuthServiceOption {
	return func(s *AuthService) {
		s.tokens = tokens
	}
}

// NewAuthService creates a new auth service
func NewAuthService(opts ...AuthServiceOption) *AuthService {
	s := &AuthService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignupRequest represents a signup attempt
type SignupRequest struct {
	Name     string
	Email    string
	Password string
}

// Signup creates a new account with a hashed password and the placeholder
// photo. A taken email surfaces as models.ErrDuplicateEmail.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*models.User, error) {
	if s.users == nil {
		return nil, errors.New("user store not set")
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, ErrMissingFields
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Photo:        models.DefaultProfilePhoto,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// LoginRequest represents a login attempt
type LoginRequest struct {
	Email    string
	Password string
}

// LoginResult carries the issued token and the authenticated user
type LoginResult struct {
	Token string
	User  *models.User
}

// Login checks the password against the stored hash and issues a session
// token. An unknown email surfaces as models.ErrUserNotFound, a wrong
// password as ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if s.users == nil {
		return nil, errors.New("user store not set")
	}
	if s.tokens == nil {
		return nil, errors.New("token service not set")
	}
	if req.Email == "" || req.Password == "" {
		return nil, ErrMissingFields
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{Token: token, User: user}, nil
}

// UpdateProfile applies an edit to the allowed profile fields
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, update repository.ProfileUpdate) (*models.User, error) {
	if s.users == nil {
		return nil, errors.New("user store not set")
	}
	if update.Empty() {
		return nil, ErrNoUpdateFields
	}
	return s.users.UpdateProfile(ctx, userID, update)
}

// UpdatePhoto records a newly uploaded profile photo reference
func (s *AuthService) UpdatePhoto(ctx context.Context, userID uuid.UUID, photo string) error {
	if s.users == nil {
		return errors.New("user store not set")
	}
	return s.users.UpdatePhoto(ctx, userID, photo)
}
