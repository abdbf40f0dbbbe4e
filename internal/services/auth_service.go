package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mockview/backend/internal/models"
	pgrepo "github.com/mockview/backend/internal/repositories/postgres"
	"github.com/mockview/backend/internal/utils"
)

type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

type authService struct {
	users    pgrepo.UserRepository
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthService(users pgrepo.UserRepository, secret string, tokenTTL time.Duration) AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &authService{users: users, secret: []byte(secret), tokenTTL: tokenTTL}
}

func (s *authService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	const op = "AuthService.Register"

	if name == "" || email == "" || password == "" {
		return nil, utils.E(utils.CodeValidation, op, "name, email, and password are required", nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, utils.E(utils.CodeValidation, op, "email already registered", nil)
	} else if !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to check email", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to hash password", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:        uuid.NewString(),
		Email:     email,
		Password:  hash,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		Status:    models.StatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create user", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to sign token", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	const op = "AuthService.Login"

	if email == "" || password == "" {
		return nil, utils.E(utils.CodeValidation, op, "email and password are required", nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeUnauthorized, op, "invalid email or password", nil)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load user", err)
	}
	if err := utils.CheckPassword(user.Password, password); err != nil {
		return nil, utils.E(utils.CodeUnauthorized, op, "invalid email or password", nil)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to sign token", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *authService) issueToken(user *models.User) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
