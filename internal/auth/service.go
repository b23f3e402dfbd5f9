package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"busline/internal/shared/apperrors"
	"busline/internal/shared/config"
	"busline/internal/users"
	"busline/pkg/logger"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error)
}

type service struct {
	repo Repository
	cfg  config.JWTConfig
	log  *logger.Logger
}

func NewService(repo Repository, cfg config.JWTConfig) Service {
	return &service{
		repo: repo,
		cfg:  cfg,
		log:  logger.GetDefault().WithComponent("auth-service"),
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, apperrors.ValidationError{Msg: "email is already registered"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &users.User{
		FullName:     req.FullName,
		Email:        email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         users.RoleUser,
		Active:       true,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info("registered user", "user_id", user.ID, "email", user.Email)
	return s.issueTokens(user)
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.ForbiddenError{Msg: "invalid email or password"}
		}
		return nil, err
	}
	if !user.Active {
		return nil, apperrors.ForbiddenError{Msg: "account is disabled"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.ForbiddenError{Msg: "invalid email or password"}
	}

	return s.issueTokens(user)
}

func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error) {
	token, err := jwt.Parse(req.RefreshToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.ForbiddenError{Msg: "invalid or expired refresh token"}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["type"] != "refresh" {
		return nil, apperrors.ForbiddenError{Msg: "invalid token type"}
	}

	rawID, ok := claims["user_id"].(string)
	if !ok {
		return nil, apperrors.ForbiddenError{Msg: "invalid token claims"}
	}
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, apperrors.ForbiddenError{Msg: "invalid token claims"}
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, apperrors.ForbiddenError{Msg: "account is disabled"}
	}

	return s.issueTokens(user)
}

// issueTokens creates the access/refresh token pair for a user
func (s *service) issueTokens(user *users.User) (*TokenResponse, error) {
	now := time.Now()

	accessClaims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"role":    user.Role.String(),
		"type":    "access",
		"iat":     now.Unix(),
		"exp":     now.Add(s.cfg.JWTExpiresIn).Unix(),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshClaims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"type":    "refresh",
		"iat":     now.Unix(),
		"exp":     now.Add(s.cfg.RefreshExpiresIn).Unix(),
	}
	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.cfg.JWTExpiresIn.Seconds()),
		User:         toUserResponse(user),
	}, nil
}
