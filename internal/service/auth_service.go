package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-demo/gamehub/internal/model"
	apperrors "github.com/go-demo/gamehub/internal/pkg/errors"
	"github.com/go-demo/gamehub/internal/pkg/utils"
	"github.com/go-demo/gamehub/internal/repository"
	"go.uber.org/zap"
)

type AuthService struct {
	userRepo   *repository.UserRepository
	jwtManager *utils.JWTManager
	logger     *zap.Logger
}

func NewAuthService(
	userRepo *repository.UserRepository,
	jwtManager *utils.JWTManager,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		logger:     logger,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
}

// Register creates a new user and returns the user with a token pair
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*model.User, *utils.TokenPair, error) {
	passwordHash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, nil, apperrors.ErrValidation.WithDetails(err.Error())
	}

	user := &model.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: passwordHash,
	}
	if input.DisplayName != "" {
		user.DisplayName = sql.NullString{String: input.DisplayName, Valid: true}
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameExists):
			return nil, nil, apperrors.ErrUsernameTaken
		case errors.Is(err, repository.ErrEmailExists):
			return nil, nil, apperrors.ErrEmailTaken
		default:
			s.logger.Error("Failed to create user", zap.Error(err))
			return nil, nil, apperrors.ErrInternal
		}
	}

	tokens, err := s.jwtManager.GenerateTokenPair(user.ID, user.Username)
	if err != nil {
		s.logger.Error("Failed to generate tokens", zap.Error(err))
		return nil, nil, apperrors.ErrInternal
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username),
	)

	return user, tokens, nil
}

// Login authenticates a user by username and password
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.User, *utils.TokenPair, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil, apperrors.ErrInvalidCredentials
		}
		s.logger.Error("Failed to get user", zap.Error(err))
		return nil, nil, apperrors.ErrInternal
	}

	if !utils.CheckPassword(password, user.PasswordHash) {
		return nil, nil, apperrors.ErrInvalidCredentials
	}

	tokens, err := s.jwtManager.GenerateTokenPair(user.ID, user.Username)
	if err != nil {
		s.logger.Error("Failed to generate tokens", zap.Error(err))
		return nil, nil, apperrors.ErrInternal
	}

	s.logger.Info("User logged in",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username),
	)

	return user, tokens, nil
}

// Refresh exchanges a refresh token for a new token pair
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*utils.TokenPair, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, utils.ErrExpiredToken) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	// Re-check the user still exists before minting new tokens
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		s.logger.Error("Failed to get user", zap.Error(err))
		return nil, apperrors.ErrInternal
	}

	tokens, err := s.jwtManager.GenerateTokenPair(user.ID, user.Username)
	if err != nil {
		s.logger.Error("Failed to generate tokens", zap.Error(err))
		return nil, apperrors.ErrInternal
	}

	return tokens, nil
}

// GetMe returns the authenticated user's record
func (s *AuthService) GetMe(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		s.logger.Error("Failed to get user", zap.Error(err))
		return nil, apperrors.ErrInternal
	}
	return user, nil
}
