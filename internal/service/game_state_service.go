package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-demo/gamehub/internal/model"
	apperrors "github.com/go-demo/gamehub/internal/pkg/errors"
	"github.com/go-demo/gamehub/internal/repository"
	"go.uber.org/zap"
)

type GameStateService struct {
	stateRepo *repository.GameStateRepository
	logger    *zap.Logger
}

func NewGameStateService(stateRepo *repository.GameStateRepository, logger *zap.Logger) *GameStateService {
	return &GameStateService{
		stateRepo: stateRepo,
		logger:    logger,
	}
}

// List returns all save slots for a user and game
func (s *GameStateService) List(ctx context.Context, userID, gameID string) ([]*model.GameState, error) {
	states, err := s.stateRepo.ListByUserAndGame(ctx, userID, gameID)
	if err != nil {
		s.logger.Error("Failed to list game states", zap.Error(err))
		return nil, apperrors.ErrInternal
	}
	return states, nil
}

// Get returns a single save slot
func (s *GameStateService) Get(ctx context.Context, userID, gameID, slotName string) (*model.GameState, error) {
	state, err := s.stateRepo.Get(ctx, userID, gameID, slotName)
	if err != nil {
		if errors.Is(err, repository.ErrGameStateNotFound) {
			return nil, apperrors.ErrSaveNotFound
		}
		s.logger.Error("Failed to get game state", zap.Error(err))
		return nil, apperrors.ErrInternal
	}
	return state, nil
}

// SaveInput represents a save-slot write
type SaveInput struct {
	UserID    string
	GameID    string
	SlotName  string
	StateData json.RawMessage
}

// Save creates or overwrites a save slot
func (s *GameStateService) Save(ctx context.Context, input *SaveInput) (*model.GameState, error) {
	state := &model.GameState{
		UserID:    input.UserID,
		GameID:    input.GameID,
		SlotName:  input.SlotName,
		StateData: input.StateData,
	}

	if err := s.stateRepo.Upsert(ctx, state); err != nil {
		s.logger.Error("Failed to save game state", zap.Error(err))
		return nil, apperrors.ErrInternal
	}

	s.logger.Debug("Game state saved",
		zap.String("user_id", input.UserID),
		zap.String("game_id", input.GameID),
		zap.String("slot_name", input.SlotName),
	)

	return state, nil
}

// Delete removes a save slot
func (s *GameStateService) Delete(ctx context.Context, userID, gameID, slotName string) error {
	if err := s.stateRepo.Delete(ctx, userID, gameID, slotName); err != nil {
		if errors.Is(err, repository.ErrGameStateNotFound) {
			return apperrors.ErrSaveNotFound
		}
		s.logger.Error("Failed to delete game state", zap.Error(err))
		return apperrors.ErrInternal
	}
	return nil
}
