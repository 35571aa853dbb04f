package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-demo/gamehub/internal/model"
	apperrors "github.com/go-demo/gamehub/internal/pkg/errors"
	"github.com/go-demo/gamehub/internal/pkg/roomcode"
	"github.com/go-demo/gamehub/internal/repository"
	"go.uber.org/zap"
)

// maxCodeAttempts bounds room-code regeneration on collisions. Running out
// is an operational fault (the code space is nearly full), not a client error.
const maxCodeAttempts = 10

type RoomService struct {
	roomRepo *repository.RoomRepository
	logger   *zap.Logger
}

func NewRoomService(roomRepo *repository.RoomRepository, logger *zap.Logger) *RoomService {
	return &RoomService{
		roomRepo: roomRepo,
		logger:   logger,
	}
}

// CreateRoomInput represents room creation input
type CreateRoomInput struct {
	GameID     string
	HostUserID string
	MaxPlayers int
	IsPrivate  bool
	RoomData   json.RawMessage
}

// Create creates a new room with a fresh join code and the host as first
// player. Code collisions are retried up to maxCodeAttempts.
func (s *RoomService) Create(ctx context.Context, input *CreateRoomInput) (*model.RoomWithPlayers, error) {
	if input.MaxPlayers <= 0 {
		input.MaxPlayers = 4
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := roomcode.Generate()
		if err != nil {
			s.logger.Error("Failed to generate room code", zap.Error(err))
			return nil, apperrors.ErrInternal
		}

		room := &model.Room{
			Code:       code,
			GameID:     input.GameID,
			HostUserID: input.HostUserID,
			MaxPlayers: input.MaxPlayers,
			IsPrivate:  input.IsPrivate,
			RoomData:   input.RoomData,
		}

		err = s.roomRepo.Create(ctx, room)
		if err == nil {
			s.logger.Info("Room created",
				zap.String("room_id", room.ID),
				zap.String("code", room.Code),
				zap.String("game_id", room.GameID),
				zap.String("host_user_id", room.HostUserID),
			)
			return &model.RoomWithPlayers{
				Room:      *room,
				PlayerIDs: []string{input.HostUserID},
			}, nil
		}

		if errors.Is(err, repository.ErrRoomCodeTaken) {
			s.logger.Debug("Room code collision, retrying",
				zap.String("code", room.Code),
				zap.Int("attempt", attempt+1),
			)
			continue
		}

		s.logger.Error("Failed to create room", zap.Error(err))
		return nil, apperrors.ErrInternal
	}

	s.logger.Error("Room code generation exhausted",
		zap.Int("attempts", maxCodeAttempts),
		zap.String("game_id", input.GameID),
	)
	return nil, apperrors.ErrCodeExhausted
}

// Join adds userID to the room identified by code. The lookup is
// case-insensitive; joining a room the user is already in succeeds without
// mutation.
func (s *RoomService) Join(ctx context.Context, code, userID string) (*model.RoomWithPlayers, error) {
	code = roomcode.Canonicalize(code)

	room, err := s.roomRepo.AddPlayer(ctx, code, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRoomNotFound):
			return nil, apperrors.ErrRoomNotFound
		case errors.Is(err, repository.ErrRoomNotWaiting):
			return nil, apperrors.ErrRoomNotJoinable
		case errors.Is(err, repository.ErrRoomFull):
			return nil, apperrors.ErrRoomFull
		default:
			s.logger.Error("Failed to join room", zap.String("code", code), zap.Error(err))
			return nil, apperrors.ErrInternal
		}
	}

	playerIDs, err := s.roomRepo.ListPlayerIDs(ctx, room.ID)
	if err != nil {
		s.logger.Error("Failed to list room players", zap.String("room_id", room.ID), zap.Error(err))
		return nil, apperrors.ErrInternal
	}

	s.logger.Info("Player joined room",
		zap.String("room_id", room.ID),
		zap.String("code", room.Code),
		zap.String("user_id", userID),
		zap.Int("players", len(playerIDs)),
	)

	return &model.RoomWithPlayers{Room: *room, PlayerIDs: playerIDs}, nil
}

// GetByCode retrieves a room by code, case-insensitively
func (s *RoomService) GetByCode(ctx context.Context, code string) (*model.RoomWithPlayers, error) {
	code = roomcode.Canonicalize(code)

	room, err := s.roomRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, apperrors.ErrRoomNotFound
		}
		s.logger.Error("Failed to get room", zap.String("code", code), zap.Error(err))
		return nil, apperrors.ErrInternal
	}

	playerIDs, err := s.roomRepo.ListPlayerIDs(ctx, room.ID)
	if err != nil {
		s.logger.Error("Failed to list room players", zap.String("room_id", room.ID), zap.Error(err))
		return nil, apperrors.ErrInternal
	}

	return &model.RoomWithPlayers{Room: *room, PlayerIDs: playerIDs}, nil
}

// Start transitions the room to playing. Only the host may start; a room
// that already left the waiting state is rejected rather than silently
// restarted.
func (s *RoomService) Start(ctx context.Context, code, userID string) (*model.RoomWithPlayers, error) {
	code = roomcode.Canonicalize(code)

	room, err := s.roomRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, apperrors.ErrRoomNotFound
		}
		s.logger.Error("Failed to get room", zap.String("code", code), zap.Error(err))
		return nil, apperrors.ErrInternal
	}

	if !room.IsHost(userID) {
		return nil, apperrors.ErrNotRoomHost
	}

	if err := s.roomRepo.StartGame(ctx, room.ID); err != nil {
		if errors.Is(err, repository.ErrRoomNotWaiting) {
			return nil, apperrors.ErrRoomNotJoinable
		}
		s.logger.Error("Failed to start game", zap.String("room_id", room.ID), zap.Error(err))
		return nil, apperrors.ErrInternal
	}

	room.Status = model.RoomStatusPlaying

	playerIDs, err := s.roomRepo.ListPlayerIDs(ctx, room.ID)
	if err != nil {
		s.logger.Error("Failed to list room players", zap.String("room_id", room.ID), zap.Error(err))
		return nil, apperrors.ErrInternal
	}

	s.logger.Info("Game started",
		zap.String("room_id", room.ID),
		zap.String("code", room.Code),
		zap.String("host_user_id", userID),
	)

	return &model.RoomWithPlayers{Room: *room, PlayerIDs: playerIDs}, nil
}

// IsPlayer checks membership for the relay's authorization gate
func (s *RoomService) IsPlayer(ctx context.Context, roomID, userID string) (bool, error) {
	isPlayer, err := s.roomRepo.IsPlayer(ctx, roomID, userID)
	if err != nil {
		s.logger.Error("Failed to check room membership", zap.String("room_id", roomID), zap.Error(err))
		return false, apperrors.ErrInternal
	}
	return isPlayer, nil
}
