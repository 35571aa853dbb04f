package response

import (
	"encoding/json"
	"time"

	"github.com/go-demo/gamehub/internal/model"
)

// GameStateResponse represents a save slot response
type GameStateResponse struct {
	ID        string          `json:"id"`
	GameID    string          `json:"game_id"`
	SlotName  string          `json:"slot_name"`
	StateData json.RawMessage `json:"state_data"`
	Version   int             `json:"version"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

// NewGameStateResponse creates a save slot response from model
func NewGameStateResponse(s *model.GameState) *GameStateResponse {
	return &GameStateResponse{
		ID:        s.ID,
		GameID:    s.GameID,
		SlotName:  s.SlotName,
		StateData: s.StateData,
		Version:   s.Version,
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
		UpdatedAt: s.UpdatedAt.Format(time.RFC3339),
	}
}

// GameStateListResponse represents the save slots of one game
type GameStateListResponse struct {
	GameID string               `json:"game_id"`
	Slots  []*GameStateResponse `json:"slots"`
}

// NewGameStateListResponse creates a save slot list response
func NewGameStateListResponse(gameID string, states []*model.GameState) *GameStateListResponse {
	slots := make([]*GameStateResponse, len(states))
	for i, s := range states {
		slots[i] = NewGameStateResponse(s)
	}
	return &GameStateListResponse{
		GameID: gameID,
		Slots:  slots,
	}
}
