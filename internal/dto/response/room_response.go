package response

import (
	"encoding/json"
	"time"

	"github.com/go-demo/gamehub/internal/model"
)

// RoomResponse represents a room response
type RoomResponse struct {
	ID         string          `json:"id"`
	Code       string          `json:"code"`
	GameID     string          `json:"game_id"`
	HostUserID string          `json:"host_user_id"`
	MaxPlayers int             `json:"max_players"`
	IsPrivate  bool            `json:"is_private"`
	Status     string          `json:"status"`
	RoomData   json.RawMessage `json:"room_data,omitempty"`
	PlayerIDs  []string        `json:"player_ids"`
	CreatedAt  string          `json:"created_at"`
	ExpiresAt  string          `json:"expires_at,omitempty"`
}

// NewRoomResponse creates a room response from model
func NewRoomResponse(room *model.RoomWithPlayers) *RoomResponse {
	resp := &RoomResponse{
		ID:         room.ID,
		Code:       room.Code,
		GameID:     room.GameID,
		HostUserID: room.HostUserID,
		MaxPlayers: room.MaxPlayers,
		IsPrivate:  room.IsPrivate,
		Status:     string(room.Status),
		RoomData:   room.RoomData,
		PlayerIDs:  room.PlayerIDs,
		CreatedAt:  room.CreatedAt.Format(time.RFC3339),
	}
	if resp.PlayerIDs == nil {
		resp.PlayerIDs = []string{}
	}
	if room.ExpiresAt.Valid {
		resp.ExpiresAt = room.ExpiresAt.Time.Format(time.RFC3339)
	}
	return resp
}
