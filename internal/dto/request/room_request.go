package request

import "encoding/json"

// CreateRoomRequest represents a room creation request
type CreateRoomRequest struct {
	GameID     string          `json:"game_id" binding:"required,max=100"`
	MaxPlayers int             `json:"max_players,omitempty" binding:"omitempty,min=1,max=100"` // default: 4
	IsPrivate  bool            `json:"is_private,omitempty"`
	RoomData   json.RawMessage `json:"room_data,omitempty"`
}

// JoinRoomRequest represents a join-by-code request
type JoinRoomRequest struct {
	Code string `json:"code" binding:"required,min=4,max=12"`
}
