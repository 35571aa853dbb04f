package request

import "encoding/json"

// SaveGameStateRequest represents a save slot write request
type SaveGameStateRequest struct {
	StateData json.RawMessage `json:"state_data" binding:"required"`
}
