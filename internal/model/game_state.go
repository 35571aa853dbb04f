package model

import (
	"encoding/json"
	"time"
)

// GameState is one cloud save slot: an opaque JSON blob per
// (user, game, slot name).
type GameState struct {
	ID        string          `db:"id" json:"id"`
	UserID    string          `db:"user_id" json:"user_id"`
	GameID    string          `db:"game_id" json:"game_id"`
	SlotName  string          `db:"slot_name" json:"slot_name"`
	StateData json.RawMessage `db:"state_data" json:"state_data"`
	Version   int             `db:"version" json:"version"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}
