package model

import (
	"database/sql"
	"encoding/json"
	"time"
)

type RoomStatus string

const (
	RoomStatusWaiting  RoomStatus = "waiting"
	RoomStatusPlaying  RoomStatus = "playing"
	RoomStatusFinished RoomStatus = "finished"
)

// Room is a matchmaking session keyed by a short human-entered code.
// Status transitions are monotonic: waiting -> playing -> finished.
type Room struct {
	ID         string          `db:"id" json:"id"`
	Code       string          `db:"code" json:"code"`
	GameID     string          `db:"game_id" json:"game_id"`
	HostUserID string          `db:"host_user_id" json:"host_user_id"`
	MaxPlayers int             `db:"max_players" json:"max_players"`
	IsPrivate  bool            `db:"is_private" json:"is_private"`
	Status     RoomStatus      `db:"status" json:"status"`
	RoomData   json.RawMessage `db:"room_data" json:"room_data,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
	ExpiresAt  sql.NullTime    `db:"expires_at" json:"expires_at,omitempty"`
}

// IsWaiting checks if the room still accepts players
func (r *Room) IsWaiting() bool {
	return r.Status == RoomStatusWaiting
}

// IsHost checks if userID is the room's host
func (r *Room) IsHost(userID string) bool {
	return r.HostUserID == userID
}

// RoomPlayer is one row per (room, user) membership. The pair is unique;
// rejoining never duplicates it.
type RoomPlayer struct {
	ID       string        `db:"id" json:"id"`
	RoomID   string        `db:"room_id" json:"room_id"`
	UserID   string        `db:"user_id" json:"user_id"`
	Slot     sql.NullInt64 `db:"slot" json:"slot,omitempty"`
	JoinedAt time.Time     `db:"joined_at" json:"joined_at"`
}

// RoomWithPlayers bundles a room with its member user ids, ordered by join time.
type RoomWithPlayers struct {
	Room
	PlayerIDs []string `json:"player_ids"`
}
