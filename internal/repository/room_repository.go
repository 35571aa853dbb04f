package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-demo/gamehub/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomCodeTaken  = errors.New("room code already taken")
	ErrRoomNotWaiting = errors.New("room is not accepting players")
	ErrRoomFull       = errors.New("room is full")
)

type RoomRepository struct {
	db *sqlx.DB
}

func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// Create inserts a new room and records the host as its first player, in one
// transaction. Returns ErrRoomCodeTaken when the code collides with a live
// room so the caller can regenerate and retry.
func (r *RoomRepository) Create(ctx context.Context, room *model.Room) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO rooms (code, game_id, host_user_id, max_players, is_private, room_data, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, status, created_at, updated_at`

	err = tx.QueryRowxContext(ctx, query,
		room.Code,
		room.GameID,
		room.HostUserID,
		room.MaxPlayers,
		room.IsPrivate,
		room.RoomData,
		room.ExpiresAt,
	).Scan(&room.ID, &room.Status, &room.CreatedAt, &room.UpdatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "rooms_code_key" {
			return ErrRoomCodeTaken
		}
		return fmt.Errorf("failed to create room: %w", err)
	}

	memberQuery := `INSERT INTO room_players (room_id, user_id, slot) VALUES ($1, $2, 1)`
	if _, err := tx.ExecContext(ctx, memberQuery, room.ID, room.HostUserID); err != nil {
		return fmt.Errorf("failed to add host as player: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit room creation: %w", err)
	}

	return nil
}

// GetByCode retrieves a room by its canonical (upper-case) code
func (r *RoomRepository) GetByCode(ctx context.Context, code string) (*model.Room, error) {
	var room model.Room
	query := `SELECT * FROM rooms WHERE code = $1`

	if err := r.db.GetContext(ctx, &room, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to get room by code: %w", err)
	}

	return &room, nil
}

// AddPlayer joins userID to the room identified by code. The capacity check
// and the membership insert run under a row lock on the room, so two
// concurrent joins for the last open seat cannot both succeed. Joining a
// room the user is already in is a no-op success.
func (r *RoomRepository) AddPlayer(ctx context.Context, code, userID string) (*model.Room, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var room model.Room
	lockQuery := `SELECT * FROM rooms WHERE code = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &room, lockQuery, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to lock room: %w", err)
	}

	if room.Status != model.RoomStatusWaiting {
		return nil, ErrRoomNotWaiting
	}

	var isPlayer bool
	existsQuery := `SELECT EXISTS(SELECT 1 FROM room_players WHERE room_id = $1 AND user_id = $2)`
	if err := tx.GetContext(ctx, &isPlayer, existsQuery, room.ID, userID); err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	if !isPlayer {
		var count int
		countQuery := `SELECT COUNT(*) FROM room_players WHERE room_id = $1`
		if err := tx.GetContext(ctx, &count, countQuery, room.ID); err != nil {
			return nil, fmt.Errorf("failed to count players: %w", err)
		}

		if count >= room.MaxPlayers {
			return nil, ErrRoomFull
		}

		// ON CONFLICT is the backstop for the unique (room_id, user_id)
		// constraint: a duplicate join counts as being in the room, and a
		// constraint error here would abort the whole transaction.
		insertQuery := `
			INSERT INTO room_players (room_id, user_id, slot)
			VALUES ($1, $2, $3)
			ON CONFLICT (room_id, user_id) DO NOTHING`
		if _, err := tx.ExecContext(ctx, insertQuery, room.ID, userID, count+1); err != nil {
			return nil, fmt.Errorf("failed to add player: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit join: %w", err)
	}

	return &room, nil
}

// StartGame transitions a room from waiting to playing. Returns
// ErrRoomNotWaiting when the room exists but has already left the waiting
// state, keeping the transition monotonic.
func (r *RoomRepository) StartGame(ctx context.Context, roomID string) error {
	query := `
		UPDATE rooms
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3`

	result, err := r.db.ExecContext(ctx, query, roomID, model.RoomStatusPlaying, model.RoomStatusWaiting)
	if err != nil {
		return fmt.Errorf("failed to start game: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrRoomNotWaiting
	}

	return nil
}

// FinishGame transitions a room from playing to finished
func (r *RoomRepository) FinishGame(ctx context.Context, roomID string) error {
	query := `
		UPDATE rooms
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3`

	result, err := r.db.ExecContext(ctx, query, roomID, model.RoomStatusFinished, model.RoomStatusPlaying)
	if err != nil {
		return fmt.Errorf("failed to finish game: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrRoomNotWaiting
	}

	return nil
}

// ListPlayerIDs returns the user ids of a room's players ordered by join time
func (r *RoomRepository) ListPlayerIDs(ctx context.Context, roomID string) ([]string, error) {
	query := `SELECT user_id FROM room_players WHERE room_id = $1 ORDER BY joined_at, slot`

	var playerIDs []string
	if err := r.db.SelectContext(ctx, &playerIDs, query, roomID); err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	return playerIDs, nil
}

// IsPlayer checks if user belongs to the room
func (r *RoomRepository) IsPlayer(ctx context.Context, roomID, userID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM room_players WHERE room_id = $1 AND user_id = $2)`

	if err := r.db.GetContext(ctx, &exists, query, roomID, userID); err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}

	return exists, nil
}

// CountPlayers counts a room's players
func (r *RoomRepository) CountPlayers(ctx context.Context, roomID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM room_players WHERE room_id = $1`

	if err := r.db.GetContext(ctx, &count, query, roomID); err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}

	return count, nil
}

// Delete removes a room and, via cascade, its memberships
func (r *RoomRepository) Delete(ctx context.Context, roomID string) error {
	query := `DELETE FROM rooms WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, roomID)
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrRoomNotFound
	}

	return nil
}
