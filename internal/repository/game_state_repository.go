package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-demo/gamehub/internal/model"
	"github.com/jmoiron/sqlx"
)

var ErrGameStateNotFound = errors.New("game state not found")

type GameStateRepository struct {
	db *sqlx.DB
}

func NewGameStateRepository(db *sqlx.DB) *GameStateRepository {
	return &GameStateRepository{db: db}
}

// ListByUserAndGame lists all save slots for a user and game
func (r *GameStateRepository) ListByUserAndGame(ctx context.Context, userID, gameID string) ([]*model.GameState, error) {
	query := `
		SELECT * FROM game_states
		WHERE user_id = $1 AND game_id = $2
		ORDER BY slot_name`

	var states []*model.GameState
	if err := r.db.SelectContext(ctx, &states, query, userID, gameID); err != nil {
		return nil, fmt.Errorf("failed to list game states: %w", err)
	}

	return states, nil
}

// Get retrieves a specific save slot
func (r *GameStateRepository) Get(ctx context.Context, userID, gameID, slotName string) (*model.GameState, error) {
	var state model.GameState
	query := `SELECT * FROM game_states WHERE user_id = $1 AND game_id = $2 AND slot_name = $3`

	if err := r.db.GetContext(ctx, &state, query, userID, gameID, slotName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameStateNotFound
		}
		return nil, fmt.Errorf("failed to get game state: %w", err)
	}

	return &state, nil
}

// Upsert creates a save slot or overwrites an existing one
func (r *GameStateRepository) Upsert(ctx context.Context, state *model.GameState) error {
	query := `
		INSERT INTO game_states (user_id, game_id, slot_name, state_data, version)
		VALUES ($1, $2, $3, $4, 1)
		ON CONFLICT (user_id, game_id, slot_name)
		DO UPDATE SET state_data = EXCLUDED.state_data, version = game_states.version + 1, updated_at = NOW()
		RETURNING id, version, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		state.UserID,
		state.GameID,
		state.SlotName,
		state.StateData,
	).Scan(&state.ID, &state.Version, &state.CreatedAt, &state.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert game state: %w", err)
	}

	return nil
}

// Delete removes a save slot
func (r *GameStateRepository) Delete(ctx context.Context, userID, gameID, slotName string) error {
	query := `DELETE FROM game_states WHERE user_id = $1 AND game_id = $2 AND slot_name = $3`

	result, err := r.db.ExecContext(ctx, query, userID, gameID, slotName)
	if err != nil {
		return fmt.Errorf("failed to delete game state: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrGameStateNotFound
	}

	return nil
}
