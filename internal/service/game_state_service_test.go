package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-demo/gamehub/internal/model"
	apperrors "github.com/go-demo/gamehub/internal/pkg/errors"
	"github.com/go-demo/gamehub/internal/repository"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func setupTestGameStateService(t *testing.T) (*GameStateService, *sqlx.DB) {
	t.Helper()

	dsn := "host=localhost port=5432 user=postgres password=postgres dbname=gamehub_test sslmode=disable"
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Skipf("Skipping test, could not connect to test database: %v", err)
	}

	stateRepo := repository.NewGameStateRepository(db)
	logger := zap.NewNop()

	return NewGameStateService(stateRepo, logger), db
}

func cleanupGameStateServiceTestDB(t *testing.T, db *sqlx.DB) {
	t.Helper()
	db.Exec("TRUNCATE game_states, users CASCADE")
}

func createUserForGameStateTest(t *testing.T, db *sqlx.DB, username string) *model.User {
	t.Helper()
	userRepo := repository.NewUserRepository(db)
	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashedpassword",
	}
	if err := userRepo.Create(context.Background(), user); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func TestGameStateService_SaveAndGet(t *testing.T) {
	service, db := setupTestGameStateService(t)
	defer db.Close()
	defer cleanupGameStateServiceTestDB(t, db)

	user := createUserForGameStateTest(t, db, "saver")
	ctx := context.Background()

	saved, err := service.Save(ctx, &SaveInput{
		UserID:    user.ID,
		GameID:    "tictactoe",
		SlotName:  "slot1",
		StateData: json.RawMessage(`{"turn":"X"}`),
	})
	if err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	if saved.Version != 1 {
		t.Errorf("Expected version 1, got %d", saved.Version)
	}

	found, err := service.Get(ctx, user.ID, "tictactoe", "slot1")
	if err != nil {
		t.Fatalf("Failed to get: %v", err)
	}
	if string(found.StateData) != `{"turn":"X"}` {
		t.Errorf("Unexpected state data: %s", found.StateData)
	}
}

func TestGameStateService_Save_Overwrite(t *testing.T) {
	service, db := setupTestGameStateService(t)
	defer db.Close()
	defer cleanupGameStateServiceTestDB(t, db)

	user := createUserForGameStateTest(t, db, "saver")
	ctx := context.Background()

	first, err := service.Save(ctx, &SaveInput{
		UserID:    user.ID,
		GameID:    "tictactoe",
		SlotName:  "slot1",
		StateData: json.RawMessage(`{"turn":"X"}`),
	})
	if err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	second, err := service.Save(ctx, &SaveInput{
		UserID:    user.ID,
		GameID:    "tictactoe",
		SlotName:  "slot1",
		StateData: json.RawMessage(`{"turn":"O"}`),
	})
	if err != nil {
		t.Fatalf("Failed to overwrite: %v", err)
	}

	if second.Version != first.Version+1 {
		t.Errorf("Expected version %d, got %d", first.Version+1, second.Version)
	}
}

func TestGameStateService_Get_NotFound(t *testing.T) {
	service, db := setupTestGameStateService(t)
	defer db.Close()
	defer cleanupGameStateServiceTestDB(t, db)

	user := createUserForGameStateTest(t, db, "saver")
	ctx := context.Background()

	_, err := service.Get(ctx, user.ID, "tictactoe", "missing")
	if !errors.Is(err, apperrors.ErrSaveNotFound) {
		t.Errorf("Expected ErrSaveNotFound, got %v", err)
	}
}

func TestGameStateService_List(t *testing.T) {
	service, db := setupTestGameStateService(t)
	defer db.Close()
	defer cleanupGameStateServiceTestDB(t, db)

	user := createUserForGameStateTest(t, db, "saver")
	ctx := context.Background()

	for _, slot := range []string{"slot1", "slot2"} {
		if _, err := service.Save(ctx, &SaveInput{
			UserID:    user.ID,
			GameID:    "tictactoe",
			SlotName:  slot,
			StateData: json.RawMessage(`{}`),
		}); err != nil {
			t.Fatalf("Failed to save slot %s: %v", slot, err)
		}
	}

	states, err := service.List(ctx, user.ID, "tictactoe")
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(states) != 2 {
		t.Errorf("Expected 2 slots, got %d", len(states))
	}
}

func TestGameStateService_Delete(t *testing.T) {
	service, db := setupTestGameStateService(t)
	defer db.Close()
	defer cleanupGameStateServiceTestDB(t, db)

	user := createUserForGameStateTest(t, db, "saver")
	ctx := context.Background()

	if _, err := service.Save(ctx, &SaveInput{
		UserID:    user.ID,
		GameID:    "tictactoe",
		SlotName:  "slot1",
		StateData: json.RawMessage(`{}`),
	}); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	if err := service.Delete(ctx, user.ID, "tictactoe", "slot1"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}

	err := service.Delete(ctx, user.ID, "tictactoe", "slot1")
	if !errors.Is(err, apperrors.ErrSaveNotFound) {
		t.Errorf("Expected ErrSaveNotFound, got %v", err)
	}
}
