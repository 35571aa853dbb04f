package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/go-demo/gamehub/internal/model"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func setupRoomTestDBIsolated(t *testing.T) (*sqlx.DB, string) {
	t.Helper()
	return SetupIsolatedTestDB(t)
}

func cleanupRoomTestByPrefix(t *testing.T, db *sqlx.DB, prefix string) {
	t.Helper()
	CleanupTestDataByPrefix(t, db, prefix)
}

func TestRoomRepository_Create(t *testing.T) {
	db, prefix := setupRoomTestDBIsolated(t)
	defer db.Close()
	defer cleanupRoomTestByPrefix(t, db, prefix)

	host := CreateIsolatedTestUser(t, db, prefix, "host")
	repo := NewRoomRepository(db)
	ctx := context.Background()

	room := &model.Room{
		Code:       "TESTAB",
		GameID:     prefix + "_game",
		HostUserID: host.ID,
		MaxPlayers: 4,
	}

	err := repo.Create(ctx, room)
	if err != nil {
		t.Fatalf("Failed to create room: %v", err)
	}

	if room.ID == "" {
		t.Error("Expected room ID to be set")
	}
	if room.Status != model.RoomStatusWaiting {
		t.Errorf("Expected status waiting, got %s", room.Status)
	}
	if room.CreatedAt.IsZero() {
		t.Error("Expected created_at to be set")
	}

	// 房主應自動成為第一位玩家
	isPlayer, err := repo.IsPlayer(ctx, room.ID, host.ID)
	if err != nil {
		t.Fatalf("Failed to check membership: %v", err)
	}
	if !isPlayer {
		t.Error("Expected host to be a player")
	}
}

func TestRoomRepository_Create_DuplicateCode(t *testing.T) {
	db, prefix := setupRoomTestDBIsolated(t)
	defer db.Close()
	defer cleanupRoomTestByPrefix(t, db, prefix)

	host := CreateIsolatedTestUser(t, db, prefix, "host")
	repo := NewRoomRepository(db)
	ctx := context.Background()

	first := CreateIsolatedTestRoom(t, db, prefix, host, 4)

	dup := &model.Room{
		Code:       first.Code,
		GameID:     prefix + "_game",
		HostUserID: host.ID,
		MaxPlayers: 4,
	}

	err := repo.Create(ctx, dup)
	if !errors.Is(err, ErrRoomCodeTaken) {
		t.Errorf("Expected ErrRoomCodeTaken, got %v", err)
	}
}

func TestRoomRepository_GetByCode(t *testing.T) {
	db, prefix := setupRoomTestDBIsolated(t)
	defer db.Close()
	defer cleanupRoomTestByPrefix(t, db, prefix)

	host := CreateIsolatedTestUser(t, db, prefix, "host")
	repo := NewRoomRepository(db)
	ctx := context.Background()

	room := CreateIsolatedTestRoom(t, db, prefix, host, 4)

	found, err := repo.GetByCode(ctx, room.Code)
	if err != nil {
		t.Fatalf("Failed to get room: %v", err)
	}
	if found.ID != room.ID {
		t.Errorf("Expected room ID %s, got %s", room.ID, found.ID)
	}
	if found.GameID != room.GameID {
		t.Errorf("Expected game ID %s, got %s", room.GameID, found.GameID)
	}

	// Test not found
	_, err = repo.GetByCode(ctx, "ZZZZZZ")
	if !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("Expected ErrRoomNotFound, got %v", err)
	}
}

func TestRoomRepository_AddPlayer(t *testing.T) {
	db, prefix := setupRoomTestDBIsolated(t)
	defer db.Close()
	defer cleanupRoomTestByPrefix(t, db, prefix)

	host := CreateIsolatedTestUser(t, db, prefix, "host")
	player := CreateIsolatedTestUser(t, db, prefix, "player")
	repo := NewRoomRepository(db)
	ctx := context.Background()

	room := CreateIsolatedTestRoom(t, db, prefix, host, 4)

	joined, err := repo.AddPlayer(ctx, room.Code, player.ID)
	if err != nil {
		t.Fatalf("Failed to add player: %v", err)
	}
	if joined.ID != room.ID {
		t.Errorf("Expected room ID %s, got %s", room.ID, joined.ID)
	}

	count, err := repo.CountPlayers(ctx, room.ID)
	if err != nil {
		t.Fatalf("Failed to count players: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 players, got %d", count)
	}
}

func TestRoomRepository_AddPlayer_Idempotent(t *testing.T) {
	db, prefix := setupRoomTestDBIsolated(t)
	defer db.Close()
	defer cleanupRoomTestByPrefix(t, db, prefix)

	host := CreateIsolatedTestUser(t, db, prefix, "host")
	player := CreateIsolatedTestUser(t, db, prefix, "player")
	repo := NewRoomRepository(db)
	ctx := context.Background()

	room := CreateIsolatedTestRoom(t, db, prefix, host, 4)

	if _, err := repo.AddPlayer(ctx, room.Code, player.ID); err != nil {
		t.Fatalf("Failed to add player: %v", err)
	}

	// 重複加入不應報錯也不應重複佔位
	if _, err := repo.AddPlayer(ctx, room.Code, player.ID); err != nil {
		t.Fatalf("Expected rejoin to succeed, got %v", err)
	}

	count, err := repo.CountPlayers(ctx, room.ID)
	if err != nil {
		t.Fatalf("Failed to count players: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 players after rejoin, got %d", count)
	}
}

func TestRoomRepository_AddPlayer_Full(t *testing.T) {
	db, prefix := setupRoomTestDBIsolated(t)
	defer db.Close()
	defer cleanupRoomTestByPrefix(t, db, prefix)

	host := CreateIsolatedTestUser(t, db, prefix, "host")
	second := CreateIsolatedTestUser(t, db, prefix, "second")
	third := CreateIsolatedTestUser(t, db, prefix, "third")
	repo := NewRoomRepository(db)
	ctx := context.Background()

	room := CreateIsolatedTestRoom(t, db, prefix, host, 2)

	if _, err := repo.AddPlayer(ctx, room.Code, second.ID); err != nil {
		t.Fatalf("Failed to add second player: %v", err)
	}

	_, err := repo.AddPlayer(ctx, room.Code, third.ID)
	if !errors.Is(err, ErrRoomFull) {
		t.Errorf("Expected ErrRoomFull, got %v", err)
	}
}

func TestRoomRepository_AddPlayer_NotWaiting(t *testing.T) {
	db, prefix := setupRoomTestDBIsolated(t)
	defer db.Close()
	defer cleanupRoomTestByPrefix(t, db, prefix)

	host := CreateIsolatedTestUser(t, db, prefix, "host")
	player := CreateIsolatedTestUser(t, db, prefix, "player")
	repo := NewRoomRepository(db)
	ctx := context.Background()

	room := CreateIsolatedTestRoom(t, db, prefix, host, 4)

	if err := repo.StartGame(ctx, room.ID); err != nil {
		t.Fatalf("Failed to start game: %v", err)
	}

	_, err := repo.AddPlayer(ctx, room.Code, player.ID)
	if !errors.Is(err, ErrRoomNotWaiting) {
		t.Errorf("Expected ErrRoomNotWaiting, got %v", err)
	}
}

func TestRoomRepository_AddPlayer_LastSeatConcurrent(t *testing.T) {
	db, prefix := setupRoomTestDBIsolated(t)
	defer db.Close()
	defer cleanupRoomTestByPrefix(t, db, prefix)

	host := CreateIsolatedTestUser(t, db, prefix, "host")
	repo := NewRoomRepository(db)
	ctx := context.Background()

	room := CreateIsolatedTestRoom(t, db, prefix, host, 2)

	// 兩位玩家同時搶最後一個位子，只能有一位成功
	players := []*model.User{
		CreateIsolatedTestUser(t, db, prefix, "racer1"),
		CreateIsolatedTestUser(t, db, prefix, "racer2"),
	}

	results := make([]error, len(players))
	var wg sync.WaitGroup
	for i, p := range players {
		wg.Add(1)
		go func(i int, userID string) {
			defer wg.Done()
			_, results[i] = repo.AddPlayer(ctx, room.Code, userID)
		}(i, p.ID)
	}
	wg.Wait()

	succeeded := 0
	full := 0
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrRoomFull):
			full++
		default:
			t.Errorf("Unexpected join error: %v", err)
		}
	}

	if succeeded != 1 || full != 1 {
		t.Errorf("Expected exactly one winner, got %d success / %d full", succeeded, full)
	}

	count, err := repo.CountPlayers(ctx, room.ID)
	if err != nil {
		t.Fatalf("Failed to count players: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 players, got %d", count)
	}
}

func TestRoomRepository_StartGame(t *testing.T) {
	db, prefix := setupRoomTestDBIsolated(t)
	defer db.Close()
	defer cleanupRoomTestByPrefix(t, db, prefix)

	host := CreateIsolatedTestUser(t, db, prefix, "host")
	repo := NewRoomRepository(db)
	ctx := context.Background()

	room := CreateIsolatedTestRoom(t, db, prefix, host, 4)

	if err := repo.StartGame(ctx, room.ID); err != nil {
		t.Fatalf("Failed to start game: %v", err)
	}

	found, err := repo.GetByCode(ctx, room.Code)
	if err != nil {
		t.Fatalf("Failed to get room: %v", err)
	}
	if found.Status != model.RoomStatusPlaying {
		t.Errorf("Expected status playing, got %s", found.Status)
	}

	// 重複開始應被拒絕
	err = repo.StartGame(ctx, room.ID)
	if !errors.Is(err, ErrRoomNotWaiting) {
		t.Errorf("Expected ErrRoomNotWaiting, got %v", err)
	}
}

func TestRoomRepository_FinishGame(t *testing.T) {
	db, prefix := setupRoomTestDBIsolated(t)
	defer db.Close()
	defer cleanupRoomTestByPrefix(t, db, prefix)

	host := CreateIsolatedTestUser(t, db, prefix, "host")
	repo := NewRoomRepository(db)
	ctx := context.Background()

	room := CreateIsolatedTestRoom(t, db, prefix, host, 4)

	if err := repo.StartGame(ctx, room.ID); err != nil {
		t.Fatalf("Failed to start game: %v", err)
	}
	if err := repo.FinishGame(ctx, room.ID); err != nil {
		t.Fatalf("Failed to finish game: %v", err)
	}

	found, err := repo.GetByCode(ctx, room.Code)
	if err != nil {
		t.Fatalf("Failed to get room: %v", err)
	}
	if found.Status != model.RoomStatusFinished {
		t.Errorf("Expected status finished, got %s", found.Status)
	}
}

func TestRoomRepository_ListPlayerIDs(t *testing.T) {
	db, prefix := setupRoomTestDBIsolated(t)
	defer db.Close()
	defer cleanupRoomTestByPrefix(t, db, prefix)

	host := CreateIsolatedTestUser(t, db, prefix, "host")
	second := CreateIsolatedTestUser(t, db, prefix, "second")
	repo := NewRoomRepository(db)
	ctx := context.Background()

	room := CreateIsolatedTestRoom(t, db, prefix, host, 4)

	if _, err := repo.AddPlayer(ctx, room.Code, second.ID); err != nil {
		t.Fatalf("Failed to add player: %v", err)
	}

	ids, err := repo.ListPlayerIDs(ctx, room.ID)
	if err != nil {
		t.Fatalf("Failed to list players: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("Expected 2 players, got %d", len(ids))
	}
	// 房主先加入，應排在最前
	if ids[0] != host.ID {
		t.Errorf("Expected host first, got %s", ids[0])
	}
}

func TestRoomRepository_Delete(t *testing.T) {
	db, prefix := setupRoomTestDBIsolated(t)
	defer db.Close()
	defer cleanupRoomTestByPrefix(t, db, prefix)

	host := CreateIsolatedTestUser(t, db, prefix, "host")
	repo := NewRoomRepository(db)
	ctx := context.Background()

	room := CreateIsolatedTestRoom(t, db, prefix, host, 4)

	if err := repo.Delete(ctx, room.ID); err != nil {
		t.Fatalf("Failed to delete room: %v", err)
	}

	_, err := repo.GetByCode(ctx, room.Code)
	if !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("Expected ErrRoomNotFound, got %v", err)
	}
}
