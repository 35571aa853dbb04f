package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-demo/gamehub/internal/model"
	apperrors "github.com/go-demo/gamehub/internal/pkg/errors"
	"github.com/go-demo/gamehub/internal/pkg/roomcode"
	"github.com/go-demo/gamehub/internal/repository"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func setupTestRoomService(t *testing.T) (*RoomService, *sqlx.DB) {
	t.Helper()

	dsn := "host=localhost port=5432 user=postgres password=postgres dbname=gamehub_test sslmode=disable"
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Skipf("Skipping test, could not connect to test database: %v", err)
	}

	roomRepo := repository.NewRoomRepository(db)
	logger := zap.NewNop()

	service := NewRoomService(roomRepo, logger)
	return service, db
}

func cleanupRoomServiceTestDB(t *testing.T, db *sqlx.DB) {
	t.Helper()
	db.Exec("TRUNCATE rooms, room_players, users CASCADE")
}

func createUserForRoomServiceTest(t *testing.T, db *sqlx.DB, username string) *model.User {
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

func TestRoomService_Create(t *testing.T) {
	service, db := setupTestRoomService(t)
	defer db.Close()
	defer cleanupRoomServiceTestDB(t, db)

	host := createUserForRoomServiceTest(t, db, "host")
	ctx := context.Background()

	room, err := service.Create(ctx, &CreateRoomInput{
		GameID:     "tictactoe",
		HostUserID: host.ID,
		MaxPlayers: 2,
	})

	if err != nil {
		t.Fatalf("Failed to create room: %v", err)
	}

	if room.ID == "" {
		t.Error("Expected room ID to be set")
	}
	if room.Status != model.RoomStatusWaiting {
		t.Errorf("Expected status waiting, got %s", room.Status)
	}

	// 代碼必須符合格式且已正規化
	if !roomcode.Valid(room.Code) {
		t.Errorf("Expected valid room code, got %s", room.Code)
	}
	if room.Code != strings.ToUpper(room.Code) {
		t.Errorf("Expected canonical code, got %s", room.Code)
	}

	// 房主是第一位玩家
	if len(room.PlayerIDs) != 1 || room.PlayerIDs[0] != host.ID {
		t.Errorf("Expected host to be the only player, got %v", room.PlayerIDs)
	}
}

func TestRoomService_Create_UniqueCodes(t *testing.T) {
	service, db := setupTestRoomService(t)
	defer db.Close()
	defer cleanupRoomServiceTestDB(t, db)

	host := createUserForRoomServiceTest(t, db, "host")
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		room, err := service.Create(ctx, &CreateRoomInput{
			GameID:     "tictactoe",
			HostUserID: host.ID,
			MaxPlayers: 4,
		})
		if err != nil {
			t.Fatalf("Failed to create room: %v", err)
		}
		if seen[room.Code] {
			t.Errorf("Duplicate room code generated: %s", room.Code)
		}
		seen[room.Code] = true
	}
}

func TestRoomService_Join(t *testing.T) {
	service, db := setupTestRoomService(t)
	defer db.Close()
	defer cleanupRoomServiceTestDB(t, db)

	host := createUserForRoomServiceTest(t, db, "host")
	player := createUserForRoomServiceTest(t, db, "player")
	ctx := context.Background()

	room, err := service.Create(ctx, &CreateRoomInput{
		GameID:     "tictactoe",
		HostUserID: host.ID,
		MaxPlayers: 2,
	})
	if err != nil {
		t.Fatalf("Failed to create room: %v", err)
	}

	joined, err := service.Join(ctx, room.Code, player.ID)
	if err != nil {
		t.Fatalf("Failed to join room: %v", err)
	}

	if len(joined.PlayerIDs) != 2 {
		t.Errorf("Expected 2 players, got %d", len(joined.PlayerIDs))
	}
}

func TestRoomService_Join_CaseInsensitive(t *testing.T) {
	service, db := setupTestRoomService(t)
	defer db.Close()
	defer cleanupRoomServiceTestDB(t, db)

	host := createUserForRoomServiceTest(t, db, "host")
	player := createUserForRoomServiceTest(t, db, "player")
	ctx := context.Background()

	room, err := service.Create(ctx, &CreateRoomInput{
		GameID:     "tictactoe",
		HostUserID: host.ID,
		MaxPlayers: 4,
	})
	if err != nil {
		t.Fatalf("Failed to create room: %v", err)
	}

	// 小寫加空白的代碼也應能加入
	joined, err := service.Join(ctx, "  "+strings.ToLower(room.Code)+"  ", player.ID)
	if err != nil {
		t.Fatalf("Failed to join with lowercase code: %v", err)
	}
	if joined.ID != room.ID {
		t.Errorf("Expected room %s, got %s", room.ID, joined.ID)
	}
}

func TestRoomService_Join_Rejoin(t *testing.T) {
	service, db := setupTestRoomService(t)
	defer db.Close()
	defer cleanupRoomServiceTestDB(t, db)

	host := createUserForRoomServiceTest(t, db, "host")
	player := createUserForRoomServiceTest(t, db, "player")
	ctx := context.Background()

	room, _ := service.Create(ctx, &CreateRoomInput{
		GameID:     "tictactoe",
		HostUserID: host.ID,
		MaxPlayers: 2,
	})

	if _, err := service.Join(ctx, room.Code, player.ID); err != nil {
		t.Fatalf("Failed to join room: %v", err)
	}

	// 重新加入應成功且不佔用新位子
	rejoined, err := service.Join(ctx, room.Code, player.ID)
	if err != nil {
		t.Fatalf("Expected rejoin to succeed, got %v", err)
	}
	if len(rejoined.PlayerIDs) != 2 {
		t.Errorf("Expected 2 players after rejoin, got %d", len(rejoined.PlayerIDs))
	}
}

func TestRoomService_Join_NotFound(t *testing.T) {
	service, db := setupTestRoomService(t)
	defer db.Close()
	defer cleanupRoomServiceTestDB(t, db)

	player := createUserForRoomServiceTest(t, db, "player")
	ctx := context.Background()

	_, err := service.Join(ctx, "ZZZZZZ", player.ID)
	if !errors.Is(err, apperrors.ErrRoomNotFound) {
		t.Errorf("Expected ErrRoomNotFound, got %v", err)
	}
}

func TestRoomService_Join_Full(t *testing.T) {
	service, db := setupTestRoomService(t)
	defer db.Close()
	defer cleanupRoomServiceTestDB(t, db)

	host := createUserForRoomServiceTest(t, db, "host")
	second := createUserForRoomServiceTest(t, db, "second")
	third := createUserForRoomServiceTest(t, db, "third")
	ctx := context.Background()

	room, _ := service.Create(ctx, &CreateRoomInput{
		GameID:     "tictactoe",
		HostUserID: host.ID,
		MaxPlayers: 2,
	})

	if _, err := service.Join(ctx, room.Code, second.ID); err != nil {
		t.Fatalf("Failed to join room: %v", err)
	}

	_, err := service.Join(ctx, room.Code, third.ID)
	if !errors.Is(err, apperrors.ErrRoomFull) {
		t.Errorf("Expected ErrRoomFull, got %v", err)
	}
}

func TestRoomService_Join_AfterStart(t *testing.T) {
	service, db := setupTestRoomService(t)
	defer db.Close()
	defer cleanupRoomServiceTestDB(t, db)

	host := createUserForRoomServiceTest(t, db, "host")
	player := createUserForRoomServiceTest(t, db, "player")
	ctx := context.Background()

	room, _ := service.Create(ctx, &CreateRoomInput{
		GameID:     "tictactoe",
		HostUserID: host.ID,
		MaxPlayers: 4,
	})

	if _, err := service.Start(ctx, room.Code, host.ID); err != nil {
		t.Fatalf("Failed to start game: %v", err)
	}

	_, err := service.Join(ctx, room.Code, player.ID)
	if !errors.Is(err, apperrors.ErrRoomNotJoinable) {
		t.Errorf("Expected ErrRoomNotJoinable, got %v", err)
	}
}

func TestRoomService_Start(t *testing.T) {
	service, db := setupTestRoomService(t)
	defer db.Close()
	defer cleanupRoomServiceTestDB(t, db)

	host := createUserForRoomServiceTest(t, db, "host")
	ctx := context.Background()

	room, _ := service.Create(ctx, &CreateRoomInput{
		GameID:     "tictactoe",
		HostUserID: host.ID,
		MaxPlayers: 4,
	})

	started, err := service.Start(ctx, room.Code, host.ID)
	if err != nil {
		t.Fatalf("Failed to start game: %v", err)
	}
	if started.Status != model.RoomStatusPlaying {
		t.Errorf("Expected status playing, got %s", started.Status)
	}
}

func TestRoomService_Start_NotHost(t *testing.T) {
	service, db := setupTestRoomService(t)
	defer db.Close()
	defer cleanupRoomServiceTestDB(t, db)

	host := createUserForRoomServiceTest(t, db, "host")
	player := createUserForRoomServiceTest(t, db, "player")
	ctx := context.Background()

	room, _ := service.Create(ctx, &CreateRoomInput{
		GameID:     "tictactoe",
		HostUserID: host.ID,
		MaxPlayers: 4,
	})

	if _, err := service.Join(ctx, room.Code, player.ID); err != nil {
		t.Fatalf("Failed to join room: %v", err)
	}

	// 非房主不能開始遊戲
	_, err := service.Start(ctx, room.Code, player.ID)
	if !errors.Is(err, apperrors.ErrNotRoomHost) {
		t.Errorf("Expected ErrNotRoomHost, got %v", err)
	}
}

func TestRoomService_Start_Twice(t *testing.T) {
	service, db := setupTestRoomService(t)
	defer db.Close()
	defer cleanupRoomServiceTestDB(t, db)

	host := createUserForRoomServiceTest(t, db, "host")
	ctx := context.Background()

	room, _ := service.Create(ctx, &CreateRoomInput{
		GameID:     "tictactoe",
		HostUserID: host.ID,
		MaxPlayers: 4,
	})

	if _, err := service.Start(ctx, room.Code, host.ID); err != nil {
		t.Fatalf("Failed to start game: %v", err)
	}

	_, err := service.Start(ctx, room.Code, host.ID)
	if !errors.Is(err, apperrors.ErrRoomNotJoinable) {
		t.Errorf("Expected ErrRoomNotJoinable on second start, got %v", err)
	}
}

func TestRoomService_GetByCode(t *testing.T) {
	service, db := setupTestRoomService(t)
	defer db.Close()
	defer cleanupRoomServiceTestDB(t, db)

	host := createUserForRoomServiceTest(t, db, "host")
	ctx := context.Background()

	room, _ := service.Create(ctx, &CreateRoomInput{
		GameID:     "tictactoe",
		HostUserID: host.ID,
		MaxPlayers: 4,
	})

	found, err := service.GetByCode(ctx, strings.ToLower(room.Code))
	if err != nil {
		t.Fatalf("Failed to get room: %v", err)
	}
	if found.ID != room.ID {
		t.Errorf("Expected room %s, got %s", room.ID, found.ID)
	}

	_, err = service.GetByCode(ctx, "ZZZZZZ")
	if !errors.Is(err, apperrors.ErrRoomNotFound) {
		t.Errorf("Expected ErrRoomNotFound, got %v", err)
	}
}

func TestRoomService_IsPlayer(t *testing.T) {
	service, db := setupTestRoomService(t)
	defer db.Close()
	defer cleanupRoomServiceTestDB(t, db)

	host := createUserForRoomServiceTest(t, db, "host")
	outsider := createUserForRoomServiceTest(t, db, "outsider")
	ctx := context.Background()

	room, _ := service.Create(ctx, &CreateRoomInput{
		GameID:     "tictactoe",
		HostUserID: host.ID,
		MaxPlayers: 4,
	})

	isPlayer, err := service.IsPlayer(ctx, room.ID, host.ID)
	if err != nil {
		t.Fatalf("Failed to check membership: %v", err)
	}
	if !isPlayer {
		t.Error("Expected host to be a player")
	}

	isPlayer, err = service.IsPlayer(ctx, room.ID, outsider.ID)
	if err != nil {
		t.Fatalf("Failed to check membership: %v", err)
	}
	if isPlayer {
		t.Error("Expected outsider not to be a player")
	}
}
