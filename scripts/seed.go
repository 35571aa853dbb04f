package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"

	"github.com/go-demo/gamehub/internal/config"
	"github.com/go-demo/gamehub/internal/model"
	"github.com/go-demo/gamehub/internal/pkg/database"
	"github.com/go-demo/gamehub/internal/pkg/roomcode"
	"github.com/go-demo/gamehub/internal/pkg/utils"
	"github.com/go-demo/gamehub/internal/repository"
	"go.uber.org/zap"
)

func main() {
	log.Println("Starting database seed...")

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	logger := zap.NewNop()
	db, err := database.NewPostgres(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	stateRepo := repository.NewGameStateRepository(db)

	// Seed users
	log.Println("Creating users...")
	users := []struct {
		username    string
		email       string
		password    string
		displayName string
	}{
		{"alice", "alice@example.com", "password123", "Alice Chen"},
		{"bob", "bob@example.com", "password123", "Bob Wang"},
		{"charlie", "charlie@example.com", "password123", "Charlie Lin"},
		{"diana", "diana@example.com", "password123", "Diana Wu"},
	}

	var createdUsers []*model.User
	for _, u := range users {
		hash, _ := utils.HashPassword(u.password)
		user := &model.User{
			Username:     u.username,
			Email:        u.email,
			PasswordHash: hash,
			DisplayName:  sql.NullString{String: u.displayName, Valid: true},
		}

		if err := userRepo.Create(ctx, user); err != nil {
			log.Printf("User %s might already exist: %v", u.username, err)
			existing, _ := userRepo.GetByUsername(ctx, u.username)
			if existing != nil {
				createdUsers = append(createdUsers, existing)
			}
		} else {
			createdUsers = append(createdUsers, user)
			log.Printf("Created user: %s", u.username)
		}
	}

	if len(createdUsers) < 2 {
		log.Println("Not enough users, skipping room creation")
		return
	}

	// Seed rooms
	log.Println("Creating rooms...")
	rooms := []struct {
		gameID     string
		maxPlayers int
		isPrivate  bool
		hostIndex  int
	}{
		{"tictactoe", 2, false, 0},
		{"word-race", 8, false, 1},
		{"card-battle", 4, true, 2},
	}

	var createdRooms []*model.Room
	for _, r := range rooms {
		if r.hostIndex >= len(createdUsers) {
			continue
		}

		code, err := roomcode.Generate()
		if err != nil {
			log.Fatalf("Failed to generate room code: %v", err)
		}

		room := &model.Room{
			Code:       code,
			GameID:     r.gameID,
			HostUserID: createdUsers[r.hostIndex].ID,
			MaxPlayers: r.maxPlayers,
			IsPrivate:  r.isPrivate,
		}

		if err := roomRepo.Create(ctx, room); err != nil {
			log.Printf("Failed to create room for %s: %v", r.gameID, err)
		} else {
			createdRooms = append(createdRooms, room)
			log.Printf("Created room %s for game %s", room.Code, r.gameID)
		}
	}

	// Join players to rooms
	log.Println("Joining players to rooms...")
	for _, room := range createdRooms {
		for _, user := range createdUsers {
			if user.ID == room.HostUserID {
				continue // Host joins at creation
			}

			if _, err := roomRepo.AddPlayer(ctx, room.Code, user.ID); err != nil {
				log.Printf("Could not add %s to room %s: %v", user.Username, room.Code, err)
			} else {
				log.Printf("Added %s to room %s", user.Username, room.Code)
			}
		}
	}

	// Seed save slots
	log.Println("Creating save slots...")
	saves := []struct {
		userIndex int
		gameID    string
		slotName  string
		state     map[string]interface{}
	}{
		{0, "tictactoe", "autosave", map[string]interface{}{"board": []string{"X", "", "O", "", "X", "", "", "", ""}, "turn": "O"}},
		{0, "word-race", "slot1", map[string]interface{}{"score": 420, "round": 3}},
		{1, "card-battle", "slot1", map[string]interface{}{"deck": []string{"dragon", "knight"}, "hp": 17}},
	}

	for _, s := range saves {
		if s.userIndex >= len(createdUsers) {
			continue
		}

		data, _ := json.Marshal(s.state)
		state := &model.GameState{
			UserID:    createdUsers[s.userIndex].ID,
			GameID:    s.gameID,
			SlotName:  s.slotName,
			StateData: data,
		}

		if err := stateRepo.Upsert(ctx, state); err != nil {
			log.Printf("Failed to save slot %s/%s: %v", s.gameID, s.slotName, err)
		} else {
			log.Printf("Saved slot %s/%s for %s", s.gameID, s.slotName, createdUsers[s.userIndex].Username)
		}
	}

	log.Println("Seed completed!")
}
