package ws

import (
	"encoding/json"
	"testing"
)

func TestNewPeerMessage(t *testing.T) {
	payload := json.RawMessage(`{"move":"e4"}`)
	event := NewPeerMessage("user-123", payload)

	if event.Type != EventTypeMessage {
		t.Errorf("Expected type %s, got %s", EventTypeMessage, event.Type)
	}
	if event.From != "user-123" {
		t.Errorf("Expected from 'user-123', got '%s'", event.From)
	}

	data, err := event.Encode()
	if err != nil {
		t.Fatalf("Failed to encode event: %v", err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to decode event: %v", err)
	}

	// 原始負載應原封不動地轉發
	if string(decoded["data"]) != `{"move":"e4"}` {
		t.Errorf("Expected payload to pass through untouched, got %s", decoded["data"])
	}
}

func TestNewGameStartedEvent(t *testing.T) {
	event := NewGameStartedEvent()

	if event.Type != EventTypeGameStarted {
		t.Errorf("Expected type %s, got %s", EventTypeGameStarted, event.Type)
	}

	data, err := event.Encode()
	if err != nil {
		t.Fatalf("Failed to encode event: %v", err)
	}

	// 沒有 from 與 data 時不應出現在 JSON 中
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to decode event: %v", err)
	}
	if _, ok := decoded["from"]; ok {
		t.Error("Expected from to be omitted")
	}
	if _, ok := decoded["data"]; ok {
		t.Error("Expected data to be omitted")
	}
	if decoded["type"] != "game_started" {
		t.Errorf("Expected type 'game_started', got %v", decoded["type"])
	}
}
