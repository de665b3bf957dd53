package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTelegramClient_Send(t *testing.T) {
	var gotPath string
	var gotPayload map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": map[string]any{}})
	}))
	defer srv.Close()

	c := NewTelegramClient(TelegramConfig{Token: "test-token", BaseURL: srv.URL})
	if err := c.Send(context.Background(), 12345, "hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if gotPath != "/bottest-token/sendMessage" {
		t.Errorf("request path = %q", gotPath)
	}
	if gotPayload["chat_id"] != float64(12345) {
		t.Errorf("chat_id = %v, want 12345", gotPayload["chat_id"])
	}
	if gotPayload["text"] != "hello" {
		t.Errorf("text = %v, want hello", gotPayload["text"])
	}
}

func TestTelegramClient_SendAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":          false,
			"description": "Forbidden: bot was blocked by the user",
		})
	}))
	defer srv.Close()

	c := NewTelegramClient(TelegramConfig{Token: "t", BaseURL: srv.URL})
	err := c.Send(context.Background(), 1, "hello")
	if !errors.Is(err, ErrDelivery) {
		t.Errorf("Send error = %v, want ErrDelivery", err)
	}
}

func TestTelegramClient_SendUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewTelegramClient(TelegramConfig{Token: "t", BaseURL: srv.URL})
	if err := c.Send(context.Background(), 1, "hello"); !errors.Is(err, ErrDelivery) {
		t.Errorf("Send error = %v, want ErrDelivery", err)
	}
}

func TestTelegramClient_GetUpdates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bott/getUpdates" {
			t.Errorf("request path = %q", r.URL.Path)
		}
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		if payload["offset"] != float64(7) {
			t.Errorf("offset = %v, want 7", payload["offset"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"result": []map[string]any{
				{
					"update_id": 8,
					"message": map[string]any{
						"message_id": 1,
						"from":       map[string]any{"id": 42, "username": "alice"},
						"chat":       map[string]any{"id": 42},
						"text":       "/subscribe",
					},
				},
			},
		})
	}))
	defer srv.Close()

	c := NewTelegramClient(TelegramConfig{Token: "t", BaseURL: srv.URL})
	updates, err := c.GetUpdates(context.Background(), 7, 0)
	if err != nil {
		t.Fatalf("GetUpdates: %v", err)
	}
	if len(updates) != 1 {
		t.Fatalf("got %d updates, want 1", len(updates))
	}
	u := updates[0]
	if u.UpdateID != 8 || u.Message == nil || u.Message.Chat.ID != 42 || u.Message.Text != "/subscribe" {
		t.Errorf("unexpected update: %+v", u)
	}
	if u.Message.From == nil || u.Message.From.Username != "alice" {
		t.Errorf("unexpected sender: %+v", u.Message.From)
	}
}
