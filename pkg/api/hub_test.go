package api

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestHubBroadcast(t *testing.T) {
	h := NewHub([]string{"http://dash.example"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(http.HandlerFunc(h.HandleConnect))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for h.Clients() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	h.Broadcast(Event{Type: "activity", Payload: map[string]string{"message": "delivered"}})
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got struct {
		Type    string            `json:"type"`
		Payload map[string]string `json:"payload"`
	}
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatal(err)
	}
	if got.Type != "activity" || got.Payload["message"] != "delivered" {
		t.Errorf("event = %+v", got)
	}
}

func TestHubOrigins(t *testing.T) {
	h := NewHub([]string{"http://dash.example"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://dash.example", true},
		{"http://localhost:5173", true},
		{"http://127.0.0.1:3001", true},
		{"http://evil.example", false},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/gateway/activity/stream", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if got := h.upgrader.CheckOrigin(r); got != tt.want {
				t.Errorf("CheckOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}
