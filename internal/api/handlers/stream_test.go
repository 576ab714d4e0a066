package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/daxreyes/bushfire-beacon/internal/notify"
)

func dialStream(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	return conn
}

func TestStreamDeliversPublishedEvents(t *testing.T) {
	notifier := notify.New(notify.DefaultBuffer, zerolog.Nop())
	handler := NewStreamHandler(notifier, zerolog.Nop())

	server := httptest.NewServer(http.HandlerFunc(handler.Serve))
	defer server.Close()

	conn := dialStream(t, server)
	defer conn.Close()

	// Wait for the subscriber to register before publishing.
	deadline := time.Now().Add(time.Second)
	for notifier.Len() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	notifier.Publish("update:facility", map[string]string{"code": "F100"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event notify.Event
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	if event.Name != "update:facility" {
		t.Errorf("event name = %q, want %q", event.Name, "update:facility")
	}
}

func TestStreamUnsubscribesOnDisconnect(t *testing.T) {
	notifier := notify.New(notify.DefaultBuffer, zerolog.Nop())
	handler := NewStreamHandler(notifier, zerolog.Nop())

	server := httptest.NewServer(http.HandlerFunc(handler.Serve))
	defer server.Close()

	conn := dialStream(t, server)

	deadline := time.Now().Add(time.Second)
	for notifier.Len() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	conn.Close()

	deadline = time.Now().Add(2 * time.Second)
	for notifier.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("subscriber still registered after disconnect, len = %d", notifier.Len())
		}
		time.Sleep(5 * time.Millisecond)
	}
}
