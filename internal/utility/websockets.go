package utility

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Simple Hub to hold active connections: Map[UserHandle] -> Connection.
// One live socket per handle; a reconnect replaces the old entry.
var (
	Clients   = make(map[string]*websocket.Conn)
	ClientsMu sync.Mutex // Mutex to prevent race conditions
	Upgrader  = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		// Allow CORS for development
		CheckOrigin: func(r *http.Request) bool { return true },
	}
)

// Register a new client connection
func RegisterClient(userHandle string, conn *websocket.Conn) {
	ClientsMu.Lock()
	defer ClientsMu.Unlock()
	if old, ok := Clients[userHandle]; ok {
		old.Close()
	}
	Clients[userHandle] = conn
	log.Info().Str("user_handle", userHandle).Msg("WebSocket Client Connected")
}

// Unregister a client (when they close the tab)
func UnregisterClient(userHandle string) {
	ClientsMu.Lock()
	defer ClientsMu.Unlock()
	if _, ok := Clients[userHandle]; ok {
		delete(Clients, userHandle)
		log.Info().Str("user_handle", userHandle).Msg("WebSocket Client Disconnected")
	}
}

// PushToUser sends a payload to a user's live socket, if one is open.
// A dead socket is closed and dropped from the hub.
func PushToUser(userHandle string, payload []byte) {
	ClientsMu.Lock()
	defer ClientsMu.Unlock()

	if conn, ok := Clients[userHandle]; ok {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Error().Err(err).Msg("Failed to send WS message, removing client")
			conn.Close()
			delete(Clients, userHandle)
		}
	}
}
