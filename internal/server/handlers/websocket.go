// internal/server/handlers/websocket.go

package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"

	"crowdbalance/internal/domain/crowd"
)

// WebSocketClient represents a connected WebSocket client watching one
// location's live scores
type WebSocketClient struct {
	conn              *websocket.Conn
	send              chan []byte
	locationID        string
	natsConn          *nats.Conn
	natsSubscriptions []*nats.Subscription
}

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 4096,
	}
}

// WebSocketUpgrader is used to upgrade HTTP connections to WebSocket
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, this should be more restrictive
		return true
	},
}

// LocationWebSocketHandler streams live score updates for one location.
// Updates are published by the tracker after each recorded event; delivery
// is best-effort fan-out, not a guaranteed real-time contract.
func LocationWebSocketHandler(natsConn *nats.Conn, tracker crowd.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locationID := chi.URLParam(r, "id")
		if locationID == "" {
			http.Error(w, "Missing location ID", http.StatusBadRequest)
			return
		}

		// Reject unknown locations before upgrading
		status, err := tracker.GetLocation(r.Context(), locationID)
		if err != nil {
			http.Error(w, "Location not found", http.StatusNotFound)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("Failed to upgrade to WebSocket: %v", err)
			return
		}

		client := &WebSocketClient{
			conn:       conn,
			send:       make(chan []byte, 256),
			locationID: locationID,
			natsConn:   natsConn,
		}

		go client.writePump()
		go client.readPump()

		if err := client.subscribeToScores(); err != nil {
			log.Printf("Failed to subscribe to score updates: %v", err)
			client.closeConnection()
			return
		}

		// Send a snapshot so the client has scores before the next report
		snapshot, _ := json.Marshal(map[string]interface{}{
			"type":        "scores",
			"location_id": locationID,
			"scores":      status.Scores,
			"time":        time.Now(),
		})
		client.send <- snapshot

		log.Printf("New WebSocket connection for location %s", locationID)
	}
}

// readPump drains the WebSocket connection. Clients only listen on this
// feed, so inbound payloads are discarded; the pump exists to run the pong
// handler and notice disconnects.
func (c *WebSocketClient) readPump() {
	config := DefaultWebSocketConfig()

	defer func() {
		c.closeConnection()
	}()

	c.conn.SetReadLimit(config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump pumps score updates to the WebSocket connection
func (c *WebSocketClient) writePump() {
	config := DefaultWebSocketConfig()
	ticker := time.NewTicker(config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued updates to the current WebSocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// subscribeToScores subscribes to the location's score update subject
func (c *WebSocketClient) subscribeToScores() error {
	sub, err := c.natsConn.Subscribe(fmt.Sprintf("crowd.location.%s.scores", c.locationID), func(msg *nats.Msg) {
		c.send <- msg.Data
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to scores: %w", err)
	}
	c.natsSubscriptions = append(c.natsSubscriptions, sub)

	return nil
}

// closeConnection closes the WebSocket connection and cleans up resources
func (c *WebSocketClient) closeConnection() {
	for _, sub := range c.natsSubscriptions {
		sub.Unsubscribe()
	}

	c.conn.Close()

	log.Printf("WebSocket connection closed for location %s", c.locationID)
}
