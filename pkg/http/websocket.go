package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"speechwell-server/pkg/metrics"
	"speechwell-server/pkg/webhook"
)

// Client represents a connected WebSocket client
type Client struct {
	hub            *ResultHub
	conn           *websocket.Conn
	send           chan []byte
	logger         *logrus.Logger
	conversationID string // If client subscribes to a specific conversation
}

// ResultHub manages WebSocket clients and broadcasts analyzed session
// results to them as they arrive. It implements webhook.ResultListener
// so it can be registered directly on the processor.
type ResultHub struct {
	logger                  *logrus.Logger
	clients                 map[*Client]bool
	conversationSubscribers map[string]map[*Client]bool
	broadcast               chan *webhook.SessionResult
	register                chan *Client
	unregister              chan *Client
	mutex                   sync.RWMutex
}

// WebSocketUpgrader configures the WebSocket connection
var WebSocketUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all connections
		return true
	},
}

// NewResultHub creates a new result hub
func NewResultHub(logger *logrus.Logger) *ResultHub {
	return &ResultHub{
		logger:                  logger,
		clients:                 make(map[*Client]bool),
		conversationSubscribers: make(map[string]map[*Client]bool),
		broadcast:               make(chan *webhook.SessionResult, 16),
		register:                make(chan *Client),
		unregister:              make(chan *Client),
	}
}

// Run starts the result hub
func (h *ResultHub) Run(ctx context.Context) {
	h.logger.Info("Starting WebSocket result hub")

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("Shutting down WebSocket result hub")
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true

			if client.conversationID != "" {
				if _, exists := h.conversationSubscribers[client.conversationID]; !exists {
					h.conversationSubscribers[client.conversationID] = make(map[*Client]bool)
				}
				h.conversationSubscribers[client.conversationID][client] = true
				h.logger.WithField("conversation_id", client.conversationID).
					Info("Client subscribed to specific conversation")
			}

			h.setClientGauge(len(h.clients))
			h.mutex.Unlock()
			h.logger.Info("Client connected to WebSocket")

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)

				if client.conversationID != "" {
					if subscribers, exists := h.conversationSubscribers[client.conversationID]; exists {
						delete(subscribers, client)
						if len(subscribers) == 0 {
							delete(h.conversationSubscribers, client.conversationID)
						}
					}
				}

				h.logger.Info("Client disconnected from WebSocket")
			}
			h.setClientGauge(len(h.clients))
			h.mutex.Unlock()

		case result := <-h.broadcast:
			data, err := json.Marshal(result)
			if err != nil {
				h.logger.WithError(err).Error("Failed to marshal session result")
				continue
			}

			h.mutex.Lock()

			// Send to subscribers of this specific conversation
			if subscribers, exists := h.conversationSubscribers[result.ConversationID]; exists {
				for client := range subscribers {
					select {
					case client.send <- data:
					default:
						close(client.send)
						delete(h.clients, client)
						delete(subscribers, client)
					}
				}
			}

			// Also broadcast to clients that want all results
			for client := range h.clients {
				if client.conversationID != "" {
					continue
				}

				select {
				case client.send <- data:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}

			h.mutex.Unlock()
		}
	}
}

// OnSessionResult implements the webhook.ResultListener interface
func (h *ResultHub) OnSessionResult(result webhook.SessionResult) {
	select {
	case h.broadcast <- &result:
	default:
		h.logger.Warn("Result hub broadcast queue full, dropping message")
	}
}

// ServeWs handles WebSocket requests from clients
func (h *ResultHub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := WebSocketUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Error("Failed to upgrade connection to WebSocket")
		return
	}

	// Optional per-conversation subscription
	conversationID := r.URL.Query().Get("conversation_id")

	client := &Client{
		hub:            h,
		conn:           conn,
		send:           make(chan []byte, 256),
		logger:         h.logger,
		conversationID: conversationID,
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// ClientCount returns the number of connected clients
func (h *ResultHub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// IsRunning returns true if the hub is running
func (h *ResultHub) IsRunning() bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients) >= 0 // Always true if hub exists
}

func (h *ResultHub) setClientGauge(count int) {
	if metrics.IsMetricsEnabled() && metrics.GetRegistry() != nil {
		metrics.WSClientsConnected.Set(float64(count))
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(60 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			// Send ping to keep connection alive
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains the connection so pings and close frames are handled
// and unregisters the client when it goes away.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
