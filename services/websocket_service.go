package services

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"spoolman/spoolman/broker"
	"spoolman/spoolman/config"
	"spoolman/spoolman/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const maxMessageSize = 4096

// WebSocketServiceInterface defines the operations provided by the WebSocket service
type WebSocketServiceInterface interface {
	HandleConnection(c *gin.Context, topic broker.Topic)
	ConnectionCount() int
	Stop()
}

// Registry is the subscription side of the notifier.
type Registry interface {
	Subscribe(topic broker.Topic, sub broker.Subscriber) error
	Unsubscribe(topic broker.Topic, sub broker.Subscriber) bool
}

type WebSocketConfig struct {
	PingInterval time.Duration
	PongWait     time.Duration
	WriteWait    time.Duration
	SendBuffer   int
}

func WebSocketConfigFrom(cfg config.Config) WebSocketConfig {
	return WebSocketConfig{
		PingInterval: cfg.WSPingInterval,
		PongWait:     cfg.WSPongWait,
		WriteWait:    cfg.WSWriteWait,
		SendBuffer:   cfg.WSSendBuffer,
	}
}

// Client represents a connected WebSocket client subscribed to one topic
type Client struct {
	id    string
	topic broker.Topic
	hub   *WebSocketService
	conn  *websocket.Conn
	send  chan []byte

	mu     sync.Mutex
	closed bool
}

// WebSocketService upgrades requests and keeps track of live clients
type WebSocketService struct {
	registry Registry
	upgrader websocket.Upgrader
	cfg      WebSocketConfig

	clients      map[string]*Client
	clientsMutex sync.RWMutex
	isRunning    bool
}

var healthyMessage, _ = json.Marshal(models.HealthyMessage)

func NewWebSocketService(registry Registry, cfg WebSocketConfig) *WebSocketService {
	return &WebSocketService{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origins are checked by the CORS middleware.
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		cfg:       cfg,
		clients:   make(map[string]*Client),
		isRunning: true,
	}
}

// HandleConnection upgrades the request and subscribes the new client to topic.
// The pumps run on their own goroutines; the handler returns immediately.
func (ws *WebSocketService) HandleConnection(c *gin.Context, topic broker.Topic) {
	ws.clientsMutex.RLock()
	running := ws.isRunning
	ws.clientsMutex.RUnlock()
	if !running {
		c.JSON(http.StatusServiceUnavailable, models.Message{Message: "Server is shutting down"})
		return
	}

	conn, err := ws.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// The upgrader has already replied with an HTTP error.
		log.Warn().Err(err).Stringer("topic", topic).Msg("Error upgrading to WebSocket")
		return
	}

	client := &Client{
		id:    uuid.New().String(),
		topic: topic,
		hub:   ws,
		conn:  conn,
		send:  make(chan []byte, ws.cfg.SendBuffer),
	}

	if err := ws.registry.Subscribe(topic, client); err != nil {
		log.Warn().Err(err).Str("client", client.id).Msg("Rejecting WebSocket client")
		deadline := time.Now().Add(ws.cfg.WriteWait)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), deadline)
		conn.Close()
		return
	}

	ws.clientsMutex.Lock()
	if !ws.isRunning {
		ws.clientsMutex.Unlock()
		ws.registry.Unsubscribe(topic, client)
		conn.Close()
		return
	}
	ws.clients[client.id] = client
	ws.clientsMutex.Unlock()

	log.Info().Str("client", client.id).Stringer("topic", topic).Msg("Client connected")

	go client.writePump()
	go client.readPump()
}

func (ws *WebSocketService) ConnectionCount() int {
	ws.clientsMutex.RLock()
	defer ws.clientsMutex.RUnlock()
	return len(ws.clients)
}

// Stop closes every client. New connections are refused afterwards.
func (ws *WebSocketService) Stop() {
	ws.clientsMutex.Lock()
	if !ws.isRunning {
		ws.clientsMutex.Unlock()
		return
	}
	ws.isRunning = false
	clients := make([]*Client, 0, len(ws.clients))
	for _, client := range ws.clients {
		clients = append(clients, client)
	}
	ws.clientsMutex.Unlock()

	for _, client := range clients {
		client.teardown()
	}
	log.Info().Int("clients", len(clients)).Msg("WebSocket service stopped")
}

func (ws *WebSocketService) removeClient(c *Client) bool {
	ws.clientsMutex.Lock()
	defer ws.clientsMutex.Unlock()
	if _, ok := ws.clients[c.id]; !ok {
		return false
	}
	delete(ws.clients, c.id)
	return true
}

func (c *Client) ID() string {
	return c.id
}

// Deliver queues data for the write pump without blocking.
func (c *Client) Deliver(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.Wrap(ErrWebSocketConnection, "client is closed")
	}
	select {
	case c.send <- data:
		return nil
	default:
		return errors.Wrap(ErrWebSocketConnection, "send buffer is full")
	}
}

// Close closes the send channel once. The write pump then sends a close
// frame and releases the socket.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	close(c.send)
	return nil
}

func (c *Client) teardown() {
	if c.hub != nil {
		c.hub.registry.Unsubscribe(c.topic, c)
		if c.hub.removeClient(c) {
			log.Info().Str("client", c.id).Stringer("topic", c.topic).Msg("Client disconnected")
		}
	}
	c.Close()
}

// readPump answers any text from the client with a liveness message and
// notices when the peer goes away.
func (c *Client) readPump() {
	defer c.teardown()

	pongWait := c.hub.cfg.PongWait
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("client", c.id).Msg("Error reading from WebSocket")
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		if len(bytes.TrimSpace(message)) == 0 {
			continue
		}
		if err := c.Deliver(healthyMessage); err != nil {
			log.Debug().Err(err).Str("client", c.id).Msg("Dropping liveness reply")
			return
		}
	}
}

// writePump sends queued messages one frame each and pings the peer.
func (c *Client) writePump() {
	writeWait := c.hub.cfg.WriteWait
	ticker := time.NewTicker(c.hub.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.teardown()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Debug().Err(err).Str("client", c.id).Msg("WebSocket write failed")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Str("client", c.id).Msg("WebSocket ping failed")
				return
			}
		}
	}
}
