package services

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"sakudo-app/sakudo/broker"
	"sakudo-app/sakudo/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
	sendBufferSize = 256
)

// WebSocketServiceInterface is the live task list hub. It is also a
// broker.Publisher, so services can hand it events directly.
type WebSocketServiceInterface interface {
	broker.Publisher
	Start()
	Stop()
	HandleConnection(c *gin.Context)
	HandleBusMessage(msg broker.Message)
	ClientCount() int
}

// Client represents a connected WebSocket client
type Client struct {
	ID     string
	UserID uint
	Hub    *WebSocketService
	Conn   *websocket.Conn
	Send   chan []byte
}

// ClientMessage represents a message from the client
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type delivery struct {
	userID uint
	data   []byte
}

// WebSocketService fans task events out to the websocket clients of the
// user that owns them. Clients never see another user's events.
type WebSocketService struct {
	clients      map[string]*Client
	register     chan *Client
	unregister   chan *Client
	deliveries   chan delivery
	clientsMutex sync.RWMutex

	upgrader websocket.Upgrader

	runningMutex sync.Mutex
	isRunning    bool
	stopChan     chan struct{}
}

func NewWebSocketService() *WebSocketService {
	return &WebSocketService{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliveries: make(chan delivery, sendBufferSize),

		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origins are already checked by the CORS middleware.
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},

		stopChan: make(chan struct{}),
	}
}

func (ws *WebSocketService) Start() {
	ws.runningMutex.Lock()
	defer ws.runningMutex.Unlock()
	if ws.isRunning {
		return
	}
	ws.isRunning = true

	go ws.run()
	log.Println("WebSocket hub started")
}

func (ws *WebSocketService) Stop() {
	ws.runningMutex.Lock()
	defer ws.runningMutex.Unlock()
	if !ws.isRunning {
		return
	}
	ws.isRunning = false
	close(ws.stopChan)

	ws.clientsMutex.Lock()
	for _, client := range ws.clients {
		if client != nil && client.Conn != nil {
			client.Conn.Close()
		}
	}
	ws.clientsMutex.Unlock()

	log.Println("WebSocket hub stopped")
}

// Close lets the hub stand in for any other broker.Publisher.
func (ws *WebSocketService) Close() {
	ws.Stop()
}

func (ws *WebSocketService) ClientCount() int {
	ws.clientsMutex.RLock()
	defer ws.clientsMutex.RUnlock()
	return len(ws.clients)
}

func (ws *WebSocketService) run() {
	for {
		select {
		case <-ws.stopChan:
			return

		case client := <-ws.register:
			ws.clientsMutex.Lock()
			ws.clients[client.ID] = client
			ws.clientsMutex.Unlock()
			log.Printf("Client connected: %s (user: %d)", client.ID, client.UserID)

		case client := <-ws.unregister:
			ws.removeClient(client)

		case d := <-ws.deliveries:
			ws.deliver(d)
		}
	}
}

func (ws *WebSocketService) removeClient(client *Client) {
	ws.clientsMutex.Lock()
	defer ws.clientsMutex.Unlock()
	if _, ok := ws.clients[client.ID]; ok {
		delete(ws.clients, client.ID)
		close(client.Send)
		log.Printf("Client disconnected: %s", client.ID)
	}
}

// deliver runs on the hub goroutine only, so it may drop slow clients.
func (ws *WebSocketService) deliver(d delivery) {
	ws.clientsMutex.Lock()
	defer ws.clientsMutex.Unlock()

	sent := 0
	for id, client := range ws.clients {
		if client.UserID != d.userID {
			continue
		}
		select {
		case client.Send <- d.data:
			sent++
		default:
			log.Printf("Client %s send buffer full, removing client", id)
			close(client.Send)
			delete(ws.clients, id)
		}
	}
	if sent > 0 {
		log.Printf("Delivered event to %d client(s) of user %d", sent, d.userID)
	}
}

// Publish queues event for the clients of event.ActorID. The subject is
// ignored; routing is by owner. A full queue drops the event.
func (ws *WebSocketService) Publish(subject string, event *models.Event) error {
	if event == nil || event.ActorID == 0 {
		return nil
	}

	data, err := json.Marshal(models.NewEventMessage(event))
	if err != nil {
		return err
	}

	select {
	case ws.deliveries <- delivery{userID: event.ActorID, data: data}:
	default:
		log.Printf("WebSocket delivery queue is full, dropping %s event", event.Event)
	}
	return nil
}

// HandleBusMessage decodes an event received from the message bus and
// routes it like Publish.
func (ws *WebSocketService) HandleBusMessage(msg broker.Message) {
	var event models.Event
	if err := event.FromJSON(msg.Data); err != nil {
		log.Printf("Error parsing event from %s: %v", msg.Subject, err)
		return
	}
	if err := ws.Publish(msg.Subject, &event); err != nil {
		log.Printf("Error routing event from %s: %v", msg.Subject, err)
	}
}

// HandleConnection upgrades an authenticated request. The user id must
// already be in the gin context under "userID".
func (ws *WebSocketService) HandleConnection(c *gin.Context) {
	userID := c.GetUint("userID")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	conn, err := ws.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Error upgrading to WebSocket: %v", err)
		return
	}

	client := &Client{
		ID:     uuid.New().String(),
		UserID: userID,
		Hub:    ws,
		Conn:   conn,
		Send:   make(chan []byte, sendBufferSize),
	}

	select {
	case ws.register <- client:
	case <-ws.stopChan:
		conn.Close()
		return
	}

	go client.readPump()
	go client.writePump()
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.stopChan:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Error reading from WebSocket: %v", err)
			}
			break
		}
		c.processMessage(message)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// processMessage answers client keepalives. Clients are read-only otherwise:
// task changes go through the REST API.
func (c *Client) processMessage(msg []byte) {
	var clientMsg ClientMessage
	if err := json.Unmarshal(msg, &clientMsg); err != nil {
		c.reply(models.NewErrorMessage("malformed message"))
		return
	}

	switch clientMsg.Type {
	case "ping":
		c.reply(models.NewStandardMessage(models.PongMessage, "", nil))
	default:
		c.reply(models.NewErrorMessage("unknown message type: " + clientMsg.Type))
	}
}

func (c *Client) reply(msg *models.StandardMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error serializing reply: %v", err)
		return
	}

	// Sends happen under the read lock so they cannot race the hub closing
	// c.Send.
	c.Hub.clientsMutex.RLock()
	defer c.Hub.clientsMutex.RUnlock()
	if _, ok := c.Hub.clients[c.ID]; !ok {
		return
	}
	select {
	case c.Send <- data:
	default:
		log.Printf("Client %s send buffer full, dropping reply", c.ID)
	}
}
