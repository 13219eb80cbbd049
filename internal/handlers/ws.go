package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"supa-casino-backend/internal/middleware"
	"supa-casino-backend/internal/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type wsClient struct {
	ID     string
	UserID int
	Conn   *websocket.Conn
}

type wsMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type hubEvent struct {
	userID  int
	message *wsMessage
}

// Hub pushes settlement events to each user's open connections. A user may
// hold several connections (tabs); all of them get every event.
type Hub struct {
	clients    map[string]*wsClient
	register   chan *wsClient
	unregister chan *wsClient
	events     chan *hubEvent
	log        *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	hub := &Hub{
		clients:    make(map[string]*wsClient),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		events:     make(chan *hubEvent, 100),
		log:        log,
	}
	go hub.run()
	return hub
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client.ID] = client
			h.log.WithFields(logrus.Fields{"conn_id": client.ID, "user_id": client.UserID}).Debug("ws client registered")

		case client := <-h.unregister:
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				h.log.WithFields(logrus.Fields{"conn_id": client.ID, "user_id": client.UserID}).Debug("ws client unregistered")
			}

		case event := <-h.events:
			for _, client := range h.clients {
				if client.UserID != event.userID {
					continue
				}
				if err := client.Conn.WriteJSON(event.message); err != nil {
					h.log.WithError(err).WithField("conn_id", client.ID).Warn("ws write failed")
				}
			}
		}
	}
}

// PlaySettled implements services.Notifier.
func (h *Hub) PlaySettled(userID int, rec *models.GameHistory, balance decimal.Decimal) {
	msg := &wsMessage{
		Type: "PLAY_SETTLED",
		Data: gin.H{
			"gameType":  rec.GameType,
			"betAmount": rec.BetAmount.String(),
			"winAmount": rec.WinAmount.String(),
			"balance":   balance.StringFixed(2),
			"createdAt": rec.CreatedAt,
		},
	}

	select {
	case h.events <- &hubEvent{userID: userID, message: msg}:
	default:
		h.log.WithField("user_id", userID).Warn("ws event dropped, hub backlog full")
	}
}

// Handle upgrades an authenticated request and holds the connection open,
// answering pings until the client goes away.
func (h *Hub) Handle(c *gin.Context) {
	user := middleware.CurrentUser(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := &wsClient{
		ID:     uuid.NewString(),
		UserID: user.ID,
		Conn:   conn,
	}
	h.register <- client

	defer func() {
		h.unregister <- client
		conn.Close()
	}()

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.WithError(err).WithField("conn_id", client.ID).Warn("websocket read error")
			}
			return
		}

		if msg.Type == "PING" {
			pong := &wsMessage{Type: "PONG", Data: gin.H{"timestamp": time.Now().Unix()}}
			if err := conn.WriteJSON(pong); err != nil {
				return
			}
		}
	}
}
