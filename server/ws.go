package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Cross-origin clients are expected; auth happens via token.
		return true
	},
}

type wsClient struct {
	conn   *websocket.Conn
	roomID int64
	userID int64
	send   chan []byte
}

// wsHandler upgrades the connection and subscribes it to a room. The
// first frame is always the current game state so clients never render
// from nothing while waiting for the next mutation.
func wsHandler(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	roomID, err := strconv.ParseInt(ugcPolicy.Sanitize(chi.URLParamFromCtx(r.Context(), "id")), 10, 64)
	if err != nil {
		Renderer.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid room id"})
		return
	}

	db, err := getDB()
	if err != nil {
		Renderer.JSON(w, http.StatusInternalServerError, map[string]string{"error": "bad connection to db"})
		return
	}

	state, err := getGameState(db, roomID)
	if err != nil {
		log.Errorw("could not load game state", "room_id", roomID, zap.Error(err))
		Renderer.JSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if state == nil {
		Renderer.JSON(w, http.StatusNotFound, map[string]string{"error": "room not found"})
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorw("websocket upgrade failed", "room_id", roomID, zap.Error(err))
		return
	}

	client := &wsClient{
		conn:   conn,
		roomID: roomID,
		userID: claims.UserID,
		send:   make(chan []byte, 32),
	}
	hub.subscribe(client)

	if frame, err := json.Marshal(state); err == nil {
		client.send <- frame
	}

	go client.writePump()
	go client.readPump()
}

// readPump drains the connection. Subscribers are read-only; any inbound
// text is ignored, but the pump is what notices disconnects and keeps the
// pong deadline fresh.
func (c *wsClient) readPump() {
	defer func() {
		hub.unsubscribe(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warnw("websocket read error", "room_id", c.roomID, "user_id", c.userID, zap.Error(err))
			}
			return
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
