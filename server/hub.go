package main

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Hub tracks websocket subscribers per room and fans game-state updates
// out to them. Mutations call notifyRoom after commit; readers only ever
// receive full projections, never deltas, so a dropped frame is repaired
// by the next one.
type Hub struct {
	mu    sync.RWMutex
	rooms map[int64]map[*wsClient]bool
}

var hub = &Hub{rooms: make(map[int64]map[*wsClient]bool)}

func (h *Hub) subscribe(c *wsClient) {
	h.mu.Lock()
	if _, ok := h.rooms[c.roomID]; !ok {
		h.rooms[c.roomID] = make(map[*wsClient]bool)
	}
	h.rooms[c.roomID][c] = true
	h.mu.Unlock()

	wsSubscribers.Inc()
	log.Infow("subscriber joined", "room_id", c.roomID, "user_id", c.userID)
}

func (h *Hub) unsubscribe(c *wsClient) {
	h.mu.Lock()
	if clients, ok := h.rooms[c.roomID]; ok {
		if _, exists := clients[c]; exists {
			delete(clients, c)
			close(c.send)
			wsSubscribers.Dec()
		}
		if len(clients) == 0 {
			delete(h.rooms, c.roomID)
		}
	}
	h.mu.Unlock()

	log.Infow("subscriber left", "room_id", c.roomID, "user_id", c.userID)
}

// broadcast delivers a frame to every subscriber of a room. Sends are
// non-blocking; a slow client with a full queue misses the frame rather
// than stalling the room. The read lock stays held across the sends:
// unsubscribe closes send channels under the write lock, so a close can
// never interleave with a send.
func (h *Hub) broadcast(roomID int64, frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[roomID] {
		select {
		case c.send <- frame:
		default:
			log.Warnw("subscriber queue full, dropping frame", "room_id", roomID, "user_id", c.userID)
		}
	}
}

// notifyRoom rebuilds the room's game state and pushes it to all
// subscribers. Called after every committed mutation that changes
// visible state.
func notifyRoom(db *gorm.DB, roomID int64) {
	h := hub

	h.mu.RLock()
	empty := len(h.rooms[roomID]) == 0
	h.mu.RUnlock()
	if empty {
		return
	}

	state, err := getGameState(db, roomID)
	if err != nil {
		log.Errorw("could not build game state for broadcast", "room_id", roomID, zap.Error(err))
		return
	}
	if state == nil {
		return
	}

	frame, err := json.Marshal(state)
	if err != nil {
		log.Errorw("could not marshal game state", "room_id", roomID, zap.Error(err))
		return
	}

	h.broadcast(roomID, frame)
}
