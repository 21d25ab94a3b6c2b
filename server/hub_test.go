package main

import (
	"encoding/json"
	"testing"
)

func TestHubBroadcastPerRoom(t *testing.T) {
	h := &Hub{rooms: make(map[int64]map[*wsClient]bool)}

	a := &wsClient{roomID: 1, userID: 10, send: make(chan []byte, 4)}
	b := &wsClient{roomID: 1, userID: 11, send: make(chan []byte, 4)}
	other := &wsClient{roomID: 2, userID: 12, send: make(chan []byte, 4)}
	h.subscribe(a)
	h.subscribe(b)
	h.subscribe(other)

	h.broadcast(1, []byte("frame"))

	for _, c := range []*wsClient{a, b} {
		select {
		case frame := <-c.send:
			if string(frame) != "frame" {
				t.Errorf("Unexpected frame %q", frame)
			}
		default:
			t.Errorf("Subscriber %d missed the frame", c.userID)
		}
	}

	select {
	case <-other.send:
		t.Error("Room 2 subscriber received a room 1 frame")
	default:
	}
}

func TestHubDropsFramesForSlowClient(t *testing.T) {
	h := &Hub{rooms: make(map[int64]map[*wsClient]bool)}

	slow := &wsClient{roomID: 1, userID: 10, send: make(chan []byte, 1)}
	h.subscribe(slow)

	h.broadcast(1, []byte("one"))
	h.broadcast(1, []byte("two")) // queue full, dropped

	if got := string(<-slow.send); got != "one" {
		t.Errorf("Expected first frame, got %q", got)
	}
	select {
	case frame := <-slow.send:
		t.Errorf("Expected dropped frame, got %q", frame)
	default:
	}
}

func TestHubUnsubscribeClosesSend(t *testing.T) {
	h := &Hub{rooms: make(map[int64]map[*wsClient]bool)}

	c := &wsClient{roomID: 1, userID: 10, send: make(chan []byte, 1)}
	h.subscribe(c)
	h.unsubscribe(c)

	if _, ok := <-c.send; ok {
		t.Error("Expected send channel to be closed")
	}

	// A second unsubscribe is a no-op, not a double close.
	h.unsubscribe(c)

	// Broadcasting to the now-empty room should not panic.
	h.broadcast(1, []byte("frame"))
}

func TestHubBroadcastDuringUnsubscribe(t *testing.T) {
	h := &Hub{rooms: make(map[int64]map[*wsClient]bool)}

	clients := make([]*wsClient, 64)
	for i := range clients {
		c := &wsClient{roomID: 1, userID: int64(i), send: make(chan []byte, 1)}
		h.subscribe(c)
		clients[i] = c
	}

	// Clients disconnect while post-mutation broadcasts are in flight.
	// A send must never hit a closed channel.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			h.broadcast(1, []byte("frame"))
		}
	}()

	for _, c := range clients {
		h.unsubscribe(c)
	}
	<-done
}

func TestNotifyRoomPushesState(t *testing.T) {
	db := setupTestDB(t)
	room, _, _ := setupPlayingRoom(t, db)

	c := &wsClient{roomID: room.ID, userID: 10, send: make(chan []byte, 4)}
	hub.subscribe(c)
	defer hub.unsubscribe(c)

	notifyRoom(db, room.ID)

	select {
	case frame := <-c.send:
		var state GameState
		if err := json.Unmarshal(frame, &state); err != nil {
			t.Fatalf("Frame is not a game state: %v", err)
		}
		if state.RoomID != room.ID {
			t.Errorf("Expected room %d, got %d", room.ID, state.RoomID)
		}
		if state.Status != "playing" {
			t.Errorf("Expected playing status, got %q", state.Status)
		}
	default:
		t.Fatal("Expected a state frame after notifyRoom")
	}
}
