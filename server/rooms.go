package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	rbl "github.com/ilank-pro/RBL"
)

func parseIDParam(r *http.Request, name string) (int64, error) {
	raw := ugcPolicy.Sanitize(chi.URLParamFromCtx(r.Context(), name))
	return strconv.ParseInt(raw, 10, 64)
}

// CreateRoomRequest is the request body for creating a room.
type CreateRoomRequest struct {
	TotalRounds int `json:"total_rounds"`
}

func createRoomHandler(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	totalRounds := rbl.DefaultTotalRounds
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.TotalRounds > 0 {
		totalRounds = req.TotalRounds
	}

	db, err := getDB()
	if err != nil {
		Renderer.JSON(w, http.StatusInternalServerError, map[string]string{"error": "bad connection to db"})
		return
	}

	totalPuzzles, err := countPuzzles(db, true)
	if err != nil {
		log.Errorw("could not count puzzles", zap.Error(err))
		Renderer.JSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	room, err := createRoom(db, claims.UserID, totalRounds, int(totalPuzzles))
	if err != nil {
		log.Errorw("could not create room", "host_id", claims.UserID, zap.Error(err))
		Renderer.JSON(w, statusForError(err), map[string]string{"error": err.Error()})
		return
	}

	Renderer.JSON(w, http.StatusCreated, room)
}

// JoinRoomRequest is the request body for joining a room by code.
type JoinRoomRequest struct {
	Code string `json:"code"`
}

func joinRoomHandler(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	var req JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		Renderer.JSON(w, http.StatusBadRequest, map[string]string{"error": "code is required"})
		return
	}

	db, err := getDB()
	if err != nil {
		Renderer.JSON(w, http.StatusInternalServerError, map[string]string{"error": "bad connection to db"})
		return
	}

	room, err := joinRoom(db, req.Code, claims.UserID)
	if err != nil {
		log.Errorw("could not join room", "code", req.Code, "guest_id", claims.UserID, zap.Error(err))
		Renderer.JSON(w, statusForError(err), map[string]string{"error": err.Error()})
		return
	}

	notifyRoom(db, room.ID)
	Renderer.JSON(w, http.StatusOK, room)
}

func getRoomHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		Renderer.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid room id"})
		return
	}

	db, err := getDB()
	if err != nil {
		Renderer.JSON(w, http.StatusInternalServerError, map[string]string{"error": "bad connection to db"})
		return
	}

	room, err := getRoom(db, id)
	if err != nil {
		log.Errorw("could not get room", "room_id", id, zap.Error(err))
		Renderer.JSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	// nil renders as JSON null: a miss is not an error for queries.
	Renderer.JSON(w, http.StatusOK, room)
}

func getRoomByCodeHandler(w http.ResponseWriter, r *http.Request) {
	code := ugcPolicy.Sanitize(chi.URLParamFromCtx(r.Context(), "code"))

	db, err := getDB()
	if err != nil {
		Renderer.JSON(w, http.StatusInternalServerError, map[string]string{"error": "bad connection to db"})
		return
	}

	room, err := getRoomByCode(db, code)
	if err != nil {
		log.Errorw("could not get room by code", "code", code, zap.Error(err))
		Renderer.JSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	Renderer.JSON(w, http.StatusOK, room)
}

func gameStateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		Renderer.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid room id"})
		return
	}

	db, err := getDB()
	if err != nil {
		Renderer.JSON(w, http.StatusInternalServerError, map[string]string{"error": "bad connection to db"})
		return
	}

	state, err := getGameState(db, id)
	if err != nil {
		log.Errorw("could not build game state", "room_id", id, zap.Error(err))
		Renderer.JSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	Renderer.JSON(w, http.StatusOK, state)
}
