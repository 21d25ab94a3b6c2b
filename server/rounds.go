package main

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

func startGameHandler(w http.ResponseWriter, r *http.Request) {
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

	room, err := startGame(db, id)
	if err != nil {
		log.Errorw("could not start game", "room_id", id, zap.Error(err))
		Renderer.JSON(w, statusForError(err), map[string]string{"error": err.Error()})
		return
	}

	notifyRoom(db, room.ID)
	Renderer.JSON(w, http.StatusOK, room)
}

// AnswerRequest is the request body for submitting or checking an
// answer. AcceptedAnswers is only read by the check endpoint; clients
// fetch the accepted set with the puzzle and echo it back, so a hostile
// client can self-certify. Known trade-off carried over from the
// original client-authoritative design.
type AnswerRequest struct {
	Answer          string   `json:"answer"`
	IsHost          bool     `json:"is_host"`
	AcceptedAnswers []string `json:"accepted_answers"`
}

func submitAnswerHandler(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	id, err := parseIDParam(r, "id")
	if err != nil {
		Renderer.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid room id"})
		return
	}

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Renderer.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
		return
	}

	db, err := getDB()
	if err != nil {
		Renderer.JSON(w, http.StatusInternalServerError, map[string]string{"error": "bad connection to db"})
		return
	}

	if err := submitAnswer(db, id, claims.UserID, req.Answer, req.IsHost); err != nil {
		log.Errorw("could not submit answer", "room_id", id, "user_id", claims.UserID, zap.Error(err))
		Renderer.JSON(w, statusForError(err), map[string]string{"error": err.Error()})
		return
	}

	notifyRoom(db, id)
	Renderer.JSON(w, http.StatusOK, map[string]string{"message": "answer recorded"})
}

func checkAnswerHandler(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	id, err := parseIDParam(r, "id")
	if err != nil {
		Renderer.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid room id"})
		return
	}

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Renderer.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
		return
	}

	db, err := getDB()
	if err != nil {
		Renderer.JSON(w, http.StatusInternalServerError, map[string]string{"error": "bad connection to db"})
		return
	}

	result, err := checkAnswer(db, id, claims.UserID, req.Answer, req.IsHost, req.AcceptedAnswers)
	if err != nil {
		log.Errorw("could not check answer", "room_id", id, "user_id", claims.UserID, zap.Error(err))
		Renderer.JSON(w, statusForError(err), map[string]string{"error": err.Error()})
		return
	}

	if result.WonRound {
		notifyRoom(db, id)
	}
	Renderer.JSON(w, http.StatusOK, result)
}

func nextRoundHandler(w http.ResponseWriter, r *http.Request) {
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

	result, err := nextRound(db, id)
	if err != nil {
		log.Errorw("could not advance round", "room_id", id, zap.Error(err))
		Renderer.JSON(w, statusForError(err), map[string]string{"error": err.Error()})
		return
	}

	notifyRoom(db, id)
	Renderer.JSON(w, http.StatusOK, result)
}

func skipRoundHandler(w http.ResponseWriter, r *http.Request) {
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

	result, err := skipRound(db, id)
	if err != nil {
		log.Errorw("could not skip round", "room_id", id, zap.Error(err))
		Renderer.JSON(w, statusForError(err), map[string]string{"error": err.Error()})
		return
	}

	notifyRoom(db, id)
	Renderer.JSON(w, http.StatusOK, result)
}

// GiveUpRequest is the request body for giving up on a round.
type GiveUpRequest struct {
	IsHost bool `json:"is_host"`
}

func giveUpHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		Renderer.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid room id"})
		return
	}

	var req GiveUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Renderer.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
		return
	}

	db, err := getDB()
	if err != nil {
		Renderer.JSON(w, http.StatusInternalServerError, map[string]string{"error": "bad connection to db"})
		return
	}

	result, err := giveUp(db, id, req.IsHost)
	if err != nil {
		log.Errorw("could not give up", "room_id", id, zap.Error(err))
		Renderer.JSON(w, statusForError(err), map[string]string{"error": err.Error()})
		return
	}

	notifyRoom(db, id)
	Renderer.JSON(w, http.StatusOK, result)
}

// EmojiRequest is the request body for sending a reaction.
type EmojiRequest struct {
	Emoji  string `json:"emoji"`
	IsHost bool   `json:"is_host"`
}

func sendEmojiHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		Renderer.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid room id"})
		return
	}

	var req EmojiRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Emoji == "" {
		Renderer.JSON(w, http.StatusBadRequest, map[string]string{"error": "emoji is required"})
		return
	}

	db, err := getDB()
	if err != nil {
		Renderer.JSON(w, http.StatusInternalServerError, map[string]string{"error": "bad connection to db"})
		return
	}

	if err := sendEmoji(db, id, req.Emoji, req.IsHost); err != nil {
		log.Errorw("could not send emoji", "room_id", id, zap.Error(err))
		Renderer.JSON(w, statusForError(err), map[string]string{"error": err.Error()})
		return
	}

	notifyRoom(db, id)
	Renderer.JSON(w, http.StatusOK, map[string]string{"message": "emoji sent"})
}

func clearEmojiHandler(w http.ResponseWriter, r *http.Request) {
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

	if err := clearEmoji(db, id); err != nil {
		log.Errorw("could not clear emoji", "room_id", id, zap.Error(err))
		Renderer.JSON(w, statusForError(err), map[string]string{"error": err.Error()})
		return
	}

	notifyRoom(db, id)
	Renderer.JSON(w, http.StatusOK, map[string]string{"message": "emoji cleared"})
}
