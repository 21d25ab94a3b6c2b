package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// PuzzleRequest is the request body for creating a puzzle.
type PuzzleRequest struct {
	ImageURL         string      `json:"image_url"`
	Answer           string      `json:"answer"`
	AlternateAnswers StringSlice `json:"alternate_answers"`
	Difficulty       int         `json:"difficulty"`
	Category         string      `json:"category"`
	Hints            HintList    `json:"hints"`
	PackID           *string     `json:"pack_id"`
	PackName         *string     `json:"pack_name"`
}

func (req *PuzzleRequest) toPuzzle() *Puzzle {
	difficulty := req.Difficulty
	if difficulty == 0 {
		difficulty = 1
	}
	return &Puzzle{
		ImageURL:         req.ImageURL,
		Answer:           req.Answer,
		AlternateAnswers: req.AlternateAnswers,
		Difficulty:       difficulty,
		Category:         req.Category,
		Hints:            req.Hints,
		PackID:           req.PackID,
		PackName:         req.PackName,
	}
}

func createPuzzleHandler(w http.ResponseWriter, r *http.Request) {
	var req PuzzleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Renderer.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
		return
	}

	db, err := getDB()
	if err != nil {
		Renderer.JSON(w, http.StatusInternalServerError, map[string]string{"error": "bad connection to db"})
		return
	}

	puzzle := req.toPuzzle()
	if err := createPuzzle(db, puzzle); err != nil {
		log.Errorw("could not create puzzle", zap.Error(err))
		Renderer.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	Renderer.JSON(w, http.StatusCreated, puzzle)
}

func createPuzzlesHandler(w http.ResponseWriter, r *http.Request) {
	var reqs []PuzzleRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		Renderer.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
		return
	}
	if len(reqs) == 0 {
		Renderer.JSON(w, http.StatusBadRequest, map[string]string{"error": "empty batch"})
		return
	}

	db, err := getDB()
	if err != nil {
		Renderer.JSON(w, http.StatusInternalServerError, map[string]string{"error": "bad connection to db"})
		return
	}

	puzzles := make([]*Puzzle, len(reqs))
	for i := range reqs {
		puzzles[i] = reqs[i].toPuzzle()
	}

	if err := createPuzzles(db, puzzles); err != nil {
		log.Errorw("could not create puzzle batch", "count", len(puzzles), zap.Error(err))
		Renderer.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	Renderer.JSON(w, http.StatusCreated, puzzles)
}

func listPuzzlesHandler(w http.ResponseWriter, r *http.Request) {
	db, err := getDB()
	if err != nil {
		Renderer.JSON(w, http.StatusInternalServerError, map[string]string{"error": "bad connection to db"})
		return
	}

	filter := PuzzleFilter{
		Category:   r.URL.Query().Get("category"),
		ActiveOnly: r.URL.Query().Get("active") == "true",
	}
	if raw := r.URL.Query().Get("difficulty"); raw != "" {
		if d, err := strconv.Atoi(raw); err == nil {
			filter.Difficulty = d
		}
	}

	puzzles, err := listPuzzles(db, filter)
	if err != nil {
		log.Errorw("could not list puzzles", zap.Error(err))
		Renderer.JSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	Renderer.JSON(w, http.StatusOK, puzzles)
}

func getPuzzleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		Renderer.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid puzzle id"})
		return
	}

	db, err := getDB()
	if err != nil {
		Renderer.JSON(w, http.StatusInternalServerError, map[string]string{"error": "bad connection to db"})
		return
	}

	puzzle, err := getPuzzle(db, id)
	if err != nil {
		log.Errorw("could not get puzzle", "puzzle_id", id, zap.Error(err))
		Renderer.JSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	Renderer.JSON(w, http.StatusOK, puzzle)
}

func countPuzzlesHandler(w http.ResponseWriter, r *http.Request) {
	db, err := getDB()
	if err != nil {
		Renderer.JSON(w, http.StatusInternalServerError, map[string]string{"error": "bad connection to db"})
		return
	}

	count, err := countPuzzles(db, r.URL.Query().Get("active") == "true")
	if err != nil {
		log.Errorw("could not count puzzles", zap.Error(err))
		Renderer.JSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	Renderer.JSON(w, http.StatusOK, map[string]int64{"count": count})
}

func updatePuzzleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		Renderer.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid puzzle id"})
		return
	}

	var upd PuzzleUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		Renderer.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
		return
	}

	db, err := getDB()
	if err != nil {
		Renderer.JSON(w, http.StatusInternalServerError, map[string]string{"error": "bad connection to db"})
		return
	}

	puzzle, err := updatePuzzle(db, id, &upd)
	if err != nil {
		log.Errorw("could not update puzzle", "puzzle_id", id, zap.Error(err))
		Renderer.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	Renderer.JSON(w, http.StatusOK, puzzle)
}

func deletePuzzleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		Renderer.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid puzzle id"})
		return
	}

	db, err := getDB()
	if err != nil {
		Renderer.JSON(w, http.StatusInternalServerError, map[string]string{"error": "bad connection to db"})
		return
	}

	if err := deletePuzzle(db, id); err != nil {
		log.Errorw("could not delete puzzle", "puzzle_id", id, zap.Error(err))
		Renderer.JSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}

	Renderer.JSON(w, http.StatusOK, map[string]string{"message": "puzzle deleted"})
}

func togglePuzzleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		Renderer.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid puzzle id"})
		return
	}

	db, err := getDB()
	if err != nil {
		Renderer.JSON(w, http.StatusInternalServerError, map[string]string{"error": "bad connection to db"})
		return
	}

	active, err := togglePuzzleActive(db, id)
	if err != nil {
		log.Errorw("could not toggle puzzle", "puzzle_id", id, zap.Error(err))
		Renderer.JSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}

	Renderer.JSON(w, http.StatusOK, map[string]bool{"is_active": active})
}
