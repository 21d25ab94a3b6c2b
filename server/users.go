package main

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	rbl "github.com/ilank-pro/RBL"
)

// CreateUserRequest is the request body for creating a user without a
// social login, used by the mock platform in development.
type CreateUserRequest struct {
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
	Platform string `json:"platform"`
}

func createUserHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Renderer.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
		return
	}

	db, err := getDB()
	if err != nil {
		Renderer.JSON(w, http.StatusInternalServerError, map[string]string{"error": "bad connection to db"})
		return
	}

	user, err := createUser(db, req.Name, req.Avatar, rbl.Platform(req.Platform), nil)
	if err != nil {
		log.Errorw("could not create user", "name", req.Name, zap.Error(err))
		Renderer.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	token, err := generateJWT(user)
	if err != nil {
		log.Errorw("could not sign token", zap.Error(err))
		Renderer.JSON(w, http.StatusInternalServerError, map[string]string{"error": "could not sign token"})
		return
	}

	Renderer.JSON(w, http.StatusCreated, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

func getUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		Renderer.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return
	}

	db, err := getDB()
	if err != nil {
		Renderer.JSON(w, http.StatusInternalServerError, map[string]string{"error": "bad connection to db"})
		return
	}

	user, err := getUser(db, id)
	if err != nil {
		Renderer.JSON(w, statusForError(err), map[string]string{"error": err.Error()})
		return
	}

	Renderer.JSON(w, http.StatusOK, user)
}

// meHandler returns the profile behind the presented token.
func meHandler(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	db, err := getDB()
	if err != nil {
		Renderer.JSON(w, http.StatusInternalServerError, map[string]string{"error": "bad connection to db"})
		return
	}

	user, err := getUser(db, claims.UserID)
	if err != nil {
		Renderer.JSON(w, statusForError(err), map[string]string{"error": err.Error()})
		return
	}

	Renderer.JSON(w, http.StatusOK, user)
}
