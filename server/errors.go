package main

import (
	"errors"
	"net/http"
)

// The error taxonomy is small and flat: missing records, operations
// attempted outside the required room status, and the round-already-won
// conflict. Every mutation either commits or fails synchronously with one
// of these; there is no retry policy anywhere in this layer.
var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrRoundNotFound = errors.New("round not found")

	ErrAlreadyStarted = errors.New("game already started")
	ErrRoomFull       = errors.New("room is full")
	ErrNoGuest        = errors.New("waiting for opponent")
	ErrNotPlaying     = errors.New("game not in progress")

	ErrRoundAlreadyWon = errors.New("round already won")
)

// statusForError maps the taxonomy onto HTTP status codes. Unknown errors
// are treated as internal.
func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrRoomNotFound),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrRoundNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyStarted),
		errors.Is(err, ErrRoomFull),
		errors.Is(err, ErrNoGuest),
		errors.Is(err, ErrNotPlaying),
		errors.Is(err, ErrRoundAlreadyWon):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
