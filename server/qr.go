package main

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	rbl "github.com/ilank-pro/RBL"
)

// qrHandler renders the join link for a room code as a PNG QR code so
// the second player can scan onto the couch game.
func qrHandler(w http.ResponseWriter, r *http.Request) {
	code := rbl.NormalizeCode(ugcPolicy.Sanitize(chi.URLParamFromCtx(r.Context(), "code")))

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
	if room == nil {
		Renderer.JSON(w, http.StatusNotFound, map[string]string{"error": "room not found"})
		return
	}

	joinURL := fmt.Sprintf("%s/join/%s", opts.BaseURL, room.Code)
	png, err := qrcode.Encode(joinURL, qrcode.Medium, 320)
	if err != nil {
		log.Errorw("could not encode qr code", "code", code, zap.Error(err))
		Renderer.JSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		log.Errorw("could not write qr code", "code", code, zap.Error(err))
	}
}
