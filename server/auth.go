package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	rbl "github.com/ilank-pro/RBL"
)

type contextKey string

const userContextKey contextKey = "user"

// LoginRequest is the request body for social login. MetaID is the
// subject from the upstream OAuth exchange; the client completes that
// exchange and sends us the resulting profile.
type LoginRequest struct {
	MetaID   string `json:"meta_id"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
	Platform string `json:"platform"`
}

// JWTClaims represents the JWT claims
type JWTClaims struct {
	UserID int64  `json:"user_id"`
	Handle string `json:"handle"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

func jwtSecret() []byte {
	return []byte(opts.JWTSecret)
}

func generateJWT(user *User) (string, error) {
	claims := JWTClaims{
		UserID: user.ID,
		Handle: user.Handle,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    rbl.Service,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// loginHandler upserts the user by their OAuth subject and issues a
// session token.
func loginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Renderer.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
		return
	}
	if req.MetaID == "" || req.Name == "" {
		Renderer.JSON(w, http.StatusBadRequest, map[string]string{"error": "meta_id and name are required"})
		return
	}

	platform := rbl.Platform(req.Platform)
	if !platform.Valid() {
		Renderer.JSON(w, http.StatusBadRequest, map[string]string{"error": "unknown platform"})
		return
	}

	db, err := getDB()
	if err != nil {
		Renderer.JSON(w, http.StatusInternalServerError, map[string]string{"error": "bad connection to db"})
		return
	}

	user, err := getOrCreateUser(db, req.MetaID, req.Name, req.Avatar, platform)
	if err != nil {
		log.Errorw("could not upsert user", "meta_id", req.MetaID, "err", err)
		Renderer.JSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	signed, err := generateJWT(user)
	if err != nil {
		log.Errorw("could not sign token", "err", err)
		Renderer.JSON(w, http.StatusInternalServerError, map[string]string{"error": "could not sign token"})
		return
	}

	Renderer.JSON(w, http.StatusOK, map[string]interface{}{
		"token": signed,
		"user":  user,
	})
}

func parseToken(raw string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return jwtSecret(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// authMiddleware requires a bearer token and puts the claims on the
// request context. The websocket route also accepts the token as a query
// parameter because browsers cannot set headers on websocket upgrades.
func authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := ""
		if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
			raw = strings.TrimPrefix(h, "Bearer ")
		} else if q := r.URL.Query().Get("token"); q != "" {
			raw = q
		}

		if raw == "" {
			Renderer.JSON(w, http.StatusUnauthorized, map[string]string{"error": "missing token"})
			return
		}

		claims, err := parseToken(raw)
		if err != nil {
			Renderer.JSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// claimsFromContext returns the verified claims, or nil outside the auth
// middleware.
func claimsFromContext(ctx context.Context) *JWTClaims {
	claims, _ := ctx.Value(userContextKey).(*JWTClaims)
	return claims
}
