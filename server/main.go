package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/microcosm-cc/bluemonday"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/unrolled/render"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

var (
	// Renderer is a renderer for all occasions. These are our preferred default options.
	// See:
	//  - https://github.com/unrolled/render/blob/v1/README.md
	//  - https://godoc.org/gopkg.in/unrolled/render.v1
	Renderer = render.New(render.Options{
		Charset:    "UTF-8",
		IndentJSON: false,
	})

	log       = mustLogger()
	ugcPolicy = bluemonday.StrictPolicy()
)

func mustLogger() *zap.SugaredLogger {
	l, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	return l.Sugar()
}

func main() {
	if err := parseOptions(); err != nil {
		log.Fatalw("could not parse options", zap.Error(err))
	}

	log.Infow("Starting up", "host", fmt.Sprintf("http://localhost:%s", opts.Port), "env", opts.Env)

	if _, err := getDB(); err != nil {
		log.Panicw("could not get db", zap.Error(err))
		return
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(cors.New(cors.Options{
		AllowCredentials:   true,
		OptionsPassthrough: true,
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:     []string{"Link"},
		MaxAge:             300, // Maximum value not ignored by any of major browsers
	}).Handler)

	r.NotFound(notFoundHandler)

	// Stuff that does not ssl redirect
	r.Group(func(r chi.Router) {
		r.Use(secure.New(secure.Options{
			BrowserXssFilter:   true,
			ContentTypeNosniff: true,
			FrameDeny:          true,
			HostsProxyHeaders:  []string{"X-Forwarded-Host"},
			IsDevelopment:      isDev(),
			SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
		}).Handler)

		r.Get("/healthz", healthCheckHandler)
		r.Handle("/metrics", promhttp.Handler())
	})

	// Everything that does SSL only
	r.Group(func(r chi.Router) {
		r.Use(secure.New(secure.Options{
			BrowserXssFilter:     true,
			ContentTypeNosniff:   true,
			FrameDeny:            true,
			HostsProxyHeaders:    []string{"X-Forwarded-Host"},
			IsDevelopment:        isDev(),
			SSLProxyHeaders:      map[string]string{"X-Forwarded-Proto": "https"},
			SSLRedirect:          !isDev(),
			STSIncludeSubdomains: true,
			STSPreload:           true,
			STSSeconds:           315360000,
		}).Handler)

		r.Get("/", rootHandler)

		r.Mount("/auth/oauth", AuthRoutes())
		r.Post("/auth/login", loginHandler)
		r.Post("/users", createUserHandler)

		r.Get("/rooms/code/{code}", getRoomByCodeHandler)
		r.Get("/rooms/code/{code}/qr", qrHandler)

		// Everything below requires a session token.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)

			r.Get("/users/me", meHandler)
			r.Get("/users/{id}", getUserHandler)

			r.Post("/rooms", createRoomHandler)
			r.Post("/rooms/join", joinRoomHandler)
			r.Get("/rooms/{id}", getRoomHandler)
			r.Get("/rooms/{id}/state", gameStateHandler)
			r.Get("/rooms/{id}/ws", wsHandler)

			r.Post("/rooms/{id}/start", startGameHandler)
			r.Post("/rooms/{id}/answer", submitAnswerHandler)
			r.Post("/rooms/{id}/check", checkAnswerHandler)
			r.Post("/rooms/{id}/next", nextRoundHandler)
			r.Post("/rooms/{id}/skip", skipRoundHandler)
			r.Post("/rooms/{id}/giveup", giveUpHandler)
			r.Post("/rooms/{id}/emoji", sendEmojiHandler)
			r.Delete("/rooms/{id}/emoji", clearEmojiHandler)

			r.Get("/puzzles", listPuzzlesHandler)
			r.Get("/puzzles/count", countPuzzlesHandler)
			r.Get("/puzzles/{id}", getPuzzleHandler)
			r.Post("/puzzles", createPuzzleHandler)
			r.Post("/puzzles/bulk", createPuzzlesHandler)
			r.Patch("/puzzles/{id}", updatePuzzleHandler)
			r.Delete("/puzzles/{id}", deletePuzzleHandler)
			r.Post("/puzzles/{id}/toggle", togglePuzzleHandler)
		})
	})

	log.Fatal(http.ListenAndServe(":"+opts.Port, r))
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	Renderer.JSON(w, http.StatusOK, map[string]string{
		"service": "rbl",
		"docs":    "https://github.com/ilank-pro/RBL",
	})
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	Renderer.JSON(w, http.StatusOK, map[string]string{
		"healthy":  "true",
		"revision": os.Getenv("GIT_REVISION"),
		"tag":      os.Getenv("GIT_TAG"),
		"branch":   os.Getenv("GIT_BRANCH"),
	})
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	Renderer.JSON(w, http.StatusNotFound, map[string]string{
		"error": "404: This page could not be found",
	})
}
