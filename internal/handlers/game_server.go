// internal/handlers/game_server.go
package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jason-s-yu/uno/internal/commit"
	"github.com/jason-s-yu/uno/internal/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// GameServer is the HTTP and WebSocket front of the committer. It holds no
// game state of its own.
type GameServer struct {
	Committer *commit.Committer
	Logger    *logrus.Logger

	// AllowedOrigins feeds both CORS and the WebSocket origin check.
	AllowedOrigins []string

	// ActionRate and ActionBurst throttle actions read from one WebSocket.
	ActionRate  rate.Limit
	ActionBurst int
}

func NewGameServer(c *commit.Committer, logger *logrus.Logger) *GameServer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &GameServer{
		Committer:      c,
		Logger:         logger,
		AllowedOrigins: []string{"*"},
		ActionRate:     rate.Every(200 * time.Millisecond),
		ActionBurst:    10,
	}
}

// Routes builds the chi router for the whole API.
func (s *GameServer) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.LogMiddleware(s.Logger))

	r.Get("/variants", s.handleListVariants)
	r.Route("/games", func(r chi.Router) {
		r.Post("/", s.handleCreateGame)
		r.Route("/{gameID}", func(r chi.Router) {
			r.Get("/", s.handleGetGame)
			r.Post("/actions", s.handleSubmitAction)
			r.Get("/result", s.handleGetResult)
			r.Get("/ws", s.GameWSHandler)
		})
	})
	return r
}
