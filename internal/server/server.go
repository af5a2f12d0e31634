package server

import (
	"fmt"
	"net/http"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"

	"github.com/scythe504/colortrap-backend/internal/database"
	"github.com/scythe504/colortrap-backend/internal/game"
	"github.com/scythe504/colortrap-backend/internal/utils"
)

const defaultPort = 8080

type Server struct {
	port int

	db             database.Service
	registry       *game.Registry
	hub            *Hub
	chatHub        *Hub
	chat           *ChatRelay
	allowedOrigins []string
	upgrader       websocket.Upgrader
}

func NewServer() *http.Server {
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil || port <= 0 {
		port = defaultPort
	}

	var db database.Service
	if cfg := database.ConfigFromEnv(); cfg.Host != "" {
		svc, err := database.New(cfg)
		if err != nil {
			log.Error().Err(err).Msg("match archive unavailable, continuing without it")
		} else {
			db = svc
		}
	} else {
		log.Info().Msg("BLUEPRINT_DB_HOST not set, match archive disabled")
	}

	opts := []game.Option{game.WithTurnTimeout(turnTimeoutFromEnv())}
	if board, ok := boardFromEnv(); ok {
		opts = append(opts, game.WithBoard(board))
	}

	NewServer := newServer(port, db, allowedOriginsFromEnv(), opts...)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", NewServer.port),
		Handler:      NewServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	if db != nil {
		server.RegisterOnShutdown(func() {
			if err := db.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close database")
			}
		})
	}

	return server
}

func newServer(port int, db database.Service, allowedOrigins []string, opts ...game.Option) *Server {
	s := &Server{
		port:           port,
		db:             db,
		hub:            NewHub(),
		chatHub:        NewHub(),
		allowedOrigins: allowedOrigins,
	}
	s.chat = NewChatRelay(s.chatHub)

	if db != nil {
		opts = append(opts, game.WithRecorder(db))
	}
	s.registry = game.NewRegistry(s.hub, opts...)

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return s.originAllowed(r.Header.Get("Origin"))
		},
	}
	return s
}

// originAllowed accepts everything when no origins are configured, and
// requests without an Origin header (non-browser clients).
func (s *Server) originAllowed(origin string) bool {
	if len(s.allowedOrigins) == 0 || origin == "" {
		return true
	}
	return slices.Contains(s.allowedOrigins, origin)
}

func turnTimeoutFromEnv() time.Duration {
	raw := os.Getenv("TURN_TIMEOUT_MS")
	if raw == "" {
		return 0
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms <= 0 {
		log.Warn().Str("TURN_TIMEOUT_MS", raw).Msg("invalid turn timeout, using default")
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

func boardFromEnv() (game.Board, bool) {
	path := os.Getenv("BOARD_FILE")
	if path == "" {
		return game.Board{}, false
	}
	counts, err := utils.ReadBoardFile(path)
	if err != nil {
		log.Error().Err(err).Msg("failed to load board file, using default board")
		return game.Board{}, false
	}
	return game.BuildBoard(counts), true
}

func allowedOriginsFromEnv() []string {
	var origins []string
	for _, o := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
