package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/scythe504/colortrap-backend/internal"
)

const (
	defaultRecentMatches = 20
	maxRecentMatches     = 100
)

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// Apply CORS middleware
	r.Use(s.corsMiddleware)

	r.HandleFunc("/", s.HelloWorldHandler)
	r.HandleFunc("/health", s.healthHandler)

	r.HandleFunc("/rooms-available", s.GetRoomToJoin)
	r.HandleFunc("/single-player", s.SinglePlayerHandler)
	r.HandleFunc("/matches/recent", s.RecentMatchesHandler)

	r.HandleFunc("/ws/game", s.GameWebSocketHandler)
	r.HandleFunc("/ws/chat/{roomId}", s.ChatWebSocketHandler)

	return r
}

// CORS middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if len(s.allowedOrigins) == 0 {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		} else if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		w.Header().Set("Access-Control-Allow-Credentials", "false")

		// Origin checks for upgrades happen in the upgrader.
		if strings.ToLower(r.Header.Get("Upgrade")) == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

		// Handle preflight OPTIONS requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) HelloWorldHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Serving backend"})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	stats := s.db.Health()
	status := http.StatusOK
	if stats["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, stats)
}

func (s *Server) GetRoomToJoin(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()

	var resp internal.Response
	if roomId, ok := s.registry.OpenRoom(); ok {
		resp = internal.Response{
			StatusCode:    http.StatusOK,
			RespStartTime: startTime,
			Data:          roomId,
		}
	} else {
		resp = internal.Response{
			StatusCode:    http.StatusNotFound,
			RespStartTime: startTime,
			Data:          "No joinable rooms available",
		}
	}

	writeResponse(w, resp)
}

// SinglePlayerHandler returns a shuffled board for offline play. No room
// or timer is involved.
func (s *Server) SinglePlayerHandler(w http.ResponseWriter, r *http.Request) {
	resp := internal.Response{
		StatusCode:    http.StatusOK,
		RespStartTime: time.Now().UnixMilli(),
		Data:          s.registry.ShuffledBoard(),
	}
	writeResponse(w, resp)
}

func (s *Server) RecentMatchesHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()

	if s.db == nil {
		writeResponse(w, internal.Response{
			StatusCode:    http.StatusServiceUnavailable,
			RespStartTime: startTime,
			Data:          "match archive disabled",
		})
		return
	}

	limit := defaultRecentMatches
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeResponse(w, internal.Response{
				StatusCode:    http.StatusBadRequest,
				RespStartTime: startTime,
				Data:          "limit must be a positive integer",
			})
			return
		}
		limit = min(n, maxRecentMatches)
	}

	matches, err := s.db.RecentMatches(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("[RecentMatches] query failed")
		writeResponse(w, internal.Response{
			StatusCode:    http.StatusInternalServerError,
			RespStartTime: startTime,
			Data:          "failed to load matches",
		})
		return
	}
	if matches == nil {
		matches = []internal.MatchResult{}
	}

	writeResponse(w, internal.Response{
		StatusCode:    http.StatusOK,
		RespStartTime: startTime,
		Data:          matches,
	})
}

// writeResponse stamps the end time on resp and writes it with its own
// status code.
func writeResponse(w http.ResponseWriter, resp internal.Response) {
	endTime := time.Now().UnixMilli()
	resp.RespEndTime = endTime
	resp.NetRespTime = endTime - resp.RespStartTime
	writeJSON(w, resp.StatusCode, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("error encoding response")
	}
}
