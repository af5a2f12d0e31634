package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"
	"github.com/scythe504/colortrap-backend/internal"
)

// Service represents a service that interacts with a database.
type Service interface {
	// Health returns a map of health status information.
	// The keys and values in the map are service-specific.
	Health() map[string]string

	// Close terminates the database connection.
	// It returns an error if the connection cannot be closed.
	Close() error

	// RecordMatch archives one finished game.
	RecordMatch(ctx context.Context, result internal.MatchResult) error

	// RecentMatches returns up to limit archived games, newest first.
	RecentMatches(ctx context.Context, limit int) ([]internal.MatchResult, error)
}

type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Schema   string
}

func ConfigFromEnv() Config {
	return Config{
		Host:     os.Getenv("BLUEPRINT_DB_HOST"),
		Port:     os.Getenv("BLUEPRINT_DB_PORT"),
		Username: os.Getenv("BLUEPRINT_DB_USERNAME"),
		Password: os.Getenv("BLUEPRINT_DB_PASSWORD"),
		Database: os.Getenv("BLUEPRINT_DB_DATABASE"),
		Schema:   os.Getenv("BLUEPRINT_DB_SCHEMA"),
	}
}

func (c Config) connStr() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   c.Host + ":" + c.Port,
		Path:   c.Database,
	}
	q := url.Values{}
	q.Set("sslmode", "disable")
	if c.Schema != "" {
		q.Set("search_path", c.Schema)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

const createMatchesTable = `
CREATE TABLE IF NOT EXISTS matches (
	id              BIGSERIAL PRIMARY KEY,
	room_id         TEXT        NOT NULL,
	winner          INTEGER     NOT NULL,
	scores          JSONB       NOT NULL,
	players         JSONB       NOT NULL,
	elapsed_seconds INTEGER     NOT NULL,
	finished_at     TIMESTAMPTZ NOT NULL
)`

type service struct {
	db *sql.DB
}

// New opens the connection described by cfg and makes sure the matches
// table exists.
func New(cfg Config) (Service, error) {
	db, err := sql.Open("pgx", cfg.connStr())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database %s: %w", cfg.Host, err)
	}
	if _, err := db.ExecContext(ctx, createMatchesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create matches table: %w", err)
	}

	log.Info().Str("host", cfg.Host).Str("database", cfg.Database).Msg("connected to database")
	return &service{db: db}, nil
}

// Health checks the health of the database connection by pinging the database.
// It returns a map with keys indicating various health statistics.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	// Ping the database
	err := s.db.PingContext(ctx)
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		log.Error().Err(err).Msg("db down")
		return stats
	}

	// Database is up, add more statistics
	stats["status"] = "up"
	stats["message"] = "It's healthy"

	// Get database stats (like open connections, in use, idle, etc.)
	dbStats := s.db.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()
	stats["max_idle_closed"] = strconv.FormatInt(dbStats.MaxIdleClosed, 10)
	stats["max_lifetime_closed"] = strconv.FormatInt(dbStats.MaxLifetimeClosed, 10)

	// Evaluate stats to provide a health message
	if dbStats.OpenConnections > 40 { // Assuming 50 is the max for this example
		stats["message"] = "The database is experiencing heavy load."
	}

	if dbStats.WaitCount > 1000 {
		stats["message"] = "The database has a high number of wait events, indicating potential bottlenecks."
	}

	return stats
}

// Close closes the database connection.
func (s *service) Close() error {
	log.Info().Msg("disconnected from database")
	return s.db.Close()
}

func (s *service) RecordMatch(ctx context.Context, result internal.MatchResult) error {
	scores, err := json.Marshal(result.Scores)
	if err != nil {
		return fmt.Errorf("encode scores: %w", err)
	}
	players, err := json.Marshal(result.Players)
	if err != nil {
		return fmt.Errorf("encode players: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO matches (room_id, winner, scores, players, elapsed_seconds, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		result.RoomId, result.Winner, scores, players, result.ElapsedSeconds, result.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert match %s: %w", result.RoomId, err)
	}
	return nil
}

func (s *service) RecentMatches(ctx context.Context, limit int) ([]internal.MatchResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT room_id, winner, scores, players, elapsed_seconds, finished_at
		 FROM matches ORDER BY finished_at DESC, id DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var matches []internal.MatchResult
	for rows.Next() {
		var (
			m               internal.MatchResult
			scores, players []byte
		)
		if err := rows.Scan(&m.RoomId, &m.Winner, &scores, &players, &m.ElapsedSeconds, &m.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		if err := json.Unmarshal(scores, &m.Scores); err != nil {
			return nil, fmt.Errorf("decode scores: %w", err)
		}
		if err := json.Unmarshal(players, &m.Players); err != nil {
			return nil, fmt.Errorf("decode players: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
