package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	BaseURL   string
	WSURL     string
	Transport string

	CSRFToken     string
	SessionCookie string

	PollInterval   time.Duration
	SetupDeadline  time.Duration
	RequestTimeout time.Duration

	RedisURL     string
	MessagesDir  string
	BoardPNGPath string
}

// Load reads the environment. Variables from envFile (".env" when empty)
// fill in anything not already set; a missing file is fine.
func Load(envFile string) (*AppConfig, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := &AppConfig{
		Transport:      "http",
		PollInterval:   time.Second,
		SetupDeadline:  15 * time.Minute,
		RequestTimeout: 10 * time.Second,
	}

	cfg.BaseURL = strings.TrimRight(env("GAME_BASE_URL"), "/")
	cfg.WSURL = strings.TrimRight(env("GAME_WS_URL"), "/")
	if v := strings.ToLower(env("GAME_TRANSPORT")); v != "" {
		cfg.Transport = v
	}
	cfg.CSRFToken = env("GAME_CSRF_TOKEN")
	cfg.SessionCookie = env("GAME_SESSION_COOKIE")

	if n, ok := positive("POLL_INTERVAL_MS"); ok {
		cfg.PollInterval = time.Duration(n) * time.Millisecond
	}
	if n, ok := positive("SETUP_DEADLINE_SEC"); ok {
		cfg.SetupDeadline = time.Duration(n) * time.Second
	}
	if n, ok := positive("REQUEST_TIMEOUT_MS"); ok {
		cfg.RequestTimeout = time.Duration(n) * time.Millisecond
	}

	cfg.RedisURL = env("REDIS_URL")
	cfg.MessagesDir = env("MESSAGES_DIR")
	cfg.BoardPNGPath = env("BOARD_PNG_PATH")

	if cfg.BaseURL == "" {
		return nil, errors.New("GAME_BASE_URL is required")
	}
	switch cfg.Transport {
	case "http", "ws", "auto":
	default:
		return nil, fmt.Errorf("GAME_TRANSPORT must be http, ws or auto, got %q", cfg.Transport)
	}
	if cfg.WSURL == "" {
		cfg.WSURL = wsFromHTTP(cfg.BaseURL)
	}
	return cfg, nil
}

func env(key string) string { return strings.TrimSpace(os.Getenv(key)) }

func positive(key string) (int, bool) {
	v := env(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func wsFromHTTP(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	default:
		return base
	}
}
