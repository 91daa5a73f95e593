package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var keys = []string{
	"GAME_BASE_URL", "GAME_WS_URL", "GAME_TRANSPORT", "GAME_CSRF_TOKEN", "GAME_SESSION_COOKIE",
	"POLL_INTERVAL_MS", "SETUP_DEADLINE_SEC", "REQUEST_TIMEOUT_MS", "REDIS_URL", "MESSAGES_DIR", "BOARD_PNG_PATH",
}

// clearEnv blanks every key for the test; godotenv only fills unset keys,
// so they are unset rather than emptied.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func missingFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "none.env")
}

func TestDefaultsAndDerivedSocketURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("GAME_BASE_URL", "https://play.example.com/")

	cfg, err := Load(missingFile(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "https://play.example.com" || cfg.WSURL != "wss://play.example.com" {
		t.Fatalf("unexpected urls %q %q", cfg.BaseURL, cfg.WSURL)
	}
	if cfg.Transport != "http" || cfg.PollInterval != time.Second || cfg.SetupDeadline != 15*time.Minute {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestOverridesAndValidation(t *testing.T) {
	clearEnv(t)
	t.Setenv("GAME_BASE_URL", "http://localhost:8000")
	t.Setenv("GAME_TRANSPORT", "AUTO")
	t.Setenv("POLL_INTERVAL_MS", "250")
	t.Setenv("SETUP_DEADLINE_SEC", "-5")
	cfg, err := Load(missingFile(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Transport != "auto" || cfg.PollInterval != 250*time.Millisecond || cfg.SetupDeadline != 15*time.Minute {
		t.Fatalf("unexpected config %+v", cfg)
	}

	t.Setenv("GAME_TRANSPORT", "carrier-pigeon")
	if _, err := Load(missingFile(t)); err == nil {
		t.Fatalf("expected transport validation error")
	}

	clearEnv(t)
	if _, err := Load(missingFile(t)); err == nil {
		t.Fatalf("expected GAME_BASE_URL to be required")
	}
}

func TestDotEnvFillsUnsetKeys(t *testing.T) {
	clearEnv(t)
	t.Setenv("GAME_CSRF_TOKEN", "from-env")
	path := filepath.Join(t.TempDir(), "test.env")
	body := "GAME_BASE_URL=http://dotenv.local\nGAME_CSRF_TOKEN=from-file\nREDIS_URL=redis://localhost:6379/2\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("GAME_BASE_URL"); os.Unsetenv("REDIS_URL") })

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "http://dotenv.local" || cfg.RedisURL != "redis://localhost:6379/2" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.CSRFToken != "from-env" {
		t.Fatalf("environment must win over the file, got %q", cfg.CSRFToken)
	}
}
