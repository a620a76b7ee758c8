package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/pokerbot/poker"
	"github.com/danielhkuo/pokerbot/store"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string

	// Slack request verification. At least one must be set.
	SlackTokens   []string
	SigningSecret string

	Scale        poker.Scale
	ImageBaseURL string

	NotifyTimeout     time.Duration
	NotifyMaxInFlight int
	NotifyMaxPerSink  int

	LogLevel  string
	LogFormat string
}

// ParseFlags validates flags and fills the rest from the environment.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile, tokens, scale, notifyTimeout string

	fset := flag.NewFlagSet("pokerbot", flag.ContinueOnError)

	fset.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	// Network config (can be CLI args or env)
	fset.IntVar(&cfg.Port, "p", 0, "Server port")
	fset.StringVar(&cfg.DatabaseURL, "d", "", "Database URL (badger: data directory)")
	fset.StringVar(&cfg.DatabaseType, "t", "", "Database type (memory, sqlite, postgres or badger)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fset.StringVar(&tokens, "tokens", "", "Comma separated Slack verification tokens (prefer env)")
	fset.StringVar(&cfg.SigningSecret, "signing-secret", "", "Slack signing secret (prefer env)")

	// Game
	fset.StringVar(&scale, "scale", "", "Comma separated allowed vote values")
	fset.StringVar(&cfg.ImageBaseURL, "images", "", "Base URL for <value>.png card images")

	// Notifications
	fset.StringVar(&notifyTimeout, "notify-timeout", "", "Timeout for one delayed Slack message")
	fset.IntVar(&cfg.NotifyMaxInFlight, "notify-max-inflight", 0, "Max concurrent delayed messages")
	fset.IntVar(&cfg.NotifyMaxPerSink, "notify-max-per-sink", 0, "Max delayed messages per response URL")

	fset.StringVar(&cfg.LogLevel, "log-level", "", "debug, info, warn or error")
	fset.StringVar(&cfg.LogFormat, "log-format", "", "text or json")

	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}

	// Existing environment variables win over the file
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		port, err := envInt("PORT", 3318)
		if err != nil {
			return Config{}, err
		}
		cfg.Port = port
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = envOr("DATABASE_TYPE", store.TypeSQLite)
	}
	switch cfg.DatabaseType {
	case store.TypeMemory, store.TypeSQLite, store.TypePostgres, store.TypeBadger:
	default:
		return Config{}, fmt.Errorf("unknown database type %q", cfg.DatabaseType)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" && cfg.DatabaseType != store.TypeMemory {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	// Secrets - at least one verification method
	if tokens == "" {
		tokens = os.Getenv("SLACK_TOKENS")
	}
	cfg.SlackTokens = splitList(tokens)
	if cfg.SigningSecret == "" {
		cfg.SigningSecret = os.Getenv("SLACK_SIGNING_SECRET")
	}
	if cfg.SigningSecret == "" && len(cfg.SlackTokens) == 0 {
		return Config{}, errors.New("SLACK_SIGNING_SECRET or SLACK_TOKENS required")
	}

	if scale == "" {
		scale = os.Getenv("POKER_SCALE")
	}
	cfg.Scale = poker.DefaultScale
	if scale != "" {
		s, err := poker.ParseScale(scale)
		if err != nil {
			return Config{}, fmt.Errorf("invalid POKER_SCALE: %w", err)
		}
		cfg.Scale = s
	}
	if cfg.ImageBaseURL == "" {
		cfg.ImageBaseURL = os.Getenv("IMAGE_BASE_URL")
	}

	if notifyTimeout == "" {
		notifyTimeout = envOr("NOTIFY_TIMEOUT", "3s")
	}
	d, err := time.ParseDuration(notifyTimeout)
	if err != nil || d <= 0 {
		return Config{}, fmt.Errorf("invalid notify timeout %q", notifyTimeout)
	}
	cfg.NotifyTimeout = d

	if cfg.NotifyMaxInFlight == 0 {
		if cfg.NotifyMaxInFlight, err = envInt("NOTIFY_MAX_INFLIGHT", 16); err != nil {
			return Config{}, err
		}
	}
	if cfg.NotifyMaxPerSink == 0 {
		if cfg.NotifyMaxPerSink, err = envInt("NOTIFY_MAX_PER_SINK", 5); err != nil {
			return Config{}, err
		}
	}
	if cfg.NotifyMaxInFlight < 0 || cfg.NotifyMaxPerSink < 0 {
		return Config{}, errors.New("notification limits must be positive")
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = envOr("LOG_LEVEL", "info")
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = envOr("LOG_FORMAT", "text")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, field := range strings.Split(s, ",") {
		if field = strings.TrimSpace(field); field != "" {
			out = append(out, field)
		}
	}
	return out
}
