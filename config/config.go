package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Dosada05/league-stats/scoring"
	"github.com/Dosada05/league-stats/sources"
	"github.com/Dosada05/league-stats/storage"
)

type Config struct {
	ServerPort      int
	LogLevel        slog.Level
	Source          sources.Config
	RefreshInterval time.Duration
	Scoring         scoring.Config

	// Optional collaborators; empty means disabled.
	DatabaseURL string
	RedisURL    string
	CacheTTL    time.Duration
	R2          storage.CloudflareR2Config

	JWTSecretKey             string
	CommissionerUsername     string
	CommissionerPasswordHash string
	CORSAllowedOrigins       []string
}

// Load reads the configuration from the environment, loading a .env file first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds the configuration from getenv.
func FromEnv(getenv func(string) string) (*Config, error) {
	env := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	port, err := strconv.Atoi(env("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(env("LOG_LEVEL", "INFO"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL environment variable: %w", err)
	}

	src := sources.Config{
		Kind:             sources.Kind(strings.ToLower(env("DATA_SOURCE", string(sources.KindLocal)))),
		ScheduleLocation: env("SCHEDULE_LOCATION", "data/schedule.csv"),
		PointsLocation:   env("POINTS_LOCATION", "data/points.csv"),
		Format:           sources.Format(strings.ToLower(env("DATA_FORMAT", string(sources.FormatCSV)))),
	}
	if err := src.Validate(); err != nil {
		return nil, fmt.Errorf("invalid data source configuration: %w", err)
	}

	refresh, err := parseDuration("REFRESH_INTERVAL", env("REFRESH_INTERVAL", "5m"))
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parseDuration("CACHE_TTL", env("CACHE_TTL", "10m"))
	if err != nil {
		return nil, err
	}

	scoringCfg, err := scoringFromEnv(env)
	if err != nil {
		return nil, err
	}

	jwtKey := env("JWT_SECRET_KEY", "")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	cfg := &Config{
		ServerPort:      port,
		LogLevel:        level,
		Source:          src,
		RefreshInterval: refresh,
		Scoring:         scoringCfg,
		DatabaseURL:     env("DATABASE_URL", ""),
		RedisURL:        env("REDIS_URL", ""),
		CacheTTL:        cacheTTL,
		R2: storage.CloudflareR2Config{
			AccountID:       env("R2_ACCOUNT_ID", ""),
			AccessKeyID:     env("R2_ACCESS_KEY_ID", ""),
			SecretAccessKey: env("R2_SECRET_ACCESS_KEY", ""),
			BucketName:      env("R2_BUCKET_NAME", ""),
			PublicBaseURL:   env("R2_PUBLIC_BASE_URL", ""),
		},
		JWTSecretKey:             jwtKey,
		CommissionerUsername:     env("COMMISSIONER_USERNAME", "commissioner"),
		CommissionerPasswordHash: env("COMMISSIONER_PASSWORD_HASH", ""),
		CORSAllowedOrigins:       splitList(env("CORS_ALLOWED_ORIGINS", "*")),
	}

	if cfg.Source.Kind == sources.KindR2 && !cfg.R2.Configured() {
		return nil, fmt.Errorf("DATA_SOURCE=r2 requires R2_ACCOUNT_ID, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY and R2_BUCKET_NAME")
	}

	return cfg, nil
}

// scoringFromEnv layers SCORING_CONFIG_FILE and then individual variables over the defaults.
func scoringFromEnv(env func(key, def string) string) (scoring.Config, error) {
	cfg := scoring.DefaultConfig()
	if path := env("SCORING_CONFIG_FILE", ""); path != "" {
		fileCfg, err := LoadScoringFile(path, cfg)
		if err != nil {
			return scoring.Config{}, err
		}
		cfg = fileCfg
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"WIN_POINTS", &cfg.WinPoints},
		{"LINEAR_RANK_SCALE", &cfg.LinearRankScale},
		{"CLOSE_MATCH_MARGIN", &cfg.CloseMatchMargin},
	}
	for _, f := range floats {
		raw := env(f.key, "")
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return scoring.Config{}, fmt.Errorf("invalid %s environment variable: %w", f.key, err)
		}
		*f.dst = v
	}

	if raw := env("RANK_BONUS_TABLE", ""); raw != "" {
		table, err := ParseRankBonusTable(raw)
		if err != nil {
			return scoring.Config{}, fmt.Errorf("invalid RANK_BONUS_TABLE environment variable: %w", err)
		}
		cfg.RankBonusTable = table
	}

	if err := cfg.Validate(); err != nil {
		return scoring.Config{}, err
	}
	return cfg, nil
}

// ParseRankBonusTable parses "1:5,2:3" into {1: 5, 2: 3}.
func ParseRankBonusTable(raw string) (map[int]float64, error) {
	table := make(map[int]float64)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		rankStr, bonusStr, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("entry %q is not rank:bonus", part)
		}
		rank, err := strconv.Atoi(strings.TrimSpace(rankStr))
		if err != nil || rank < 1 {
			return nil, fmt.Errorf("entry %q has an invalid rank", part)
		}
		bonus, err := strconv.ParseFloat(strings.TrimSpace(bonusStr), 64)
		if err != nil {
			return nil, fmt.Errorf("entry %q has an invalid bonus", part)
		}
		if _, dup := table[rank]; dup {
			return nil, fmt.Errorf("rank %d appears twice", rank)
		}
		table[rank] = bonus
	}
	return table, nil
}

func parseDuration(key, raw string) (time.Duration, error) {
	if raw == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %s", key, raw)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
