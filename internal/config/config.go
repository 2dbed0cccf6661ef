package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/roadmap-agent/internal/logger"
	"github.com/yungbote/roadmap-agent/internal/utils"
)

// Config holds the server-level settings. Collaborator credentials (OpenAI
// key, redis address, postgres DSN) are read by the collaborators themselves
// from the environment, same as every other service here.
type Config struct {
	Port              string        `yaml:"port"`
	AllowOrigins      []string      `yaml:"allowOrigins"`
	EnrichConcurrency int           `yaml:"enrichConcurrency"`
	ProgressTTL       time.Duration `yaml:"progressTTL"`
	PostgresEnabled   bool          `yaml:"postgresEnabled"`
}

// Load builds the config from env vars, with an optional YAML file
// (CONFIG_FILE) applied first so env always wins.
func Load(log *logger.Logger) Config {
	cfg := Config{
		Port: "8080",
		AllowOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5174",
		},
		EnrichConcurrency: 1,
		ProgressTTL:       24 * time.Hour,
	}

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			log.Warn("Config file could not be loaded, continuing with env only", "path", path, "error", err)
		}
	}

	cfg.Port = utils.GetEnv("PORT", cfg.Port, log)
	if origins := strings.TrimSpace(os.Getenv("CORS_ALLOW_ORIGINS")); origins != "" {
		cfg.AllowOrigins = splitAndTrim(origins)
	}
	cfg.EnrichConcurrency = utils.GetEnvAsInt("ENRICH_CONCURRENCY", cfg.EnrichConcurrency, log)
	if cfg.EnrichConcurrency < 1 {
		cfg.EnrichConcurrency = 1
	}
	if ttl := utils.GetEnvAsInt("PROGRESS_TTL_SECONDS", 0, log); ttl > 0 {
		cfg.ProgressTTL = time.Duration(ttl) * time.Second
	}
	cfg.PostgresEnabled = utils.GetEnvAsBool("POSTGRES_ENABLED", cfg.PostgresEnabled, log)

	return cfg
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
