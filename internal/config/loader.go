package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the loader reads,
// e.g. GESTUREQUIZ_DATABASE_URL for database.url.
const EnvPrefix = "GESTUREQUIZ"

// Load reads configuration from the environment, applying defaults. A
// .env file in the working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Security.AllowedOrigins = splitList(v.GetString("security.allowed_origins"))
	cfg.Storage.AllowedSourceHosts = splitList(v.GetString("storage.allowed_source_hosts"))

	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required (GESTUREQUIZ_DATABASE_URL)")
	}

	if cfg.Security.APISecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, fmt.Errorf("generate api secret: %w", err)
		}
		cfg.Security.APISecret = secret
		cfg.Security.GeneratedSecret = true
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.url", "")

	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.bucket", "s3-ai-2025")
	v.SetDefault("storage.allowed_source_hosts", "oaidalleapiprodscus.blob.core.windows.net")

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")

	v.SetDefault("security.api_secret", "")
	v.SetDefault("security.allowed_origins", "")
	v.SetDefault("security.rate_limit_window", "60s")
	v.SetDefault("security.rate_limit_max", 10)

	v.SetDefault("logging.level", "info")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
