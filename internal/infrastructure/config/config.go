package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	APIBaseURL     string        `env:"FORUM_API_URL,        default=http://localhost:8080"`
	RequestTimeout time.Duration `env:"FORUM_REQUEST_TIMEOUT, default=10s"`
	LogLevel       string        `env:"LOG_LEVEL,            default=info"`
	LogPretty      bool          `env:"LOG_PRETTY,           default=true"`

	Storage StorageConfig
}

type StorageConfig struct {
	// Backend selects the durable session store: "file" or "redis".
	Backend  string `env:"FORUM_STORAGE,   default=file"`
	StateDir string `env:"FORUM_STATE_DIR"`

	Redis RedisConfig
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from the environment, after sourcing a local
// .env file when one exists. An empty state dir defaults to the per-user
// config directory.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if cfg.Storage.StateDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve state dir: %w", err)
		}
		cfg.Storage.StateDir = filepath.Join(base, "web-forum")
	}

	return &cfg, nil
}
