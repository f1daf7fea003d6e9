package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvProduction = "production"

	UploadDriverDisk   = "disk"
	UploadDriverGridFS = "gridfs"
)

type Config struct {
	AppEnv string `envconfig:"APP_ENV" default:"development"`
	Port   string `envconfig:"PORT" default:"5000"`

	Mongo  MongoConfig
	Auth   AuthConfig
	Upload UploadConfig

	PublicBaseURL      string        `envconfig:"PUBLIC_BASE_URL" default:""`
	CacheTTL           time.Duration `envconfig:"CACHE_TTL" default:"2m"`
	CORSAllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
}

type MongoConfig struct {
	URI                    string        `envconfig:"MONGODB_URI" required:"true"`
	Database               string        `envconfig:"MONGODB_DB" default:"suits-world"`
	MaxPoolSize            uint64        `envconfig:"MONGODB_MAX_POOL_SIZE" default:"10"`
	ServerSelectionTimeout time.Duration `envconfig:"MONGODB_SERVER_SELECTION_TIMEOUT" default:"5s"`
}

type AuthConfig struct {
	JWTSecret  string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL   time.Duration `envconfig:"JWT_TTL" default:"168h"`
	BcryptCost int           `envconfig:"BCRYPT_COST" default:"10"`
}

type UploadConfig struct {
	Driver   string        `envconfig:"UPLOAD_DRIVER" default:"disk"`
	Dir      string        `envconfig:"UPLOAD_DIR" default:"uploads"`
	MaxBytes int64         `envconfig:"UPLOAD_MAX_BYTES" default:"5242880"`
	MaxFiles int           `envconfig:"UPLOAD_MAX_FILES" default:"10"`
	Timeout  time.Duration `envconfig:"UPLOAD_TIMEOUT" default:"30s"`
}

// IsProduction reports whether internal error details must be hidden from clients.
func (c *Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

// LoadConfig reads a local .env file when one exists and then decodes the
// process environment.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ Error loading .env file:", err)
		} else {
			log.Println("✅ .env file loaded successfully")
		}
	} else {
		log.Println("🌐 Using system environment variables")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}

	switch cfg.Upload.Driver {
	case UploadDriverDisk, UploadDriverGridFS:
	default:
		return nil, fmt.Errorf("invalid UPLOAD_DRIVER %q", cfg.Upload.Driver)
	}
	if cfg.Upload.MaxBytes <= 0 || cfg.Upload.MaxFiles <= 0 {
		return nil, fmt.Errorf("upload limits must be positive")
	}

	return &cfg, nil
}
