package server

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"os"
	"strings"
	"time"

	"household/internal/domain/errors"

	goerrors "github.com/go-faster/errors"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	StoreMemory    = "memory"
	StorePostgres  = "postgres"
	StoreFirestore = "firestore"

	IdentityLocal    = "local"
	IdentityFirebase = "firebase"
)

type Config struct {
	Addr        string `yaml:"addr" env:"ADDR" env-default:"0.0.0.0"`
	Port        int    `yaml:"port" env:"PORT" env-default:"8080"`
	Store       string `yaml:"store" env:"STORE" env-default:"memory"`
	DBStr       string `yaml:"db_str" env:"DB_STR"`
	MigratePath string `yaml:"migrate_path" env:"MIGRATE_PATH" env-default:"migrations"`

	Identity            string        `yaml:"identity" env:"IDENTITY" env-default:"local"`
	FirebaseProjectID   string        `yaml:"firebase_project_id" env:"FIREBASE_PROJECT_ID"`
	FirebaseCredentials string        `yaml:"firebase_credentials" env:"FIREBASE_CREDENTIALS"`
	TokenSecret         string        `yaml:"token_secret" env:"TOKEN_SECRET"`
	TokenTTL            time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"72h"`

	CORSOrigins    []string `yaml:"cors_origins" env:"CORS_ORIGINS" env-separator:"," env-default:"*"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS" env-default:"5"`
	RateLimitBurst int      `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST" env-default:"10"`
	MaxBodyBytes   int64    `yaml:"max_body_bytes" env:"MAX_BODY_BYTES" env-default:"1048576"`

	LogLevel        string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"30s"`

	// EphemeralSecret is set when no TOKEN_SECRET was configured and a random
	// one was generated; tokens will not survive a restart.
	EphemeralSecret bool `yaml:"-" env:"-"`
}

// ReadConfig loads the configuration from an optional YAML file (-c or
// CONFIG), then the environment (a .env file is loaded first if present),
// then explicitly passed flags.
func ReadConfig(args []string) (*Config, error) {
	fs := flag.NewFlagSet("household", flag.ContinueOnError)
	configFile := fs.String("c", "", "path to a YAML config file")
	addr := fs.String("addr", "", "listen address")
	port := fs.Int("port", 0, "listen port")
	store := fs.String("store", "", "document store: memory, postgres or firestore")
	dbStr := fs.String("dbstr", "", "postgres connection string")
	migratePath := fs.String("migratepath", "", "path to the migrations directory")
	identity := fs.String("identity", "", "identity provider: local or firebase")
	logLevel := fs.String("log-level", "", "log level")
	if err := fs.Parse(args); err != nil {
		return nil, goerrors.Wrap(errors.ErrConfigInvalid, err.Error())
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, goerrors.Wrap(errors.ErrConfigFileReadFailed, err.Error())
	}

	path := *configFile
	if path == "" {
		path = os.Getenv("CONFIG")
	}

	cfg := &Config{}
	if path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, goerrors.Wrapf(errors.ErrConfigFileReadFailed, "%s: %v", path, err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, goerrors.Wrap(errors.ErrConfigInvalid, err.Error())
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = *addr
		case "port":
			cfg.Port = *port
		case "store":
			cfg.Store = *store
		case "dbstr":
			cfg.DBStr = *dbStr
		case "migratepath":
			cfg.MigratePath = *migratePath
		case "identity":
			cfg.Identity = *identity
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	c.Identity = strings.ToLower(strings.TrimSpace(c.Identity))

	if c.Port < 1 || c.Port > 65535 {
		return goerrors.Wrapf(errors.ErrConfigInvalid, "port must be between 1 and 65535, got %d", c.Port)
	}
	switch c.Store {
	case StoreMemory, StoreFirestore:
	case StorePostgres:
		if c.DBStr == "" {
			return goerrors.Wrap(errors.ErrConfigInvalid, "DB_STR is required for the postgres store")
		}
	default:
		return goerrors.Wrapf(errors.ErrConfigInvalid, "unknown store %q", c.Store)
	}
	switch c.Identity {
	case IdentityLocal:
		if c.TokenSecret == "" {
			secret, err := randomSecret()
			if err != nil {
				return err
			}
			c.TokenSecret = secret
			c.EphemeralSecret = true
		}
	case IdentityFirebase:
	default:
		return goerrors.Wrapf(errors.ErrConfigInvalid, "unknown identity provider %q", c.Identity)
	}
	if (c.Store == StoreFirestore || c.Identity == IdentityFirebase) && c.FirebaseProjectID == "" {
		return goerrors.Wrap(errors.ErrConfigInvalid, "FIREBASE_PROJECT_ID is required for firebase services")
	}
	if c.RateLimitBurst < 1 {
		c.RateLimitBurst = 1
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"*"}
	}
	return nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", goerrors.Wrap(err, "generate token secret")
	}
	return hex.EncodeToString(buf), nil
}
