package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Config is read from the environment, optionally seeded from a .env file.
type Config struct {
	Port    string `envconfig:"PORT" default:"8080"`
	BaseURL string `envconfig:"BASE_URL" default:"http://localhost:8080"`

	DBDriver string `envconfig:"DB_DRIVER" default:"mysql"`
	DBDSN    string `envconfig:"DB_DSN"`
	DBDebug  bool   `envconfig:"DB_DEBUG" default:"false"`

	JWTSecret         string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL          time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	AllowRegistration bool          `envconfig:"ALLOW_REGISTRATION" default:"false"`
	CORSOrigins       []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`

	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	GeminiModel  string `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty bool   `envconfig:"LOG_PRETTY" default:"false"`

	Timezone      string        `envconfig:"TIMEZONE" default:"UTC"`
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"15m"`
	MetricsAllow  []string      `envconfig:"METRICS_ALLOW"`
}

// Load reads .env (when present) and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using process environment")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, errors.Wrap(err, "read environment")
	}
	if cfg.SweepInterval <= 0 {
		return Config{}, errors.New("SWEEP_INTERVAL must be positive")
	}
	return cfg, nil
}

// Location resolves TIMEZONE. Report date buckets use it.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "load timezone %q", c.Timezone)
	}
	return loc, nil
}

// ConfigureLogger applies LOG_LEVEL and LOG_PRETTY to the global logrus logger.
func (c Config) ConfigureLogger() error {
	level, err := log.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return errors.Wrapf(err, "parse LOG_LEVEL %q", c.LogLevel)
	}
	log.SetLevel(level)
	if c.LogPretty {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&log.JSONFormatter{})
	}
	return nil
}

// GeminiEnabled reports whether the assistant can be started.
func (c Config) GeminiEnabled() bool {
	return c.GeminiAPIKey != ""
}
