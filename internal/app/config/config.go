package config

import (
	"log/slog"
	"time"
)

type LogLeveler string

func (l LogLeveler) Level() slog.Level {
	var level slog.Level

	_ = level.UnmarshalText([]byte(l))

	return level
}

// Config holds the crawler configuration.
type Config struct {
	LogLevel  LogLeveler `mapstructure:"LOG_LEVEL"`
	LogFormat string     `mapstructure:"LOG_FORMAT" validate:"oneof=json console"`
	HTTP      HTTP       `mapstructure:",squash"`
	Provider  Provider   `mapstructure:",squash"`
	Crawl     Crawl      `mapstructure:",squash"`
	Redis     Redis      `mapstructure:",squash"`
	Metrics   Metrics    `mapstructure:",squash"`
}

type HTTP struct {
	Port    int           `mapstructure:"HTTP_PORT" validate:"gt=0"`
	Timeout time.Duration `mapstructure:"HTTP_TIMEOUT"`
}

type Redis struct {
	Addr            string        `mapstructure:"REDIS_ADDR"`
	Password        string        `mapstructure:"REDIS_PASSWORD"`
	DB              int           `mapstructure:"REDIS_DB"`
	Timeout         time.Duration `mapstructure:"REDIS_TIMEOUT"`
	CacheExpiration time.Duration `mapstructure:"CACHE_EXPIRATION"`
	LockTimeout     time.Duration `mapstructure:"LOCK_TIMEOUT"`
}

// Enabled reports whether a redis server is configured. Without one the
// crawler runs without cache, run lock and rate limit guard.
func (r Redis) Enabled() bool {
	return r.Addr != ""
}

// Provider holds the flight provider configuration. REPLAY_DIR is used by the
// replay provider instead of API_URL.
type Provider struct {
	Name         string        `mapstructure:"FLIGHT_PROVIDER" validate:"oneof=skyscanner replay"`
	APIKey       string        `mapstructure:"API_KEY" validate:"required_if=Name skyscanner"`
	APIHost      string        `mapstructure:"API_HOST"`
	SearchAPIURL string        `mapstructure:"API_URL" validate:"required_if=Name skyscanner,omitempty,url"`
	Timeout      time.Duration `mapstructure:"API_TIMEOUT"`
	ReplayDir    string        `mapstructure:"REPLAY_DIR" validate:"required_if=Name replay"`
	RateLimitRPS int           `mapstructure:"RATE_LIMIT_RPS" validate:"gte=0"`
}

type Crawl struct {
	NumAPIAttempts int           `mapstructure:"NUM_API_ATTEMPTS" validate:"gte=0"`
	APIRequestWait time.Duration `mapstructure:"API_REQUEST_WAIT" validate:"gte=0"`
	RouteDelay     time.Duration `mapstructure:"ROUTE_DELAY" validate:"gte=0"`
	DaysAhead      int           `mapstructure:"CRAWL_DAYS_AHEAD" validate:"gte=0"`
	RoutesFile     string        `mapstructure:"ROUTES_FILE" validate:"required"`
	AirportsFile   string        `mapstructure:"AIRPORTS_FILE" validate:"required"`
	OutputDir      string        `mapstructure:"OUTPUT_DIR" validate:"required"`
}

type Metrics struct {
	Textfile string `mapstructure:"METRICS_TEXTFILE"`
}
