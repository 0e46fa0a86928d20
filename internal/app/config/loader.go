package config

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

var defaults = map[string]any{
	"LOG_LEVEL":        "info",
	"LOG_FORMAT":       "json",
	"HTTP_PORT":        8080,
	"HTTP_TIMEOUT":     "30s",
	"FLIGHT_PROVIDER":  "skyscanner",
	"API_HOST":         "skyscanner50.p.rapidapi.com",
	"API_URL":          "https://skyscanner50.p.rapidapi.com/api/v1/searchFlights",
	"API_TIMEOUT":      "60s",
	"REPLAY_DIR":       "recordings",
	"RATE_LIMIT_RPS":   0,
	"NUM_API_ATTEMPTS": 3,
	"API_REQUEST_WAIT": "20s",
	"ROUTE_DELAY":      "1s",
	"CRAWL_DAYS_AHEAD": 187,
	"ROUTES_FILE":      "flight_routes.xlsx",
	"AIRPORTS_FILE":    "airport_data.xlsx",
	"OUTPUT_DIR":       ".",
	"REDIS_TIMEOUT":    "5s",
	"CACHE_EXPIRATION": "6h",
	"LOCK_TIMEOUT":     "12h",
}

// MustInitConfig initializes configuration from .env file or environment variables.
// If configFile exists, it loads from the file. Otherwise, it automatically binds
// environment variables based on the Config struct's mapstructure tags.
func MustInitConfig(configFile string) Config {
	cfg, err := InitConfig(configFile)
	if err != nil {
		slog.Error("cannot load config", slog.String("error", err.Error()))
		panic(err)
	}

	return cfg
}

// InitConfig is MustInitConfig returning the error.
func InitConfig(configFile string) (Config, error) {
	var (
		vpr = viper.New()
		cfg Config
	)

	for key, value := range defaults {
		vpr.SetDefault(key, value)
	}

	vpr.AutomaticEnv()

	vpr.SetConfigFile(configFile)
	vpr.SetConfigType("env")

	if err := vpr.ReadInConfig(); err != nil {
		slog.Warn("config file not found or cannot be read, using environment variables",
			slog.String("file", configFile),
			slog.String("error", err.Error()))
	} else {
		slog.Info("config file loaded successfully", slog.String("file", configFile))
	}

	// Automatically bind all environment variables from Config struct
	bindEnvFromStruct(vpr)

	// Unmarshal configuration into struct
	if err := vpr.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("cannot unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the loaded values, for instance that API_KEY is set when
// the skyscanner provider is selected.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// bindEnvFromStruct automatically binds environment variables based on mapstructure tags using reflection
func bindEnvFromStruct(vpr *viper.Viper) {
	bindEnvFromType(vpr, reflect.TypeOf(Config{}))
}

func bindEnvFromType(vpr *viper.Viper, t reflect.Type) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag == "" || tag == "-" {
			continue
		}

		envVar, opts, _ := strings.Cut(tag, ",")
		if strings.Contains(opts, "squash") && field.Type.Kind() == reflect.Struct {
			bindEnvFromType(vpr, field.Type)
			continue
		}

		if envVar != "" {
			_ = vpr.BindEnv(envVar)
		}
	}
}
