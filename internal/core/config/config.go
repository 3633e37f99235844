package config

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`

	// DatabasePath is the sqlite file holding the package and event tables.
	DatabasePath string `mapstructure:"DB_PATH" default:"data/tracker.db"`

	// RedisURL enables carrier-response caching when set.
	RedisURL string `mapstructure:"REDIS_URL"`
	// CarrierCacheTTLSeconds bounds cached carrier responses. 0 disables caching.
	CarrierCacheTTLSeconds int `mapstructure:"CARRIER_CACHE_TTL_SECONDS" default:"0"`

	// SyncSchedule is a cron expression for periodic full syncs. Empty disables.
	SyncSchedule string `mapstructure:"SYNC_SCHEDULE"`

	// Carrier holds the 17track aggregation API configuration.
	Carrier CarrierConfig `mapstructure:",squash"`
}

// CarrierConfig holds the credentials for the 17track aggregation API.
type CarrierConfig struct {
	// APIKey authenticates requests against the aggregation API.
	APIKey string `mapstructure:"TRACK17_API_KEY" required:"true"`
	// APIURL is the base URL of the aggregation API.
	APIURL string `mapstructure:"TRACK17_API_URL" default:"https://api.17track.net/v2"`
	// TimeoutSeconds bounds each outbound carrier call.
	TimeoutSeconds int `mapstructure:"TRACK17_TIMEOUT_SECONDS" default:"10"`
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// processTags iterates over the struct fields and binds keys and default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			v.BindEnv(key)
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		if field.Tag.Get("required") == "true" && val.Field(i).IsZero() {
			return fmt.Errorf("missing required configuration: %s", field.Tag.Get("mapstructure"))
		}
	}
	return nil
}
