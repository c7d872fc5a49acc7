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

	// RedisURL enables product listing caching when set (redis://host:port).
	RedisURL string `mapstructure:"REDIS_URL"`
	// CacheTTLSeconds is the product listing cache lifetime.
	CacheTTLSeconds int `mapstructure:"CACHE_TTL_SECONDS" default:"300"`

	// PlatformTimeoutMS is the HTTP timeout for vendor API calls.
	PlatformTimeoutMS int `mapstructure:"PLATFORM_TIMEOUT_MS" default:"30000"`
	// PlatformSandbox switches every platform to its sandbox endpoint.
	PlatformSandbox bool `mapstructure:"PLATFORM_SANDBOX" default:"false"`

	// Shopee holds the Shopee Open Platform credentials.
	Shopee ShopeeConfig `mapstructure:",squash"`
	// TikTok holds the TikTok Shop credentials.
	TikTok TikTokConfig `mapstructure:",squash"`
	// Lazada holds the Lazada Open Platform credentials.
	Lazada LazadaConfig `mapstructure:",squash"`
	// ZaloOA holds the Zalo Official Account credentials.
	ZaloOA ZaloOAConfig `mapstructure:",squash"`
}

// ShopeeConfig holds the Shopee Open Platform credentials. The platform is
// only wired when PartnerID and PartnerKey are both present.
type ShopeeConfig struct {
	PartnerID   string `mapstructure:"SHOPEE_PARTNER_ID"`
	PartnerKey  string `mapstructure:"SHOPEE_PARTNER_KEY"`
	ShopID      string `mapstructure:"SHOPEE_SHOP_ID"`
	AccessToken string `mapstructure:"SHOPEE_ACCESS_TOKEN"`
}

// Configured reports whether enough credentials exist to wire the platform.
func (c ShopeeConfig) Configured() bool {
	return c.PartnerID != "" && c.PartnerKey != ""
}

// TikTokConfig holds the TikTok Shop credentials.
type TikTokConfig struct {
	AppKey      string `mapstructure:"TIKTOK_APP_KEY"`
	AppSecret   string `mapstructure:"TIKTOK_APP_SECRET"`
	ShopID      string `mapstructure:"TIKTOK_SHOP_ID"`
	AccessToken string `mapstructure:"TIKTOK_ACCESS_TOKEN"`
}

func (c TikTokConfig) Configured() bool {
	return c.AppKey != "" && c.AppSecret != ""
}

// LazadaConfig holds the Lazada Open Platform credentials.
type LazadaConfig struct {
	AppKey      string `mapstructure:"LAZADA_APP_KEY"`
	AppSecret   string `mapstructure:"LAZADA_APP_SECRET"`
	AccessToken string `mapstructure:"LAZADA_ACCESS_TOKEN"`
}

func (c LazadaConfig) Configured() bool {
	return c.AppKey != "" && c.AppSecret != ""
}

// ZaloOAConfig holds the Zalo Official Account credentials.
type ZaloOAConfig struct {
	AppID       string `mapstructure:"ZALO_APP_ID"`
	SecretKey   string `mapstructure:"ZALO_SECRET_KEY"`
	AccessToken string `mapstructure:"ZALO_ACCESS_TOKEN"`
}

func (c ZaloOAConfig) Configured() bool {
	return c.AccessToken != ""
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

// processTags iterates over the struct fields and sets default values in Viper.
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

		required := field.Tag.Get("required")
		if required == "true" {
			value := val.Field(i)
			if isZero(value) {
				key := field.Tag.Get("mapstructure")
				return fmt.Errorf("missing required configuration: %s", key)
			}
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
