// Package config assembles the service configuration from an optional .env
// file, an optional YAML file and the process environment, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"storefront/internal/types"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	EnvFileKey    = "ENV_FILE"
	ConfigFileKey = "CONFIG_FILE"
	LogLevelKey   = "LOG_LEVEL"
	LogFormatKey  = "LOG_FORMAT"

	PortKey                = "PORT"
	StorageKeyKey          = "CART_STORAGE_KEY"
	CompressKey            = "CART_COMPRESS"
	CurrencyKey            = "CURRENCY"
	InventoryURLKey        = "INVENTORY_URL"
	InventoryTimeoutKey    = "INVENTORY_TIMEOUT_SECONDS"
	StockAmountExprKey     = "STOCK_AMOUNT_EXPR"
	ProductCacheSecondsKey = "PRODUCT_CACHE_SECONDS"
	SNSTopicArnKey         = "SNS_TOPIC_ARN"
)

// LoadEnvFile loads ENV_FILE (default ".env") into the process environment.
// Variables already set are not overwritten. A missing file is not an error.
func LoadEnvFile() {
	envFile := os.Getenv(EnvFileKey)
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.WithField("file", envFile).Info("The .env file not found.")
	}
}

// Load builds the Config: defaults, then CONFIG_FILE if set, then
// environment overrides. The result is validated.
func Load() (types.Config, error) {
	cfg := types.DefaultConfig()

	if path := os.Getenv(ConfigFileKey); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, types.Err(types.ErrInvalidConfig, err, "read %s", path)
		}
		if err := Parse(b, &cfg); err != nil {
			return cfg, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, types.Err(types.ErrInvalidConfig, err, "validate")
	}
	return cfg, nil
}

// Parse decodes a YAML document over cfg. Keys absent from the document keep
// their current values.
func Parse(b []byte, cfg *types.Config) error {
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return types.Err(types.ErrInvalidConfig, err, "parse yaml")
	}
	return nil
}

func applyEnv(cfg *types.Config) error {
	var err error
	if v, ok := lookup(PortKey); ok {
		if cfg.Port, err = strconv.Atoi(v); err != nil {
			return types.Err(types.ErrInvalidConfig, err, "%s", PortKey)
		}
	}
	if v, ok := lookup(StorageKeyKey); ok {
		cfg.StorageKey = v
	}
	if v, ok := lookup(CompressKey); ok {
		if cfg.Compress, err = strconv.ParseBool(v); err != nil {
			return types.Err(types.ErrInvalidConfig, err, "%s", CompressKey)
		}
	}
	if v, ok := lookup(CurrencyKey); ok {
		cfg.Currency = strings.ToUpper(v)
	}
	if v, ok := lookup(InventoryURLKey); ok {
		cfg.Inventory.BaseURL = v
	}
	if v, ok := lookup(InventoryTimeoutKey); ok {
		if cfg.Inventory.TimeoutSeconds, err = strconv.Atoi(v); err != nil {
			return types.Err(types.ErrInvalidConfig, err, "%s", InventoryTimeoutKey)
		}
	}
	if v, ok := lookup(StockAmountExprKey); ok {
		cfg.Inventory.StockAmountExpr = v
	}
	if v, ok := lookup(ProductCacheSecondsKey); ok {
		if cfg.Inventory.ProductCacheSeconds, err = strconv.Atoi(v); err != nil {
			return types.Err(types.ErrInvalidConfig, err, "%s", ProductCacheSecondsKey)
		}
	}
	if v, ok := lookup(SNSTopicArnKey); ok {
		cfg.SNSTopicArn = v
	}
	return nil
}

// lookup treats an empty variable as unset.
func lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

// SetupLogging configures the global logrus logger from LOG_LEVEL and
// LOG_FORMAT ("json" or "text").
func SetupLogging() error {
	level := log.InfoLevel
	if v, ok := lookup(LogLevelKey); ok {
		l, err := log.ParseLevel(v)
		if err != nil {
			return fmt.Errorf("%s: %w", LogLevelKey, err)
		}
		level = l
	}
	log.SetLevel(level)

	switch v, _ := lookup(LogFormatKey); strings.ToLower(v) {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	case "", "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("%s: unknown format %q", LogFormatKey, v)
	}
	return nil
}
