package types

import (
	"fmt"
	"net/url"
	"time"

	"github.com/jmespath/go-jmespath"
	"golang.org/x/text/currency"
)

// Config drives the storefront cart service. It is read from an optional YAML
// file and then overridden by environment variables (see internal/config).
// StorageKey is the single key under which the serialized cart is kept.
// Compress enables zstd compression of the persisted cart.
// Currency is the ISO 4217 code prices are displayed in.
// Inventory points at the remote stock and product service.
// SNSTopicArn, when set, also publishes user notifications to SNS.
type Config struct {
	Port        int             `json:"port" yaml:"port"`
	StorageKey  string          `json:"storage_key" yaml:"storage_key"`
	Compress    bool            `json:"compress" yaml:"compress"`
	Currency    string          `json:"currency" yaml:"currency"`
	Inventory   InventoryConfig `json:"inventory" yaml:"inventory"`
	SNSTopicArn string          `json:"sns_topic_arn" yaml:"sns_topic_arn"`
}

type InventoryConfig struct {
	BaseURL string `json:"base_url" yaml:"base_url"`
	// TimeoutSeconds bounds every remote lookup. 0 means DefaultInventoryTimeout.
	TimeoutSeconds int `json:"timeout_seconds" yaml:"timeout_seconds"`
	// StockAmountExpr is a JMESPath expression selecting the available quantity
	// from a stock response. Defaults to "amount".
	StockAmountExpr string `json:"stock_amount_expr" yaml:"stock_amount_expr"`
	// ProductCacheSeconds is how long product metadata is cached. 0 disables the cache.
	ProductCacheSeconds int `json:"product_cache_seconds" yaml:"product_cache_seconds"`
}

const (
	DefaultPort             = 8080
	DefaultStorageKey       = "@RocketShoes:cart"
	DefaultCurrency         = "BRL"
	DefaultStockAmountExpr  = "amount"
	DefaultInventoryTimeout = 10 * time.Second
)

// DefaultConfig returns a config with every optional field filled in.
func DefaultConfig() Config {
	return Config{
		Port:       DefaultPort,
		StorageKey: DefaultStorageKey,
		Currency:   DefaultCurrency,
		Inventory: InventoryConfig{
			BaseURL:             "http://localhost:3333",
			StockAmountExpr:     DefaultStockAmountExpr,
			ProductCacheSeconds: 300,
		},
	}
}

func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if c.StorageKey == "" {
		return fmt.Errorf("storage_key is required")
	}
	if _, err := currency.ParseISO(c.Currency); err != nil {
		return fmt.Errorf("currency %q is not a valid ISO 4217 code: %w", c.Currency, err)
	}
	if c.Inventory.BaseURL == "" {
		return fmt.Errorf("inventory.base_url is required")
	}
	u, err := url.Parse(c.Inventory.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("inventory.base_url must be an absolute URL")
	}
	if c.Inventory.StockAmountExpr != "" {
		if _, err := jmespath.Compile(c.Inventory.StockAmountExpr); err != nil {
			return fmt.Errorf("inventory.stock_amount_expr is not a valid JMESPath expression: %w", err)
		}
	}
	if c.Inventory.TimeoutSeconds < 0 {
		return fmt.Errorf("inventory.timeout_seconds must be non-negative. 0 for the default")
	}
	if c.Inventory.ProductCacheSeconds < 0 {
		return fmt.Errorf("inventory.product_cache_seconds must be non-negative. 0 for no cache")
	}
	return nil
}

// CurrencyUnit returns the parsed display currency. Call Validate first.
func (c Config) CurrencyUnit() currency.Unit {
	u, err := currency.ParseISO(c.Currency)
	if err != nil {
		return currency.XXX
	}
	return u
}

func (c InventoryConfig) Timeout() time.Duration {
	if c.TimeoutSeconds == 0 {
		return DefaultInventoryTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c InventoryConfig) ProductCacheTTL() time.Duration {
	return time.Duration(c.ProductCacheSeconds) * time.Second
}
