// Package config holds the reportview service configuration. Values are
// loaded by viper from reportview.yaml, REPORTVIEW_* environment variables
// and command flags, on top of Default.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Addr            string         `mapstructure:"addr"`
	LogLevel        string         `mapstructure:"log_level"`
	LogFormat       string         `mapstructure:"log_format"`
	ShutdownTimeout time.Duration  `mapstructure:"shutdown_timeout"`
	API             APIConfig      `mapstructure:"api"`
	Chart           ChartConfig    `mapstructure:"chart"`
	Embed           EmbedConfig    `mapstructure:"embed"`
	Theme           ThemeConfig    `mapstructure:"theme"`
	Assets          AssetsConfig   `mapstructure:"assets"`
	Fixtures        FixturesConfig `mapstructure:"fixtures"`
}

// APIConfig points at the reporting API. Token authenticates the stat/graph
// flow only; public snapshots are fetched without it. A zero RequestTimeout
// keeps the transport default.
type APIConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	Token          string        `mapstructure:"token"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// ChartConfig configures chart restoration. SettleDelay postpones the
// restore after the table's first render; zero restores right away.
type ChartConfig struct {
	SettleDelay time.Duration `mapstructure:"settle_delay"`
	Capability  string        `mapstructure:"capability"`
	Width       string        `mapstructure:"width"`
	Height      string        `mapstructure:"height"`
	AssetsHost  string        `mapstructure:"assets_host"`
}

type EmbedConfig struct {
	RoutePath   string `mapstructure:"route_path"`
	ErrorStatus int    `mapstructure:"error_status"`
	PageSize    int    `mapstructure:"page_size"`
}

// ThemeConfig declares one inline theme. Tokens become CSS custom properties
// on the widget page; Variants override them per variant name.
type ThemeConfig struct {
	Name     string                       `mapstructure:"name"`
	Variant  string                       `mapstructure:"variant"`
	Tokens   map[string]string            `mapstructure:"tokens"`
	Variants map[string]map[string]string `mapstructure:"variants"`
}

type AssetsConfig struct {
	URLPrefix string `mapstructure:"url_prefix"`
}

// FixturesConfig serves resources from a directory instead of the API when
// Dir is set.
type FixturesConfig struct {
	Dir string `mapstructure:"dir"`
}

func Default() Config {
	return Config{
		Addr:            ":8080",
		LogLevel:        "info",
		LogFormat:       "text",
		ShutdownTimeout: 5 * time.Second,
		Chart: ChartConfig{
			Capability: "echarts",
			Width:      "100%",
			Height:     "420px",
		},
		Embed: EmbedConfig{
			RoutePath:   "/embed",
			ErrorStatus: 200,
			PageSize:    20,
		},
		Theme: ThemeConfig{
			Name:     "default",
			Variant:  "light",
			Tokens:   map[string]string{},
			Variants: map[string]map[string]string{},
		},
		Assets: AssetsConfig{
			URLPrefix: "/assets",
		},
	}
}

// Load unmarshals v on top of Default and validates the result.
func Load(v *viper.Viper) (Config, error) {
	cfg := Default()
	if v == nil {
		v = viper.GetViper()
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.API.BaseURL = strings.TrimSpace(c.API.BaseURL)
	c.Fixtures.Dir = strings.TrimSpace(c.Fixtures.Dir)
	c.Theme.Name = strings.TrimSpace(c.Theme.Name)
	c.Theme.Variant = strings.TrimSpace(c.Theme.Variant)
	if c.Theme.Tokens == nil {
		c.Theme.Tokens = map[string]string{}
	}
	if c.Theme.Variants == nil {
		c.Theme.Variants = map[string]map[string]string{}
	}
}
