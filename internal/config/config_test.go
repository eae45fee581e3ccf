package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/viper"
)

func TestDefault_NeedsDataSource(t *testing.T) {
	err := Default().Validate()
	if err == nil || !strings.Contains(err.Error(), "api.base_url or fixtures.dir") {
		t.Fatalf("expected data source error, got %v", err)
	}

	cfg := Default()
	cfg.Fixtures.Dir = "testdata"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		cfg := Default()
		cfg.API.BaseURL = "https://reports.example.com"
		return cfg
	}
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "log level", mutate: func(c *Config) { c.LogLevel = "trace" }, want: "log_level"},
		{name: "log format", mutate: func(c *Config) { c.LogFormat = "xml" }, want: "log_format"},
		{name: "base url scheme", mutate: func(c *Config) { c.API.BaseURL = "reports.example.com" }, want: "api.base_url"},
		{name: "timeout", mutate: func(c *Config) { c.API.RequestTimeout = -time.Second }, want: "api.request_timeout"},
		{name: "settle delay", mutate: func(c *Config) { c.Chart.SettleDelay = -time.Second }, want: "chart.settle_delay"},
		{name: "route path", mutate: func(c *Config) { c.Embed.RoutePath = "embed" }, want: "embed.route_path"},
		{name: "error status", mutate: func(c *Config) { c.Embed.ErrorStatus = 999 }, want: "embed.error_status"},
		{name: "page size", mutate: func(c *Config) { c.Embed.PageSize = 0 }, want: "embed.page_size"},
		{name: "theme name", mutate: func(c *Config) { c.Theme.Name = "" }, want: "theme.name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reportview.yaml")
	data := `
addr: ":9000"
api:
  base_url: https://reports.example.com
  request_timeout: 3s
embed:
  page_size: 50
theme:
  name: acme
  tokens:
    brand: "#123456"
  variants:
    dark:
      brand: "#000000"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("REPORTVIEW_API_TOKEN", "secret")

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("REPORTVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("api.token")
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("read config: %v", err)
	}

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Addr != ":9000" || cfg.API.Token != "secret" || cfg.API.RequestTimeout != 3*time.Second {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Embed.PageSize != 50 || cfg.Embed.RoutePath != "/embed" {
		t.Fatalf("embed defaults not kept: %+v", cfg.Embed)
	}
	want := map[string]map[string]string{"dark": {"brand": "#000000"}}
	if diff := cmp.Diff(want, cfg.Theme.Variants); diff != "" {
		t.Fatalf("variants mismatch (-want +got):\n%s", diff)
	}
}
