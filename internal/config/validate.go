package config

import (
	"errors"
	"fmt"
	"strings"
)

var knownLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate performs structural validation on the config.
func (c Config) Validate() error {
	var errs []string

	if c.Addr == "" {
		errs = append(errs, "addr is required")
	}
	if !knownLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q", c.LogLevel))
	}
	if f := strings.ToLower(c.LogFormat); f != "text" && f != "json" {
		errs = append(errs, fmt.Sprintf("unknown log_format %q", c.LogFormat))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, "shutdown_timeout must be > 0")
	}

	if c.API.BaseURL == "" && c.Fixtures.Dir == "" {
		errs = append(errs, "one of api.base_url or fixtures.dir is required")
	}
	if c.API.BaseURL != "" && !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		errs = append(errs, fmt.Sprintf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL))
	}
	if c.API.RequestTimeout < 0 {
		errs = append(errs, "api.request_timeout must be >= 0")
	}

	if c.Chart.SettleDelay < 0 {
		errs = append(errs, "chart.settle_delay must be >= 0")
	}
	if c.Chart.Capability == "" {
		errs = append(errs, "chart.capability is required")
	}

	if !strings.HasPrefix(c.Embed.RoutePath, "/") {
		errs = append(errs, fmt.Sprintf("embed.route_path must start with /, got %q", c.Embed.RoutePath))
	}
	if c.Embed.ErrorStatus < 100 || c.Embed.ErrorStatus > 599 {
		errs = append(errs, fmt.Sprintf("embed.error_status must be a valid HTTP status, got %d", c.Embed.ErrorStatus))
	}
	if c.Embed.PageSize <= 0 {
		errs = append(errs, fmt.Sprintf("embed.page_size must be > 0, got %d", c.Embed.PageSize))
	}

	if c.Theme.Name == "" {
		errs = append(errs, "theme.name is required")
	}
	if len(errs) > 0 {
		return errors.New("config: " + strings.Join(errs, "; "))
	}
	return nil
}
