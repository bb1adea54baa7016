// Package config assembles the run configuration from defaults, an
// optional YAML file and the environment, in that order of
// increasing precedence. Command-line flags are applied last by the
// binaries.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"digital.vasic.webaccept/pkg/driver"
	"digital.vasic.webaccept/pkg/env"
)

// Config holds the settings of an acceptance run.
type Config struct {
	// Endpoint is the remote WebDriver hub URL.
	Endpoint string `yaml:"endpoint" json:"endpoint"`

	// Headless runs the browser without a display.
	Headless bool `yaml:"headless" json:"headless"`

	// DefaultTimeout bounds each element resolution.
	DefaultTimeout time.Duration `yaml:"default_timeout" json:"default_timeout"`

	// PollInterval is the pause between condition polls.
	PollInterval time.Duration `yaml:"poll_interval" json:"poll_interval"`

	// ClickAttempts bounds click retries.
	ClickAttempts int `yaml:"click_attempts" json:"click_attempts"`

	// ClickDelay is the pause before each retried click.
	ClickDelay time.Duration `yaml:"click_delay" json:"click_delay"`

	// SettleTimeout bounds waiting for filters and listings to
	// become usable.
	SettleTimeout time.Duration `yaml:"settle_timeout" json:"settle_timeout"`

	// SettleDelay is an optional fixed pause before settling.
	SettleDelay time.Duration `yaml:"settle_delay" json:"settle_delay"`

	// ContextTimeout bounds waiting for a new browsing context.
	ContextTimeout time.Duration `yaml:"context_timeout" json:"context_timeout"`

	// HubWaitTimeout, when positive, waits for the endpoint to report
	// ready before the session is opened.
	HubWaitTimeout time.Duration `yaml:"hub_wait_timeout" json:"hub_wait_timeout,omitempty"`

	// SitesFile overlays the embedded page definitions.
	SitesFile string `yaml:"sites_file" json:"sites_file,omitempty"`

	// ResultsDir receives run summaries. Empty disables them.
	ResultsDir string `yaml:"results_dir" json:"results_dir"`

	// LogFile receives JSON-lines logs. Empty disables file
	// logging.
	LogFile string `yaml:"log_file" json:"log_file"`

	// Verbose enables debug logging.
	Verbose bool `yaml:"verbose" json:"verbose"`

	// JUnitFile, when set, receives a JUnit XML report.
	JUnitFile string `yaml:"junit_file" json:"junit_file,omitempty"`

	// MonitorAddr, when set, serves the live run monitor.
	MonitorAddr string `yaml:"monitor_addr" json:"monitor_addr,omitempty"`

	// MetricsAddr, when set, serves Prometheus metrics.
	MetricsAddr string `yaml:"metrics_addr" json:"metrics_addr,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Endpoint:       driver.DefaultEndpoint,
		DefaultTimeout: 20 * time.Second,
		PollInterval:   500 * time.Millisecond,
		ClickAttempts:  10,
		ClickDelay:     time.Second,
		SettleTimeout:  10 * time.Second,
		ContextTimeout: 20 * time.Second,
		ResultsDir:     "results",
		LogFile:        "test_execution.log",
	}
}

// LoadFile overlays the YAML document at path onto c. Keys absent
// from the file keep c's values.
func (c Config) LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("failed to read config: %w", err)
	}
	out := c
	if err := yaml.Unmarshal(data, &out); err != nil {
		return c, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return out, nil
}

// FromEnv overlays WEBACCEPT_* settings from l onto c.
func (c Config) FromEnv(l env.Loader) (Config, error) {
	out := c
	var err error

	str := func(name string, dst *string) {
		if v := l.Setting(name); v != "" {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) {
		if err != nil {
			return
		}
		*dst, err = env.Duration(l, name, *dst)
	}
	flag := func(name string, dst *bool) {
		if err != nil {
			return
		}
		*dst, err = env.Bool(l, name, *dst)
	}

	str("ENDPOINT", &out.Endpoint)
	str("SITES_FILE", &out.SitesFile)
	str("RESULTS_DIR", &out.ResultsDir)
	str("LOG_FILE", &out.LogFile)
	str("JUNIT_FILE", &out.JUnitFile)
	str("MONITOR_ADDR", &out.MonitorAddr)
	str("METRICS_ADDR", &out.MetricsAddr)
	flag("HEADLESS", &out.Headless)
	flag("VERBOSE", &out.Verbose)
	dur("DEFAULT_TIMEOUT", &out.DefaultTimeout)
	dur("POLL_INTERVAL", &out.PollInterval)
	dur("CLICK_DELAY", &out.ClickDelay)
	dur("SETTLE_TIMEOUT", &out.SettleTimeout)
	dur("SETTLE_DELAY", &out.SettleDelay)
	dur("CONTEXT_TIMEOUT", &out.ContextTimeout)
	dur("HUB_WAIT_TIMEOUT", &out.HubWaitTimeout)
	if err == nil {
		out.ClickAttempts, err = env.Int(l, "CLICK_ATTEMPTS", out.ClickAttempts)
	}
	if err != nil {
		return c, fmt.Errorf("invalid environment setting: %w", err)
	}
	return out, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("endpoint %q is not an absolute URL", c.Endpoint)
	}
	if c.DefaultTimeout <= 0 {
		return fmt.Errorf("default_timeout must be positive")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}
	if c.ClickAttempts < 1 {
		return fmt.Errorf("click_attempts must be at least 1")
	}
	if c.ClickDelay < 0 || c.SettleDelay < 0 || c.HubWaitTimeout < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	if c.SettleTimeout <= 0 || c.ContextTimeout <= 0 {
		return fmt.Errorf("settle_timeout and context_timeout must be positive")
	}
	return nil
}

// DriverOptions returns the session options for c.
func (c Config) DriverOptions() driver.Options {
	return driver.Options{Endpoint: c.Endpoint, Headless: c.Headless}
}
