// Package config holds the settings for a test run, read from a YAML file and then overridden by
// command-line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultEndpointSuffix = ".php"
	DefaultServiceWait    = 10 * time.Second
)

// Config describes one test run.
type Config struct {
	// BaseURL is where the API lives, e.g. "http://localhost/api".
	BaseURL           string        `yaml:"base_url"`
	EndpointSuffix    string        `yaml:"endpoint_suffix"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`

	// ServiceWait is how long to wait for the service to answer before giving up. Zero skips the check.
	ServiceWait time.Duration `yaml:"service_wait"`

	// WordsFile replaces the built-in word list.
	WordsFile      string `yaml:"words_file"`
	SampleMediaDir string `yaml:"sample_media_dir"`

	// MediaRoot is the service's upload directory, emptied on teardown. Empty means leave uploads alone.
	MediaRoot string `yaml:"media_root"`

	Store StoreConfig `yaml:"store"`

	// Seed fixes the random source for fixtures. Nil means a seed is chosen at startup.
	Seed              *int64 `yaml:"seed"`
	ContinueOnFailure bool   `yaml:"continue_on_failure"`
}

// StoreConfig says how to reach the test database. An empty DSN means the harness has no access
// to the store and installs nothing.
type StoreConfig struct {
	Driver          string `yaml:"driver"`
	DSN             string `yaml:"dsn"`
	InstallScript   string `yaml:"install_script"`
	UninstallScript string `yaml:"uninstall_script"`
}

// Default returns the settings used for anything a config file does not mention.
func Default() Config {
	return Config{
		EndpointSuffix: DefaultEndpointSuffix,
		ServiceWait:    DefaultServiceWait,
	}
}

// Load reads a YAML file on top of Default. Unknown keys are an error. The result is not validated,
// since flags may still supply required values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("can't read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of Default.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks that the settings are usable for a run.
func (c Config) Validate() error {
	var errs []error
	if c.BaseURL == "" {
		errs = append(errs, errors.New("base_url is required"))
	} else if u, err := url.Parse(c.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("base_url %q is not an http(s) URL", c.BaseURL))
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, errors.New("request_timeout cannot be negative"))
	}
	if c.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("requests_per_second cannot be negative"))
	}
	if c.ServiceWait < 0 {
		errs = append(errs, errors.New("service_wait cannot be negative"))
	}
	if c.Store.DSN == "" && (c.Store.InstallScript != "" || c.Store.UninstallScript != "") {
		errs = append(errs, errors.New("store scripts are set but store.dsn is empty"))
	}
	return errors.Join(errs...)
}
