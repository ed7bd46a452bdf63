package main

import (
	"strconv"
	"strings"

	"github.com/alessio/shellescape"
	"github.com/spf13/cobra"

	"github.com/ryffproject/api-contract-tests/config"
	"github.com/ryffproject/api-contract-tests/framework"
)

type commandParams struct {
	configFile        string
	serviceURL        string
	filters           framework.RegexFilters
	noSetup           bool
	noTeardown        bool
	continueOnFailure bool
	seed              int64
	debug             bool
	debugAll          bool
	metricsFile       string
}

func (c *commandParams) addFlags(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&c.configFile, "config", "", "YAML configuration file")
	fs.StringVar(&c.serviceURL, "url", "", "base URL of the API, e.g. http://localhost/api")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.noSetup, "no-setup", false, "don't install the test database before running")
	fs.BoolVar(&c.noTeardown, "no-teardown", false, "leave the test database and uploads in place after running")
	fs.BoolVar(&c.continueOnFailure, "continue-on-failure", false, "keep running tests after one fails")
	fs.Int64Var(&c.seed, "seed", 0, "seed for generated fixture data (default: random)")
	fs.BoolVar(&c.debug, "debug", false, "show debug output for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "show debug output for all tests")
	fs.StringVar(&c.metricsFile, "metrics-file", "", "write run metrics to this file in Prometheus text format")
}

// resolveConfig loads the config file, if any, and applies the flags that were given on the
// command line on top of it.
func (c *commandParams) resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if c.configFile != "" {
		var err error
		if cfg, err = config.Load(c.configFile); err != nil {
			return config.Config{}, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.BaseURL = c.serviceURL
	}
	if flags.Changed("continue-on-failure") {
		cfg.ContinueOnFailure = c.continueOnFailure
	}
	if flags.Changed("seed") {
		seed := c.seed
		cfg.Seed = &seed
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// rerunCommand is a shell command line that repeats this run with the same fixture data.
func (c *commandParams) rerunCommand(cfg config.Config, seed int64) string {
	var b commandBuilder
	b.add("ryff-api-tests", "run")
	if c.configFile != "" {
		b.add("--config", c.configFile)
	}
	b.add("--url", cfg.BaseURL, "--seed", strconv.FormatInt(seed, 10))
	for _, p := range c.filters.MustMatch.Patterns() {
		b.add("--run", p)
	}
	for _, p := range c.filters.MustNotMatch.Patterns() {
		b.add("--skip", p)
	}
	if c.noSetup {
		b.add("--no-setup")
	}
	if c.noTeardown {
		b.add("--no-teardown")
	}
	if cfg.ContinueOnFailure {
		b.add("--continue-on-failure")
	}
	return b.String()
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
