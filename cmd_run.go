package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ryffproject/api-contract-tests/apitests"
	"github.com/ryffproject/api-contract-tests/framework"
	"github.com/ryffproject/api-contract-tests/framework/ldtest"
)

func newRunCommand(rootOpts *rootOptions) *cobra.Command {
	params := &commandParams{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the contract tests against a service",
		Example: `  ryff-api-tests run --url http://localhost/api
  ryff-api-tests run --config ryff.yaml --run 'post' --debug`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(cmd, params, rootOpts)
		},
	}
	params.addFlags(cmd)
	return cmd
}

func runTests(cmd *cobra.Command, params *commandParams, rootOpts *rootOptions) error {
	cfg, err := params.resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Seed == nil {
		seed := time.Now().UnixNano()
		cfg.Seed = &seed
	}

	logger := rootOpts.logger()
	var clientLogger framework.Logger = framework.NullLogger()
	if params.debugAll {
		clientLogger = framework.SlogLogger(logger)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := apitests.OpenEnvironment(cfg, clientLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := env.Close(); err != nil {
			logger.Warn("failed to close store connection", "error", err)
		}
	}()
	logger.Info("starting test run", "url", cfg.BaseURL, "seed", env.Seed(),
		"avatars", len(env.Media.Avatars), "post_images", len(env.Media.PostImages), "riffs", len(env.Media.Riffs))

	out := cmd.OutOrStdout()
	if cfg.ServiceWait > 0 {
		if err := env.Client.AwaitService(ctx, cfg.ServiceWait, out); err != nil {
			return err
		}
	}

	fmt.Fprintln(out)
	framework.PrintFilterDescription(out, params.filters)
	fmt.Fprintln(out, "Running test suite")

	console := &ConsoleTestLogger{
		Out:                  out,
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}
	metrics := framework.NewMetricsTestLogger()
	policy := ldtest.StopOnFailure
	if cfg.ContinueOnFailure {
		policy = ldtest.ContinueOnFailure
	}
	runner := &ldtest.Runner{
		Environment: env,
		Tests:       apitests.AllTests(),
		Context:     env,
		Filter:      params.filters.AsFilter,
		TestLogger:  framework.MultiTestLogger{console, metrics},
		Policy:      policy,
	}
	results := runner.Run(ctx, !params.noSetup, !params.noTeardown)

	fmt.Fprintln(out)
	framework.PrintResults(out, results)

	if params.metricsFile != "" {
		if err := metrics.WriteTextfile(params.metricsFile); err != nil {
			logger.Error("failed to write metrics", "path", params.metricsFile, "error", err)
		}
	}

	if !results.OK() {
		fmt.Fprintf(out, "\nTo repeat this run with the same fixture data:\n  %s\n", params.rerunCommand(cfg, env.Seed()))
		return errRunFailed
	}
	return nil
}
