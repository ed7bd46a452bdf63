package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ryffproject/api-contract-tests/mockservice"
)

const (
	defaultMockPort     = 8111
	mockShutdownTimeout = 5 * time.Second
)

func newMockServiceCommand(rootOpts *rootOptions) *cobra.Command {
	var port int
	var mediaRoot string
	cmd := &cobra.Command{
		Use:   "mock-service",
		Short: "Serve an in-memory stand-in for the API",
		Long: `Serves an in-memory implementation of the endpoints the contract tests use, so that the
harness itself can be tried out without a deployment. State is lost when it exits.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveMock(cmd.Context(), rootOpts, port, mediaRoot)
		},
	}
	cmd.Flags().IntVar(&port, "port", defaultMockPort, "port to listen on")
	cmd.Flags().StringVar(&mediaRoot, "media-root", "", "directory to store uploaded files in (default: discard)")
	return cmd
}

func serveMock(ctx context.Context, rootOpts *rootOptions, port int, mediaRoot string) error {
	logger := rootOpts.logger()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(port)),
		Handler:           mockservice.New(mediaRoot, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("mock service listening", "addr", server.Addr, "media_root", mediaRoot)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), mockShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("mock service stopped")
	return nil
}
