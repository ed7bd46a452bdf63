package apitests

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"

	"github.com/ryffproject/api-contract-tests/fixtures"
	"github.com/ryffproject/api-contract-tests/framework/harness"
	"github.com/ryffproject/api-contract-tests/mediadir"
	"github.com/ryffproject/api-contract-tests/store"
)

// EnvironmentOptions holds everything an Environment is built from.
type EnvironmentOptions struct {
	// Client reaches the service under test. If nil, a client with no base URL is used, which is
	// only useful when no test calls the service.
	Client *harness.Client

	// Words is the word pool for synthetic data. If empty, the built-in list is used.
	Words []string
	Media fixtures.MediaPool
	Seed  int64

	// Hooks install and uninstall the test database. If nil, the store is left alone.
	Hooks store.Hooks

	// MediaRoot is the service's upload directory. If empty, uploads are left alone.
	MediaRoot string
}

// Environment is the state shared by all tests in a run. It is passed to the runner as the
// test context, and tests reach it through requireEnv.
type Environment struct {
	Client   *harness.Client
	Words    *fixtures.WordSource
	Media    fixtures.MediaPool
	Fixtures *fixtures.Factory
	seed     int64
	hooks    store.Hooks
	cleaner  mediadir.Cleaner
}

func NewEnvironment(opts EnvironmentOptions) *Environment {
	words := opts.Words
	if len(words) == 0 {
		words = fixtures.DefaultWords()
	}
	hooks := opts.Hooks
	if hooks == nil {
		hooks = store.NoopHooks()
	}
	client := opts.Client
	if client == nil {
		client = harness.NewClient(harness.ClientConfig{}, nil)
	}
	rng := rand.New(rand.NewSource(opts.Seed))
	wordSource := fixtures.NewWordSource(words, rng)
	return &Environment{
		Client:   client,
		Words:    wordSource,
		Media:    opts.Media,
		Fixtures: fixtures.NewFactory(wordSource, opts.Media, rng, client),
		seed:     opts.Seed,
		hooks:    hooks,
		cleaner:  mediadir.NewCleaner(opts.MediaRoot),
	}
}

// Seed returns the seed that the fixture data is generated from.
func (e *Environment) Seed() int64 {
	return e.seed
}

// Setup tears down whatever a previous run may have left behind, then installs the test database.
func (e *Environment) Setup(ctx context.Context) error {
	if err := e.Teardown(ctx); err != nil {
		return fmt.Errorf("could not clean up before installing: %w", err)
	}
	return e.hooks.Install(ctx)
}

// Teardown uninstalls the test database and deletes uploaded media. Both are always attempted;
// the error, if any, joins whatever went wrong in each.
func (e *Environment) Teardown(ctx context.Context) error {
	uninstallErr := e.hooks.Uninstall(ctx)
	cleanupErr := e.cleaner.Clear()
	return errors.Join(uninstallErr, cleanupErr)
}

// Close releases the store connection, if the hooks hold one.
func (e *Environment) Close() error {
	if c, ok := e.hooks.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
