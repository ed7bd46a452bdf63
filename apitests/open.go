package apitests

import (
	"time"

	"github.com/ryffproject/api-contract-tests/config"
	"github.com/ryffproject/api-contract-tests/fixtures"
	"github.com/ryffproject/api-contract-tests/framework"
	"github.com/ryffproject/api-contract-tests/framework/harness"
	"github.com/ryffproject/api-contract-tests/store"
)

// OpenEnvironment builds an Environment from a run configuration, connecting to the store if one
// is configured. If cfg.Seed is nil, the current time is used. The caller must Close the result.
func OpenEnvironment(cfg config.Config, logger framework.Logger) (*Environment, error) {
	client := harness.NewClient(harness.ClientConfig{
		BaseURL:           cfg.BaseURL,
		EndpointSuffix:    cfg.EndpointSuffix,
		RequestTimeout:    cfg.RequestTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
	}, logger)

	var words []string
	if cfg.WordsFile != "" {
		var err error
		if words, err = fixtures.LoadWords(cfg.WordsFile); err != nil {
			return nil, err
		}
	}

	media, err := fixtures.LoadMediaPool(cfg.SampleMediaDir)
	if err != nil {
		return nil, err
	}

	hooks, err := openStore(cfg.Store)
	if err != nil {
		return nil, err
	}

	seed := time.Now().UnixNano()
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}

	return NewEnvironment(EnvironmentOptions{
		Client:    client,
		Words:     words,
		Media:     media,
		Seed:      seed,
		Hooks:     hooks,
		MediaRoot: cfg.MediaRoot,
	}), nil
}

func openStore(sc config.StoreConfig) (store.Hooks, error) {
	if sc.DSN == "" {
		return store.NoopHooks(), nil
	}
	install, uninstall := store.DefaultInstallScript(), store.DefaultUninstallScript()
	if sc.InstallScript != "" {
		var err error
		if install, err = store.LoadScript(sc.InstallScript); err != nil {
			return nil, err
		}
	}
	if sc.UninstallScript != "" {
		var err error
		if uninstall, err = store.LoadScript(sc.UninstallScript); err != nil {
			return nil, err
		}
	}
	return store.Open(sc.Driver, sc.DSN, install, uninstall)
}
