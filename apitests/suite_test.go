package apitests

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryffproject/api-contract-tests/fixtures"
	"github.com/ryffproject/api-contract-tests/framework"
	"github.com/ryffproject/api-contract-tests/framework/harness"
	"github.com/ryffproject/api-contract-tests/framework/ldtest"
	"github.com/ryffproject/api-contract-tests/mediadir"
	"github.com/ryffproject/api-contract-tests/mockservice"
	"github.com/ryffproject/api-contract-tests/store"
)

type testService struct {
	service   *mockservice.Service
	mediaRoot string
	sample    fixtures.MediaPool
}

func newTestService(t *testing.T) testService {
	sampleDir := t.TempDir()
	for _, name := range []string{"avatars/face.png", "posts/photo.jpg", "riffs/song.mp3"} {
		path := filepath.Join(sampleDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("sample"), 0o600))
	}
	sample, err := fixtures.LoadMediaPool(sampleDir)
	require.NoError(t, err)

	mediaRoot := t.TempDir()
	return testService{service: mockservice.New(mediaRoot, nil), mediaRoot: mediaRoot, sample: sample}
}

func (s testService) environment(baseURL string) *Environment {
	return NewEnvironment(EnvironmentOptions{
		Client: harness.NewClient(harness.ClientConfig{BaseURL: baseURL, EndpointSuffix: ".php"}, nil),
		Media:  s.sample,
		Seed:   1,
		Hooks: store.FuncHooks{UninstallFunc: func(context.Context) error {
			s.service.Reset()
			return nil
		}},
		MediaRoot: s.mediaRoot,
	})
}

func runSuite(env *Environment, policy ldtest.Policy) framework.Results {
	runner := &ldtest.Runner{Environment: env, Tests: AllTests(), Context: env, Policy: policy}
	return runner.Run(context.Background(), true, true)
}

func describeFailures(results framework.Results) string {
	var lines []string
	for _, f := range results.Failures {
		for _, err := range f.Errors {
			lines = append(lines, f.TestID.String()+": "+err.Error())
		}
		for _, m := range f.Output {
			lines = append(lines, "    "+m.Message)
		}
	}
	if !results.Setup.OK() {
		lines = append(lines, "setup: "+results.Setup.Err.Error())
	}
	if !results.Teardown.OK() {
		lines = append(lines, "teardown: "+results.Teardown.Err.Error())
	}
	return strings.Join(lines, "\n")
}

func TestSuitePassesAgainstMockService(t *testing.T) {
	s := newTestService(t)
	httphelpers.WithServer(s.service, func(server *httptest.Server) {
		results := runSuite(s.environment(server.URL), ldtest.StopOnFailure)

		require.True(t, results.OK(), describeFailures(results))
		assert.Len(t, results.Tests, len(AllTests()))
		assert.Empty(t, results.NotRun)
		assert.Equal(t, 0, s.service.UserCount())

		uploads, err := filepath.Glob(filepath.Join(s.mediaRoot, "*", "*.*"))
		require.NoError(t, err)
		assert.Empty(t, uploads)
	})
}

func TestSuiteOrder(t *testing.T) {
	var names []string
	for _, test := range AllTests() {
		names = append(names, test.Name())
	}
	assert.Equal(t, []string{
		"create user",
		"login",
		"logout",
		"add APNs token",
		"add conversation",
		"add follow",
		"add post without content",
		"add, get and delete post",
		"delete upvote",
		"fixture users are distinct",
		"tagged post appears in trending search",
	}, names)
}

func TestFailingTestStopsRemainingTests(t *testing.T) {
	s := newTestService(t)
	broken := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/delete-upvote.php" {
			httphelpers.HandlerWithJSONResponse(map[string]interface{}{"success": "Upvote updated."}, nil).ServeHTTP(w, r)
			return
		}
		s.service.ServeHTTP(w, r)
	})
	httphelpers.WithServer(broken, func(server *httptest.Server) {
		results := runSuite(s.environment(server.URL), ldtest.StopOnFailure)

		assert.False(t, results.OK())
		require.Len(t, results.Failures, 1)
		failure := results.Failures[0]
		assert.Equal(t, "delete upvote", failure.TestID.String())
		assert.Equal(t, framework.StageRun, failure.FailedStage)
		assert.False(t, failure.Fatal)
		assert.NotEmpty(t, failure.Output)

		require.NotEmpty(t, results.NotRun)
		assert.Equal(t, "fixture users are distinct", results.NotRun[0].String())
		assert.True(t, results.Teardown.OK())
		assert.Equal(t, 0, s.service.UserCount())
	})
}

func TestFailingTestDoesNotStopRunWhenContinuing(t *testing.T) {
	s := newTestService(t)
	broken := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/add-follow.php" {
			httphelpers.HandlerWithJSONResponse(map[string]interface{}{"error": "Nope."}, nil).ServeHTTP(w, r)
			return
		}
		s.service.ServeHTTP(w, r)
	})
	httphelpers.WithServer(broken, func(server *httptest.Server) {
		results := runSuite(s.environment(server.URL), ldtest.ContinueOnFailure)

		require.Len(t, results.Failures, 1)
		assert.Equal(t, "add follow", results.Failures[0].TestID.String())
		assert.Len(t, results.Tests, len(AllTests()))
		assert.Empty(t, results.NotRun)
	})
}

func TestUnreachableServiceStopsRunEvenWhenContinuing(t *testing.T) {
	s := newTestService(t)
	server := httptest.NewServer(s.service)
	baseURL := server.URL
	server.Close()

	results := runSuite(s.environment(baseURL), ldtest.ContinueOnFailure)

	require.Len(t, results.Failures, 1)
	assert.True(t, results.Failures[0].Fatal)
	assert.Len(t, results.NotRun, len(AllTests())-1)
}

func TestFixtureFailureIsReportedInSetup(t *testing.T) {
	s := newTestService(t)
	broken := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/create-user.php" {
			httphelpers.HandlerWithJSONResponse(map[string]interface{}{"error": "Database down."}, nil).ServeHTTP(w, r)
			return
		}
		s.service.ServeHTTP(w, r)
	})
	httphelpers.WithServer(broken, func(server *httptest.Server) {
		env := s.environment(server.URL)
		runner := &ldtest.Runner{Environment: env, Tests: []ldtest.Test{loginTest()}, Context: env}
		results := runner.Run(context.Background(), true, true)

		require.Len(t, results.Failures, 1)
		assert.Equal(t, framework.StageSetup, results.Failures[0].FailedStage)
		require.NotEmpty(t, results.Failures[0].Errors)
		assert.ErrorIs(t, results.Failures[0].Errors[0], fixtures.ErrFixtureCreationFailed)
	})
}

func TestSetupFailureMeansNoTestsRun(t *testing.T) {
	env := NewEnvironment(EnvironmentOptions{
		Client: harness.NewClient(harness.ClientConfig{BaseURL: "http://localhost:1"}, nil),
		Hooks: store.FuncHooks{InstallFunc: func(context.Context) error {
			return errors.New("syntax error near CREATE")
		}},
	})
	runner := &ldtest.Runner{Environment: env, Tests: AllTests(), Context: env}
	results := runner.Run(context.Background(), true, true)

	assert.False(t, results.OK())
	require.NotNil(t, results.Setup)
	assert.ErrorIs(t, results.Setup.Err, ldtest.ErrNotInstalled)
	assert.Contains(t, results.Setup.Err.Error(), "syntax error near CREATE")
	assert.Len(t, results.NotRun, len(AllTests()))
	assert.Empty(t, results.Tests)
	assert.Nil(t, results.Teardown)
}

func TestEnvironmentSetupTearsDownFirst(t *testing.T) {
	mediaRoot := t.TempDir()
	leftover := filepath.Join(mediaRoot, "avatars", "7.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(leftover), 0o755))
	require.NoError(t, os.WriteFile(leftover, []byte("x"), 0o600))

	var calls []string
	env := NewEnvironment(EnvironmentOptions{
		Client: harness.NewClient(harness.ClientConfig{BaseURL: "http://localhost:1"}, nil),
		Hooks: store.FuncHooks{
			InstallFunc:   func(context.Context) error { calls = append(calls, "install"); return nil },
			UninstallFunc: func(context.Context) error { calls = append(calls, "uninstall"); return nil },
		},
		MediaRoot: mediaRoot,
	})

	require.NoError(t, env.Setup(context.Background()))
	assert.Equal(t, []string{"uninstall", "install"}, calls)
	assert.NoFileExists(t, leftover)
}

func TestEnvironmentTeardownIsIdempotent(t *testing.T) {
	h, err := store.Open("", ":memory:", store.DefaultInstallScript(), store.DefaultUninstallScript())
	require.NoError(t, err)
	mediaRoot := t.TempDir()
	env := NewEnvironment(EnvironmentOptions{
		Client:    harness.NewClient(harness.ClientConfig{BaseURL: "http://localhost:1"}, nil),
		Hooks:     h,
		MediaRoot: mediaRoot,
	})
	defer env.Close()

	require.NoError(t, env.Setup(context.Background()))
	for i, subdir := range mediadir.DefaultSubdirs {
		ext := mediadir.DefaultExtensions[i%len(mediadir.DefaultExtensions)]
		path := filepath.Join(mediaRoot, subdir, fmt.Sprintf("%d.%s", i+1, ext))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	}

	require.NoError(t, env.Teardown(context.Background()))
	require.NoError(t, env.Teardown(context.Background()))

	for _, subdir := range mediadir.DefaultSubdirs {
		entries, err := os.ReadDir(filepath.Join(mediaRoot, subdir))
		require.NoError(t, err)
		for _, entry := range entries {
			assert.True(t, entry.IsDir(), "%s/%s was not deleted", subdir, entry.Name())
		}
	}
	var tables int
	require.NoError(t, h.DB().QueryRow(`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`).Scan(&tables))
	assert.Zero(t, tables)
}

func TestEnvironmentWithoutClientCanBeTornDown(t *testing.T) {
	env := NewEnvironment(EnvironmentOptions{MediaRoot: t.TempDir()})
	require.NotNil(t, env.Client)
	require.NotNil(t, env.Fixtures)
	assert.NoError(t, env.Teardown(context.Background()))
}

func TestEnvironmentTeardownAttemptsEverything(t *testing.T) {
	mediaRoot := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(mediaRoot, "avatars"), []byte("not a directory"), 0o600))
	riff := filepath.Join(mediaRoot, "riffs", "3.mp3")
	require.NoError(t, os.MkdirAll(filepath.Dir(riff), 0o755))
	require.NoError(t, os.WriteFile(riff, []byte("x"), 0o600))

	uninstallErr := errors.New("could not drop tables")
	env := NewEnvironment(EnvironmentOptions{
		Client:    harness.NewClient(harness.ClientConfig{BaseURL: "http://localhost:1"}, nil),
		Hooks:     store.FuncHooks{UninstallFunc: func(context.Context) error { return uninstallErr }},
		MediaRoot: mediaRoot,
	})

	err := env.Teardown(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, uninstallErr)
	var cleanupErr *mediadir.CleanupError
	assert.ErrorAs(t, err, &cleanupErr)
	assert.NoFileExists(t, riff)
}
