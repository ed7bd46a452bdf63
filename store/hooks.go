// Package store runs the lifecycle hooks that create and destroy the service's test database.
//
// The harness never reads or writes application data directly: the only things it does to the
// store are "install" and "uninstall", each of which is one script executed as a whole.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultDriver is the database/sql driver used when none is configured.
const DefaultDriver = "sqlite3"

var (
	//go:embed schema/install.sql
	defaultInstallSQL string

	//go:embed schema/uninstall.sql
	defaultUninstallSQL string
)

// Hooks installs and uninstalls the test database. Uninstall must succeed when nothing is installed.
type Hooks interface {
	Install(ctx context.Context) error
	Uninstall(ctx context.Context) error
}

// Script is a named block of SQL that is executed in a single call.
type Script struct {
	Name string
	SQL  string
}

// DefaultInstallScript creates the service's schema in SQLite.
func DefaultInstallScript() Script {
	return Script{Name: "install.sql", SQL: defaultInstallSQL}
}

// DefaultUninstallScript drops everything DefaultInstallScript creates.
func DefaultUninstallScript() Script {
	return Script{Name: "uninstall.sql", SQL: defaultUninstallSQL}
}

// LoadScript reads a script file. The script is named after the file.
func LoadScript(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("can't read database script: %w", err)
	}
	return Script{Name: filepath.Base(path), SQL: string(data)}, nil
}

// SQLHooks runs install and uninstall scripts against a database/sql connection.
type SQLHooks struct {
	db        *sql.DB
	install   Script
	uninstall Script
}

// NewSQLHooks uses an existing connection. The caller keeps ownership of db.
func NewSQLHooks(db *sql.DB, install, uninstall Script) *SQLHooks {
	return &SQLHooks{db: db, install: install, uninstall: uninstall}
}

// Open connects to a database and returns hooks that own the connection. If driver is empty,
// DefaultDriver is used.
func Open(driver, dsn string, install, uninstall Script) (*SQLHooks, error) {
	if driver == "" {
		driver = DefaultDriver
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if driver == DefaultDriver {
		// an in-memory SQLite database exists only as long as its one connection
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}
	return NewSQLHooks(db, install, uninstall), nil
}

func (h *SQLHooks) Install(ctx context.Context) error {
	return h.exec(ctx, h.install)
}

func (h *SQLHooks) Uninstall(ctx context.Context) error {
	return h.exec(ctx, h.uninstall)
}

// DB returns the underlying connection.
func (h *SQLHooks) DB() *sql.DB {
	return h.db
}

func (h *SQLHooks) Close() error {
	if h.db == nil {
		return nil
	}
	return h.db.Close()
}

func (h *SQLHooks) exec(ctx context.Context, script Script) error {
	if script.SQL == "" {
		return nil
	}
	if _, err := h.db.ExecContext(ctx, script.SQL); err != nil {
		return &ScriptError{Script: script.Name, Err: err}
	}
	return nil
}

// FuncHooks adapts a pair of functions. A nil function does nothing.
type FuncHooks struct {
	InstallFunc   func(ctx context.Context) error
	UninstallFunc func(ctx context.Context) error
}

func (h FuncHooks) Install(ctx context.Context) error {
	if h.InstallFunc == nil {
		return nil
	}
	return h.InstallFunc(ctx)
}

func (h FuncHooks) Uninstall(ctx context.Context) error {
	if h.UninstallFunc == nil {
		return nil
	}
	return h.UninstallFunc(ctx)
}

// NoopHooks does nothing; it is used when the harness has no access to the store.
func NoopHooks() Hooks {
	return FuncHooks{}
}
