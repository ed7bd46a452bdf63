// Package mediadir empties the directories where the service stores uploaded media.
package mediadir

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	// DefaultSubdirs are the upload directories the service writes into, relative to the media root.
	DefaultSubdirs = []string{
		"avatars",
		"avatars/small",
		"posts",
		"posts/medium",
		"posts/small",
		"riffs",
		"riffs/hq",
		"riffs/raw",
	}

	// DefaultExtensions are the file types the service stores.
	DefaultExtensions = []string{"gif", "jpg", "png", "mp3", "m4a"}
)

// Cleaner deletes uploaded files. Only regular files directly inside one of Subdirs whose extension
// is one of Extensions are removed; directories and other files are left alone.
type Cleaner struct {
	Root       string
	Subdirs    []string
	Extensions []string
}

// NewCleaner returns a Cleaner for root with the default directories and extensions.
func NewCleaner(root string) Cleaner {
	return Cleaner{Root: root, Subdirs: DefaultSubdirs, Extensions: DefaultExtensions}
}

// FileFailure is one path that could not be deleted.
type FileFailure struct {
	Path string
	Err  error
}

// CleanupError lists every path that could not be deleted.
type CleanupError struct {
	Failures []FileFailure
}

func (e *CleanupError) Error() string {
	lines := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		lines = append(lines, fmt.Sprintf("%s: %s", f.Path, f.Err))
	}
	return fmt.Sprintf("could not delete %d media file(s): %s", len(e.Failures), strings.Join(lines, "; "))
}

func (e *CleanupError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

func (e *CleanupError) Fatal() bool { return true }

// Clear attempts every deletion, even after some fail. A subdirectory that does not exist is
// already clear. If anything could not be deleted, the error is a *CleanupError.
func (c Cleaner) Clear() error {
	if c.Root == "" {
		return nil
	}
	var failures []FileFailure
	for _, subdir := range c.Subdirs {
		dir := filepath.Join(c.Root, subdir)
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			failures = append(failures, FileFailure{Path: dir, Err: err})
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !c.matches(entry.Name()) {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				failures = append(failures, FileFailure{Path: path, Err: err})
			}
		}
	}
	if len(failures) > 0 {
		return &CleanupError{Failures: failures}
	}
	return nil
}

func (c Cleaner) matches(name string) bool {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	for _, e := range c.Extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
