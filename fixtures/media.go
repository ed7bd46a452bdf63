package fixtures

import (
	"math/rand"
	"path/filepath"
	"sort"
)

var (
	imageExtensions = []string{"gif", "jpg", "png"}
	audioExtensions = []string{"mp3", "m4a"}
)

// MediaPool holds paths to sample files that fixtures can attach. It is read once and never changes.
type MediaPool struct {
	Avatars    []string
	PostImages []string
	Riffs      []string
}

// LoadMediaPool enumerates the avatars, posts and riffs subdirectories of dir. A missing
// subdirectory yields an empty list, which just means fixtures go without that kind of attachment.
func LoadMediaPool(dir string) (MediaPool, error) {
	if dir == "" {
		return MediaPool{}, nil
	}
	var pool MediaPool
	var err error
	if pool.Avatars, err = globAll(filepath.Join(dir, "avatars"), imageExtensions); err != nil {
		return MediaPool{}, err
	}
	if pool.PostImages, err = globAll(filepath.Join(dir, "posts"), imageExtensions); err != nil {
		return MediaPool{}, err
	}
	if pool.Riffs, err = globAll(filepath.Join(dir, "riffs"), audioExtensions); err != nil {
		return MediaPool{}, err
	}
	return pool, nil
}

func globAll(dir string, extensions []string) ([]string, error) {
	var paths []string
	for _, ext := range extensions {
		matches, err := filepath.Glob(filepath.Join(dir, "*."+ext))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)
	return paths, nil
}

func pick(rng *rand.Rand, paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	return paths[rng.Intn(len(paths))]
}
