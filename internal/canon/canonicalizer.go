// Package canon turns raw filesystem paths into canonical absolute paths,
// memoizing the answers in an ExpiringCache.
package canon

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"canoncache/internal/cache"
	"canoncache/internal/logs"
	"canoncache/internal/metrics"
)

// ErrEmptyPath is returned when asked to canonicalize "".
var ErrEmptyPath = errors.New("canon: empty path")

// Resolver computes the canonical form of a path. It must be idempotent.
type Resolver func(path string) (string, error)

// Canonicalizer memoizes a Resolver.
//
// Answers may be up to one cache TTL stale with respect to the filesystem.
// Callers that rename or delete files should call Invalidate.
type Canonicalizer struct {
	cache   *cache.ExpiringCache
	resolve Resolver
	metrics *metrics.Registry
	logger  *logs.Logger
}

// New creates a Canonicalizer. A nil resolve uses DefaultResolver.
func New(
	c *cache.ExpiringCache,
	resolve Resolver,
	reg *metrics.Registry,
	logger *logs.Logger,
) *Canonicalizer {
	if resolve == nil {
		resolve = DefaultResolver
	}
	return &Canonicalizer{
		cache:   c,
		resolve: resolve,
		metrics: reg,
		logger:  logger,
	}
}

// Canonicalize returns the canonical form of path.
// Failed resolutions are returned to the caller and never cached.
func (cz *Canonicalizer) Canonicalize(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}

	if canonical, ok := cz.cache.Get(path); ok {
		return canonical, nil
	}

	cz.metrics.Inc(metrics.CanonResolvesTotal)

	canonical, err := cz.resolve(path)
	if err != nil {
		cz.metrics.Inc(metrics.CanonErrorsTotal)
		cz.logger.Warn(fmt.Sprintf("canonicalize %q failed: %v", path, err))
		return "", fmt.Errorf("canonicalize %q: %w", path, err)
	}

	if err := cz.cache.Put(path, canonical); err != nil {
		return "", err
	}
	return canonical, nil
}

// Forget drops the memoized answer for path.
func (cz *Canonicalizer) Forget(path string) {
	cz.cache.Remove(path)
}

// Invalidate drops every memoized answer.
func (cz *Canonicalizer) Invalidate() {
	cz.cache.Clear()
	cz.logger.Info("canonical path cache invalidated")
}

// Cache exposes the underlying cache for admin listing.
func (cz *Canonicalizer) Cache() *cache.ExpiringCache {
	return cz.cache
}

// DefaultResolver makes path absolute and resolves it one component at a
// time, expanding each symlink before a following ".." is applied.
// Once a component does not exist, the rest is appended lexically, so a path
// that has not been created yet still has a canonical form.
func DefaultResolver(path string) (string, error) {
	abs := path
	if !filepath.IsAbs(abs) {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		// Not filepath.Join: cleaning here would apply ".." before symlinks.
		abs = wd + string(filepath.Separator) + path
	}
	return resolveComponents(abs)
}

func resolveComponents(abs string) (string, error) {
	vol := filepath.VolumeName(abs)
	resolved := vol + string(filepath.Separator)
	parts := strings.Split(filepath.ToSlash(abs[len(vol):]), "/")

	for i, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			resolved = filepath.Dir(resolved)
			continue
		}

		next := filepath.Join(resolved, part)
		info, err := os.Lstat(next)
		if errors.Is(err, fs.ErrNotExist) {
			return lexicalTail(next, parts[i+1:]), nil
		}
		if err != nil {
			return "", err
		}

		if info.Mode()&fs.ModeSymlink != 0 {
			target, err := filepath.EvalSymlinks(next)
			if errors.Is(err, fs.ErrNotExist) {
				// dangling link
				return lexicalTail(next, parts[i+1:]), nil
			}
			if err != nil {
				return "", err
			}
			next = target
		}
		resolved = next
	}

	return resolved, nil
}

func lexicalTail(head string, rest []string) string {
	return filepath.Join(append([]string{head}, rest...)...)
}
