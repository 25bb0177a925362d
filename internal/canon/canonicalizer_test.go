package canon

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"canoncache/internal/cache"
	"canoncache/internal/logs"
	"canoncache/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCanonicalizer(resolve Resolver) (*Canonicalizer, *metrics.Registry, *logs.Logger) {
	reg := metrics.NewRegistry()
	logger := logs.NewLogger(50, logs.DEBUG)
	c := cache.NewWithConfig(cache.Config{TTL: time.Minute}, reg, logger)
	return New(c, resolve, reg, logger), reg, logger
}

func countingResolver(calls *int32, answer string, err error) Resolver {
	return func(string) (string, error) {
		atomic.AddInt32(calls, 1)
		return answer, err
	}
}

func TestCanonicalize_MemoizesResolver(t *testing.T) {
	var calls int32
	cz, reg, _ := newTestCanonicalizer(countingResolver(&calls, "/real/path", nil))

	for i := 0; i < 3; i++ {
		got, err := cz.Canonicalize("./path")
		require.NoError(t, err)
		assert.Equal(t, "/real/path", got)
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, int64(1), reg.Get(metrics.CanonResolvesTotal))
	assert.Equal(t, int64(2), reg.Get(metrics.CacheHitsTotal))
}

func TestCanonicalize_ErrorsAreNotCached(t *testing.T) {
	var calls int32
	boom := errors.New("permission denied")
	cz, reg, logger := newTestCanonicalizer(countingResolver(&calls, "", boom))

	_, err := cz.Canonicalize("/secret")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	_, err = cz.Canonicalize("/secret")
	require.Error(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, 0, cz.Cache().Len())
	assert.Equal(t, int64(2), reg.Get(metrics.CanonErrorsTotal))

	entries := logger.GetLast(1)
	require.Len(t, entries, 1)
	assert.Equal(t, logs.WARN, entries[0].Level)
}

func TestCanonicalize_EmptyPath(t *testing.T) {
	cz, _, _ := newTestCanonicalizer(nil)

	_, err := cz.Canonicalize("")
	assert.ErrorIs(t, err, ErrEmptyPath)
}

func TestCanonicalize_ForgetAndInvalidate(t *testing.T) {
	var calls int32
	cz, _, _ := newTestCanonicalizer(countingResolver(&calls, "/x", nil))

	_, _ = cz.Canonicalize("a")
	_, _ = cz.Canonicalize("b")
	require.Equal(t, int32(2), atomic.LoadInt32(&calls))

	cz.Forget("a")
	_, _ = cz.Canonicalize("a")
	_, _ = cz.Canonicalize("b")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	cz.Invalidate()
	assert.Equal(t, 0, cz.Cache().Len())
	_, _ = cz.Canonicalize("b")
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestDefaultResolver(t *testing.T) {
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	target := filepath.Join(root, "target")
	require.NoError(t, os.Mkdir(target, 0o755))

	link := filepath.Join(root, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	t.Run("CleansDotSegments", func(t *testing.T) {
		got, err := DefaultResolver(filepath.Join(root, "target", "..", "target", "."))
		require.NoError(t, err)
		assert.Equal(t, target, got)
	})

	t.Run("ResolvesSymlinks", func(t *testing.T) {
		got, err := DefaultResolver(link)
		require.NoError(t, err)
		assert.Equal(t, target, got)
	})

	t.Run("NonexistentTail", func(t *testing.T) {
		got, err := DefaultResolver(filepath.Join(link, "not", "yet", "created"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(target, "not", "yet", "created"), got)
	})

	t.Run("SymlinkResolvedBeforeParent", func(t *testing.T) {
		deep := filepath.Join(root, "a", "b")
		require.NoError(t, os.MkdirAll(deep, 0o755))
		require.NoError(t, os.Mkdir(filepath.Join(root, "a", "sibling"), 0o755))
		deepLink := filepath.Join(root, "deep-link")
		require.NoError(t, os.Symlink(deep, deepLink))

		raw := deepLink + string(filepath.Separator) + ".." + string(filepath.Separator) + "sibling"
		got, err := DefaultResolver(raw)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "a", "sibling"), got)

		got, err = DefaultResolver(raw + string(filepath.Separator) + "missing")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "a", "sibling", "missing"), got)
	})

	t.Run("RelativePathIsMadeAbsolute", func(t *testing.T) {
		got, err := DefaultResolver("relative-name")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(got))
	})
}
