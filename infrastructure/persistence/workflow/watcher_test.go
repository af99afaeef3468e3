package workflow

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherFiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo"+fileExtension)
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	w, err := NewWatcher(path, nil)
	require.NoError(t, err)

	var fired atomic.Int32
	w.OnChange(func(string) { fired.Add(1) })

	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte(`{"title":"edited"}`), 0o644))

	require.Eventually(t, func() bool {
		return fired.Load() >= 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherFiresOnRenameReplacement(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo"+fileExtension)
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	w, err := NewWatcher(path, nil)
	require.NoError(t, err)

	var fired atomic.Int32
	w.OnChange(func(string) { fired.Add(1) })

	require.NoError(t, w.Start())
	defer w.Stop()

	// Atomic save: write a temp file, rename it over the target.
	tmp := filepath.Join(dir, "demo.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte(`{"title":"replaced"}`), 0o644))
	require.NoError(t, os.Rename(tmp, path))

	require.Eventually(t, func() bool {
		return fired.Load() >= 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo"+fileExtension)
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	w, err := NewWatcher(path, nil)
	require.NoError(t, err)

	var fired atomic.Int32
	w.OnChange(func(string) { fired.Add(1) })

	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other"+fileExtension), []byte("{}"), 0o644))

	time.Sleep(300 * time.Millisecond)
	assert.Zero(t, fired.Load())
}
