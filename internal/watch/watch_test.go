package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_RequiresCallback(t *testing.T) {
	w := &Watcher{Path: "somewhere.yaml"}

	err := w.Run(context.Background())
	assert.Error(t, err)
}

func TestRun_FiresOnManifestChange(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "redeploy.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte("app:\n  name: test\n"), 0o644))

	fired := make(chan struct{}, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	w := &Watcher{
		Path:     manifest,
		Debounce: 50 * time.Millisecond,
		OnChange: func(ctx context.Context) error {
			select {
			case fired <- struct{}{}:
			default:
			}

			return nil
		},
	}

	done := make(chan error, 1)

	go func() {
		done <- w.Run(ctx)
	}()

	// Give the watcher a moment to register, then touch the manifest
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(manifest, []byte("app:\n  name: changed\n"), 0o644))

	select {
	case <-fired:
	case <-time.After(8 * time.Second):
		t.Fatal("watcher never fired")
	}

	cancel()

	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "redeploy.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte("app:\n  name: test\n"), 0o644))

	fired := make(chan struct{}, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	w := &Watcher{
		Path:     manifest,
		Debounce: 50 * time.Millisecond,
		OnChange: func(ctx context.Context) error {
			select {
			case fired <- struct{}{}:
			default:
			}

			return nil
		},
	}

	go func() {
		_ = w.Run(ctx) //nolint:errcheck
	}()

	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("noise"), 0o644))

	select {
	case <-fired:
		t.Fatal("watcher fired for an unrelated file")
	case <-time.After(500 * time.Millisecond):
	}
}

func TestRun_ReportsCallbackErrors(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "redeploy.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte("x: 1\n"), 0o644))

	errs := make(chan error, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	w := &Watcher{
		Path:     manifest,
		Debounce: 50 * time.Millisecond,
		OnChange: func(ctx context.Context) error {
			return errors.New("deploy blew up")
		},
		OnError: func(err error) {
			select {
			case errs <- err:
			default:
			}
		},
	}

	go func() {
		_ = w.Run(ctx) //nolint:errcheck
	}()

	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(manifest, []byte("x: 2\n"), 0o644))

	select {
	case err := <-errs:
		assert.Contains(t, err.Error(), "deploy blew up")
	case <-time.After(8 * time.Second):
		t.Fatal("error never surfaced")
	}
}
