package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeManifest(t, "app:\n  name: crushbase-backend\n"))
	require.NoError(t, err)

	assert.Equal(t, "crushbase_backend", cfg.App.Session)
	assert.Equal(t, "Crushbase-Backend", cfg.Source.Checkout)
	assert.Equal(t, "API.app", cfg.Runtime.Module)
	assert.Equal(t, "python3", cfg.Runtime.Python)
	assert.Equal(t, 3, cfg.Retry.Attempts)
	assert.Equal(t, time.Second, cfg.Retry.InitialDelay)
}

func TestLoad_ManifestOverridesDefaults(t *testing.T) {
	path := writeManifest(t, `
app:
  name: lead-api
source:
  remote: https://example.com/acme/lead-api.git
  branch: release
runtime:
  module: server.main
  args: ["--port", "9000"]
retry:
  attempts: 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "lead_api", cfg.App.Session)
	assert.Equal(t, "lead-api", cfg.Source.Checkout)
	assert.Equal(t, "release", cfg.Source.Branch)
	assert.Equal(t, "server.main", cfg.Runtime.Module)
	assert.Equal(t, 5, cfg.Retry.Attempts)
}

func TestLoad_EnvOverridesManifest(t *testing.T) {
	t.Setenv("REDEPLOY_APP_SESSION", "override_session")

	cfg, err := Load(writeManifest(t, "app:\n  session: manifest_session\n"))
	require.NoError(t, err)

	assert.Equal(t, "override_session", cfg.App.Session)
}

func TestLoad_RejectsBadRemote(t *testing.T) {
	_, err := Load(writeManifest(t, "source:\n  remote: not a url\n"))
	assert.Error(t, err)
}

func TestLoad_MissingManifestFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestNormalizeSessionName(t *testing.T) {
	cases := map[string]string{
		"crushbase_backend": "crushbase_backend",
		"Crushbase Backend": "Crushbase_Backend",
		"api.app/v2":        "api_app_v2",
		"  padded  ":        "padded",
	}

	for in, want := range cases {
		if got := NormalizeSessionName(in); got != want {
			t.Errorf("NormalizeSessionName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCheckoutDirFromRemote(t *testing.T) {
	cases := map[string]string{
		"https://github.com/nathanielangafor/Crushbase-Backend.git": "Crushbase-Backend",
		"git@github.com:acme/widget.git":                            "widget",
		"https://example.com/repo":                                  "repo",
	}

	for in, want := range cases {
		if got := CheckoutDirFromRemote(in); got != want {
			t.Errorf("CheckoutDirFromRemote(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidRemote(t *testing.T) {
	assert.True(t, ValidRemote("https://github.com/acme/widget.git"))
	assert.True(t, ValidRemote("git@github.com:acme/widget.git"))
	assert.True(t, ValidRemote("ssh://git@host/acme/widget.git"))
	assert.False(t, ValidRemote("not a url"))
	assert.False(t, ValidRemote("ftp://host/repo.git"))
}

func TestLaunchCommand(t *testing.T) {
	cfg := Default()
	cfg.Runtime.Args = []string{"--reload"}

	assert.Equal(t, []string{"python3", "-m", "API.app", "--reload"}, cfg.LaunchCommand(""))
	assert.Equal(t, []string{"venv/bin/python", "-m", "API.app", "--reload"}, cfg.LaunchCommand("venv/bin/python"))
}

func TestWriteStarter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "redeploy.yaml")

	require.NoError(t, WriteStarter(path))

	// Starter must round-trip through Load
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "crushbase_backend", cfg.App.Session)

	// Refuses to overwrite
	assert.Error(t, WriteStarter(path))
}

func writeManifest(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "redeploy.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	return path
}
