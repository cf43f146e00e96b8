// Package config loads the deploy manifest and its environment overrides.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// DefaultManifestName is the manifest file looked up in the working directory.
const DefaultManifestName = "redeploy.yaml"

// Config is the deploy manifest for a single application.
type Config struct {
	App     AppConfig     `yaml:"app" envconfig:"APP"`
	Source  SourceConfig  `yaml:"source" envconfig:"SOURCE"`
	Runtime RuntimeConfig `yaml:"runtime" envconfig:"RUNTIME"`
	Env     EnvConfig     `yaml:"env" envconfig:"ENV"`
	Hooks   HooksConfig   `yaml:"hooks" envconfig:"HOOKS"`
	Retry   RetryConfig   `yaml:"retry" envconfig:"RETRY"`
	Watch   WatchConfig   `yaml:"watch" envconfig:"WATCH"`
}

// AppConfig names the application and its multiplexer session.
type AppConfig struct {
	Name    string `yaml:"name" envconfig:"NAME"`
	Session string `yaml:"session" envconfig:"SESSION"`
}

// SourceConfig describes where the application code comes from.
type SourceConfig struct {
	Remote   string `yaml:"remote" envconfig:"REMOTE"`
	Checkout string `yaml:"checkout" envconfig:"CHECKOUT"`
	Branch   string `yaml:"branch" envconfig:"BRANCH"`
	Depth    int    `yaml:"depth" envconfig:"DEPTH"`
}

// RuntimeConfig describes how the application is built and launched.
type RuntimeConfig struct {
	Python       string   `yaml:"python" envconfig:"PYTHON"`
	VenvDir      string   `yaml:"venv_dir" envconfig:"VENV_DIR"`
	Requirements string   `yaml:"requirements" envconfig:"REQUIREMENTS"`
	Module       string   `yaml:"module" envconfig:"MODULE"`
	Args         []string `yaml:"args" envconfig:"ARGS"`
}

// EnvConfig describes the application's .env contract.
type EnvConfig struct {
	File         string   `yaml:"file" envconfig:"FILE"`
	RequiredKeys []string `yaml:"required_keys" envconfig:"REQUIRED_KEYS"`
}

// HooksConfig controls hook script execution in the checkout.
type HooksConfig struct {
	Enabled     bool `yaml:"enabled" envconfig:"ENABLED"`
	FailOnError bool `yaml:"fail_on_error" envconfig:"FAIL_ON_ERROR"`
}

// RetryConfig is the retry policy for network-bound steps.
type RetryConfig struct {
	Attempts     int           `yaml:"attempts" envconfig:"ATTEMPTS"`
	InitialDelay time.Duration `yaml:"initial_delay" envconfig:"INITIAL_DELAY"`
	Backoff      float64       `yaml:"backoff" envconfig:"BACKOFF"`
}

// WatchConfig controls the manifest watcher.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" envconfig:"DEBOUNCE"`
}

// Default returns a manifest with the stock deployment values.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name: "crushbase-backend",
		},
		Source: SourceConfig{
			Remote: "https://github.com/nathanielangafor/Crushbase-Backend.git",
		},
		Runtime: RuntimeConfig{
			Python:       "python3",
			VenvDir:      "venv",
			Requirements: "requirements.txt",
			Module:       "API.app",
		},
		Env: EnvConfig{
			File: ".env",
			RequiredKeys: []string{
				"MONGO_URI",
				"MONGO_DB_NAME",
				"OPENAI_API_KEY",
				"NGROK_AUTH_TOKEN",
				"NGROK_PORT",
			},
		},
		Hooks: HooksConfig{
			Enabled: true,
		},
		Retry: RetryConfig{
			Attempts:     3,
			InitialDelay: time.Second,
			Backoff:      2.0,
		},
		Watch: WatchConfig{
			Debounce: 2 * time.Second,
		},
	}
}

// Load reads the manifest from the given path, or from default locations
// when path is empty. Priority: env vars (REDEPLOY_ prefix, optionally from
// .env files) override manifest values, which override defaults.
func Load(path string) (*Config, error) {
	// Best-effort .env loading; absence is normal
	_ = godotenv.Load(".env.local") //nolint:errcheck
	_ = godotenv.Load(".env")       //nolint:errcheck

	if path == "" {
		path = FindManifest()
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // Path comes from flag or known locations
		if err != nil {
			return nil, fmt.Errorf("failed to read manifest: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse manifest: %w", err)
		}
	}

	if err := envconfig.Process("REDEPLOY", cfg); err != nil {
		return nil, fmt.Errorf("failed to process env vars: %w", err)
	}

	cfg.applyDerivedDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindManifest looks for a manifest in the working directory, then the
// user's config directory. It returns an empty string when neither exists.
func FindManifest() string {
	if _, err := os.Stat(DefaultManifestName); err == nil {
		return DefaultManifestName
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	candidate := filepath.Join(home, ".redeploy", "config.yaml")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}

	return ""
}

// applyDerivedDefaults fills values that depend on other fields.
func (c *Config) applyDerivedDefaults() {
	if c.App.Session == "" && c.App.Name != "" {
		c.App.Session = NormalizeSessionName(c.App.Name)
	}

	if c.Source.Checkout == "" && c.Source.Remote != "" {
		c.Source.Checkout = CheckoutDirFromRemote(c.Source.Remote)
	}

	c.App.Session = NormalizeSessionName(c.App.Session)
}

// Validate checks the manifest for the fields every deploy needs.
func (c *Config) Validate() error {
	if c.App.Session == "" {
		return fmt.Errorf("manifest: app.session is required")
	}

	if c.Source.Remote == "" {
		return fmt.Errorf("manifest: source.remote is required")
	}

	if !ValidRemote(c.Source.Remote) {
		return fmt.Errorf("manifest: source.remote %q is not a valid git remote", c.Source.Remote)
	}

	if c.Source.Checkout == "" {
		return fmt.Errorf("manifest: source.checkout is required")
	}

	if c.Runtime.Module == "" {
		return fmt.Errorf("manifest: runtime.module is required")
	}

	if c.Retry.Attempts < 1 {
		return fmt.Errorf("manifest: retry.attempts must be at least 1")
	}

	return nil
}

// LaunchCommand returns the argv used to start the application from the
// checkout, using the venv interpreter when venvPython is non-empty.
func (c *Config) LaunchCommand(venvPython string) []string {
	python := c.Runtime.Python
	if venvPython != "" {
		python = venvPython
	}

	cmd := []string{python, "-m", c.Runtime.Module}
	cmd = append(cmd, c.Runtime.Args...)

	return cmd
}

var sessionNameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// NormalizeSessionName collapses characters tmux and screen reject into
// underscores.
func NormalizeSessionName(name string) string {
	name = strings.TrimSpace(name)

	return sessionNameSanitizer.ReplaceAllString(name, "_")
}

// CheckoutDirFromRemote derives a local directory name from a remote URL.
func CheckoutDirFromRemote(remote string) string {
	base := remote

	if idx := strings.LastIndex(base, "/"); idx != -1 {
		base = base[idx+1:]
	}

	base = strings.TrimSuffix(base, ".git")

	if base == "" {
		return "checkout"
	}

	return base
}

// ValidRemote reports whether the remote looks like a usable git URL.
func ValidRemote(remote string) bool {
	// scp-like syntax: git@host:owner/repo.git
	if strings.Contains(remote, "@") && strings.Contains(remote, ":") && !strings.Contains(remote, "://") {
		return true
	}

	u, err := url.Parse(remote)
	if err != nil {
		return false
	}

	switch u.Scheme {
	case "https", "http", "ssh", "git":
		return u.Host != ""
	default:
		return false
	}
}

// WriteStarter writes a commented starter manifest to path. It refuses to
// overwrite an existing file.
func WriteStarter(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("manifest already exists at %s", path)
	}

	cfg := Default()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal starter manifest: %w", err)
	}

	header := "# redeploy manifest\n# Values can be overridden with REDEPLOY_* environment variables.\n"

	if err := os.WriteFile(path, append([]byte(header), data...), 0o644); err != nil { //nolint:gosec
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}
