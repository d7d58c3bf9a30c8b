// Package config loads ferium-companion settings.
//
// Settings are layered, later layers winning:
//
//  1. built-in defaults
//  2. the JSONC config file ($XDG_CONFIG_HOME/ferium-companion/config.jsonc
//     or the path given with --config)
//  3. a .env file in the working directory, if present
//  4. FERIUM_COMPANION_* environment variables
//  5. command-line flags (applied by the cli package)
//
// The config file accepts comments and trailing commas, so it is read with
// github.com/tidwall/jsonc before being decoded with encoding/json.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/tidwall/jsonc"

	"github.com/shinji-kodama/ferium-companion/internal/model"
	"github.com/shinji-kodama/ferium-companion/internal/tool"
)

// AppName names the per-user config directory.
const AppName = "ferium-companion"

// FileName is the config file name inside the config directory.
const FileName = "config.jsonc"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FERIUM_COMPANION_"

// Default remote profile repository.
const (
	DefaultRepoOwner = "cnhornbeck"
	DefaultRepoName  = "MCModProfiles"
)

// RepoConfig identifies a GitHub directory holding shared profiles.
type RepoConfig struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
	Path  string `json:"path,omitempty"`
}

// Config is the resolved configuration.
type Config struct {
	// Tool is the executable name or path of the mod tool.
	Tool string

	// Runner selects where the tool runs.
	Runner model.RunnerKind

	// Container is the Docker container name or ID used by the docker
	// runner. Empty means "find it by label".
	Container string

	// Timeout bounds a single tool invocation. Zero disables the bound.
	Timeout time.Duration

	// ProfileDir is where saved profiles live.
	ProfileDir string

	// ProfileRepo is the GitHub source for "profile fetch".
	ProfileRepo RepoConfig

	// LogJSON switches the logger to JSON output.
	LogJSON bool

	// Path is the config file that was read, empty if none.
	Path string
}

// fileConfig mirrors the on-disk layout. Pointers distinguish "absent"
// from zero values so that a file can set timeout to 0 or logJSON to false.
type fileConfig struct {
	Tool        *string     `json:"tool"`
	Runner      *string     `json:"runner"`
	Container   *string     `json:"container"`
	Timeout     *string     `json:"timeout"`
	ProfileDir  *string     `json:"profileDir"`
	ProfileRepo *RepoConfig `json:"profileRepo"`
	LogJSON     *bool       `json:"logJSON"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Tool:       tool.DefaultToolName,
		Runner:     model.RunnerLocal,
		Timeout:    tool.DefaultTimeout,
		ProfileDir: filepath.Join(configDir(), "profiles"),
		ProfileRepo: RepoConfig{
			Owner: DefaultRepoOwner,
			Repo:  DefaultRepoName,
		},
	}
}

// DefaultPath returns the config file location used when --config is not
// given.
func DefaultPath() string {
	return filepath.Join(configDir(), FileName)
}

// LogPath is where the terminal UI writes its log when verbose logging is
// on. The UI owns the terminal, so logs cannot go to stderr.
func LogPath() string {
	return filepath.Join(configDir(), "tui.log")
}

func configDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, AppName)
	}
	return filepath.Join(".", "."+AppName)
}

// Load resolves the configuration. When path is empty the default location
// is tried and a missing file is not an error; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if err := cfg.mergeFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	} else {
		cfg.Path = path
	}

	// godotenv.Load never overrides variables that are already set, so the
	// real environment still wins over .env.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := cfg.mergeEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFile overlays the JSONC file at path onto cfg.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var fc fileConfig
	if err := json.Unmarshal(jsonc.ToJSON(data), &fc); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if fc.Tool != nil {
		c.Tool = *fc.Tool
	}
	if fc.Runner != nil {
		kind, err := model.ParseRunnerKind(*fc.Runner)
		if err != nil {
			return fmt.Errorf("config %s: %w", path, err)
		}
		c.Runner = kind
	}
	if fc.Container != nil {
		c.Container = *fc.Container
	}
	if fc.Timeout != nil {
		d, err := ParseTimeout(*fc.Timeout)
		if err != nil {
			return fmt.Errorf("config %s: %w", path, err)
		}
		c.Timeout = d
	}
	if fc.ProfileDir != nil {
		c.ProfileDir = expandHome(*fc.ProfileDir)
	}
	if fc.ProfileRepo != nil {
		if fc.ProfileRepo.Owner != "" {
			c.ProfileRepo.Owner = fc.ProfileRepo.Owner
		}
		if fc.ProfileRepo.Repo != "" {
			c.ProfileRepo.Repo = fc.ProfileRepo.Repo
		}
		c.ProfileRepo.Path = fc.ProfileRepo.Path
	}
	if fc.LogJSON != nil {
		c.LogJSON = *fc.LogJSON
	}
	return nil
}

// mergeEnv overlays FERIUM_COMPANION_* variables onto cfg. lookup is
// os.LookupEnv outside of tests.
func (c *Config) mergeEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}

	if v, ok := get("TOOL"); ok {
		c.Tool = v
	}
	if v, ok := get("RUNNER"); ok {
		kind, err := model.ParseRunnerKind(v)
		if err != nil {
			return fmt.Errorf("%sRUNNER: %w", EnvPrefix, err)
		}
		c.Runner = kind
	}
	if v, ok := get("CONTAINER"); ok {
		c.Container = v
	}
	if v, ok := get("TIMEOUT"); ok {
		d, err := ParseTimeout(v)
		if err != nil {
			return fmt.Errorf("%sTIMEOUT: %w", EnvPrefix, err)
		}
		c.Timeout = d
	}
	if v, ok := get("PROFILE_DIR"); ok {
		c.ProfileDir = expandHome(v)
	}
	if v, ok := get("PROFILE_REPO"); ok {
		repo, err := ParseRepo(v)
		if err != nil {
			return fmt.Errorf("%sPROFILE_REPO: %w", EnvPrefix, err)
		}
		c.ProfileRepo = repo
	}
	if v, ok := get("LOG_JSON"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sLOG_JSON: %w", EnvPrefix, err)
		}
		c.LogJSON = b
	}
	return nil
}

// ParseTimeout accepts a Go duration ("90s", "10m") or a bare number of
// seconds. "0" disables the timeout.
func ParseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.Atoi(s); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("invalid timeout %q: must not be negative", s)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid timeout %q: must not be negative", s)
	}
	return d, nil
}

// ParseRepo parses "owner/repo" or "owner/repo/path/inside".
func ParseRepo(s string) (RepoConfig, error) {
	parts := strings.SplitN(strings.Trim(strings.TrimSpace(s), "/"), "/", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return RepoConfig{}, fmt.Errorf("invalid repository %q: expected owner/repo[/path]", s)
	}
	repo := RepoConfig{Owner: parts[0], Repo: parts[1]}
	if len(parts) == 3 {
		repo.Path = parts[2]
	}
	return repo, nil
}

// String renders the repository as owner/repo[/path].
func (r RepoConfig) String() string {
	s := r.Owner + "/" + r.Repo
	if r.Path != "" {
		s += "/" + r.Path
	}
	return s
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
