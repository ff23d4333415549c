// Package config handles loading settings from .mrkt.yaml and merging them
// with MRKT_* environment variables. Environment values take precedence over
// file values; defaults fill whatever is left unset.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the settings from .mrkt.yaml.
type Config struct {
	Agent           string        `yaml:"agent"`
	AgentPath       string        `yaml:"agentPath"`
	AgentTimeout    time.Duration `yaml:"agentTimeout"`
	Prefix          string        `yaml:"prefix"`
	PrefixSeparator string        `yaml:"prefixSeparator"`
	BaseBranch      string        `yaml:"baseBranch"`
	AlwaysQuiet     bool          `yaml:"alwaysQuiet"`
	NoVerify        bool          `yaml:"noVerify"`
	NoVerifyCommit  bool          `yaml:"noVerifyCommit"`
	NoVerifyPush    bool          `yaml:"noVerifyPush"`
}

// DefaultConfigFile is the name of the config file looked for in the working
// directory and its parents.
const DefaultConfigFile = ".mrkt.yaml"

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Agent:           "copilot",
		AgentTimeout:    2 * time.Minute,
		Prefix:          "mrkt",
		PrefixSeparator: "/",
		BaseBranch:      "main",
	}
}

// SkipCommitHooks reports whether git commit should run with --no-verify.
func (c Config) SkipCommitHooks() bool { return c.NoVerify || c.NoVerifyCommit }

// SkipPushHooks reports whether git push should run with --no-verify.
func (c Config) SkipPushHooks() bool { return c.NoVerify || c.NoVerifyPush }

// Load reads the config file from the given directory. If the file does not
// exist, it returns a zero-value Config and no error.
func Load(dir string) (Config, error) {
	path := filepath.Join(dir, DefaultConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Find returns the directory holding the nearest config file, searching from
// dir up to and including stop. An empty stop searches to the filesystem
// root. It returns "" when there is none.
func Find(dir, stop string) string {
	dir = filepath.Clean(dir)
	if stop != "" {
		stop = filepath.Clean(stop)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, DefaultConfigFile)); err == nil {
			return dir
		}
		if dir == stop {
			return ""
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Resolve layers defaults, the nearest config file between workDir and
// repoRoot, and the environment read through getenv.
func Resolve(workDir, repoRoot string, getenv func(string) string) (Config, error) {
	cfg := Config{}
	if dir := Find(workDir, repoRoot); dir != "" {
		fileCfg, err := Load(dir)
		if err != nil {
			return Config{}, err
		}
		cfg = fileCfg
	}

	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}
	applyDefaults(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}

	strs := map[string]*string{
		"MRKT_AGENT":            &cfg.Agent,
		"MRKT_AGENT_PATH":       &cfg.AgentPath,
		"MRKT_PREFIX":           &cfg.Prefix,
		"MRKT_PREFIX_SEPARATOR": &cfg.PrefixSeparator,
		"MRKT_BASE_BRANCH":      &cfg.BaseBranch,
	}
	for key, dst := range strs {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"MRKT_ALWAYS_QUIET":     &cfg.AlwaysQuiet,
		"MRKT_NO_VERIFY":        &cfg.NoVerify,
		"MRKT_NO_VERIFY_COMMIT": &cfg.NoVerifyCommit,
		"MRKT_NO_VERIFY_PUSH":   &cfg.NoVerifyPush,
	}
	for key, dst := range bools {
		v := getenv(key)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s=%q: %w", key, v, err)
		}
		*dst = b
	}

	if v := getenv("MRKT_AGENT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid MRKT_AGENT_TIMEOUT=%q: %w", v, err)
		}
		cfg.AgentTimeout = d
	}
	return nil
}

func applyDefaults(cfg *Config) {
	def := Defaults()
	if cfg.Agent == "" {
		cfg.Agent = def.Agent
	}
	if cfg.AgentTimeout <= 0 {
		cfg.AgentTimeout = def.AgentTimeout
	}
	if cfg.Prefix == "" {
		cfg.Prefix = def.Prefix
	}
	if cfg.PrefixSeparator == "" {
		cfg.PrefixSeparator = def.PrefixSeparator
	}
	if cfg.BaseBranch == "" {
		cfg.BaseBranch = def.BaseBranch
	}
}
