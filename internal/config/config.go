// Package config loads and validates the Code Atlas configuration from
// .codeatlas/config.json, falling back to defaults when no file exists.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete Code Atlas configuration.
type Config struct {
	Version  int    `json:"version" mapstructure:"version"`
	RepoRoot string `json:"repoRoot" mapstructure:"repoRoot"`

	Scan    ScanConfig    `json:"scan" mapstructure:"scan"`
	Resolve ResolveConfig `json:"resolve" mapstructure:"resolve"`
	Modules ModulesConfig `json:"modules" mapstructure:"modules"`
	Graph   GraphConfig   `json:"graph" mapstructure:"graph"`
	Server  ServerConfig  `json:"server" mapstructure:"server"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// ScanConfig controls the file walker and extractor.
type ScanConfig struct {
	// IgnoreDirs are directory names excluded from the walk.
	IgnoreDirs []string `json:"ignoreDirs" mapstructure:"ignoreDirs"`
	// Extensions are the source file extensions considered for analysis.
	Extensions []string `json:"extensions" mapstructure:"extensions"`
	// UseGitignore enables .gitignore-based exclusion at the scan root.
	UseGitignore bool `json:"useGitignore" mapstructure:"useGitignore"`
	// MaxFileSizeBytes caps per-file reads; larger files degrade to
	// line-count-only metadata.
	MaxFileSizeBytes int `json:"maxFileSizeBytes" mapstructure:"maxFileSizeBytes"`
	// TimeoutSeconds bounds a whole scan. Zero disables the deadline.
	TimeoutSeconds int `json:"timeoutSeconds" mapstructure:"timeoutSeconds"`
	// Workers is the per-file extraction parallelism.
	Workers int `json:"workers" mapstructure:"workers"`
	// ExtraServices extends the built-in external-service registry with
	// additional canonical ids.
	ExtraServices []string `json:"extraServices" mapstructure:"extraServices"`
}

// ResolveConfig controls import specifier resolution.
type ResolveConfig struct {
	// Aliases maps specifier prefixes to repo-relative path prefixes,
	// e.g. "@/" -> "src/".
	Aliases map[string]string `json:"aliases" mapstructure:"aliases"`
}

// ModulesConfig controls the file-to-module partition.
type ModulesConfig struct {
	// Roots optionally pins the partition to explicit top-level directories.
	// Empty means every top-level directory becomes a module.
	Roots []string `json:"roots" mapstructure:"roots"`
	// MaxKeyExports bounds the representative export subset per module.
	MaxKeyExports int `json:"maxKeyExports" mapstructure:"maxKeyExports"`
}

// GraphConfig controls graph composition.
type GraphConfig struct {
	// ViewCacheSize is the number of composed views kept in the LRU cache.
	ViewCacheSize int `json:"viewCacheSize" mapstructure:"viewCacheSize"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Addr string `json:"addr" mapstructure:"addr"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		RepoRoot: ".",
		Scan: ScanConfig{
			IgnoreDirs: []string{
				"node_modules", ".git", ".next", "dist", "build", "out",
				"coverage", "vendor", "__pycache__", ".turbo", ".vercel",
			},
			Extensions:       []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"},
			UseGitignore:     true,
			MaxFileSizeBytes: 1000000,
			TimeoutSeconds:   120,
			Workers:          8,
		},
		Resolve: ResolveConfig{
			Aliases: map[string]string{
				"@/": "",
				"~/": "",
			},
		},
		Modules: ModulesConfig{
			Roots:         []string{},
			MaxKeyExports: 10,
		},
		Graph: GraphConfig{
			ViewCacheSize: 32,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:7431",
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// Load reads configuration from <repoRoot>/.codeatlas/config.json.
// A missing file yields the defaults, not an error.
func Load(repoRoot string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(repoRoot, ".codeatlas"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to <repoRoot>/.codeatlas/config.json.
func (c *Config) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, ".codeatlas")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks the configuration for values the engine cannot work with.
func (c *Config) Validate() error {
	if c.Scan.Workers < 1 {
		return &Error{Field: "scan.workers", Message: "must be at least 1"}
	}
	if c.Scan.MaxFileSizeBytes < 1 {
		return &Error{Field: "scan.maxFileSizeBytes", Message: "must be positive"}
	}
	if c.Modules.MaxKeyExports < 1 {
		return &Error{Field: "modules.maxKeyExports", Message: "must be at least 1"}
	}
	if c.Graph.ViewCacheSize < 1 {
		return &Error{Field: "graph.viewCacheSize", Message: "must be at least 1"}
	}
	return nil
}

// Error represents a configuration error.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
