package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds application configuration.
type Config struct {
	// ClaudeDir is the Claude Code data directory holding projects/.
	// Empty means ~/.claude.
	ClaudeDir string `json:"claude_dir,omitempty"`

	// PreviewWidth is the number of characters of a line preview shown in listings
	PreviewWidth int `json:"preview_width"`

	// PageSize is the number of lines shown per page by the interactive view.
	PageSize int `json:"page_size"`

	// HistoryDisabled turns off the save/restore history journal (history.db).
	HistoryDisabled bool `json:"history_disabled,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		PreviewWidth: 80,
		PageSize:     20,
	}
}

// BaseDir returns the directory holding config.json and history.db
// (~/.claude/session-manager).
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".claude", "session-manager"), nil
}

// ResolveClaudeDir returns cfg.ClaudeDir, defaulting to ~/.claude.
// A leading "~/" is expanded.
func (c *Config) ResolveClaudeDir() (string, error) {
	dir := strings.TrimSpace(c.ClaudeDir)
	if dir != "" && dir != "~" && !strings.HasPrefix(dir, "~/") {
		return filepath.Clean(dir), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	switch {
	case dir == "":
		return filepath.Join(home, ".claude"), nil
	case dir == "~":
		return home, nil
	default:
		return filepath.Join(home, dir[2:]), nil
	}
}

// FileName is the config file inside the base directory.
const FileName = "config.json"

// EnvClaudeDir names the environment variable Claude Code reads for its data
// directory. It applies when config.json sets no claude_dir.
const EnvClaudeDir = "CLAUDE_CONFIG_DIR"

// Load reads baseDir/config.json over the defaults. A missing file yields the
// defaults; malformed JSON is an error naming the file.
func Load(baseDir string) (*Config, error) {
	path := filepath.Join(baseDir, FileName)
	fileCfg, err := readFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Merge(DefaultConfig(), fileCfg)
	if cfg.ClaudeDir == "" {
		cfg.ClaudeDir = strings.TrimSpace(os.Getenv(EnvClaudeDir))
	}
	return cfg, nil
}

// readFile returns the zero Config when path does not exist, so only the
// fields the file sets take part in Merge.
func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	// Scalars: overlay wins if non-zero, else base
	result.ClaudeDir = overlay.ClaudeDir
	if result.ClaudeDir == "" {
		result.ClaudeDir = base.ClaudeDir
	}

	result.PreviewWidth = overlay.PreviewWidth
	if result.PreviewWidth <= 0 {
		result.PreviewWidth = base.PreviewWidth
	}

	result.PageSize = overlay.PageSize
	if result.PageSize <= 0 {
		result.PageSize = base.PageSize
	}

	// Booleans: overlay wins if true, else base
	result.HistoryDisabled = base.HistoryDisabled || overlay.HistoryDisabled

	// Arrays: merge and deduplicate
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
