package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load loads the configuration of a game.
// The embedded default is decoded first and the first file found is laid
// over it, so a partial file only overrides the keys it names.
// Search order: customPath -> ~/.pocket-arcade/configs/<id>.yaml -> ./configs/<id>.yaml.
// customPath may name a file or a directory holding <id>.yaml.
func Load[T any](gameID, customPath string) (T, error) {
	var cfg T

	data, err := DefaultYAML(gameID)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse embedded %s: %w", gameID, err)
	}

	// Try custom path first
	if customPath != "" {
		path := customPath
		if info, err := os.Stat(customPath); err == nil && info.IsDir() {
			path = filepath.Join(customPath, gameID+".yaml")
			if _, err := os.Stat(path); err != nil {
				return cfg, nil // directory without this game keeps the defaults
			}
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
		return cfg, nil
	}

	for _, path := range searchPaths(gameID) {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		// Decode into a copy so a broken file leaves the defaults intact.
		next := cfg
		if err := yaml.Unmarshal(data, &next); err == nil {
			return next, nil
		}
	}
	return cfg, nil
}

// searchPaths lists the config files tried for a game, in order.
func searchPaths(gameID string) []string {
	var paths []string
	if p := userConfigPath(gameID + ".yaml"); p != "" {
		paths = append(paths, p)
	}
	return append(paths, filepath.Join("configs", gameID+".yaml"))
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".pocket-arcade", "configs", filename)
}

// ParsePreset validates a --difficulty value. The empty string means
// "use the file as written".
func ParsePreset(s string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(s); p {
	case "", DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p, nil
	default:
		return "", fmt.Errorf("config: unknown difficulty %q (easy, normal, hard, fixed)", s)
	}
}

// ApplyPreset modifies a difficulty config based on a preset. An empty
// preset leaves it untouched.
func ApplyPreset(cfg *DifficultyConfig, preset DifficultyPreset) {
	switch {
	case preset == "":
		return
	case IsFixedPreset(preset):
		cfg.Enabled = false
	default:
		cfg.Enabled = true
		cfg.InitialLevel = InitialLevelForPreset(preset)
	}
}
