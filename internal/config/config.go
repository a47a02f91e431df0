// Package config loads the optional photoxport settings file.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/photoxport/photoxport/internal/utils"
)

// Settings is the YAML settings file merged under CLI flags.
//
//	symlinks: true
//	convert:
//	  HEIC: PNG
//	  MOV: MP4
//	whitelist: false
//	albums:
//	  - Screenshots
//	  - Recently Deleted
//	log_level: info
type Settings struct {
	Symlinks  bool              `yaml:"symlinks"`
	Convert   map[string]string `yaml:"convert"`
	Whitelist bool              `yaml:"whitelist"`
	Albums    []string          `yaml:"albums"`
	LogLevel  string            `yaml:"log_level"`
}

// Load reads and parses the settings file at path
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	return &settings, nil
}

// ConvertMap returns the conversion rules with extensions normalized to
// the uppercase, dot-free form used on the asset model
func (s *Settings) ConvertMap() map[string]string {
	if len(s.Convert) == 0 {
		return nil
	}
	rules := make(map[string]string, len(s.Convert))
	for from, to := range s.Convert {
		rules[utils.NormalizeExtension(from)] = utils.NormalizeExtension(to)
	}
	return rules
}
