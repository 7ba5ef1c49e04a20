// Copyright © 2025 Texelmap contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/minimap.go
// Summary: The minimap section: defaults and the typed Settings view.

package config

import "github.com/framegrace/texelmap/minimap"

const minimapSection = "minimap"

func applyDefaults(cfg Config) {
	if cfg == nil {
		return
	}
	cfg.RegisterDefaults(minimapSection, Section{
		"disabled":         false,
		"width":            120,
		"max_file_size":    1 << 20,
		"min_line_count":   10,
		"min_window_width": 300,
		"pixels_per_line":  2,
		"style":            "catppuccin-mocha",
	})
}

// Settings returns the typed minimap settings, implementing
// minimap.ConfigSource.
func (s *Store) Settings() minimap.Settings {
	sec := s.snapshot().Section(minimapSection)
	return minimap.Settings{
		Disabled:       sec.Bool("disabled", false),
		Width:          sec.Int("width", 120),
		MaxFileSize:    sec.Int("max_file_size", 1<<20),
		MinLineCount:   sec.Int("min_line_count", 10),
		MinWindowWidth: sec.Int("min_window_width", 300),
		PixelsPerLine:  sec.Int("pixels_per_line", 2),
		Style:          sec.String("style", "catppuccin-mocha"),
	}
}
