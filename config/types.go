// Copyright © 2025 Texelmap contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/types.go
// Summary: Typed access helpers for config store data.

package config

// Section returns the named section or nil if missing. A nil Section is
// safe to read through: every accessor falls back to its default.
func (c Config) Section(sectionName string) Section {
	if raw, ok := c[sectionName]; ok {
		switch v := raw.(type) {
		case Section:
			return v
		case map[string]interface{}:
			return Section(v)
		}
	}
	return nil
}

// RegisterDefaults ensures a section has defaults without overwriting
// existing keys.
func (c Config) RegisterDefaults(sectionName string, defaults Section) {
	if c == nil || defaults == nil {
		return
	}
	section := c.Section(sectionName)
	if section == nil {
		section = make(Section)
		c[sectionName] = section
	}
	for key, value := range defaults {
		if _, ok := section[key]; !ok {
			section[key] = value
		}
	}
}

// String returns the string stored under key, or defaultValue.
func (s Section) String(key, defaultValue string) string {
	if v, ok := s[key].(string); ok {
		return v
	}
	return defaultValue
}

// Int returns the integer stored under key, or defaultValue. JSON
// decodes numbers as float64, so both forms are accepted.
func (s Section) Int(key string, defaultValue int) int {
	switch v := s[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return defaultValue
}

// Bool returns the boolean stored under key, or defaultValue.
func (s Section) Bool(key string, defaultValue bool) bool {
	if v, ok := s[key].(bool); ok {
		return v
	}
	return defaultValue
}
