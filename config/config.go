// Copyright © 2025 Texelmap contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/config.go
// Summary: File-backed JSON configuration store for the minimap panel.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const configName = "texelmap.json"

// Config stores configuration sections as JSON-compatible data.
type Config map[string]interface{}

// Section stores key/value pairs for a configuration section.
type Section map[string]interface{}

// Store owns one configuration file. It is safe for concurrent use; the
// watcher goroutine reloads it behind the same mutex readers take.
type Store struct {
	path string

	mu        sync.RWMutex
	data      Config
	listeners []func()

	watch     *watcher
	closeOnce sync.Once
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "texelmap", configName), nil
}

// Open loads the store from path. A missing file is not an error: the
// store starts from defaults and Save will create it.
func Open(path string) (*Store, error) {
	s := &Store{path: path, data: make(Config)}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		cfg := make(Config)
		applyDefaults(cfg)
		s.mu.Lock()
		s.data = cfg
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	cfg := make(Config)
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", s.path, err)
	}
	applyDefaults(cfg)
	s.mu.Lock()
	s.data = cfg
	s.mu.Unlock()
	return nil
}

// Save writes the current configuration back to disk.
func (s *Store) Save() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.data, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

// Set updates a key in a section and notifies listeners.
func (s *Store) Set(sectionName, key string, value interface{}) {
	s.mu.Lock()
	section := s.data.Section(sectionName)
	if section == nil {
		section = make(Section)
		s.data[sectionName] = section
	}
	section[key] = value
	s.mu.Unlock()

	s.notify()
}

// OnChange registers a callback fired after every change, whether made
// through Set or observed on disk by the watcher.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) notify() {
	s.mu.RLock()
	listeners := append([]func(){}, s.listeners...)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn()
	}
}

// Close stops the watcher, if any. Idempotent.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		if s.watch != nil {
			s.watch.stop()
		}
	})
}

func (s *Store) snapshot() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}
