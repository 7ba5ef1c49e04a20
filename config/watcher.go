// Copyright © 2025 Texelmap contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/watcher.go
// Summary: Filesystem watcher that reloads the store when the config
// file changes on disk.

package config

import (
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

type watcher struct {
	fsw  *fsnotify.Watcher
	done chan struct{}
}

// Watch starts observing the config file's directory and reloads the
// store on writes. Watching the directory, not the file, survives the
// rename-over-save pattern editors use.
func (s *Store) Watch() error {
	if s.watch != nil {
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(filepath.Dir(s.path)); err != nil {
		fsw.Close()
		return err
	}

	w := &watcher{fsw: fsw, done: make(chan struct{})}
	s.watch = w

	go func() {
		for {
			select {
			case ev, ok := <-fsw.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(s.path) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if err := s.load(); err != nil {
					log.Printf("[CONFIG] reload failed: %v", err)
					continue
				}
				s.notify()
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				log.Printf("[CONFIG] watch error: %v", err)
			case <-w.done:
				return
			}
		}
	}()
	return nil
}

func (w *watcher) stop() {
	close(w.done)
	w.fsw.Close()
}
