// Copyright © 2025 Texelmap contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: minimap/cache.go
// Summary: Explicitly evictable reference to the current preview bitmap.
//
// The preview can be large (one build covers the entire document), so the
// coordinator holds it behind a reference the host may evict under memory
// pressure. "Absent" is a valid, recoverable state: the next access
// triggers a rebuild, never an error.

package minimap

import "sync"

// PreviewRef owns the single live Minimap of a panel. Get and Set run on
// the interactive thread; Evict may be called from a host memory-pressure
// hook on any goroutine, hence the mutex.
type PreviewRef struct {
	mu      sync.Mutex
	mm      *Minimap
	onEvict func()
}

// Get returns the current preview, or nil when absent (never built yet,
// or evicted). Callers treat nil as "rebuild on next access".
func (r *PreviewRef) Get() *Minimap {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mm
}

// Set installs a freshly built preview, replacing any previous one.
func (r *PreviewRef) Set(mm *Minimap) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mm = mm
}

// Evict drops the preview. The eviction hook, if any, runs after the
// reference is cleared so it can schedule a lazy rebuild.
func (r *PreviewRef) Evict() {
	r.mu.Lock()
	r.mm = nil
	hook := r.onEvict
	r.mu.Unlock()

	if hook != nil {
		hook()
	}
}

// SetEvictHook registers a callback invoked after every Evict.
func (r *PreviewRef) SetEvictHook(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onEvict = fn
}
