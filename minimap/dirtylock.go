// Copyright © 2025 Texelmap contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: minimap/dirtylock.go
// Summary: Coalescing non-blocking render gate.
//
// DirtyLock guarantees at most one render in flight and at most one more
// pending, regardless of how many invalidations arrive mid-render. A full
// rebuild of the preview bitmap is expensive; letting renders queue up
// would add latency proportional to the backlog, while dropping them
// entirely could leave a stale preview on screen. Coalescing to a single
// dirty bit keeps pending work O(1) and still converges on the latest
// document state.

package minimap

import "sync/atomic"

const (
	gateLocked uint32 = 1 << iota
	gateDirty
)

// DirtyLock is a single-slot try-lock with a sticky dirty flag. Both bits
// live in one atomic word so that acquire, release and the dirty check
// remain consistent when the render completion callback runs on a
// different goroutine than the one that acquired.
//
// The zero value is unlocked and clean.
type DirtyLock struct {
	state atomic.Uint32
}

// Acquire attempts to take the gate. It never blocks: it returns true and
// locks the gate iff it was unlocked, and false if a render already holds
// it (the caller must call MarkDirty instead of starting a second render).
func (g *DirtyLock) Acquire() bool {
	for {
		s := g.state.Load()
		if s&gateLocked != 0 {
			return false
		}
		if g.state.CompareAndSwap(s, s|gateLocked) {
			return true
		}
	}
}

// MarkDirty records that an invalidation arrived. Callable from any
// goroutine at any time, including while the gate is held. Idempotent.
func (g *DirtyLock) MarkDirty() {
	for {
		s := g.state.Load()
		if s&gateDirty != 0 {
			return
		}
		if g.state.CompareAndSwap(s, s|gateDirty) {
			return
		}
	}
}

// Release unlocks the gate. It does not touch the dirty flag; the owner
// checks IsDirty afterwards to decide whether exactly one follow-up
// render is owed. Every Acquire must be paired with a Release on all
// exit paths of the render task.
func (g *DirtyLock) Release() {
	for {
		s := g.state.Load()
		if g.state.CompareAndSwap(s, s&^gateLocked) {
			return
		}
	}
}

// IsDirty reports whether an invalidation arrived since the last
// ClearDirty. Meaningful to the gate owner only after Release.
func (g *DirtyLock) IsDirty() bool {
	return g.state.Load()&gateDirty != 0
}

// ClearDirty consumes the dirty flag before scheduling the follow-up
// render. Returns whether the flag was set.
func (g *DirtyLock) ClearDirty() bool {
	for {
		s := g.state.Load()
		if s&gateDirty == 0 {
			return false
		}
		if g.state.CompareAndSwap(s, s&^gateDirty) {
			return true
		}
	}
}
