// Copyright © 2025 Texelmap contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: minimap/events.go
// Summary: Invalidation event types and the listener dispatcher wiring
// host-side changes (document, folds, selection, config, geometry) to the
// render coordinator.

package minimap

import "sync"

// EventType identifies what changed on the host side.
type EventType int

const (
	// EventDocumentChanged fires on any edit to the document text.
	EventDocumentChanged EventType = iota
	// EventFoldsChanged fires when the set of collapsed regions changes.
	EventFoldsChanged
	// EventSelectionChanged fires when selection ranges move. It only
	// needs a repaint of the overlay, not a rebuild of the bitmap.
	EventSelectionChanged
	// EventConfigChanged fires when the minimap settings change.
	EventConfigChanged
	// EventPanelResized fires when the panel or containing window is
	// resized. Payload is a ResizePayload.
	EventPanelResized
)

// ResizePayload carries the new geometry for EventPanelResized.
type ResizePayload struct {
	PanelWidth  int
	PanelHeight int
	WindowWidth int
}

// Event is a single invalidation notification.
type Event struct {
	Type    EventType
	Payload interface{}
}

// Listener receives invalidation events.
type Listener interface {
	OnEvent(Event)
}

// Dispatcher fans invalidation events out to subscribed listeners.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners []Listener
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{listeners: make([]Listener, 0)}
}

// Subscribe adds a listener.
func (d *Dispatcher) Subscribe(l Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, l)
}

// Unsubscribe removes a listener. Removing a listener that is not
// subscribed is a no-op, so teardown stays idempotent.
func (d *Dispatcher) Unsubscribe(l Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, have := range d.listeners {
		if have == l {
			d.listeners = append(d.listeners[:i], d.listeners[i+1:]...)
			break
		}
	}
}

// Broadcast delivers an event to every subscribed listener.
func (d *Dispatcher) Broadcast(ev Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, l := range d.listeners {
		l.OnEvent(ev)
	}
}
