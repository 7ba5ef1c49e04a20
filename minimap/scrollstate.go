// Copyright © 2025 Texelmap contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: minimap/scrollstate.go
// Summary: Coordinate transforms between document, minimap and panel space.
//
// Three pixel spaces are involved:
//   - editor/document space: the full rendered document in the host editor
//   - minimap space: the compressed preview bitmap
//   - panel space: the visible slice of the minimap on screen
//
// ScrollState is a plain value; every mutation returns a new state so the
// interactive thread can swap it in a single assignment after a render
// completes.

package minimap

import "math"

// ScrollState holds the scroll geometry of the minimap panel. All fields
// are non-negative pixel counts.
type ScrollState struct {
	// DocWidth and DocHeight are the preview bitmap's dimensions. They
	// are written only by the render completion path.
	DocWidth  int
	DocHeight int

	// ViewportStartY and ViewportHeightY describe the editor's visible
	// region mapped into minimap space.
	ViewportStartY  int
	ViewportHeightY int

	// VisibleHeight is the panel's own pixel height.
	VisibleHeight int

	// PanelWidth is the configured panel width in pixels.
	PanelWidth int
}

// WithDocumentSize returns a copy with new preview bitmap dimensions.
func (s ScrollState) WithDocumentSize(w, h int) ScrollState {
	s.DocWidth = clampPx(w)
	s.DocHeight = clampPx(h)
	return s
}

// WithPanelSize returns a copy with new panel dimensions.
func (s ScrollState) WithPanelSize(w, h int) ScrollState {
	s.PanelWidth = clampPx(w)
	s.VisibleHeight = clampPx(h)
	return s
}

// WithViewport maps the editor's visible region into minimap space and
// returns the updated state. topPx and heightPx are the viewport's top
// offset and height in editor pixel space; contentPx is the editor's full
// content height in the same space. The minimap is generally shorter than
// the document, so positions are scaled by DocHeight/contentPx.
// Negative or NaN inputs clamp to zero and never propagate.
func (s ScrollState) WithViewport(topPx, heightPx, contentPx float64) ScrollState {
	topPx = sanitize(topPx)
	heightPx = sanitize(heightPx)
	contentPx = sanitize(contentPx)

	if contentPx <= 0 || s.DocHeight == 0 {
		s.ViewportStartY = 0
		s.ViewportHeightY = 0
		return s
	}

	f := float64(s.DocHeight) / contentPx
	s.ViewportStartY = clampPx(int(math.Round(topPx * f)))
	s.ViewportHeightY = clampPx(int(math.Round(heightPx * f)))
	if s.ViewportStartY > s.DocHeight {
		s.ViewportStartY = s.DocHeight
	}
	if s.ViewportStartY+s.ViewportHeightY > s.DocHeight {
		s.ViewportHeightY = s.DocHeight - s.ViewportStartY
	}
	return s
}

// VisibleWindow computes the source slice of the minimap bitmap shown in
// the panel. The window is centered on the viewport's center, clamped to
// the bitmap; when the whole bitmap fits it is shown un-scrolled from the
// top. drawHeight never exceeds the bitmap height remaining below
// visibleStart.
func (s ScrollState) VisibleWindow() (visibleStart, visibleEnd, drawHeight int) {
	if s.DocHeight == 0 {
		return 0, 0, 0
	}
	if s.VisibleHeight >= s.DocHeight {
		return 0, s.DocHeight, s.DocHeight
	}

	center := s.ViewportStartY + s.ViewportHeightY/2
	visibleStart = center - s.VisibleHeight/2
	if max := s.DocHeight - s.VisibleHeight; visibleStart > max {
		visibleStart = max
	}
	if visibleStart < 0 {
		visibleStart = 0
	}
	visibleEnd = visibleStart + s.VisibleHeight
	drawHeight = s.VisibleHeight
	if rest := s.DocHeight - visibleStart; drawHeight > rest {
		drawHeight = rest
	}
	return visibleStart, visibleEnd, drawHeight
}

// ViewportRect returns the viewport indicator rectangle in panel space,
// for drawing the "you are here" marker over the preview.
func (s ScrollState) ViewportRect() Rect {
	visibleStart, _, _ := s.VisibleWindow()
	return Rect{
		X: 0,
		Y: s.ViewportStartY - visibleStart,
		W: s.PanelWidth,
		H: s.ViewportHeightY,
	}
}

// PanelYToDocY converts a panel-space Y coordinate back into minimap
// space, clamped to the bitmap. Used to map clicks to document positions.
func (s ScrollState) PanelYToDocY(y int) int {
	visibleStart, _, _ := s.VisibleWindow()
	docY := visibleStart + y
	if docY < 0 {
		docY = 0
	}
	if s.DocHeight > 0 && docY >= s.DocHeight {
		docY = s.DocHeight - 1
	}
	return docY
}

// PanelYToLine converts a panel-space Y coordinate to a visual line
// index, given the vertical pixels-per-line density of the bitmap.
func (s ScrollState) PanelYToLine(y, pixelsPerLine int) int {
	if pixelsPerLine <= 0 {
		pixelsPerLine = 1
	}
	return s.PanelYToDocY(y) / pixelsPerLine
}

func clampPx(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}
