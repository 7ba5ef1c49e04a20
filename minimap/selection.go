// Copyright © 2025 Texelmap contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: minimap/selection.go
// Summary: Multi-line selection highlight geometry and painting.
//
// A selection spanning several lines decomposes into at most three
// rectangles: a partial leading row, a partial trailing row, and one
// full-width block for everything strictly between. The fill is
// semi-transparent so the preview stays legible underneath; overlapping
// ranges simply paint twice, which is accepted rather than corrected.

package minimap

import "image/color"

// DefaultSelectionFill is the overlay color used when the host supplies
// none.
var DefaultSelectionFill = color.NRGBA{R: 0x26, G: 0x4f, B: 0x78, A: 0x80}

// OffsetMapper is the host's character-offset to visual (line, column)
// mapping, usually DocumentSource.OffsetToVisual.
type OffsetMapper func(offset int) (line, col int)

// SelectionPainter turns selection ranges into highlight rectangles in
// panel pixel space and paints them.
type SelectionPainter struct {
	// Fill is the overlay color. Zero value means DefaultSelectionFill.
	Fill color.NRGBA

	// LineHeightPx is the minimap's pixels per visual line.
	LineHeightPx int

	// CharWidthPx is the minimap's pixels per text column.
	CharWidthPx int
}

// Rects computes the highlight rectangles for one range. panelWidth is
// the panel's pixel width; visibleStart is subtracted from every Y to
// convert minimap space into panel space. Rectangles may lie partly or
// fully outside the panel; clipping is the surface's job.
func (p SelectionPainter) Rects(rng SelectionRange, mapper OffsetMapper, panelWidth, visibleStart int) []Rect {
	lh := p.LineHeightPx
	if lh <= 0 {
		lh = 1
	}
	cw := p.CharWidthPx
	if cw <= 0 {
		cw = 1
	}

	start, end := rng.Start, rng.End
	if start > end {
		start, end = end, start
	}
	startLine, startCol := mapper(start)
	endLine, endCol := mapper(end)

	lineY := func(line int) int { return line*lh - visibleStart }

	if startLine == endLine {
		if endCol <= startCol {
			return nil
		}
		return []Rect{{
			X: startCol * cw,
			Y: lineY(startLine),
			W: (endCol - startCol) * cw,
			H: lh,
		}}
	}

	rects := make([]Rect, 0, 3)

	// Partial leading row: from startCol to the right edge.
	rects = append(rects, Rect{
		X: startCol * cw,
		Y: lineY(startLine),
		W: panelWidth - startCol*cw,
		H: lh,
	})

	// Full-width block for the rows strictly between; absent when the
	// lines are adjacent.
	if endLine > startLine+1 {
		rects = append(rects, Rect{
			X: 0,
			Y: lineY(startLine + 1),
			W: panelWidth,
			H: (endLine - startLine - 1) * lh,
		})
	}

	// Partial trailing row: from the left edge to endCol.
	if endCol > 0 {
		rects = append(rects, Rect{
			X: 0,
			Y: lineY(endLine),
			W: endCol * cw,
			H: lh,
		})
	}

	return rects
}

// Paint draws every range's rectangles onto the surface. Ranges are
// painted independently and unconditionally; overlap is visually
// idempotent at this alpha.
func (p SelectionPainter) Paint(s Surface, ranges []SelectionRange, mapper OffsetMapper, panelWidth, visibleStart int) {
	fill := p.Fill
	if fill == (color.NRGBA{}) {
		fill = DefaultSelectionFill
	}
	for _, rng := range ranges {
		for _, r := range p.Rects(rng, mapper, panelWidth, visibleStart) {
			if r.Empty() {
				continue
			}
			s.FillRect(r, fill)
		}
	}
}
