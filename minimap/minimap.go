// Copyright © 2025 Texelmap contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: minimap/minimap.go
// Summary: Core bitmap and geometry types for the minimap preview.

package minimap

import (
	"image"
	"image/color"
)

// Rect is an integer pixel rectangle in panel space.
type Rect struct {
	X, Y, W, H int
}

// Empty reports whether the rectangle covers no pixels.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Contains reports whether the point (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Minimap is the compressed full-document preview bitmap. It is produced
// wholesale by a single build pass from (text, color scheme, highlighter,
// folds) and never mutated afterwards; consumers share it freely.
type Minimap struct {
	// Pix holds the rendered pixels. For an empty document Pix covers a
	// zero-height rectangle and the compositor skips drawing it.
	Pix *image.RGBA

	// Width and Height are Pix's dimensions in pixels.
	Width  int
	Height int

	// VisualLines is the number of fold-aware visual lines the bitmap
	// covers. Height == VisualLines * pixels-per-line.
	VisualLines int
}

// Surface accepts the draw calls the core emits during composition. The
// core computes coordinates only; rasterization and clipping belong to
// the implementation (an in-memory buffer, a terminal adapter, ...).
type Surface interface {
	// FillRect fills a rectangle with c, alpha-compositing when c is
	// not fully opaque.
	FillRect(r Rect, c color.NRGBA)

	// Blit copies the sub-rectangle sr of src so that sr.Min lands on
	// dst in panel space.
	Blit(src *image.RGBA, sr image.Rectangle, dst image.Point)
}

// bufferSurface composites onto an owned RGBA image. It backs the
// coordinator's presentation buffer so a repaint arriving mid-render can
// redraw from the last composited frame.
type bufferSurface struct {
	img *image.RGBA
}

func newBufferSurface(w, h int) *bufferSurface {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &bufferSurface{img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

func (b *bufferSurface) FillRect(r Rect, c color.NRGBA) {
	if r.Empty() {
		return
	}
	bounds := b.img.Bounds()
	for y := r.Y; y < r.Y+r.H; y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		for x := r.X; x < r.X+r.W; x++ {
			if x < bounds.Min.X || x >= bounds.Max.X {
				continue
			}
			b.img.Set(x, y, blendNRGBA(b.img.RGBAAt(x, y), c))
		}
	}
}

func (b *bufferSurface) Blit(src *image.RGBA, sr image.Rectangle, dst image.Point) {
	if src == nil || sr.Empty() {
		return
	}
	bounds := b.img.Bounds()
	for y := 0; y < sr.Dy(); y++ {
		dy := dst.Y + y
		if dy < bounds.Min.Y || dy >= bounds.Max.Y {
			continue
		}
		for x := 0; x < sr.Dx(); x++ {
			dx := dst.X + x
			if dx < bounds.Min.X || dx >= bounds.Max.X {
				continue
			}
			b.img.SetRGBA(dx, dy, src.RGBAAt(sr.Min.X+x, sr.Min.Y+y))
		}
	}
}

// blendNRGBA composites overlay over base with straight alpha.
func blendNRGBA(base color.RGBA, overlay color.NRGBA) color.RGBA {
	a := uint32(overlay.A)
	if a == 0 {
		return base
	}
	if a == 255 {
		return color.RGBA{R: overlay.R, G: overlay.G, B: overlay.B, A: 255}
	}
	inv := 255 - a
	return color.RGBA{
		R: uint8((uint32(overlay.R)*a + uint32(base.R)*inv) / 255),
		G: uint8((uint32(overlay.G)*a + uint32(base.G)*inv) / 255),
		B: uint8((uint32(overlay.B)*a + uint32(base.B)*inv) / 255),
		A: 255,
	}
}
