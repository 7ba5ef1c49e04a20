// Copyright © 2025 Texelmap contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/panel.go
// Summary: Terminal cell renderer for minimap bitmaps. Packs two bitmap
// rows into each cell with the upper-half block and keeps a thumb column
// showing the viewport position.

package term

import (
	"image"
	"image/color"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/framegrace/texelmap/minimap"
)

// Each cell covers two bitmap rows: the upper-half block's foreground is
// the top pixel, the background is the bottom pixel.
const (
	halfBlockTop = '▀' // U+2580 - upper half block
	blockFull    = '█' // U+2588 - full block
	blockBottom  = '▄' // U+2584 - lower half block
	trackChar    = '│'
)

// pxPerCellY is the vertical bitmap resolution of one terminal cell.
const pxPerCellY = 2

// Cell is one rendered terminal cell.
type Cell struct {
	Ch    rune
	Style tcell.Style
}

// Panel renders a minimap bitmap into a grid of terminal cells. Column
// zero is the viewport thumb; the remaining columns carry the preview,
// downsampled horizontally to fit.
type Panel struct {
	cols, rows int
	cells      []Cell

	trackStyle tcell.Style
	thumbStyle tcell.Style
}

// NewPanel creates a panel with the given cell dimensions.
func NewPanel(cols, rows int) *Panel {
	p := &Panel{
		trackStyle: tcell.StyleDefault.Foreground(tcell.ColorGray),
		thumbStyle: tcell.StyleDefault.Foreground(tcell.ColorAqua),
	}
	p.Resize(cols, rows)
	return p
}

// Resize changes the cell grid dimensions, discarding previous content.
func (p *Panel) Resize(cols, rows int) {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	p.cols, p.rows = cols, rows
	p.cells = make([]Cell, cols*rows)
	p.clear()
}

// Size returns the panel dimensions in cells.
func (p *Panel) Size() (cols, rows int) { return p.cols, p.rows }

// Cell returns the rendered cell at (x, y). Out-of-range coordinates
// return a blank cell.
func (p *Panel) Cell(x, y int) Cell {
	if x < 0 || y < 0 || x >= p.cols || y >= p.rows {
		return Cell{Ch: ' ', Style: tcell.StyleDefault}
	}
	return p.cells[y*p.cols+x]
}

// PixelHeight returns how many bitmap rows the panel can show.
func (p *Panel) PixelHeight() int { return p.rows * pxPerCellY }

func (p *Panel) clear() {
	for i := range p.cells {
		p.cells[i] = Cell{Ch: ' ', Style: tcell.StyleDefault}
	}
}

// Render rasterizes the bitmap's visible window into the cell grid.
// A nil bitmap clears the content columns but still draws the track.
func (p *Panel) Render(mm *minimap.Minimap, scroll minimap.ScrollState) {
	p.clear()
	if p.cols == 0 || p.rows == 0 {
		return
	}

	visibleStart, _, drawHeight := scroll.VisibleWindow()
	if mm != nil && mm.Pix != nil {
		p.renderContent(mm, visibleStart, drawHeight)
	}
	p.renderThumb(scroll.ViewportRect())
}

func (p *Panel) renderContent(mm *minimap.Minimap, visibleStart, drawHeight int) {
	contentCols := p.cols - 1
	if contentCols <= 0 {
		return
	}

	for y := 0; y < p.rows; y++ {
		topPy := visibleStart + y*pxPerCellY
		botPy := topPy + 1
		if topPy >= visibleStart+drawHeight {
			break
		}
		for cx := 0; cx < contentCols; cx++ {
			x0 := cx * mm.Width / contentCols
			x1 := (cx + 1) * mm.Width / contentCols
			if x1 <= x0 {
				x1 = x0 + 1
			}

			fg := mostVivid(mm.Pix, x0, x1, topPy)
			bg := fg
			if botPy < visibleStart+drawHeight {
				bg = mostVivid(mm.Pix, x0, x1, botPy)
			}
			p.cells[y*p.cols+cx+1] = Cell{
				Ch:    halfBlockTop,
				Style: tcell.StyleDefault.Foreground(toTcell(fg)).Background(toTcell(bg)),
			}
		}
	}
}

// renderThumb draws the viewport indicator in column zero. The rect is
// in bitmap pixels, which double as sub-rows at two pixels per cell.
func (p *Panel) renderThumb(vr minimap.Rect) {
	thumbStart := vr.Y
	thumbEnd := vr.Y + vr.H
	for y := 0; y < p.rows; y++ {
		subStart := y * pxPerCellY
		subEnd := subStart + pxPerCellY

		ch := trackChar
		style := p.trackStyle
		if thumbEnd > subStart && thumbStart < subEnd {
			coverTop := thumbStart <= subStart
			coverBottom := thumbEnd >= subEnd
			switch {
			case coverTop && coverBottom:
				ch = blockFull
			case coverTop:
				ch = halfBlockTop
			default:
				ch = blockBottom
			}
			style = p.thumbStyle
		}
		p.cells[y*p.cols] = Cell{Ch: ch, Style: style}
	}
}

// mostVivid picks the highest-chroma pixel in the bucket [x0, x1) on
// row py, so a lone keyword-colored pixel survives downsampling instead
// of washing out into the background.
func mostVivid(pix *image.RGBA, x0, x1, py int) color.RGBA {
	b := pix.Bounds()
	if py < b.Min.Y || py >= b.Max.Y {
		return color.RGBA{}
	}
	if x1 > b.Max.X {
		x1 = b.Max.X
	}

	best := pix.RGBAAt(x0, py)
	bestChroma := -1.0
	for x := x0; x < x1; x++ {
		c := pix.RGBAAt(x, py)
		ch := chromaOf(c)
		if ch > bestChroma {
			bestChroma = ch
			best = c
		}
	}
	return best
}

func chromaOf(c color.RGBA) float64 {
	col := colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
	_, chroma, _ := col.LuvLCh()
	return chroma
}

func toTcell(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
