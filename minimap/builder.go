// Copyright © 2025 Texelmap contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: minimap/builder.go
// Summary: Builds the preview bitmap from document text.
//
// Layout is VSCode-like: one pixel column per visual text column, a fixed
// number of pixel rows per source line. Tokenizing the whole document as
// a single block gives the lexer full context (package/import/func
// structure in Go, heading context in markdown) instead of per-line
// guessing.

package minimap

import (
	"image"
	"image/color"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/go-enry/go-enry/v2"
	"github.com/mattn/go-runewidth"
)

// Builder defaults.
const (
	DefaultWidth         = 120
	DefaultPixelsPerLine = 2
	DefaultTabWidth      = 4
)

// enry samples at most this many bytes for content-based detection.
const detectSampleSize = 8 * 1024

// Builder renders document text into a Minimap. A Builder is a plain
// value; Build is deterministic given identical inputs, mutates nothing
// outside its output, and is intended to run off the interactive thread.
type Builder struct {
	// Width is the bitmap width in pixels (columns beyond it are
	// truncated, not scaled). Zero means DefaultWidth.
	Width int

	// PixelsPerLine is the bitmap rows per visual source line. Zero
	// means DefaultPixelsPerLine.
	PixelsPerLine int

	// TabWidth is the tab expansion width in columns. Zero means
	// DefaultTabWidth.
	TabWidth int
}

// Build renders text into a preview bitmap. Lines hidden inside folds are
// skipped. A nil lexer means the highlighter is unavailable; the build
// degrades to plain rendering rather than failing. An empty document
// yields a zero-height bitmap.
func (b Builder) Build(text string, scheme *chroma.Style, lexer chroma.Lexer, folds []FoldRange) *Minimap {
	width := b.Width
	if width <= 0 {
		width = DefaultWidth
	}
	ppl := b.PixelsPerLine
	if ppl <= 0 {
		ppl = DefaultPixelsPerLine
	}
	tab := b.TabWidth
	if tab <= 0 {
		tab = DefaultTabWidth
	}
	if scheme == nil {
		scheme = styles.Fallback
	}

	if text == "" {
		return &Minimap{
			Pix:   image.NewRGBA(image.Rect(0, 0, width, 0)),
			Width: width,
		}
	}

	lines := strings.Split(text, "\n")
	visRow := visualRows(len(lines), folds)
	rows := 0
	for _, r := range visRow {
		if r >= 0 {
			rows++
		}
	}

	height := rows * ppl
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	fillAll(img, schemeBackground(scheme))

	base := schemeColor(scheme, chroma.Text)
	tokens := tokenizeOrPlain(text, lexer)

	lineIdx := 0
	col := 0
	for _, tok := range tokens {
		c := base
		if entry := scheme.Get(tok.Type); entry.Colour.IsSet() {
			c = chromaToRGBA(entry.Colour)
		}
		for _, ru := range tok.Value {
			if ru == '\n' {
				lineIdx++
				col = 0
				continue
			}
			if lineIdx >= len(visRow) {
				break
			}
			if ru == '\t' {
				col += tab - (col % tab)
				continue
			}
			w := runewidth.RuneWidth(ru)
			if w <= 0 {
				continue
			}
			if ru == ' ' {
				col += w
				continue
			}
			if row := visRow[lineIdx]; row >= 0 && col < width {
				end := col + w
				if end > width {
					end = width
				}
				fillRows(img, col, end, row*ppl, (row+1)*ppl, c)
			}
			col += w
		}
	}

	return &Minimap{
		Pix:         img,
		Width:       width,
		Height:      height,
		VisualLines: rows,
	}
}

// DetectLexer resolves a syntax highlighter for the document, trying
// enry's filename+content classifier first and chroma's own matchers
// after that. Returns nil when nothing matches; the build then degrades
// to plain rendering.
func DetectLexer(name, text string) chroma.Lexer {
	sample := text
	if len(sample) > detectSampleSize {
		sample = sample[:detectSampleSize]
	}
	if lang := enry.GetLanguage(name, []byte(sample)); lang != "" && lang != enry.OtherLanguage {
		if l := lexers.Get(strings.ToLower(lang)); l != nil {
			return l
		}
	}
	if name != "" {
		if l := lexers.Match(name); l != nil {
			return l
		}
	}
	return lexers.Analyse(sample)
}

// tokenizeOrPlain tokenizes text, or returns a single plain-text token
// covering the whole document when the highlighter is unavailable or
// fails. Rendering must never leave the scheduler stuck, so there is no
// error path out of a build.
func tokenizeOrPlain(text string, lexer chroma.Lexer) []chroma.Token {
	if lexer != nil {
		tokens, err := chroma.Tokenise(chroma.Coalesce(lexer), nil, text)
		if err == nil {
			return tokens
		}
	}
	return []chroma.Token{{Type: chroma.Text, Value: text}}
}

// visualRows assigns each source line its fold-aware visual row, or -1
// for lines hidden inside a collapsed range. Fold headers stay visible.
func visualRows(lineCount int, folds []FoldRange) []int {
	hidden := make([]bool, lineCount)
	for _, f := range folds {
		for l := f.StartLine + 1; l <= f.EndLine && l < lineCount; l++ {
			if l >= 0 {
				hidden[l] = true
			}
		}
	}
	rows := make([]int, lineCount)
	next := 0
	for i := 0; i < lineCount; i++ {
		if hidden[i] {
			rows[i] = -1
			continue
		}
		rows[i] = next
		next++
	}
	return rows
}

func schemeBackground(scheme *chroma.Style) color.RGBA {
	entry := scheme.Get(chroma.Background)
	if entry.Background.IsSet() {
		return chromaToRGBA(entry.Background)
	}
	return color.RGBA{R: 0x1e, G: 0x1e, B: 0x1e, A: 0xff}
}

func schemeColor(scheme *chroma.Style, t chroma.TokenType) color.RGBA {
	entry := scheme.Get(t)
	if entry.Colour.IsSet() {
		return chromaToRGBA(entry.Colour)
	}
	return color.RGBA{R: 0xb4, G: 0xb4, B: 0xb4, A: 0xff}
}

func chromaToRGBA(c chroma.Colour) color.RGBA {
	return color.RGBA{R: c.Red(), G: c.Green(), B: c.Blue(), A: 0xff}
}

func fillAll(img *image.RGBA, c color.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func fillRows(img *image.RGBA, x0, x1, y0, y1 int, c color.RGBA) {
	b := img.Bounds()
	for y := y0; y < y1 && y < b.Max.Y; y++ {
		for x := x0; x < x1 && x < b.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}
