// Copyright © 2025 Texelmap contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: minimap/sources.go
// Summary: Contracts the minimap core consumes from its host editor.
//
// The core renders previews; everything it knows about the document,
// folds, selection and configuration comes in through these interfaces.
// Change notifications travel separately, as Dispatcher events.

package minimap

// DocumentSource exposes the host document being previewed.
type DocumentSource interface {
	// Text returns the current full document text.
	Text() string

	// Name returns a filename hint for language detection. May be empty.
	Name() string

	// LineCount returns the number of source lines.
	LineCount() int

	// OffsetToVisual maps a character offset to a fold-aware visual
	// (line, column) position.
	OffsetToVisual(offset int) (line, col int)
}

// FoldRange is a collapsed region of source lines. The header line
// StartLine stays visible; lines (StartLine, EndLine] are hidden.
type FoldRange struct {
	StartLine int
	EndLine   int
}

// FoldSource exposes the host's collapsed regions. The count alone is
// enough to detect "something changed"; the ranges feed the builder.
type FoldSource interface {
	FoldCount() int
	FoldRanges() []FoldRange
}

// SelectionRange is a document character-offset range. Start may exceed
// End; the selection painter normalizes.
type SelectionRange struct {
	Start int
	End   int
}

// SelectionSource exposes the primary selection plus any block-selection
// sub-ranges, each painted independently.
type SelectionSource interface {
	Ranges() []SelectionRange
}

// Settings is the minimap section of the host configuration.
type Settings struct {
	// Disabled turns the whole panel off: no renders are scheduled and
	// the preferred size collapses to zero.
	Disabled bool

	// Width is the panel width in pixels.
	Width int

	// MaxFileSize disables the panel for documents larger than this
	// many bytes.
	MaxFileSize int

	// MinLineCount disables the panel for documents shorter than this
	// many lines.
	MinLineCount int

	// MinWindowWidth disables the panel when the containing window is
	// narrower than this many pixels.
	MinWindowWidth int

	// PixelsPerLine is the vertical pixel density of the preview.
	PixelsPerLine int

	// Style names the chroma color scheme used for the preview.
	Style string
}

// ConfigSource exposes the current minimap settings. Change notification
// arrives as an EventConfigChanged on the dispatcher.
type ConfigSource interface {
	Settings() Settings
}

// Executor runs a build task off the interactive thread. The core treats
// it as an opaque "run elsewhere" facility; pool sizing is the host's
// business.
type Executor interface {
	Submit(task func())
}

// Scheduler posts a callback onto the interactive thread's event queue.
// All state mutation after a build completes happens through here, which
// is what lets ScrollState and the preview reference go lock-free.
// Delivery must be unconditional: the render gate's release rides on the
// completion callback, so an implementation that can drop a post would
// leave the gate locked and no build would ever run again.
type Scheduler interface {
	Post(fn func())
}

// GoExecutor runs each task on its own goroutine.
type GoExecutor struct{}

func (GoExecutor) Submit(task func()) { go task() }

// PreviewStore persists finished previews so a reopened document can show
// a cached bitmap while its first live render is in flight. A miss is a
// nil Minimap, not an error.
type PreviewStore interface {
	Save(path, hash string, mm *Minimap) error
	Load(path, hash string) (*Minimap, error)
}
