// Copyright © 2025 Texelmap contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: minimap/coordinator.go
// Summary: Panel-level orchestration of asynchronous preview renders.
//
// The coordinator wires invalidation events to render requests through
// the DirtyLock gate, runs builds on the executor, and applies results
// back on the interactive thread via the scheduler. Everything except
// the build itself runs on the interactive thread, so ScrollState and
// the preview reference need no locking of their own.

package minimap

import (
	"image"
	"log"
	"sync"
)

// Coordinator owns one minimap panel's render pipeline.
type Coordinator struct {
	doc   DocumentSource
	folds FoldSource
	sel   SelectionSource
	cfg   ConfigSource
	exec  Executor
	sched Scheduler

	bus   *Dispatcher
	store PreviewStore // optional
	path  string       // store key; usually the document's path

	gate   DirtyLock
	ref    PreviewRef
	scroll ScrollState
	prev   *bufferSurface // last composited frame, for stale redraws

	painter  SelectionPainter
	onRedraw func()

	panelH    int
	windowW   int
	closed    bool
	closeOnce sync.Once
}

// CoordinatorOptions configures optional collaborators.
type CoordinatorOptions struct {
	// Store persists finished previews keyed by Path + content hash.
	Store PreviewStore
	// Path identifies the document in the store.
	Path string
	// OnRedraw is invoked (on the interactive thread) whenever the
	// panel should repaint.
	OnRedraw func()
}

// NewCoordinator builds a coordinator and subscribes it to the bus. The
// matching unsubscribe happens in Close, exactly once.
func NewCoordinator(doc DocumentSource, folds FoldSource, sel SelectionSource, cfg ConfigSource, exec Executor, sched Scheduler, bus *Dispatcher, opts CoordinatorOptions) *Coordinator {
	c := &Coordinator{
		doc:      doc,
		folds:    folds,
		sel:      sel,
		cfg:      cfg,
		exec:     exec,
		sched:    sched,
		bus:      bus,
		store:    opts.Store,
		path:     opts.Path,
		onRedraw: opts.OnRedraw,
	}
	c.ref.SetEvictHook(func() {
		// Memory pressure dropped the bitmap; rebuild lazily off the
		// event queue rather than inline on whatever goroutine evicted.
		c.sched.Post(c.RequestRender)
	})
	if bus != nil {
		bus.Subscribe(c)
	}
	return c
}

// Close tears the coordinator down: unsubscribes from the bus and drops
// the preview. Safe to call more than once; only the first call does
// anything. An in-flight build finishes harmlessly against the closed
// flag.
func (c *Coordinator) Close() {
	c.closeOnce.Do(func() {
		c.closed = true
		if c.bus != nil {
			c.bus.Unsubscribe(c)
		}
		c.ref.Evict()
	})
}

// OnEvent implements Listener. Runs on the interactive thread.
func (c *Coordinator) OnEvent(ev Event) {
	if c.closed {
		return
	}
	switch ev.Type {
	case EventDocumentChanged, EventFoldsChanged:
		c.RequestRender()
	case EventConfigChanged:
		c.scroll = c.scroll.WithPanelSize(c.cfg.Settings().Width, c.panelH)
		c.RequestRender()
	case EventSelectionChanged:
		// The overlay is recomputed at composition time; a repaint is
		// enough, the bitmap is still valid.
		c.requestRedraw()
	case EventPanelResized:
		if p, ok := ev.Payload.(ResizePayload); ok {
			c.panelH = p.PanelHeight
			c.windowW = p.WindowWidth
			width := p.PanelWidth
			if width <= 0 {
				width = c.cfg.Settings().Width
			}
			c.scroll = c.scroll.WithPanelSize(width, p.PanelHeight)
		}
		c.RequestRender()
	}
}

// RequestRender asks for a rebuild of the preview bitmap. When a build
// is already in flight the request coalesces into the gate's dirty flag
// and exactly one follow-up build runs after the current one completes.
// Requests against a disabled or torn-down panel are dropped silently.
func (c *Coordinator) RequestRender() {
	if !c.eligible() {
		return
	}
	if !c.gate.Acquire() {
		c.gate.MarkDirty()
		return
	}

	// Snapshot inputs on the interactive thread; the build must not
	// touch shared state.
	settings := c.cfg.Settings()
	text := c.doc.Text()
	name := c.doc.Name()
	folds := append([]FoldRange(nil), c.folds.FoldRanges()...)
	builder := Builder{
		Width:         settings.Width,
		PixelsPerLine: settings.PixelsPerLine,
	}
	scheme := resolveStyle(settings.Style)

	c.exec.Submit(func() {
		mm := builder.Build(text, scheme, DetectLexer(name, text), folds)
		c.sched.Post(func() {
			c.finishBuild(mm, text)
		})
	})
}

// finishBuild applies a completed build on the interactive thread. The
// gate is released on every path; the dirty check happens only after
// release, and an owed follow-up is posted for the next tick instead of
// recursing.
func (c *Coordinator) finishBuild(mm *Minimap, text string) {
	if !c.closed {
		c.ref.Set(mm)
		c.scroll = c.scroll.WithDocumentSize(mm.Width, mm.Height)
		c.persist(mm, text)
		c.requestRedraw()
	}

	c.gate.Release()
	if c.gate.IsDirty() {
		c.gate.ClearDirty()
		c.sched.Post(c.RequestRender)
	}
}

// persist saves the finished preview off-thread, best effort. A failed
// save only costs the warm-start preview.
func (c *Coordinator) persist(mm *Minimap, text string) {
	if c.store == nil || c.path == "" || mm.Height == 0 {
		return
	}
	store, path, hash := c.store, c.path, ContentHash(text)
	c.exec.Submit(func() {
		if err := store.Save(path, hash, mm); err != nil {
			log.Printf("[MINIMAP] preview save failed for %s: %v", path, err)
		}
	})
}

// RestoreFromStore loads a persisted preview matching the current
// document, if any, so the panel has something to show before the first
// live render lands. A miss or load error is silently ignored.
func (c *Coordinator) RestoreFromStore() {
	if c.store == nil || c.path == "" || !c.eligible() {
		return
	}
	store, path, hash := c.store, c.path, ContentHash(c.doc.Text())
	c.exec.Submit(func() {
		mm, err := store.Load(path, hash)
		if err != nil || mm == nil {
			return
		}
		c.sched.Post(func() {
			if c.closed || c.ref.Get() != nil {
				return
			}
			c.ref.Set(mm)
			c.scroll = c.scroll.WithDocumentSize(mm.Width, mm.Height)
			c.requestRedraw()
		})
	})
}

// SetViewport updates the editor viewport mapping (editor pixel space)
// and repaints. Scrolling never triggers a rebuild.
func (c *Coordinator) SetViewport(topPx, heightPx, contentPx float64) {
	c.scroll = c.scroll.WithViewport(topPx, heightPx, contentPx)
	c.requestRedraw()
}

// Scroll returns the current scroll geometry.
func (c *Coordinator) Scroll() ScrollState { return c.scroll }

// Evict drops the preview bitmap, as under memory pressure. The next
// access rebuilds.
func (c *Coordinator) Evict() { c.ref.Evict() }

// Preview returns the current preview bitmap, or nil when it was
// evicted or has not been built yet.
func (c *Coordinator) Preview() *Minimap { return c.ref.Get() }

// PreferredWidth is the panel width layout should reserve: zero whenever
// the panel is ineligible, so the panel collapses.
func (c *Coordinator) PreferredWidth() int {
	if !c.eligible() {
		return 0
	}
	return c.cfg.Settings().Width
}

// Present composites the panel onto dst: previous frame underneath, the
// visible window of the preview bitmap, the viewport indicator, then the
// selection overlay. If the bitmap is absent (evicted, or never built)
// the previous frame still shows and a rebuild is requested; presentation
// never blocks on a render.
func (c *Coordinator) Present(dst Surface) {
	if c.closed || !c.eligible() {
		return
	}

	panelW := c.scroll.PanelWidth
	if panelW <= 0 {
		panelW = c.cfg.Settings().Width
	}
	buf := newBufferSurface(panelW, c.panelH)
	if c.prev != nil {
		b := c.prev.img.Bounds()
		buf.Blit(c.prev.img, b, b.Min)
	}

	mm := c.ref.Get()
	if mm == nil {
		c.RequestRender()
	} else if mm.Height > 0 {
		visibleStart, _, drawHeight := c.scroll.VisibleWindow()
		buf.Blit(mm.Pix, image.Rect(0, visibleStart, mm.Width, visibleStart+drawHeight), image.Pt(0, 0))

		if vp := c.scroll.ViewportRect(); !vp.Empty() {
			buf.FillRect(vp, viewportFill)
		}

		c.painter.LineHeightPx = c.cfg.Settings().PixelsPerLine
		if c.painter.LineHeightPx <= 0 {
			c.painter.LineHeightPx = DefaultPixelsPerLine
		}
		c.painter.CharWidthPx = 1
		c.painter.Paint(buf, c.sel.Ranges(), c.doc.OffsetToVisual, panelW, visibleStart)
	}

	c.prev = buf
	dst.Blit(buf.img, buf.img.Bounds(), buf.img.Bounds().Min)
}

// eligible reports whether rendering should happen at all. Ineligibility
// is a guard, not an error: requests are dropped with no state change.
func (c *Coordinator) eligible() bool {
	if c.closed {
		return false
	}
	s := c.cfg.Settings()
	if s.Disabled {
		return false
	}
	if s.MaxFileSize > 0 && len(c.doc.Text()) > s.MaxFileSize {
		return false
	}
	if s.MinLineCount > 0 && c.doc.LineCount() < s.MinLineCount {
		return false
	}
	if s.MinWindowWidth > 0 && c.windowW > 0 && c.windowW < s.MinWindowWidth {
		return false
	}
	return true
}

func (c *Coordinator) requestRedraw() {
	if c.onRedraw != nil {
		c.onRedraw()
	}
}
