// Copyright © 2025 Texelmap contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package minimap

import (
	"strings"
	"testing"
)

// fakeDoc is an immutable document for coordinator tests.
type fakeDoc struct {
	text string
	name string
}

func (d *fakeDoc) Text() string   { return d.text }
func (d *fakeDoc) Name() string   { return d.name }
func (d *fakeDoc) LineCount() int { return strings.Count(d.text, "\n") + 1 }

func (d *fakeDoc) OffsetToVisual(offset int) (int, int) {
	line, col := 0, 0
	for i, r := range d.text {
		if i >= offset {
			break
		}
		if r == '\n' {
			line++
			col = 0
		} else {
			col++
		}
	}
	return line, col
}

type fakeFolds struct {
	ranges []FoldRange
}

func (f *fakeFolds) FoldCount() int          { return len(f.ranges) }
func (f *fakeFolds) FoldRanges() []FoldRange { return f.ranges }

type fakeSelection struct {
	ranges []SelectionRange
}

func (s *fakeSelection) Ranges() []SelectionRange { return s.ranges }

type fakeConfig struct {
	settings Settings
}

func (c *fakeConfig) Settings() Settings { return c.settings }

// manualExec queues tasks until the test drains them, standing in for the
// background pool.
type manualExec struct {
	tasks     []func()
	submitted int
}

func (e *manualExec) Submit(task func()) {
	e.tasks = append(e.tasks, task)
	e.submitted++
}

func (e *manualExec) drain() {
	for len(e.tasks) > 0 {
		task := e.tasks[0]
		e.tasks = e.tasks[1:]
		task()
	}
}

// manualSched queues interactive-thread callbacks the same way.
type manualSched struct {
	queue []func()
}

func (s *manualSched) Post(fn func()) { s.queue = append(s.queue, fn) }

func (s *manualSched) drain() {
	for len(s.queue) > 0 {
		fn := s.queue[0]
		s.queue = s.queue[1:]
		fn()
	}
}

func testSettings() Settings {
	return Settings{Width: 60, PixelsPerLine: 2}
}

func newTestCoordinator(settings Settings) (*Coordinator, *manualExec, *manualSched, *Dispatcher) {
	exec := &manualExec{}
	sched := &manualSched{}
	bus := NewDispatcher()
	doc := &fakeDoc{text: "package main\n\nfunc main() {}\n", name: "main.go"}
	c := NewCoordinator(doc, &fakeFolds{}, &fakeSelection{}, &fakeConfig{settings: settings}, exec, sched, bus, CoordinatorOptions{})
	return c, exec, sched, bus
}

// pump runs background tasks and interactive callbacks until both queues
// are empty, like the two threads making progress.
func pump(exec *manualExec, sched *manualSched) {
	for len(exec.tasks) > 0 || len(sched.queue) > 0 {
		exec.drain()
		sched.drain()
	}
}

func TestCoordinatorRendersOnDocumentChange(t *testing.T) {
	c, exec, sched, bus := newTestCoordinator(testSettings())
	defer c.Close()

	bus.Broadcast(Event{Type: EventDocumentChanged})
	if exec.submitted != 1 {
		t.Fatalf("submitted = %d, want 1", exec.submitted)
	}
	pump(exec, sched)

	mm := c.ref.Get()
	if mm == nil {
		t.Fatal("no preview after build completion")
	}
	if c.scroll.DocHeight != mm.Height || c.scroll.DocWidth != mm.Width {
		t.Errorf("scroll state %dx%d not updated to bitmap %dx%d",
			c.scroll.DocWidth, c.scroll.DocHeight, mm.Width, mm.Height)
	}
}

func TestCoordinatorCoalescesInvalidations(t *testing.T) {
	for _, n := range []int{0, 1, 100} {
		c, exec, sched, bus := newTestCoordinator(testSettings())

		bus.Broadcast(Event{Type: EventDocumentChanged})
		for i := 0; i < n; i++ {
			bus.Broadcast(Event{Type: EventDocumentChanged})
		}
		// Only the first invalidation started a build; the rest folded
		// into the dirty flag.
		if exec.submitted != 1 {
			t.Fatalf("n=%d: submitted = %d before completion, want 1", n, exec.submitted)
		}

		pump(exec, sched)

		want := 1
		if n > 0 {
			want = 2 // exactly one follow-up, however many arrived
		}
		if exec.submitted != want {
			t.Errorf("n=%d: total builds = %d, want %d", n, exec.submitted, want)
		}
		c.Close()
	}
}

func TestCoordinatorDisabledGuard(t *testing.T) {
	settings := testSettings()
	settings.Disabled = true
	c, exec, _, bus := newTestCoordinator(settings)
	defer c.Close()

	bus.Broadcast(Event{Type: EventDocumentChanged})
	bus.Broadcast(Event{Type: EventPanelResized, Payload: ResizePayload{PanelWidth: 60, PanelHeight: 40}})

	if exec.submitted != 0 {
		t.Errorf("disabled panel scheduled %d builds, want 0", exec.submitted)
	}
	if c.PreferredWidth() != 0 {
		t.Errorf("disabled panel PreferredWidth = %d, want 0", c.PreferredWidth())
	}
}

func TestCoordinatorIneligibilityGuards(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		resize *ResizePayload
	}{
		{"file too large", func(s *Settings) { s.MaxFileSize = 4 }, nil},
		{"too few lines", func(s *Settings) { s.MinLineCount = 500 }, nil},
		{
			"window too narrow",
			func(s *Settings) { s.MinWindowWidth = 200 },
			&ResizePayload{PanelWidth: 60, PanelHeight: 40, WindowWidth: 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := testSettings()
			tt.mutate(&settings)
			c, exec, sched, bus := newTestCoordinator(settings)
			defer c.Close()

			if tt.resize != nil {
				bus.Broadcast(Event{Type: EventPanelResized, Payload: *tt.resize})
				pump(exec, sched)
				exec.submitted = 0
			}
			bus.Broadcast(Event{Type: EventDocumentChanged})
			if exec.submitted != 0 {
				t.Errorf("ineligible panel scheduled %d builds", exec.submitted)
			}
		})
	}
}

func TestCoordinatorSelectionChangeOnlyRepaints(t *testing.T) {
	c, exec, sched, bus := newTestCoordinator(testSettings())
	defer c.Close()

	redraws := 0
	c.onRedraw = func() { redraws++ }

	bus.Broadcast(Event{Type: EventDocumentChanged})
	pump(exec, sched)
	builds := exec.submitted

	bus.Broadcast(Event{Type: EventSelectionChanged})
	if exec.submitted != builds {
		t.Error("selection change must not rebuild the bitmap")
	}
	if redraws < 2 {
		t.Errorf("redraws = %d, want at least 2 (build completion + selection)", redraws)
	}
}

func TestCoordinatorEvictionRebuildsOnAccess(t *testing.T) {
	c, exec, sched, bus := newTestCoordinator(testSettings())
	defer c.Close()

	bus.Broadcast(Event{Type: EventDocumentChanged})
	pump(exec, sched)
	if c.ref.Get() == nil {
		t.Fatal("expected a preview")
	}
	builds := exec.submitted

	c.Evict()
	if c.ref.Get() != nil {
		t.Fatal("preview should be absent after eviction")
	}
	// The eviction hook posts a lazy rebuild onto the scheduler.
	pump(exec, sched)
	if exec.submitted != builds+1 {
		t.Errorf("builds after eviction = %d, want %d", exec.submitted, builds+1)
	}
	if c.ref.Get() == nil {
		t.Fatal("preview should be rebuilt after eviction")
	}
}

func TestCoordinatorPresentUsesPreviewAndOverlay(t *testing.T) {
	exec := &manualExec{}
	sched := &manualSched{}
	bus := NewDispatcher()
	doc := &fakeDoc{text: "package main\n\nfunc main() {}\n", name: "main.go"}
	sel := &fakeSelection{ranges: []SelectionRange{{Start: 0, End: 7}}}
	c := NewCoordinator(doc, &fakeFolds{}, sel, &fakeConfig{settings: testSettings()}, exec, sched, bus, CoordinatorOptions{})
	defer c.Close()

	bus.Broadcast(Event{Type: EventPanelResized, Payload: ResizePayload{PanelWidth: 60, PanelHeight: 40}})
	pump(exec, sched)

	dst := newBufferSurface(60, 40)
	c.Present(dst)

	if c.prev == nil {
		t.Fatal("Present should retain the composited frame")
	}
	// The first text row carries the selection overlay blended over the
	// glyph pixels; it must differ from the bitmap row as built.
	mm := c.ref.Get()
	if mm == nil {
		t.Fatal("expected a preview")
	}
	same := true
	for x := 0; x < 7 && same; x++ {
		for y := 0; y < 2 && same; y++ {
			if dst.img.RGBAAt(x, y) != mm.Pix.RGBAAt(x, y) {
				same = false
			}
		}
	}
	if same {
		t.Error("selection overlay not visible in composited output")
	}
}

func TestCoordinatorPresentAbsentPreviewRequestsRebuild(t *testing.T) {
	c, exec, sched, bus := newTestCoordinator(testSettings())
	defer c.Close()

	bus.Broadcast(Event{Type: EventPanelResized, Payload: ResizePayload{PanelWidth: 60, PanelHeight: 40}})
	pump(exec, sched)
	c.Evict()
	sched.queue = nil // discard the eviction hook's own rebuild
	builds := exec.submitted

	dst := newBufferSurface(60, 40)
	c.Present(dst) // must not block, must request a rebuild

	if exec.submitted != builds+1 {
		t.Errorf("Present on absent preview scheduled %d builds, want 1", exec.submitted-builds)
	}
}

func TestCoordinatorCloseIsIdempotent(t *testing.T) {
	c, exec, _, bus := newTestCoordinator(testSettings())

	c.Close()
	c.Close()

	bus.Broadcast(Event{Type: EventDocumentChanged})
	if exec.submitted != 0 {
		t.Errorf("closed coordinator scheduled %d builds", exec.submitted)
	}
}

func TestCoordinatorStaleBuildStillApplies(t *testing.T) {
	c, exec, sched, bus := newTestCoordinator(testSettings())
	defer c.Close()

	bus.Broadcast(Event{Type: EventDocumentChanged})
	// A fresh invalidation arrives while the build runs.
	bus.Broadcast(Event{Type: EventDocumentChanged})
	exec.drain() // build 1 completes, result posted
	sched.drain()

	// Last-writer-wins: the stale result was applied and the owed
	// follow-up was submitted.
	if c.ref.Get() == nil {
		t.Fatal("stale build result should still be applied")
	}
	if exec.submitted != 2 {
		t.Errorf("follow-up builds = %d, want exactly 1 extra", exec.submitted-1)
	}
}
