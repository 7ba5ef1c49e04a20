// Copyright © 2025 Texelmap contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texelmap/main.go
// Summary: Terminal file viewer demonstrating the minimap panel.
// Usage: Run `texelmap FILE` to view a file with a live minimap.

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"

	"github.com/framegrace/texelmap/config"
	"github.com/framegrace/texelmap/minimap"
	"github.com/framegrace/texelmap/store"
	termui "github.com/framegrace/texelmap/term"
)

// panelCols is the minimap panel width in terminal cells: one thumb
// column plus the preview.
const panelCols = 13

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet("texelmap", flag.ContinueOnError)
	configPath := fs.String("config", "", "Config file path (default: user config dir)")
	noStore := fs.Bool("no-store", false, "Disable the preview cache database")
	logPath := fs.String("log", "", "File to append debug logs")

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: texelmap FILE")
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("stdout is not a terminal")
	}

	if *logPath != "" {
		logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer logFile.Close()
		log.SetOutput(logFile)
	} else {
		log.SetOutput(os.Stderr)
	}

	path, err := filepath.Abs(fs.Arg(0))
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	if *configPath == "" {
		*configPath, err = config.DefaultPath()
		if err != nil {
			return fmt.Errorf("resolve config path: %w", err)
		}
	}
	cfg, err := config.Open(*configPath)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer cfg.Close()
	if err := cfg.Watch(); err != nil {
		log.Printf("[TEXELMAP] config watch unavailable: %v", err)
	}

	var previews *store.PreviewStore
	if !*noStore {
		cacheDir, err := os.UserCacheDir()
		if err == nil {
			previews, err = store.Open(filepath.Join(cacheDir, "texelmap", "previews.db"))
			if err != nil {
				log.Printf("[TEXELMAP] preview store unavailable: %v", err)
				previews = nil
			}
		}
	}
	if previews != nil {
		defer previews.Close()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()

	v := newViewer(screen, path, string(raw), cfg, previews)
	defer v.close()
	v.loop()
	return nil
}

// viewer owns the screen, the document and all minimap collaborators.
type viewer struct {
	screen tcell.Screen
	doc    *fileDocument
	cfg    *config.Store
	bus    *minimap.Dispatcher
	sched  *termui.Scheduler
	coord  *minimap.Coordinator
	panel  *termui.Panel

	topLine int
	cols    int
	rows    int
}

func newViewer(screen tcell.Screen, path, text string, cfg *config.Store, previews *store.PreviewStore) *viewer {
	v := &viewer{
		screen: screen,
		doc:    newFileDocument(path, text),
		cfg:    cfg,
		bus:    minimap.NewDispatcher(),
		sched:  termui.NewScheduler(),
		panel:  termui.NewPanel(panelCols, 0),
	}

	var ps minimap.PreviewStore
	if previews != nil {
		ps = previews
	}
	v.coord = minimap.NewCoordinator(
		v.doc, noFolds{}, noSelection{}, cfg,
		minimap.GoExecutor{}, v.sched, v.bus,
		minimap.CoordinatorOptions{
			Store:    ps,
			Path:     path,
			OnRedraw: func() { v.draw() },
		})

	cfg.OnChange(func() {
		v.sched.Post(func() {
			v.bus.Broadcast(minimap.Event{Type: minimap.EventConfigChanged})
		})
	})

	v.cols, v.rows = screen.Size()
	v.broadcastResize()
	v.coord.RestoreFromStore()
	v.bus.Broadcast(minimap.Event{Type: minimap.EventDocumentChanged})
	return v
}

func (v *viewer) close() {
	v.coord.Close()
}

func (v *viewer) loop() {
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	v.draw()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !v.handleEvent(ev) {
				return
			}
		case <-v.sched.Wake():
			v.sched.Drain()
		}
	}
}

func (v *viewer) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		v.cols, v.rows = ev.Size()
		v.screen.Sync()
		v.broadcastResize()
		v.draw()
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC,
			ev.Rune() == 'q':
			return false
		case ev.Key() == tcell.KeyUp, ev.Rune() == 'k':
			v.scrollTo(v.topLine - 1)
		case ev.Key() == tcell.KeyDown, ev.Rune() == 'j':
			v.scrollTo(v.topLine + 1)
		case ev.Key() == tcell.KeyPgUp:
			v.scrollTo(v.topLine - v.textRows())
		case ev.Key() == tcell.KeyPgDn, ev.Rune() == ' ':
			v.scrollTo(v.topLine + v.textRows())
		case ev.Key() == tcell.KeyHome, ev.Rune() == 'g':
			v.scrollTo(0)
		case ev.Key() == tcell.KeyEnd, ev.Rune() == 'G':
			v.scrollTo(v.doc.LineCount())
		}
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 == 0 {
			return true
		}
		x, y := ev.Position()
		if x >= v.cols-panelCols {
			v.jumpToPanelY(y)
		}
	}
	return true
}

// jumpToPanelY centers the view on the document line under a minimap
// click.
func (v *viewer) jumpToPanelY(cellY int) {
	ppl := v.cfg.Settings().PixelsPerLine
	if ppl <= 0 {
		ppl = minimap.DefaultPixelsPerLine
	}
	line := v.coord.Scroll().PanelYToLine(cellY*2, ppl)
	v.scrollTo(line - v.textRows()/2)
}

func (v *viewer) scrollTo(line int) {
	maxTop := v.doc.LineCount() - v.textRows()
	if line > maxTop {
		line = maxTop
	}
	if line < 0 {
		line = 0
	}
	if line == v.topLine {
		return
	}
	v.topLine = line
	v.updateViewport()
	v.draw()
}

func (v *viewer) textRows() int {
	if v.rows < 1 {
		return 1
	}
	return v.rows
}

func (v *viewer) broadcastResize() {
	v.panel.Resize(panelCols, v.rows)
	v.bus.Broadcast(minimap.Event{
		Type: minimap.EventPanelResized,
		Payload: minimap.ResizePayload{
			PanelWidth:  v.cfg.Settings().Width,
			PanelHeight: v.panel.PixelHeight(),
			// Cell width approximated at 10px for the eligibility guard.
			WindowWidth: v.cols * 10,
		},
	})
	v.updateViewport()
}

func (v *viewer) updateViewport() {
	ppl := float64(v.cfg.Settings().PixelsPerLine)
	if ppl <= 0 {
		ppl = minimap.DefaultPixelsPerLine
	}
	v.coord.SetViewport(
		float64(v.topLine)*ppl,
		float64(v.textRows())*ppl,
		float64(v.doc.LineCount())*ppl,
	)
}

func (v *viewer) draw() {
	v.screen.Clear()
	textCols := v.cols - panelCols - 1
	if textCols < 0 {
		textCols = 0
	}

	lines := v.doc.Lines()
	for row := 0; row < v.rows; row++ {
		idx := v.topLine + row
		if idx >= len(lines) {
			break
		}
		drawLine(v.screen, 0, row, textCols, lines[idx])
	}

	// Divider between text and panel.
	for row := 0; row < v.rows; row++ {
		v.screen.SetContent(textCols, row, '┃', nil,
			tcell.StyleDefault.Foreground(tcell.ColorGray))
	}

	v.panel.Render(v.coord.Preview(), v.coord.Scroll())
	x0 := v.cols - panelCols
	for y := 0; y < v.rows; y++ {
		for x := 0; x < panelCols; x++ {
			c := v.panel.Cell(x, y)
			v.screen.SetContent(x0+x, y, c.Ch, nil, c.Style)
		}
	}
	v.screen.Show()
}

func drawLine(screen tcell.Screen, x, y, maxCols int, line string) {
	col := 0
	for _, r := range line {
		if col >= maxCols {
			break
		}
		if r == '\t' {
			col += 4 - col%4
			continue
		}
		screen.SetContent(x+col, y, r, nil, tcell.StyleDefault)
		col++
	}
}

// fileDocument is a read-only DocumentSource over file contents.
type fileDocument struct {
	path  string
	text  string
	lines []string
}

func newFileDocument(path, text string) *fileDocument {
	return &fileDocument{
		path:  path,
		text:  text,
		lines: strings.Split(text, "\n"),
	}
}

func (d *fileDocument) Text() string    { return d.text }
func (d *fileDocument) Name() string    { return filepath.Base(d.path) }
func (d *fileDocument) LineCount() int  { return len(d.lines) }
func (d *fileDocument) Lines() []string { return d.lines }

func (d *fileDocument) OffsetToVisual(offset int) (line, col int) {
	if offset < 0 {
		return 0, 0
	}
	for i, l := range d.lines {
		if offset <= len(l) {
			return i, offset
		}
		offset -= len(l) + 1
	}
	last := len(d.lines) - 1
	return last, len(d.lines[last])
}

// noFolds is a FoldSource for hosts without code folding.
type noFolds struct{}

func (noFolds) FoldCount() int                  { return 0 }
func (noFolds) FoldRanges() []minimap.FoldRange { return nil }

// noSelection is a SelectionSource for read-only viewing.
type noSelection struct{}

func (noSelection) Ranges() []minimap.SelectionRange { return nil }
