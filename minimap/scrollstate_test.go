// Copyright © 2025 Texelmap contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package minimap

import (
	"math"
	"testing"
)

func TestVisibleWindow(t *testing.T) {
	tests := []struct {
		name          string
		state         ScrollState
		wantStart     int
		wantEnd       int
		wantDrawHeight int
	}{
		{
			name:      "empty document draws nothing",
			state:     ScrollState{DocHeight: 0, VisibleHeight: 100},
			wantStart: 0, wantEnd: 0, wantDrawHeight: 0,
		},
		{
			name:      "whole bitmap fits un-scrolled",
			state:     ScrollState{DocHeight: 60, VisibleHeight: 100},
			wantStart: 0, wantEnd: 60, wantDrawHeight: 60,
		},
		{
			name:      "exact fit",
			state:     ScrollState{DocHeight: 100, VisibleHeight: 100},
			wantStart: 0, wantEnd: 100, wantDrawHeight: 100,
		},
		{
			name: "window centers on viewport center",
			// center = 400 + 50 = 450, start = 450 - 50 = 400
			state:     ScrollState{DocHeight: 1000, VisibleHeight: 100, ViewportStartY: 400, ViewportHeightY: 100},
			wantStart: 400, wantEnd: 500, wantDrawHeight: 100,
		},
		{
			name:      "clamped at top",
			state:     ScrollState{DocHeight: 1000, VisibleHeight: 100, ViewportStartY: 0, ViewportHeightY: 40},
			wantStart: 0, wantEnd: 100, wantDrawHeight: 100,
		},
		{
			name:      "clamped at bottom",
			state:     ScrollState{DocHeight: 1000, VisibleHeight: 100, ViewportStartY: 960, ViewportHeightY: 40},
			wantStart: 900, wantEnd: 1000, wantDrawHeight: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, draw := tt.state.VisibleWindow()
			if start != tt.wantStart || end != tt.wantEnd || draw != tt.wantDrawHeight {
				t.Errorf("VisibleWindow() = (%d, %d, %d), want (%d, %d, %d)",
					start, end, draw, tt.wantStart, tt.wantEnd, tt.wantDrawHeight)
			}
		})
	}
}

func TestWithViewportScaling(t *testing.T) {
	s := ScrollState{}.WithDocumentSize(120, 500)

	// Editor content is 5000px tall, so the scale factor is 0.1.
	s = s.WithViewport(1000, 800, 5000)
	if s.ViewportStartY != 100 {
		t.Errorf("ViewportStartY = %d, want 100", s.ViewportStartY)
	}
	if s.ViewportHeightY != 80 {
		t.Errorf("ViewportHeightY = %d, want 80", s.ViewportHeightY)
	}
}

func TestWithViewportClampsBadInput(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name                string
		top, height, content float64
	}{
		{"negative top", -50, 100, 1000},
		{"NaN top", nan, 100, 1000},
		{"NaN everything", nan, nan, nan},
		{"zero content", 10, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ScrollState{}.WithDocumentSize(120, 500).WithViewport(tt.top, tt.height, tt.content)
			if s.ViewportStartY < 0 || s.ViewportHeightY < 0 {
				t.Errorf("negative viewport after clamp: start=%d height=%d", s.ViewportStartY, s.ViewportHeightY)
			}
		})
	}
}

func TestWithViewportNeverExceedsBitmap(t *testing.T) {
	s := ScrollState{}.WithDocumentSize(120, 100).WithViewport(900, 500, 1000)
	if s.ViewportStartY+s.ViewportHeightY > s.DocHeight {
		t.Errorf("viewport [%d, %d) exceeds bitmap height %d",
			s.ViewportStartY, s.ViewportStartY+s.ViewportHeightY, s.DocHeight)
	}
}

func TestWithDocumentSizeClampsNegative(t *testing.T) {
	s := ScrollState{}.WithDocumentSize(-5, -10)
	if s.DocWidth != 0 || s.DocHeight != 0 {
		t.Errorf("negative sizes should clamp to 0, got %dx%d", s.DocWidth, s.DocHeight)
	}
}

func TestPanelYToLine(t *testing.T) {
	s := ScrollState{DocHeight: 1000, VisibleHeight: 100, ViewportStartY: 400, ViewportHeightY: 100}
	// VisibleWindow starts at 400; panel y=10 is bitmap y=410, line 205 at 2px per line.
	if got := s.PanelYToLine(10, 2); got != 205 {
		t.Errorf("PanelYToLine(10, 2) = %d, want 205", got)
	}
	// Clamped to the last pixel row.
	if got := s.PanelYToDocY(10000); got != 999 {
		t.Errorf("PanelYToDocY(10000) = %d, want 999", got)
	}
}
