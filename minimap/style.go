// Copyright © 2025 Texelmap contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: minimap/style.go
// Summary: Color scheme resolution and content hashing helpers.

package minimap

import (
	"crypto/sha1"
	"encoding/hex"
	"image/color"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
)

// defaultStyleName matches the rest of the family of projects.
const defaultStyleName = "catppuccin-mocha"

// viewportFill is the semi-transparent "you are here" overlay.
var viewportFill = color.NRGBA{R: 0x50, G: 0x50, B: 0x50, A: 0x50}

// resolveStyle maps a configured style name to a chroma style, falling
// back to the project default and then chroma's own fallback.
func resolveStyle(name string) *chroma.Style {
	if name == "" {
		name = defaultStyleName
	}
	return styles.Get(name)
}

// ContentHash fingerprints document text for the preview store. A stored
// preview is only served back when the hash still matches, so stale
// entries degrade to plain misses.
func ContentHash(text string) string {
	sum := sha1.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}
