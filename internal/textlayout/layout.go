/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

// Fixed-pitch measurement and line breaking for the plain-text and PDF renderers.
// Screenplays are set in 12pt Courier; basicfont's 7x13 face has the same 7 unit
// advance, so one pixel of that face measures one point of the page.

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Wrapper breaks paragraph text into lines that fit a width in points.
type Wrapper struct {
	Face font.Face
}

// NewWrapper returns a Wrapper measuring with the Courier-compatible basic face.
func NewWrapper() *Wrapper { return &Wrapper{Face: basicfont.Face7x13} }

// Measure returns the advance width of s in points.
func (w *Wrapper) Measure(s string) float64 {
	d := &font.Drawer{Face: w.face()}
	return float64(d.MeasureString(s)) / 64
}

// Columns converts a width in points into whole character cells.
func Columns(widthPt float64) int {
	if widthPt <= 0 {
		return 0
	}
	return int(widthPt / CharWidth)
}

// Wrap breaks text on spaces so no line is wider than maxWidth points. Words wider
// than a whole line are split by character. An empty text yields one empty line.
func (w *Wrapper) Wrap(text string, maxWidth float64) []string {
	if text == "" || maxWidth <= 0 {
		return []string{text}
	}
	var lines []string
	var cur strings.Builder
	curW := 0.0
	started := false
	space := w.Measure(" ")
	flush := func() {
		lines = append(lines, cur.String())
		cur.Reset()
		curW = 0
		started = false
	}
	for _, word := range strings.Split(text, " ") {
		ww := w.Measure(word)
		if ww > maxWidth {
			if started {
				flush()
			}
			for ww > maxWidth {
				cut := w.fit(word, maxWidth)
				if cut == 0 {
					_, cut = utf8.DecodeRuneInString(word)
				}
				lines = append(lines, word[:cut])
				word = word[cut:]
				ww = w.Measure(word)
			}
			if word == "" {
				continue
			}
		} else if started && curW+space+ww > maxWidth {
			flush()
		}
		if started {
			cur.WriteByte(' ')
			curW += space
		}
		cur.WriteString(word)
		curW += ww
		started = true
	}
	if started || len(lines) == 0 {
		flush()
	}
	return lines
}

// fit returns the byte length of the longest rune prefix of s that fits in width.
func (w *Wrapper) fit(s string, width float64) int {
	n := 0
	used := 0.0
	for i, r := range s {
		rw := w.Measure(string(r))
		if used+rw > width {
			return n
		}
		used += rw
		n = i + len(string(r))
	}
	return n
}

func (w *Wrapper) face() font.Face {
	if w == nil || w.Face == nil {
		return basicfont.Face7x13
	}
	return w.Face
}
