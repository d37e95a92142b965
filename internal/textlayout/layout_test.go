/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"strings"
	"testing"
)

func TestMeasureMatchesCharWidth(t *testing.T) {
	w := NewWrapper()
	if got := w.Measure("ABCD"); got != 4*CharWidth {
		t.Fatalf("expected %d, got %v", 4*CharWidth, got)
	}
	if Columns(468) != 66 {
		t.Fatalf("unexpected columns for 6.5in: %d", Columns(468))
	}
}

func TestWrapBreaksOnSpaces(t *testing.T) {
	w := NewWrapper()
	lines := w.Wrap("He walks to the door and stops.", 12*CharWidth)
	for _, l := range lines {
		if len(l) > 12 {
			t.Fatalf("line too wide: %q", l)
		}
	}
	if strings.Join(lines, " ") != "He walks to the door and stops." {
		t.Fatalf("wrap lost text: %q", lines)
	}
}

func TestWrapSplitsOverlongWords(t *testing.T) {
	w := NewWrapper()
	lines := w.Wrap("AAAAAAAAAA B", 5*CharWidth)
	want := []string{"AAAAA", "AAAAA", "B"}
	if len(lines) != len(want) {
		t.Fatalf("got %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("got %q, want %q", lines, want)
		}
	}
}

func TestWrapEmpty(t *testing.T) {
	lines := NewWrapper().Wrap("", 100)
	if len(lines) != 1 || lines[0] != "" {
		t.Fatalf("expected one empty line, got %q", lines)
	}
}
