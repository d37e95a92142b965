//go:build fyne

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// These tests exercise the Fyne menu adapter. They are gated behind the
// "fyne" build tag so headless CI does not need Fyne. To run locally:
//
//	go test -tags fyne ./internal/ui
package ui

import (
	"testing"

	"fyne.io/fyne/v2"

	"scriptformatter/internal/rewrite"
)

func TestFyneAddonMenu_PublishesOneItem(t *testing.T) {
	s := NewSession(Options{})
	var got *fyne.Menu
	host := &fyneAddonUI{session: s, publish: func(m *fyne.Menu) { got = m }}
	if err := s.RegisterMenu(host); err != nil {
		t.Fatalf("RegisterMenu: %v", err)
	}
	if got == nil {
		t.Fatal("menu was not published")
	}
	if got.Label != addonMenuTitle {
		t.Fatalf("menu label = %q", got.Label)
	}
	if len(got.Items) != 1 || got.Items[0].Label != "Update Formatting" {
		t.Fatalf("unexpected items: %+v", got.Items)
	}
}

func TestFyneAddonMenu_ItemReformatsSession(t *testing.T) {
	s := NewSession(Options{})
	if err := s.Edit("Title\nINT. HOUSE - DAY\n\nShe waits."); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	var got *fyne.Menu
	var calls int
	var stats rewrite.Stats
	host := &fyneAddonUI{
		session: s,
		publish: func(m *fyne.Menu) { got = m },
		done: func(name string, st rewrite.Stats, err error) {
			calls++
			stats = st
			if err != nil {
				t.Errorf("%s: %v", name, err)
			}
		},
	}
	if err := s.RegisterMenu(host); err != nil {
		t.Fatalf("RegisterMenu: %v", err)
	}
	got.Items[0].Action()
	if calls != 1 {
		t.Fatalf("done called %d times", calls)
	}
	if stats.Styled != 2 || stats.Removed != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if want := "Title\nINT. HOUSE - DAY\n\nShe waits.\n"; s.Text() != want {
		t.Fatalf("text = %q, want %q", s.Text(), want)
	}
}
