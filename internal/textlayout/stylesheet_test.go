/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"testing"

	"scriptformatter/internal/document"
	"scriptformatter/internal/script"
)

func TestBuiltinStylesCoverEveryType(t *testing.T) {
	for _, typ := range script.AllTypes() {
		st, ok := GetStyle(typ)
		if !ok {
			t.Fatalf("missing builtin style for %s", typ)
		}
		if typ == script.Blank {
			if st.Template != nil || st.AddBlankLine {
				t.Fatalf("blank must have no template and no blank line: %+v", st)
			}
			continue
		}
		if st.Template == nil {
			t.Fatalf("%s has no template", typ)
		}
	}
}

func TestBuiltinTemplateValues(t *testing.T) {
	cases := []struct {
		typ         script.ParagraphType
		left, right float64
		addBlank    bool
	}{
		{script.Location, 0, 0, true},
		{script.Parenthetical, 144, 72, false},
		{script.Character, 180, 108, false},
		{script.Center, 0, 0, true},
		{script.Instruction, 0, 0, true},
		{script.Action, 36, 0, true},
		{script.Dialog, 108, 36, true},
	}
	for _, c := range cases {
		st, _ := GetStyle(c.typ)
		if *st.Template.LeftIndent != c.left || *st.Template.RightIndent != c.right {
			t.Fatalf("%s indents = %v/%v, want %v/%v", c.typ, *st.Template.LeftIndent, *st.Template.RightIndent, c.left, c.right)
		}
		if st.AddBlankLine != c.addBlank {
			t.Fatalf("%s addBlankLine = %v", c.typ, st.AddBlankLine)
		}
		if *st.Template.Color != ColorDefault || *st.Template.Heading != document.HeadingNormal {
			t.Fatalf("%s should reset heading and color", c.typ)
		}
	}
	loc, _ := GetStyle(script.Location)
	if loc.Template.Bold == nil || !*loc.Template.Bold {
		t.Fatalf("location must be bold")
	}
	center, _ := GetStyle(script.Center)
	if *center.Template.Alignment != document.AlignCenter {
		t.Fatalf("center alignment wrong")
	}
	instr, _ := GetStyle(script.Instruction)
	if *instr.Template.Alignment != document.AlignRight {
		t.Fatalf("instruction alignment wrong")
	}
	h4, _ := GetStyle(script.Heading4)
	if *h4.Template.Heading != document.Heading4 || h4.Template.LeftIndent != nil || h4.Template.Color != nil {
		t.Fatalf("heading template should only set the heading: %+v", h4.Template)
	}
}

func TestGetStyleReturnsCopy(t *testing.T) {
	st, _ := GetStyle(script.Dialog)
	*st.Template.LeftIndent = 1
	again, _ := GetStyle(script.Dialog)
	if *again.Template.LeftIndent != 108 {
		t.Fatalf("builtin table was mutated through a returned style")
	}
}

func TestStyleSheet_HouseOverridesMerge(t *testing.T) {
	hs, err := ParseHouseStyle([]byte(`
name: Studio
styles:
  dialog:
    left_indent: 100
    add_blank_line: false
  location:
    color: "#FF00FF"
    alignment: center
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	base := NewStyleSheet()
	ss, err := hs.Apply(base)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if ss.Name != "Studio" {
		t.Fatalf("name not applied: %q", ss.Name)
	}
	dlg, _ := ss.Resolve(script.Dialog)
	if *dlg.Template.LeftIndent != 100 || *dlg.Template.RightIndent != 36 || dlg.AddBlankLine {
		t.Fatalf("dialog override not merged: %+v", dlg)
	}
	loc, _ := ss.Resolve(script.Location)
	if *loc.Template.Color != "#ff00ff" || *loc.Template.Alignment != document.AlignCenter || !*loc.Template.Bold {
		t.Fatalf("location override not merged: %+v", loc.Template)
	}
	// The original sheet is untouched.
	orig, _ := base.Resolve(script.Dialog)
	if *orig.Template.LeftIndent != 108 {
		t.Fatalf("WithHouse mutated the source sheet")
	}
}

func TestParseHouseStyleRejectsBadInput(t *testing.T) {
	bad := []string{
		"styles:\n  monologue:\n    bold: true\n",
		"styles:\n  blank:\n    bold: true\n",
		"styles:\n  dialog:\n    color: red\n",
		"styles:\n  dialog:\n    heading: h9\n",
		"styles:\n  dialog:\n    left_indent: -3\n",
	}
	for _, in := range bad {
		if _, err := ParseHouseStyle([]byte(in)); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestStylesDeterministicOrder(t *testing.T) {
	styles := NewStyleSheet().Styles()
	if len(styles) != len(script.AllTypes()) {
		t.Fatalf("expected %d styles, got %d", len(script.AllTypes()), len(styles))
	}
	if styles[0].Type != script.Blank || styles[len(styles)-1].Type != script.Dialog {
		t.Fatalf("unexpected order: first=%s last=%s", styles[0].Type, styles[len(styles)-1].Type)
	}
}
