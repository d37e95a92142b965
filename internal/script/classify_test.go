/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import "testing"

func TestClassifyExamples(t *testing.T) {
	cases := []struct {
		in   string
		want ParagraphType
	}{
		{"", Blank},
		{"INT. KITCHEN", Location},
		{"ext. beach - night", Location},
		{"Ext BACK ALLEY", Location},
		{"INTERIOR", Dialog},
		{"# Act One", Heading2},
		{"## Chapter One", Heading3},
		{"### Scene", Heading4},
		{"#### Beat", Heading5},
		{"##### Note", Heading6},
		{"###### too deep", Action},
		{"#NOSPACE", Dialog},
		{"(quietly)", Parenthetical},
		{"-JOHN-", Character},
		{">TITLE<", Center},
		{"He says:", Instruction},
		{"CUT TO:", Instruction},
		{"He walks away.", Action},
		{"WHERE ARE YOU GOING?", Dialog},
		{"[SFX: door creaks] He enters.", Action},
	}
	for _, c := range cases {
		if got := Classify(c.in); got != c.want {
			t.Fatalf("Classify(%q) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestClassifyPrecedence(t *testing.T) {
	// Location wins over Instruction even though the line ends with ':'.
	if got := Classify("INT. HALL:"); got != Location {
		t.Fatalf("expected location, got %s", got)
	}
	// Parenthetical wins over Action even though it has lowercase letters.
	if got := Classify("(beat)"); got != Parenthetical {
		t.Fatalf("expected paren, got %s", got)
	}
	// A heading marker beats the Center rule.
	if got := Classify("# >X<"); got != Heading2 {
		t.Fatalf("expected h2, got %s", got)
	}
}

func TestClassifyFallbackIsDialog(t *testing.T) {
	for _, in := range []string{"HELLO.", "1234", "WHAT?!", "  ", "É", "ÜBER ALLES"} {
		if got := Classify(in); got != Dialog {
			t.Fatalf("Classify(%q) = %s, want dialog", in, got)
		}
	}
}

func TestClassifyDeterministic(t *testing.T) {
	in := "She smiles:"
	first := Classify(in)
	for i := 0; i < 10; i++ {
		if got := Classify(in); got != first {
			t.Fatalf("classification changed between calls: %s vs %s", first, got)
		}
	}
}

func TestClassifyText(t *testing.T) {
	input := "TITLE PAGE\r\n\r\nINT. KITCHEN - DAY\n-ANNA-\n(softly)\nHello there.\n"
	lines := ClassifyText(input)
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d", len(lines))
	}
	want := []ParagraphType{Dialog, Blank, Location, Character, Parenthetical, Action}
	for i, l := range lines {
		if l.Type != want[i] {
			t.Fatalf("line %d (%q): got %s want %s", l.LineNo, l.Text, l.Type, want[i])
		}
		if l.LineNo != i+1 {
			t.Fatalf("unexpected line number %d at %d", l.LineNo, i)
		}
	}
	counts := Counts(lines)
	if counts[Dialog] != 1 || counts[Blank] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestTypeNamesRoundTrip(t *testing.T) {
	for _, typ := range AllTypes() {
		got, ok := ParseType(typ.String())
		if !ok || got != typ {
			t.Fatalf("ParseType(%q) = %v, %v", typ.String(), got, ok)
		}
	}
	if _, ok := ParseType("nope"); ok {
		t.Fatalf("unexpected parse of unknown name")
	}
	if !Location.EndsIntro() || !Heading2.EndsIntro() || Heading3.EndsIntro() {
		t.Fatalf("unexpected intro triggers")
	}
}
