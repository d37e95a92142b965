/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package document

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestMemDocumentInsertRemoveShiftsIndexes(t *testing.T) {
	d := FromLines("a", "b", "c")
	if _, err := d.InsertParagraph(1, "x"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if got := strings.Join(d.Texts(), ","); got != "a,x,b,c" {
		t.Fatalf("after insert: %s", got)
	}
	if err := d.RemoveChild(0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := strings.Join(d.Texts(), ","); got != "x,b,c" {
		t.Fatalf("after remove: %s", got)
	}
	if _, err := d.InsertParagraph(3, ""); err != nil {
		t.Fatalf("append via insert: %v", err)
	}
	if d.NumChildren() != 4 {
		t.Fatalf("expected 4 children, got %d", d.NumChildren())
	}
	if d.Mutations() != 3 {
		t.Fatalf("expected 3 mutations, got %d", d.Mutations())
	}
}

func TestMemDocumentBounds(t *testing.T) {
	d := FromLines("only")
	if _, err := d.Child(1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
	if err := d.RemoveChild(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
	if _, err := d.InsertParagraph(5, ""); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
	d.AppendBlock(ElementTable, nil)
	if _, err := d.Paragraph(1); !errors.Is(err, ErrNotParagraph) {
		t.Fatalf("expected not paragraph, got %v", err)
	}
}

func TestMemDocumentFaultAbortsMutation(t *testing.T) {
	d := FromLines("a", "b")
	boom := errors.New("host refused")
	d.Fault = func(op string, _ int) error {
		if op == "remove" {
			return boom
		}
		return nil
	}
	if err := d.RemoveChild(0); !errors.Is(err, boom) {
		t.Fatalf("expected fault, got %v", err)
	}
	if d.NumChildren() != 2 {
		t.Fatalf("fault must leave the document unchanged")
	}
}

func TestMemDocumentFaultSeesCurrentParagraphIndex(t *testing.T) {
	d := FromLines("a", "b", "c")
	p, _ := d.Paragraph(2)
	if err := p.SetHeading(Heading2); err != nil {
		t.Fatalf("SetHeading without fault: %v", err)
	}

	var got []int
	d.Fault = func(op string, index int) error {
		if op == "heading" {
			got = append(got, index)
		}
		return nil
	}
	if err := p.SetHeading(Heading3); err != nil {
		t.Fatal(err)
	}
	if _, err := d.InsertParagraph(0, "new"); err != nil {
		t.Fatal(err)
	}
	if err := p.SetHeading(HeadingNormal); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Fatalf("fault saw indexes %v, want [2 3]", got)
	}
	if p.Mutations() != 3 {
		t.Fatalf("paragraph mutations = %d, want 3", p.Mutations())
	}
}

func TestBoldRangeAndSegments(t *testing.T) {
	d := FromLines("[SFX] Bang.")
	p, _ := d.Paragraph(0)
	txt, err := p.Child(0)
	if err != nil {
		t.Fatalf("child: %v", err)
	}
	if err := txt.SetBoldRange(0, 5, true); err != nil {
		t.Fatalf("bold range: %v", err)
	}
	segs := BoldSegments(txt)
	if len(segs) != 2 || segs[0].Text != "[SFX]" || !segs[0].Bold || segs[1].Text != " Bang." || segs[1].Bold {
		t.Fatalf("unexpected segments: %+v", segs)
	}
	if err := txt.SetBoldRange(3, 99, true); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected range error, got %v", err)
	}
	if p.Mutations() != 1 {
		t.Fatalf("expected 1 paragraph mutation, got %d", p.Mutations())
	}
}

func TestEmptyParagraphHasNoTextChildren(t *testing.T) {
	d := FromLines("")
	p, _ := d.Paragraph(0)
	if p.NumChildren() != 0 {
		t.Fatalf("expected no text children, got %d", p.NumChildren())
	}
}

func TestReadTextHandlesCRLFAndEmptyInput(t *testing.T) {
	d, err := ReadText(strings.NewReader("INT. HOUSE\r\n\r\nHello.\r\n"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := strings.Join(d.Texts(), "|"); got != "INT. HOUSE||Hello." {
		t.Fatalf("unexpected texts %q", got)
	}
	empty, err := ReadText(strings.NewReader(""))
	if err != nil {
		t.Fatalf("read empty: %v", err)
	}
	if empty.NumChildren() != 1 {
		t.Fatalf("empty input should produce one paragraph, got %d", empty.NumChildren())
	}
}

func TestJSONPreservesFormattingAndBlocks(t *testing.T) {
	d := FromLines("INT. LAB", "[NOTE] check")
	p0, _ := d.Paragraph(0)
	_ = p0.SetHeading(Heading3)
	_ = p0.SetIndentStart(36)
	_ = p0.SetIndentFirstLine(36)
	_ = p0.SetIndentEnd(18)
	_ = p0.SetAlignment(AlignRight)
	_ = p0.SetForegroundColor("#FF00FF")
	p1, _ := d.Paragraph(1)
	t1, _ := p1.Child(0)
	_ = t1.SetBoldRange(0, 6, true)
	d.AppendBlock(ElementImage, []byte(`{"src":"x.png"}`))

	var buf bytes.Buffer
	if err := WriteJSON(&buf, d); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadJSON(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var again bytes.Buffer
	if err := WriteJSON(&again, got); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if buf.String() != again.String() {
		t.Fatalf("json not stable:\n%s\nvs\n%s", buf.String(), again.String())
	}
	g0, _ := got.Paragraph(0)
	if g0.Heading() != Heading3 || g0.Alignment() != AlignRight || g0.ForegroundColor() != "#ff00ff" || g0.IndentEnd() != 18 {
		t.Fatalf("formatting lost: %+v", g0)
	}
	el, _ := got.Child(2)
	if el.Type() != ElementImage {
		t.Fatalf("expected image block, got %s", el.Type())
	}
}

func TestReadJSONRejectsNewerVersion(t *testing.T) {
	_, err := ReadJSON(strings.NewReader(`{"version": 99, "elements": []}`))
	if err == nil {
		t.Fatalf("expected version error")
	}
}

func TestFormatForPath(t *testing.T) {
	if FormatForPath("a/b.JSON") != FormatJSON || FormatForPath("script.txt") != FormatText || FormatForPath("noext") != FormatText {
		t.Fatalf("unexpected format detection")
	}
}
