/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package document

import (
	"fmt"
	"strings"
)

// Compile-time assertions.
var (
	_ Body      = (*MemDocument)(nil)
	_ Paragraph = (*MemParagraph)(nil)
	_ Text      = (*MemText)(nil)
)

// MemDocument is an in-memory Body. It records how many host mutations each
// paragraph received, which lets callers prove a pass left a paragraph alone.
// It is not safe for concurrent use.
type MemDocument struct {
	elems []Element

	// Fault, when set, is consulted before every mutation; a non-nil error aborts it.
	// op is one of "insert", "remove", "heading", "indent", "align", "color", "bold".
	Fault func(op string, index int) error

	mutations int
}

// NewMemDocument returns an empty document. Use AppendParagraph to populate it.
func NewMemDocument() *MemDocument { return &MemDocument{} }

// FromLines builds a document with one unformatted paragraph per line.
func FromLines(lines ...string) *MemDocument {
	d := NewMemDocument()
	for _, l := range lines {
		d.AppendParagraph(l)
	}
	return d
}

// AppendParagraph adds a paragraph at the end without counting it as a mutation.
func (d *MemDocument) AppendParagraph(text string) *MemParagraph {
	p := newMemParagraph(d, text)
	d.elems = append(d.elems, p)
	return p
}

// AppendBlock adds an opaque non-paragraph element at the end.
func (d *MemDocument) AppendBlock(kind ElementType, raw []byte) *MemBlock {
	b := &MemBlock{kind: kind, Raw: append([]byte(nil), raw...)}
	d.elems = append(d.elems, b)
	return b
}

func (d *MemDocument) NumChildren() int { return len(d.elems) }

func (d *MemDocument) Child(i int) (Element, error) {
	if i < 0 || i >= len(d.elems) {
		return nil, fmt.Errorf("child %d of %d: %w", i, len(d.elems), ErrIndexOutOfRange)
	}
	return d.elems[i], nil
}

// Paragraph returns child i as a *MemParagraph.
func (d *MemDocument) Paragraph(i int) (*MemParagraph, error) {
	el, err := d.Child(i)
	if err != nil {
		return nil, err
	}
	p, ok := el.(*MemParagraph)
	if !ok {
		return nil, fmt.Errorf("child %d is %s: %w", i, el.Type(), ErrNotParagraph)
	}
	return p, nil
}

func (d *MemDocument) InsertParagraph(i int, text string) (Paragraph, error) {
	if i < 0 || i > len(d.elems) {
		return nil, fmt.Errorf("insert at %d of %d: %w", i, len(d.elems), ErrIndexOutOfRange)
	}
	if err := d.mutate("insert", i); err != nil {
		return nil, err
	}
	p := newMemParagraph(d, text)
	d.elems = append(d.elems, nil)
	copy(d.elems[i+1:], d.elems[i:])
	d.elems[i] = p
	return p, nil
}

func (d *MemDocument) RemoveChild(i int) error {
	if i < 0 || i >= len(d.elems) {
		return fmt.Errorf("remove %d of %d: %w", i, len(d.elems), ErrIndexOutOfRange)
	}
	if err := d.mutate("remove", i); err != nil {
		return err
	}
	d.elems = append(d.elems[:i], d.elems[i+1:]...)
	return nil
}

// Mutations returns the total number of host mutations performed on the document.
func (d *MemDocument) Mutations() int { return d.mutations }

// Texts returns the plain text of every element; non-paragraph elements yield "".
func (d *MemDocument) Texts() []string {
	out := make([]string, len(d.elems))
	for i, el := range d.elems {
		if p, ok := el.(*MemParagraph); ok {
			out[i] = p.Text()
		}
	}
	return out
}

// String renders the document text with one paragraph per line.
func (d *MemDocument) String() string { return strings.Join(d.Texts(), "\n") }

func (d *MemDocument) mutate(op string, index int) error {
	if d.Fault != nil {
		if err := d.Fault(op, index); err != nil {
			return fmt.Errorf("%s at %d: %w", op, index, err)
		}
	}
	d.mutations++
	return nil
}

func (d *MemDocument) indexOf(el Element) int {
	for i, e := range d.elems {
		if e == el {
			return i
		}
	}
	return -1
}

// MemBlock is an opaque non-paragraph element such as a table or an image.
type MemBlock struct {
	kind ElementType
	Raw  []byte
}

func (b *MemBlock) Type() ElementType { return b.kind }

// MemParagraph is the in-memory Paragraph.
type MemParagraph struct {
	doc *MemDocument

	texts       []*MemText
	heading     Heading
	indentFirst float64
	indentStart float64
	indentEnd   float64
	align       Alignment
	color       string

	mutations int
}

func newMemParagraph(d *MemDocument, text string) *MemParagraph {
	p := &MemParagraph{doc: d}
	if text != "" {
		p.texts = []*MemText{newMemText(p, text)}
	}
	return p
}

func (p *MemParagraph) Type() ElementType { return ElementParagraph }

func (p *MemParagraph) Text() string {
	var b strings.Builder
	for _, t := range p.texts {
		b.WriteString(t.Text())
	}
	return b.String()
}

func (p *MemParagraph) Heading() Heading         { return p.heading }
func (p *MemParagraph) IndentFirstLine() float64 { return p.indentFirst }
func (p *MemParagraph) IndentStart() float64     { return p.indentStart }
func (p *MemParagraph) IndentEnd() float64       { return p.indentEnd }
func (p *MemParagraph) Alignment() Alignment     { return p.align }
func (p *MemParagraph) ForegroundColor() string  { return p.color }

func (p *MemParagraph) SetHeading(h Heading) error {
	if err := p.mutate("heading"); err != nil {
		return err
	}
	p.heading = h
	return nil
}

func (p *MemParagraph) SetIndentFirstLine(pt float64) error {
	if err := p.mutate("indent"); err != nil {
		return err
	}
	p.indentFirst = pt
	return nil
}

func (p *MemParagraph) SetIndentStart(pt float64) error {
	if err := p.mutate("indent"); err != nil {
		return err
	}
	p.indentStart = pt
	return nil
}

func (p *MemParagraph) SetIndentEnd(pt float64) error {
	if err := p.mutate("indent"); err != nil {
		return err
	}
	p.indentEnd = pt
	return nil
}

func (p *MemParagraph) SetAlignment(a Alignment) error {
	if err := p.mutate("align"); err != nil {
		return err
	}
	p.align = a
	return nil
}

// SetForegroundColor sets the text color of the whole paragraph. Empty means inherit.
func (p *MemParagraph) SetForegroundColor(color string) error {
	if err := p.mutate("color"); err != nil {
		return err
	}
	p.color = strings.ToLower(color)
	return nil
}

func (p *MemParagraph) NumChildren() int { return len(p.texts) }

func (p *MemParagraph) Child(i int) (Text, error) {
	if i < 0 || i >= len(p.texts) {
		return nil, fmt.Errorf("text %d of %d: %w", i, len(p.texts), ErrIndexOutOfRange)
	}
	return p.texts[i], nil
}

// Mutations returns how many host mutations this paragraph received.
func (p *MemParagraph) Mutations() int { return p.mutations }

func (p *MemParagraph) mutate(op string) error {
	if d := p.doc; d != nil {
		// The position is only looked up for a Fault hook.
		index := -1
		if d.Fault != nil {
			index = d.indexOf(p)
		}
		if err := d.mutate(op, index); err != nil {
			return err
		}
	}
	p.mutations++
	return nil
}

// MemText is the in-memory Text run with per-rune boldness.
type MemText struct {
	owner *MemParagraph
	runes []rune
	bold  []bool
}

func newMemText(owner *MemParagraph, s string) *MemText {
	r := []rune(s)
	return &MemText{owner: owner, runes: r, bold: make([]bool, len(r))}
}

func (t *MemText) Text() string { return string(t.runes) }

func (t *MemText) IsBold(offset int) bool {
	if offset < 0 || offset >= len(t.bold) {
		return false
	}
	return t.bold[offset]
}

func (t *MemText) SetBold(bold bool) error {
	return t.SetBoldRange(0, len(t.runes), bold)
}

func (t *MemText) SetBoldRange(start, end int, bold bool) error {
	if start < 0 || end > len(t.runes) || start > end {
		return fmt.Errorf("bold range [%d,%d) of %d: %w", start, end, len(t.runes), ErrIndexOutOfRange)
	}
	if t.owner != nil {
		if err := t.owner.mutate("bold"); err != nil {
			return err
		}
	}
	for i := start; i < end; i++ {
		t.bold[i] = bold
	}
	return nil
}
