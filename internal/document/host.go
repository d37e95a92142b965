/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package document defines the capability interface the formatter needs from a host
// document editor, plus MemDocument, an in-memory host used by the CLI, the desktop
// shell and the tests.
//
// The host owns every element. Callers address children by index into a live sequence:
// inserting or removing a child shifts the index of everything after it.
package document

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrIndexOutOfRange = errors.New("child index out of range")
	ErrNotParagraph    = errors.New("element is not a paragraph")
)

// ElementType is the kind of a block-level element in a document body.
type ElementType int

const (
	ElementParagraph ElementType = iota
	ElementTable
	ElementImage
	ElementHorizontalRule
	ElementPageBreak
	ElementUnsupported
)

var elementNames = [...]string{"paragraph", "table", "image", "horizontal_rule", "page_break", "unsupported"}

func (t ElementType) String() string {
	if t < 0 || int(t) >= len(elementNames) {
		return "unsupported"
	}
	return elementNames[t]
}

func (t ElementType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *ElementType) UnmarshalText(b []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(b)))
	for i, n := range elementNames {
		if n == s {
			*t = ElementType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown element type %q", s)
}

// Heading is a paragraph's heading level.
type Heading int

const (
	HeadingNormal Heading = iota
	Heading1
	Heading2
	Heading3
	Heading4
	Heading5
	Heading6
	HeadingTitle
	HeadingSubtitle
)

var headingNames = [...]string{"normal", "h1", "h2", "h3", "h4", "h5", "h6", "title", "subtitle"}

func (h Heading) String() string {
	if h < 0 || int(h) >= len(headingNames) {
		return "normal"
	}
	return headingNames[h]
}

func (h Heading) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

func (h *Heading) UnmarshalText(b []byte) error {
	v, err := ParseHeading(string(b))
	if err != nil {
		return err
	}
	*h = v
	return nil
}

// ParseHeading accepts the names produced by Heading.String.
func ParseHeading(s string) (Heading, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range headingNames {
		if n == s {
			return Heading(i), nil
		}
	}
	return HeadingNormal, fmt.Errorf("unknown heading %q", s)
}

// Alignment is a paragraph's horizontal alignment.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
	AlignJustify
)

var alignmentNames = [...]string{"left", "center", "right", "justify"}

func (a Alignment) String() string {
	if a < 0 || int(a) >= len(alignmentNames) {
		return "left"
	}
	return alignmentNames[a]
}

func (a Alignment) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Alignment) UnmarshalText(b []byte) error {
	v, err := ParseAlignment(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// ParseAlignment accepts the names produced by Alignment.String.
func ParseAlignment(s string) (Alignment, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range alignmentNames {
		if n == s {
			return Alignment(i), nil
		}
	}
	return AlignLeft, fmt.Errorf("unknown alignment %q", s)
}

// Element is any block-level child of a Body.
type Element interface {
	Type() ElementType
}

// Text is a run of characters inside a paragraph. Offsets are rune offsets.
type Text interface {
	Text() string
	IsBold(offset int) bool
	SetBold(bold bool) error
	// SetBoldRange sets bold on the half-open range [start, end).
	SetBoldRange(start, end int, bold bool) error
}

// Paragraph is a text paragraph together with its paragraph-level formatting.
// Indents are in points.
type Paragraph interface {
	Element
	Text() string

	Heading() Heading
	SetHeading(h Heading) error
	IndentFirstLine() float64
	SetIndentFirstLine(pt float64) error
	IndentStart() float64
	SetIndentStart(pt float64) error
	IndentEnd() float64
	SetIndentEnd(pt float64) error
	Alignment() Alignment
	SetAlignment(a Alignment) error
	ForegroundColor() string
	SetForegroundColor(color string) error

	NumChildren() int
	Child(i int) (Text, error)
}

// Body is the live, ordered sequence of a document's block elements.
type Body interface {
	NumChildren() int
	Child(i int) (Element, error)
	InsertParagraph(i int, text string) (Paragraph, error)
	RemoveChild(i int) error
}

// AsParagraph returns el as a Paragraph when it is one.
func AsParagraph(el Element) (Paragraph, bool) {
	if el == nil || el.Type() != ElementParagraph {
		return nil, false
	}
	p, ok := el.(Paragraph)
	return p, ok
}

// Segment is a maximal stretch of a text run sharing the same bold state.
type Segment struct {
	Text string
	Bold bool
}

// BoldSegments splits t into segments of uniform boldness.
func BoldSegments(t Text) []Segment {
	runes := []rune(t.Text())
	if len(runes) == 0 {
		return nil
	}
	var out []Segment
	start := 0
	cur := t.IsBold(0)
	for i := 1; i <= len(runes); i++ {
		if i == len(runes) || t.IsBold(i) != cur {
			out = append(out, Segment{Text: string(runes[start:i]), Bold: cur})
			if i < len(runes) {
				start = i
				cur = t.IsBold(i)
			}
		}
	}
	return out
}
