/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package script classifies screenplay paragraphs by their text alone.
package script

// ParagraphType is the screenplay element a single paragraph represents.
// The set is closed; classification always yields exactly one of these.
type ParagraphType int

const (
	Blank ParagraphType = iota
	Heading2
	Heading3
	Heading4
	Heading5
	Heading6
	Location
	Parenthetical
	Character
	Center
	Instruction
	Action
	Dialog
)

var typeNames = [...]string{
	Blank:         "blank",
	Heading2:      "h2",
	Heading3:      "h3",
	Heading4:      "h4",
	Heading5:      "h5",
	Heading6:      "h6",
	Location:      "location",
	Parenthetical: "paren",
	Character:     "char",
	Center:        "center",
	Instruction:   "instruction",
	Action:        "action",
	Dialog:        "dialog",
}

// String returns the symbolic name used in logs, config files and tests.
func (t ParagraphType) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "unknown"
	}
	return typeNames[t]
}

// AllTypes lists every paragraph type in declaration order.
func AllTypes() []ParagraphType {
	out := make([]ParagraphType, 0, len(typeNames))
	for i := range typeNames {
		out = append(out, ParagraphType(i))
	}
	return out
}

// ParseType maps a symbolic name back to its type. The second return value is false for unknown names.
func ParseType(name string) (ParagraphType, bool) {
	for i, n := range typeNames {
		if n == name {
			return ParagraphType(i), true
		}
	}
	return Blank, false
}

// EndsIntro reports whether a paragraph of this type marks the start of real screenplay content.
func (t ParagraphType) EndsIntro() bool { return t == Location || t == Heading2 }

// Line pairs a classified type with the text it was derived from.
// LineNo is only set by ClassifyText (1-based); Classify callers leave it zero.
type Line struct {
	Type   ParagraphType
	Text   string
	LineNo int
}
