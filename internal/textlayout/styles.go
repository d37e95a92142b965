/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"scriptformatter/internal/document"
	"scriptformatter/internal/script"
)

// Layout constants of the house style. Indents are multiples of an inch in points.
const (
	// CharWidth is the width of one 12pt Courier New character in points.
	CharWidth     = 7
	PointsPerInch = 72

	ColorDefault    = "#000000"
	ColorSubheading = "#ff00ff"
)

// Template is the paragraph formatting applied to one paragraph type.
// A nil field means "leave whatever the host currently has".
//
// LeftIndent is applied to both the first line and the rest of the paragraph.
type Template struct {
	Heading     *document.Heading
	LeftIndent  *float64
	RightIndent *float64
	Alignment   *document.Alignment
	Color       *string
	Bold        *bool
}

// TypeStyle bundles a paragraph type with its template and spacing rule.
// Template is nil for Blank, which is removed rather than styled.
type TypeStyle struct {
	Type         script.ParagraphType
	Template     *Template
	AddBlankLine bool
}

func heading(h document.Heading) *document.Heading { return &h }
func align(a document.Alignment) *document.Alignment { return &a }
func inches(n float64) *float64 { v := n * PointsPerInch; return &v }
func color(c string) *string { return &c }
func flag(b bool) *bool { return &b }

var builtinStyles = map[script.ParagraphType]TypeStyle{
	script.Blank:    {Type: script.Blank},
	script.Heading2: {Type: script.Heading2, Template: &Template{Heading: heading(document.Heading2)}, AddBlankLine: true},
	script.Heading3: {Type: script.Heading3, Template: &Template{Heading: heading(document.Heading3)}, AddBlankLine: true},
	script.Heading4: {Type: script.Heading4, Template: &Template{Heading: heading(document.Heading4)}, AddBlankLine: true},
	script.Heading5: {Type: script.Heading5, Template: &Template{Heading: heading(document.Heading5)}, AddBlankLine: true},
	script.Heading6: {Type: script.Heading6, Template: &Template{Heading: heading(document.Heading6)}, AddBlankLine: true},
	script.Location: {
		Type: script.Location,
		Template: &Template{
			Heading:     heading(document.HeadingNormal),
			LeftIndent:  inches(0),
			RightIndent: inches(0),
			Bold:        flag(true),
			Color:       color(ColorDefault),
		},
		AddBlankLine: true,
	},
	script.Parenthetical: {
		Type: script.Parenthetical,
		Template: &Template{
			Heading:     heading(document.HeadingNormal),
			LeftIndent:  inches(2),
			RightIndent: inches(1),
			Color:       color(ColorDefault),
		},
	},
	script.Character: {
		Type: script.Character,
		Template: &Template{
			Heading:     heading(document.HeadingNormal),
			LeftIndent:  inches(2.5),
			RightIndent: inches(1.5),
			Color:       color(ColorDefault),
		},
	},
	script.Center: {
		Type: script.Center,
		Template: &Template{
			Heading:     heading(document.HeadingNormal),
			LeftIndent:  inches(0),
			RightIndent: inches(0),
			Alignment:   align(document.AlignCenter),
			Color:       color(ColorDefault),
		},
		AddBlankLine: true,
	},
	script.Instruction: {
		Type: script.Instruction,
		Template: &Template{
			Heading:     heading(document.HeadingNormal),
			LeftIndent:  inches(0),
			RightIndent: inches(0),
			Alignment:   align(document.AlignRight),
			Color:       color(ColorDefault),
		},
		AddBlankLine: true,
	},
	script.Action: {
		Type: script.Action,
		Template: &Template{
			Heading:     heading(document.HeadingNormal),
			LeftIndent:  inches(0.5),
			RightIndent: inches(0),
			Color:       color(ColorDefault),
		},
		AddBlankLine: true,
	},
	script.Dialog: {
		Type: script.Dialog,
		Template: &Template{
			Heading:     heading(document.HeadingNormal),
			LeftIndent:  inches(1.5),
			RightIndent: inches(0.5),
			Color:       color(ColorDefault),
		},
		AddBlankLine: true,
	},
}

// GetStyle returns the builtin style of a paragraph type. Callers get a deep copy.
func GetStyle(t script.ParagraphType) (TypeStyle, bool) {
	s, ok := builtinStyles[t]
	if !ok {
		return TypeStyle{}, false
	}
	s.Template = s.Template.clone()
	return s, true
}

func (t *Template) clone() *Template {
	if t == nil {
		return nil
	}
	cp := &Template{}
	if t.Heading != nil {
		cp.Heading = heading(*t.Heading)
	}
	if t.LeftIndent != nil {
		v := *t.LeftIndent
		cp.LeftIndent = &v
	}
	if t.RightIndent != nil {
		v := *t.RightIndent
		cp.RightIndent = &v
	}
	if t.Alignment != nil {
		cp.Alignment = align(*t.Alignment)
	}
	if t.Color != nil {
		cp.Color = color(*t.Color)
	}
	if t.Bold != nil {
		cp.Bold = flag(*t.Bold)
	}
	return cp
}
