/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"scriptformatter/internal/document"
	"scriptformatter/internal/script"
)

// StyleSheet resolves the effective TypeStyle of each paragraph type.
// Resolution precedence is House > Builtin, merged attribute by attribute.
// Builtins are provided by styles.go (builtinStyles map).
//
// A sheet is built once at start-up; WithHouse returns a copy so a sheet that
// has been handed to a formatter is never mutated.
type StyleSheet struct {
	Name  string
	House map[script.ParagraphType]Override
}

// Override is a partial TypeStyle from a house-style file. Nil fields inherit.
type Override struct {
	Heading      *document.Heading
	LeftIndent   *float64
	RightIndent  *float64
	Alignment    *document.Alignment
	Color        *string
	Bold         *bool
	AddBlankLine *bool
}

// NewStyleSheet creates a sheet that resolves to the builtin house style.
func NewStyleSheet() *StyleSheet {
	return &StyleSheet{Name: "builtin", House: map[script.ParagraphType]Override{}}
}

// WithHouse returns a copy with the provided overrides merged over any existing ones.
func (s *StyleSheet) WithHouse(name string, over map[script.ParagraphType]Override) *StyleSheet {
	cp := s.clone()
	if name != "" {
		cp.Name = name
	}
	for k, v := range over {
		cp.House[k] = mergeOverride(cp.House[k], v)
	}
	return cp
}

// Resolve returns the effective style of t. The second return value is false only
// for values outside the closed set of paragraph types.
func (s *StyleSheet) Resolve(t script.ParagraphType) (TypeStyle, bool) {
	base, ok := GetStyle(t)
	if !ok {
		return TypeStyle{}, false
	}
	if s == nil || t == script.Blank {
		return base, true
	}
	o, ok := s.House[t]
	if !ok {
		return base, true
	}
	tpl := base.Template
	if tpl == nil {
		tpl = &Template{}
	}
	if o.Heading != nil {
		tpl.Heading = heading(*o.Heading)
	}
	if o.LeftIndent != nil {
		v := *o.LeftIndent
		tpl.LeftIndent = &v
	}
	if o.RightIndent != nil {
		v := *o.RightIndent
		tpl.RightIndent = &v
	}
	if o.Alignment != nil {
		tpl.Alignment = align(*o.Alignment)
	}
	if o.Color != nil {
		tpl.Color = color(*o.Color)
	}
	if o.Bold != nil {
		tpl.Bold = flag(*o.Bold)
	}
	base.Template = tpl
	if o.AddBlankLine != nil {
		base.AddBlankLine = *o.AddBlankLine
	}
	return base, true
}

// Styles resolves every paragraph type in declaration order.
func (s *StyleSheet) Styles() []TypeStyle {
	var out []TypeStyle
	for _, t := range script.AllTypes() {
		if st, ok := s.Resolve(t); ok {
			out = append(out, st)
		}
	}
	return out
}

func (s *StyleSheet) clone() *StyleSheet {
	cp := &StyleSheet{Name: "builtin", House: map[script.ParagraphType]Override{}}
	if s == nil {
		return cp
	}
	cp.Name = s.Name
	for k, v := range s.House {
		cp.House[k] = v
	}
	return cp
}

func mergeOverride(dst, src Override) Override {
	if src.Heading != nil {
		dst.Heading = src.Heading
	}
	if src.LeftIndent != nil {
		dst.LeftIndent = src.LeftIndent
	}
	if src.RightIndent != nil {
		dst.RightIndent = src.RightIndent
	}
	if src.Alignment != nil {
		dst.Alignment = src.Alignment
	}
	if src.Color != nil {
		dst.Color = src.Color
	}
	if src.Bold != nil {
		dst.Bold = src.Bold
	}
	if src.AddBlankLine != nil {
		dst.AddBlankLine = src.AddBlankLine
	}
	return dst
}

// HouseStyle is the on-disk YAML form of a set of overrides:
//
//	name: Studio
//	styles:
//	  dialog:
//	    left_indent: 100
//	    add_blank_line: false
type HouseStyle struct {
	Name   string                    `yaml:"name"`
	Styles map[string]HouseStyleRule `yaml:"styles"`
}

// HouseStyleRule mirrors Override with YAML-friendly scalar types.
type HouseStyleRule struct {
	Heading      *string  `yaml:"heading,omitempty"`
	LeftIndent   *float64 `yaml:"left_indent,omitempty"`
	RightIndent  *float64 `yaml:"right_indent,omitempty"`
	Alignment    *string  `yaml:"alignment,omitempty"`
	Color        *string  `yaml:"color,omitempty"`
	Bold         *bool    `yaml:"bold,omitempty"`
	AddBlankLine *bool    `yaml:"add_blank_line,omitempty"`
}

var reColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ParseHouseStyle decodes and validates a YAML house-style document.
func ParseHouseStyle(data []byte) (HouseStyle, error) {
	var hs HouseStyle
	if err := yaml.Unmarshal(data, &hs); err != nil {
		return HouseStyle{}, fmt.Errorf("parse house style: %w", err)
	}
	if _, err := hs.Overrides(); err != nil {
		return HouseStyle{}, err
	}
	return hs, nil
}

// Overrides converts the YAML rules into typed overrides keyed by paragraph type.
func (hs HouseStyle) Overrides() (map[script.ParagraphType]Override, error) {
	out := map[script.ParagraphType]Override{}
	names := make([]string, 0, len(hs.Styles))
	for k := range hs.Styles {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, name := range names {
		rule := hs.Styles[name]
		t, ok := script.ParseType(strings.ToLower(strings.TrimSpace(name)))
		if !ok {
			return nil, fmt.Errorf("house style: unknown paragraph type %q", name)
		}
		if t == script.Blank {
			return nil, fmt.Errorf("house style: blank paragraphs cannot be styled")
		}
		var o Override
		if rule.Heading != nil {
			h, err := document.ParseHeading(*rule.Heading)
			if err != nil {
				return nil, fmt.Errorf("house style %s: %w", name, err)
			}
			o.Heading = &h
		}
		if rule.Alignment != nil {
			a, err := document.ParseAlignment(*rule.Alignment)
			if err != nil {
				return nil, fmt.Errorf("house style %s: %w", name, err)
			}
			o.Alignment = &a
		}
		if rule.Color != nil {
			if !reColor.MatchString(*rule.Color) {
				return nil, fmt.Errorf("house style %s: color %q is not #rrggbb", name, *rule.Color)
			}
			c := strings.ToLower(*rule.Color)
			o.Color = &c
		}
		if rule.LeftIndent != nil && *rule.LeftIndent < 0 || rule.RightIndent != nil && *rule.RightIndent < 0 {
			return nil, fmt.Errorf("house style %s: indents must not be negative", name)
		}
		o.LeftIndent = rule.LeftIndent
		o.RightIndent = rule.RightIndent
		o.Bold = rule.Bold
		o.AddBlankLine = rule.AddBlankLine
		out[t] = o
	}
	return out, nil
}

// Apply returns s with the house style merged in.
func (hs HouseStyle) Apply(s *StyleSheet) (*StyleSheet, error) {
	over, err := hs.Overrides()
	if err != nil {
		return nil, err
	}
	return s.WithHouse(hs.Name, over), nil
}
