/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package rewrite implements the single reformatting pass over a host document:
// classify every paragraph, drop blank lines, apply the house style and put one
// canonical blank line back after the elements that want spacing.
package rewrite

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"unicode/utf8"

	"scriptformatter/internal/document"
	applog "scriptformatter/internal/log"
	"scriptformatter/internal/script"
	"scriptformatter/internal/textlayout"
)

// reNote matches a bracketed production note at the very start of a paragraph.
var reNote = regexp.MustCompile(`^\[.*\]`)

// Stats summarises one pass.
type Stats struct {
	Visited  int
	Skipped  int // intro paragraphs and non-paragraph elements
	Removed  int
	Styled   int
	Inserted int
	ByType   map[script.ParagraphType]int
	// StoppedAtLast is set when the pass ended on a trailing blank paragraph it may not delete.
	StoppedAtLast bool
}

// Formatter runs reformatting passes with a fixed style sheet.
type Formatter struct {
	styles *textlayout.StyleSheet
	log    *slog.Logger
}

// New returns a Formatter. A nil sheet means the builtin house style.
func New(styles *textlayout.StyleSheet) *Formatter {
	if styles == nil {
		styles = textlayout.NewStyleSheet()
	}
	return &Formatter{
		styles: styles,
		log:    applog.WithOperation(applog.WithComponent("rewrite"), "reformat"),
	}
}

// Rewrite runs one pass with the builtin house style.
func Rewrite(ctx context.Context, body document.Body) (Stats, error) {
	return New(nil).Rewrite(ctx, body)
}

// Rewrite walks body once, front to back, mutating it in place.
//
// Everything before the first Location or Heading2 paragraph is intro and left
// untouched; the paragraph that ends the intro is formatted in the same step.
// Blank paragraphs are removed, except the last child of the body, which ends
// the pass. Host errors abort the pass and are returned as is; whatever was
// already changed stays changed.
func (f *Formatter) Rewrite(ctx context.Context, body document.Body) (Stats, error) {
	st := Stats{ByType: map[script.ParagraphType]int{}}
	skipIntro := true
	i := 0

	// The body length changes as we go; it is re-read on every iteration.
loop:
	for i < body.NumChildren() {
		if err := ctx.Err(); err != nil {
			return st, fmt.Errorf("reformat aborted at child %d: %w", i, err)
		}
		st.Visited++
		el, err := body.Child(i)
		if err != nil {
			return st, fmt.Errorf("read child %d: %w", i, err)
		}
		para, isPara := document.AsParagraph(el)
		var line script.Line
		if isPara {
			line = script.ClassifyLine(para.Text())
			if line.Type.EndsIntro() && skipIntro {
				skipIntro = false
				f.log.DebugContext(ctx, "intro ends", slog.Int("index", i), slog.String("type", line.Type.String()))
			}
		}

		switch {
		case skipIntro || !isPara:
			st.Skipped++
			i++

		case line.Type == script.Blank:
			// Blank lines are dropped and re-added where the style wants them.
			// A document must keep its final paragraph.
			if i == body.NumChildren()-1 {
				st.StoppedAtLast = true
				break loop
			}
			if err := body.RemoveChild(i); err != nil {
				return st, fmt.Errorf("remove blank paragraph %d: %w", i, err)
			}
			st.Removed++

		default:
			style, ok := f.styles.Resolve(line.Type)
			if !ok {
				return st, fmt.Errorf("no style for paragraph type %d", line.Type)
			}
			if err := ApplyStyles(para, style.Template); err != nil {
				return st, fmt.Errorf("style paragraph %d as %s: %w", i, line.Type, err)
			}
			f.log.DebugContext(ctx, "styled", slog.Int("index", i), slog.String("type", line.Type.String()))
			i++
			st.Styled++
			st.ByType[line.Type]++
			if style.AddBlankLine {
				if err := addBlankLine(body, i); err != nil {
					return st, fmt.Errorf("insert blank paragraph at %d: %w", i, err)
				}
				i++
				st.Inserted++
			}
		}
	}

	f.log.InfoContext(ctx, "reformat done",
		slog.String("styles", f.styles.Name),
		slog.Int("visited", st.Visited),
		slog.Int("styled", st.Styled),
		slog.Int("removed", st.Removed),
		slog.Int("inserted", st.Inserted),
		slog.Int("skipped", st.Skipped),
	)
	return st, nil
}

// addBlankLine inserts an empty paragraph at index with reset formatting, so it
// does not inherit the heading or indents of its neighbour.
func addBlankLine(body document.Body, index int) error {
	p, err := body.InsertParagraph(index, "")
	if err != nil {
		return err
	}
	if err := p.SetHeading(document.HeadingNormal); err != nil {
		return err
	}
	if err := p.SetIndentFirstLine(0); err != nil {
		return err
	}
	if err := p.SetIndentStart(0); err != nil {
		return err
	}
	if err := p.SetIndentEnd(0); err != nil {
		return err
	}
	return p.SetForegroundColor(textlayout.ColorDefault)
}

// ApplyStyles sets every attribute present in tpl on para and leaves the others
// alone. Independently of tpl, a "[...]" note at the start of the first text run
// is made bold. A nil tpl applies only the note rule.
func ApplyStyles(para document.Paragraph, tpl *textlayout.Template) error {
	if tpl != nil {
		if tpl.Heading != nil {
			if err := para.SetHeading(*tpl.Heading); err != nil {
				return err
			}
		}
		if tpl.LeftIndent != nil {
			if err := para.SetIndentFirstLine(*tpl.LeftIndent); err != nil {
				return err
			}
			if err := para.SetIndentStart(*tpl.LeftIndent); err != nil {
				return err
			}
		}
		if tpl.RightIndent != nil {
			if err := para.SetIndentEnd(*tpl.RightIndent); err != nil {
				return err
			}
		}
		if tpl.Alignment != nil {
			if err := para.SetAlignment(*tpl.Alignment); err != nil {
				return err
			}
		}
		if tpl.Color != nil {
			if err := para.SetForegroundColor(*tpl.Color); err != nil {
				return err
			}
		}
		if tpl.Bold != nil {
			for c := 0; c < para.NumChildren(); c++ {
				t, err := para.Child(c)
				if err != nil {
					return err
				}
				if err := t.SetBold(*tpl.Bold); err != nil {
					return err
				}
			}
		}
	}

	if para.NumChildren() > 0 {
		t, err := para.Child(0)
		if err != nil {
			return err
		}
		if m := reNote.FindString(t.Text()); m != "" {
			if err := t.SetBoldRange(0, utf8.RuneCountInString(m), true); err != nil {
				return err
			}
		}
	}
	return nil
}
