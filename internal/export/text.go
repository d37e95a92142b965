/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"scriptformatter/internal/document"
	"scriptformatter/internal/textlayout"
)

// DocumentTextFile renders body as fixed-width text into a file at outPath.
func DocumentTextFile(body document.Body, outPath string, opt Options) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create text: %w", err)
	}
	if err := DocumentText(f, body, opt); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// DocumentText renders body as monospaced text the way a typewriter page would
// look: indents become leading spaces (one column per CharWidth points), lines
// wrap inside the paragraph's indents, and centred or right-aligned paragraphs
// are padded. Bold and color have no plain-text form.
func DocumentText(w io.Writer, body document.Body, opt Options) error {
	if body == nil {
		return fmt.Errorf("document is nil")
	}
	width := opt.TextWidth()
	cols := textlayout.Columns(width)
	wr := textlayout.NewWrapper()
	bw := bufio.NewWriter(w)

	for i := 0; i < body.NumChildren(); i++ {
		el, err := body.Child(i)
		if err != nil {
			return err
		}
		p, ok := document.AsParagraph(el)
		if !ok {
			switch el.Type() {
			case document.ElementHorizontalRule:
				_, err = bw.WriteString(strings.Repeat("-", cols) + "\n")
			case document.ElementPageBreak:
				_, err = bw.WriteString("\f")
			default:
				_, err = fmt.Fprintf(bw, "[%s]\n", el.Type())
			}
			if err != nil {
				return err
			}
			continue
		}
		for _, line := range layoutParagraph(wr, p, width) {
			if _, err := bw.WriteString(line + "\n"); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// layoutParagraph returns the padded output lines of one paragraph.
func layoutParagraph(wr *textlayout.Wrapper, p document.Paragraph, width float64) []string {
	text := p.Text()
	if text == "" {
		return []string{""}
	}
	left := textlayout.Columns(p.IndentStart())
	first := textlayout.Columns(p.IndentFirstLine())
	avail := width - p.IndentStart() - p.IndentEnd()
	if avail < textlayout.CharWidth {
		left, first, avail = 0, 0, width
	}
	availCols := textlayout.Columns(avail)

	// The first line may start further in or out than the rest.
	firstAvail := avail - (p.IndentFirstLine() - p.IndentStart())
	lines := wr.Wrap(text, firstAvail)
	if len(lines) > 1 {
		rest := strings.Join(lines[1:], " ")
		lines = append(lines[:1], wr.Wrap(rest, avail)...)
	}

	out := make([]string, 0, len(lines))
	for n, line := range lines {
		indent := left
		if n == 0 {
			indent = first
		}
		pad := 0
		switch p.Alignment() {
		case document.AlignCenter:
			pad = (availCols - utf8.RuneCountInString(line)) / 2
		case document.AlignRight:
			pad = availCols - utf8.RuneCountInString(line)
		}
		if pad < 0 {
			pad = 0
		}
		out = append(out, strings.Repeat(" ", indent+pad)+line)
	}
	return out
}
