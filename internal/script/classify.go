/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"bufio"
	"regexp"
	"strings"
)

type rule struct {
	re  *regexp.Regexp
	typ ParagraphType
}

// rules are evaluated top to bottom against the whole paragraph text; the first match wins.
// Heading markers go from one '#' to five, so "## x" never reaches the Heading2 rule.
var rules = []rule{
	{regexp.MustCompile(`^$`), Blank},
	{regexp.MustCompile(`(?i)^(int|ext)[.]? `), Location},
	{regexp.MustCompile(`^# `), Heading2},
	{regexp.MustCompile(`^## `), Heading3},
	{regexp.MustCompile(`^### `), Heading4},
	{regexp.MustCompile(`^#### `), Heading5},
	{regexp.MustCompile(`^##### `), Heading6},
	{regexp.MustCompile(`^\(.*\)$`), Parenthetical},
	{regexp.MustCompile(`^-.*-$`), Character},
	{regexp.MustCompile(`^>.*<$`), Center},
	{regexp.MustCompile(`:$`), Instruction},
	{regexp.MustCompile(`[a-z]`), Action},
}

// Classify decides which screenplay element a paragraph's plain text represents.
// It looks at the text only, never at neighbouring paragraphs. Anything no rule
// claims is Dialog.
func Classify(text string) ParagraphType {
	for _, r := range rules {
		if r.re.MatchString(text) {
			return r.typ
		}
	}
	return Dialog
}

// ClassifyLine is Classify returning the (type, text) pair.
func ClassifyLine(text string) Line {
	return Line{Type: Classify(text), Text: text}
}

// ClassifyText splits input into lines and classifies each one.
// A trailing carriage return is dropped so CRLF files classify the same as LF files.
func ClassifyText(input string) []Line {
	var out []Line
	scanner := bufio.NewScanner(strings.NewReader(input))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimRight(scanner.Text(), "\r")
		out = append(out, Line{Type: Classify(text), Text: text, LineNo: lineNo})
	}
	return out
}

// Counts tallies lines per type.
func Counts(lines []Line) map[ParagraphType]int {
	m := map[ParagraphType]int{}
	for _, l := range lines {
		m[l.Type]++
	}
	return m
}
