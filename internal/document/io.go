/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package document

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Format names a host file representation.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// FormatForPath picks a format from a file extension; anything but .json is plain text.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatText
}

// Read decodes a document in the given format.
func Read(r io.Reader, f Format) (*MemDocument, error) {
	switch f {
	case FormatJSON:
		return ReadJSON(r)
	case FormatText, "":
		return ReadText(r)
	default:
		return nil, fmt.Errorf("unknown document format %q", f)
	}
}

// Write encodes body in the given format.
func Write(w io.Writer, body Body, f Format) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, body)
	case FormatText, "":
		return WriteText(w, body)
	default:
		return fmt.Errorf("unknown document format %q", f)
	}
}

// ReadText creates one unformatted paragraph per input line. An empty input still
// yields a single empty paragraph, like a fresh document in an editor.
func ReadText(r io.Reader) (*MemDocument, error) {
	d := NewMemDocument()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		d.AppendParagraph(strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	if d.NumChildren() == 0 {
		d.AppendParagraph("")
	}
	return d, nil
}

// WriteText writes the text of every paragraph on its own line. Non-paragraph
// elements have no plain-text form and are skipped.
func WriteText(w io.Writer, body Body) error {
	bw := bufio.NewWriter(w)
	for i := 0; i < body.NumChildren(); i++ {
		el, err := body.Child(i)
		if err != nil {
			return err
		}
		p, ok := AsParagraph(el)
		if !ok {
			continue
		}
		if _, err := bw.WriteString(p.Text()); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

const jsonVersion = 1

type fileDoc struct {
	Version  int           `json:"version"`
	Elements []fileElement `json:"elements"`
}

type fileElement struct {
	Type            ElementType     `json:"type"`
	Heading         Heading         `json:"heading,omitempty"`
	IndentFirstLine float64         `json:"indent_first_line,omitempty"`
	IndentStart     float64         `json:"indent_start,omitempty"`
	IndentEnd       float64         `json:"indent_end,omitempty"`
	Alignment       Alignment       `json:"alignment,omitempty"`
	Color           string          `json:"color,omitempty"`
	Runs            []fileRun       `json:"runs,omitempty"`
	Raw             json.RawMessage `json:"raw,omitempty"`
}

type fileRun struct {
	Text string `json:"text"`
	Bold bool   `json:"bold,omitempty"`
}

// ReadJSON decodes the JSON host dump written by WriteJSON.
func ReadJSON(r io.Reader) (*MemDocument, error) {
	var fd fileDoc
	dec := json.NewDecoder(r)
	if err := dec.Decode(&fd); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if fd.Version > jsonVersion {
		return nil, fmt.Errorf("document version %d is newer than supported %d", fd.Version, jsonVersion)
	}
	d := NewMemDocument()
	for _, fe := range fd.Elements {
		if fe.Type != ElementParagraph {
			d.AppendBlock(fe.Type, fe.Raw)
			continue
		}
		var text strings.Builder
		for _, run := range fe.Runs {
			text.WriteString(run.Text)
		}
		p := d.AppendParagraph(text.String())
		p.heading = fe.Heading
		p.indentFirst = fe.IndentFirstLine
		p.indentStart = fe.IndentStart
		p.indentEnd = fe.IndentEnd
		p.align = fe.Alignment
		p.color = strings.ToLower(fe.Color)
		if len(p.texts) > 0 {
			off := 0
			for _, run := range fe.Runs {
				n := len([]rune(run.Text))
				for i := off; i < off+n; i++ {
					p.texts[0].bold[i] = run.Bold
				}
				off += n
			}
		}
	}
	if d.NumChildren() == 0 {
		d.AppendParagraph("")
	}
	return d, nil
}

// WriteJSON dumps body with its paragraph formatting as indented JSON.
func WriteJSON(w io.Writer, body Body) error {
	fd := fileDoc{Version: jsonVersion, Elements: make([]fileElement, 0, body.NumChildren())}
	for i := 0; i < body.NumChildren(); i++ {
		el, err := body.Child(i)
		if err != nil {
			return err
		}
		p, ok := AsParagraph(el)
		if !ok {
			fe := fileElement{Type: el.Type()}
			if b, ok := el.(*MemBlock); ok && len(b.Raw) > 0 {
				fe.Raw = b.Raw
			}
			fd.Elements = append(fd.Elements, fe)
			continue
		}
		fe := fileElement{
			Type:            ElementParagraph,
			Heading:         p.Heading(),
			IndentFirstLine: p.IndentFirstLine(),
			IndentStart:     p.IndentStart(),
			IndentEnd:       p.IndentEnd(),
			Alignment:       p.Alignment(),
			Color:           p.ForegroundColor(),
		}
		for c := 0; c < p.NumChildren(); c++ {
			t, err := p.Child(c)
			if err != nil {
				return err
			}
			for _, seg := range BoldSegments(t) {
				fe.Runs = append(fe.Runs, fileRun{Text: seg.Text, Bold: seg.Bold})
			}
		}
		fd.Elements = append(fd.Elements, fe)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(fd)
}
