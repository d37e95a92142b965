/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a formatted document to PDF or to fixed-width text.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"scriptformatter/internal/document"
)

// Options controls page geometry for every exporter. Lengths are points.
type Options struct {
	PageSize string // "Letter" (default) or "A4"
	Margin   float64
	Font     string // a PDF core font: Courier, Helvetica or Times
	FontSize float64
	Title    string
}

// DefaultOptions matches a US Letter screenplay page in 12pt Courier.
func DefaultOptions() Options {
	return Options{PageSize: "Letter", Margin: 72, Font: "Courier", FontSize: 12}
}

// pageSize returns width and height in points.
func (o Options) pageSize() (float64, float64) {
	if strings.EqualFold(o.PageSize, "A4") {
		return 595.28, 841.89
	}
	return 612, 792
}

// TextWidth is the printable width between the page margins.
func (o Options) TextWidth() float64 {
	w, _ := o.pageSize()
	return w - 2*o.normalized().Margin
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.PageSize == "" {
		o.PageSize = d.PageSize
	}
	if o.Margin <= 0 {
		o.Margin = d.Margin
	}
	if o.Font == "" {
		o.Font = d.Font
	}
	if o.FontSize <= 0 {
		o.FontSize = d.FontSize
	}
	return o
}

// Format names an export target.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatText Format = "txt"
)

// ParseFormat accepts pdf, txt and text, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf":
		return FormatPDF, nil
	case "txt", "text":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown export format: %s", s)
}

// OutputPath is the file ExportAll writes for format f.
func OutputPath(base string, f Format) string { return base + "." + string(f) }

// Targets lists the files ExportAll would write for base and formats, in order.
func Targets(base string, formats []string) ([]string, error) {
	if len(formats) == 0 {
		formats = []string{string(FormatPDF)}
	}
	out := make([]string, 0, len(formats))
	for _, name := range formats {
		f, err := ParseFormat(name)
		if err != nil {
			return nil, err
		}
		out = append(out, OutputPath(base, f))
	}
	return out, nil
}

// ExportAll writes body once per format next to base (base without extension,
// e.g. "out/draft" gives out/draft.pdf and out/draft.txt) and returns the files written.
func ExportAll(body document.Body, base string, formats []string, opt Options) ([]string, error) {
	if body == nil {
		return nil, fmt.Errorf("document is nil")
	}
	if len(formats) == 0 {
		formats = []string{string(FormatPDF)}
	}
	if err := os.MkdirAll(filepath.Dir(base), 0o755); err != nil {
		return nil, fmt.Errorf("ensure out dir: %w", err)
	}
	var written []string
	for _, name := range formats {
		f, err := ParseFormat(name)
		if err != nil {
			return written, err
		}
		out := OutputPath(base, f)
		switch f {
		case FormatPDF:
			err = DocumentPDF(body, out, opt)
		case FormatText:
			err = DocumentTextFile(body, out, opt)
		}
		if err != nil {
			return written, fmt.Errorf("%s: %w", f, err)
		}
		written = append(written, out)
	}
	return written, nil
}
