/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"scriptformatter/internal/document"
)

// headingScale enlarges heading paragraphs relative to the body font size.
var headingScale = map[document.Heading]float64{
	document.HeadingTitle:    2.0,
	document.HeadingSubtitle: 1.5,
	document.Heading1:        1.8,
	document.Heading2:        1.5,
	document.Heading3:        1.3,
	document.Heading4:        1.15,
	document.Heading5:        1.05,
	document.Heading6:        1.0,
}

// DocumentPDF renders body to a PDF file at outPath.
func DocumentPDF(body document.Body, outPath string, opt Options) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create pdf: %w", err)
	}
	if err := WritePDF(f, body, opt); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// WritePDF renders body as PDF into w using a core font, so no font files are embedded.
//
// Paragraph indents, alignment, color, heading level and bold runs are honoured.
// Left-aligned paragraphs flow run by run so bold spans survive; centred and
// right-aligned ones are set as a single cell. Page breaks start a new page,
// horizontal rules draw a line and other elements leave a bracketed placeholder.
func WritePDF(w io.Writer, body document.Body, opt Options) error {
	if body == nil {
		return fmt.Errorf("document is nil")
	}
	opt = opt.normalized()
	pw, ph := opt.pageSize()

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pw, Ht: ph},
	})
	if opt.Title != "" {
		pdf.SetTitle(opt.Title, true)
	}
	pdf.SetCreator("scriptfmt", false)
	pdf.SetMargins(opt.Margin, opt.Margin, opt.Margin)
	pdf.SetAutoPageBreak(true, opt.Margin)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for i := 0; i < body.NumChildren(); i++ {
		el, err := body.Child(i)
		if err != nil {
			return err
		}
		p, ok := document.AsParagraph(el)
		if !ok {
			drawBlock(pdf, el.Type(), opt, pw)
			continue
		}
		if err := drawParagraph(pdf, tr, p, opt, pw); err != nil {
			return fmt.Errorf("paragraph %d: %w", i, err)
		}
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func drawBlock(pdf *gofpdf.Fpdf, kind document.ElementType, opt Options, pw float64) {
	lineH := opt.FontSize * 1.2
	switch kind {
	case document.ElementPageBreak:
		pdf.AddPage()
	case document.ElementHorizontalRule:
		y := pdf.GetY() + lineH/2
		pdf.SetDrawColor(0, 0, 0)
		pdf.SetLineWidth(0.5)
		pdf.Line(opt.Margin, y, pw-opt.Margin, y)
		pdf.Ln(lineH)
	default:
		pdf.SetLeftMargin(opt.Margin)
		pdf.SetRightMargin(opt.Margin)
		pdf.SetX(opt.Margin)
		pdf.SetFont(opt.Font, "I", opt.FontSize)
		pdf.SetTextColor(128, 128, 128)
		pdf.Write(lineH, "["+kind.String()+"]")
		pdf.Ln(lineH)
	}
}

func drawParagraph(pdf *gofpdf.Fpdf, tr func(string) string, p document.Paragraph, opt Options, pw float64) error {
	size := opt.FontSize
	headingBold := false
	if s, ok := headingScale[p.Heading()]; ok {
		size *= s
		headingBold = true
	}
	lineH := size * 1.2

	r, g, b, err := parseHex(p.ForegroundColor())
	if err != nil {
		return err
	}
	pdf.SetTextColor(r, g, b)

	left := opt.Margin + p.IndentStart()
	first := opt.Margin + p.IndentFirstLine()
	right := opt.Margin + p.IndentEnd()
	if left+right >= pw {
		left, first, right = opt.Margin, opt.Margin, opt.Margin
	}
	pdf.SetLeftMargin(left)
	pdf.SetRightMargin(right)

	var segs []document.Segment
	for c := 0; c < p.NumChildren(); c++ {
		t, err := p.Child(c)
		if err != nil {
			return err
		}
		segs = append(segs, document.BoldSegments(t)...)
	}
	if len(segs) == 0 {
		pdf.Ln(lineH)
		return nil
	}

	style := func(bold bool) string {
		if bold || headingBold {
			return "B"
		}
		return ""
	}

	switch p.Alignment() {
	case document.AlignCenter, document.AlignRight:
		align := "C"
		if p.Alignment() == document.AlignRight {
			align = "R"
		}
		allBold := true
		var text strings.Builder
		for _, s := range segs {
			allBold = allBold && s.Bold
			text.WriteString(s.Text)
		}
		pdf.SetFont(opt.Font, style(allBold), size)
		pdf.SetX(left)
		pdf.MultiCell(pw-left-right, lineH, tr(text.String()), "", align, false)
	default:
		pdf.SetX(first)
		for _, s := range segs {
			pdf.SetFont(opt.Font, style(s.Bold), size)
			pdf.Write(lineH, tr(s.Text))
		}
		pdf.Ln(lineH)
	}
	return nil
}

// parseHex reads "#rrggbb". Empty means black.
func parseHex(c string) (int, int, int, error) {
	if c == "" {
		return 0, 0, 0, nil
	}
	if len(c) != 7 || c[0] != '#' {
		return 0, 0, 0, fmt.Errorf("color %q is not #rrggbb", c)
	}
	v, err := strconv.ParseUint(c[1:], 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("color %q: %w", c, err)
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), nil
}
