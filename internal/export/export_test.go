/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scriptformatter/internal/document"
	"scriptformatter/internal/rewrite"
)

func formattedScene(t *testing.T) *document.MemDocument {
	t.Helper()
	d := document.FromLines(
		"INT. KITCHEN - DAY",
		"[SFX: kettle] Anna stands by the window, staring at the rain that has not stopped for three days now.",
		"-ANNA-",
		"(quietly)",
		"WHERE IS IT?",
		">INTERMISSION<",
		"CUT TO:",
	)
	if _, err := rewrite.Rewrite(context.Background(), d); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	return d
}

func TestWritePDF(t *testing.T) {
	d := formattedScene(t)
	d.AppendBlock(document.ElementHorizontalRule, nil)
	d.AppendBlock(document.ElementTable, nil)
	d.AppendBlock(document.ElementPageBreak, nil)
	d.AppendParagraph("# Act Two")

	var buf bytes.Buffer
	if err := WritePDF(&buf, d, Options{Title: "Kitchen"}); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", buf.Bytes()[:8])
	}
}

func TestDocumentPDFCreatesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "exports", "scene.pdf")
	if err := DocumentPDF(formattedScene(t), out, Options{PageSize: "A4"}); err != nil {
		t.Fatalf("DocumentPDF: %v", err)
	}
	st, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if st.Size() <= 0 {
		t.Fatalf("pdf file empty")
	}
}

func TestWritePDFRejectsBadColor(t *testing.T) {
	d := document.FromLines("text")
	p, _ := d.Paragraph(0)
	_ = p.SetForegroundColor("red")
	if err := WritePDF(&bytes.Buffer{}, d, DefaultOptions()); err == nil {
		t.Fatalf("expected color error")
	}
}

func TestParseHex(t *testing.T) {
	r, g, b, err := parseHex("#ff00Aa")
	if err != nil || r != 255 || g != 0 || b != 170 {
		t.Fatalf("parseHex = %d %d %d %v", r, g, b, err)
	}
	if r, g, b, err := parseHex(""); err != nil || r+g+b != 0 {
		t.Fatalf("empty color should be black")
	}
}

func TestDocumentTextIndentsAndAlignment(t *testing.T) {
	var buf bytes.Buffer
	if err := DocumentText(&buf, formattedScene(t), DefaultOptions()); err != nil {
		t.Fatalf("DocumentText: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")

	find := func(text string) string {
		for _, l := range lines {
			if strings.TrimSpace(l) == text {
				return l
			}
		}
		t.Fatalf("line %q not found in:\n%s", text, buf.String())
		return ""
	}
	lead := func(s string) int { return len(s) - len(strings.TrimLeft(s, " ")) }

	if got := lead(find("INT. KITCHEN - DAY")); got != 0 {
		t.Fatalf("location indent = %d", got)
	}
	if got := lead(find("-ANNA-")); got != 25 {
		t.Fatalf("character indent = %d, want 25", got)
	}
	if got := lead(find("(quietly)")); got != 20 {
		t.Fatalf("parenthetical indent = %d, want 20", got)
	}
	if got := lead(find("WHERE IS IT?")); got != 15 {
		t.Fatalf("dialog indent = %d, want 15", got)
	}
	if l := find("CUT TO:"); len(l) != 66 {
		t.Fatalf("right aligned line should end at column 66: %q", l)
	}
	if got := lead(find(">INTERMISSION<")); got != (66-14)/2 {
		t.Fatalf("centred indent = %d", got)
	}
	for _, l := range lines {
		if len([]rune(l)) > 66 {
			t.Fatalf("line exceeds page width: %q", l)
		}
	}
}

func TestDocumentTextWrapsAction(t *testing.T) {
	var buf bytes.Buffer
	if err := DocumentText(&buf, formattedScene(t), DefaultOptions()); err != nil {
		t.Fatalf("DocumentText: %v", err)
	}
	var action []string
	for _, l := range strings.Split(buf.String(), "\n") {
		if strings.HasPrefix(l, "     ") && !strings.HasPrefix(l, "      ") {
			action = append(action, l)
		}
	}
	if len(action) < 2 {
		t.Fatalf("expected the action paragraph to wrap, got %q", action)
	}
	if !strings.HasPrefix(action[0], "     [SFX: kettle]") {
		t.Fatalf("first action line = %q", action[0])
	}
}

func TestDocumentTextBlocks(t *testing.T) {
	d := document.NewMemDocument()
	d.AppendBlock(document.ElementHorizontalRule, nil)
	d.AppendBlock(document.ElementImage, nil)
	d.AppendParagraph("")
	var buf bytes.Buffer
	if err := DocumentText(&buf, d, DefaultOptions()); err != nil {
		t.Fatalf("DocumentText: %v", err)
	}
	want := strings.Repeat("-", 66) + "\n[image]\n\n"
	if buf.String() != want {
		t.Fatalf("blocks rendered as %q", buf.String())
	}
}

func TestExportAll(t *testing.T) {
	base := filepath.Join(t.TempDir(), "out", "scene")
	files, err := ExportAll(formattedScene(t), base, []string{"PDF", "text"}, DefaultOptions())
	if err != nil {
		t.Fatalf("ExportAll: %v", err)
	}
	if len(files) != 2 || files[0] != base+".pdf" || files[1] != base+".txt" {
		t.Fatalf("files = %v", files)
	}
	targets, err := Targets(base, []string{"PDF", "text"})
	if err != nil {
		t.Fatalf("Targets: %v", err)
	}
	if len(targets) != 2 || targets[0] != files[0] || targets[1] != files[1] {
		t.Fatalf("Targets = %v, ExportAll wrote %v", targets, files)
	}
	if _, err := Targets(base, []string{"docx"}); err == nil {
		t.Fatalf("expected unknown format error from Targets")
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			t.Fatalf("stat %s: %v", f, err)
		}
	}
	if _, err := ExportAll(formattedScene(t), base, []string{"docx"}, DefaultOptions()); err == nil {
		t.Fatalf("expected unknown format error")
	}
}
