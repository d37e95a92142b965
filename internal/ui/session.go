/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"scriptformatter/internal/addon"
	"scriptformatter/internal/document"
	"scriptformatter/internal/export"
	applog "scriptformatter/internal/log"
	"scriptformatter/internal/rewrite"
	"scriptformatter/internal/storage"
	"scriptformatter/internal/textlayout"
)

// ErrNoPath is returned by Save for a document that was never saved.
var ErrNoPath = errors.New("document has no file yet; use Save As")

// Options configures the editor window.
type Options struct {
	Styles *textlayout.StyleSheet
	Export export.Options
}

// Session is the editor state behind the window: the open document, its
// add-on dispatcher and a dirty flag. It has no widget dependencies.
//
// Session also implements document.Body by delegating to whatever document is
// currently open, so a crash handler installed at start-up sees later edits.
type Session struct {
	opt   Options
	h     *storage.DocHandle
	addon *addon.Addon
	dirty bool
	log   *slog.Logger
}

// NewSession starts with an empty, untitled document.
func NewSession(opt Options) *Session {
	s := &Session{
		opt: opt,
		h:   &storage.DocHandle{Format: document.FormatText, Doc: document.FromLines("")},
		log: applog.WithComponent("ui"),
	}
	s.addon = addon.New(func() (document.Body, error) {
		if s.h == nil || s.h.Doc == nil {
			return nil, errors.New("no document open")
		}
		return s.h.Doc, nil
	}, rewrite.New(opt.Styles))
	return s
}

// Open replaces the current document with the one at path.
func (s *Session) Open(path string) error {
	h, err := storage.OpenDocument(path)
	if err != nil {
		return err
	}
	if h.FromBackup != "" {
		s.log.Warn("opened from backup", "doc", path, "backup", h.FromBackup)
	}
	s.h = h
	s.dirty = false
	return nil
}

// Path is the file the document is saved to, empty when untitled.
func (s *Session) Path() string { return s.h.Path }

// Dirty reports unsaved changes.
func (s *Session) Dirty() bool { return s.dirty }

// Doc returns the open document.
func (s *Session) Doc() *document.MemDocument { return s.h.Doc }

// Text is the document as editor text, one line per paragraph.
func (s *Session) Text() string {
	var b strings.Builder
	if err := document.WriteText(&b, s.h.Doc); err != nil {
		s.log.Error("render text", slog.Any("err", err))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Edit replaces the paragraphs with the lines of text, one paragraph per line,
// so a trailing newline keeps a trailing empty paragraph and Edit(Text()) is
// exact. Paragraph formatting does not survive an edit; Update Formatting
// restores it. Text equal to the current text is ignored.
func (s *Session) Edit(text string) error {
	if text == s.Text() {
		return nil
	}
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	s.h.Doc = document.FromLines(lines...)
	s.dirty = true
	return nil
}

// RegisterMenu hands the add-on menu to ui, the way a host does when a document opens.
func (s *Session) RegisterMenu(ui addon.UI) error {
	return addon.OnOpen(ui, addon.Event{AuthMode: addon.AuthFull})
}

// Invoke runs a menu function against the open document.
func (s *Session) Invoke(ctx context.Context, name string) (rewrite.Stats, error) {
	st, err := s.addon.Invoke(ctx, name)
	if st.Removed > 0 || st.Styled > 0 || st.Inserted > 0 {
		s.dirty = true
	}
	return st, err
}

// Preview writes the fixed-width text rendering of the document.
func (s *Session) Preview(w io.Writer) error {
	return export.DocumentText(w, s.h.Doc, s.opt.Export)
}

// ExportPDF renders the document to path.
func (s *Session) ExportPDF(path string) error {
	return export.DocumentPDF(s.h.Doc, path, s.opt.Export)
}

// Save writes the document to its file, keeping a backup of the previous version.
func (s *Session) Save() error {
	if s.h.Path == "" {
		return ErrNoPath
	}
	if err := storage.SaveDocument(s.h); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// SaveAs writes the document to path and keeps editing that file.
func (s *Session) SaveAs(path string) error {
	if err := storage.SaveDocumentAs(s.h, path); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

func (s *Session) NumChildren() int { return s.h.Doc.NumChildren() }

func (s *Session) Child(i int) (document.Element, error) { return s.h.Doc.Child(i) }

func (s *Session) InsertParagraph(i int, text string) (document.Paragraph, error) {
	return s.h.Doc.InsertParagraph(i, text)
}

func (s *Session) RemoveChild(i int) error { return s.h.Doc.RemoveChild(i) }
