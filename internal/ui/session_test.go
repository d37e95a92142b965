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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptformatter/internal/addon"
	"scriptformatter/internal/document"
	"scriptformatter/internal/storage"
)

func TestSessionStartsUntitled(t *testing.T) {
	s := NewSession(Options{})
	assert.Equal(t, "", s.Path())
	assert.Equal(t, "", s.Text())
	assert.False(t, s.Dirty())
	assert.ErrorIs(t, s.Save(), ErrNoPath)
}

func TestSessionEditIgnoresUnchangedText(t *testing.T) {
	s := NewSession(Options{})
	require.NoError(t, s.Edit("a\nb"))
	assert.True(t, s.Dirty())
	doc := s.Doc()
	require.NoError(t, s.Edit(s.Text()))
	assert.Same(t, doc, s.Doc())
}

func TestSessionEditKeepsTrailingEmptyParagraph(t *testing.T) {
	s := NewSession(Options{})
	require.NoError(t, s.Edit("INT. LAB\nGo.\n"))
	require.Equal(t, 3, s.Doc().NumChildren())
	assert.Equal(t, "INT. LAB\nGo.\n", s.Text())

	doc := s.Doc()
	require.NoError(t, s.Edit(s.Text()))
	assert.Same(t, doc, s.Doc())

	st, err := s.Invoke(context.Background(), addon.FunctionReformat)
	require.NoError(t, err)
	assert.True(t, st.StoppedAtLast)
	assert.Equal(t, "INT. LAB\n\nGo.\n\n", s.Text())
}

func TestSessionMenuAndReformat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "draft.txt")
	require.NoError(t, os.WriteFile(path, []byte("My Script\nINT. LAB - NIGHT\n\n\n-BOB-\nHello.\n"), 0o644))

	s := NewSession(Options{})
	require.NoError(t, s.Open(path))
	assert.False(t, s.Dirty())

	ui := &addon.MemUI{}
	require.NoError(t, s.RegisterMenu(ui))
	require.Len(t, ui.Items, 1)

	st, err := s.Invoke(context.Background(), ui.Items[0].Function)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Removed)
	assert.True(t, s.Dirty())
	assert.Equal(t, "My Script\nINT. LAB - NIGHT\n\n-BOB-\nHello.\n", s.Text())

	require.NoError(t, s.Save())
	assert.False(t, s.Dirty())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "My Script\nINT. LAB - NIGHT\n\n-BOB-\nHello.\n\n", string(data))

	backups, err := storage.Backups(path)
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestSessionInvokeUnknownFunction(t *testing.T) {
	s := NewSession(Options{})
	_, err := s.Invoke(context.Background(), "nope")
	assert.ErrorIs(t, err, addon.ErrUnknownFunction)
	assert.False(t, s.Dirty())
}

func TestSessionIsABody(t *testing.T) {
	s := NewSession(Options{})
	require.NoError(t, s.Edit("one\ntwo"))
	var body document.Body = s
	require.Equal(t, 2, body.NumChildren())
	_, err := body.InsertParagraph(1, "mid")
	require.NoError(t, err)
	require.NoError(t, body.RemoveChild(0))
	assert.Equal(t, "mid\ntwo", s.Text())
}

func TestSessionPreviewAndExport(t *testing.T) {
	s := NewSession(Options{})
	require.NoError(t, s.Edit("INT. LAB - NIGHT"))
	_, err := s.Invoke(context.Background(), addon.FunctionReformat)
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, s.Preview(&b))
	assert.Contains(t, b.String(), "INT. LAB - NIGHT")

	out := filepath.Join(t.TempDir(), "lab.pdf")
	require.NoError(t, s.ExportPDF(out))
	fi, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, fi.Size(), int64(0))

	require.NoError(t, s.SaveAs(filepath.Join(t.TempDir(), "lab.json")))
	assert.False(t, s.Dirty())
	assert.Equal(t, ".json", filepath.Ext(s.Path()))
}
