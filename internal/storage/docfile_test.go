/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptformatter/internal/document"
)

func TestSaveDocumentKeepsBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "draft.txt")
	require.NoError(t, os.WriteFile(path, []byte("INT. A\nhello\n"), 0o644))

	h, err := OpenDocument(path)
	require.NoError(t, err)
	assert.Equal(t, document.FormatText, h.Format)
	assert.Equal(t, []string{"INT. A", "hello"}, h.Doc.Texts())

	h.Doc.AppendParagraph("bye")
	require.NoError(t, SaveDocument(h))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "INT. A\nhello\nbye\n", string(got))

	backups, err := Backups(path)
	require.NoError(t, err)
	require.Len(t, backups, 1)
	old, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	assert.Equal(t, "INT. A\nhello\n", string(old))

	// no temp files left behind
	ents, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range ents {
		assert.False(t, strings.Contains(e.Name(), ".tmp-"), "leftover %s", e.Name())
	}
}

func TestOpenDocumentFallsBackToBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "draft.json")
	d := document.FromLines("INT. A", "He waits.")
	h := &DocHandle{Path: path, Format: document.FormatJSON, Doc: d}
	require.NoError(t, SaveDocument(h))
	require.NoError(t, SaveDocument(h)) // second save backs up the first

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	h2, err := OpenDocument(path)
	require.NoError(t, err)
	assert.NotEmpty(t, h2.FromBackup)
	assert.Equal(t, []string{"INT. A", "He waits."}, h2.Doc.Texts())
}

func TestOpenDocumentWithoutFileOrBackup(t *testing.T) {
	_, err := OpenDocument(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	_, err = OpenDocument("  ")
	require.Error(t, err)
}

func TestSaveDocumentAsSwitchesFormat(t *testing.T) {
	dir := t.TempDir()
	h := &DocHandle{Path: filepath.Join(dir, "a.txt"), Format: document.FormatText, Doc: document.FromLines("X")}
	target := filepath.Join(dir, "out", "a.json")
	require.NoError(t, SaveDocumentAs(h, target))
	assert.Equal(t, document.FormatJSON, h.Format)

	h2, err := OpenDocument(target)
	require.NoError(t, err)
	assert.Equal(t, []string{"X"}, h2.Doc.Texts())
}

func TestAutosaveCrashCopy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "draft.txt")
	out, err := AutosaveCrashCopy(path, document.FromLines("INT. A"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, BackupDir(path)))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	d, err := document.ReadJSON(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"INT. A"}, d.Texts())

	_, err = AutosaveCrashCopy(path, nil)
	assert.Error(t, err)
}
