/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"scriptformatter/internal/document"
)

const (
	// WorkDirName holds per-directory scriptfmt state next to the documents.
	WorkDirName    = ".sfmt"
	BackupsDirName = "backups"
	stampLayout    = "20060102-150405.000"
)

// WorkDir returns the scriptfmt state directory for a document path.
func WorkDir(docPath string) string { return filepath.Join(filepath.Dir(docPath), WorkDirName) }

// BackupDir returns where backups and crash copies of docPath are kept.
func BackupDir(docPath string) string { return filepath.Join(WorkDir(docPath), BackupsDirName) }

// DocHandle is a document loaded from disk together with the format it was read in.
type DocHandle struct {
	Path   string
	Format document.Format
	Doc    *document.MemDocument
	// FromBackup is set when the file itself was unreadable and a backup was loaded instead.
	FromBackup string
}

// OpenDocument reads path in the format implied by its extension. If the file
// is missing or cannot be parsed, the newest backup is tried before giving up.
func OpenDocument(path string) (*DocHandle, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("document path is required")
	}
	format := document.FormatForPath(path)
	doc, err := readDocument(path, format)
	if err == nil {
		return &DocHandle{Path: path, Format: format, Doc: doc}, nil
	}
	bpath, bdoc, berr := openFromLatestBackup(path, format)
	if berr != nil {
		return nil, fmt.Errorf("open %s: %w; backup attempt: %v", path, err, berr)
	}
	return &DocHandle{Path: path, Format: format, Doc: bdoc, FromBackup: bpath}, nil
}

func readDocument(path string, format document.Format) (*document.MemDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return document.Read(f, format)
}

// SaveDocument writes h.Doc back to h.Path. The previous file is copied to a
// timestamped backup first, and the new content replaces it through a rename.
func SaveDocument(h *DocHandle) error {
	if h == nil || h.Doc == nil {
		return errors.New("nil DocHandle")
	}
	if h.Path == "" {
		return errors.New("invalid DocHandle: missing path")
	}
	var buf bytes.Buffer
	if err := document.Write(&buf, h.Doc, h.Format); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	bdir := BackupDir(h.Path)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}
	if _, statErr := os.Stat(h.Path); statErr == nil {
		bname := fmt.Sprintf("%s.%s.bak", filepath.Base(h.Path), time.Now().Format(stampLayout))
		if err := copyFile(h.Path, filepath.Join(bdir, bname)); err != nil {
			return fmt.Errorf("backup current document: %w", err)
		}
	}
	return replaceFile(h.Path, buf.Bytes())
}

// SaveDocumentAs writes the document to a new path and points the handle at it.
// The format follows the new extension.
func SaveDocumentAs(h *DocHandle, path string) error {
	if h == nil {
		return errors.New("nil DocHandle")
	}
	if path == "" {
		return errors.New("new path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create target dir: %w", err)
	}
	h.Path = path
	h.Format = document.FormatForPath(path)
	h.FromBackup = ""
	return SaveDocument(h)
}

// AutosaveCrashCopy dumps body as JSON into the backup directory of docPath and
// returns the file written. It is used when a pass panics halfway.
func AutosaveCrashCopy(docPath string, body document.Body) (string, error) {
	if body == nil {
		return "", errors.New("nil document")
	}
	bdir := BackupDir(docPath)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := document.WriteJSON(&buf, body); err != nil {
		return "", err
	}
	out := filepath.Join(bdir, fmt.Sprintf("%s.crash-%s.json", filepath.Base(docPath), time.Now().Format(stampLayout)))
	return out, writeFileSync(out, buf.Bytes())
}

// Backups lists the backups of docPath, oldest first.
func Backups(docPath string) ([]string, error) {
	ents, err := os.ReadDir(BackupDir(docPath))
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	prefix := filepath.Base(docPath) + "."
	var out []string
	for _, e := range ents {
		name := e.Name()
		if !e.IsDir() && strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(BackupDir(docPath), name))
		}
	}
	// the timestamp in the name sorts lexicographically
	sort.Strings(out)
	return out, nil
}

func openFromLatestBackup(docPath string, format document.Format) (string, *document.MemDocument, error) {
	list, err := Backups(docPath)
	if err != nil {
		return "", nil, err
	}
	if len(list) == 0 {
		return "", nil, errors.New("no backups found")
	}
	latest := list[len(list)-1]
	doc, err := readDocument(latest, format)
	if err != nil {
		return "", nil, fmt.Errorf("read latest backup: %w", err)
	}
	return latest, doc, nil
}

// replaceFile writes data to a temp file in the target directory and renames it over path.
func replaceFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, data); err != nil {
		return fmt.Errorf("write temp document: %w", err)
	}
	// Windows will not rename over an existing file.
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if err := os.Rename(temp, path); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}

func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
