/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package stylepack shares house styles: a directory of YAML house-style files
// is zipped into a pack, and a pack is installed back into a styles directory.
package stylepack

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	applog "scriptformatter/internal/log"
	"scriptformatter/internal/textlayout"
)

// ManifestName is the human-readable index stored at the root of every pack.
const ManifestName = "stylepack.manifest.txt"

// maxStyleSize bounds a single house-style file read from a pack.
const maxStyleSize = 1 << 20

// Entry is one installed house style.
type Entry struct {
	Name string // the name declared in the file, or the file stem
	File string
}

func isStyleFile(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// List returns the valid house styles in dir, sorted by file name. Files that do
// not parse are logged and left out. A missing directory lists nothing.
func List(dir string) ([]Entry, error) {
	ents, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read styles dir: %w", err)
	}
	l := applog.WithComponent("stylepack")
	var out []Entry
	for _, e := range ents {
		if e.IsDir() || !isStyleFile(e.Name()) {
			continue
		}
		p := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		hs, err := textlayout.ParseHouseStyle(data)
		if err != nil {
			l.Warn("skip invalid house style", slog.String("file", p), slog.Any("err", err))
			continue
		}
		name := hs.Name
		if name == "" {
			name = strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		}
		out = append(out, Entry{Name: name, File: p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].File < out[j].File })
	return out, nil
}

// Find returns the file of the house style called name (case-insensitive) in dir.
func Find(dir, name string) (string, error) {
	list, err := List(dir)
	if err != nil {
		return "", err
	}
	for _, e := range list {
		if strings.EqualFold(e.Name, name) {
			return e.File, nil
		}
	}
	return "", fmt.Errorf("house style %q not found in %s", name, dir)
}

// Export zips every valid house style in dir into destZip, together with a
// manifest listing them. It returns how many styles were packed.
func Export(dir, destZip string) (n int, err error) {
	l := applog.WithOperation(applog.WithComponent("stylepack"), "export").With(slog.String("dir", dir))
	if strings.TrimSpace(dir) == "" {
		return 0, errors.New("styles dir is required")
	}
	if strings.TrimSpace(destZip) == "" {
		return 0, errors.New("destination zip is required")
	}
	list, err := List(dir)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(destZip), 0o755); err != nil {
		return 0, fmt.Errorf("ensure zip dir: %w", err)
	}
	// Windows will not truncate a file another handle still has open.
	_ = os.Remove(destZip)

	zf, err := os.Create(destZip)
	if err != nil {
		return 0, fmt.Errorf("create zip: %w", err)
	}
	defer func() {
		if cerr := zf.Close(); err == nil {
			err = cerr
		}
	}()
	zw := zip.NewWriter(zf)

	var manifest strings.Builder
	fmt.Fprintf(&manifest, "scriptfmt style pack\nCreated: %s\n\n", time.Now().Format(time.RFC3339))
	for _, e := range list {
		fmt.Fprintf(&manifest, "%s\t%s\n", e.Name, filepath.Base(e.File))
	}
	w, err := zw.Create(ManifestName)
	if err != nil {
		return 0, fmt.Errorf("add manifest: %w", err)
	}
	if _, err := io.WriteString(w, manifest.String()); err != nil {
		return 0, fmt.Errorf("write manifest: %w", err)
	}

	for _, e := range list {
		if err := addFile(zw, e.File, filepath.Base(e.File)); err != nil {
			return n, fmt.Errorf("add %s: %w", e.File, err)
		}
		n++
	}
	if err := zw.Close(); err != nil {
		return n, fmt.Errorf("finish zip: %w", err)
	}
	l.Info("style pack exported", slog.Int("styles", n), slog.String("zip", destZip))
	return n, nil
}

func addFile(zw *zip.Writer, src, name string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}

// Install extracts the house styles of packZip into dir. Only YAML files that
// parse as house styles are installed, flattened to their base name; existing
// files are kept. It returns how many files were written.
func Install(dir, packZip string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("stylepack"), "install").With(slog.String("dir", dir))
	if strings.TrimSpace(dir) == "" {
		return 0, errors.New("styles dir is required")
	}
	if strings.TrimSpace(packZip) == "" {
		return 0, errors.New("pack zip is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("ensure styles dir: %w", err)
	}
	// Insecure names are tolerated here; entries are flattened below.
	r, err := zip.OpenReader(packZip)
	if err != nil && (r == nil || !errors.Is(err, zip.ErrInsecurePath)) {
		return 0, fmt.Errorf("open pack: %w", err)
	}
	defer func() { _ = r.Close() }()

	installed := 0
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !isStyleFile(f.Name) {
			continue
		}
		// Entries are flattened, so "../x.yaml" cannot leave dir.
		base := path.Base(strings.ReplaceAll(f.Name, `\`, "/"))
		if base == "." || base == ".." || strings.HasPrefix(base, ".") {
			l.Warn("skip suspicious entry", slog.String("entry", f.Name))
			continue
		}
		target := filepath.Join(dir, base)
		if _, err := os.Stat(target); err == nil {
			l.Warn("skip existing file", slog.String("path", target))
			continue
		}
		data, err := readEntry(f)
		if err != nil {
			return installed, fmt.Errorf("read %s: %w", f.Name, err)
		}
		if _, err := textlayout.ParseHouseStyle(data); err != nil {
			l.Warn("skip invalid house style", slog.String("entry", f.Name), slog.Any("err", err))
			continue
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return installed, err
		}
		installed++
	}
	l.Info("style pack installed", slog.Int("files", installed))
	return installed, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(io.LimitReader(rc, maxStyleSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxStyleSize {
		return nil, errors.New("house style too large")
	}
	return data, nil
}
