/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"scriptformatter/internal/export"
	applog "scriptformatter/internal/log"
	"scriptformatter/internal/rewrite"
	"scriptformatter/internal/storage"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		formats  []string
		out      string
		reformat bool
		title    string
	)
	cmd := &cobra.Command{
		Use:   "export <document>",
		Short: "Render a document to PDF or fixed-width text",
		Long: `Renders the document with its current paragraph formatting. With
--reformat the formatting pass runs first, in memory only; the document on
disk is not touched.

Output goes next to the document by default. When that would replace the
document itself (a .txt document exported as txt), ".render" is added to the
name; an explicit --out that names the document is refused.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			l := applog.WithDocument(applog.WithOperation(applog.WithComponent("cli"), "export"), path)
			h, err := storage.OpenDocument(path)
			if err != nil {
				return err
			}
			if reformat {
				sheet, err := a.sheet()
				if err != nil {
					return err
				}
				if _, err := rewrite.New(sheet).Rewrite(cmd.Context(), h.Doc); err != nil {
					return fmt.Errorf("format %s: %w", path, err)
				}
			}
			base := out
			if base == "" {
				base = strings.TrimSuffix(path, filepath.Ext(path))
			}
			clash, err := overwritesSource(path, base, formats)
			if err != nil {
				return err
			}
			if clash {
				if out != "" {
					return fmt.Errorf("export would overwrite %s; choose another --out", path)
				}
				base += renderSuffix
			}
			opt := a.exportOptions()
			if title != "" {
				opt.Title = title
			} else if opt.Title == "" {
				opt.Title = filepath.Base(base)
			}
			files, err := export.ExportAll(h.Doc, base, formats, opt)
			for _, f := range files {
				size := "?"
				if fi, serr := os.Stat(f); serr == nil {
					size = humanize.Bytes(uint64(fi.Size()))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s)\n", f, size)
			}
			if err != nil {
				return err
			}
			l.Info("export done", "files", len(files))
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&formats, "format", "f", []string{"pdf"}, "output formats: pdf, txt")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path without extension (default: next to the document)")
	cmd.Flags().BoolVar(&reformat, "reformat", false, "apply the house style before rendering")
	cmd.Flags().StringVar(&title, "title", "", "document title for PDF metadata")
	return cmd
}

// renderSuffix keeps a default export from landing on its own source,
// e.g. draft.txt renders to draft.render.txt.
const renderSuffix = ".render"

// overwritesSource reports whether exporting to base would replace the document at src.
func overwritesSource(src, base string, formats []string) (bool, error) {
	targets, err := export.Targets(base, formats)
	if err != nil {
		return false, err
	}
	for _, t := range targets {
		if sameFile(src, t) {
			return true, nil
		}
	}
	return false, nil
}

func sameFile(a, b string) bool {
	if journalKey(a) == journalKey(b) {
		return true
	}
	fa, err := os.Stat(a)
	if err != nil {
		return false
	}
	fb, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(fa, fb)
}

func (a *app) exportOptions() export.Options {
	e := a.cfg.Export
	return export.Options{PageSize: e.PageSize, Margin: e.Margin, Font: e.Font, FontSize: e.FontSize}
}
