/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"scriptformatter/internal/addon"
	"scriptformatter/internal/crash"
	"scriptformatter/internal/document"
	applog "scriptformatter/internal/log"
	"scriptformatter/internal/rewrite"
	"scriptformatter/internal/script"
	"scriptformatter/internal/storage"
)

type formatOptions struct {
	out       string
	dryRun    bool
	noJournal bool
	print     bool
}

func newFormatCmd(a *app) *cobra.Command {
	var o formatOptions
	cmd := &cobra.Command{
		Use:   "format <document>",
		Short: "Reformat a document to the house style",
		Long: `Runs one formatting pass over a document and saves it. The previous
version is kept in the .sfmt/backups directory next to the document, and the
pass is recorded in the run journal unless --no-journal is given.

Plain text (.txt, .fountain) is read one paragraph per line; .json files are
host document dumps that keep paragraph formatting.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFormat(cmd, args[0], o)
		},
	}
	cmd.Flags().StringVarP(&o.out, "out", "o", "", "write the result here instead of over the document")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "report what would change without saving")
	cmd.Flags().BoolVar(&o.noJournal, "no-journal", false, "do not record the run")
	cmd.Flags().BoolVar(&o.print, "print", false, "print the formatted text to stdout")
	return cmd
}

func (a *app) runFormat(cmd *cobra.Command, path string, o formatOptions) error {
	ctx := cmd.Context()
	l := applog.WithDocument(applog.WithComponent("cli"), path)

	sheet, err := a.sheet()
	if err != nil {
		return err
	}
	h, err := storage.OpenDocument(path)
	if err != nil {
		return err
	}
	if h.FromBackup != "" {
		l.Warn("document unreadable, formatting latest backup", "backup", h.FromBackup)
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s could not be read, using backup %s\n", path, h.FromBackup)
	}
	defer crash.Recover(path, h.Doc)

	var snap strings.Builder
	if err := document.WriteText(&snap, h.Doc); err != nil {
		return err
	}
	run := storage.Run{
		ID:        uuid.New(),
		Document:  journalKey(path),
		StartedAt: time.Now().UTC(),
		Styles:    sheet.Name,
		Snapshot:  snap.String(),
	}
	ctx = applog.ContextWithRun(ctx, run.ID.String())

	// The command line acts as the add-on host: the open document is the active one.
	ad := addon.New(func() (document.Body, error) { return h.Doc, nil }, rewrite.New(sheet))
	st, runErr := ad.Invoke(ctx, addon.FunctionReformat)
	run.Duration = time.Since(run.StartedAt)
	run.Visited, run.Skipped, run.Removed = st.Visited, st.Skipped, st.Removed
	run.Styled, run.Inserted, run.StoppedAtLast = st.Styled, st.Inserted, st.StoppedAtLast
	if runErr != nil {
		run.Err = runErr.Error()
	}

	if runErr == nil && !o.dryRun {
		if o.out != "" {
			err = storage.SaveDocumentAs(h, o.out)
		} else {
			err = storage.SaveDocument(h)
		}
		if err != nil {
			return err
		}
	}
	if a.cfg.Journal.Enabled && !o.noJournal && !o.dryRun {
		a.record(ctx, l, path, run)
	}
	if runErr != nil {
		return fmt.Errorf("format %s: %w", path, runErr)
	}

	out := cmd.OutOrStdout()
	printSummary(out, h.Path, st, o.dryRun)
	if a.verbose {
		printByType(out, st.ByType)
	}
	if o.print {
		return document.WriteText(out, h.Doc)
	}
	return nil
}

// record stores run in the journal and prunes old entries. Journal trouble
// never fails a format that already succeeded.
func (a *app) record(ctx context.Context, l *slog.Logger, docPath string, run storage.Run) {
	j, err := a.openJournal(ctx, docPath)
	if err != nil {
		l.Warn("journal unavailable", slog.Any("err", err))
		return
	}
	defer func() { _ = j.Close() }()
	if _, err := j.Record(ctx, run); err != nil {
		l.Warn("journal record failed", slog.Any("err", err))
		return
	}
	if n, err := j.Prune(ctx, run.Document, a.cfg.Journal.Keep); err != nil {
		l.Warn("journal prune failed", slog.Any("err", err))
	} else if n > 0 {
		l.Debug("journal pruned", slog.Int64("deleted", n))
	}
}

func (a *app) openJournal(ctx context.Context, docPath string) (*storage.Journal, error) {
	return storage.OpenJournal(ctx, a.cfg.Journal.DSN, a.secret, docPath)
}

// journalKey identifies a document across working directories.
func journalKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func printSummary(w io.Writer, path string, st rewrite.Stats, dry bool) {
	verb := "formatted"
	if dry {
		verb = "would format"
	}
	fmt.Fprintf(w, "%s: %s %s, removed %s, inserted %s, skipped %s\n",
		filepath.Base(path), verb,
		english.Plural(st.Styled, "paragraph", ""),
		english.Plural(st.Removed, "blank line", ""),
		english.Plural(st.Inserted, "blank line", ""),
		english.Plural(st.Skipped, "element", ""))
	if st.StoppedAtLast {
		fmt.Fprintln(w, "stopped at the trailing blank paragraph")
	}
}

func printByType(w io.Writer, by map[script.ParagraphType]int) {
	var parts []string
	for _, t := range script.AllTypes() {
		if n := by[t]; n > 0 {
			parts = append(parts, t.String()+" "+humanize.Comma(int64(n)))
		}
	}
	if len(parts) > 0 {
		fmt.Fprintln(w, "by type: "+strings.Join(parts, ", "))
	}
}
