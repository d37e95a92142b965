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
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		limit int
		all   bool
	)
	cmd := &cobra.Command{
		Use:   "history <document>",
		Short: "List the formatting runs recorded for a document",
		Long: `Lists journal entries newest first. The journal is the SQLite file in the
.sfmt directory next to the document, or the PostgreSQL database named by
journal.dsn in the config.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			j, err := a.openJournal(ctx, args[0])
			if err != nil {
				return err
			}
			defer func() { _ = j.Close() }()
			doc := journalKey(args[0])
			if all {
				doc = ""
			}
			runs, err := j.List(ctx, doc, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "no runs recorded")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tWHEN\tSTYLE\tSTYLED\tREMOVED\tINSERTED\tSTATUS")
			for _, r := range runs {
				status := "ok"
				if r.Err != "" {
					status = "failed: " + r.Err
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					r.ID, humanize.Time(r.StartedAt), r.Styles,
					humanize.Comma(int64(r.Styled)), humanize.Comma(int64(r.Removed)),
					humanize.Comma(int64(r.Inserted)), status)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs")
	cmd.Flags().BoolVar(&all, "all", false, "list runs of every document in the journal")
	cmd.AddCommand(newHistoryShowCmd(a), newHistoryPruneCmd(a))
	return cmd
}

func newHistoryShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <document> <run-id>",
		Short: "Print the document text as it was before a run",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[1])
			if err != nil {
				return fmt.Errorf("run id: %w", err)
			}
			ctx := cmd.Context()
			j, err := a.openJournal(ctx, args[0])
			if err != nil {
				return err
			}
			defer func() { _ = j.Close() }()
			r, err := j.Get(ctx, id)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), r.Snapshot)
			return err
		},
	}
}

func newHistoryPruneCmd(a *app) *cobra.Command {
	var keep int
	cmd := &cobra.Command{
		Use:   "prune <document>",
		Short: "Delete all but the newest runs of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("keep") {
				keep = a.cfg.Journal.Keep
			}
			ctx := cmd.Context()
			j, err := a.openJournal(ctx, args[0])
			if err != nil {
				return err
			}
			defer func() { _ = j.Close() }()
			n, err := j.Prune(ctx, journalKey(args[0]), keep)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", humanize.Comma(n))
			return nil
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 0, "runs to keep (default: journal.keep from the config)")
	return cmd
}
