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
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"scriptformatter/internal/script"
)

func newClassifyCmd(_ *app) *cobra.Command {
	var summary bool
	cmd := &cobra.Command{
		Use:   "classify [file|-]",
		Short: "Show how each line of a text would be classified",
		Long: `Prints one line per input line: the line number, the paragraph type and
the text. Reads stdin when no file or "-" is given. Nothing is modified.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if len(args) == 0 || args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			lines := script.ClassifyText(string(data))
			out := cmd.OutOrStdout()
			if summary {
				counts := script.Counts(lines)
				for _, t := range script.AllTypes() {
					if n := counts[t]; n > 0 {
						fmt.Fprintf(out, "%-12s %s\n", t, humanize.Comma(int64(n)))
					}
				}
				return nil
			}
			for _, l := range lines {
				fmt.Fprintf(out, "%4d  %-12s %s\n", l.LineNo, l.Type, l.Text)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&summary, "summary", "s", false, "print counts per type instead of every line")
	return cmd
}
