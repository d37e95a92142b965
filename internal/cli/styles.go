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
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"scriptformatter/internal/stylepack"
	"scriptformatter/internal/textlayout"
)

func newStylesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "styles",
		Short: "Inspect, share and install house styles",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List installed house styles",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				dir, err := a.stylesDir()
				if err != nil {
					return err
				}
				list, err := stylepack.List(dir)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "builtin\t(always available)")
				for _, e := range list {
					fmt.Fprintf(out, "%s\t%s\n", e.Name, e.File)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective style of every paragraph type",
			Long:  `Resolves the style sheet the format command would use (see --style) and prints it.`,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				sheet, err := a.sheet()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "style: %s\n", sheet.Name)
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "TYPE\tHEADING\tLEFT\tRIGHT\tALIGN\tCOLOR\tBOLD\tBLANK AFTER")
				for _, st := range sheet.Styles() {
					fmt.Fprintln(tw, styleRow(st))
				}
				return tw.Flush()
			},
		},
		&cobra.Command{
			Use:   "pack <zip>",
			Short: "Bundle every installed house style into a zip",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				dir, err := a.stylesDir()
				if err != nil {
					return err
				}
				n, err := stylepack.Export(dir, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "packed %d styles into %s\n", n, args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "install <zip>",
			Short: "Install the house styles from a style pack",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				dir, err := a.stylesDir()
				if err != nil {
					return err
				}
				n, err := stylepack.Install(dir, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "installed %d styles into %s\n", n, dir)
				return nil
			},
		},
	)
	return cmd
}

// styleRow renders one resolved style as a tab-separated row. Attributes the
// style leaves to the host print as "-".
func styleRow(st textlayout.TypeStyle) string {
	cells := []string{st.Type.String(), "-", "-", "-", "-", "-", "-", strconv.FormatBool(st.AddBlankLine)}
	if t := st.Template; t != nil {
		if t.Heading != nil {
			cells[1] = t.Heading.String()
		}
		if t.LeftIndent != nil {
			cells[2] = strconv.FormatFloat(*t.LeftIndent, 'f', -1, 64)
		}
		if t.RightIndent != nil {
			cells[3] = strconv.FormatFloat(*t.RightIndent, 'f', -1, 64)
		}
		if t.Alignment != nil {
			cells[4] = t.Alignment.String()
		}
		if t.Color != nil {
			cells[5] = *t.Color
		}
		if t.Bold != nil {
			cells[6] = strconv.FormatBool(*t.Bold)
		}
	}
	row := cells[0]
	for _, c := range cells[1:] {
		row += "\t" + c
	}
	return row
}
