/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"github.com/spf13/cobra"

	"scriptformatter/internal/ui"
)

func newUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ui [document]",
		Short: "Open the editor window (requires a -tags fyne build)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			sheet, err := a.sheet()
			if err != nil {
				return err
			}
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return ui.Run(path, ui.Options{Styles: sheet, Export: a.exportOptions()})
		},
	}
}
