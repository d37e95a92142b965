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

	"github.com/spf13/cobra"

	"scriptformatter/internal/addon"
)

func newMenuCmd(_ *app) *cobra.Command {
	var install bool
	cmd := &cobra.Command{
		Use:   "menu",
		Short: "List the add-on menu a host document editor would show",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ui := &addon.MemUI{}
			hook := addon.OnOpen
			if install {
				hook = addon.OnInstall
			}
			if err := hook(ui, addon.Event{AuthMode: addon.AuthLimited}); err != nil {
				return err
			}
			for _, it := range ui.Items {
				fmt.Fprintf(cmd.OutOrStdout(), "Add-ons > %s\t%s\n", it.Caption, it.Function)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&install, "install", false, "register through the install hook instead of open")
	return cmd
}
