//go:build fyne

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"

	"fyne.io/fyne/v2"

	"scriptformatter/internal/addon"
	"scriptformatter/internal/rewrite"
)

// addonMenuTitle is the top-level menu add-on items are published under.
const addonMenuTitle = "Add-ons"

// fyneAddonUI adapts a Fyne main menu to the add-on menu surface. Each
// published item invokes its function on the session; done receives the
// outcome so the window can refresh.
type fyneAddonUI struct {
	session *Session
	publish func(*fyne.Menu)
	done    func(name string, st rewrite.Stats, err error)
}

func (u *fyneAddonUI) CreateAddonMenu() addon.Menu { return &fyneAddonMenu{ui: u} }

type fyneAddonMenu struct {
	ui    *fyneAddonUI
	items []*fyne.MenuItem
}

func (m *fyneAddonMenu) AddItem(caption, functionName string) addon.Menu {
	ui := m.ui
	m.items = append(m.items, fyne.NewMenuItem(caption, func() {
		st, err := ui.session.Invoke(context.Background(), functionName)
		if ui.done != nil {
			ui.done(functionName, st, err)
		}
	}))
	return m
}

func (m *fyneAddonMenu) AddToUI() error {
	m.ui.publish(fyne.NewMenu(addonMenuTitle, m.items...))
	return nil
}
