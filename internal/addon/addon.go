/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package addon is the entry surface a document host calls into: it registers
// the "Update Formatting" menu item when a document opens or the add-on is
// installed, and dispatches the bound function against the active document.
package addon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"scriptformatter/internal/document"
	applog "scriptformatter/internal/log"
	"scriptformatter/internal/rewrite"
)

const (
	MenuCaption      = "Update Formatting"
	FunctionReformat = "reformatDocument"
)

// ErrUnknownFunction is returned by Invoke for a name nothing was registered under.
var ErrUnknownFunction = errors.New("unknown add-on function")

// AuthMode mirrors the authorization level a host passes to its lifecycle hooks.
type AuthMode int

const (
	AuthNone AuthMode = iota
	AuthLimited
	AuthFull
)

// Event is the payload of OnOpen and OnInstall. It carries nothing the add-on needs.
type Event struct {
	AuthMode AuthMode
}

// UI is the host's menu surface.
type UI interface {
	CreateAddonMenu() Menu
}

// Menu collects items; AddToUI publishes them.
type Menu interface {
	AddItem(caption, functionName string) Menu
	AddToUI() error
}

// OnOpen registers the add-on menu: one item, MenuCaption, bound to FunctionReformat.
func OnOpen(ui UI, _ Event) error {
	if ui == nil {
		return errors.New("no host ui")
	}
	return ui.CreateAddonMenu().AddItem(MenuCaption, FunctionReformat).AddToUI()
}

// OnInstall behaves like OnOpen so the menu shows up without reopening the document.
func OnInstall(ui UI, e Event) error { return OnOpen(ui, e) }

// Func is a function a menu item can be bound to.
type Func func(ctx context.Context, body document.Body) (rewrite.Stats, error)

// Addon dispatches menu functions against the host's active document.
type Addon struct {
	active func() (document.Body, error)
	funcs  map[string]Func
	log    *slog.Logger
}

// New returns an Addon whose reformatDocument runs f over the document returned
// by active. A nil f uses the builtin house style.
func New(active func() (document.Body, error), f *rewrite.Formatter) *Addon {
	if f == nil {
		f = rewrite.New(nil)
	}
	a := &Addon{
		active: active,
		funcs:  map[string]Func{},
		log:    applog.WithComponent("addon"),
	}
	a.Register(FunctionReformat, f.Rewrite)
	return a
}

// Register binds name to fn, replacing any earlier binding.
func (a *Addon) Register(name string, fn Func) { a.funcs[name] = fn }

// Functions lists the registered function names, sorted.
func (a *Addon) Functions() []string {
	out := make([]string, 0, len(a.funcs))
	for k := range a.funcs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Invoke runs the function registered under name against the active document.
func (a *Addon) Invoke(ctx context.Context, name string) (rewrite.Stats, error) {
	fn, ok := a.funcs[name]
	if !ok {
		return rewrite.Stats{}, fmt.Errorf("%s: %w", name, ErrUnknownFunction)
	}
	if a.active == nil {
		return rewrite.Stats{}, errors.New("no active document")
	}
	body, err := a.active()
	if err != nil {
		return rewrite.Stats{}, fmt.Errorf("active document: %w", err)
	}
	start := time.Now()
	st, err := fn(ctx, body)
	l := applog.WithOperation(a.log, name).With(slog.Duration("took", time.Since(start)))
	if err != nil {
		l.ErrorContext(ctx, "add-on function failed", slog.Any("err", err))
		return st, err
	}
	l.DebugContext(ctx, "add-on function done")
	return st, nil
}

// Item is one registered menu entry.
type Item struct {
	Caption  string
	Function string
}

// MemUI is a headless host UI that records the add-on menu it was given.
type MemUI struct {
	Items []Item
	// Published counts AddToUI calls.
	Published int
}

func (u *MemUI) CreateAddonMenu() Menu { return &memMenu{ui: u} }

type memMenu struct {
	ui    *MemUI
	items []Item
}

func (m *memMenu) AddItem(caption, functionName string) Menu {
	m.items = append(m.items, Item{Caption: caption, Function: functionName})
	return m
}

// AddToUI replaces the published menu, as a host does when the add-on re-registers.
func (m *memMenu) AddToUI() error {
	m.ui.Items = append([]Item(nil), m.items...)
	m.ui.Published++
	return nil
}
