//go:build fyne && cgo

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
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/dustin/go-humanize/english"

	"scriptformatter/internal/crash"
	applog "scriptformatter/internal/log"
	"scriptformatter/internal/rewrite"
	"scriptformatter/internal/version"
)

// Run opens the editor window. docPath may be empty for an untitled document.
func Run(docPath string, opt Options) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("doc", docPath))

	s := NewSession(opt)
	defer crash.Recover(docPath, s)
	if docPath != "" {
		if err := s.Open(docPath); err != nil {
			return err
		}
	}

	fyneApp := app.NewWithID("scriptfmt")
	w := fyneApp.NewWindow("Script Formatter")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1100)
	winH := prefs.IntWithFallback("window.height", 760)
	if winW < 700 {
		winW = 700
	}
	if winH < 500 {
		winH = 500
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	editor := widget.NewMultiLineEntry()
	editor.Wrapping = fyne.TextWrapWord
	editor.TextStyle = fyne.TextStyle{Monospace: true}
	preview := widget.NewTextGrid()

	setTitle := func() {
		name := "Untitled"
		if p := s.Path(); p != "" {
			name = filepath.Base(p)
		}
		if s.Dirty() {
			name += " *"
		}
		w.SetTitle(name + " - Script Formatter")
	}
	refreshPreview := func() {
		var b strings.Builder
		if err := s.Preview(&b); err != nil {
			l.Error("preview failed", slog.Any("err", err))
			return
		}
		preview.SetText(b.String())
	}
	refresh := func() {
		editor.SetText(s.Text())
		refreshPreview()
		setTitle()
	}
	editor.OnChanged = func(text string) {
		if err := s.Edit(text); err != nil {
			status.SetText(err.Error())
			return
		}
		refreshPreview()
		setTitle()
	}

	saveAs := func() {
		d := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			path := uc.URI().Path()
			_ = uc.Close()
			if err := s.SaveAs(path); err != nil {
				dialog.ShowError(err, w)
				return
			}
			status.SetText("Saved " + path)
			setTitle()
		}, w)
		d.SetFileName("script.txt")
		d.Show()
	}
	openItem := fyne.NewMenuItem("Open...", func() {
		dialog.NewFileOpen(func(ur fyne.URIReadCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if ur == nil {
				return
			}
			path := ur.URI().Path()
			_ = ur.Close()
			if err := s.Open(path); err != nil {
				dialog.ShowError(err, w)
				return
			}
			refresh()
			status.SetText("Opened " + path)
		}, w).Show()
	})
	saveItem := fyne.NewMenuItem("Save", func() {
		err := s.Save()
		switch {
		case errors.Is(err, ErrNoPath):
			saveAs()
		case err != nil:
			dialog.ShowError(err, w)
		default:
			status.SetText("Saved " + s.Path())
			setTitle()
		}
	})
	saveAsItem := fyne.NewMenuItem("Save As...", saveAs)
	exportItem := fyne.NewMenuItem("Export PDF...", func() {
		d := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			path := uc.URI().Path()
			_ = uc.Close()
			if err := s.ExportPDF(path); err != nil {
				dialog.ShowError(err, w)
				return
			}
			status.SetText("Exported " + path)
		}, w)
		d.SetFileName("script.pdf")
		d.Show()
	})
	fileMenu := fyne.NewMenu("File", openItem, saveItem, saveAsItem, fyne.NewMenuItemSeparator(), exportItem)
	aboutMenu := fyne.NewMenu("Help", fyne.NewMenuItem("About", func() {
		dialog.ShowInformation("About", "Script Formatter "+version.String(), w)
	}))

	host := &fyneAddonUI{
		session: s,
		publish: func(m *fyne.Menu) {
			w.SetMainMenu(fyne.NewMainMenu(fileMenu, m, aboutMenu))
		},
		done: func(name string, st rewrite.Stats, err error) {
			if err != nil {
				dialog.ShowError(fmt.Errorf("%s: %w", name, err), w)
			}
			refresh()
			status.SetText(fmt.Sprintf("Formatted %s, removed %s, inserted %s",
				english.Plural(st.Styled, "paragraph", ""),
				english.Plural(st.Removed, "blank line", ""),
				english.Plural(st.Inserted, "blank line", "")))
		},
	}
	if err := s.RegisterMenu(host); err != nil {
		return err
	}

	split := container.NewHSplit(container.NewScroll(editor), container.NewScroll(preview))
	split.Offset = 0.45
	w.SetContent(container.NewBorder(nil, status, nil, nil, split))
	refresh()

	w.SetCloseIntercept(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		if !s.Dirty() {
			w.Close()
			return
		}
		dialog.ShowConfirm("Unsaved changes", "Close without saving?", func(ok bool) {
			if ok {
				w.Close()
			}
		}, w)
	})
	w.ShowAndRun()
	l.Info("UI closed")
	return nil
}
