/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic into a crash report and, when a document is in
// flight, a JSON copy of it, so a half-finished pass is never the only record.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"scriptformatter/internal/document"
	applog "scriptformatter/internal/log"
	"scriptformatter/internal/storage"
	"scriptformatter/internal/version"
)

// exitFn is swapped out by tests.
var exitFn = os.Exit

// Recover captures a panic, logs it with its stack, writes a crash report and
// saves body (if not nil) next to docPath's backups. Then it exits with code 2.
//
// Usage: defer crash.Recover(path, doc)
func Recover(docPath string, body document.Body) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithDocument(applog.WithComponent("crash"), docPath)
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	reportPath, err := writeReport(docPath, r, stack)
	if err != nil {
		l.Error("crash report failed", slog.Any("err", err))
	}
	if body != nil && docPath != "" {
		if path, err := storage.AutosaveCrashCopy(docPath, body); err != nil {
			l.Error("crash copy failed", slog.Any("err", err))
		} else {
			l.Info("crash copy written", slog.String("path", path))
		}
	}

	_, _ = fmt.Fprintf(os.Stderr, "scriptfmt crashed. A report was saved to: %s\n", reportPath)
	_, _ = fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
	exitFn(2)
}

func writeReport(docPath string, panicVal any, stack []byte) (string, error) {
	dir := os.TempDir()
	if docPath != "" {
		dir = storage.BackupDir(docPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			dir = os.TempDir()
		}
	}
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", time.Now().Format("20060102-150405")))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "scriptfmt crash report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if docPath != "" {
		_, _ = fmt.Fprintf(&buf, "Document: %s\n", docPath)
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", stack)

	return path, os.WriteFile(path, buf.Bytes(), 0o644)
}
