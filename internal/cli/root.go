/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package cli wires the scriptfmt commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"scriptformatter/internal/config"
	applog "scriptformatter/internal/log"
	"scriptformatter/internal/stylepack"
	"scriptformatter/internal/textlayout"
	"scriptformatter/internal/version"
)

// app is the state shared by every command of one invocation.
type app struct {
	cfgFile string
	verbose bool
	style   string

	cfg    config.AppConfig
	secret string
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "scriptfmt",
		Short: "Screenplay paragraph formatter",
		Long: `scriptfmt classifies the paragraphs of a screenplay draft (scene
locations, character cues, parentheticals, dialog, action, ...) and rewrites
their formatting to match a house style.

Everything above the first scene location or top-level heading is treated
as title-page material and left alone. Blank paragraphs are normalised so
that exactly one follows each element that asks for spacing.`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.load,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: per-user config dir)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().StringVar(&a.style, "style", "", "house style: an installed style name or a YAML file")

	root.AddCommand(
		newFormatCmd(a),
		newClassifyCmd(a),
		newExportCmd(a),
		newMenuCmd(a),
		newHistoryCmd(a),
		newStylesCmd(a),
		newUICmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command tree against os.Args.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "scriptfmt %s\n", version.String())
		},
	}
}

// load reads the configuration and sets up logging before any command runs.
func (a *app) load(cmd *cobra.Command, _ []string) error {
	cfg, secret, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg, a.secret = cfg, secret

	opt := cfg.Logging.Options()
	if a.verbose {
		opt.Level = "debug"
	}
	opt.Writer = cmd.ErrOrStderr()
	applog.Init(opt)
	applog.WithComponent("cli").Debug("config loaded",
		"config", a.cfgFile, "style", cfg.Style.File, "journal", cfg.Journal.Enabled)
	return nil
}

// stylesDir is where installed house styles live: a styles directory next to
// the config file.
func (a *app) stylesDir() (string, error) {
	p := a.cfgFile
	if p == "" {
		var err error
		if p, err = config.ConfigPath(); err != nil {
			return "", err
		}
	}
	return filepath.Join(filepath.Dir(p), "styles"), nil
}

// sheet resolves the style sheet for this run. --style wins over the config
// file; a value ending in .yaml or .yml is read as a file, anything else is
// looked up among the installed styles.
func (a *app) sheet() (*textlayout.StyleSheet, error) {
	if a.style == "" {
		return a.cfg.StyleSheet()
	}
	file := a.style
	if ext := strings.ToLower(filepath.Ext(file)); ext != ".yaml" && ext != ".yml" {
		dir, err := a.stylesDir()
		if err != nil {
			return nil, err
		}
		if file, err = stylepack.Find(dir, a.style); err != nil {
			return nil, err
		}
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read house style: %w", err)
	}
	hs, err := textlayout.ParseHouseStyle(data)
	if err != nil {
		return nil, fmt.Errorf("house style %s: %w", file, err)
	}
	return hs.Apply(textlayout.NewStyleSheet())
}
