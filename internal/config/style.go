/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"fmt"
	"os"

	"scriptformatter/internal/textlayout"
)

// StyleSheet builds the style sheet for this configuration: the builtin styles,
// with the house-style file from Style.File layered on top when one is set.
func (c AppConfig) StyleSheet() (*textlayout.StyleSheet, error) {
	base := textlayout.NewStyleSheet()
	if c.Style.File == "" {
		return base, nil
	}
	data, err := os.ReadFile(c.Style.File)
	if err != nil {
		return nil, fmt.Errorf("read house style: %w", err)
	}
	hs, err := textlayout.ParseHouseStyle(data)
	if err != nil {
		return nil, fmt.Errorf("house style %s: %w", c.Style.File, err)
	}
	return hs.Apply(base)
}
