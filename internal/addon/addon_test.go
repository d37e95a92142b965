/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package addon

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptformatter/internal/document"
	"scriptformatter/internal/rewrite"
)

func TestOnOpenRegistersSingleItem(t *testing.T) {
	ui := &MemUI{}
	require.NoError(t, OnOpen(ui, Event{AuthMode: AuthLimited}))
	assert.Equal(t, []Item{{Caption: "Update Formatting", Function: "reformatDocument"}}, ui.Items)
	assert.Equal(t, 1, ui.Published)
}

func TestOnInstallMatchesOnOpen(t *testing.T) {
	opened, installed := &MemUI{}, &MemUI{}
	require.NoError(t, OnOpen(opened, Event{}))
	require.NoError(t, OnInstall(installed, Event{AuthMode: AuthFull}))
	assert.Equal(t, opened.Items, installed.Items)

	// opening again republishes rather than duplicating
	require.NoError(t, OnOpen(installed, Event{}))
	assert.Len(t, installed.Items, 1)
	assert.Equal(t, 2, installed.Published)
}

func TestOnOpenWithoutUI(t *testing.T) {
	assert.Error(t, OnOpen(nil, Event{}))
}

func TestInvokeReformatsActiveDocument(t *testing.T) {
	doc := document.FromLines("INT. HALL", "", "", "He waits.")
	a := New(func() (document.Body, error) { return doc, nil }, nil)
	assert.Equal(t, []string{FunctionReformat}, a.Functions())

	st, err := a.Invoke(context.Background(), FunctionReformat)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Styled)
	assert.Equal(t, []string{"INT. HALL", "", "He waits.", ""}, doc.Texts())
}

func TestInvokeUnknownFunction(t *testing.T) {
	a := New(func() (document.Body, error) { return document.FromLines("x"), nil }, nil)
	_, err := a.Invoke(context.Background(), "onEdit")
	assert.ErrorIs(t, err, ErrUnknownFunction)
}

func TestInvokeSurfacesHostErrors(t *testing.T) {
	noDoc := errors.New("document closed")
	a := New(func() (document.Body, error) { return nil, noDoc }, nil)
	_, err := a.Invoke(context.Background(), FunctionReformat)
	assert.ErrorIs(t, err, noDoc)

	doc := document.FromLines("INT. HALL", "Go.")
	boom := errors.New("quota exceeded")
	doc.Fault = func(op string, _ int) error {
		if op == "remove" || op == "insert" {
			return boom
		}
		return nil
	}
	a = New(func() (document.Body, error) { return doc, nil }, rewrite.New(nil))
	_, err = a.Invoke(context.Background(), FunctionReformat)
	assert.ErrorIs(t, err, boom)
}

func TestRegisterCustomFunction(t *testing.T) {
	a := New(func() (document.Body, error) { return document.FromLines("x"), nil }, nil)
	called := false
	a.Register("count", func(_ context.Context, b document.Body) (rewrite.Stats, error) {
		called = true
		return rewrite.Stats{Visited: b.NumChildren()}, nil
	})
	st, err := a.Invoke(context.Background(), "count")
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, 1, st.Visited)
	assert.Equal(t, []string{"count", FunctionReformat}, a.Functions())
}
