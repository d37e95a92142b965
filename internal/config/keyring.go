/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"

	"github.com/zalando/go-keyring"
)

// Service/keys for the OS keyring.
const (
	keyringService = "ScriptFormatter"
	keyringJournal = "journal_password"
)

// TokenStore abstracts the keyring so tests can stub it.
type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

var tokenStore TokenStore = osKeyring{}

// SetTokenStore replaces the keyring backend and returns the previous one.
func SetTokenStore(ts TokenStore) TokenStore {
	prev := tokenStore
	tokenStore = ts
	return prev
}

// osKeyring stores secrets in the OS keychain (Keychain, Secret Service, Credential Manager).
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

// JournalPassword returns the stored journal database password, or "" if none is stored.
func JournalPassword() (string, error) {
	v, err := tokenStore.Get(keyringService, keyringJournal)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return v, err
}

// SetJournalPassword stores the journal database password in the keychain.
func SetJournalPassword(v string) error {
	return tokenStore.Set(keyringService, keyringJournal, v)
}

// ClearJournalPassword removes the stored password. Removing a missing entry is not an error.
func ClearJournalPassword() error {
	err := tokenStore.Delete(keyringService, keyringJournal)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
