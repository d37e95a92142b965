/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage keeps documents and their history on disk.
// It handles open/save of host documents with transactional writes and timestamped backups
// under <doc dir>/.sfmt/backups, and the run journal: one row per formatting pass, in a
// SQLite file at <doc dir>/.sfmt/journal.sqlite or in a shared PostgreSQL database.
package storage
