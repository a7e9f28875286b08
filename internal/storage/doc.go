// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists parley state as JSON slots under the data
// directory (~/.parley by default): conversation history, the cached
// signed-in user, and the model catalogue.
//
// Every write replaces the whole slot atomically (temp file, fsync,
// rename), so a crash mid-write leaves either the old or the new file,
// never a torn one.
package storage
