// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat holds the conversation record and the pure operations
// that compute its next state.
//
// A Conversation is an immutable-by-convention value: every operation
// (AppendUser, CommitEdit, Regenerate, Rename, AppendAssistant) returns
// a new record with a fresh message slice and never touches the
// receiver. I/O lives elsewhere; the session controller sequences these
// operations with store writes and the network stream.
package chat
