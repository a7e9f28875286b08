// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the client for the parley backend.
//
// It covers the auth endpoints (register, login, current user, profile
// update), the model catalogue, and the streaming chat completion
// endpoint. Completions arrive as server-sent events; Decoder turns
// successive snapshots of the growing response body into an ordered
// sequence of text deltas, skipping malformed lines without aborting
// the stream.
//
// Errors are classified into sentinel values (ErrAuthFailed,
// ErrRateLimited, ErrEmailTaken, ErrInvalidInput) matchable with
// errors.Is, with the server's message preserved in the wrapped text.
package api
