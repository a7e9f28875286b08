// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session drives the conversation protocol: reducer operation,
// durable pre-stream persist, one streamed completion, then the final
// persist. At most one stream runs per conversation; partial text from a
// failed or superseded stream is never written to the store.
package session
