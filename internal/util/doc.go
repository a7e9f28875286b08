// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the parley TUI:
// atomic file writes for the local store and rune/width-aware string
// handling for list previews and layout.
package util
