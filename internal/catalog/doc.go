// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package catalog organises the model catalogue for the explore screen:
// case-insensitive search over title and about text, grouping into
// ordered category sections, and a cached copy in the local store.
package catalog
