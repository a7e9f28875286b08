// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import "github.com/jeranaias/parley-tui/internal/api"

// =============================================================================
// USER SLOT
// =============================================================================

// LoadUser reads the cached signed-in user. ok is false when no user is
// stored, which the app treats as signed out.
func (s *Store) LoadUser() (user api.User, ok bool, err error) {
	ok, err = s.readSlot(userFile, &user)
	return user, ok, err
}

// SaveUser caches the signed-in user, including the bearer token, so the
// session survives restarts.
func (s *Store) SaveUser(user api.User) error {
	return s.writeSlot(userFile, user)
}

// ClearUser removes the cached user. Called on logout and whenever the
// server rejects the stored token.
func (s *Store) ClearUser() error {
	return s.removeSlot(userFile)
}
