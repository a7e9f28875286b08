// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import "github.com/jeranaias/parley-tui/internal/api"

// =============================================================================
// MODELS SLOT
// =============================================================================

// LoadModels reads the cached model catalogue. ok is false when nothing
// has been cached yet.
func (s *Store) LoadModels() (models []api.Model, ok bool, err error) {
	ok, err = s.readSlot(modelsFile, &models)
	return models, ok, err
}

// SaveModels caches the model catalogue so the explore screen can render
// before the first fetch completes.
func (s *Store) SaveModels(models []api.Model) error {
	if models == nil {
		models = []api.Model{}
	}
	return s.writeSlot(modelsFile, models)
}
