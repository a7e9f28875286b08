// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"context"
	"strings"

	"github.com/jeranaias/parley-tui/internal/api"
	"github.com/jeranaias/parley-tui/internal/storage"
)

// =============================================================================
// CATEGORIES
// =============================================================================

// Category identifies a model grouping on the explore screen.
type Category string

const (
	CategoryChat      Category = "chat"
	CategoryDoctor    Category = "doctor"
	CategoryMath      Category = "math"
	CategoryCompanion Category = "companion"
)

// categoryOrder is the display order of sections on the explore screen.
var categoryOrder = []Category{CategoryChat, CategoryDoctor, CategoryMath, CategoryCompanion}

var categoryTitles = map[Category]string{
	CategoryChat:      "AI Chat",
	CategoryDoctor:    "Medical Assistant",
	CategoryMath:      "Math Assistant",
	CategoryCompanion: "Companion",
}

var categoryIcons = map[Category]string{
	CategoryChat:      "💬",
	CategoryDoctor:    "👨‍⚕️",
	CategoryMath:      "🔢",
	CategoryCompanion: "🫂",
}

// Title returns the section heading for a category.
func (c Category) Title() string {
	if title, ok := categoryTitles[c]; ok {
		return title
	}
	return string(c)
}

// Icon returns the section icon for a category.
func (c Category) Icon() string {
	return categoryIcons[c]
}

// categoryOf maps a model's bot type to its display category. The
// girlfriend and boyfriend types fold into one companion section, and an
// empty type defaults to plain chat.
func categoryOf(m api.Model) Category {
	switch m.BotType {
	case "", "chat":
		return CategoryChat
	case "girlfriend", "boyfriend":
		return CategoryCompanion
	default:
		return Category(m.BotType)
	}
}

// =============================================================================
// SEARCH AND GROUPING
// =============================================================================

// Section is one category of models on the explore screen.
type Section struct {
	Category Category
	Models   []api.Model
}

// Search filters models by a case-insensitive match on title or about
// text. An empty query returns all models.
func Search(models []api.Model, query string) []api.Model {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return models
	}

	var matched []api.Model
	for _, m := range models {
		if strings.Contains(strings.ToLower(m.Title), query) ||
			strings.Contains(strings.ToLower(m.About), query) {
			matched = append(matched, m)
		}
	}
	return matched
}

// Group splits models into ordered category sections, preserving the
// catalogue order within each section. Categories with no models are
// omitted; unknown categories follow the known ones.
func Group(models []api.Model) []Section {
	byCategory := make(map[Category][]api.Model)
	var extraOrder []Category
	for _, m := range models {
		cat := categoryOf(m)
		if _, known := byCategory[cat]; !known && !isKnownCategory(cat) {
			extraOrder = append(extraOrder, cat)
		}
		byCategory[cat] = append(byCategory[cat], m)
	}

	var sections []Section
	for _, cat := range append(append([]Category{}, categoryOrder...), extraOrder...) {
		if ms := byCategory[cat]; len(ms) > 0 {
			sections = append(sections, Section{Category: cat, Models: ms})
			delete(byCategory, cat)
		}
	}
	return sections
}

func isKnownCategory(c Category) bool {
	for _, known := range categoryOrder {
		if c == known {
			return true
		}
	}
	return false
}

// =============================================================================
// CATALOGUE REFRESH
// =============================================================================

// Refresh fetches the catalogue from the backend and caches it in the
// store so the explore screen can render immediately on the next start.
func Refresh(ctx context.Context, client *api.Client, store *storage.Store) ([]api.Model, error) {
	models, err := client.Models(ctx)
	if err != nil {
		return nil, err
	}
	if err := store.SaveModels(models); err != nil {
		return nil, err
	}
	return models, nil
}

// LoadCached returns the cached catalogue, or nil when nothing has been
// cached yet.
func LoadCached(store *storage.Store) ([]api.Model, error) {
	models, ok, err := store.LoadModels()
	if err != nil || !ok {
		return nil, err
	}
	return models, nil
}
