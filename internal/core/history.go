package core

import (
	"fmt"
	"slices"

	"github.com/valter-silva-au/reseau/pkg/models"
)

// RelationHistory is the chronological log of relationship-creation events.
// Entries are stored oldest first and addressed by display index, where 0 is
// the most recent entry.
type RelationHistory struct {
	entries []models.HistoryEntry
}

// NewRelationHistory returns an empty history.
func NewRelationHistory() *RelationHistory {
	return &RelationHistory{}
}

// Append records a new event at the most-recent end.
func (h *RelationHistory) Append(a string, t models.RelationshipType, b string) {
	h.entries = append(h.entries, models.HistoryEntry{PersonA: a, Type: t, PersonB: b})
}

// Len returns the number of entries.
func (h *RelationHistory) Len() int {
	return len(h.entries)
}

// storageIndex maps a display index onto the underlying slice.
func (h *RelationHistory) storageIndex(displayIndex int) (int, error) {
	if displayIndex < 0 || displayIndex >= len(h.entries) {
		return 0, fmt.Errorf("display index %d (history has %d entries): %w",
			displayIndex, len(h.entries), ErrIndexOutOfRange)
	}
	return len(h.entries) - 1 - displayIndex, nil
}

// At returns the entry at displayIndex.
func (h *RelationHistory) At(displayIndex int) (models.HistoryEntry, error) {
	i, err := h.storageIndex(displayIndex)
	if err != nil {
		return models.HistoryEntry{}, err
	}
	return h.entries[i], nil
}

// RemoveAt deletes the entry at displayIndex and returns it.
func (h *RelationHistory) RemoveAt(displayIndex int) (models.HistoryEntry, error) {
	i, err := h.storageIndex(displayIndex)
	if err != nil {
		return models.HistoryEntry{}, err
	}
	removed := h.entries[i]
	h.entries = slices.Delete(h.entries, i, i+1)
	return removed, nil
}

// PurgePerson removes every entry mentioning name and returns how many were
// removed.
func (h *RelationHistory) PurgePerson(name string) int {
	before := len(h.entries)
	h.entries = slices.DeleteFunc(h.entries, func(e models.HistoryEntry) bool {
		return e.Mentions(name)
	})
	return before - len(h.entries)
}

// Display returns the entries most recent first, each tagged with its display
// index.
func (h *RelationHistory) Display() []models.DisplayEntry {
	out := make([]models.DisplayEntry, 0, len(h.entries))
	for i := len(h.entries) - 1; i >= 0; i-- {
		out = append(out, models.DisplayEntry{Index: len(out), Entry: h.entries[i]})
	}
	return out
}
