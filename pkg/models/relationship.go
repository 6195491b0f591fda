package models

import "strings"

// RelationshipType is the category attached to every edge of the network.
type RelationshipType string

const (
	RelFriendly     RelationshipType = "friendly"
	RelProfessional RelationshipType = "professional"
	RelFamilial     RelationshipType = "familial"
	RelRomantic     RelationshipType = "romantic"
	RelAcquaintance RelationshipType = "acquaintance"
)

// AllRelationshipTypes returns the closed set of relationship types in the
// order they are offered to the user.
func AllRelationshipTypes() []RelationshipType {
	return []RelationshipType{
		RelFriendly,
		RelProfessional,
		RelFamilial,
		RelRomantic,
		RelAcquaintance,
	}
}

var relationshipLabels = map[RelationshipType]string{
	RelFriendly:     "friendly relationship",
	RelProfessional: "professional relationship",
	RelFamilial:     "familial relationship",
	RelRomantic:     "romantic relationship",
	RelAcquaintance: "acquaintanceship",
}

// IsValid reports whether t belongs to the closed set of relationship types.
func (t RelationshipType) IsValid() bool {
	_, ok := relationshipLabels[t]
	return ok
}

// Label returns the long form used in sentences, e.g. "friendly relationship".
func (t RelationshipType) Label() string {
	if label, ok := relationshipLabels[t]; ok {
		return label
	}
	return string(t)
}

func (t RelationshipType) String() string {
	return string(t)
}

// ParseRelationshipType accepts a canonical type name or its long label,
// case-insensitively. The second return value is false for anything else.
func ParseRelationshipType(s string) (RelationshipType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, label := range relationshipLabels {
		if s == string(t) || s == label {
			return t, true
		}
	}
	return "", false
}

// DefaultTypeColors returns the colour used to draw each relationship type.
// Rendering code falls back to UnknownTypeColor for anything missing.
func DefaultTypeColors() map[RelationshipType]string {
	return map[RelationshipType]string{
		RelFriendly:     "blue",
		RelProfessional: "green",
		RelFamilial:     "red",
		RelAcquaintance: "orange",
		RelRomantic:     "yellow",
	}
}

// UnknownTypeColor is drawn for types with no colour entry.
const UnknownTypeColor = "gray"

// Relationship is one undirected edge of the network.
type Relationship struct {
	PersonA string           `yaml:"person_a" json:"person_a"`
	PersonB string           `yaml:"person_b" json:"person_b"`
	Type    RelationshipType `yaml:"type" json:"type"`
}

// HistoryEntry records a single relationship-creation event. It is kept
// independently of the current edge set.
type HistoryEntry struct {
	PersonA string           `yaml:"person_a" json:"person_a"`
	Type    RelationshipType `yaml:"type" json:"type"`
	PersonB string           `yaml:"person_b" json:"person_b"`
}

// Mentions reports whether name is either side of the entry.
func (e HistoryEntry) Mentions(name string) bool {
	return e.PersonA == name || e.PersonB == name
}

// DisplayEntry pairs a history entry with its position in most-recent-first
// order. Indices are only valid until the next mutation of the history.
type DisplayEntry struct {
	Index int          `yaml:"index" json:"index"`
	Entry HistoryEntry `yaml:"entry" json:"entry"`
}

// NetworkSnapshot is a read-only copy of the network taken between actions.
type NetworkSnapshot struct {
	People        []string       `yaml:"people" json:"people"`
	Relationships []Relationship `yaml:"relationships" json:"relationships"`
	History       []DisplayEntry `yaml:"history" json:"history"`
}
