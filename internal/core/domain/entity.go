package domain

import (
	"maps"
	"slices"
)

type EntitySource string

const (
	EntitySourcePattern  EntitySource = "pattern"
	EntitySourceExternal EntitySource = "external"
)

// Entity is one tagged occurrence in the document text.
// Confidence is optional: zero means the producer did not score it.
type Entity struct {
	Text            string       `json:"text"`
	Label           string       `json:"label"`
	Start           int          `json:"start"`
	End             int          `json:"end"`
	Confidence      float64      `json:"confidence,omitempty"`
	Context         string       `json:"context,omitempty"`
	NormalizedValue string       `json:"normalized_value,omitempty"`
	Source          EntitySource `json:"source"`
}

// PlainEntity wraps a bare string supplied by an external tagger.
func PlainEntity(label, text string) Entity {
	return Entity{
		Text:   text,
		Label:  label,
		Start:  -1,
		End:    -1,
		Source: EntitySourceExternal,
	}
}

func (e Entity) HasConfidence() bool {
	return e.Confidence > 0
}

func (e Entity) HasSpan() bool {
	return e.Start >= 0 && e.End > e.Start
}

// EntitySet groups entities by category label.
type EntitySet map[string][]Entity

func (s EntitySet) Clone() EntitySet {
	if s == nil {
		return EntitySet{}
	}
	out := make(EntitySet, len(s))
	for label, list := range s {
		out[label] = slices.Clone(list)
	}
	return out
}

func (s EntitySet) Count() int {
	total := 0
	for _, list := range s {
		total += len(list)
	}
	return total
}

// Labels returns the category labels in sorted order.
func (s EntitySet) Labels() []string {
	return slices.Sorted(maps.Keys(s))
}

type EntityStats struct {
	Total          int            `json:"total_entities"`
	Categories     int            `json:"categories"`
	ByCategory     map[string]int `json:"entity_counts"`
	HighConfidence int            `json:"high_confidence_entities"`
}

// Stats counts entities per label; entities scored above 0.8 are high confidence.
func (s EntitySet) Stats() EntityStats {
	stats := EntityStats{ByCategory: make(map[string]int, len(s))}
	for label, list := range s {
		stats.ByCategory[label] = len(list)
		stats.Total += len(list)
		for _, e := range list {
			if e.Confidence > 0.8 {
				stats.HighConfidence++
			}
		}
	}
	stats.Categories = len(s)
	return stats
}
