package domain

import "encoding/json"

// SearchResult is a page of converted entities for one entity type.
// It serializes with the collection under a pluralized key, e.g.
// {"total": 2, "customers": [...]}. Pluralization is a plain "+s"; none of
// the supported entity type names pluralize irregularly.
type SearchResult struct {
	Total      int
	EntityType string
	Items      []Entity
}

// PluralKey returns the JSON collection key for an entity type name.
func PluralKey(entityType string) string {
	return entityType + "s"
}

func (r *SearchResult) MarshalJSON() ([]byte, error) {
	items := r.Items
	if items == nil {
		items = []Entity{}
	}
	return json.Marshal(map[string]any{
		"total":                 r.Total,
		PluralKey(r.EntityType): items,
	})
}
