package model

// RelationType classifies an inferred edge between two glossary entries
type RelationType string

const (
	// RelationSynonymOf links lexically near-identical terms. Symmetric by
	// convention; stored once with the lexicographically smaller term first.
	RelationSynonymOf RelationType = "SYNONYM_OF"

	// RelationRelatedTo links terms sharing domain tags. Symmetric by
	// convention, stored once like SYNONYM_OF.
	RelationRelatedTo RelationType = "RELATED_TO"

	// RelationPartOf is directed child -> parent ("Safety Valve" -> "Valve").
	RelationPartOf RelationType = "PART_OF"
)

// RelationshipEdge is a typed link between two glossary entries in the
// knowledge graph. Edges are unique by (from, to, type); self-loops are
// never emitted.
type RelationshipEdge struct {
	FromTermID string       `json:"from_term_id"`
	ToTermID   string       `json:"to_term_id"`
	Type       RelationType `json:"type"`
	Confidence float64      `json:"confidence"` // [0,1], ranking/display only
	Evidence   string       `json:"evidence"`   // Human-readable trace of the matching heuristic
}

// Key identifies an edge for upsert purposes.
type EdgeKey struct {
	From string
	To   string
	Type RelationType
}

// Key returns the edge's upsert key.
func (e RelationshipEdge) Key() EdgeKey {
	return EdgeKey{From: e.FromTermID, To: e.ToTermID, Type: e.Type}
}
