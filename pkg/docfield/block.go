package docfield

// BlockType tags the kind of OCR primitive.
type BlockType string

const (
	BlockTypePage             BlockType = "PAGE"
	BlockTypeLine             BlockType = "LINE"
	BlockTypeWord             BlockType = "WORD"
	BlockTypeKeyValueSet      BlockType = "KEY_VALUE_SET"
	BlockTypeSelectionElement BlockType = "SELECTION_ELEMENT"
	BlockTypeTable            BlockType = "TABLE"
	BlockTypeCell             BlockType = "CELL"
)

// EntityType marks which half of a key/value pairing a block is.
type EntityType string

const (
	EntityTypeKey   EntityType = "KEY"
	EntityTypeValue EntityType = "VALUE"
)

// RelationshipType names a typed link between blocks.
type RelationshipType string

const (
	RelationshipTypeChild RelationshipType = "CHILD"
	RelationshipTypeValue RelationshipType = "VALUE"
)

// SelectionStatus is the state of a checkbox-like element.
type SelectionStatus string

const (
	SelectionStatusSelected    SelectionStatus = "SELECTED"
	SelectionStatusNotSelected SelectionStatus = "NOT_SELECTED"
)

// Relationship links a block to others by identifier.
type Relationship struct {
	Type RelationshipType
	IDs  []string
}

// Block is one atomic OCR primitive. Blocks exist only transiently
// during an analysis run; the engine produces them per page and the
// orchestrator stamps Page (1-based) before aggregation.
type Block struct {
	ID              string
	BlockType       BlockType
	Text            string
	Confidence      float64
	Geometry        *FractionalBox
	EntityTypes     []EntityType
	Relationships   []Relationship
	SelectionStatus SelectionStatus
	Page            int
}

// HasEntityType reports whether the block carries the given entity tag.
func (b Block) HasEntityType(t EntityType) bool {
	for _, et := range b.EntityTypes {
		if et == t {
			return true
		}
	}
	return false
}

// Relationship returns the first relationship of the given type, if any.
func (b Block) Relationship(t RelationshipType) (Relationship, bool) {
	for _, r := range b.Relationships {
		if r.Type == t {
			return r, true
		}
	}
	return Relationship{}, false
}
