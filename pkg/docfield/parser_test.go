package docfield_test

import (
	"testing"

	"github.com/Abraxas-365/formscan/pkg/docfield"
)

func frac(left, top, width, height float64) *docfield.FractionalBox {
	return &docfield.FractionalBox{Left: left, Top: top, Width: width, Height: height}
}

// keyValuePair builds the KEY/VALUE/child block triple for one form field.
func keyValuePair(id, labelText string, valueChildren []docfield.Block, valueGeom *docfield.FractionalBox, confidence float64) []docfield.Block {
	labelBlock := docfield.Block{
		ID:        id + "-label",
		BlockType: docfield.BlockTypeWord,
		Text:      labelText,
		Page:      1,
	}

	childIDs := make([]string, 0, len(valueChildren))
	for _, c := range valueChildren {
		childIDs = append(childIDs, c.ID)
	}

	key := docfield.Block{
		ID:          id + "-key",
		BlockType:   docfield.BlockTypeKeyValueSet,
		EntityTypes: []docfield.EntityType{docfield.EntityTypeKey},
		Relationships: []docfield.Relationship{
			{Type: docfield.RelationshipTypeValue, IDs: []string{id + "-value"}},
			{Type: docfield.RelationshipTypeChild, IDs: []string{id + "-label"}},
		},
		Page: 1,
	}
	value := docfield.Block{
		ID:          id + "-value",
		BlockType:   docfield.BlockTypeKeyValueSet,
		EntityTypes: []docfield.EntityType{docfield.EntityTypeValue},
		Geometry:    valueGeom,
		Confidence:  confidence,
		Page:        1,
	}
	if len(childIDs) > 0 {
		value.Relationships = []docfield.Relationship{
			{Type: docfield.RelationshipTypeChild, IDs: childIDs},
		}
	}

	blocks := []docfield.Block{key, value, labelBlock}
	return append(blocks, valueChildren...)
}

func TestParse_TextPair(t *testing.T) {
	word := docfield.Block{ID: "w1", BlockType: docfield.BlockTypeWord, Text: "Jane", Page: 1}
	blocks := keyValuePair("f1", "Full Name:", []docfield.Block{word}, frac(0.10, 0.10, 0.30, 0.05), 95)

	fields := docfield.Parse(blocks)
	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	f := fields[0]
	if f.Type != docfield.FieldTypeText {
		t.Fatalf("expected text field, got %s", f.Type)
	}
	if f.Label != "Full Name:" {
		t.Fatalf("unexpected label %q", f.Label)
	}
	if f.Value != "Jane" {
		t.Fatalf("unexpected value %q", f.Value)
	}
	if f.Confidence != 95 {
		t.Fatalf("expected confidence from VALUE block, got %v", f.Confidence)
	}
	if f.Box.X != 10 || f.Box.Y != 10 || f.Box.Width != 30 || f.Box.Height != 5 {
		t.Fatalf("unexpected box %+v", f.Box)
	}
	if f.ID == "" {
		t.Fatal("expected generated field ID")
	}
}

func TestParse_CheckboxPair(t *testing.T) {
	sel := docfield.Block{
		ID:              "s1",
		BlockType:       docfield.BlockTypeSelectionElement,
		SelectionStatus: docfield.SelectionStatusSelected,
		Geometry:        frac(0.50, 0.50, 0.04, 0.04),
		Page:            1,
	}
	blocks := keyValuePair("f1", "Subscribe", []docfield.Block{sel}, frac(0.50, 0.50, 0.04, 0.04), 88)

	fields := docfield.Parse(blocks)
	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d (selection child must not double as standalone)", len(fields))
	}
	if fields[0].Type != docfield.FieldTypeCheckbox {
		t.Fatalf("expected checkbox, got %s", fields[0].Type)
	}
	if fields[0].Value != docfield.ValueChecked {
		t.Fatalf("expected checked, got %q", fields[0].Value)
	}
}

func TestParse_KeyWithoutValueProducesNothing(t *testing.T) {
	key := docfield.Block{
		ID:          "k1",
		BlockType:   docfield.BlockTypeKeyValueSet,
		EntityTypes: []docfield.EntityType{docfield.EntityTypeKey},
		Page:        1,
	}
	fields := docfield.Parse([]docfield.Block{key})
	if len(fields) != 0 {
		t.Fatalf("expected no fields, got %d", len(fields))
	}
}

func TestParse_ValueWithoutGeometryDropped(t *testing.T) {
	word := docfield.Block{ID: "w1", BlockType: docfield.BlockTypeWord, Text: "x", Page: 1}
	blocks := keyValuePair("f1", "Label", []docfield.Block{word}, nil, 50)

	fields := docfield.Parse(blocks)
	if len(fields) != 0 {
		t.Fatalf("field without geometry cannot be positioned, got %d fields", len(fields))
	}
}

func TestParse_EmptyLabelGetsPlaceholder(t *testing.T) {
	word := docfield.Block{ID: "w1", BlockType: docfield.BlockTypeWord, Text: "v", Page: 1}
	blocks := keyValuePair("f1", "", []docfield.Block{word}, frac(0.1, 0.1, 0.2, 0.05), 80)
	// Strip the label text so the joined child text trims to empty.
	for i := range blocks {
		if blocks[i].ID == "f1-label" {
			blocks[i].Text = "   "
		}
	}

	fields := docfield.Parse(blocks)
	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}
	if fields[0].Label != "Unlabeled Field" {
		t.Fatalf("expected placeholder label, got %q", fields[0].Label)
	}
}

func TestParse_StandaloneCheckboxWithNearbyLabel(t *testing.T) {
	sel := docfield.Block{
		ID:              "s1",
		BlockType:       docfield.BlockTypeSelectionElement,
		SelectionStatus: docfield.SelectionStatusNotSelected,
		Geometry:        frac(0.42, 0.30, 0.03, 0.03),
		Confidence:      70,
		Page:            2,
	}
	near := docfield.Block{
		ID:        "l1",
		BlockType: docfield.BlockTypeLine,
		Text:      "I agree to the terms",
		// Top-right corner at (0.40, 0.30): distance 0.02 from the box.
		Geometry: frac(0.10, 0.30, 0.30, 0.02),
		Page:     2,
	}
	far := docfield.Block{
		ID:        "l2",
		BlockType: docfield.BlockTypeLine,
		Text:      "Unrelated heading",
		Geometry:  frac(0.10, 0.80, 0.30, 0.02),
		Page:      2,
	}

	fields := docfield.Parse([]docfield.Block{sel, near, far})
	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}
	f := fields[0]
	if f.Type != docfield.FieldTypeCheckbox || f.Value != docfield.ValueUnchecked {
		t.Fatalf("unexpected field %+v", f)
	}
	if f.Label != "I agree to the terms" {
		t.Fatalf("expected nearest line label, got %q", f.Label)
	}
	if f.Page != 2 {
		t.Fatalf("expected page 2, got %d", f.Page)
	}
}

func TestParse_StandaloneCheckboxNoLineInRange(t *testing.T) {
	sel := docfield.Block{
		ID:              "s1",
		BlockType:       docfield.BlockTypeSelectionElement,
		SelectionStatus: docfield.SelectionStatusNotSelected,
		Geometry:        frac(0.50, 0.50, 0.03, 0.03),
		Page:            1,
	}
	far := docfield.Block{
		ID:        "l1",
		BlockType: docfield.BlockTypeLine,
		Text:      "Too far away",
		Geometry:  frac(0.10, 0.10, 0.10, 0.02),
		Page:      1,
	}

	fields := docfield.Parse([]docfield.Block{sel, far})
	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}
	if fields[0].Label != "Checkbox" {
		t.Fatalf("expected fallback label, got %q", fields[0].Label)
	}
}

func TestParse_SelectionClaimedByCoordinateNotDuplicated(t *testing.T) {
	sel := docfield.Block{
		ID:              "s1",
		BlockType:       docfield.BlockTypeSelectionElement,
		SelectionStatus: docfield.SelectionStatusSelected,
		Geometry:        frac(0.25, 0.40, 0.03, 0.03),
		Page:            1,
	}
	blocks := keyValuePair("f1", "Opt in", []docfield.Block{sel}, frac(0.25, 0.40, 0.05, 0.04), 90)

	fields := docfield.Parse(blocks)
	if len(fields) != 1 {
		t.Fatalf("selection at a claimed x must not duplicate, got %d fields", len(fields))
	}
}

func TestSortFields_ReadingOrder(t *testing.T) {
	box := func(x, y float64) docfield.BoundingBox {
		return docfield.BoundingBox{X: x, Y: y, Width: 10, Height: 3}
	}
	fields := []docfield.Field{
		{ID: "p2", Page: 2, Box: box(5, 5)},
		{ID: "row2", Page: 1, Box: box(5, 40)},
		{ID: "row1-right", Page: 1, Box: box(60, 10.5)},
		{ID: "row1-left", Page: 1, Box: box(5, 10)},
	}

	docfield.SortFields(fields)

	want := []string{"row1-left", "row1-right", "row2", "p2"}
	for i, id := range want {
		if fields[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, fields[i].ID)
		}
	}
}

func TestSortFields_Idempotent(t *testing.T) {
	box := func(x, y float64) docfield.BoundingBox {
		return docfield.BoundingBox{X: x, Y: y, Width: 10, Height: 3}
	}
	fields := []docfield.Field{
		{ID: "a", Page: 1, Box: box(30, 11)},
		{ID: "b", Page: 1, Box: box(10, 10)},
		{ID: "c", Page: 1, Box: box(10, 50)},
	}

	docfield.SortFields(fields)
	first := make([]string, len(fields))
	for i, f := range fields {
		first[i] = f.ID
	}

	docfield.SortFields(fields)
	for i, f := range fields {
		if f.ID != first[i] {
			t.Fatalf("sort not idempotent at %d: %s vs %s", i, f.ID, first[i])
		}
	}
}
