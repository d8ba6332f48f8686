package docfield

import (
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
)

const (
	// unlabeledField is the label used when a key block has no readable text.
	unlabeledField = "Unlabeled Field"

	// checkboxLabel is the label used when no line is close enough to a
	// standalone selection element.
	checkboxLabel = "Checkbox"

	// labelProximity is the maximum distance, as a fraction of the page,
	// between a standalone checkbox and the line supplying its label.
	labelProximity = 0.1

	// rowTolerance is the vertical distance, in percentage points, within
	// which two fields count as sharing a row.
	rowTolerance = 2.0
)

// Parse turns aggregated, page-tagged OCR blocks into the ordered list
// of field records.
//
// Key/value pairings become text or checkbox fields; selection elements
// not attached to any pairing become standalone checkboxes whose label
// is guessed from the nearest text line. That guess is a greedy
// heuristic and can pick the wrong line on dense layouts.
func Parse(blocks []Block) []Field {
	byID := make(map[string]Block, len(blocks))
	for _, b := range blocks {
		byID[b.ID] = b
	}

	var fields []Field

	for _, key := range blocks {
		if key.BlockType != BlockTypeKeyValueSet || !key.HasEntityType(EntityTypeKey) {
			continue
		}
		if f, ok := pairToField(key, byID); ok {
			fields = append(fields, f)
		}
	}

	pairFields := fields[:len(fields):len(fields)]

	for _, b := range blocks {
		if b.BlockType != BlockTypeSelectionElement {
			continue
		}
		// A selection element already consumed by a key/value pair is
		// recognized by its left edge matching a pair field's x.
		left := 0.0
		if b.Geometry != nil {
			left = b.Geometry.Left
		}
		if claimedAt(pairFields, left*100) {
			continue
		}
		if b.Geometry == nil {
			continue
		}

		value := ValueUnchecked
		if b.SelectionStatus == SelectionStatusSelected {
			value = ValueChecked
		}
		label := nearestLineLabel(blocks, b.Geometry.Left, b.Geometry.Top)
		if label == "" {
			label = checkboxLabel
		}

		fields = append(fields, Field{
			ID:         uuid.NewString(),
			Type:       FieldTypeCheckbox,
			Label:      label,
			Value:      value,
			Box:        b.Geometry.ToPercent(),
			Page:       pageOrFirst(b.Page),
			Confidence: b.Confidence,
		})
	}

	SortFields(fields)
	return fields
}

// pairToField resolves one KEY block into a field via its VALUE partner.
func pairToField(key Block, byID map[string]Block) (Field, bool) {
	valueRel, ok := key.Relationship(RelationshipTypeValue)
	if !ok || len(valueRel.IDs) == 0 {
		return Field{}, false
	}
	value, ok := byID[valueRel.IDs[0]]
	if !ok {
		return Field{}, false
	}

	label := joinChildText(key, byID)
	if label == "" {
		label = unlabeledField
	}

	fieldType := FieldTypeText
	fieldValue := ""
	if childRel, ok := value.Relationship(RelationshipTypeChild); ok {
		if sel, found := findSelectionChild(childRel.IDs, byID); found {
			fieldType = FieldTypeCheckbox
			fieldValue = ValueUnchecked
			if sel.SelectionStatus == SelectionStatusSelected {
				fieldValue = ValueChecked
			}
		} else {
			fieldValue = joinChildText(value, byID)
		}
	}

	// The VALUE geometry marks the input area; without it the field
	// cannot be positioned.
	if value.Geometry == nil {
		return Field{}, false
	}

	return Field{
		ID:         uuid.NewString(),
		Type:       fieldType,
		Label:      label,
		Value:      fieldValue,
		Box:        value.Geometry.ToPercent(),
		Page:       pageOrFirst(key.Page),
		Confidence: value.Confidence,
	}, true
}

func findSelectionChild(ids []string, byID map[string]Block) (Block, bool) {
	for _, id := range ids {
		if child, ok := byID[id]; ok && child.BlockType == BlockTypeSelectionElement {
			return child, true
		}
	}
	return Block{}, false
}

// joinChildText assembles the text of a block's CHILD blocks,
// space-joined and trimmed.
func joinChildText(b Block, byID map[string]Block) string {
	rel, ok := b.Relationship(RelationshipTypeChild)
	if !ok {
		return ""
	}
	parts := make([]string, 0, len(rel.IDs))
	for _, id := range rel.IDs {
		if child, found := byID[id]; found {
			parts = append(parts, child.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// claimedAt reports whether any produced field starts at exactly x.
// Exact float comparison is intentional: both sides derive from the
// same engine coordinate, so a claimed element compares equal.
func claimedAt(fields []Field, x float64) bool {
	for _, f := range fields {
		if f.Box.X == x {
			return true
		}
	}
	return false
}

// nearestLineLabel finds the text line whose top-right corner is
// closest to the checkbox's top-left corner, within labelProximity.
func nearestLineLabel(blocks []Block, x, y float64) string {
	nearest := ""
	nearestDist := math.Inf(1)

	for _, line := range blocks {
		if line.BlockType != BlockTypeLine || line.Geometry == nil {
			continue
		}
		g := line.Geometry
		dist := math.Hypot(g.Left+g.Width-x, g.Top-y)
		if dist < nearestDist && dist < labelProximity {
			nearestDist = dist
			nearest = line.Text
		}
	}
	return nearest
}

func pageOrFirst(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// SortFields orders fields into natural reading order: by page, then
// top-to-bottom with fields within rowTolerance of each other treated
// as one row and ordered left-to-right. The sort is stable, so the
// order is deterministic regardless of block arrival order.
func SortFields(fields []Field) {
	sort.SliceStable(fields, func(i, j int) bool {
		a, b := fields[i], fields[j]
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		yDiff := a.Box.Y - b.Box.Y
		if math.Abs(yDiff) > rowTolerance {
			return yDiff < 0
		}
		return a.Box.X < b.Box.X
	})
}
