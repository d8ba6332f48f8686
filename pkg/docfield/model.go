// Package docfield holds the geometry and field model shared across the
// extraction pipeline, plus the parser that turns raw OCR blocks into
// ordered field records.
package docfield

import (
	"encoding/json"
	"math"

	"github.com/google/uuid"
)

// FieldType classifies a form field.
type FieldType string

const (
	FieldTypeText      FieldType = "text"
	FieldTypeCheckbox  FieldType = "checkbox"
	FieldTypeSignature FieldType = "signature"
	FieldTypeDate      FieldType = "date"
	FieldTypeDropdown  FieldType = "dropdown"
)

// Checkbox values.
const (
	ValueChecked   = "checked"
	ValueUnchecked = "unchecked"
)

// BoundingBox is a rectangle in page-percentage coordinates (0-100),
// origin top-left.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Clamp constrains the box to the page. Out-of-range boxes are pulled
// back in rather than rejected.
func (b BoundingBox) Clamp() BoundingBox {
	b.X = clampPct(b.X)
	b.Y = clampPct(b.Y)
	b.Width = clampPct(b.Width)
	b.Height = clampPct(b.Height)
	if b.X+b.Width > 100 {
		b.Width = 100 - b.X
	}
	if b.Y+b.Height > 100 {
		b.Height = 100 - b.Y
	}
	return b
}

func clampPct(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// FractionalBox is a rectangle in the OCR engine's native coordinate
// space, where all values are fractions of page width/height (0-1).
type FractionalBox struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// ToPercent converts the box to page-percentage coordinates.
func (b FractionalBox) ToPercent() BoundingBox {
	return BoundingBox{
		X:      b.Left * 100,
		Y:      b.Top * 100,
		Width:  b.Width * 100,
		Height: b.Height * 100,
	}
}

// Field is one extracted form field. Fields produced by the parser are
// never mutated afterwards; edits belong to the consuming UI.
type Field struct {
	ID         string      `json:"id"`
	Type       FieldType   `json:"type"`
	Label      string      `json:"label"`
	Value      string      `json:"value"`
	Box        BoundingBox `json:"boundingBox"`
	Page       int         `json:"page"`
	Confidence float64     `json:"confidence"`
}

// NewManualField builds a user-created field. Manual fields carry full
// confidence since a human placed them.
func NewManualField(fieldType FieldType, label string, box BoundingBox, page int) Field {
	return Field{
		ID:         uuid.NewString(),
		Type:       fieldType,
		Label:      label,
		Box:        box.Clamp(),
		Page:       page,
		Confidence: 100,
	}
}

// Summary aggregates field counts for display.
type Summary struct {
	Total  int               `json:"total"`
	ByType map[FieldType]int `json:"byType"`
}

// Summarize counts fields per type.
func Summarize(fields []Field) Summary {
	s := Summary{ByType: make(map[FieldType]int)}
	for _, f := range fields {
		s.ByType[f.Type]++
	}
	s.Total = len(fields)
	return s
}

// ExportDocument is the JSON export payload.
type ExportDocument struct {
	Fields    []Field `json:"fields"`
	PageCount int     `json:"pageCount"`
}

// ExportJSON serializes fields with confidence rounded to the nearest
// integer percentage.
func ExportJSON(fields []Field, pageCount int) ([]byte, error) {
	rounded := make([]Field, len(fields))
	copy(rounded, fields)
	for i := range rounded {
		rounded[i].Confidence = math.Round(rounded[i].Confidence)
	}
	return json.MarshalIndent(ExportDocument{Fields: rounded, PageCount: pageCount}, "", "  ")
}
