package pdfx

import (
	"bytes"
	"fmt"
	"math"
	"regexp"
	"sort"

	"github.com/Abraxas-365/formscan/pkg/docfield"
	"github.com/Abraxas-365/formscan/pkg/logx"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

const (
	// multilineHeight is the field height in PDF points above which a
	// text control wraps onto multiple lines.
	multilineHeight = 30.0

	// ffMultiline is the AcroForm multiline field flag (bit 13).
	ffMultiline = 1 << 12

	// annFlagPrint makes the widget visible when the document prints.
	annFlagPrint = 4
)

// CreateFillable returns a copy of the document with one interactive
// form control per field, positioned over the field's bounding box.
// Individual placement failures are logged and skipped; the export
// succeeds as long as the document itself loads and serializes.
func CreateFillable(data []byte, fields []docfield.Field) ([]byte, error) {
	ctx, err := readContext(data)
	if err != nil {
		return nil, err
	}

	dims, err := ctx.PageDims()
	if err != nil {
		return nil, errorRegistry.NewWithCause(ErrMalformedDocument, err)
	}

	form, err := newFormBuilder(ctx)
	if err != nil {
		return nil, err
	}

	for _, page := range pagesInOrder(fields) {
		if page < 1 || page > len(dims) {
			// Field references a page the document does not have.
			continue
		}
		dim := PageDim{Width: dims[page-1].Width, Height: dims[page-1].Height}

		for index, field := range fieldsOnPage(fields, page) {
			name := FieldName(field.Label, page, index)
			if err := form.place(field, name, page, dim); err != nil {
				logx.WithError(err).WithFields(logx.Fields{
					"field": name,
					"page":  page,
				}).Warn("Skipping form control that failed to embed")
			}
		}
	}

	if err := form.finish(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return nil, errorRegistry.NewWithCause(ErrWriteFailed, err)
	}
	return buf.Bytes(), nil
}

func pagesInOrder(fields []docfield.Field) []int {
	seen := make(map[int]bool)
	var pages []int
	for _, f := range fields {
		if !seen[f.Page] {
			seen[f.Page] = true
			pages = append(pages, f.Page)
		}
	}
	sort.Ints(pages)
	return pages
}

func fieldsOnPage(fields []docfield.Field, page int) []docfield.Field {
	var out []docfield.Field
	for _, f := range fields {
		if f.Page == page {
			out = append(out, f)
		}
	}
	return out
}

// formBuilder accumulates widget annotations and the AcroForm catalog
// entry while fields are placed.
type formBuilder struct {
	ctx       *model.Context
	helvetica *types.IndirectRef
	fieldRefs types.Array
}

func newFormBuilder(ctx *model.Context) (*formBuilder, error) {
	font := types.Dict{
		"Type":     types.Name("Font"),
		"Subtype":  types.Name("Type1"),
		"BaseFont": types.Name("Helvetica"),
		"Encoding": types.Name("WinAnsiEncoding"),
	}
	fontRef, err := ctx.IndRefForNewObject(font)
	if err != nil {
		return nil, errorRegistry.NewWithCause(ErrWriteFailed, err)
	}
	return &formBuilder{ctx: ctx, helvetica: fontRef}, nil
}

// place converts one field into a merged field/widget annotation on its page.
func (b *formBuilder) place(field docfield.Field, name string, page int, dim PageDim) error {
	box := field.Box.Clamp()
	x, y, w, h := NativeRect(box, dim.Width, dim.Height)

	var d types.Dict
	switch field.Type {
	case docfield.FieldTypeCheckbox:
		// Checkboxes stay square on the smaller dimension.
		side := math.Min(w, h)
		d = checkboxDict(name, x, y, side, field.Value == docfield.ValueChecked)
	default:
		// signature, date and dropdown all render as borderless text
		// controls: no certificate support and no option lists exist in
		// the source data.
		multiline := field.Type == docfield.FieldTypeText && h > multilineHeight
		d = b.textDict(name, field.Value, x, y, w, h, FontSize(h), multiline)
	}

	fieldRef, err := b.ctx.IndRefForNewObject(d)
	if err != nil {
		return errorRegistry.NewWithCause(ErrWriteFailed, err)
	}

	if err := b.annotate(page, *fieldRef); err != nil {
		return err
	}
	b.fieldRefs = append(b.fieldRefs, *fieldRef)
	return nil
}

func (b *formBuilder) textDict(name, value string, x, y, w, h float64, fontSize int, multiline bool) types.Dict {
	var flags types.Integer
	if multiline {
		flags = ffMultiline
	}
	return types.Dict{
		"Type":    types.Name("Annot"),
		"Subtype": types.Name("Widget"),
		"FT":      types.Name("Tx"),
		"Rect":    types.NewNumberArray(x, y, x+w, y+h),
		"T":       types.StringLiteral(name),
		"V":       types.StringLiteral(value),
		"DA":      types.StringLiteral(fmt.Sprintf("/Helv %d Tf 0 g", fontSize)),
		"Ff":      flags,
		"F":       types.Integer(annFlagPrint),
		"MK":      types.Dict{},
	}
}

func checkboxDict(name string, x, y, side float64, checked bool) types.Dict {
	state := types.Name("Off")
	if checked {
		state = types.Name("Yes")
	}
	return types.Dict{
		"Type":    types.Name("Annot"),
		"Subtype": types.Name("Widget"),
		"FT":      types.Name("Btn"),
		"Rect":    types.NewNumberArray(x, y, x+side, y+side),
		"T":       types.StringLiteral(name),
		"V":       state,
		"AS":      state,
		"F":       types.Integer(annFlagPrint),
		"MK":      types.Dict{"CA": types.StringLiteral("4")},
	}
}

// annotate appends the widget to the page's Annots array.
func (b *formBuilder) annotate(page int, ref types.IndirectRef) error {
	pageDict, _, _, err := b.ctx.PageDict(page, false)
	if err != nil {
		return errorRegistry.NewWithCause(ErrMalformedDocument, err)
	}

	var annots types.Array
	if obj, found := pageDict.Find("Annots"); found {
		annots, err = b.ctx.DereferenceArray(obj)
		if err != nil {
			return errorRegistry.NewWithCause(ErrMalformedDocument, err)
		}
	}
	pageDict["Annots"] = append(annots, ref)
	return nil
}

// finish installs the AcroForm dictionary in the document catalog.
func (b *formBuilder) finish() error {
	if len(b.fieldRefs) == 0 {
		return nil
	}

	rootDict, err := b.ctx.Catalog()
	if err != nil {
		return errorRegistry.NewWithCause(ErrMalformedDocument, err)
	}

	fields := b.fieldRefs
	if obj, found := rootDict.Find("AcroForm"); found {
		if existing, derr := b.ctx.DereferenceDict(obj); derr == nil && existing != nil {
			if fobj, ffound := existing.Find("Fields"); ffound {
				if prior, aerr := b.ctx.DereferenceArray(fobj); aerr == nil {
					fields = append(prior, b.fieldRefs...)
				}
			}
		}
	}

	rootDict["AcroForm"] = types.Dict{
		"Fields":          fields,
		"NeedAppearances": types.Boolean(true),
		"DA":              types.StringLiteral("/Helv 0 Tf 0 g"),
		"DR": types.Dict{
			"Font": types.Dict{"Helv": *b.helvetica},
		},
	}
	return nil
}

// NativeRect converts a percentage box to PDF points. Boxes are stored
// top-left-origin, PDF user space is bottom-left-origin, so y flips.
func NativeRect(box docfield.BoundingBox, pageWidth, pageHeight float64) (x, y, w, h float64) {
	x = box.X / 100 * pageWidth
	w = box.Width / 100 * pageWidth
	h = box.Height / 100 * pageHeight
	y = pageHeight - (box.Y/100)*pageHeight - h
	return x, y, w, h
}

// FontSize picks a font size proportional to the control height,
// clamped to a readable range. Not text-metric-based fitting.
func FontSize(height float64) int {
	return int(math.Round(math.Max(8, math.Min(14, height*0.6))))
}

var (
	nonWordChars = regexp.MustCompile(`[^\w\s-]`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// FieldName builds the globally unique control name for a field. The
// per-page index keeps colliding labels apart.
func FieldName(label string, page, index int) string {
	name := fmt.Sprintf("%s_%d_%d", label, page, index)
	name = nonWordChars.ReplaceAllString(name, "_")
	name = whitespace.ReplaceAllString(name, "_")
	if runes := []rune(name); len(runes) > 50 {
		name = string(runes[:50])
	}
	return name
}
