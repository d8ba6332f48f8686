// Package pdfx covers the PDF side of the pipeline: page counting,
// per-page splitting for OCR submission, and synthesis of a fillable
// copy of the original document.
package pdfx

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/Abraxas-365/formscan/pkg/errx"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var (
	errorRegistry = errx.NewRegistry("PDF")

	// ErrMalformedDocument marks bytes that cannot be parsed as a PDF.
	// Always fatal to the request.
	ErrMalformedDocument = errorRegistry.Register(
		"MALFORMED_DOCUMENT",
		errx.TypeValidation,
		http.StatusBadRequest,
		"The uploaded file is not a valid PDF document",
	)

	ErrWriteFailed = errorRegistry.Register(
		"WRITE_FAILED",
		errx.TypeInternal,
		http.StatusInternalServerError,
		"Failed to serialize the PDF document",
	)
)

func configuration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// PageCount returns the number of pages in the document.
func PageCount(data []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(data), configuration())
	if err != nil {
		return 0, errorRegistry.NewWithCause(ErrMalformedDocument, err)
	}
	return n, nil
}

// Split produces one complete single-page document per page, at the
// original page dimensions. The input is never modified.
func Split(data []byte) ([][]byte, error) {
	count, err := PageCount(data)
	if err != nil {
		return nil, err
	}

	pages := make([][]byte, 0, count)
	for i := 1; i <= count; i++ {
		var buf bytes.Buffer
		sel := []string{strconv.Itoa(i)}
		if err := api.Trim(bytes.NewReader(data), &buf, sel, configuration()); err != nil {
			return nil, errorRegistry.NewWithCause(ErrMalformedDocument, err).
				WithDetail("page", i)
		}
		pages = append(pages, buf.Bytes())
	}
	return pages, nil
}

// PageDim is one page's media box size in PDF points.
type PageDim struct {
	Width  float64
	Height float64
}

// PageDims returns the dimensions of every page, in page order.
func PageDims(data []byte) ([]PageDim, error) {
	ctx, err := readContext(data)
	if err != nil {
		return nil, err
	}

	dims, err := ctx.PageDims()
	if err != nil {
		return nil, errorRegistry.NewWithCause(ErrMalformedDocument, err)
	}

	out := make([]PageDim, 0, len(dims))
	for _, d := range dims {
		out = append(out, PageDim{Width: d.Width, Height: d.Height})
	}
	return out, nil
}

func readContext(data []byte) (*model.Context, error) {
	ctx, err := api.ReadContext(bytes.NewReader(data), configuration())
	if err != nil {
		return nil, errorRegistry.NewWithCause(ErrMalformedDocument, err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, errorRegistry.NewWithCause(ErrMalformedDocument, err)
	}
	return ctx, nil
}
