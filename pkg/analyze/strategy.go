// Package analyze drives the OCR pipeline: the per-page strategy chain
// and the multi-page orchestration with page tagging and partial-failure
// handling.
package analyze

import (
	"context"
	"strings"

	"github.com/Abraxas-365/formscan/pkg/blobx"
	"github.com/Abraxas-365/formscan/pkg/docfield"
	"github.com/Abraxas-365/formscan/pkg/logx"
	"github.com/Abraxas-365/formscan/pkg/raster"
	"github.com/Abraxas-365/formscan/pkg/textractx"
)

// Runner obtains OCR blocks for one page, working around engine
// limitations by trying delivery strategies in a fixed priority order.
type Runner struct {
	OCR    textractx.Client
	Blobs  blobx.Store
	Raster raster.Renderer

	// DPI for rasterized submission; 0 means raster.DefaultDPI.
	DPI int
}

// attempt is one step of the strategy chain.
type attempt struct {
	name string
	run  func(ctx context.Context) ([]docfield.Block, error)
}

// AnalyzePage runs the strategy chain for one page. A strategy failing
// with a format-unsupported classification falls through to the next
// one; any other failure aborts the chain immediately, so auth or
// throttling problems never degrade silently into slower strategies.
func (r *Runner) AnalyzePage(ctx context.Context, pdf []byte, filename string) ([]docfield.Block, error) {
	// The raster is produced at most once and shared by both
	// rasterized strategies.
	var png []byte
	renderPNG := func(ctx context.Context) ([]byte, error) {
		if png != nil {
			return png, nil
		}
		rendered, err := r.Raster.RenderFirstPage(ctx, pdf, r.DPI)
		if err != nil {
			return nil, err
		}
		png = rendered
		return png, nil
	}

	chain := []attempt{
		{
			name: "direct",
			run: func(ctx context.Context) ([]docfield.Block, error) {
				return r.OCR.AnalyzeBytes(ctx, pdf)
			},
		},
		{
			name: "staged",
			run: func(ctx context.Context) ([]docfield.Block, error) {
				return r.staged(ctx, pdf, filename, "application/pdf")
			},
		},
		{
			name: "raster-direct",
			run: func(ctx context.Context) ([]docfield.Block, error) {
				img, err := renderPNG(ctx)
				if err != nil {
					return nil, err
				}
				return r.OCR.AnalyzeBytes(ctx, img)
			},
		},
		{
			name: "raster-staged",
			run: func(ctx context.Context) ([]docfield.Block, error) {
				img, err := renderPNG(ctx)
				if err != nil {
					return nil, err
				}
				return r.staged(ctx, img, pngName(filename), "image/png")
			},
		},
	}

	var lastErr error
	for _, a := range chain {
		blocks, err := a.run(ctx)
		if err == nil {
			logx.WithFields(logx.Fields{
				"strategy": a.name,
				"file":     filename,
				"blocks":   len(blocks),
			}).Debug("OCR submission succeeded")
			return blocks, nil
		}

		if !textractx.IsFormatUnsupported(err) {
			return nil, err
		}

		logx.WithFields(logx.Fields{
			"strategy": a.name,
			"file":     filename,
		}).WithError(err).Debug("Strategy reported unsupported format, falling through")
		lastErr = err
	}

	return nil, errorRegistry.NewWithCause(ErrAllStrategiesFailed, lastErr)
}

// staged uploads the page to scratch storage, analyzes it by reference
// and always deletes the object, on success and on failure alike.
func (r *Runner) staged(ctx context.Context, data []byte, filename, contentType string) ([]docfield.Block, error) {
	key, err := r.Blobs.Put(ctx, data, filename, contentType)
	if err != nil {
		return nil, err
	}
	defer r.deleteBlob(ctx, key)

	return r.OCR.AnalyzeS3Object(ctx, r.Blobs.Bucket(), key)
}

// deleteBlob is best-effort cleanup: a leaked scratch object costs a
// few cents, a failed analysis response costs the request.
func (r *Runner) deleteBlob(ctx context.Context, key string) {
	if err := r.Blobs.Delete(ctx, key); err != nil {
		logx.WithError(err).WithField("key", key).Warn("Failed to delete scratch object")
	}
}

func pngName(filename string) string {
	return strings.TrimSuffix(filename, ".pdf") + ".png"
}
