// Package raster renders PDF pages to images via poppler's pdftoppm.
// Used as the last-resort OCR delivery strategy when the engine rejects
// the PDF itself.
package raster

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Abraxas-365/formscan/pkg/errx"
)

// DefaultDPI balances OCR recognition quality against payload size.
const DefaultDPI = 300

var (
	errorRegistry = errx.NewRegistry("RASTER")

	ErrRenderFailed = errorRegistry.Register(
		"RENDER_FAILED",
		errx.TypeInternal,
		http.StatusInternalServerError,
		"Failed to rasterize the PDF page",
	)
)

// Renderer turns the first page of a PDF into a PNG.
type Renderer interface {
	RenderFirstPage(ctx context.Context, pdf []byte, dpi int) ([]byte, error)
}

// Pdftoppm implements Renderer by shelling out to pdftoppm.
type Pdftoppm struct {
	// Binary overrides the executable name, mainly for tests.
	Binary string
}

func (p *Pdftoppm) binary() string {
	if p.Binary != "" {
		return p.Binary
	}
	return "pdftoppm"
}

func (p *Pdftoppm) RenderFirstPage(ctx context.Context, pdf []byte, dpi int) ([]byte, error) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}

	tmpDir := os.TempDir()
	stamp := strconv.FormatInt(time.Now().UnixNano(), 10)
	pdfPath := filepath.Join(tmpDir, fmt.Sprintf("raster-%s.pdf", stamp))
	outPrefix := filepath.Join(tmpDir, fmt.Sprintf("raster-%s", stamp))
	pngPath := outPrefix + ".png"

	defer os.Remove(pdfPath)
	defer os.Remove(pngPath)

	if err := os.WriteFile(pdfPath, pdf, 0o600); err != nil {
		return nil, errorRegistry.NewWithCause(ErrRenderFailed, err)
	}

	cmd := exec.CommandContext(ctx, p.binary(), args(dpi, pdfPath, outPrefix)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, errorRegistry.NewWithCause(ErrRenderFailed, err).
			WithDetail("output", string(out))
	}

	png, err := os.ReadFile(pngPath)
	if err != nil {
		return nil, errorRegistry.NewWithCause(ErrRenderFailed, err)
	}
	return png, nil
}

// args builds the pdftoppm invocation: PNG output of only the first
// page, no page-number suffix on the output file.
func args(dpi int, pdfPath, outPrefix string) []string {
	return []string{
		"-png",
		"-r", strconv.Itoa(dpi),
		"-f", "1",
		"-l", "1",
		"-singlefile",
		pdfPath,
		outPrefix,
	}
}
