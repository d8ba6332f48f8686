// Package convert turns word processor, spreadsheet and presentation
// files into PDFs with a headless LibreOffice, so the rest of the
// pipeline only ever sees PDF bytes.
package convert

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/Abraxas-365/formscan/pkg/errx"
)

var supportedExtensions = []string{
	".docx", ".doc", ".odt", ".rtf", ".txt", ".xlsx", ".xls", ".pptx", ".ppt",
}

var (
	errorRegistry = errx.NewRegistry("CONVERT")

	ErrConversionFailed = errorRegistry.Register(
		"CONVERSION_FAILED",
		errx.TypeInternal,
		http.StatusInternalServerError,
		"Document conversion to PDF failed",
	)

	ErrUnsupportedType = errorRegistry.Register(
		"UNSUPPORTED_TYPE",
		errx.TypeValidation,
		http.StatusBadRequest,
		"Unsupported file type",
	)
)

// IsPDF reports whether the filename has a .pdf extension.
func IsPDF(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}

// IsSupported reports whether the filename has a convertible extension.
func IsSupported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, s := range supportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// SupportedExtensions lists every accepted upload extension.
func SupportedExtensions() []string {
	return append(append([]string{}, supportedExtensions...), ".pdf")
}

// Result is a converted document.
type Result struct {
	PDF      []byte
	Filename string
}

// Converter converts uploads to PDF.
type Converter interface {
	ToPDF(ctx context.Context, data []byte, filename string) (*Result, error)
}

// LibreOffice implements Converter via the soffice CLI.
type LibreOffice struct {
	// Binary overrides the executable name, mainly for tests.
	Binary string
}

func (l *LibreOffice) binary() string {
	if l.Binary != "" {
		return l.Binary
	}
	return "soffice"
}

func (l *LibreOffice) ToPDF(ctx context.Context, data []byte, filename string) (*Result, error) {
	if !IsSupported(filename) {
		return nil, errorRegistry.NewWithMessage(ErrUnsupportedType, fmt.Sprintf("cannot convert %q to PDF", filename))
	}

	tmpDir := os.TempDir()
	stamp := time.Now().UnixNano()
	ext := filepath.Ext(filename)
	inputPath := filepath.Join(tmpDir, fmt.Sprintf("input-%d%s", stamp, ext))
	outputPath := filepath.Join(tmpDir, fmt.Sprintf("input-%d.pdf", stamp))

	defer os.Remove(inputPath)
	defer os.Remove(outputPath)

	if err := os.WriteFile(inputPath, data, 0o600); err != nil {
		return nil, errorRegistry.NewWithCause(ErrConversionFailed, err)
	}

	cmd := exec.CommandContext(ctx, l.binary(), args(tmpDir, inputPath)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, errorRegistry.NewWithCause(ErrConversionFailed, err).
			WithDetail("output", string(out))
	}

	pdf, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, errorRegistry.NewWithCause(ErrConversionFailed, err)
	}

	base := strings.TrimSuffix(filepath.Base(filename), ext)
	return &Result{PDF: pdf, Filename: base + ".pdf"}, nil
}

func args(outDir, inputPath string) []string {
	return []string{
		"--headless",
		"--convert-to", "pdf",
		"--outdir", outDir,
		inputPath,
	}
}
