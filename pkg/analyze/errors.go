package analyze

import (
	"net/http"

	"github.com/Abraxas-365/formscan/pkg/errx"
)

var (
	errorRegistry = errx.NewRegistry("ANALYZE")

	// ErrAllStrategiesFailed means every submission strategy reported
	// the format as unsupported.
	ErrAllStrategiesFailed = errorRegistry.Register(
		"ALL_STRATEGIES_FAILED",
		errx.TypeValidation,
		http.StatusBadRequest,
		"The OCR engine rejected this document in every submission strategy",
	)

	// ErrPageAnalysis marks one page's failure inside a multi-page run.
	// Logged and skipped, never surfaced.
	ErrPageAnalysis = errorRegistry.Register(
		"PAGE_FAILED",
		errx.TypeExternal,
		http.StatusBadGateway,
		"Analysis failed for one page of the document",
	)
)
