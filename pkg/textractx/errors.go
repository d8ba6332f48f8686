package textractx

import (
	"net/http"
	"strings"

	"github.com/Abraxas-365/formscan/pkg/errx"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
	"github.com/aws/smithy-go"
)

var (
	// Error registry for the Textract client
	errorRegistry = errx.NewRegistry("TEXTRACT")

	// ErrUnsupportedFormat marks content the engine refuses to read.
	// This is the only error class that triggers a fallback strategy.
	ErrUnsupportedFormat = errorRegistry.Register(
		"UNSUPPORTED_FORMAT",
		errx.TypeValidation,
		http.StatusBadRequest,
		"Textract cannot process this document format",
	)

	ErrUnauthorized = errorRegistry.Register(
		"UNAUTHORIZED",
		errx.TypeAuthorization,
		http.StatusUnauthorized,
		"Invalid or missing AWS credentials",
	)

	ErrThrottled = errorRegistry.Register(
		"THROTTLED",
		errx.TypeExternal,
		http.StatusTooManyRequests,
		"Textract request rate exceeded",
	)

	ErrDocumentTooLarge = errorRegistry.Register(
		"DOCUMENT_TOO_LARGE",
		errx.TypeValidation,
		http.StatusBadRequest,
		"Document exceeds the Textract synchronous size limit",
	)

	ErrRequestFailed = errorRegistry.Register(
		"REQUEST_FAILED",
		errx.TypeExternal,
		http.StatusBadGateway,
		"Textract request failed",
	)
)

// IsFormatUnsupported reports whether err means the engine rejected the
// document format. Any other failure (auth, quota, network) must abort
// the strategy chain instead of falling through, so classification errs
// on the narrow side: a typed UnsupportedDocumentException, its error
// code, or an "unsupported" message.
func IsFormatUnsupported(err error) bool {
	if err == nil {
		return false
	}
	if errx.IsCode(err, ErrUnsupportedFormat) {
		return true
	}

	var unsupported *types.UnsupportedDocumentException
	if errx.As(err, &unsupported) {
		return true
	}

	var apiErr smithy.APIError
	if errx.As(err, &apiErr) {
		if apiErr.ErrorCode() == "UnsupportedDocumentException" {
			return true
		}
	}

	return strings.Contains(strings.ToLower(err.Error()), "unsupported")
}

// classifyError wraps an AnalyzeDocument failure into a registered code.
// The cause is preserved so IsFormatUnsupported still sees the SDK error.
func classifyError(err error) *errx.Error {
	if err == nil {
		return nil
	}

	var existing *errx.Error
	if errx.As(err, &existing) {
		return existing
	}

	var code *errx.ErrorCode
	switch {
	case IsFormatUnsupported(err):
		code = ErrUnsupportedFormat
	case isAPIErrorCode(err, "AccessDeniedException", "UnrecognizedClientException", "ExpiredTokenException"):
		code = ErrUnauthorized
	case isAPIErrorCode(err, "ThrottlingException", "ProvisionedThroughputExceededException", "LimitExceededException"):
		code = ErrThrottled
	case isAPIErrorCode(err, "DocumentTooLargeException"):
		code = ErrDocumentTooLarge
	default:
		code = ErrRequestFailed
	}

	return errorRegistry.NewWithCause(code, err)
}

func isAPIErrorCode(err error, codes ...string) bool {
	var apiErr smithy.APIError
	if !errx.As(err, &apiErr) {
		return false
	}
	for _, c := range codes {
		if apiErr.ErrorCode() == c {
			return true
		}
	}
	return false
}
