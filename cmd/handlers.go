package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/Abraxas-365/formscan/pkg/convert"
	"github.com/Abraxas-365/formscan/pkg/docfield"
	"github.com/Abraxas-365/formscan/pkg/errx"
	"github.com/Abraxas-365/formscan/pkg/logx"
	"github.com/Abraxas-365/formscan/pkg/pdfx"
	"github.com/gofiber/fiber/v2"
)

var (
	apiErrors = errx.NewRegistry("API")

	errMissingFile = apiErrors.Register(
		"MISSING_FILE",
		errx.TypeValidation,
		http.StatusBadRequest,
		"No file provided. Upload it under the 'pdf' form field",
	)
	errFileTooLarge = apiErrors.Register(
		"FILE_TOO_LARGE",
		errx.TypeValidation,
		http.StatusBadRequest,
		"File is too large for synchronous analysis",
	)
	errBadFieldsPayload = apiErrors.Register(
		"BAD_FIELDS_PAYLOAD",
		errx.TypeValidation,
		http.StatusBadRequest,
		"The 'fields' value is not a valid field list",
	)
)

// extractHandler runs the full pipeline: optional conversion to PDF,
// per-page OCR, block parsing. The response mirrors the upload contract:
// when the input was converted, the PDF actually analyzed is returned
// base64-encoded so the client can render the same pages the fields
// refer to.
func extractHandler(container *Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("pdf")
		if err != nil {
			return apiErrors.New(errMissingFile)
		}

		data, err := readUpload(fileHeader)
		if err != nil {
			return err
		}

		filename := fileHeader.Filename
		wasConverted := false

		if !convert.IsPDF(filename) {
			result, err := container.Converter.ToPDF(c.Context(), data, filename)
			if err != nil {
				return err
			}
			data = result.PDF
			filename = result.Filename
			wasConverted = true
			logx.WithFields(logx.Fields{"file": fileHeader.Filename, "bytes": len(data)}).
				Info("Converted upload to PDF")
		}

		if max := container.Config.MaxUploadBytes; len(data) > max {
			return apiErrors.NewWithMessage(errFileTooLarge,
				fmt.Sprintf("File is %d bytes; the maximum is %d", len(data), max))
		}

		analysis, err := container.Analyzer.Analyze(c.Context(), data, filename, nil)
		if err != nil {
			return err
		}

		fields := docfield.Parse(analysis.Blocks)

		response := fiber.Map{
			"success":      true,
			"fields":       fields,
			"pageCount":    analysis.PageCount,
			"wasConverted": wasConverted,
		}
		if wasConverted {
			response["pdfBase64"] = base64.StdEncoding.EncodeToString(data)
		}
		return c.JSON(response)
	}
}

// exportPDFHandler fills the uploaded PDF with interactive widgets for
// the submitted fields and returns it as an attachment.
func exportPDFHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("pdf")
		if err != nil {
			return apiErrors.New(errMissingFile)
		}
		data, err := readUpload(fileHeader)
		if err != nil {
			return err
		}

		fields, err := parseFields([]byte(c.FormValue("fields")))
		if err != nil {
			return err
		}

		filled, err := pdfx.CreateFillable(data, fields)
		if err != nil {
			return err
		}

		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="fillable-form.pdf"`)
		return c.Send(filled)
	}
}

// exportJSONHandler serializes the submitted fields with rounded
// confidence values.
func exportJSONHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Fields    []docfield.Field `json:"fields"`
			PageCount int              `json:"pageCount"`
		}
		if err := c.BodyParser(&req); err != nil {
			return apiErrors.NewWithCause(errBadFieldsPayload, err)
		}

		out, err := docfield.ExportJSON(req.Fields, req.PageCount)
		if err != nil {
			return err
		}

		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="form-fields.json"`)
		return c.Send(out)
	}
}

func healthHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": "formscan-api",
		"version": getEnv("APP_VERSION", "1.0.0"),
	})
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, apiErrors.NewWithCause(errMissingFile, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apiErrors.NewWithCause(errMissingFile, err)
	}
	return data, nil
}

func parseFields(raw []byte) ([]docfield.Field, error) {
	if len(raw) == 0 {
		return nil, apiErrors.New(errBadFieldsPayload)
	}
	var fields []docfield.Field
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, apiErrors.NewWithCause(errBadFieldsPayload, err)
	}
	return fields, nil
}
