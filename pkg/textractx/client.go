// Package textractx wraps the AWS Textract synchronous analysis API and
// converts its block model into the pipeline's own primitive type.
package textractx

import (
	"context"

	"github.com/Abraxas-365/formscan/pkg/docfield"
	"github.com/Abraxas-365/formscan/pkg/ptrx"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
)

// Client is the OCR engine contract consumed by the strategy runner.
type Client interface {
	// AnalyzeBytes submits document bytes inline.
	AnalyzeBytes(ctx context.Context, data []byte) ([]docfield.Block, error)

	// AnalyzeS3Object submits a document by reference to a stored object.
	AnalyzeS3Object(ctx context.Context, bucket, key string) ([]docfield.Block, error)
}

// analyzeDocumentAPI is the slice of the Textract SDK surface used here.
type analyzeDocumentAPI interface {
	AnalyzeDocument(ctx context.Context, params *textract.AnalyzeDocumentInput, optFns ...func(*textract.Options)) (*textract.AnalyzeDocumentOutput, error)
}

// TextractClient implements Client against AWS Textract.
type TextractClient struct {
	api analyzeDocumentAPI
}

// New creates a TextractClient from an AWS config.
func New(cfg aws.Config) *TextractClient {
	return &TextractClient{api: textract.NewFromConfig(cfg)}
}

// NewFromAPI creates a TextractClient with a caller-supplied API,
// primarily for tests.
func NewFromAPI(api analyzeDocumentAPI) *TextractClient {
	return &TextractClient{api: api}
}

// featureTypes requested on every analysis: forms drive the field
// extraction, tables keep cell text reachable as LINE/WORD blocks.
var featureTypes = []types.FeatureType{
	types.FeatureTypeForms,
	types.FeatureTypeTables,
}

func (c *TextractClient) AnalyzeBytes(ctx context.Context, data []byte) ([]docfield.Block, error) {
	out, err := c.api.AnalyzeDocument(ctx, &textract.AnalyzeDocumentInput{
		Document: &types.Document{
			Bytes: data,
		},
		FeatureTypes: featureTypes,
	})
	if err != nil {
		return nil, classifyError(err)
	}
	return fromSDKBlocks(out.Blocks), nil
}

func (c *TextractClient) AnalyzeS3Object(ctx context.Context, bucket, key string) ([]docfield.Block, error) {
	out, err := c.api.AnalyzeDocument(ctx, &textract.AnalyzeDocumentInput{
		Document: &types.Document{
			S3Object: &types.S3Object{
				Bucket: ptrx.String(bucket),
				Name:   ptrx.String(key),
			},
		},
		FeatureTypes: featureTypes,
	})
	if err != nil {
		return nil, classifyError(err)
	}
	return fromSDKBlocks(out.Blocks), nil
}
