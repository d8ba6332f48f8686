package textractx

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Abraxas-365/formscan/pkg/docfield"
	"github.com/Abraxas-365/formscan/pkg/errx"
	"github.com/Abraxas-365/formscan/pkg/ptrx"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
	"github.com/aws/smithy-go"
)

func TestIsFormatUnsupported(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"typed exception", &types.UnsupportedDocumentException{Message: ptrx.String("no")}, true},
		{"wrapped typed exception", fmt.Errorf("analyze: %w", &types.UnsupportedDocumentException{}), true},
		{"generic api error with code", &smithy.GenericAPIError{Code: "UnsupportedDocumentException"}, true},
		{"message substring", errors.New("document format unsupported by engine"), true},
		{"throttle", &smithy.GenericAPIError{Code: "ThrottlingException", Message: "slow down"}, false},
		{"auth", &smithy.GenericAPIError{Code: "AccessDeniedException", Message: "denied"}, false},
		{"plain error", errors.New("connection reset"), false},
	}

	for _, c := range cases {
		if got := IsFormatUnsupported(c.err); got != c.want {
			t.Fatalf("%s: IsFormatUnsupported = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestClassifyError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code *errx.ErrorCode
	}{
		{"unsupported", &types.UnsupportedDocumentException{}, ErrUnsupportedFormat},
		{"auth", &smithy.GenericAPIError{Code: "AccessDeniedException"}, ErrUnauthorized},
		{"throttle", &smithy.GenericAPIError{Code: "ThrottlingException"}, ErrThrottled},
		{"too large", &smithy.GenericAPIError{Code: "DocumentTooLargeException"}, ErrDocumentTooLarge},
		{"other", errors.New("dial tcp: timeout"), ErrRequestFailed},
	}

	for _, c := range cases {
		got := classifyError(c.err)
		if !errx.IsCode(got, c.code) {
			t.Fatalf("%s: classified as %v, want code %s", c.name, got, c.code.Code)
		}
		if !errors.Is(got, c.err) {
			t.Fatalf("%s: classification lost the cause", c.name)
		}
	}
}

func TestClassifyErrorStaysStableThroughRewrap(t *testing.T) {
	first := classifyError(&smithy.GenericAPIError{Code: "ThrottlingException"})
	second := classifyError(first)
	if !errx.IsCode(second, ErrThrottled) {
		t.Fatalf("re-classification changed the code: %v", second)
	}
}

func TestFromSDKBlock(t *testing.T) {
	sdk := types.Block{
		Id:         ptrx.String("b1"),
		BlockType:  types.BlockTypeKeyValueSet,
		Text:       ptrx.String("Name"),
		Confidence: ptrx.Float32(97.5),
		Geometry: &types.Geometry{
			BoundingBox: &types.BoundingBox{Left: 0.1, Top: 0.2, Width: 0.3, Height: 0.05},
		},
		EntityTypes: []types.EntityType{types.EntityTypeKey},
		Relationships: []types.Relationship{
			{Type: types.RelationshipTypeValue, Ids: []string{"b2"}},
			{Type: types.RelationshipTypeChild, Ids: []string{"b3", "b4"}},
		},
		SelectionStatus: types.SelectionStatusSelected,
	}

	b := fromSDKBlock(sdk)
	if b.ID != "b1" || b.BlockType != docfield.BlockTypeKeyValueSet || b.Text != "Name" {
		t.Fatalf("unexpected block %+v", b)
	}
	if b.Confidence != 97.5 {
		t.Fatalf("unexpected confidence %v", b.Confidence)
	}
	if b.Geometry == nil || b.Geometry.Left != float64(float32(0.1)) {
		t.Fatalf("unexpected geometry %+v", b.Geometry)
	}
	if !b.HasEntityType(docfield.EntityTypeKey) {
		t.Fatal("entity type lost in conversion")
	}
	rel, ok := b.Relationship(docfield.RelationshipTypeChild)
	if !ok || len(rel.IDs) != 2 {
		t.Fatalf("child relationship lost: %+v", b.Relationships)
	}
	if b.SelectionStatus != docfield.SelectionStatusSelected {
		t.Fatalf("unexpected selection status %q", b.SelectionStatus)
	}
	if b.Page != 0 {
		t.Fatalf("page must be unset until the orchestrator tags it, got %d", b.Page)
	}
}

type fakeAnalyzeAPI struct {
	out *textract.AnalyzeDocumentOutput
	err error

	gotBytes  []byte
	gotBucket string
	gotKey    string
}

func (f *fakeAnalyzeAPI) AnalyzeDocument(_ context.Context, params *textract.AnalyzeDocumentInput, _ ...func(*textract.Options)) (*textract.AnalyzeDocumentOutput, error) {
	if params.Document.Bytes != nil {
		f.gotBytes = params.Document.Bytes
	}
	if params.Document.S3Object != nil {
		f.gotBucket = ptrx.ToString(params.Document.S3Object.Bucket)
		f.gotKey = ptrx.ToString(params.Document.S3Object.Name)
	}
	return f.out, f.err
}

func TestAnalyzeBytes(t *testing.T) {
	api := &fakeAnalyzeAPI{
		out: &textract.AnalyzeDocumentOutput{
			Blocks: []types.Block{{Id: ptrx.String("b1"), BlockType: types.BlockTypeLine}},
		},
	}
	c := NewFromAPI(api)

	blocks, err := c.AnalyzeBytes(context.Background(), []byte("%PDF"))
	if err != nil {
		t.Fatalf("AnalyzeBytes failed: %v", err)
	}
	if len(blocks) != 1 || blocks[0].ID != "b1" {
		t.Fatalf("unexpected blocks %+v", blocks)
	}
	if string(api.gotBytes) != "%PDF" {
		t.Fatal("document bytes not passed inline")
	}
}

func TestAnalyzeS3ObjectPassesReference(t *testing.T) {
	api := &fakeAnalyzeAPI{out: &textract.AnalyzeDocumentOutput{}}
	c := NewFromAPI(api)

	if _, err := c.AnalyzeS3Object(context.Background(), "bucket", "temp/key"); err != nil {
		t.Fatalf("AnalyzeS3Object failed: %v", err)
	}
	if api.gotBucket != "bucket" || api.gotKey != "temp/key" {
		t.Fatalf("reference not passed: %q %q", api.gotBucket, api.gotKey)
	}
}

func TestAnalyzeBytesClassifiesFailure(t *testing.T) {
	api := &fakeAnalyzeAPI{err: &smithy.GenericAPIError{Code: "ThrottlingException"}}
	c := NewFromAPI(api)

	_, err := c.AnalyzeBytes(context.Background(), []byte("%PDF"))
	if !errx.IsCode(err, ErrThrottled) {
		t.Fatalf("expected throttled classification, got %v", err)
	}
	if IsFormatUnsupported(err) {
		t.Fatal("throttle must never classify as unsupported")
	}
}
