package textractx

import (
	"github.com/Abraxas-365/formscan/pkg/docfield"
	"github.com/Abraxas-365/formscan/pkg/ptrx"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
)

// fromSDKBlocks converts Textract's block model into the pipeline's.
// Geometry stays in the engine's fractional coordinate space; Page is
// left unset because the synchronous API analyzes one page at a time
// and the orchestrator stamps page numbers itself.
func fromSDKBlocks(blocks []types.Block) []docfield.Block {
	out := make([]docfield.Block, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, fromSDKBlock(b))
	}
	return out
}

func fromSDKBlock(b types.Block) docfield.Block {
	block := docfield.Block{
		ID:              ptrx.ToString(b.Id),
		BlockType:       docfield.BlockType(b.BlockType),
		Text:            ptrx.ToString(b.Text),
		Confidence:      float64(ptrx.ToFloat32(b.Confidence)),
		SelectionStatus: docfield.SelectionStatus(b.SelectionStatus),
	}

	if b.Geometry != nil && b.Geometry.BoundingBox != nil {
		bb := b.Geometry.BoundingBox
		block.Geometry = &docfield.FractionalBox{
			Left:   float64(bb.Left),
			Top:    float64(bb.Top),
			Width:  float64(bb.Width),
			Height: float64(bb.Height),
		}
	}

	for _, et := range b.EntityTypes {
		block.EntityTypes = append(block.EntityTypes, docfield.EntityType(et))
	}

	for _, rel := range b.Relationships {
		block.Relationships = append(block.Relationships, docfield.Relationship{
			Type: docfield.RelationshipType(rel.Type),
			IDs:  rel.Ids,
		})
	}

	return block
}
