package offlabel

import "github.com/paperwork/paperwork/internal/domain/docmodel"

type SignatureBlock struct {
	Label string `json:"label"`
	Name  string `json:"name"`
}

// LetterSection is one physical letter. Paragraphs never contain a newline.
type LetterSection struct {
	SenderLines         []string         `json:"senderLines"`
	AddresseeLines      []string         `json:"addresseeLines"`
	DateLine            string           `json:"dateLine"`
	Subject             string           `json:"subject"`
	Paragraphs          []string         `json:"paragraphs"`
	AttachmentsHeading  string           `json:"attachmentsHeading"`
	Attachments         []string         `json:"attachments"`
	SignatureBlocks     []SignatureBlock `json:"signatureBlocks"`
	LiabilityHeading    string           `json:"liabilityHeading,omitempty"`
	LiabilityParagraphs []string         `json:"liabilityParagraphs,omitempty"`
	LiabilityDateLine   string           `json:"liabilityDateLine,omitempty"`
	LiabilitySignerName string           `json:"liabilitySignerName,omitempty"`
}

// ExportBundle aggregates the three letters with their sources and checklist.
// The DOCX and the PDF export both render from it.
type ExportBundle struct {
	KK        LetterSection `json:"kk"`
	Arzt      LetterSection `json:"arzt"`
	Part3     LetterSection `json:"part3"`
	Sources   []string      `json:"sources"`
	Checklist []string      `json:"checklist"`
}

// Document is the block tree of one letter.
type Document struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Blocks []Block `json:"blocks"`
}

// Documents holds the insurer application (part 1), the practice cover
// letter with liability declaration (part 2) and the physician statement
// template (part 3).
type Documents struct {
	Part1 Document `json:"part1"`
	Part2 Document `json:"part2"`
	Part3 Document `json:"part3"`
}

// BuildExportBundle builds the letters of one application.
func BuildExportBundle(in docmodel.Input) ExportBundle {
	return Build(in).Bundle
}

// BuildOfflabelDocuments renders the three letters as block trees.
func BuildOfflabelDocuments(in docmodel.Input) Documents {
	return Build(in).Documents()
}

// letterDocument renders a section and its body as a printable block tree.
func letterDocument(id string, s LetterSection, body []Block) Document {
	blocks := []Block{}
	if len(s.SenderLines) > 0 {
		blocks = append(blocks, Block{Kind: BlockLineBreaks, ID: "sender", Lines: s.SenderLines})
	}
	if len(s.AddresseeLines) > 0 {
		blocks = append(blocks, Block{Kind: BlockLineBreaks, ID: "addressee", Lines: s.AddresseeLines})
	}
	blocks = append(blocks,
		Block{Kind: BlockParagraph, ID: "date", Text: s.DateLine},
		Block{Kind: BlockHeading, ID: "subject", Text: s.Subject},
	)
	blocks = append(blocks, body...)
	if len(s.Attachments) > 0 {
		blocks = append(blocks,
			Block{Kind: BlockHeading, ID: "attachments", Text: s.AttachmentsHeading},
			Block{Kind: BlockList, ID: "attachments", Items: s.Attachments},
		)
	}
	if len(s.LiabilityParagraphs) > 0 {
		blocks = append(blocks, Block{Kind: BlockPageBreak})
		if s.LiabilityHeading != "" {
			blocks = append(blocks, Block{Kind: BlockHeading, ID: "liability", Text: s.LiabilityHeading})
		}
		for _, p := range s.LiabilityParagraphs {
			blocks = append(blocks, Block{Kind: BlockParagraph, ID: "liability", Text: p})
		}
		blocks = append(blocks,
			Block{Kind: BlockParagraph, ID: "liabilityDate", Text: s.LiabilityDateLine},
			Block{Kind: BlockParagraph, ID: "liabilitySigner", Text: s.LiabilitySignerName},
		)
	}
	return Document{ID: id, Title: s.Subject, Blocks: blocks}
}
