package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// BlockType tags the content payload carried by a Block.
type BlockType string

const (
	BlockText    BlockType = "text"
	BlockFormula BlockType = "formula"
	BlockImage   BlockType = "image"
	BlockTable   BlockType = "table"
	BlockDiagram BlockType = "diagram"
	BlockList    BlockType = "list"
	BlockBlank   BlockType = "blank"
)

// BlockTypes lists every valid block type in display order.
var BlockTypes = []BlockType{
	BlockText, BlockFormula, BlockImage, BlockTable,
	BlockDiagram, BlockList, BlockBlank,
}

// IsValid reports whether t is a known block type.
func (t BlockType) IsValid() bool {
	for _, v := range BlockTypes {
		if t == v {
			return true
		}
	}
	return false
}

// TextContent is a plain prose run.
type TextContent struct {
	Text string `json:"text"`
}

// FormulaContent is a LaTeX math expression.
type FormulaContent struct {
	LaTeX string `json:"latex"`
}

// ImageContent references an uploaded image by URL.
type ImageContent struct {
	URL     string `json:"url"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	Caption string `json:"caption,omitempty"`
}

// TableContent is a rectangular grid. Rows and Cols always match the
// actual dimensions of Headers and Data; mutate only through the functions
// in table.go.
type TableContent struct {
	Rows    int        `json:"rows"`
	Cols    int        `json:"cols"`
	Headers []string   `json:"headers"`
	Data    [][]string `json:"data"`
}

// DiagramContent is a textual description rendered as a placeholder box.
type DiagramContent struct {
	Description string `json:"description"`
}

// ListContent is an ordered list of short items.
type ListContent struct {
	Items []string `json:"items"`
}

// BlankContent reserves ruled answer lines.
type BlankContent struct {
	Lines int `json:"lines"`
}

// Block is one typed content unit inside a question or sub-question.
// Exactly one payload pointer is non-nil, matching Type.
type Block struct {
	ID   string
	Type BlockType

	Text    *TextContent
	Formula *FormulaContent
	Image   *ImageContent
	Table   *TableContent
	Diagram *DiagramContent
	List    *ListContent
	Blank   *BlankContent
}

// NewBlock returns a block of the given type with its zero-value payload
// populated. The payload is never nil, so editors can bind form fields
// without nil checks. Unknown types fall back to an empty text block.
func NewBlock(t BlockType) Block {
	b := Block{ID: NewBlockID(), Type: t}
	switch t {
	case BlockFormula:
		b.Formula = &FormulaContent{}
	case BlockImage:
		b.Image = &ImageContent{}
	case BlockTable:
		tc := NewTable(2, 2)
		b.Table = &tc
	case BlockDiagram:
		b.Diagram = &DiagramContent{}
	case BlockList:
		b.List = &ListContent{Items: []string{""}}
	case BlockBlank:
		b.Blank = &BlankContent{Lines: 3}
	default:
		b.Type = BlockText
		b.Text = &TextContent{}
	}
	return b
}

// HasContent reports whether the block contributes visible output. The
// print pipeline uses this to skip blocks the author added but never
// filled in.
func (b *Block) HasContent() bool {
	switch b.Type {
	case BlockText:
		return b.Text != nil && strings.TrimSpace(b.Text.Text) != ""
	case BlockFormula:
		return b.Formula != nil && strings.TrimSpace(b.Formula.LaTeX) != ""
	case BlockImage:
		return b.Image != nil && strings.TrimSpace(b.Image.URL) != ""
	case BlockTable:
		if b.Table == nil {
			return false
		}
		for _, h := range b.Table.Headers {
			if strings.TrimSpace(h) != "" {
				return true
			}
		}
		for _, row := range b.Table.Data {
			for _, cell := range row {
				if strings.TrimSpace(cell) != "" {
					return true
				}
			}
		}
		return false
	case BlockDiagram:
		return b.Diagram != nil && strings.TrimSpace(b.Diagram.Description) != ""
	case BlockList:
		if b.List == nil {
			return false
		}
		for _, item := range b.List.Items {
			if strings.TrimSpace(item) != "" {
				return true
			}
		}
		return false
	case BlockBlank:
		// Ruled lines are output in themselves.
		return b.Blank != nil && b.Blank.Lines > 0
	}
	return false
}

// Validate checks the type tag and that the matching payload is present.
func (b *Block) Validate() error {
	if b.ID == "" {
		return fmt.Errorf("block id is required")
	}
	if !b.Type.IsValid() {
		return fmt.Errorf("unknown block type %q", b.Type)
	}
	if b.content() == nil {
		return fmt.Errorf("block %s: missing %s content", b.ID, b.Type)
	}
	if b.Type == BlockTable {
		if err := b.Table.Validate(); err != nil {
			return fmt.Errorf("block %s: %w", b.ID, err)
		}
	}
	if b.Type == BlockBlank && b.Blank.Lines < 0 {
		return fmt.Errorf("block %s: lines must not be negative", b.ID)
	}
	return nil
}

// Clone returns a deep copy with the same id. Table rows and list items
// are freshly allocated so the copy never writes through to the original.
func (b *Block) Clone() Block {
	out := Block{ID: b.ID, Type: b.Type}
	switch {
	case b.Text != nil:
		c := *b.Text
		out.Text = &c
	case b.Formula != nil:
		c := *b.Formula
		out.Formula = &c
	case b.Image != nil:
		c := *b.Image
		out.Image = &c
	case b.Table != nil:
		c := CloneTable(*b.Table)
		out.Table = &c
	case b.Diagram != nil:
		c := *b.Diagram
		out.Diagram = &c
	case b.List != nil:
		c := ListContent{Items: append([]string(nil), b.List.Items...)}
		out.List = &c
	case b.Blank != nil:
		c := *b.Blank
		out.Blank = &c
	}
	return out
}

func (b *Block) content() interface{} {
	switch b.Type {
	case BlockText:
		if b.Text != nil {
			return b.Text
		}
	case BlockFormula:
		if b.Formula != nil {
			return b.Formula
		}
	case BlockImage:
		if b.Image != nil {
			return b.Image
		}
	case BlockTable:
		if b.Table != nil {
			return b.Table
		}
	case BlockDiagram:
		if b.Diagram != nil {
			return b.Diagram
		}
	case BlockList:
		if b.List != nil {
			return b.List
		}
	case BlockBlank:
		if b.Blank != nil {
			return b.Blank
		}
	}
	return nil
}

// blockWire is the serialized form: {id, type, content}.
type blockWire struct {
	ID      string          `json:"id"`
	Type    BlockType       `json:"type"`
	Content json.RawMessage `json:"content"`
}

// MarshalJSON flattens the union to {id, type, content}.
func (b Block) MarshalJSON() ([]byte, error) {
	content := b.content()
	if content == nil {
		return nil, fmt.Errorf("block %s: no content for type %q", b.ID, b.Type)
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(blockWire{ID: b.ID, Type: b.Type, Content: raw})
}

// UnmarshalJSON routes the content payload by type tag.
func (b *Block) UnmarshalJSON(data []byte) error {
	var w blockWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*b = Block{ID: w.ID, Type: w.Type}
	if len(w.Content) == 0 {
		return fmt.Errorf("block %s: missing content", w.ID)
	}
	var target interface{}
	switch w.Type {
	case BlockText:
		b.Text = &TextContent{}
		target = b.Text
	case BlockFormula:
		b.Formula = &FormulaContent{}
		target = b.Formula
	case BlockImage:
		b.Image = &ImageContent{}
		target = b.Image
	case BlockTable:
		b.Table = &TableContent{}
		target = b.Table
	case BlockDiagram:
		b.Diagram = &DiagramContent{}
		target = b.Diagram
	case BlockList:
		b.List = &ListContent{}
		target = b.List
	case BlockBlank:
		b.Blank = &BlankContent{}
		target = b.Blank
	default:
		return fmt.Errorf("block %s: unknown type %q", w.ID, w.Type)
	}
	if err := json.Unmarshal(w.Content, target); err != nil {
		return fmt.Errorf("block %s: invalid %s content: %w", w.ID, w.Type, err)
	}
	if b.Type == BlockTable {
		*b.Table = NormalizeTable(*b.Table)
	}
	return nil
}
