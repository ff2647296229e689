package schema

import "fmt"

// QuestionType tags the pedagogical kind of a question. The editor offers
// a fixed menu; the tag mostly drives layout and default blocks, except
// for QuestionCreative which is the only type allowed sub-questions.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple-choice"
	QuestionCreative       QuestionType = "creative"
	QuestionShortAnswer    QuestionType = "short-answer"
	QuestionFillInBlank    QuestionType = "fill-in-blank"
	QuestionTrueFalse      QuestionType = "true-false"
	QuestionMatching       QuestionType = "matching"
	QuestionExplanation    QuestionType = "explanation"
	QuestionProblemSolving QuestionType = "problem-solving"
	QuestionConversion     QuestionType = "conversion"
	QuestionPattern        QuestionType = "pattern"
	QuestionDiagram        QuestionType = "diagram"
	QuestionConstruction   QuestionType = "construction"
	QuestionTableBased     QuestionType = "table-based"
	QuestionGraphBased     QuestionType = "graph-based"
	QuestionProof          QuestionType = "proof"
)

// QuestionTypes lists every valid question type in menu order.
var QuestionTypes = []QuestionType{
	QuestionMultipleChoice, QuestionCreative, QuestionShortAnswer,
	QuestionFillInBlank, QuestionTrueFalse, QuestionMatching,
	QuestionExplanation, QuestionProblemSolving, QuestionConversion,
	QuestionPattern, QuestionDiagram, QuestionConstruction,
	QuestionTableBased, QuestionGraphBased, QuestionProof,
}

// IsValid reports whether t is a known question type.
func (t QuestionType) IsValid() bool {
	for _, v := range QuestionTypes {
		if t == v {
			return true
		}
	}
	return false
}

// SubQuestionLabels is the fixed label alphabet for creative
// sub-questions, assigned sequentially.
var SubQuestionLabels = [4]string{"ক", "খ", "গ", "ঘ"}

// MaxSubQuestions caps the sub-question sequence per question.
const MaxSubQuestions = len(SubQuestionLabels)

// Question is one numbered entry in a paper.
//
// Number is derived: it is always the 1-based position within the paper's
// question sequence and is recomputed by Paper.Renumber after any insert,
// delete, or reorder. It is stored only so that serialized documents are
// self-describing.
type Question struct {
	ID           string        `json:"id"`
	Type         QuestionType  `json:"type"`
	Number       int           `json:"number"`
	Marks        float64       `json:"marks"`
	Optional     bool          `json:"optional,omitempty"`
	Blocks       []Block       `json:"blocks"`
	SubQuestions []SubQuestion `json:"sub_questions,omitempty"`
}

// SubQuestion is one labelled part of a creative question.
type SubQuestion struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Marks  float64 `json:"marks"`
	Blocks []Block `json:"blocks"`
}

// NewQuestion returns a question of the given type with a fresh id and a
// single empty text block to anchor the editor cursor.
func NewQuestion(t QuestionType, marks float64) Question {
	return Question{
		ID:     NewQuestionID(),
		Type:   t,
		Marks:  marks,
		Blocks: []Block{NewBlock(BlockText)},
	}
}

// CanHaveSubQuestions reports whether this question type carries
// sub-questions.
func (q *Question) CanHaveSubQuestions() bool {
	return q.Type == QuestionCreative
}

// AddSubQuestion appends a sub-question with the next free label.
// Returns an error when the question type does not allow sub-questions or
// the label alphabet is exhausted.
func (q *Question) AddSubQuestion(marks float64) (*SubQuestion, error) {
	if !q.CanHaveSubQuestions() {
		return nil, fmt.Errorf("question type %q does not allow sub-questions", q.Type)
	}
	if len(q.SubQuestions) >= MaxSubQuestions {
		return nil, fmt.Errorf("question %s already has %d sub-questions", q.ID, MaxSubQuestions)
	}
	sq := SubQuestion{
		ID:     NewSubQuestionID(),
		Label:  SubQuestionLabels[len(q.SubQuestions)],
		Marks:  marks,
		Blocks: []Block{NewBlock(BlockText)},
	}
	q.SubQuestions = append(q.SubQuestions, sq)
	return &q.SubQuestions[len(q.SubQuestions)-1], nil
}

// RemoveSubQuestion deletes the sub-question with the given id and
// relabels the survivors so labels stay a gap-free prefix of the alphabet.
// Returns false if no sub-question had that id.
func (q *Question) RemoveSubQuestion(id string) bool {
	idx := -1
	for i := range q.SubQuestions {
		if q.SubQuestions[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	q.SubQuestions = append(q.SubQuestions[:idx], q.SubQuestions[idx+1:]...)
	for i := range q.SubQuestions {
		q.SubQuestions[i].Label = SubQuestionLabels[i]
	}
	return true
}

// TotalMarks returns the question's mark value; for creative questions the
// sub-question marks take precedence when any are set.
func (q *Question) TotalMarks() float64 {
	if len(q.SubQuestions) == 0 {
		return q.Marks
	}
	var sum float64
	for i := range q.SubQuestions {
		sum += q.SubQuestions[i].Marks
	}
	if sum > 0 {
		return sum
	}
	return q.Marks
}

// Validate checks the type tag, block payloads, and sub-question label
// discipline.
func (q *Question) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("question id is required")
	}
	if !q.Type.IsValid() {
		return fmt.Errorf("question %s: unknown type %q", q.ID, q.Type)
	}
	if q.Marks < 0 {
		return fmt.Errorf("question %s: marks must not be negative", q.ID)
	}
	for i := range q.Blocks {
		if err := q.Blocks[i].Validate(); err != nil {
			return fmt.Errorf("question %s: %w", q.ID, err)
		}
	}
	if len(q.SubQuestions) > 0 && !q.CanHaveSubQuestions() {
		return fmt.Errorf("question %s: type %q must not have sub-questions", q.ID, q.Type)
	}
	if len(q.SubQuestions) > MaxSubQuestions {
		return fmt.Errorf("question %s: at most %d sub-questions allowed", q.ID, MaxSubQuestions)
	}
	for i := range q.SubQuestions {
		sq := &q.SubQuestions[i]
		if sq.ID == "" {
			return fmt.Errorf("question %s: sub-question %d missing id", q.ID, i)
		}
		if sq.Label != SubQuestionLabels[i] {
			return fmt.Errorf("question %s: sub-question %d has label %q, want %q",
				q.ID, i, sq.Label, SubQuestionLabels[i])
		}
		for j := range sq.Blocks {
			if err := sq.Blocks[j].Validate(); err != nil {
				return fmt.Errorf("question %s/%s: %w", q.ID, sq.Label, err)
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the question, keeping ids.
func (q *Question) Clone() Question {
	out := *q
	out.Blocks = cloneBlocks(q.Blocks)
	if q.SubQuestions != nil {
		out.SubQuestions = make([]SubQuestion, len(q.SubQuestions))
		for i := range q.SubQuestions {
			sq := q.SubQuestions[i]
			sq.Blocks = cloneBlocks(q.SubQuestions[i].Blocks)
			out.SubQuestions[i] = sq
		}
	}
	return out
}

func cloneBlocks(blocks []Block) []Block {
	if blocks == nil {
		return nil
	}
	out := make([]Block, len(blocks))
	for i := range blocks {
		out[i] = blocks[i].Clone()
	}
	return out
}
