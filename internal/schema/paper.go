package schema

import (
	"fmt"
	"strings"
	"time"
)

// Setup carries the exam metadata collected when a paper is created.
type Setup struct {
	Class        string `json:"class"`
	Subject      string `json:"subject"`
	ExamType     string `json:"exam_type"`
	ExamDate     string `json:"exam_date,omitempty"` // YYYY-MM-DD
	DurationMins int    `json:"duration_mins"`
	TotalMarks   int    `json:"total_marks"`
	Columns      int    `json:"columns"` // print layout, 1 or 2

	SchoolName    string `json:"school_name,omitempty"`
	SchoolAddress string `json:"school_address,omitempty"`
	SchoolLogoURL string `json:"school_logo_url,omitempty"`
}

// Paper is the root exam-document aggregate. The local store owns it; the
// sync engine only holds a transient reference while reconciling ids.
type Paper struct {
	ID        PaperID    `json:"id"`
	Setup     Setup      `json:"setup"`
	Questions []Question `json:"questions"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewPaper creates an empty paper with a fresh temporary id.
func NewPaper(setup Setup) *Paper {
	if setup.Columns == 0 {
		setup.Columns = 1
	}
	now := time.Now().UTC()
	return &Paper{
		ID:        NewTemporaryID(),
		Setup:     setup,
		Questions: []Question{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Title returns the display title used for listings and the remote store.
func (p *Paper) Title() string {
	parts := make([]string, 0, 3)
	if p.Setup.Subject != "" {
		parts = append(parts, p.Setup.Subject)
	}
	if p.Setup.ExamType != "" {
		parts = append(parts, p.Setup.ExamType)
	}
	if p.Setup.Class != "" {
		parts = append(parts, p.Setup.Class)
	}
	if len(parts) == 0 {
		return "Untitled Paper"
	}
	return strings.Join(parts, " — ")
}

// Touch stamps UpdatedAt with the current time.
func (p *Paper) Touch() {
	p.UpdatedAt = time.Now().UTC()
}

// Renumber recomputes the dense 1-based question numbers. Numbers are
// derived from position, never authoritative on their own; call this after
// every insert, delete, or reorder.
func (p *Paper) Renumber() {
	for i := range p.Questions {
		p.Questions[i].Number = i + 1
	}
}

// AppendQuestion adds q at the end of the sequence and renumbers.
func (p *Paper) AppendQuestion(q Question) {
	p.Questions = append(p.Questions, q)
	p.Renumber()
}

// InsertQuestion adds q before position i (clamped to the valid range) and
// renumbers.
func (p *Paper) InsertQuestion(i int, q Question) {
	if i < 0 {
		i = 0
	}
	if i > len(p.Questions) {
		i = len(p.Questions)
	}
	p.Questions = append(p.Questions, Question{})
	copy(p.Questions[i+1:], p.Questions[i:])
	p.Questions[i] = q
	p.Renumber()
}

// RemoveQuestion deletes the question with the given id and renumbers.
// Returns false if no question had that id.
func (p *Paper) RemoveQuestion(id string) bool {
	for i := range p.Questions {
		if p.Questions[i].ID == id {
			p.Questions = append(p.Questions[:i], p.Questions[i+1:]...)
			p.Renumber()
			return true
		}
	}
	return false
}

// MoveQuestion moves the question at from to position to and renumbers.
func (p *Paper) MoveQuestion(from, to int) error {
	n := len(p.Questions)
	if from < 0 || from >= n {
		return fmt.Errorf("from %d out of range [0,%d)", from, n)
	}
	if to < 0 || to >= n {
		return fmt.Errorf("to %d out of range [0,%d)", to, n)
	}
	q := p.Questions[from]
	p.Questions = append(p.Questions[:from], p.Questions[from+1:]...)
	p.Questions = append(p.Questions, Question{})
	copy(p.Questions[to+1:], p.Questions[to:])
	p.Questions[to] = q
	p.Renumber()
	return nil
}

// QuestionByID returns the question with the given id, or nil.
func (p *Paper) QuestionByID(id string) *Question {
	for i := range p.Questions {
		if p.Questions[i].ID == id {
			return &p.Questions[i]
		}
	}
	return nil
}

// Validate checks the whole document: id presence, question payloads, and
// the derived-number invariant.
func (p *Paper) Validate() error {
	if p.ID.IsZero() {
		return fmt.Errorf("paper id is required")
	}
	if p.Setup.Columns != 1 && p.Setup.Columns != 2 {
		return fmt.Errorf("layout columns must be 1 or 2 (got %d)", p.Setup.Columns)
	}
	if p.CreatedAt.IsZero() {
		return fmt.Errorf("created_at is required")
	}
	seen := make(map[string]bool, len(p.Questions))
	for i := range p.Questions {
		q := &p.Questions[i]
		if err := q.Validate(); err != nil {
			return err
		}
		if seen[q.ID] {
			return fmt.Errorf("duplicate question id %s", q.ID)
		}
		seen[q.ID] = true
		if q.Number != i+1 {
			return fmt.Errorf("question %s numbered %d at position %d", q.ID, q.Number, i+1)
		}
	}
	return nil
}

// Clone returns a deep copy of the paper with the same ids. Use
// CloneWithFreshIDs for duplication.
func (p *Paper) Clone() *Paper {
	out := *p
	out.Questions = make([]Question, len(p.Questions))
	for i := range p.Questions {
		out.Questions[i] = p.Questions[i].Clone()
	}
	return &out
}

// CloneWithFreshIDs returns a deep copy carrying a new temporary paper id
// and fresh ids on every question, sub-question, and block, so the copy
// lives an independent life in both stores.
func (p *Paper) CloneWithFreshIDs() *Paper {
	out := p.Clone()
	out.ID = NewTemporaryID()
	now := time.Now().UTC()
	out.CreatedAt = now
	out.UpdatedAt = now
	for i := range out.Questions {
		q := &out.Questions[i]
		q.ID = NewQuestionID()
		for j := range q.Blocks {
			q.Blocks[j].ID = NewBlockID()
		}
		for j := range q.SubQuestions {
			sq := &q.SubQuestions[j]
			sq.ID = NewSubQuestionID()
			for k := range sq.Blocks {
				sq.Blocks[k].ID = NewBlockID()
			}
		}
	}
	return out
}

// TotalMarks sums the mark values of all questions.
func (p *Paper) TotalMarks() float64 {
	var sum float64
	for i := range p.Questions {
		sum += p.Questions[i].TotalMarks()
	}
	return sum
}
