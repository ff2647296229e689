package schema

import (
	"testing"
)

func testSetup() Setup {
	return Setup{
		Class:        "Class 8",
		Subject:      "Mathematics",
		ExamType:     "Half Yearly",
		DurationMins: 180,
		TotalMarks:   100,
		Columns:      1,
	}
}

func checkDense(t *testing.T, p *Paper) {
	t.Helper()
	for i := range p.Questions {
		if p.Questions[i].Number != i+1 {
			t.Fatalf("question at position %d numbered %d", i, p.Questions[i].Number)
		}
	}
}

func TestNewPaper(t *testing.T) {
	p := NewPaper(testSetup())
	if p.ID.IsZero() {
		t.Fatal("new paper has no id")
	}
	if !p.ID.Temporary() {
		t.Error("new paper id should be temporary")
	}
	if err := p.Validate(); err != nil {
		t.Errorf("new paper invalid: %v", err)
	}
}

func TestRenumberStaysDense(t *testing.T) {
	p := NewPaper(testSetup())

	// Insert at every position of a growing paper, checking density each time.
	for i := 0; i < 10; i++ {
		p.InsertQuestion(i/2, NewQuestion(QuestionShortAnswer, 2))
		checkDense(t, p)
	}
	if len(p.Questions) != 10 {
		t.Fatalf("expected 10 questions, got %d", len(p.Questions))
	}

	// Remove from the middle and both ends, computing the tail index at
	// use time so it tracks the shrinking slice.
	for _, idx := range []int{5, 0} {
		id := p.Questions[idx].ID
		if !p.RemoveQuestion(id) {
			t.Fatalf("RemoveQuestion(%s) returned false", id)
		}
		checkDense(t, p)
	}
	last := p.Questions[len(p.Questions)-1].ID
	if !p.RemoveQuestion(last) {
		t.Fatalf("RemoveQuestion(%s) returned false", last)
	}
	checkDense(t, p)

	// Move across the sequence.
	if err := p.MoveQuestion(0, len(p.Questions)-1); err != nil {
		t.Fatalf("MoveQuestion failed: %v", err)
	}
	checkDense(t, p)

	if err := p.Validate(); err != nil {
		t.Errorf("paper invalid after edits: %v", err)
	}
}

func TestInsertQuestionClampsPosition(t *testing.T) {
	p := NewPaper(testSetup())
	p.InsertQuestion(99, NewQuestion(QuestionProof, 5))
	p.InsertQuestion(-3, NewQuestion(QuestionMatching, 5))
	checkDense(t, p)
	if p.Questions[0].Type != QuestionMatching {
		t.Errorf("negative insert should land at front, got %q", p.Questions[0].Type)
	}
}

func TestRemoveQuestionMissingID(t *testing.T) {
	p := NewPaper(testSetup())
	p.AppendQuestion(NewQuestion(QuestionShortAnswer, 2))
	if p.RemoveQuestion("q-nope") {
		t.Error("RemoveQuestion of unknown id returned true")
	}
	if len(p.Questions) != 1 {
		t.Errorf("collection changed by failed remove")
	}
}

func TestValidateRejectsStaleNumbers(t *testing.T) {
	p := NewPaper(testSetup())
	p.AppendQuestion(NewQuestion(QuestionShortAnswer, 2))
	p.AppendQuestion(NewQuestion(QuestionShortAnswer, 2))
	p.Questions[1].Number = 7
	if err := p.Validate(); err == nil {
		t.Error("expected validation error for stale question number")
	}
}

func TestValidateRejectsBadColumns(t *testing.T) {
	s := testSetup()
	s.Columns = 3
	p := NewPaper(Setup{})
	p.Setup = s
	if err := p.Validate(); err == nil {
		t.Error("expected validation error for 3-column layout")
	}
}

func TestCloneWithFreshIDs(t *testing.T) {
	p := NewPaper(testSetup())
	q := NewQuestion(QuestionCreative, 10)
	if _, err := q.AddSubQuestion(4); err != nil {
		t.Fatalf("AddSubQuestion failed: %v", err)
	}
	tbl := NewBlock(BlockTable)
	tbl.Table.Data[0][0] = "shared?"
	q.Blocks = append(q.Blocks, tbl)
	p.AppendQuestion(q)

	dup := p.CloneWithFreshIDs()

	if dup.ID.Value == p.ID.Value {
		t.Error("duplicate shares paper id")
	}
	if !dup.ID.Temporary() {
		t.Error("duplicate id should be temporary")
	}
	if dup.Questions[0].ID == p.Questions[0].ID {
		t.Error("duplicate shares question id")
	}
	if dup.Questions[0].SubQuestions[0].ID == p.Questions[0].SubQuestions[0].ID {
		t.Error("duplicate shares sub-question id")
	}

	// Table rows must not be shared: a write through the copy may not show
	// up in the source.
	dup.Questions[0].Blocks[1].Table.Data[0][0] = "mutated"
	if p.Questions[0].Blocks[1].Table.Data[0][0] != "shared?" {
		t.Error("duplicate table row aliases the source")
	}

	if err := dup.Validate(); err != nil {
		t.Errorf("duplicate invalid: %v", err)
	}
}

func TestPaperTitle(t *testing.T) {
	p := NewPaper(testSetup())
	if got := p.Title(); got != "Mathematics — Half Yearly — Class 8" {
		t.Errorf("Title() = %q", got)
	}
	empty := NewPaper(Setup{Columns: 1})
	if got := empty.Title(); got != "Untitled Paper" {
		t.Errorf("Title() on empty setup = %q", got)
	}
}

func TestTotalMarks(t *testing.T) {
	p := NewPaper(testSetup())
	p.AppendQuestion(NewQuestion(QuestionShortAnswer, 2.5))

	q := NewQuestion(QuestionCreative, 10)
	if _, err := q.AddSubQuestion(3); err != nil {
		t.Fatal(err)
	}
	if _, err := q.AddSubQuestion(4); err != nil {
		t.Fatal(err)
	}
	p.AppendQuestion(q)

	// Sub-question marks override the question-level mark when present.
	if got := p.TotalMarks(); got != 9.5 {
		t.Errorf("TotalMarks() = %v, want 9.5", got)
	}
}
