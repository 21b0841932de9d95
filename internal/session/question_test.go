package session

import (
	"reflect"
	"testing"

	"github.com/abhisek/skillquest/internal/api"
)

func TestNormalize_LegacyFlatFields(t *testing.T) {
	details := []*api.TaskDetail{
		{ID: 1, Question: "2+2?", Options: []string{"3", "4"}, CorrectAnswer: "4"},
		{ID: 2, Question: "Pick one", Options: []string{"a"}, Questions: []api.Question{}},
		{ID: 3},
	}

	for _, d := range details {
		qs := Normalize(d)
		if len(qs) != 1 {
			t.Fatalf("task %d: len = %d, want 1", d.ID, len(qs))
		}
		want := Question{Kind: KindChoice, Text: d.Question, Options: d.Options, CorrectAnswer: d.CorrectAnswer}
		if !reflect.DeepEqual(qs[0], want) {
			t.Errorf("task %d: got %+v, want %+v", d.ID, qs[0], want)
		}
	}
}

func TestNormalize_QuestionsArrayPreservesOrder(t *testing.T) {
	d := &api.TaskDetail{
		ID:       4,
		Question: "ignored",
		Options:  []string{"x"},
		Questions: []api.Question{
			{Text: "first", Options: []string{"a", "b"}, CorrectAnswer: "b"},
			{Type: "text", Text: "second"},
			{Type: "choice", Text: "third", Options: []string{"c"}},
		},
	}

	qs := Normalize(d)
	if len(qs) != 3 {
		t.Fatalf("len = %d, want 3", len(qs))
	}
	wantKinds := []Kind{KindChoice, KindText, KindChoice}
	for i, q := range qs {
		if q.Text != d.Questions[i].Text {
			t.Errorf("qs[%d].Text = %q, want %q", i, q.Text, d.Questions[i].Text)
		}
		if q.Kind != wantKinds[i] {
			t.Errorf("qs[%d].Kind = %q, want %q", i, q.Kind, wantKinds[i])
		}
		if !reflect.DeepEqual(q.Options, d.Questions[i].Options) {
			t.Errorf("qs[%d].Options = %v, want %v", i, q.Options, d.Questions[i].Options)
		}
	}
	if qs[0].CorrectAnswer != "b" {
		t.Errorf("qs[0].CorrectAnswer = %q, want b", qs[0].CorrectAnswer)
	}
}

func TestQuestionGrade(t *testing.T) {
	graded := Question{Kind: KindChoice, Options: []string{"A", "B", "C"}, CorrectAnswer: "B"}
	if graded.Grade(0) {
		t.Error("option A should be wrong")
	}
	if !graded.Grade(1) {
		t.Error("option B should be correct")
	}

	survey := Question{Kind: KindChoice, Options: []string{"yes", "no"}}
	for i := range survey.Options {
		if !survey.Grade(i) {
			t.Errorf("ungraded option %d should be accepted", i)
		}
	}
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		outcomes []bool
		total    int
		want     int
	}{
		{[]bool{true, true, false, true, false}, 5, 60},
		{[]bool{true, false}, 2, 50},
		{[]bool{true, true, false}, 3, 67},
		{[]bool{true, false, false}, 3, 33},
		{nil, 4, 0},
		{nil, 0, 0},
	}
	for _, tt := range tests {
		if got := Accuracy(tt.outcomes, tt.total); got != tt.want {
			t.Errorf("Accuracy(%v, %d) = %d, want %d", tt.outcomes, tt.total, got, tt.want)
		}
	}
}

func TestStateProgress(t *testing.T) {
	qs := make([]Question, 5)

	s := State{Phase: PhaseIdle, Questions: qs, Index: 2}
	if got := s.Progress(); got != 0.4 {
		t.Errorf("Progress at index 2 = %v, want 0.4", got)
	}

	s = State{Phase: PhaseSummary, Questions: qs, Index: 4}
	if got := s.Progress(); got != 1.0 {
		t.Errorf("Progress at summary = %v, want 1.0", got)
	}

	if got := (State{Phase: PhaseLoading}).Progress(); got != 0 {
		t.Errorf("Progress while loading = %v, want 0", got)
	}
}
