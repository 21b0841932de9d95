package session

import "github.com/abhisek/skillquest/internal/api"

// Kind is how a question is answered.
type Kind string

const (
	KindChoice Kind = "choice"
	KindText   Kind = "text"
)

// Question is one step of a task session.
type Question struct {
	Kind          Kind
	Text          string
	Options       []string // choice only
	CorrectAnswer string   // empty means ungraded
}

// Graded reports whether the question has an answer key.
func (q Question) Graded() bool {
	return q.CorrectAnswer != ""
}

// Grade reports whether option index is correct. A choice question without
// an answer key accepts every option.
func (q Question) Grade(index int) bool {
	if !q.Graded() {
		return true
	}
	return q.Options[index] == q.CorrectAnswer
}

// Normalize turns a task detail into its question sequence. When the
// questions array is empty, a single choice question is built from the
// flat legacy fields, so the result is never empty.
func Normalize(d *api.TaskDetail) []Question {
	if len(d.Questions) == 0 {
		return []Question{{
			Kind:          KindChoice,
			Text:          d.Question,
			Options:       d.Options,
			CorrectAnswer: d.CorrectAnswer,
		}}
	}

	qs := make([]Question, len(d.Questions))
	for i, q := range d.Questions {
		kind := KindChoice
		if q.Type == string(KindText) {
			kind = KindText
		}
		qs[i] = Question{
			Kind:          kind,
			Text:          q.Text,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
		}
	}
	return qs
}
