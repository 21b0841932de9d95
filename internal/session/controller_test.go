package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/abhisek/skillquest/internal/api"
	"github.com/abhisek/skillquest/internal/metrics"
	"github.com/abhisek/skillquest/internal/store"
)

// mockFetcher returns a fixed detail or error. If gate is set, the fetch
// blocks until it is closed.
type mockFetcher struct {
	detail *api.TaskDetail
	err    error
	gate   chan struct{}
	calls  int
}

func (m *mockFetcher) TaskDetail(_ context.Context, id int) (*api.TaskDetail, error) {
	m.calls++
	if m.gate != nil {
		<-m.gate
	}
	return m.detail, m.err
}

type finalizeCall struct {
	taskID      int
	answerIndex int
}

// mockFinalizer records completion calls.
type mockFinalizer struct {
	mu    sync.Mutex
	calls []finalizeCall
	res   *api.SubmitResult
	err   error
}

func (m *mockFinalizer) Finalize(_ context.Context, taskID, answerIndex int) (*api.SubmitResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, finalizeCall{taskID, answerIndex})
	return m.res, m.err
}

// mockEventRepo records session events.
type mockEventRepo struct {
	mu     sync.Mutex
	events []store.SessionEventData
}

func (m *mockEventRepo) AppendRequestEvent(context.Context, store.RequestEventData) error {
	return nil
}

func (m *mockEventRepo) AppendSessionEvent(_ context.Context, data store.SessionEventData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, data)
	return nil
}

func (m *mockEventRepo) QueryRequestEvents(context.Context, store.QueryOpts) ([]store.RequestEventRecord, error) {
	return nil, nil
}

func (m *mockEventRepo) QuerySessionEvents(context.Context, store.QueryOpts) ([]store.SessionEventRecord, error) {
	return nil, nil
}

func (m *mockEventRepo) SessionStats(context.Context) (store.SessionStats, error) {
	return store.SessionStats{}, nil
}

func (m *mockEventRepo) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.events {
		out = append(out, e.Action)
	}
	return out
}

func twoChoiceTask() *api.TaskDetail {
	return &api.TaskDetail{
		ID:   10,
		Type: "quiz",
		Questions: []api.Question{
			{Text: "First letter?", Options: []string{"A", "B", "C"}, CorrectAnswer: "A"},
			{Text: "Second letter?", Options: []string{"A", "B", "C"}, CorrectAnswer: "B"},
		},
	}
}

func newLoaded(t *testing.T, detail *api.TaskDetail, fin *mockFinalizer) (*Controller, *mockEventRepo) {
	t.Helper()
	repo := &mockEventRepo{}
	c := New(Config{
		TaskID:    detail.ID,
		Fetcher:   &mockFetcher{detail: detail},
		Finalizer: fin,
		EventRepo: repo,
	})
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return c, repo
}

func sameState(a, b State) bool {
	return a.Phase == b.Phase && a.Index == b.Index && a.Status == b.Status &&
		a.Selected == b.Selected && a.Text == b.Text && len(a.Outcomes) == len(b.Outcomes)
}

func TestLoad_EntersIdleOnFirstQuestion(t *testing.T) {
	c, repo := newLoaded(t, twoChoiceTask(), &mockFinalizer{})

	st := c.State()
	if st.Phase != PhaseIdle {
		t.Fatalf("Phase = %v, want idle", st.Phase)
	}
	if st.Index != 0 || st.Total() != 2 {
		t.Errorf("Index = %d, Total = %d, want 0, 2", st.Index, st.Total())
	}
	if st.Selected != NoSelection {
		t.Errorf("Selected = %d, want NoSelection", st.Selected)
	}
	if got := repo.actions(); len(got) != 1 || got[0] != store.SessionActionStart {
		t.Errorf("journal = %v, want [start]", got)
	}
}

func TestLoad_OnlyFetchesOnce(t *testing.T) {
	f := &mockFetcher{detail: twoChoiceTask()}
	c := New(Config{TaskID: 10, Fetcher: f, Finalizer: &mockFinalizer{}})
	_ = c.Load(context.Background())
	_ = c.Load(context.Background())
	if f.calls != 1 {
		t.Errorf("fetch calls = %d, want 1", f.calls)
	}
}

func TestSubmitChoice_GradesBySelectedText(t *testing.T) {
	c, _ := newLoaded(t, twoChoiceTask(), &mockFinalizer{})

	if !c.SubmitChoice(0) {
		t.Fatal("SubmitChoice(0) ignored while idle")
	}
	st := c.State()
	if st.Phase != PhaseEvaluated || st.Status != StatusCorrect {
		t.Errorf("after correct choice: phase %v status %v", st.Phase, st.Status)
	}
	if st.Selected != 0 {
		t.Errorf("Selected = %d, want 0", st.Selected)
	}

	c.Advance(context.Background())
	c.SubmitChoice(2)
	if st := c.State(); st.Status != StatusWrong {
		t.Errorf("choice C for answer B: status %v, want wrong", st.Status)
	}
}

func TestSubmitChoice_UngradedAlwaysCorrect(t *testing.T) {
	detail := &api.TaskDetail{ID: 5, Type: "survey", Question: "Favourite?", Options: []string{"tea", "coffee"}}
	c, _ := newLoaded(t, detail, &mockFinalizer{})

	c.SubmitChoice(1)
	if st := c.State(); st.Status != StatusCorrect {
		t.Errorf("ungraded choice: status %v, want correct", st.Status)
	}
}

func TestSubmit_NoOpUnlessIdle(t *testing.T) {
	c, _ := newLoaded(t, twoChoiceTask(), &mockFinalizer{})
	c.SubmitChoice(1) // wrong

	before := c.State()
	if c.SubmitChoice(0) {
		t.Error("SubmitChoice accepted while evaluated")
	}
	if c.SubmitText("anything") {
		t.Error("SubmitText accepted while evaluated")
	}
	if after := c.State(); !sameState(before, after) {
		t.Errorf("state changed: %+v -> %+v", before, after)
	}
}

func TestSubmit_NoOpWhileLoading(t *testing.T) {
	c := New(Config{TaskID: 1, Fetcher: &mockFetcher{detail: twoChoiceTask()}, Finalizer: &mockFinalizer{}})
	if c.SubmitChoice(0) {
		t.Error("SubmitChoice accepted while loading")
	}
	c.Advance(context.Background())
	if st := c.State(); st.Phase != PhaseLoading {
		t.Errorf("Phase = %v, want loading", st.Phase)
	}
}

func TestSubmitChoice_RejectsInvalidInput(t *testing.T) {
	c, _ := newLoaded(t, twoChoiceTask(), &mockFinalizer{})
	for _, idx := range []int{-1, 3, 99} {
		if c.SubmitChoice(idx) {
			t.Errorf("SubmitChoice(%d) accepted", idx)
		}
	}
	if c.SubmitText("text on a choice question") {
		t.Error("SubmitText accepted on a choice question")
	}
	if st := c.State(); st.Phase != PhaseIdle {
		t.Errorf("Phase = %v, want idle", st.Phase)
	}
}

func TestSubmitText_BlankIgnored(t *testing.T) {
	detail := &api.TaskDetail{ID: 6, Questions: []api.Question{{Type: "text", Text: "Describe"}}}
	c, _ := newLoaded(t, detail, &mockFinalizer{})

	for _, s := range []string{"", "   ", "\n\t"} {
		if c.SubmitText(s) {
			t.Errorf("SubmitText(%q) accepted", s)
		}
	}
	if c.SubmitChoice(0) {
		t.Error("SubmitChoice accepted on a text question")
	}
}

func TestSingleTextQuestion_AlwaysCorrect(t *testing.T) {
	detail := &api.TaskDetail{
		ID:        7,
		Questions: []api.Question{{Type: "text", Text: "Capital of France?", CorrectAnswer: "Paris"}},
	}
	fin := &mockFinalizer{res: &api.SubmitResult{Success: true, Earned: 5, NewBalance: 105}}
	c, _ := newLoaded(t, detail, fin)

	if !c.SubmitText("definitely not paris") {
		t.Fatal("SubmitText ignored")
	}
	st := c.State()
	if st.Phase != PhaseEvaluated || st.Status != StatusCorrect {
		t.Fatalf("phase %v status %v, want evaluated correct", st.Phase, st.Status)
	}

	c.Advance(context.Background())
	if len(fin.calls) != 1 || fin.calls[0].answerIndex != 0 {
		t.Errorf("finalize calls = %+v, want one with index 0", fin.calls)
	}
}

func TestEndToEnd_TwoChoiceQuestions(t *testing.T) {
	fin := &mockFinalizer{res: &api.SubmitResult{Success: true, Earned: 20, NewBalance: 120}}
	c, repo := newLoaded(t, twoChoiceTask(), fin)
	ctx := context.Background()

	c.SubmitChoice(0) // A, correct
	c.Advance(ctx)
	if len(fin.calls) != 0 {
		t.Fatalf("finalize fired before the last question: %+v", fin.calls)
	}
	st := c.State()
	if st.Phase != PhaseIdle || st.Index != 1 || st.Selected != NoSelection {
		t.Fatalf("after first advance: phase %v index %d selected %d", st.Phase, st.Index, st.Selected)
	}
	if got := st.Progress(); got != 0.5 {
		t.Errorf("Progress = %v, want 0.5", got)
	}

	c.SubmitChoice(2) // C, wrong
	c.Advance(ctx)

	if len(fin.calls) != 1 {
		t.Fatalf("finalize calls = %d, want 1", len(fin.calls))
	}
	if fin.calls[0] != (finalizeCall{taskID: 10, answerIndex: 2}) {
		t.Errorf("finalize call = %+v, want task 10 index 2", fin.calls[0])
	}

	st = c.State()
	if st.Phase != PhaseSummary {
		t.Fatalf("Phase = %v, want summary", st.Phase)
	}
	s := st.Summary
	if len(s.Outcomes) != 2 || !s.Outcomes[0] || s.Outcomes[1] {
		t.Errorf("Outcomes = %v, want [true false]", s.Outcomes)
	}
	if s.Accuracy != 50 || c.Accuracy() != 50 {
		t.Errorf("Accuracy = %d, want 50", s.Accuracy)
	}
	if s.Correct != 1 || s.Wrong() != 1 {
		t.Errorf("Correct/Wrong = %d/%d, want 1/1", s.Correct, s.Wrong())
	}
	if s.Earned != 20 || s.NewBalance != 120 || !s.Accepted {
		t.Errorf("reward = %+v", s)
	}
	if got := st.Progress(); got != 1.0 {
		t.Errorf("Progress = %v, want 1.0", got)
	}

	// Further input is ignored.
	c.Advance(ctx)
	if len(fin.calls) != 1 {
		t.Errorf("finalize calls after summary = %d, want 1", len(fin.calls))
	}

	want := []string{store.SessionActionStart, store.SessionActionFinalize, store.SessionActionEnd}
	got := repo.actions()
	if len(got) != len(want) {
		t.Fatalf("journal = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("journal[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestAdvance_SummaryLengthMatchesQuestions(t *testing.T) {
	var qs []api.Question
	for i := 0; i < 5; i++ {
		qs = append(qs, api.Question{Text: "q", Options: []string{"right", "wrong"}, CorrectAnswer: "right"})
	}
	c, _ := newLoaded(t, &api.TaskDetail{ID: 11, Questions: qs}, &mockFinalizer{res: &api.SubmitResult{}})

	for _, pick := range []int{0, 0, 1, 0, 1} {
		c.SubmitChoice(pick)
		c.Advance(context.Background())
	}

	s := c.State().Summary
	if s == nil {
		t.Fatal("no summary")
	}
	if len(s.Outcomes) != 5 || s.Total != 5 {
		t.Errorf("outcomes %d total %d, want 5", len(s.Outcomes), s.Total)
	}
	if s.Accuracy != 60 {
		t.Errorf("Accuracy = %d, want 60", s.Accuracy)
	}
}

func TestFinalizeFailure_StillReachesSummary(t *testing.T) {
	m := metrics.New()
	repo := &mockEventRepo{}
	fin := &mockFinalizer{err: errors.New("connection refused")}
	c := New(Config{
		TaskID:    10,
		Fetcher:   &mockFetcher{detail: twoChoiceTask()},
		Finalizer: fin,
		EventRepo: repo,
		Metrics:   m,
	})
	ctx := context.Background()
	if err := c.Load(ctx); err != nil {
		t.Fatal(err)
	}

	c.SubmitChoice(0)
	c.Advance(ctx)
	c.SubmitChoice(1)
	c.Advance(ctx)

	st := c.State()
	if st.Phase != PhaseSummary {
		t.Fatalf("Phase = %v, want summary", st.Phase)
	}
	if st.Summary.FinalizeErr == nil {
		t.Error("FinalizeErr not recorded")
	}
	if st.Summary.Accuracy != 100 {
		t.Errorf("Accuracy = %d, want 100", st.Summary.Accuracy)
	}
	if st.Summary.Earned != 0 {
		t.Errorf("Earned = %d, want 0", st.Summary.Earned)
	}

	got := repo.actions()
	if len(got) != 3 || got[1] != store.SessionActionFinalizeFailed {
		t.Errorf("journal = %v, want finalize_failed before end", got)
	}
	want := `
# HELP skillquest_session_finalize_failures_total Finalize calls that failed while the session still reached its summary.
# TYPE skillquest_session_finalize_failures_total counter
skillquest_session_finalize_failures_total 1
`
	if err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(want), "skillquest_session_finalize_failures_total"); err != nil {
		t.Errorf("finalize failures metric: %v", err)
	}
}

func TestLoadFailure_EntersFailed(t *testing.T) {
	fin := &mockFinalizer{}
	repo := &mockEventRepo{}
	c := New(Config{
		TaskID:    3,
		Fetcher:   &mockFetcher{err: api.ErrNotFound},
		Finalizer: fin,
		EventRepo: repo,
	})

	err := c.Load(context.Background())
	if !errors.Is(err, api.ErrNotFound) {
		t.Fatalf("Load err = %v, want ErrNotFound", err)
	}
	st := c.State()
	if st.Phase != PhaseFailed || st.Err == nil {
		t.Fatalf("phase %v err %v, want failed with error", st.Phase, st.Err)
	}

	// Nothing moves the session out of Failed.
	c.SubmitChoice(0)
	c.SubmitText("x")
	c.Advance(context.Background())
	if err := c.Load(context.Background()); err != nil {
		t.Errorf("second Load = %v, want nil no-op", err)
	}
	c.Close()

	if len(fin.calls) != 0 {
		t.Errorf("finalize called %d times after a load failure", len(fin.calls))
	}
	if c.State().Phase != PhaseFailed {
		t.Errorf("Phase = %v, want failed", c.State().Phase)
	}
	if got := repo.actions(); len(got) != 0 {
		t.Errorf("journal = %v, want nothing for a failed load", got)
	}
}

func TestClose_DropsLateLoadResult(t *testing.T) {
	f := &mockFetcher{detail: twoChoiceTask(), gate: make(chan struct{})}
	repo := &mockEventRepo{}
	c := New(Config{TaskID: 10, Fetcher: f, Finalizer: &mockFinalizer{}, EventRepo: repo})

	done := make(chan error, 1)
	go func() { done <- c.Load(context.Background()) }()

	c.Close()
	close(f.gate)

	if err := <-done; !errors.Is(err, ErrClosed) {
		t.Errorf("Load err = %v, want ErrClosed", err)
	}
	st := c.State()
	if st.Phase != PhaseLoading || st.Total() != 0 {
		t.Errorf("late result applied: phase %v total %d", st.Phase, st.Total())
	}
	if !c.Closed() {
		t.Error("Closed() = false")
	}
}

func TestClose_MidSessionJournalsAbandon(t *testing.T) {
	fin := &mockFinalizer{}
	c, repo := newLoaded(t, twoChoiceTask(), fin)
	c.SubmitChoice(0)
	c.Advance(context.Background())

	c.Close()
	c.Close()

	if c.SubmitChoice(0) {
		t.Error("SubmitChoice accepted after Close")
	}
	c.Advance(context.Background())
	if len(fin.calls) != 0 {
		t.Errorf("finalize called after Close")
	}

	got := repo.actions()
	if len(got) != 2 || got[1] != store.SessionActionAbandon {
		t.Errorf("journal = %v, want [start abandon]", got)
	}
}

func TestClose_AfterSummaryIsNotAbandon(t *testing.T) {
	detail := &api.TaskDetail{ID: 1, Question: "q", Options: []string{"a"}}
	c, repo := newLoaded(t, detail, &mockFinalizer{res: &api.SubmitResult{Success: true}})
	c.SubmitChoice(0)
	c.Advance(context.Background())
	c.Close()

	for _, a := range repo.actions() {
		if a == store.SessionActionAbandon {
			t.Error("completed session journaled as abandoned")
		}
	}
}
