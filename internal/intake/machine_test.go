package intake

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/orienta-za/orienta/internal/errors"
)

// fakeSession is an in-memory SessionClient that mimics the backend's
// answer bookkeeping: completed flips when every question has one.
type fakeSession struct {
	questions    []Question
	questionsErr error
	session      SessionState
	startErr     error
	answerErr    error
	answerHook   func(ctx context.Context, questionID string, value any) (*AnswerResult, error)
	answerCalls  int
}

func (f *fakeSession) IntakeQuestions(ctx context.Context) ([]Question, error) {
	if f.questionsErr != nil {
		return nil, f.questionsErr
	}
	return f.questions, nil
}

func (f *fakeSession) IntakeStart(ctx context.Context) (*SessionState, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	s := f.session
	return &s, nil
}

func (f *fakeSession) IntakeAnswer(ctx context.Context, questionID string, value any) (*AnswerResult, error) {
	f.answerCalls++
	if f.answerHook != nil {
		return f.answerHook(ctx, questionID, value)
	}
	if f.answerErr != nil {
		return nil, f.answerErr
	}
	f.session.Step++
	done := f.session.Step >= len(f.questions)
	f.session.Completed = done
	return &AnswerResult{Completed: done}, nil
}

func twoStepSet() []Question {
	return []Question{
		{ID: "q1", Text: "Pick one", Prompt: SingleSelect{Options: []string{"A", "B"}}},
		{ID: "q2", Text: "Say something", Prompt: FreeText{}},
	}
}

func newReadyMachine(t *testing.T, fake *fakeSession, opts ...Option) *Machine {
	t.Helper()
	m := NewMachine(fake, opts...)
	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	return m
}

func TestInitialize(t *testing.T) {
	fake := &fakeSession{questions: twoStepSet()}
	m := NewMachine(fake)

	if m.Phase() != PhaseUninitialized {
		t.Fatalf("new machine phase = %v", m.Phase())
	}

	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	if m.Phase() != PhaseAwaitingAnswer {
		t.Errorf("phase = %v, want awaiting_answer", m.Phase())
	}
	if m.Step() != 0 {
		t.Errorf("step = %d, want 0", m.Step())
	}
	if m.Progress() != 0 {
		t.Errorf("progress = %v, want 0", m.Progress())
	}
	if m.Fingerprint() == "" {
		t.Error("fingerprint should be set after load")
	}
}

func TestInitializeQuestionFetchFailureStaysLoading(t *testing.T) {
	fake := &fakeSession{
		questions:    twoStepSet(),
		questionsErr: fmt.Errorf("connection refused"),
	}
	m := NewMachine(fake)

	err := m.Initialize(context.Background())
	if !errors.IsCode(err, errors.ErrCodeIntakeLoadFailed) {
		t.Fatalf("error code = %v, want INTAKE-002", errors.CodeOf(err))
	}
	if m.Phase() != PhaseLoading {
		t.Errorf("phase = %v, want loading (fail closed)", m.Phase())
	}

	// Manual retry succeeds once the backend recovers.
	fake.questionsErr = nil
	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("retry Initialize() error = %v", err)
	}
	if m.Phase() != PhaseAwaitingAnswer {
		t.Errorf("phase after retry = %v", m.Phase())
	}
}

func TestInitializeSessionStartFailureStaysLoading(t *testing.T) {
	// Question fetch succeeding while session start fails must not
	// produce a partially started flow.
	fake := &fakeSession{
		questions: twoStepSet(),
		startErr:  fmt.Errorf("503 service unavailable"),
	}
	m := NewMachine(fake)

	err := m.Initialize(context.Background())
	if !errors.IsCode(err, errors.ErrCodeIntakeLoadFailed) {
		t.Fatalf("error code = %v, want INTAKE-002", errors.CodeOf(err))
	}
	if m.Phase() != PhaseLoading {
		t.Errorf("phase = %v, want loading", m.Phase())
	}
}

func TestInitializeEmptyQuestionSet(t *testing.T) {
	fake := &fakeSession{questions: nil}
	m := NewMachine(fake)

	err := m.Initialize(context.Background())
	if !errors.IsCode(err, errors.ErrCodeIntakeLoadFailed) {
		t.Fatalf("error code = %v, want INTAKE-002", errors.CodeOf(err))
	}
	if m.Phase() != PhaseLoading {
		t.Errorf("phase = %v, want loading", m.Phase())
	}
}

func TestInitializeResumesServerSession(t *testing.T) {
	fake := &fakeSession{
		questions: twoStepSet(),
		session: SessionState{
			Step:    1,
			Answers: []Answer{{QuestionID: "q1", Value: "A"}},
		},
	}
	m := newReadyMachine(t, fake)

	if m.Step() != 1 {
		t.Errorf("step = %d, want resumed step 1", m.Step())
	}
	if got, ok := m.Recorded("q1"); !ok || got.Value != "A" {
		t.Errorf("Recorded(q1) = %v %v, want the server-side answer", got, ok)
	}
	if m.Progress() != 0.5 {
		t.Errorf("progress = %v, want 0.5", m.Progress())
	}
}

func TestInitializeAlreadyCompletedSession(t *testing.T) {
	var routes []string
	fake := &fakeSession{
		questions: twoStepSet(),
		session:   SessionState{Step: 2, Completed: true},
	}
	m := NewMachine(fake, WithOnComplete(func(route string) { routes = append(routes, route) }))

	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if m.Phase() != PhaseCompleted {
		t.Errorf("phase = %v, want completed", m.Phase())
	}
	if len(routes) != 1 || routes[0] != RoutePathwayPreview {
		t.Errorf("navigation events = %v, want one to the pathway preview", routes)
	}
	if m.Progress() != 1 {
		t.Errorf("progress = %v, want 1", m.Progress())
	}
}

func TestSubmitAdvances(t *testing.T) {
	fake := &fakeSession{questions: twoStepSet()}
	m := newReadyMachine(t, fake)

	outcome, err := m.Submit(context.Background(), Answer{Value: "A"})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if outcome.Completed {
		t.Error("first of two answers should not complete the session")
	}
	if m.Phase() != PhaseAwaitingAnswer || m.Step() != 1 {
		t.Errorf("phase/step = %v/%d, want awaiting_answer/1", m.Phase(), m.Step())
	}
	if m.Progress() != 0.5 {
		t.Errorf("progress = %v, want 0.5 after completing step 0 of 2", m.Progress())
	}
}

func TestSubmitCompletesExactlyOnce(t *testing.T) {
	var routes []string
	fake := &fakeSession{questions: twoStepSet()}
	m := newReadyMachine(t, fake, WithOnComplete(func(route string) { routes = append(routes, route) }))

	if _, err := m.Submit(context.Background(), Answer{Value: "A"}); err != nil {
		t.Fatalf("Submit(step 0) error = %v", err)
	}
	outcome, err := m.Submit(context.Background(), Answer{Value: "hello"})
	if err != nil {
		t.Fatalf("Submit(step 1) error = %v", err)
	}

	if !outcome.Completed {
		t.Error("final answer should complete the session")
	}
	if outcome.Navigate != RoutePathwayPreview {
		t.Errorf("Navigate = %q, want %q", outcome.Navigate, RoutePathwayPreview)
	}
	if m.Phase() != PhaseCompleted {
		t.Errorf("phase = %v, want completed", m.Phase())
	}
	if m.Progress() != 1 {
		t.Errorf("progress = %v, want exactly 1 in completed", m.Progress())
	}
	if len(routes) != 1 {
		t.Errorf("navigation events = %d, want exactly 1", len(routes))
	}

	// Completed is terminal.
	_, err = m.Submit(context.Background(), Answer{Value: "again"})
	if !errors.IsCode(err, errors.ErrCodeIntakeCompleted) {
		t.Errorf("submit after completion: code = %v, want INTAKE-007", errors.CodeOf(err))
	}
	if len(routes) != 1 {
		t.Errorf("navigation fired again: %v", routes)
	}
}

func TestSubmitFailureRollsBackAndKeepsAnswer(t *testing.T) {
	fake := &fakeSession{
		questions: twoStepSet(),
		answerErr: fmt.Errorf("network unreachable"),
	}
	m := newReadyMachine(t, fake)

	_, err := m.Submit(context.Background(), Answer{Value: "A"})
	if err == nil {
		t.Fatal("Submit() should surface the remote failure")
	}

	if m.Phase() != PhaseAwaitingAnswer || m.Step() != 0 {
		t.Errorf("phase/step = %v/%d, want awaiting_answer/0 unchanged", m.Phase(), m.Step())
	}
	if got, ok := m.Recorded("q1"); !ok || got.Value != "A" {
		t.Errorf("Recorded(q1) = %v %v, entered value must survive the failure", got, ok)
	}
	if fake.answerCalls != 1 {
		t.Errorf("answer calls = %d; there must be no automatic retry", fake.answerCalls)
	}

	// An explicit resubmission goes through.
	fake.answerErr = nil
	if _, err := m.Submit(context.Background(), Answer{Value: "A"}); err != nil {
		t.Fatalf("resubmit error = %v", err)
	}
	if m.Step() != 1 {
		t.Errorf("step = %d after resubmit, want 1", m.Step())
	}
}

func TestSubmitValidationDoesNotTouchRemote(t *testing.T) {
	fake := &fakeSession{questions: twoStepSet()}
	m := newReadyMachine(t, fake)

	tests := []struct {
		name   string
		answer Answer
	}{
		{name: "empty single-select", answer: Answer{}},
		{name: "option not offered", answer: Answer{Value: "C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Submit(context.Background(), tt.answer)
			if err == nil {
				t.Fatal("Submit() should reject the answer")
			}
			if fake.answerCalls != 0 {
				t.Errorf("invalid answers must not reach the backend, calls = %d", fake.answerCalls)
			}
			if m.Step() != 0 || m.Phase() != PhaseAwaitingAnswer {
				t.Errorf("phase/step changed on validation failure: %v/%d", m.Phase(), m.Step())
			}
		})
	}
}

func TestNoDoubleSubmitWhileInFlight(t *testing.T) {
	fake := &fakeSession{questions: twoStepSet()}
	m := NewMachine(fake)
	if err := m.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Re-enter Submit from inside the in-flight request, as a second
	// UI event would.
	var reentrantErr error
	fake.answerHook = func(ctx context.Context, questionID string, value any) (*AnswerResult, error) {
		fake.answerHook = nil
		_, reentrantErr = m.Submit(ctx, Answer{Value: "B"})
		return &AnswerResult{Completed: false}, nil
	}

	if _, err := m.Submit(context.Background(), Answer{Value: "A"}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !errors.IsCode(reentrantErr, errors.ErrCodeIntakeSubmitInFlight) {
		t.Errorf("reentrant submit code = %v, want INTAKE-006", errors.CodeOf(reentrantErr))
	}
	if fake.answerCalls != 1 {
		t.Errorf("answer calls = %d, the second submit must not reach the backend", fake.answerCalls)
	}
}

func TestSubmitTimeout(t *testing.T) {
	fake := &fakeSession{questions: twoStepSet()}
	fake.answerHook = func(ctx context.Context, questionID string, value any) (*AnswerResult, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	m := NewMachine(fake, WithSubmitTimeout(10*time.Millisecond))
	if err := m.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}

	_, err := m.Submit(context.Background(), Answer{Value: "A"})
	if !errors.IsCode(err, errors.ErrCodeSessionTimeout) {
		t.Fatalf("error code = %v, want SESSION-002", errors.CodeOf(err))
	}
	if m.Phase() != PhaseAwaitingAnswer || m.Step() != 0 {
		t.Errorf("phase/step = %v/%d, machine must return to awaiting_answer(0)", m.Phase(), m.Step())
	}
	if _, ok := m.Recorded("q1"); !ok {
		t.Error("entered value must survive a timeout")
	}
}

func TestFinalAnswerWithoutCompletionIsBadResponse(t *testing.T) {
	fake := &fakeSession{questions: twoStepSet()}
	fake.answerHook = func(ctx context.Context, questionID string, value any) (*AnswerResult, error) {
		return &AnswerResult{Completed: false}, nil
	}
	m := newReadyMachine(t, fake)

	if _, err := m.Submit(context.Background(), Answer{Value: "A"}); err != nil {
		t.Fatal(err)
	}
	_, err := m.Submit(context.Background(), Answer{Value: "hello"})
	if !errors.IsCode(err, errors.ErrCodeSessionBadResponse) {
		t.Errorf("error code = %v, want SESSION-004", errors.CodeOf(err))
	}
	if m.Phase() != PhaseAwaitingAnswer || m.Step() != 1 {
		t.Errorf("phase/step = %v/%d, want awaiting_answer(1)", m.Phase(), m.Step())
	}
}

func TestProgressAcrossFullRun(t *testing.T) {
	n := 4
	questions := make([]Question, n)
	for i := range questions {
		questions[i] = Question{
			ID:     fmt.Sprintf("q%d", i),
			Text:   fmt.Sprintf("Question %d", i),
			Prompt: FreeText{},
		}
	}
	fake := &fakeSession{questions: questions}
	m := newReadyMachine(t, fake)

	for i := 0; i < n; i++ {
		want := float64(i) / float64(n)
		if math.Abs(m.Progress()-want) > 1e-9 {
			t.Errorf("progress before step %d = %v, want %v", i, m.Progress(), want)
		}
		if m.Progress() >= 1 {
			t.Errorf("progress reached 1 before completion at step %d", i)
		}
		if _, err := m.Submit(context.Background(), Answer{Value: "x"}); err != nil {
			t.Fatalf("Submit(step %d) error = %v", i, err)
		}
	}

	if m.Phase() != PhaseCompleted {
		t.Fatalf("phase = %v, want completed", m.Phase())
	}
	if m.Progress() != 1 {
		t.Errorf("progress = %v, want exactly 1", m.Progress())
	}
}

func TestCurrentBeforeLoad(t *testing.T) {
	m := NewMachine(&fakeSession{questions: twoStepSet()})

	if _, err := m.Current(); !errors.IsCode(err, errors.ErrCodeIntakeNotReady) {
		t.Errorf("Current() before Initialize: code = %v, want INTAKE-001", errors.CodeOf(err))
	}
}

func TestInitializeTwiceRejected(t *testing.T) {
	fake := &fakeSession{questions: twoStepSet()}
	m := newReadyMachine(t, fake)

	err := m.Initialize(context.Background())
	if !errors.IsCode(err, errors.ErrCodeIntakeNotReady) {
		t.Errorf("second Initialize: code = %v, want INTAKE-001", errors.CodeOf(err))
	}
}

func TestRetryTracksChangedQuestionSet(t *testing.T) {
	fake := &fakeSession{
		questions: twoStepSet(),
		startErr:  fmt.Errorf("temporarily unavailable"),
	}
	m := NewMachine(fake)

	if err := m.Initialize(context.Background()); err == nil {
		t.Fatal("first Initialize should fail at session start")
	}
	firstFingerprint := m.Fingerprint()
	if firstFingerprint == "" {
		t.Fatal("fingerprint should be cached from the first load attempt")
	}

	// The backend republishes the questionnaire before the retry.
	changed := twoStepSet()
	changed[0].Text = "Pick one option"
	fake.questions = changed
	fake.startErr = nil

	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("retry Initialize() error = %v", err)
	}
	if m.Fingerprint() == firstFingerprint {
		t.Error("fingerprint should track the republished question set")
	}
	if m.Phase() != PhaseAwaitingAnswer || m.Step() != 0 {
		t.Errorf("phase/step = %v/%d, want a clean start on the new set", m.Phase(), m.Step())
	}
}

var _ SessionClient = (*fakeSession)(nil)
