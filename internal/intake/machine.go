package intake

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"github.com/orienta-za/orienta/internal/errors"
	"github.com/orienta-za/orienta/internal/log"
)

// Phase is the machine's lifecycle state
type Phase string

const (
	PhaseUninitialized  Phase = "uninitialized"
	PhaseLoading        Phase = "loading"
	PhaseAwaitingAnswer Phase = "awaiting_answer"
	PhaseSubmitting     Phase = "submitting"
	PhaseCompleted      Phase = "completed"
)

// RoutePathwayPreview is the navigation destination handed to the
// caller when the intake completes.
const RoutePathwayPreview = "/pathways/preview"

// SessionClient is the remote intake surface the machine drives.
// Implemented by *api.Client; tests substitute a fake.
type SessionClient interface {
	// IntakeQuestions fetches the ordered question set. Idempotent.
	IntakeQuestions(ctx context.Context) ([]Question, error)
	// IntakeStart starts or resumes the learner's session. Idempotent
	// per learner.
	IntakeStart(ctx context.Context) (*SessionState, error)
	// IntakeAnswer records one answer. Not idempotent: the machine
	// never retries it automatically.
	IntakeAnswer(ctx context.Context, questionID string, value any) (*AnswerResult, error)
}

// SessionState is the client-visible mirror of the server session
type SessionState struct {
	Step      int
	Completed bool
	Answers   []Answer
}

// AnswerResult is the server's verdict on one submission
type AnswerResult struct {
	Completed bool
}

// Outcome describes what happened after a successful submission
type Outcome struct {
	// Completed is true when the session finished with this answer
	Completed bool
	// Navigate is the route the caller should move to, set exactly
	// once per attempt, on the transition into the completed phase
	Navigate string
	// Step is the step now awaiting an answer (meaningless when
	// Completed)
	Step int
}

// Machine drives the intake flow. It is single-threaded by contract:
// all calls happen on one logical thread of control (the UI event
// loop), so there is no internal locking. The submitting phase is the
// double-submit guard.
type Machine struct {
	client     SessionClient
	logger     *log.Logger
	attemptID  string
	timeout    time.Duration
	onComplete func(route string)

	phase       Phase
	questions   []Question
	fingerprint string
	answers     map[string]Answer
	step        int
	navigated   bool
}

// Option configures a Machine
type Option func(*Machine)

// WithSubmitTimeout bounds each answer submission. Zero disables the
// machine-level deadline and leaves only the HTTP client's timeout.
func WithSubmitTimeout(d time.Duration) Option {
	return func(m *Machine) { m.timeout = d }
}

// WithLogger sets the structured logger
func WithLogger(l *log.Logger) Option {
	return func(m *Machine) { m.logger = l }
}

// WithOnComplete registers the completion callback. It fires exactly
// once per attempt, with the route to navigate to.
func WithOnComplete(fn func(route string)) Option {
	return func(m *Machine) { m.onComplete = fn }
}

// NewMachine creates a machine in the uninitialized phase
func NewMachine(client SessionClient, opts ...Option) *Machine {
	m := &Machine{
		client:    client,
		logger:    log.DefaultLogger(),
		attemptID: uuid.New().String(),
		timeout:   15 * time.Second,
		phase:     PhaseUninitialized,
		answers:   make(map[string]Answer),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("attempt_id", m.attemptID)
	return m
}

// Phase returns the current lifecycle phase
func (m *Machine) Phase() Phase { return m.phase }

// Step returns the index of the step awaiting an answer. Equal to the
// question count once completed.
func (m *Machine) Step() int { return m.step }

// Questions returns the cached question set
func (m *Machine) Questions() []Question { return m.questions }

// Fingerprint returns the question set digest, or "" before loading
func (m *Machine) Fingerprint() string { return m.fingerprint }

// Recorded returns the locally accumulated answer for a question id.
// Answers survive failed submissions so the learner never re-enters a
// value; they are only resubmitted on an explicit user action.
func (m *Machine) Recorded(id string) (Answer, bool) {
	a, ok := m.answers[id]
	return a, ok
}

// Current returns the question awaiting an answer
func (m *Machine) Current() (Question, error) {
	if m.phase != PhaseAwaitingAnswer && m.phase != PhaseSubmitting {
		return Question{}, errors.New(errors.ErrCodeIntakeNotReady, "no question is awaiting an answer")
	}
	return m.questions[m.step], nil
}

// Progress returns the fraction of steps answered, in [0,1]. It is 1
// only in the completed phase and is 0 until the question set loads.
func (m *Machine) Progress() float64 {
	if len(m.questions) == 0 {
		return 0
	}
	if m.phase == PhaseCompleted {
		return 1
	}
	return float64(m.step) / float64(len(m.questions))
}

// Initialize fetches the question set and starts/resumes the remote
// session. Both are preconditions for awaiting_answer(0): if either
// fails the machine stays in loading and the caller may call
// Initialize again. There is no automatic retry.
func (m *Machine) Initialize(ctx context.Context) error {
	if m.phase != PhaseUninitialized && m.phase != PhaseLoading {
		return errors.New(errors.ErrCodeIntakeNotReady, "intake is already initialized")
	}
	m.phase = PhaseLoading

	questions, err := m.client.IntakeQuestions(ctx)
	if err != nil {
		m.logger.WithError(err).Warn("question set fetch failed")
		return errors.NewIntakeLoadError(err)
	}
	if len(questions) == 0 {
		return errors.NewIntakeLoadError(stderrors.New("the server returned an empty question set"))
	}

	fingerprint, err := Fingerprint(questions)
	if err != nil {
		return errors.NewIntakeLoadError(err)
	}

	// A retried load that sees a different question set must not keep
	// answers recorded against the old one.
	if m.fingerprint != "" && m.fingerprint != fingerprint {
		m.logger.Warn("question set changed between load attempts; discarding local answers")
		m.answers = make(map[string]Answer)
	}
	m.questions = questions
	m.fingerprint = fingerprint

	session, err := m.client.IntakeStart(ctx)
	if err != nil {
		m.logger.WithError(err).Warn("session start failed")
		return errors.NewIntakeLoadError(err)
	}

	m.adopt(session)

	m.logger.Info("intake ready",
		"questions", len(m.questions),
		"step", m.step,
		"phase", string(m.phase))
	return nil
}

// adopt mirrors the server session locally: resume step, previously
// recorded answers, and the completion flag. The server is the source
// of truth; a step it reports beyond the question set only counts as
// finished when it also says so.
func (m *Machine) adopt(session *SessionState) {
	known := make(map[string]Question, len(m.questions))
	for _, q := range m.questions {
		known[q.ID] = q
	}
	for _, a := range session.Answers {
		if _, ok := known[a.QuestionID]; ok {
			m.answers[a.QuestionID] = a
		}
	}

	if session.Completed {
		m.step = len(m.questions)
		m.complete()
		return
	}

	step := session.Step
	if step < 0 {
		step = 0
	}
	if step >= len(m.questions) {
		step = len(m.questions) - 1
	}
	m.step = step
	m.phase = PhaseAwaitingAnswer
}

// Submit validates and records one answer, sends it to the remote
// session, and advances. On any remote failure the step index is
// unchanged, the recorded answer is kept, and nothing is resent until
// the user submits again.
func (m *Machine) Submit(ctx context.Context, answer Answer) (Outcome, error) {
	switch m.phase {
	case PhaseSubmitting:
		return Outcome{}, errors.NewSubmitInFlightError(m.step)
	case PhaseCompleted:
		return Outcome{}, errors.New(errors.ErrCodeIntakeCompleted, "the intake is already completed")
	case PhaseAwaitingAnswer:
		// Proceed.
	default:
		return Outcome{}, errors.New(errors.ErrCodeIntakeNotReady, "the intake has not finished loading")
	}

	question := m.questions[m.step]
	answer.QuestionID = question.ID

	if err := question.Validate(answer); err != nil {
		return Outcome{}, err
	}

	// Recorded before sending so a failed submission keeps the value.
	m.answers[question.ID] = answer
	m.phase = PhaseSubmitting

	sctx := ctx
	if m.timeout > 0 {
		var cancel context.CancelFunc
		sctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	result, err := m.client.IntakeAnswer(sctx, question.ID, answer.Payload())
	if err != nil {
		m.phase = PhaseAwaitingAnswer
		if stderrors.Is(err, context.DeadlineExceeded) && !errors.IsCode(err, errors.ErrCodeSessionTimeout) {
			err = errors.NewTimeoutError(err)
		}
		m.logger.WithError(err).Warn("answer submission failed", "question_id", question.ID, "step", m.step)
		return Outcome{}, err
	}

	if result.Completed {
		m.step = len(m.questions)
		m.complete()
		m.logger.Info("intake completed", "questions", len(m.questions))
		return Outcome{Completed: true, Navigate: RoutePathwayPreview}, nil
	}

	if m.step+1 >= len(m.questions) {
		// The last question was answered but the server did not close
		// the session; treat it as a malformed response rather than
		// walking off the question set.
		m.phase = PhaseAwaitingAnswer
		return Outcome{}, errors.NewBadResponseError(
			stderrors.New("final answer accepted but session not reported complete"))
	}

	m.step++
	m.phase = PhaseAwaitingAnswer
	m.logger.Debug("answer accepted", "question_id", question.ID, "next_step", m.step)
	return Outcome{Step: m.step}, nil
}

// complete enters the terminal phase and fires the navigation effect
// exactly once. There are no outgoing transitions.
func (m *Machine) complete() {
	m.phase = PhaseCompleted
	if m.navigated {
		return
	}
	m.navigated = true
	if m.onComplete != nil {
		m.onComplete(RoutePathwayPreview)
	}
}
