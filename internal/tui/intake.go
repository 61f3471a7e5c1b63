// Package tui renders the intake questionnaire and the small
// interactive prompts the commands use. All remote calls run as
// bubbletea commands so the event loop stays responsive; the machine
// itself is only ever touched from Update and from the single
// in-flight command, which keeps its single-threaded contract.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/orienta-za/orienta/internal/errors"
	"github.com/orienta-za/orienta/internal/intake"
)

// IntakeResult is what the flow hands back to the command layer
type IntakeResult struct {
	// Completed is true when the questionnaire finished this run
	Completed bool
	// Navigate is the route to move to after completion, "" otherwise
	Navigate string
}

// IntakeModel drives the questionnaire flow
type IntakeModel struct {
	ctx     context.Context
	machine *intake.Machine

	form    *huh.Form
	spinner spinner.Model

	// bound form values, reset per question
	textValue   string
	selectValue string
	multiValue  []string

	loading    bool
	submitting bool
	loadErr    error
	notice     string
	completed  bool
	navigate   string
	quitting   bool
	width      int
	height     int
}

type keyMap struct {
	Quit  key.Binding
	Retry key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	Retry: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "retry"),
	),
}

type initDoneMsg struct {
	err error
}

type submitDoneMsg struct {
	outcome intake.Outcome
	err     error
}

// NewIntakeModel creates the flow model around an uninitialized machine
func NewIntakeModel(ctx context.Context, machine *intake.Machine) *IntakeModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))

	return &IntakeModel{
		ctx:     ctx,
		machine: machine,
		spinner: s,
		loading: true,
	}
}

// Init kicks off the question-set and session load
func (m *IntakeModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.initCmd())
}

func (m *IntakeModel) initCmd() tea.Cmd {
	return func() tea.Msg {
		return initDoneMsg{err: m.machine.Initialize(m.ctx)}
	}
}

func (m *IntakeModel) submitCmd(answer intake.Answer) tea.Cmd {
	return func() tea.Msg {
		outcome, err := m.machine.Submit(m.ctx, answer)
		return submitDoneMsg{outcome: outcome, err: err}
	}
}

// Update handles messages and updates the model
func (m *IntakeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}

		if m.loadErr != nil {
			if key.Matches(msg, keys.Retry) {
				m.loadErr = nil
				m.loading = true
				return m, tea.Batch(m.spinner.Tick, m.initCmd())
			}
			m.quitting = true
			return m, tea.Quit
		}

		if m.completed {
			return m, tea.Quit
		}

	case spinner.TickMsg:
		if m.loading || m.submitting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case initDoneMsg:
		m.loading = false
		if msg.err != nil {
			m.loadErr = msg.err
			return m, nil
		}
		if m.machine.Phase() == intake.PhaseCompleted {
			// a previously finished session was resumed
			m.completed = true
			m.navigate = intake.RoutePathwayPreview
			return m, nil
		}
		if err := m.buildForm(); err != nil {
			m.loadErr = err
			return m, nil
		}
		return m, m.form.Init()

	case submitDoneMsg:
		m.submitting = false
		if msg.err != nil {
			m.notice = msg.err.Error()
			if err := m.buildForm(); err != nil {
				m.loadErr = err
				return m, nil
			}
			return m, m.form.Init()
		}
		if msg.outcome.Completed {
			m.completed = true
			m.navigate = msg.outcome.Navigate
			return m, nil
		}
		m.notice = ""
		if err := m.buildForm(); err != nil {
			m.loadErr = err
			return m, nil
		}
		return m, m.form.Init()
	}

	// the form is frozen while a submission is in flight
	if m.submitting || m.loading || m.completed || m.loadErr != nil {
		return m, nil
	}

	if m.form != nil {
		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f

			if m.form.State == huh.StateCompleted {
				answer, err := m.collectAnswer()
				if err != nil {
					m.loadErr = err
					return m, nil
				}
				m.submitting = true
				return m, tea.Batch(m.spinner.Tick, m.submitCmd(answer))
			}
		}
		return m, cmd
	}

	return m, nil
}

// buildForm creates a one-question huh form for the step awaiting an
// answer, prefilled with the recorded answer when one exists.
func (m *IntakeModel) buildForm() error {
	q, err := m.machine.Current()
	if err != nil {
		return err
	}

	m.textValue = ""
	m.selectValue = ""
	m.multiValue = nil

	prev, hasPrev := m.machine.Recorded(q.ID)

	var field huh.Field

	switch p := q.Prompt.(type) {
	case intake.SingleSelect:
		if hasPrev {
			m.selectValue = prev.Value
		}
		field = huh.NewSelect[string]().
			Key(q.ID).
			Title(q.Text).
			Options(stringOptions(p.Options)...).
			Value(&m.selectValue).
			Validate(func(s string) error {
				if s == "" {
					return fmt.Errorf("please select an option")
				}
				return nil
			})

	case intake.MultiSelect:
		if hasPrev {
			m.multiValue = append([]string(nil), prev.Values...)
		}
		field = huh.NewMultiSelect[string]().
			Key(q.ID).
			Title(q.Text).
			Options(stringOptions(p.Options)...).
			Value(&m.multiValue).
			Validate(func(selected []string) error {
				if len(selected) == 0 {
					return fmt.Errorf("select at least one option")
				}
				return nil
			})

	case intake.FreeText:
		if hasPrev {
			m.textValue = prev.Value
		}
		field = huh.NewInput().
			Key(q.ID).
			Title(q.Text).
			Value(&m.textValue).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("this question needs an answer")
				}
				return nil
			})

	default:
		return errors.NewUnknownKindError(q.ID, string(q.Prompt.Kind()))
	}

	m.form = huh.NewForm(
		huh.NewGroup(field).
			Title(m.formatProgress()).
			Description(m.formatHelp()),
	)

	return nil
}

// collectAnswer reads the bound form values into an answer
func (m *IntakeModel) collectAnswer() (intake.Answer, error) {
	q, err := m.machine.Current()
	if err != nil {
		return intake.Answer{}, err
	}

	answer := intake.Answer{QuestionID: q.ID}

	switch q.Prompt.(type) {
	case intake.SingleSelect:
		answer.Value = m.selectValue
	case intake.MultiSelect:
		answer.Values = append([]string(nil), m.multiValue...)
	case intake.FreeText:
		answer.Value = strings.TrimSpace(m.textValue)
	}

	return answer, nil
}

func (m *IntakeModel) formatProgress() string {
	total := len(m.machine.Questions())
	percent := int(m.machine.Progress() * 100)
	return fmt.Sprintf("Question %d of %d (%d%%)", m.machine.Step()+1, total, percent)
}

func (m *IntakeModel) formatHelp() string {
	return "Use arrow keys to navigate • Enter to submit • Ctrl+C to quit"
}

func stringOptions(options []string) []huh.Option[string] {
	result := make([]huh.Option[string], len(options))
	for i, opt := range options {
		result[i] = huh.NewOption(opt, opt)
	}
	return result
}

// View renders the UI
func (m *IntakeModel) View() string {
	if m.quitting {
		return "Intake paused. Your answers so far are saved; run 'orienta intake' to continue.\n"
	}

	if m.loadErr != nil {
		return m.renderLoadError()
	}

	if m.completed {
		return m.renderCompletion()
	}

	if m.loading {
		return fmt.Sprintf("\n %s Loading the questionnaire...\n", m.spinner.View())
	}

	if m.submitting {
		return fmt.Sprintf("\n %s Saving your answer...\n", m.spinner.View())
	}

	if m.form != nil {
		var b strings.Builder
		if m.notice != "" {
			b.WriteString(m.renderNotice())
		}
		b.WriteString(m.form.View())
		return b.String()
	}

	return "Loading...\n"
}

func (m *IntakeModel) renderNotice() string {
	noticeStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11")).
		Bold(true)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(noticeStyle.Render("Could not save your answer: ") + m.notice)
	b.WriteString("\n")
	b.WriteString("Your answer is still filled in below; press Enter to try again.\n\n")
	return b.String()
}

func (m *IntakeModel) renderLoadError() string {
	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(errorStyle.Render("Error: ") + m.loadErr.Error())
	b.WriteString("\n\n")
	b.WriteString("Press r to retry • any other key to exit.\n")
	return b.String()
}

func (m *IntakeModel) renderCompletion() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10")).
		Bold(true)

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8"))

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(titleStyle.Render("✓ Questionnaire complete!"))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Your free pathway preview is ready."))
	b.WriteString("\n")
	b.WriteString("Run 'orienta pathway' to see it.\n\n")
	b.WriteString("Press any key to exit.\n")
	return b.String()
}

// RunIntake runs the questionnaire flow to completion or exit
func RunIntake(ctx context.Context, machine *intake.Machine) (*IntakeResult, error) {
	model := NewIntakeModel(ctx, machine)

	p := tea.NewProgram(model, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("run TUI: %w", err)
	}

	m, ok := finalModel.(*IntakeModel)
	if !ok {
		return nil, fmt.Errorf("invalid final model type")
	}

	if m.loadErr != nil {
		return nil, m.loadErr
	}

	return &IntakeResult{Completed: m.completed, Navigate: m.navigate}, nil
}
