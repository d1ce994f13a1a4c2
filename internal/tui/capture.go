package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/text2tana/internal/payload"
	"github.com/gerunddev/text2tana/internal/styles"
)

const submitTimeout = 30 * time.Second

// SubmitFunc delivers one payload and returns a short status such as
// "sent" or "queued"
type SubmitFunc func(ctx context.Context, text string, p payload.Payload) (string, error)

// SubmittedMsg is sent when a submission finishes
type SubmittedMsg struct {
	Text   string
	Status string
	Err    error
}

// CaptureModel is the Bubble Tea model for interactive capture: one line
// of input with a live preview of what will be sent.
type CaptureModel struct {
	input      textinput.Model
	spinner    spinner.Model
	conv       *payload.Converter
	submit     SubmitFunc
	submitting bool
	status     string
	err        error
	sent       int
}

// NewCaptureModel creates a focused capture prompt
func NewCaptureModel(conv *payload.Converter, submit SubmitFunc) CaptureModel {
	ti := textinput.New()
	ti.Placeholder = "@inbox #task call Alice https://example.com due:library"
	ti.Prompt = "› "
	ti.CharLimit = 2000
	ti.Width = 72
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SpinnerStyle

	return CaptureModel{
		input:   ti,
		spinner: s,
		conv:    conv,
		submit:  submit,
	}
}

// Sent returns how many lines were submitted successfully
func (m CaptureModel) Sent() int {
	return m.sent
}

// Value returns the current input text
func (m CaptureModel) Value() string {
	return m.input.Value()
}

func (m CaptureModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m CaptureModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if m.submitting || text == "" {
				return m, nil
			}
			m.submitting = true
			m.status = ""
			m.err = nil
			return m, tea.Batch(m.spinner.Tick, m.submitCmd(text))
		}

	case SubmittedMsg:
		m.submitting = false
		m.err = msg.Err
		if msg.Err != nil {
			m.status = ""
			return m, nil
		}
		m.sent++
		m.status = fmt.Sprintf("%s: %s", msg.Status, msg.Text)
		m.input.Reset()
		return m, nil

	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.submitting {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submitCmd converts text and hands the payload to the submit func
func (m CaptureModel) submitCmd(text string) tea.Cmd {
	p := m.conv.Convert(text)
	submit := m.submit
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()

		status, err := submit(ctx, text, p)
		return SubmittedMsg{Text: text, Status: status, Err: err}
	}
}

func (m CaptureModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("text2tana capture"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	res := m.conv.Parse(m.input.Value())
	b.WriteString(styles.PreviewStyle.Render(RenderPreview(res, m.conv.Settings())))
	b.WriteString("\n")

	switch {
	case m.submitting:
		b.WriteString(m.spinner.View() + " Sending...\n")
	case m.err != nil:
		b.WriteString(styles.ErrorStyle.Render("✗ "+m.err.Error()) + "\n")
	case m.status != "":
		b.WriteString(styles.SuccessStyle.Render("✓ "+m.status) + "\n")
	}

	b.WriteString(styles.HelpStyle.Render("enter: send • esc: quit"))
	b.WriteString("\n")

	return b.String()
}
