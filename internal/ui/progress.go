package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// StepStartedMsg marks a pipeline step as running
type StepStartedMsg struct {
	Name string
}

// StepFinishedMsg records a pipeline step's outcome
type StepFinishedMsg struct {
	Name    string
	Warning string
	Err     error
}

// PipelineDoneMsg ends the progress display
type PipelineDoneMsg struct {
	Err error
}

// stepState is the display state of one step
type stepState struct {
	name    string
	running bool
	done    bool
	warning string
	err     error
}

// ProgressModel renders a deployment pipeline as it runs
type ProgressModel struct {
	spinner spinner.Model
	steps   []stepState
	order   map[string]int
	done    bool
	err     error
}

// NewProgressModel creates a progress display for the named steps
func NewProgressModel(stepNames []string) *ProgressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = TitleStyle

	steps := make([]stepState, len(stepNames))
	order := make(map[string]int, len(stepNames))

	for i, name := range stepNames {
		steps[i] = stepState{name: name}
		order[name] = i
	}

	return &ProgressModel{
		spinner: s,
		steps:   steps,
		order:   order,
	}
}

// Init starts the spinner
func (m *ProgressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles pipeline progress messages
func (m *ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case StepStartedMsg:
		if i, ok := m.order[msg.Name]; ok {
			m.steps[i].running = true
		}

		return m, nil

	case StepFinishedMsg:
		if i, ok := m.order[msg.Name]; ok {
			m.steps[i].running = false
			m.steps[i].done = true
			m.steps[i].warning = msg.Warning
			m.steps[i].err = msg.Err
		}

		return m, nil

	case PipelineDoneMsg:
		m.done = true
		m.err = msg.Err

		return m, tea.Quit

	default:
		return m, nil
	}
}

// View renders the step list
func (m *ProgressModel) View() string {
	var sb strings.Builder

	for _, step := range m.steps {
		switch {
		case step.err != nil:
			sb.WriteString(ErrorStyle.Render("✗ " + step.name))
			sb.WriteString(SubtleStyle.Render("  " + step.err.Error()))
		case step.warning != "":
			sb.WriteString(WarningStyle.Render("! " + step.name))
			sb.WriteString(SubtleStyle.Render("  " + step.warning))
		case step.done:
			sb.WriteString(SuccessStyle.Render("✓ " + step.name))
		case step.running:
			sb.WriteString(fmt.Sprintf("%s %s", m.spinner.View(), step.name))
		default:
			sb.WriteString(SubtleStyle.Render("  " + step.name))
		}

		sb.WriteString("\n")
	}

	if m.done {
		if m.err != nil {
			sb.WriteString("\n" + ErrorStyle.Render("Deployment failed") + "\n")
		} else {
			sb.WriteString("\n" + SuccessStyle.Render("Deployment complete") + "\n")
		}
	}

	return sb.String()
}

// Err returns the pipeline error the display finished with
func (m *ProgressModel) Err() error {
	return m.err
}
