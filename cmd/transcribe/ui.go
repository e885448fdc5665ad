package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	transcription "github.com/angangwa/azure-speech-to-text/core"
	"github.com/angangwa/azure-speech-to-text/core/events"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1)
	errorFooterStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFFDF5")).
				Background(lipgloss.Color("#CC3333")).
				Padding(0, 1)
	partialStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

type sessionEvent struct {
	event events.Event
}

type sessionClosed struct{}

type model struct {
	viewport viewport.Model
	ready    bool

	session *transcription.Session
	events  <-chan events.Event

	turns     []string
	partial   string
	status    string
	statusErr bool
}

func initialModel(session *transcription.Session) model {
	return model{
		session: session,
		events:  session.Events(),
	}
}

func (m model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func waitForEvent(eventChan <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-eventChan
		if !ok {
			return sessionClosed{}
		}
		return sessionEvent{event: event}
	}
}

func stopSession(session *transcription.Session) tea.Cmd {
	return func() tea.Msg {
		if session != nil {
			session.Stop()
		}
		return nil
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, stopSession(m.session)
		}

	case tea.WindowSizeMsg:
		headerHeight := lipgloss.Height(m.headerView())
		footerHeight := lipgloss.Height(m.footerView())
		verticalMarginHeight := headerHeight + footerHeight

		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-verticalMarginHeight)
			m.viewport.YPosition = headerHeight
			m.viewport.SetContent(m.transcriptView())
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - verticalMarginHeight
		}

	case sessionEvent:
		switch event := msg.event.(type) {
		case events.TranscriptDelta:
			m.partial += event.Text
		case events.TranscriptCompleted:
			m.turns = append(m.turns, event.Text)
			m.partial = ""
		case events.Status:
			m.status = event.Message
			m.statusErr = false
		case events.Error:
			m.status = event.Message
			m.statusErr = true
		case events.SessionEnded:
			m.status = event.String()
			m.statusErr = false
		}
		m.viewport.SetContent(m.transcriptView())
		m.viewport.GotoBottom()
		cmds = append(cmds, waitForEvent(m.events))

	case sessionClosed:
		return m, tea.Quit
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}
	return fmt.Sprintf(
		"%s\n%s\n%s",
		m.headerView(),
		m.viewport.View(),
		m.footerView(),
	)
}

func (m model) headerView() string {
	title := titleStyle.Render("Live Transcription")
	line := strings.Repeat(
		"─",
		max(0, m.viewport.Width-lipgloss.Width(title)),
	)
	return lipgloss.JoinHorizontal(lipgloss.Center, title, line)
}

func (m model) footerView() string {
	status := m.status
	if status == "" {
		status = "Starting..."
	}
	style := titleStyle
	if m.statusErr {
		style = errorFooterStyle
	}
	info := style.Render(status + " · q to quit")
	line := strings.Repeat("─", max(0, m.viewport.Width-lipgloss.Width(info)))
	return lipgloss.JoinHorizontal(lipgloss.Center, line, info)
}

// transcriptView renders the completed turns followed by the in-progress
// partial, wrapped to the viewport width. The partial is dimmed so revisions
// read as provisional.
func (m model) transcriptView() string {
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}

	var content strings.Builder
	for _, turn := range m.turns {
		content.WriteString(turn)
		content.WriteString("\n")
	}
	if m.partial != "" {
		content.WriteString(partialStyle.Render(m.partial))
		content.WriteString("\n")
	}
	return wordwrap.String(content.String(), width)
}
