package repl

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"podplay/internal/app"
	"podplay/internal/format"
	"podplay/internal/playback"
	"podplay/internal/theme"
)

const transcriptLimit = 200

// playbackEventMsg carries one playback engine event into the update loop.
type playbackEventMsg struct {
	event any
}

// playbackClosedMsg signals that the engine subscription has been closed.
type playbackClosedMsg struct{}

type model struct {
	ctx      context.Context
	app      *app.App
	sub      *playback.Subscription
	theme    theme.Theme
	input    textinput.Model
	history  []string
	messages []string
	quitting bool
}

func newModel(ctx context.Context, application *app.App) model {
	ti := textinput.New()
	ti.Placeholder = "help"
	ti.Focus()
	ti.Prompt = "podplay> "
	ti.CharLimit = 512
	ti.Width = 80

	th := theme.ForName(application.Config().ColorTheme)

	return model{
		ctx:     ctx,
		app:     application,
		sub:     application.Engine().Subscribe(),
		theme:   th,
		input:   ti,
		history: make([]string, 0, 32),
		messages: []string{
			th.Message.Render("Podplay ready. Type 'help' for assistance."),
		},
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForPlayback(m.sub))
}

// waitForPlayback blocks on the engine subscription and delivers the next
// event as a message. The update loop re-issues it after each event.
func waitForPlayback(sub *playback.Subscription) tea.Cmd {
	return func() tea.Msg {
		select {
		case e := <-sub.StateChanged:
			return playbackEventMsg{event: e}
		case e := <-sub.EpisodeChanged:
			return playbackEventMsg{event: e}
		case e := <-sub.QueueChanged:
			return playbackEventMsg{event: e}
		case e := <-sub.PositionChanged:
			return playbackEventMsg{event: e}
		case e := <-sub.Error:
			return playbackEventMsg{event: e}
		case <-sub.Done:
			return playbackClosedMsg{}
		}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m.handleSubmit()
		}
	case playbackEventMsg:
		return m.handlePlaybackEvent(msg.event)
	case playbackClosedMsg:
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	var b strings.Builder
	for _, message := range m.messages {
		b.WriteString(message)
		b.WriteString("\n")
	}
	if bar := m.renderPlayerBar(); bar != "" {
		b.WriteString(bar)
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	if !m.quitting {
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) handleSubmit() (tea.Model, tea.Cmd) {
	command := strings.TrimSpace(m.input.Value())
	if command != "" {
		m.history = append(m.history, command)
	}
	m.input.SetValue("")

	if command == "" {
		return m, nil
	}

	result, err := m.app.Execute(m.ctx, command)
	if err != nil {
		m.appendMessage(m.theme.Error.Render(err.Error()))
		return m, nil
	}

	m.renderResult(result)

	if result.Quit {
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

func (m model) handlePlaybackEvent(event any) (tea.Model, tea.Cmd) {
	switch e := event.(type) {
	case playback.ErrorEvent:
		title := "episode"
		if e.Episode != nil {
			title = e.Episode.Title
		}
		m.appendMessage(m.theme.Error.Render(fmt.Sprintf("Playback failed for %s: %v", title, e.Err)))
	case playback.EpisodeChange:
		if e.Episode != nil {
			m.appendMessage(m.theme.Dim.Render("Now playing: " + e.Episode.Title))
		}
	}
	// State, queue and position events only refresh the player bar, which
	// reads the engine directly at render time.
	return m, waitForPlayback(m.sub)
}

// renderResult turns a command result into transcript lines.
func (m *model) renderResult(result app.CommandResult) {
	if result.Message != "" {
		m.appendMessage(result.Message)
	}
	if len(result.Podcasts) > 0 {
		m.renderPodcasts(result.PodcastsTitle, result.Podcasts)
	}
	if len(result.Episodes) > 0 {
		m.renderEpisodes(result.EpisodesTitle, result.Episodes)
	}
	if len(result.Queue) > 0 {
		m.renderQueue(result.Queue)
	}
}

func (m *model) renderPodcasts(title string, items []app.PodcastItem) {
	if title != "" {
		m.appendMessage(m.theme.Header.Render(title))
	}
	for _, item := range items {
		marker := m.theme.Unsubscribed.Render(" ")
		if item.IsSubscribed {
			marker = m.theme.Subscribed.Render("*")
		}
		line := fmt.Sprintf("%3d %s %s", item.Index, marker, m.theme.Normal.Render(item.Podcast.Title))
		if item.Podcast.Publisher != "" {
			line += m.theme.Dim.Render(" — " + item.Podcast.Publisher)
		}
		m.appendMessage(line)
	}
}

func (m *model) renderEpisodes(title string, items []app.EpisodeItem) {
	if title != "" {
		m.appendMessage(m.theme.Header.Render(title))
	}
	for _, item := range items {
		line := fmt.Sprintf("%3d %s", item.Index, m.theme.Normal.Render(item.Episode.Title))
		if item.Episode.HasPublish {
			line += m.theme.Date.Render("  " + humanize.Time(item.Episode.PublishedAt))
		}
		m.appendMessage(line)
	}
}

func (m *model) renderQueue(items []app.QueueItem) {
	m.appendMessage(m.theme.Header.Render("Queue"))
	for _, item := range items {
		marker := " "
		style := m.theme.Normal
		if item.Current {
			marker = ">"
			style = m.theme.NowPlaying
		}
		m.appendMessage(fmt.Sprintf("%3d %s %s", item.Index, marker, style.Render(item.Episode.Title)))
	}
}

// renderPlayerBar is the one-line transport readout above the prompt.
func (m model) renderPlayerBar() string {
	engine := m.app.Engine()
	current := engine.CurrentEpisode()
	if current == nil {
		return ""
	}

	var state string
	if engine.IsPlaying() {
		state = m.theme.NowPlaying.Render("▶")
	} else {
		state = m.theme.Paused.Render("⏸")
	}

	title := current.Title
	if current.PodcastTitle != "" {
		title = current.PodcastTitle + " · " + title
	}

	return fmt.Sprintf("%s %s  %s  %s",
		state,
		m.theme.Normal.Render(title),
		m.theme.Position.Render(format.Clock(engine.Position(), engine.Duration())),
		m.theme.Dim.Render(fmt.Sprintf("%.2gx", engine.PlaybackSpeed())),
	)
}

func (m *model) appendMessage(line string) {
	m.messages = append(m.messages, line)
	if len(m.messages) > transcriptLimit {
		m.messages = m.messages[len(m.messages)-transcriptLimit:]
	}
}
