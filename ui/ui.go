// Package ui provides the interactive summary browser.
package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/documentarian/internal/audio"
	"github.com/dgnsrekt/documentarian/internal/document"
	"github.com/dgnsrekt/documentarian/internal/oembed"
	"github.com/dgnsrekt/documentarian/internal/session"
	te "github.com/muesli/termenv"
)

const (
	statusMessageTimeout = time.Second * 3 // how long to show status messages like "copied!"
	ellipsis             = "…"
)

var config Config

// Session is the orchestration surface the TUI drives.
type Session interface {
	SummarizeURL(ctx context.Context, input string) error
	SummarizeTranscript(ctx context.Context, text string, meta *oembed.VideoMetadata) error
	Sample(ctx context.Context) error
	ReadAloud(ctx context.Context, target session.Target) error
	StopReading()
	Reset()
	Snapshot() session.State
	Segments() []document.Segment
	Subscribe() <-chan session.State
}

// Suspender releases the audio device while the program is suspended.
type Suspender interface {
	Suspend() error
}

// NewProgram returns a new Tea program.
func NewProgram(cfg Config, sess Session, sus Suspender) *tea.Program {
	log.Debug(
		"Starting documentarian",
		"glamour",
		cfg.GlamourEnabled,
		"transcript",
		cfg.TranscriptPath,
		"watch",
		cfg.Watch,
	)

	config = cfg
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	m := newModel(cfg, sess, sus)
	return tea.NewProgram(m, opts...)
}

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

type (
	sessionStateMsg         session.State
	sessionClosedMsg        struct{}
	summarizeDoneMsg        struct{ err error }
	newLinkMsg              struct{}
	statusMessageTimeoutMsg struct{}
)

type readDoneMsg struct {
	target session.Target
	err    error
}

type transcriptLoadedMsg struct {
	text string
	meta *oembed.VideoMetadata
}

// state is the top-level application state.
type state int

const (
	stateShowInput state = iota
	stateShowSummary
)

func (s state) String() string {
	return map[state]string{
		stateShowInput:   "showing link input",
		stateShowSummary: "showing summary",
	}[s]
}

// Common stuff we'll need to access in all models.
type commonModel struct {
	cfg     Config
	ctx     context.Context
	session Session
	width   int
	height  int
}

type model struct {
	common   *commonModel
	state    state
	fatalErr error

	cancel   context.CancelFunc
	audio    Suspender
	updates  <-chan session.State
	snapshot session.State

	input   textinput.Model
	spinner spinner.Model
	summary summaryModel

	watcher       *transcriptWatcher
	reloadPending bool
}

func newModel(cfg Config, sess Session, sus Suspender) model {
	if cfg.GlamourStyle == styles.AutoStyle {
		if te.HasDarkBackground() {
			cfg.GlamourStyle = styles.DarkStyle
		} else {
			cfg.GlamourStyle = styles.LightStyle
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	common := &commonModel{
		cfg:     cfg,
		ctx:     ctx,
		session: sess,
	}

	ti := textinput.New()
	ti.Placeholder = "https://www.youtube.com/watch?v=..."
	ti.Prompt = "› "
	ti.PromptStyle = cursorStyle
	ti.CharLimit = 512
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	m := model{
		common:   common,
		state:    stateShowInput,
		cancel:   cancel,
		audio:    sus,
		updates:  sess.Subscribe(),
		snapshot: sess.Snapshot(),
		input:    ti,
		spinner:  sp,
		summary:  newSummaryModel(common),
	}

	if cfg.TranscriptPath != "" && cfg.Watch {
		w, err := newTranscriptWatcher(cfg.TranscriptPath, cfg.WatchInterval)
		if err != nil {
			log.Error("unable to watch transcript", "file", cfg.TranscriptPath, "error", err)
			m.fatalErr = err
			return m
		}
		m.watcher = w
	}

	return m
}

func (m model) Init() tea.Cmd {
	log.Debug("Init() called", "state", m.state)
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick, waitForState(m.updates)}

	if path := m.common.cfg.TranscriptPath; path != "" {
		cmds = append(cmds, loadTranscript(path))
		if m.watcher != nil {
			cmds = append(cmds, m.watcher.wait)
		}
	}

	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// If there's been an error, any key exits
	if m.fatalErr != nil {
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, m.quit()
		}
	}

	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		// Ctrl+C always quits no matter where in the application you are.
		case "ctrl+c":
			return m, m.quit()

		case "ctrl+z":
			if m.audio != nil {
				if err := m.audio.Suspend(); err != nil {
					log.Warn("unable to suspend audio", "error", err)
				}
			}
			return m, tea.Suspend
		}

		if m.state == stateShowInput {
			return m.updateInput(msg)
		}

		if msg.String() == "q" && !m.summary.filtering() {
			return m, m.quit()
		}

	// Window size is received when starting up and on every resize
	case tea.WindowSizeMsg:
		m.common.width = msg.Width
		m.common.height = msg.Height
		m.input.Width = max(0, msg.Width-8)
		m.summary.setSize(msg.Width, msg.Height)

	case sessionStateMsg:
		cmds = append(cmds, m.applyState(session.State(msg)), waitForState(m.updates))

	case sessionClosedMsg:
		return m, nil

	case summarizeDoneMsg:
		switch {
		case msg.err == nil:
		case errors.Is(msg.err, session.ErrBusy):
			cmds = append(cmds, m.summary.showStatusMessage(statusMessage{"Already summarizing", true}))
		default:
			log.Debug("summarize finished with error", "error", msg.err)
		}
		return m, tea.Batch(cmds...)

	case readDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, audio.ErrInterrupted) {
			log.Debug("read aloud finished with error", "target", msg.target, "error", msg.err)
		}
		return m, nil

	case newLinkMsg:
		m.state = stateShowInput
		m.input.Reset()
		cmd := m.input.Focus()
		return m, cmd

	case transcriptChangedMsg:
		cmds = append(cmds, m.watcher.wait)
		switch {
		case m.watcher.allow():
			cmds = append(cmds, loadTranscript(m.watcher.path))
		case !m.reloadPending:
			m.reloadPending = true
			cmds = append(cmds, tea.Tick(m.watcher.interval, func(time.Time) tea.Msg {
				return transcriptRetryMsg{}
			}))
		}
		return m, tea.Batch(cmds...)

	case transcriptRetryMsg:
		m.reloadPending = false
		return m, loadTranscript(m.watcher.path)

	case transcriptLoadedMsg:
		log.Info("summarizing transcript", "length", len(msg.text))
		return m, summarizeTranscriptCmd(m.common, msg.text, msg.meta)

	case errMsg:
		cmds = append(cmds, m.summary.showStatusMessage(statusMessage{msg.Error(), true}))
		if m.snapshot.Phase != session.PhaseReady {
			m.fatalErr = msg.err
		}
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	switch m.state {
	case stateShowInput:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)

	case stateShowSummary:
		newSummaryModel, cmd := m.summary.update(msg)
		m.summary = newSummaryModel
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.snapshot.Loading() {
			return m, nil
		}
		return m, summarizeURLCmd(m.common, m.input.Value())

	case "ctrl+s":
		if m.snapshot.Loading() {
			return m, nil
		}
		return m, sampleCmd(m.common)

	case keyEsc:
		if m.summary.hasDocument() && m.snapshot.Phase == session.PhaseReady {
			m.state = stateShowSummary
			m.input.Blur()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// applyState folds a session snapshot into the model.
func (m *model) applyState(st session.State) tea.Cmd {
	prev := m.snapshot
	m.snapshot = st
	log.Debug("session state", "phase", st.Phase, "playback", st.Playback)

	switch st.Phase {
	case session.PhaseReady:
		m.state = stateShowSummary
		m.input.Blur()
		return m.summary.setState(st, prev.Summary != st.Summary || !m.summary.hasDocument())
	case session.PhaseMetadataPending, session.PhaseSummarizing:
		m.state = stateShowInput
		return m.spinner.Tick
	case session.PhaseError:
		m.state = stateShowInput
		return m.input.Focus()
	default:
		m.summary.unload()
		m.state = stateShowInput
		return nil
	}
}

func (m model) quit() tea.Cmd {
	m.common.session.StopReading()
	m.cancel()
	if m.watcher != nil {
		if err := m.watcher.Close(); err != nil {
			log.Debug("unable to close watcher", "error", err)
		}
	}
	return tea.Quit
}

func (m model) View() string {
	if m.fatalErr != nil {
		return errorView(m.fatalErr, true)
	}

	switch m.state { //nolint:exhaustive
	case stateShowSummary:
		return m.summary.View()
	default:
		return m.inputView()
	}
}

func (m model) inputView() string {
	var b strings.Builder

	b.WriteString(logoView())
	b.WriteString("\n\n")
	b.WriteString(subtleStyle.Render("Paste a YouTube link to get a bilingual summary with sources."))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch m.snapshot.Phase {
	case session.PhaseMetadataPending:
		fmt.Fprintf(&b, "%s Fetching video details…", m.spinner.View())
	case session.PhaseSummarizing:
		label := "Analyzing video & searching…"
		if meta := m.snapshot.Metadata; meta != nil {
			label = fmt.Sprintf("Analyzing %q…", meta.Title)
		}
		fmt.Fprintf(&b, "%s %s", m.spinner.View(), label)
	case session.PhaseError:
		b.WriteString(errorBannerStyle.Render(m.snapshot.Err))
	}
	b.WriteString("\n\n")

	help := []string{"enter summarize", "ctrl+s try sample"}
	if m.summary.hasDocument() && m.snapshot.Phase == session.PhaseReady {
		help = append(help, "esc back to summary")
	}
	help = append(help, "ctrl+c quit")
	b.WriteString(subtleStyle.Render(strings.Join(help, " • ")))

	return "\n" + indent(b.String(), 2)
}

// COMMANDS

func waitForState(ch <-chan session.State) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return sessionClosedMsg{}
		}
		return sessionStateMsg(st)
	}
}

func summarizeURLCmd(c *commonModel, url string) tea.Cmd {
	return func() tea.Msg {
		return summarizeDoneMsg{c.session.SummarizeURL(c.ctx, url)}
	}
}

func sampleCmd(c *commonModel) tea.Cmd {
	return func() tea.Msg {
		return summarizeDoneMsg{c.session.Sample(c.ctx)}
	}
}

func summarizeTranscriptCmd(c *commonModel, text string, meta *oembed.VideoMetadata) tea.Cmd {
	return func() tea.Msg {
		return summarizeDoneMsg{c.session.SummarizeTranscript(c.ctx, text, meta)}
	}
}

func readAloudCmd(c *commonModel, target session.Target) tea.Cmd {
	return func() tea.Msg {
		return readDoneMsg{target: target, err: c.session.ReadAloud(c.ctx, target)}
	}
}

func loadTranscript(path string) tea.Cmd {
	return func() tea.Msg {
		content, err := os.ReadFile(path)
		if err != nil {
			log.Error("unable to read transcript", "file", path, "error", err)
			return errMsg{err}
		}
		doc, body, err := document.ParseFrontMatter(content)
		if err != nil {
			log.Error("unable to parse transcript", "file", path, "error", err)
			return errMsg{err}
		}
		return transcriptLoadedMsg{text: body, meta: doc.Metadata}
	}
}

func waitForStatusMessageTimeout(t *time.Timer) tea.Cmd {
	return func() tea.Msg {
		<-t.C
		return statusMessageTimeoutMsg{}
	}
}
