package ui

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/documentarian/internal/document"
	"github.com/dgnsrekt/documentarian/internal/gemini"
	"github.com/dgnsrekt/documentarian/internal/session"
	"github.com/dgnsrekt/documentarian/utils"
	"github.com/dustin/go-humanize"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/termenv"
	"github.com/sahilm/fuzzy"
)

const (
	keyEsc          = "esc"
	statusBarHeight = 1
	gutterWidth     = 2
)

var (
	summaryHelpHeight int

	statusBarNoteFg = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	statusBarBg     = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}

	statusBarScrollPosStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#949494", Dark: "#5A5A5A"}).
				Background(statusBarBg).
				Render

	statusBarNoteStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(statusBarBg).
				Render

	statusBarHelpStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(lipgloss.AdaptiveColor{Light: "#DCDCDC", Dark: "#323232"}).
				Render

	statusBarMessageStyle = lipgloss.NewStyle().
				Foreground(mintGreen).
				Background(darkGreen).
				Render

	statusBarErrorStyle = lipgloss.NewStyle().
				Foreground(cream).
				Background(red).
				Render

	statusBarMessageHelpStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("#B6FFE4")).
					Background(green).
					Render

	helpViewStyle = lipgloss.NewStyle().
			Foreground(statusBarNoteFg).
			Background(lipgloss.AdaptiveColor{Light: "#f2f2f2", Dark: "#1B1B1B"}).
			Render
)

type segmentsRenderedMsg struct {
	summary string
	blocks  []string
}

type summaryState int

const (
	summaryStateBrowse summaryState = iota
	summaryStateStatusMessage
)

type filterState int

const (
	filterOff filterState = iota
	filterEditing
	filterApplied
)

type statusMessage struct {
	message string
	isError bool
}

// segmentSource adapts segments to fuzzy.Source.
type segmentSource []document.Segment

func (s segmentSource) String(i int) string { return s[i].Text }
func (s segmentSource) Len() int            { return len(s) }

type summaryModel struct {
	common   *commonModel
	viewport viewport.Model
	state    summaryState
	showHelp bool

	statusMessage      statusMessage
	statusMessageTimer *time.Timer

	doc      session.State
	segments []document.Segment
	blocks   []string // rendered segments, parallel to segments

	// Indices into segments, in document order.
	visible []int
	cursor  int
	// First content line of each visible segment, for scrolling the cursor
	// into view.
	lineStarts []int
	lineEnds   []int

	filter      filterState
	filterInput textinput.Model
}

func newSummaryModel(common *commonModel) summaryModel {
	vp := viewport.New(0, 0)
	vp.YPosition = 0

	fi := textinput.New()
	fi.Prompt = "Find: "
	fi.PromptStyle = cursorStyle
	fi.CharLimit = 128

	return summaryModel{
		common:      common,
		state:       summaryStateBrowse,
		viewport:    vp,
		filterInput: fi,
	}
}

func (m *summaryModel) setSize(w, h int) {
	m.viewport.Width = w
	m.viewport.Height = h - statusBarHeight

	if m.showHelp {
		if summaryHelpHeight == 0 {
			summaryHelpHeight = strings.Count(m.helpView(), "\n")
		}
		m.viewport.Height -= (statusBarHeight + summaryHelpHeight)
	}
	if m.filter == filterEditing {
		m.viewport.Height--
	}
}

func (m summaryModel) hasDocument() bool {
	return m.doc.Summary != ""
}

func (m summaryModel) filtering() bool {
	return m.filter == filterEditing
}

// setState takes a new session snapshot. When the summary itself changed the
// segments are split and rendered again.
func (m *summaryModel) setState(st session.State, changed bool) tea.Cmd {
	m.doc = st
	if !changed {
		m.refresh()
		return nil
	}

	m.segments = m.common.session.Segments()
	m.blocks = nil
	m.cursor = 0
	m.clearFilter()
	m.viewport.GotoTop()
	return renderSegments(*m, st.Summary)
}

func (m *summaryModel) unload() {
	log.Debug("unload")
	if m.showHelp {
		m.toggleHelp()
	}
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.state = summaryStateBrowse
	m.doc = session.State{}
	m.segments = nil
	m.blocks = nil
	m.visible = nil
	m.cursor = 0
	m.clearFilter()
	m.viewport.SetContent("")
	m.viewport.YOffset = 0
}

func (m *summaryModel) toggleHelp() {
	m.showHelp = !m.showHelp
	m.setSize(m.common.width, m.common.height)
	if m.viewport.PastBottom() {
		m.viewport.GotoBottom()
	}
}

// showStatusMessage shows msg in the status bar for a few seconds. The
// returned command should be sent back through the update function.
func (m *summaryModel) showStatusMessage(msg statusMessage) tea.Cmd {
	m.state = summaryStateStatusMessage
	m.statusMessage = msg
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.statusMessageTimer = time.NewTimer(statusMessageTimeout)

	return waitForStatusMessageTimeout(m.statusMessageTimer)
}

// selected returns the target under the cursor.
func (m summaryModel) selected() (session.Target, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return 0, false
	}
	return session.Target(m.visible[m.cursor]), true
}

func (m *summaryModel) moveCursor(delta int) {
	if len(m.visible) == 0 {
		return
	}
	m.cursor = max(0, min(len(m.visible)-1, m.cursor+delta))
	m.refresh()
	m.scrollToCursor()
}

func (m *summaryModel) scrollToCursor() {
	if m.cursor >= len(m.lineStarts) {
		return
	}
	start, end := m.lineStarts[m.cursor], m.lineEnds[m.cursor]
	switch {
	case start < m.viewport.YOffset:
		m.viewport.SetYOffset(start)
	case end >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(end - m.viewport.Height + 1)
	}
}

func (m *summaryModel) applyFilter() {
	term := strings.TrimSpace(m.filterInput.Value())
	if term == "" {
		m.visible = allIndices(len(m.segments))
	} else {
		matches := fuzzy.FindFrom(term, segmentSource(m.segments))
		m.visible = make([]int, 0, len(matches))
		for _, match := range matches {
			m.visible = append(m.visible, match.Index)
		}
		slices.Sort(m.visible)
	}
	m.cursor = 0
	m.refresh()
	m.viewport.GotoTop()
}

func (m *summaryModel) clearFilter() {
	m.filter = filterOff
	m.filterInput.Reset()
	m.filterInput.Blur()
	m.visible = allIndices(len(m.segments))
	m.setSize(m.common.width, m.common.height)
}

func allIndices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func (m summaryModel) copySummary() tea.Cmd {
	// Copy using OSC 52
	termenv.Copy(m.doc.Summary)
	// Copy using native system clipboard
	if err := clipboard.WriteAll(m.doc.Summary); err != nil {
		log.Debug("unable to use system clipboard", "error", err)
	}
	return nil
}

func (m summaryModel) update(msg tea.Msg) (summaryModel, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	if m.filter == filterEditing {
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "enter":
				m.filter = filterApplied
				m.filterInput.Blur()
				m.setSize(m.common.width, m.common.height)
				if strings.TrimSpace(m.filterInput.Value()) == "" {
					m.clearFilter()
				}
				return m, nil
			case keyEsc:
				m.clearFilter()
				m.refresh()
				return m, nil
			}
			m.filterInput, cmd = m.filterInput.Update(msg)
			m.applyFilter()
			return m, cmd
		}
		m.filterInput, cmd = m.filterInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case keyEsc:
			if m.state != summaryStateBrowse {
				m.state = summaryStateBrowse
				return m, nil
			}
			if m.filter == filterApplied {
				m.clearFilter()
				m.refresh()
				return m, nil
			}

		case "j", "down":
			m.moveCursor(1)
			return m, nil

		case "k", "up":
			m.moveCursor(-1)
			return m, nil

		case "home", "g":
			m.viewport.GotoTop()
			m.cursor = 0
			m.refresh()

		case "end", "G":
			m.viewport.GotoBottom()
			m.cursor = max(0, len(m.visible)-1)
			m.refresh()

		case "enter":
			if target, ok := m.selected(); ok {
				return m, readAloudCmd(m.common, target)
			}

		case "f":
			return m, readAloudCmd(m.common, session.FullDocument)

		case "s":
			m.common.session.StopReading()
			return m, nil

		case "c":
			cmds = append(cmds, m.copySummary(), m.showStatusMessage(statusMessage{"Copied summary", false}))

		case "/":
			m.filter = filterEditing
			m.setSize(m.common.width, m.common.height)
			cmd = m.filterInput.Focus()
			return m, cmd

		case "n":
			m.common.session.Reset()
			return m, func() tea.Msg { return newLinkMsg{} }

		case "?":
			m.toggleHelp()
		}

	case segmentsRenderedMsg:
		if msg.summary != m.doc.Summary {
			return m, nil
		}
		log.Info("segments rendered", "count", len(msg.blocks))
		m.blocks = msg.blocks
		m.refresh()

	// We've received terminal dimensions, either for the first time or
	// after a resize
	case tea.WindowSizeMsg:
		if m.hasDocument() {
			return m, renderSegments(m, m.doc.Summary)
		}

	case statusMessageTimeoutMsg:
		m.state = summaryStateBrowse
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// refresh recomposes the viewport content from the rendered segments.
func (m *summaryModel) refresh() {
	if len(m.blocks) != len(m.segments) {
		return
	}

	var b strings.Builder
	line := 0
	write := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
		line += strings.Count(s, "\n") + 1
	}

	write(m.headerView())
	write("")

	m.lineStarts = m.lineStarts[:0]
	m.lineEnds = m.lineEnds[:0]
	for pos, idx := range m.visible {
		m.lineStarts = append(m.lineStarts, line)
		gutter := m.gutter(pos, session.Target(idx))
		for i, l := range strings.Split(m.blocks[idx], "\n") {
			if i == 0 {
				write(gutter + l)
			} else {
				write(strings.Repeat(" ", gutterWidth) + l)
			}
		}
		m.lineEnds = append(m.lineEnds, line-1)
	}
	if len(m.visible) == 0 {
		write(subtleStyle.Render("  No matching segments."))
	}

	if sources := m.sourcesView(); sources != "" {
		write("")
		write(sources)
	}

	m.viewport.SetContent(strings.TrimRight(b.String(), "\n"))
}

func (m summaryModel) gutter(pos int, target session.Target) string {
	mark := " "
	if m.doc.Reading(target) {
		if m.doc.Playback == session.PlaybackPlaying {
			mark = playingStyle.Render("♪")
		} else {
			mark = preparingMark
		}
	} else if pos == m.cursor {
		mark = cursorStyle.Render("›")
	}
	return mark + " "
}

func (m summaryModel) headerView() string {
	var b strings.Builder
	if meta := m.doc.Metadata; meta != nil {
		b.WriteString(titleStyle.Render(meta.Title))
		b.WriteString("\n")
		b.WriteString(authorStyle.Render(meta.AuthorName))
		if meta.ThumbnailURL != "" {
			b.WriteString("\n")
			b.WriteString(subtleStyle.Render(meta.ThumbnailURL))
		}
		b.WriteString("\n")
	}
	if m.doc.URL != "" {
		b.WriteString(subtleStyle.Render(m.doc.URL))
		b.WriteString("\n")
	}
	b.WriteString(readyStyle.Render("✓ Analysis Ready"))
	b.WriteString("\n")
	b.WriteString(dividerStyle.Render(strings.Repeat("─", max(0, min(m.viewport.Width, 80)))))
	return indent(b.String(), gutterWidth)
}

func (m summaryModel) sourcesView() string {
	if len(m.doc.Sources) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Sources"))
	for _, src := range m.doc.Sources {
		b.WriteString("\n• ")
		if src == gemini.TranscriptSource {
			b.WriteString(subtleStyle.Render(src))
			continue
		}
		b.WriteString(sourceStyle.Render(document.Host(src)))
	}
	return indent(b.String(), gutterWidth)
}

func (m summaryModel) View() string {
	var b strings.Builder
	fmt.Fprint(&b, m.viewport.View()+"\n")

	if m.filter == filterEditing {
		fmt.Fprint(&b, m.filterInput.View()+"\n")
	}

	// Footer
	m.statusBarView(&b)

	if m.showHelp {
		fmt.Fprint(&b, "\n"+m.helpView())
	}

	return b.String()
}

// statusNote describes the most relevant thing going on right now.
func (m summaryModel) statusNote() string {
	switch {
	case m.state == summaryStateStatusMessage:
		return m.statusMessage.message
	case m.doc.ReadErr != "":
		return m.doc.ReadErr
	case m.doc.Playback == session.PlaybackPreparing:
		return "Preparing audio…"
	case m.doc.Playback == session.PlaybackPlaying:
		if m.doc.Target == session.FullDocument {
			return "Reading full summary"
		}
		return fmt.Sprintf("Reading segment %d/%d", int(m.doc.Target)+1, len(m.segments))
	case m.filter == filterApplied:
		return fmt.Sprintf("“%s” %d/%d segments", m.filterInput.Value(), len(m.visible), len(m.segments))
	case m.doc.Metadata != nil:
		return m.doc.Metadata.Title + " · " + m.doc.Metadata.AuthorName
	default:
		return fmt.Sprintf("%d segments", len(m.segments))
	}
}

func (m summaryModel) statusBarView(b *strings.Builder) {
	const (
		minPercent               float64 = 0.0
		maxPercent               float64 = 1.0
		percentToStringMagnitude float64 = 100.0
	)

	showStatusMessage := m.state == summaryStateStatusMessage
	isError := (showStatusMessage && m.statusMessage.isError) ||
		(!showStatusMessage && m.doc.ReadErr != "")

	style := statusBarNoteStyle
	switch {
	case isError:
		style = statusBarErrorStyle
	case showStatusMessage:
		style = statusBarMessageStyle
	}

	logo := logoView()

	// Scroll percent and summary size
	percent := math.Max(minPercent, math.Min(maxPercent, m.viewport.ScrollPercent()))
	scrollPercent := fmt.Sprintf(" %s %3.f%% ", humanize.Bytes(uint64(len(m.doc.Summary))), percent*percentToStringMagnitude)
	if showStatusMessage {
		scrollPercent = style(scrollPercent)
	} else {
		scrollPercent = statusBarScrollPosStyle(scrollPercent)
	}

	// "Help" note
	var helpNote string
	if showStatusMessage {
		helpNote = statusBarMessageHelpStyle(" ? Help ")
	} else {
		helpNote = statusBarHelpStyle(" ? Help ")
	}

	note := truncate.StringWithTail(" "+m.statusNote()+" ", uint(max(0, //nolint:gosec
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(scrollPercent)-
			ansi.PrintableRuneWidth(helpNote),
	)), ellipsis)
	note = style(note)

	// Empty space
	padding := max(0,
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(note)-
			ansi.PrintableRuneWidth(scrollPercent)-
			ansi.PrintableRuneWidth(helpNote),
	)
	emptySpace := style(strings.Repeat(" ", padding))

	fmt.Fprintf(b, "%s%s%s%s%s",
		logo,
		note,
		emptySpace,
		scrollPercent,
		helpNote,
	)
}

func (m summaryModel) helpView() (s string) {
	col1 := []string{
		"enter   read segment",
		"f       read full summary",
		"s       stop reading",
		"c       copy summary",
		"/       find segments",
		"n       new link",
		"q       quit",
	}

	s += "\n"
	s += "k/↑      previous segment    " + col1[0] + "\n"
	s += "j/↓      next segment        " + col1[1] + "\n"
	s += "g/home   go to top           " + col1[2] + "\n"
	s += "G/end    go to bottom        " + col1[3] + "\n"
	s += "b/pgup   page up             " + col1[4] + "\n"
	s += "pgdn     page down           " + col1[5] + "\n"
	s += "esc      clear find          " + col1[6]

	s = indent(s, 2)

	// Fill up empty cells with spaces for background coloring
	if m.common.width > 0 {
		lines := strings.Split(s, "\n")
		for i := 0; i < len(lines); i++ {
			l := runewidth.StringWidth(lines[i])
			n := max(m.common.width-l, 0)
			lines[i] += strings.Repeat(" ", n)
		}

		s = strings.Join(lines, "\n")
	}

	return helpViewStyle(s)
}

// COMMANDS

func renderSegments(m summaryModel, summary string) tea.Cmd {
	segs := m.segments
	width := m.viewport.Width
	return func() tea.Msg {
		blocks, err := glamourRender(m.common.cfg, width, segs)
		if err != nil {
			log.Error("error rendering with Glamour", "error", err)
			return errMsg{err}
		}
		return segmentsRenderedMsg{summary: summary, blocks: blocks}
	}
}

// glamourRender renders each segment on its own so the cursor and read-aloud
// markers can be placed next to it.
func glamourRender(cfg Config, viewportWidth int, segs []document.Segment) ([]string, error) {
	width := max(0, viewportWidth-gutterWidth)
	if cfg.GlamourMaxWidth > 0 {
		width = min(int(cfg.GlamourMaxWidth), width) //nolint:gosec
	}

	blocks := make([]string, len(segs))
	if !config.GlamourEnabled {
		for i, seg := range segs {
			blocks[i] = seg.Raw
		}
		return blocks, nil
	}

	r, err := glamour.NewTermRenderer(
		utils.GlamourStyle(cfg.GlamourStyle),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating glamour renderer: %w", err)
	}

	plain := lipgloss.NewStyle().Width(max(1, width))
	for i, seg := range segs {
		switch {
		case seg.Record():
			blocks[i] = recordStyle.Render(seg.Text)
		case seg.Kind == document.KindParagraph && seg.Chinese():
			blocks[i] = plain.Inherit(chineseStyle).Render(seg.Text)
		default:
			out, err := r.Render(seg.Raw)
			if err != nil {
				return nil, fmt.Errorf("error rendering markdown: %w", err)
			}
			blocks[i] = strings.Trim(out, "\n")
		}
	}
	return blocks, nil
}
