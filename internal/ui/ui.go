package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/vibesync/internal/formatter"
	"github.com/desertthunder/vibesync/internal/models"
	"github.com/desertthunder/vibesync/internal/rooms"
	"github.com/desertthunder/vibesync/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LandingView ViewState = iota
	RoomView
	ComparingView
	ResultView
)

const codePlaceholder = "······"

// Options wires the TUI to the session and the room machine.
type Options struct {
	Machine  *rooms.Machine
	LoggedIn bool
	Profile  func(context.Context) (*models.Profile, error)
	Login    func(context.Context) error // runs the browser login; nil disables logging in from the TUI
	Logout   func()
	Homes    <-chan struct{} // signalled when the session is forcibly ended
	Copy     func(string) error
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	opts     Options
	machine  *rooms.Machine
	loggedIn bool
	busy     bool
	profile  *models.Profile
	state    rooms.State
	width    int
	height   int
	spinner  spinner.Model
	search   textinput.Model
	tracks   list.Model
	tab      models.Set
	page     int
	notice   string
	err      error
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}

	search := textinput.New()
	search.Placeholder = "song, artist or album"
	search.Prompt = "/ "

	tracks := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	tracks.SetFilteringEnabled(false)
	tracks.SetShowHelp(false)

	return &Model{
		ctx:      ctx,
		opts:     opts,
		machine:  opts.Machine,
		loggedIn: opts.LoggedIn,
		state:    opts.Machine.State(),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.ok)),
		search:   search,
		tracks:   tracks,
		page:     1,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init starts listening for state changes and, when logged in, loads the profile and a room code.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForState(), m.waitForHome(), m.spinner.Tick}
	if m.loggedIn {
		cmds = append(cmds, m.start())
	}
	return tea.Batch(cmds...)
}

// View returns the current view derived from the session and the machine phase.
func (m *Model) View() string {
	switch m.viewState() {
	case LandingView:
		return m.renderLanding()
	case ComparingView:
		return m.renderComparing()
	case ResultView:
		return m.renderResult()
	default:
		return m.renderRoom()
	}
}

func (m *Model) viewState() ViewState {
	if !m.loggedIn {
		return LandingView
	}
	switch m.state.Phase {
	case models.Comparing:
		return ComparingView
	case models.Results:
		return ResultView
	default:
		return RoomView
	}
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.tracks.SetSize(msg.Width-4, msg.Height-12)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.viewState() {
		case LandingView:
			return m.handleLandingKeys(msg)
		case ComparingView:
			if key.Matches(msg, m.keys.exit) {
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			return m.handleResultKeys(msg)
		default:
			return m.handleRoomKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	m.tracks, cmd = m.tracks.Update(msg)
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgStateChanged:
		m.sync(msg.data.(rooms.State))
		return m, m.waitForState()

	case MsgLoggedIn:
		m.busy = false
		if err, _ := msg.data.(error); err != nil {
			m.err = err
			return m, nil
		}
		m.loggedIn, m.err, m.notice = true, nil, ""
		return m, m.start()

	case MsgLoggedOut:
		m.endSession()
		if forced := msg.data.(bool); forced {
			m.err = shared.ErrSessionExpired
			return m, m.waitForHome()
		}
		return m, nil

	case MsgProfileFetched:
		res := msg.data.(result[*models.Profile])
		if res.err != nil {
			m.err = res.err
			if m.opts.Logout != nil {
				m.opts.Logout()
			}
			m.endSession()
			return m, nil
		}
		m.profile = res.value
		return m, nil

	case MsgCodeReady:
		res := msg.data.(result[models.RoomCode])
		if res.err != nil && !errors.Is(res.err, shared.ErrInvalidState) {
			m.err = res.err
		}
		m.sync(m.machine.State())
		return m, nil

	case MsgCompared:
		res := msg.data.(result[*models.Comparison])
		if res.err == nil {
			m.tab, m.page, m.notice = models.OnlyA, 1, ""
			m.search.SetValue("")
		}
		m.sync(m.machine.State())
		return m, nil

	case MsgChecked:
		res := msg.data.(result[*models.RoomCheck])
		switch {
		case res.err != nil:
			m.notice = styles.err.Render(shared.Reason(res.err))
		case res.value.Valid:
			m.notice = styles.ok.Render(fmt.Sprintf("✓ %s is waiting in this room", hostName(res.value.Host)))
		default:
			m.notice = styles.warn.Render("No open room with that code")
		}
		return m, nil

	case MsgCopied:
		if err, _ := msg.data.(error); err != nil {
			m.notice = styles.warn.Render(fmt.Sprintf("Could not copy: %v", err))
		} else {
			m.notice = styles.ok.Render("✓ Copied")
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleLandingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.login):
		if m.busy || m.opts.Login == nil {
			return m, nil
		}
		m.busy, m.err = true, nil
		return m, m.login()
	}
	return m, nil
}

func (m *Model) handleRoomKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.exit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.submit):
		m.notice = ""
		return m, m.submit()
	case key.Matches(msg, m.keys.erase):
		m.notice = ""
		m.machine.Backspace()
	case key.Matches(msg, m.keys.check):
		return m, m.check()
	case key.Matches(msg, m.keys.copy):
		if m.state.OwnCode == "" {
			return m, nil
		}
		return m, m.copyCode(m.state.OwnCode)
	case key.Matches(msg, m.keys.logout):
		return m, m.logout()
	case msg.Type == tea.KeyRunes:
		m.notice = ""
		m.machine.Type(string(msg.Runes))
	default:
		return m, nil
	}
	m.sync(m.machine.State())
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.search.Focused() {
		switch msg.String() {
		case "enter":
			m.search.Blur()
			return m, nil
		case "esc":
			m.search.Blur()
			m.search.SetValue("")
			m.page = 1
			m.refreshTracks()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.page = 1
		m.refreshTracks()
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.tab):
		m.switchTab((m.tab + 1) % 3)
		return m, nil
	case key.Matches(msg, m.keys.prevTab):
		m.switchTab((m.tab + 2) % 3)
		return m, nil
	case key.Matches(msg, m.keys.search):
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.clear):
		m.search.SetValue("")
		m.page = 1
		m.refreshTracks()
		return m, nil
	case key.Matches(msg, m.keys.more):
		if _, remaining := m.visibleTracks(); remaining > 0 {
			m.page++
			m.refreshTracks()
		}
		return m, nil
	case key.Matches(msg, m.keys.restart):
		return m, m.reset()
	case key.Matches(msg, m.keys.logout):
		return m, m.logout()
	}

	var cmd tea.Cmd
	m.tracks, cmd = m.tracks.Update(msg)
	return m, cmd
}

// sync copies a machine snapshot into the model, rebuilding the track list on a new result.
func (m *Model) sync(s rooms.State) {
	changed := s.Result != m.state.Result
	m.state = s
	if changed {
		m.refreshTracks()
	}
}

// endSession drops everything tied to the logged out session so the next login starts idle.
func (m *Model) endSession() {
	m.loggedIn, m.profile = false, nil
	m.machine.Restart()
	m.tab, m.page, m.notice = models.OnlyA, 1, ""
	m.search.SetValue("")
	m.search.Blur()
	m.sync(m.machine.State())
}

func (m *Model) switchTab(set models.Set) {
	m.tab, m.page = set, 1
	m.refreshTracks()
}

// visibleTracks returns the current page of the active list after filtering and how many tracks remain.
func (m *Model) visibleTracks() ([]models.Track, int) {
	if m.state.Result == nil {
		return nil, 0
	}
	found := formatter.Search(m.state.Result.Tracks(m.tab), strings.TrimSpace(m.search.Value()))
	return formatter.Page(found, m.page)
}

func (m *Model) refreshTracks() {
	tracks, _ := m.visibleTracks()
	m.tracks.SetItems(trackItems(tracks))
	if m.state.Result != nil {
		m.tracks.Title = m.state.Result.Label(m.tab)
	}
}

func (m *Model) start() tea.Cmd {
	cmds := []tea.Cmd{m.requestCode()}
	if m.opts.Profile != nil {
		cmds = append(cmds, m.fetchProfile())
	}
	return tea.Batch(cmds...)
}

func (m *Model) waitForState() tea.Cmd {
	updates := m.machine.Updates()
	return func() tea.Msg {
		return stateChangedMsg(<-updates)
	}
}

func (m *Model) waitForHome() tea.Cmd {
	if m.opts.Homes == nil {
		return nil
	}
	homes := m.opts.Homes
	return func() tea.Msg {
		<-homes
		return loggedOutMsg(true)
	}
}

func (m *Model) login() tea.Cmd {
	return func() tea.Msg {
		return loggedInMsg(m.opts.Login(m.ctx))
	}
}

func (m *Model) logout() tea.Cmd {
	return func() tea.Msg {
		if m.opts.Logout != nil {
			m.opts.Logout()
		}
		return loggedOutMsg(false)
	}
}

func (m *Model) fetchProfile() tea.Cmd {
	return func() tea.Msg {
		profile, err := m.opts.Profile(m.ctx)
		return profileFetchedMsg(profile, err)
	}
}

func (m *Model) requestCode() tea.Cmd {
	return func() tea.Msg {
		code, err := m.machine.RequestCode(m.ctx)
		return codeReadyMsg(code, err)
	}
}

func (m *Model) submit() tea.Cmd {
	return func() tea.Msg {
		c, err := m.machine.Submit(m.ctx)
		return comparedMsg(c, err)
	}
}

func (m *Model) check() tea.Cmd {
	return func() tea.Msg {
		check, err := m.machine.Check(m.ctx)
		return checkedMsg(check, err)
	}
}

func (m *Model) reset() tea.Cmd {
	return func() tea.Msg {
		err := m.machine.Reset(m.ctx)
		return codeReadyMsg(m.machine.State().OwnCode, err)
	}
}

func (m *Model) copyCode(code models.RoomCode) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg(m.opts.Copy(code.String()))
	}
}

func (m *Model) renderLanding() string {
	title := styles.title.Render("VibeSync")
	body := "Compare your liked songs with a friend.\n"

	var status string
	switch {
	case m.busy:
		status = fmt.Sprintf("\n%s Waiting for the browser login...", m.spinner.View())
	case m.err != nil:
		status = "\n" + styles.err.Render(errorText(m.err))
	}

	helpKeys := []key.Binding{m.keys.quit}
	if m.opts.Login != nil {
		helpKeys = []key.Binding{m.keys.login, m.keys.quit}
	} else {
		body += styles.help.Render("\nRun `vibesync auth login` to sign in.")
	}
	return fmt.Sprintf("%s\n%s%s\n\n%s", title, body, status, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderRoom() string {
	title := styles.title.Render("VibeSync")
	if m.profile != nil && m.profile.DisplayName != "" {
		title = styles.title.Render(fmt.Sprintf("VibeSync • %s", m.profile.DisplayName))
	}

	own := codePlaceholder
	if m.state.OwnCode != "" {
		own = m.state.OwnCode.String()
	}
	share := fmt.Sprintf("Your room code\n%s", styles.code.Render(own))
	if m.state.ExpiresInMinutes > 0 {
		share += styles.help.Render(fmt.Sprintf("\nexpires in %d minutes", m.state.ExpiresInMinutes))
	}

	input := m.state.Input.String() + strings.Repeat("_", models.RoomCodeLength-len(m.state.Input))
	join := fmt.Sprintf("Friend's code\n%s", styles.code.Render(input))

	var status string
	switch {
	case m.state.Reason != "":
		status = "\n" + styles.err.Render(m.state.Reason)
	case m.err != nil:
		status = "\n" + styles.err.Render(errorText(m.err))
	}
	if m.notice != "" {
		status += "\n" + m.notice
	}

	helpKeys := []key.Binding{m.keys.submit, m.keys.erase, m.keys.check, m.keys.copy, m.keys.logout, m.keys.exit}
	return fmt.Sprintf("%s\n%s\n\n%s\n%s\n\n%s", title, share, join, status, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderComparing() string {
	title := styles.title.Render("VibeSync")
	return fmt.Sprintf("%s\n%s Comparing libraries with %s...\n\n%s",
		title, m.spinner.View(), m.state.Input, m.help.ShortHelpView([]key.Binding{m.keys.exit}))
}

func (m *Model) renderResult() string {
	c := m.state.Result
	if c == nil {
		return styles.err.Render("No result available\n\nPress r to compare again, q to quit")
	}

	vibe := formatter.VibeFor(c.Stats.CompatibilityScore)
	card := styles.card.Render(fmt.Sprintf("%s %s\n%s%% compatible\n%s & %s",
		vibe.Emoji, styles.ok.Render(vibe.Label), formatter.Score(c.Stats.CompatibilityScore),
		nameOr(c.UserA.DisplayName, "You"), nameOr(c.UserB.DisplayName, "them")))

	counts := map[models.Set]int{
		models.OnlyA:  c.Stats.OnlyACount,
		models.OnlyB:  c.Stats.OnlyBCount,
		models.Common: c.Stats.CommonCount,
	}
	tabs := make([]string, 0, len(counts))
	for _, set := range []models.Set{models.OnlyA, models.OnlyB, models.Common} {
		label := fmt.Sprintf("%s (%d)", c.Label(set), counts[set])
		if set == m.tab {
			label = styles.sets[set].Underline(true).Render(label)
		} else {
			label = styles.help.Render(label)
		}
		tabs = append(tabs, label)
	}

	var search string
	if m.search.Focused() || m.search.Value() != "" {
		search = m.search.View() + "\n"
	}

	var more string
	if _, remaining := m.visibleTracks(); remaining > 0 {
		more = styles.help.Render(fmt.Sprintf("\n%d more tracks", remaining))
	}

	helpKeys := []key.Binding{m.keys.tab, m.keys.search, m.keys.more, m.keys.restart, m.keys.logout, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s\n%s%s%s\n\n%s",
		card, strings.Join(tabs, "   "), search, m.tracks.View(), more, m.help.ShortHelpView(helpKeys))
}

func errorText(err error) string {
	if errors.Is(err, shared.ErrSessionExpired) {
		return "Your session expired. Please log in again."
	}
	return shared.Reason(err)
}

func hostName(host string) string {
	return nameOr(host, "Your friend")
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
