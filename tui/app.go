package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"pasajes-cli/booking"
	"pasajes-cli/logger"
	"pasajes-cli/seatmap"
	"pasajes-cli/service"
)

type appState int

const (
	stateLoadingSeatMap appState = iota
	stateShowSeatMap
	stateInvalidSelection
	stateConfirmed
	stateError
)

// Options wires the seat screen to its collaborators.
type Options struct {
	Engine *seatmap.Engine
	Loader *seatmap.Loader
	Logger *logger.Logger

	// FocusRefreshDelay is how long to wait after the terminal regains focus
	// before refetching, giving the backend time to settle a purchase made
	// elsewhere. It is a known staleness window.
	FocusRefreshDelay time.Duration
	// PollInterval re-fetches periodically; zero disables polling.
	PollInterval time.Duration

	SaveHandoff func(booking.Request) (string, error)
}

type appModel struct {
	engine *seatmap.Engine
	loader *seatmap.Loader
	log    *logger.Logger

	focusDelay   time.Duration
	pollInterval time.Duration
	saveHandoff  func(booking.Request) (string, error)

	state appState
	err   error

	width  int
	height int

	view            seatmap.View
	cursor          int // seat number, zero when the floor is empty
	showSeatNumbers bool

	notice   seatmap.Notice
	noticeID int

	issues  []booking.SeatIssue
	request booking.Request
	saved   string

	refresh *refreshTracker
	spinner spinner.Model
}

// refreshTracker is shared by every copy of the model so a superseded or
// abandoned fetch can be cancelled.
type refreshTracker struct {
	cancel   context.CancelFunc
	inFlight bool
}

func (r *refreshTracker) stop() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.inFlight = false
}

type errMsg struct {
	err error
}

type seatMapMsg struct {
	token seatmap.Token
	snap  seatmap.Snapshot
}

type focusRefreshMsg struct{}

type pollMsg struct{}

type noticeExpiredMsg struct {
	id int
}

type handoffMsg struct {
	request booking.Request
	path    string
	err     error
}

func New(opts Options) tea.Model {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	m := appModel{
		engine:          opts.Engine,
		loader:          opts.Loader,
		log:             log,
		focusDelay:      opts.FocusRefreshDelay,
		pollInterval:    opts.PollInterval,
		saveHandoff:     opts.SaveHandoff,
		state:           stateLoadingSeatMap,
		showSeatNumbers: true,
		refresh:         &refreshTracker{},
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	m.spinner = sp

	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), m.spinner.Tick, m.pollCmd())
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.FocusMsg:
		return m, tea.Tick(m.focusDelay, func(time.Time) tea.Msg {
			return focusRefreshMsg{}
		})

	case focusRefreshMsg:
		if m.state == stateShowSeatMap || m.state == stateLoadingSeatMap {
			return m, m.refreshCmd()
		}
		return m, nil

	case pollMsg:
		var cmd tea.Cmd
		if m.state == stateShowSeatMap && !m.refresh.inFlight {
			cmd = m.refreshCmd()
		}
		return m, tea.Batch(cmd, m.pollCmd())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.state == stateLoadingSeatMap || m.refresh.inFlight {
			return m, cmd
		}
		return m, nil

	case errMsg:
		m.err = msg.err
		m.state = stateError
		return m, nil

	case seatMapMsg:
		out := m.engine.Apply(msg.token, msg.snap)
		if !out.Applied {
			return m, nil
		}
		m.refresh.inFlight = false
		if service.IsUnauthenticated(msg.snap.Err()) {
			return m, errCmd(msg.snap.Err())
		}
		m.view = out.View
		m.keepCursor()
		if m.state == stateLoadingSeatMap || m.state == stateError {
			m.state = stateShowSeatMap
		}
		if len(out.Notices) > 0 {
			return m, m.showNotice(mergeNotices(out.Notices))
		}
		return m, nil

	case noticeExpiredMsg:
		if msg.id == m.noticeID {
			m.notice = seatmap.Notice{}
		}
		return m, nil

	case handoffMsg:
		if msg.err != nil {
			return m, errCmd(fmt.Errorf("save booking: %w", msg.err))
		}
		m.request = msg.request
		m.saved = msg.path
		m.engine.ClearSelection()
		m.view = m.engine.Recompute()
		m.log.LogHandoff(context.Background(), msg.request.ID.String(), msg.request.BusID, len(msg.request.Seats), msg.request.Total.StringFixed(2))
		m.state = stateConfirmed
		return m, nil
	}
	return m, nil
}

func (m appModel) View() string {
	header := m.headerView()
	switch m.state {
	case stateLoadingSeatMap:
		return header + "\n\n" + m.loadingView()
	case stateShowSeatMap:
		return header + "\n\n" + m.renderSeatMap() + m.noticeView()
	case stateInvalidSelection:
		return header + "\n\n" + m.invalidSelectionView()
	case stateConfirmed:
		return header + "\n\n" + m.confirmedView()
	case stateError:
		return header + "\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(errorText(m.err)) + "\n\n" + hint("Press r to retry, esc to go back or ctrl+c to quit.")
	default:
		return header
	}
}

func (m appModel) headerView() string {
	title := lipgloss.NewStyle().Bold(true).Render("Pasajes • Seat Selection")
	ctx := m.engine.Booking()
	sub := []string{fmt.Sprintf("Bus: %s", ctx.BusID)}
	if ctx.RouteID != "" {
		sub = append(sub, fmt.Sprintf("Route: %s", ctx.RouteID))
	}
	if ctx.WorksheetID != "" {
		sub = append(sub, fmt.Sprintf("Worksheet: %s", ctx.WorksheetID))
	}
	if floors := m.engine.Layout().Floors(); len(floors) > 1 {
		sub = append(sub, fmt.Sprintf("Floor: %d of %d", m.view.Floor, len(floors)))
	}
	if m.refresh.inFlight && m.state == stateShowSeatMap {
		sub = append(sub, m.spinner.View()+" refreshing")
	}
	meta := lipgloss.NewStyle().Faint(true).Render(strings.Join(sub, " • "))

	hints := "ctrl+c quit • esc back"
	switch m.state {
	case stateShowSeatMap:
		hints = "ctrl+c quit • esc back • arrows/hjkl move • space toggle • f floor • r refresh • n numbers • enter continue"
	case stateInvalidSelection, stateConfirmed:
		hints = "ctrl+c quit • esc back to seats"
	}
	return title + "\n" + meta + "\n" + hint(hints)
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m.quit()
	case "esc":
		return m.goBack()
	case "r":
		if m.state == stateShowSeatMap || m.state == stateError {
			if m.state == stateError {
				m.state = stateLoadingSeatMap
			}
			return m, tea.Batch(m.refreshCmd(), m.spinner.Tick)
		}
		return m, nil
	}

	if m.state != stateShowSeatMap {
		return m, nil
	}

	switch msg.String() {
	case "left", "h":
		m.moveCursor(0, -1)
	case "right", "l":
		m.moveCursor(0, 1)
	case "up", "k":
		m.moveCursor(-1, 0)
	case "down", "j":
		m.moveCursor(1, 0)
	case " ", "x":
		seat, ok := m.cursorSeat()
		if !ok {
			return m, nil
		}
		notice, ok := m.engine.Toggle(seat.SeatNumber)
		if !ok {
			return m, nil
		}
		m.view = m.engine.Recompute()
		return m, m.showNotice(notice)
	case "f":
		m.view = m.engine.NextFloor()
		m.cursor = 0
		m.keepCursor()
	case "n":
		m.showSeatNumbers = !m.showSeatNumbers
	case "enter":
		return m.continueToPayment()
	}
	return m, nil
}

// continueToPayment runs the handoff gate; a failing selection opens a
// blocking list of the offending seats.
func (m appModel) continueToPayment() (tea.Model, tea.Cmd) {
	req, err := booking.FromEngine(m.engine)
	if err != nil {
		var verr *booking.ValidationError
		if errors.As(err, &verr) {
			m.issues = verr.Issues
			m.state = stateInvalidSelection
			return m, nil
		}
		return m, errCmd(err)
	}
	save := m.saveHandoff
	return m, func() tea.Msg {
		if save == nil {
			return handoffMsg{request: req}
		}
		path, err := save(req)
		return handoffMsg{request: req, path: path, err: err}
	}
}

func (m appModel) goBack() (tea.Model, tea.Cmd) {
	switch m.state {
	case stateInvalidSelection, stateConfirmed:
		m.issues = nil
		m.state = stateShowSeatMap
		return m, nil
	case stateError:
		if m.engine.Loaded() {
			m.state = stateShowSeatMap
			return m, nil
		}
	}
	return m.quit()
}

func (m appModel) quit() (tea.Model, tea.Cmd) {
	m.refresh.stop()
	m.engine.Close()
	return m, tea.Quit
}

// refreshCmd starts a new refresh generation, cancelling the one still in
// flight. Results of the cancelled fetch are discarded by the engine.
func (m appModel) refreshCmd() tea.Cmd {
	m.refresh.stop()
	ctx, cancel := context.WithCancel(context.Background())
	m.refresh.cancel = cancel
	m.refresh.inFlight = true

	token := m.engine.BeginRefresh()
	bc := m.engine.Booking()
	loader := m.loader
	return func() tea.Msg {
		return seatMapMsg{token: token, snap: loader.Load(ctx, bc.BusID, bc.RouteID)}
	}
}

func (m appModel) pollCmd() tea.Cmd {
	if m.pollInterval <= 0 {
		return nil
	}
	return tea.Tick(m.pollInterval, func(time.Time) tea.Msg {
		return pollMsg{}
	})
}

func (m *appModel) showNotice(notice seatmap.Notice) tea.Cmd {
	m.noticeID++
	m.notice = notice
	id := m.noticeID
	return tea.Tick(notice.Duration, func(time.Time) tea.Msg {
		return noticeExpiredMsg{id: id}
	})
}

func mergeNotices(notices []seatmap.Notice) seatmap.Notice {
	merged := notices[0]
	for _, n := range notices[1:] {
		merged.Text += " • " + n.Text
		if n.Kind > merged.Kind {
			merged.Kind = n.Kind
		}
		if n.Duration > merged.Duration {
			merged.Duration = n.Duration
		}
	}
	return merged
}

func (m appModel) noticeView() string {
	if m.notice.Text == "" {
		return ""
	}
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6")).Padding(0, 1)
	if m.notice.Kind == seatmap.NoticeWarning {
		style = style.Background(lipgloss.Color("214"))
	}
	return "\n\n" + style.Render(m.notice.Text)
}

func (m appModel) loadingView() string {
	return fmt.Sprintf("%s Loading seat map\n\n%s", m.spinner.View(), hint("Fetching seats and fares..."))
}

func (m appModel) invalidSelectionView() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1")).Render("Cannot continue to payment")
	lines := []string{title, ""}
	for _, issue := range m.issues {
		lines = append(lines, "• "+issue.String())
	}
	lines = append(lines, "", hint("Fix the selection and press enter again."))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("1")).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))
}

func (m appModel) confirmedView() string {
	seats := make([]string, len(m.request.Seats))
	for i, seat := range m.request.Seats {
		seats[i] = fmt.Sprintf("%d (%s)", seat.SeatNumber, seat.SeatType)
	}
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")).Render("Booking ready for payment"),
		"",
		fmt.Sprintf("Request: %s", m.request.ID),
		fmt.Sprintf("Seats:   %s", strings.Join(seats, ", ")),
		fmt.Sprintf("Total:   %s", formatPrice(m.request.Total)),
	}
	if m.saved != "" {
		lines = append(lines, hint("Saved to "+m.saved))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("2")).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))
}

func hint(text string) string {
	return lipgloss.NewStyle().Faint(true).Render(text)
}

func errCmd(err error) tea.Cmd {
	return func() tea.Msg {
		return errMsg{err: err}
	}
}

func errorText(err error) string {
	switch {
	case err == nil:
		return "Unknown error."
	case service.IsUnauthenticated(err):
		return "Your session expired. Log in again with `pasajes login`."
	default:
		return err.Error()
	}
}
