// Package tui is the terminal surface for a cancellation chat: transcript,
// typing indicator, challenge countdown and light, and the pong minigame.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/BTreeMap/CancelPipe/internal/challenge"
	"github.com/BTreeMap/CancelPipe/internal/flow"
	"github.com/BTreeMap/CancelPipe/internal/models"
	"github.com/BTreeMap/CancelPipe/internal/pong"
)

const (
	pollInterval  = 50 * time.Millisecond
	frameInterval = 16 * time.Millisecond
	headerLines   = 2
	footerLines   = 4
)

type (
	pollMsg  time.Time
	frameMsg time.Time
	// replyMsg reports that a free-text generation has finished.
	replyMsg struct{}
)

// App is the bubbletea model. Exactly one of the two flows is set.
type App struct {
	scripted *flow.CancellationFlow
	freeText *flow.FreeTextFlow
	ctx      context.Context
	keys     KeyMap

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	game      *pong.Game
	gameOpts  []pong.Option
	lastFrame time.Time

	// pasted is set when text was pasted while challenge pasteID was active.
	pasted  bool
	pasteID string
	waiting bool

	snap      flow.Snapshot
	messages  []models.Message
	composing bool
	// card is the hard-mode account on file, rendered once.
	card string

	width  int
	height int
}

// Option configures an App.
type Option func(*App)

// WithContext sets the context passed to flow submissions.
func WithContext(ctx context.Context) Option {
	return func(a *App) { a.ctx = ctx }
}

// WithGameOptions configures every pong match the App starts.
func WithGameOptions(opts ...pong.Option) Option {
	return func(a *App) { a.gameOpts = append(a.gameOpts, opts...) }
}

// NewScripted creates an App driving the scripted flow.
func NewScripted(f *flow.CancellationFlow, opts ...Option) App {
	a := newApp(opts)
	a.scripted = f
	if snap := f.Snapshot(); snap.HardMode && snap.Scenario != nil {
		a.card = CardStyle.Render(f.Script().AccountCard(*snap.Scenario))
	}
	return a
}

// NewFreeText creates an App driving the free-text flow.
func NewFreeText(f *flow.FreeTextFlow, opts ...Option) App {
	a := newApp(opts)
	a.freeText = f
	return a
}

func newApp(opts []Option) App {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.CharLimit = 280
	ti.Width = 60
	ti.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(AgentStyle))

	a := App{
		ctx:      context.Background(),
		keys:     Keys,
		input:    ti,
		viewport: viewport.New(80, 20),
		spinner:  sp,
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

func (a App) Init() tea.Cmd {
	if a.scripted != nil {
		a.scripted.Start()
	} else {
		a.freeText.Start()
	}
	return tea.Batch(textinput.Blink, a.spinner.Tick, poll())
}

func poll() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return pollMsg(t) })
}

func frame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.layout()
		return a, nil

	case pollMsg:
		a.refresh()
		if a.game == nil && a.scripted != nil && a.snap.State == models.StatePong {
			a.startGame(time.Time(msg))
			a.layout()
			return a, tea.Batch(poll(), frame())
		}
		return a, poll()

	case frameMsg:
		return a, a.stepGame(time.Time(msg))

	case replyMsg:
		a.waiting = false
		a.refresh()
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.Quit) {
		return a, tea.Quit
	}

	if a.game != nil {
		switch {
		case key.Matches(msg, a.keys.PaddleUp):
			a.game.MovePlayer(-pong.PlayerMoveStep)
		case key.Matches(msg, a.keys.PaddleDown):
			a.game.MovePlayer(pong.PlayerMoveStep)
		}
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.ScrollUp, a.keys.ScrollDown):
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd
	case key.Matches(msg, a.keys.Send):
		return a, a.submit()
	}

	if msg.Paste {
		a.notePaste()
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// notePaste ties a paste to the challenge active at this moment. Pastes with
// no live challenge cannot affect one armed later.
func (a *App) notePaste() {
	if a.scripted == nil {
		return
	}
	st := a.scripted.Snapshot().Challenge
	if !st.Active {
		return
	}
	a.pasted, a.pasteID = true, st.InstanceID
	slog.Debug("App.notePaste: paste recorded", "instanceID", st.InstanceID)
}

func (a *App) submit() tea.Cmd {
	text := strings.TrimSpace(a.input.Value())
	if text == "" || a.waiting {
		return nil
	}
	in := flow.Input{Text: text, Pasted: a.pasted, ChallengeID: a.pasteID}
	a.input.Reset()
	a.pasted, a.pasteID = false, ""

	if a.scripted != nil {
		a.scripted.Submit(a.ctx, in)
		a.refresh()
		return nil
	}

	a.waiting = true
	a.refresh()
	f, ctx := a.freeText, a.ctx
	return func() tea.Msg {
		f.Submit(ctx, text)
		return replyMsg{}
	}
}

func (a *App) startGame(now time.Time) {
	opts := []pong.Option{
		pong.OnPlayerWin(a.scripted.PlayerWon),
		pong.OnAgentWin(a.scripted.AgentWon),
	}
	a.game = pong.NewGame(append(opts, a.gameOpts...)...)
	a.lastFrame = now
	slog.Info("App.startGame: minigame on screen")
}

func (a *App) stepGame(now time.Time) tea.Cmd {
	if a.game == nil {
		return nil
	}
	elapsed := float64(now.Sub(a.lastFrame)) / float64(time.Millisecond)
	a.lastFrame = now
	if outcome := a.game.Step(pong.Delta(elapsed)); outcome != pong.Undecided {
		a.game = nil
		a.refresh()
		a.layout()
		return nil
	}
	return frame()
}

// refresh pulls the latest transcript and status from the flow.
func (a *App) refresh() {
	if a.scripted != nil {
		a.snap = a.scripted.Snapshot()
		a.composing = a.snap.Composing
		a.setMessages(a.snap.Messages)
		return
	}
	a.composing = a.waiting || a.freeText.Composing()
	a.setMessages(a.freeText.Transcript().Messages())
}

func (a *App) setMessages(msgs []models.Message) {
	if len(msgs) == len(a.messages) {
		return
	}
	a.messages = msgs
	a.viewport.SetContent(renderTranscript(msgs, a.viewport.Width))
	a.viewport.GotoBottom()
}

func (a *App) layout() {
	if a.width == 0 {
		return
	}
	a.viewport.Width = a.width
	a.viewport.Height = max(a.height-headerLines-footerLines-a.cardHeight(), 3)
	if a.game != nil {
		a.viewport.Height = max(a.viewport.Height-CourtRows-3, 3)
	}
	a.input.Width = min(max(a.width-4, 10), 100)
	a.viewport.SetContent(renderTranscript(a.messages, a.viewport.Width))
	a.viewport.GotoBottom()
}

func (a *App) cardHeight() int {
	if a.card == "" {
		return 0
	}
	return lipgloss.Height(a.card)
}

func renderTranscript(msgs []models.Message, width int) string {
	wrap := TextStyle
	if width > 2 {
		wrap = TextStyle.Width(width - 2)
	}
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		label := UserStyle.Render(m.Speaker() + ":")
		if m.Role == models.RoleAgent {
			label = AgentStyle.Render(m.Speaker() + ":")
		}
		lines = append(lines, wrap.Render(label+" "+m.Text))
	}
	return strings.Join(lines, "\n")
}

func (a App) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("CancelPipe") + HintStyle.Render("  service cancellation"))
	b.WriteString("\n")
	if a.card != "" {
		b.WriteString(a.card + "\n")
	}
	b.WriteString("\n")
	b.WriteString(a.viewport.View())
	b.WriteString("\n")

	if a.composing {
		b.WriteString(a.spinner.View() + HintStyle.Render(" Agent is typing..."))
	}
	if line := challengeLine(a.snap.Challenge); line != "" {
		b.WriteString("  " + line)
	}
	b.WriteString("\n")

	if a.game != nil {
		s := a.game.State()
		b.WriteString(CourtStyle.Render(strings.Join(renderCourt(s, CourtCols, CourtRows), "\n")))
		b.WriteString("\n" + ScoreStyle.Render(scoreLine(s)) + "\n")
		b.WriteString(helpLine(a.keys.GameHelp()))
		return b.String()
	}

	b.WriteString(a.input.View())
	b.WriteString("\n")
	b.WriteString(helpLine(a.keys.ShortHelp()))
	return b.String()
}

func challengeLine(st challenge.Status) string {
	if !st.Active {
		if st.Pending {
			return HintStyle.Render("resetting challenge...")
		}
		return ""
	}
	var parts []string
	switch st.Light {
	case challenge.LightGreen:
		parts = append(parts, GreenStyle.Render("● GREEN: send now"))
	case challenge.LightRed:
		parts = append(parts, RedStyle.Render("● RED: wait"))
	}
	if st.Timed {
		parts = append(parts, CountdownStyle.Render(fmt.Sprintf("%.1fs left", st.Remaining.Seconds())))
	}
	return strings.Join(parts, "  ")
}

func helpLine(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, k := range bindings {
		h := k.Help()
		parts = append(parts, HelpKeyStyle.Render(h.Key)+" "+HelpDescStyle.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}
