// Package pong simulates the reflex minigame that gates submission: the
// player's paddle on the left against an agent paddle that tracks the ball.
// A Game is advanced by its owner's frame loop and is not safe for
// concurrent use.
package pong

import (
	"log/slog"
	"math"
	"math/rand/v2"
)

// Court geometry, in court units.
const (
	CourtWidth   = 420.0
	CourtHeight  = 240.0
	PaddleWidth  = 10.0
	PaddleHeight = 60.0
	PlayerX      = 20.0
	AgentX       = CourtWidth - PlayerX - PaddleWidth
	BallSize     = 12.0
)

// Physics tuning.
const (
	ServeSpeed          = 3.6
	BounceSpeedUp       = 1.03
	AgentFollowSpeed    = 2.8 * 4
	AgentDeadZone       = 6.0
	PlayerSpin          = 1.6
	AgentSpin           = 1.4
	MaxVerticalSpeed    = 4.5
	MinServeVertical    = 0.6
	PlayerMoveStep      = 20.0
	DefaultWinningScore = 3

	// FrameInterval is the nominal frame length that a delta of 1 stands for.
	FrameInterval = 16.67
	minDelta      = 0.5
	maxDelta      = 1.5
)

// Outcome of a finished match.
type Outcome int

const (
	Undecided Outcome = iota
	PlayerWon
	AgentWon
)

func (o Outcome) String() string {
	switch o {
	case PlayerWon:
		return "player"
	case AgentWon:
		return "agent"
	}
	return "undecided"
}

// State is a copy of the simulation for rendering.
type State struct {
	BallX, BallY   float64
	BallVX, BallVY float64
	PlayerY        float64
	AgentY         float64
	PlayerScore    int
	AgentScore     int
	WinningScore   int
	Outcome        Outcome
}

// Playing reports whether the match is still running.
func (s State) Playing() bool { return s.Outcome == Undecided }

// Game is one match.
type Game struct {
	s           State
	rng         *rand.Rand
	onPlayerWin func()
	onAgentWin  func()
}

// Option configures a Game.
type Option func(*Game)

// WithRand sets the random source for serves.
func WithRand(r *rand.Rand) Option {
	return func(g *Game) { g.rng = r }
}

// WithWinningScore sets the points needed to win. Values below one are ignored.
func WithWinningScore(n int) Option {
	return func(g *Game) {
		if n > 0 {
			g.s.WinningScore = n
		}
	}
}

// OnPlayerWin registers the callback for a player victory.
func OnPlayerWin(fn func()) Option {
	return func(g *Game) { g.onPlayerWin = fn }
}

// OnAgentWin registers the callback for an agent victory.
func OnAgentWin(fn func()) Option {
	return func(g *Game) { g.onAgentWin = fn }
}

// NewGame centers both paddles and serves in a random direction.
func NewGame(opts ...Option) *Game {
	g := &Game{s: State{WinningScore: DefaultWinningScore}}
	for _, opt := range opts {
		opt(g)
	}
	g.s.PlayerY = CourtHeight/2 - PaddleHeight/2
	g.s.AgentY = g.s.PlayerY
	dir := 1.0
	if g.float() > 0.5 {
		dir = -1
	}
	g.serve(dir)
	return g
}

// State returns a copy of the current simulation.
func (g *Game) State() State { return g.s }

// Delta converts elapsed milliseconds into a frame delta.
func Delta(elapsedMS float64) float64 {
	return clamp(elapsedMS/FrameInterval, minDelta, maxDelta)
}

// MovePlayer shifts the player's paddle by amount, clamped to the court.
func (g *Game) MovePlayer(amount float64) {
	if !g.s.Playing() {
		return
	}
	g.s.PlayerY = clamp(g.s.PlayerY+amount, 0, CourtHeight-PaddleHeight)
}

// Step advances the simulation by delta frames (clamped to [0.5, 1.5]) and
// returns the outcome. The win callback runs once, on the step that decides
// the match; later steps do nothing.
func (g *Game) Step(delta float64) Outcome {
	s := &g.s
	if !s.Playing() {
		return s.Outcome
	}
	delta = clamp(delta, minDelta, maxDelta)

	s.BallX += s.BallVX * delta
	s.BallY += s.BallVY * delta

	if s.BallY <= 0 && s.BallVY < 0 {
		s.BallY = 0
		s.BallVY = -s.BallVY
	} else if s.BallY >= CourtHeight-BallSize && s.BallVY > 0 {
		s.BallY = CourtHeight - BallSize
		s.BallVY = -s.BallVY
	}

	g.followBall(delta)
	g.collide()
	return g.score()
}

func (g *Game) followBall(delta float64) {
	s := &g.s
	paddle := s.AgentY + PaddleHeight/2
	ball := s.BallY + BallSize/2
	switch {
	case paddle+AgentDeadZone < ball:
		s.AgentY = clamp(s.AgentY+AgentFollowSpeed*delta, 0, CourtHeight-PaddleHeight)
	case paddle-AgentDeadZone > ball:
		s.AgentY = clamp(s.AgentY-AgentFollowSpeed*delta, 0, CourtHeight-PaddleHeight)
	}
}

func (g *Game) collide() {
	s := &g.s
	if s.BallVX < 0 && overlaps(s.BallX, s.BallY, PlayerX, s.PlayerY) {
		s.BallX = PlayerX + PaddleWidth
		s.BallVX = math.Abs(s.BallVX) * BounceSpeedUp
		s.BallVY = clamp(s.BallVY+spin(s.BallY, s.PlayerY)*PlayerSpin, -MaxVerticalSpeed, MaxVerticalSpeed)
	}
	if s.BallVX > 0 && overlaps(s.BallX, s.BallY, AgentX, s.AgentY) {
		s.BallX = AgentX - BallSize
		s.BallVX = -math.Abs(s.BallVX) * BounceSpeedUp
		s.BallVY = clamp(s.BallVY+spin(s.BallY, s.AgentY)*AgentSpin, -MaxVerticalSpeed, MaxVerticalSpeed)
	}
}

func (g *Game) score() Outcome {
	s := &g.s
	switch {
	case s.BallX+BallSize < 0:
		s.AgentScore++
		if s.AgentScore >= s.WinningScore {
			return g.finish(AgentWon)
		}
		g.serve(1)
	case s.BallX > CourtWidth:
		s.PlayerScore++
		if s.PlayerScore >= s.WinningScore {
			return g.finish(PlayerWon)
		}
		g.serve(-1)
	}
	return Undecided
}

func (g *Game) finish(o Outcome) Outcome {
	g.s.Outcome = o
	slog.Info("Game.finish: match over", "winner", o, "player", g.s.PlayerScore, "agent", g.s.AgentScore)
	fn := g.onAgentWin
	if o == PlayerWon {
		fn = g.onPlayerWin
	}
	if fn != nil {
		fn()
	}
	return o
}

// serve recenters the ball and launches it toward dir (+1 right, -1 left)
// within 30 degrees of horizontal.
func (g *Game) serve(dir float64) {
	s := &g.s
	s.BallX = CourtWidth/2 - BallSize/2
	s.BallY = CourtHeight/2 - BallSize/2
	angle := g.float()*math.Pi/3 - math.Pi/6
	s.BallVX = ServeSpeed * math.Cos(angle) * dir
	s.BallVY = ServeSpeed * math.Sin(angle)
	if s.BallVY == 0 {
		s.BallVY = MinServeVertical
		if g.float() > 0.5 {
			s.BallVY = -MinServeVertical
		}
	}
}

func (g *Game) float() float64 {
	if g.rng != nil {
		return g.rng.Float64()
	}
	return rand.Float64()
}

// overlaps reports whether the ball touches a paddle whose top-left corner is
// at (px, py).
func overlaps(bx, by, px, py float64) bool {
	return bx <= px+PaddleWidth && bx+BallSize >= px &&
		by+BallSize >= py && by <= py+PaddleHeight
}

// spin is the ball's offset from the paddle center, in half-paddle units.
func spin(ballY, paddleY float64) float64 {
	return (ballY + BallSize/2 - (paddleY + PaddleHeight/2)) / (PaddleHeight / 2)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
