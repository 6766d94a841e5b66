package pong

import (
	"math"
	"math/rand/v2"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func newTestGame(opts ...Option) *Game {
	return NewGame(append([]Option{WithRand(rand.New(rand.NewPCG(1, 2)))}, opts...)...)
}

func TestNewGameServes(t *testing.T) {
	for seed := uint64(0); seed < 50; seed++ {
		g := NewGame(WithRand(rand.New(rand.NewPCG(seed, seed+1))))
		s := g.State()
		if !near(s.BallX, 204) || !near(s.BallY, 114) {
			t.Fatalf("seed %d: ball at (%v, %v), want centered", seed, s.BallX, s.BallY)
		}
		if !near(s.PlayerY, 90) || !near(s.AgentY, 90) {
			t.Fatalf("seed %d: paddles at %v/%v, want 90", seed, s.PlayerY, s.AgentY)
		}
		if speed := math.Hypot(s.BallVX, s.BallVY); !near(speed, ServeSpeed) {
			t.Errorf("seed %d: serve speed = %v", seed, speed)
		}
		if angle := math.Atan2(math.Abs(s.BallVY), math.Abs(s.BallVX)); angle > math.Pi/6+eps {
			t.Errorf("seed %d: serve angle = %v rad", seed, angle)
		}
		if !s.Playing() || s.WinningScore != DefaultWinningScore {
			t.Errorf("seed %d: state = %+v", seed, s)
		}
	}
}

func TestMovePlayerClamps(t *testing.T) {
	g := newTestGame()
	g.MovePlayer(-PlayerMoveStep)
	if got := g.State().PlayerY; !near(got, 70) {
		t.Errorf("PlayerY = %v, want 70", got)
	}
	g.MovePlayer(-1000)
	if got := g.State().PlayerY; got != 0 {
		t.Errorf("PlayerY = %v, want 0", got)
	}
	g.MovePlayer(1000)
	if got := g.State().PlayerY; got != CourtHeight-PaddleHeight {
		t.Errorf("PlayerY = %v, want %v", got, CourtHeight-PaddleHeight)
	}
}

func TestDelta(t *testing.T) {
	tests := []struct {
		ms, want float64
	}{
		{FrameInterval, 1},
		{1, 0.5},
		{100, 1.5},
	}
	for _, tt := range tests {
		if got := Delta(tt.ms); !near(got, tt.want) {
			t.Errorf("Delta(%v) = %v, want %v", tt.ms, got, tt.want)
		}
	}
}

func TestWallBounce(t *testing.T) {
	g := newTestGame()
	g.s.BallX, g.s.BallY = 200, 1
	g.s.BallVX, g.s.BallVY = 1, -3
	g.Step(1)
	if g.s.BallY != 0 || !near(g.s.BallVY, 3) {
		t.Errorf("top wall: y=%v vy=%v", g.s.BallY, g.s.BallVY)
	}

	g.s.BallY = CourtHeight - BallSize - 1
	g.s.BallVY = 2
	g.Step(1)
	if g.s.BallY != CourtHeight-BallSize || !near(g.s.BallVY, -2) {
		t.Errorf("bottom wall: y=%v vy=%v", g.s.BallY, g.s.BallVY)
	}
}

func TestPaddleBounce(t *testing.T) {
	t.Run("player", func(t *testing.T) {
		g := newTestGame()
		g.s.PlayerY = 90
		g.s.BallX, g.s.BallY = PlayerX+PaddleWidth+1, 114
		g.s.BallVX, g.s.BallVY = -3, 0
		g.Step(1)
		if g.s.BallX != PlayerX+PaddleWidth {
			t.Errorf("BallX = %v", g.s.BallX)
		}
		if !near(g.s.BallVX, 3*BounceSpeedUp) {
			t.Errorf("BallVX = %v, want %v", g.s.BallVX, 3*BounceSpeedUp)
		}
		if !near(g.s.BallVY, 0) {
			t.Errorf("center hit added spin: %v", g.s.BallVY)
		}
	})

	t.Run("agent edge adds spin", func(t *testing.T) {
		g := newTestGame()
		g.s.AgentY = 90
		g.s.BallX, g.s.BallY = AgentX-BallSize-1, 144
		g.s.BallVX, g.s.BallVY = 3, 0
		g.Step(1)
		if g.s.BallX != AgentX-BallSize {
			t.Errorf("BallX = %v", g.s.BallX)
		}
		if !near(g.s.BallVX, -3*BounceSpeedUp) {
			t.Errorf("BallVX = %v", g.s.BallVX)
		}
		if g.s.BallVY <= 0 || g.s.BallVY > MaxVerticalSpeed {
			t.Errorf("BallVY = %v, want downward spin", g.s.BallVY)
		}
	})
}

func TestAgentFollows(t *testing.T) {
	g := newTestGame()
	g.s.AgentY = 0
	g.s.BallX, g.s.BallY = 200, 200
	g.s.BallVX, g.s.BallVY = 1, 0
	g.Step(1)
	if !near(g.s.AgentY, AgentFollowSpeed) {
		t.Errorf("AgentY = %v, want %v", g.s.AgentY, AgentFollowSpeed)
	}

	// Inside the dead zone the paddle holds still.
	g.s.AgentY = 200 + BallSize/2 - PaddleHeight/2
	before := g.s.AgentY
	g.Step(1)
	if g.s.AgentY != before {
		t.Errorf("AgentY moved inside dead zone: %v -> %v", before, g.s.AgentY)
	}
}

func TestScoringServesTowardScorerOpponent(t *testing.T) {
	g := newTestGame()
	g.s.PlayerY = 0
	g.s.BallX, g.s.BallY = -BallSize+1, 200
	g.s.BallVX, g.s.BallVY = -3, 0
	if got := g.Step(1); got != Undecided {
		t.Fatalf("Step() = %v", got)
	}
	if g.s.AgentScore != 1 || g.s.BallVX <= 0 {
		t.Errorf("after agent point: score %d vx %v", g.s.AgentScore, g.s.BallVX)
	}

	g.s.AgentY = 0
	g.s.BallX, g.s.BallY = CourtWidth-1, 200
	g.s.BallVX, g.s.BallVY = 3, 0
	g.Step(1)
	if g.s.PlayerScore != 1 || g.s.BallVX >= 0 {
		t.Errorf("after player point: score %d vx %v", g.s.PlayerScore, g.s.BallVX)
	}
}

func TestMatchEndsOnce(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(s *State)
		want   Outcome
		player int
		agent  int
	}{
		{
			name: "player wins",
			setup: func(s *State) {
				s.PlayerScore = 2
				s.AgentY = 0
				s.BallX, s.BallY, s.BallVX, s.BallVY = CourtWidth-1, 200, 3, 0
			},
			want:   PlayerWon,
			player: 1,
		},
		{
			name: "agent wins",
			setup: func(s *State) {
				s.AgentScore = 2
				s.PlayerY = 0
				s.BallX, s.BallY, s.BallVX, s.BallVY = -BallSize+1, 200, -3, 0
			},
			want:  AgentWon,
			agent: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var player, agent int
			g := newTestGame(OnPlayerWin(func() { player++ }), OnAgentWin(func() { agent++ }))
			tt.setup(&g.s)

			if got := g.Step(1); got != tt.want {
				t.Fatalf("Step() = %v, want %v", got, tt.want)
			}
			frozen := g.State()
			for range 10 {
				if got := g.Step(1); got != tt.want {
					t.Fatalf("Step() after end = %v", got)
				}
			}
			g.MovePlayer(50)
			if g.State() != frozen {
				t.Error("state changed after the match ended")
			}
			if player != tt.player || agent != tt.agent {
				t.Errorf("callbacks: player %d agent %d, want %d/%d", player, agent, tt.player, tt.agent)
			}
		})
	}
}

func TestWinningScoreOption(t *testing.T) {
	g := newTestGame(WithWinningScore(1))
	g.s.AgentY = 0
	g.s.BallX, g.s.BallY, g.s.BallVX, g.s.BallVY = CourtWidth-1, 200, 3, 0
	if got := g.Step(1); got != PlayerWon {
		t.Errorf("Step() = %v, want player win at one point", got)
	}
	if newTestGame(WithWinningScore(0)).State().WinningScore != DefaultWinningScore {
		t.Error("zero winning score was not ignored")
	}
}
