package tui

import (
	"fmt"
	"strings"

	"github.com/BTreeMap/CancelPipe/internal/pong"
)

// Court size in terminal cells.
const (
	CourtCols = 42
	CourtRows = 12
)

const (
	paddleCell = '█'
	ballCell   = '●'
	netCell    = '┆'
)

// renderCourt rasterizes a game state onto a cols x rows grid.
func renderCourt(s pong.State, cols, rows int) []string {
	grid := make([][]rune, rows)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", cols))
		grid[r][cols/2] = netCell
	}

	col := func(x float64) int { return clampCell(int(x/pong.CourtWidth*float64(cols)), cols) }
	row := func(y float64) int { return clampCell(int(y/pong.CourtHeight*float64(rows)), rows) }

	paddle := func(x, y float64) {
		c := col(x + pong.PaddleWidth/2)
		top, bottom := row(y), row(y+pong.PaddleHeight-1)
		for r := top; r <= bottom; r++ {
			grid[r][c] = paddleCell
		}
	}
	paddle(pong.PlayerX, s.PlayerY)
	paddle(pong.AgentX, s.AgentY)
	grid[row(s.BallY+pong.BallSize/2)][col(s.BallX+pong.BallSize/2)] = ballCell

	out := make([]string, rows)
	for r, line := range grid {
		out[r] = string(line)
	}
	return out
}

func clampCell(v, n int) int {
	return min(max(v, 0), n-1)
}

func scoreLine(s pong.State) string {
	return fmt.Sprintf("You: %d   Agent: %d   (first to %d)", s.PlayerScore, s.AgentScore, s.WinningScore)
}
