// Command analyze prints quick, human-readable balance heuristics for game
// parameter combinations. For each board size / fleet size pair it simulates
// many duels with random fleets and random shot orders, then reports the
// expected game length and the first shooter's win rate. Useful when tuning
// HTF_BOARD_SIZE and HTF_SHIPS_REQUIRED.
package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/SilberGecko6917/HackTheFleet/game/board"
)

// Scenario is one parameter combination to evaluate.
type Scenario struct {
	BoardSize int
	Ships     int
}

// DuelResult records the outcome of a single simulated duel.
type DuelResult struct {
	Winner     int // 1 = first shooter, 2 = second shooter
	TotalShots int
}

func main() {
	scenarios := []Scenario{
		{BoardSize: 4, Ships: 2},
		{BoardSize: 5, Ships: 3}, // default server settings
		{BoardSize: 5, Ships: 5},
		{BoardSize: 6, Ships: 3},
		{BoardSize: 8, Ships: 5},
	}

	const duels = 20000
	for _, sc := range scenarios {
		fmt.Printf("\n=== Board %dx%d, %d ships (%d duels) ===\n",
			sc.BoardSize, sc.BoardSize, sc.Ships, duels)
		analyzeScenario(sc, duels)
	}
}

func analyzeScenario(sc Scenario, duels int) {
	firstWins := 0
	totalShots := 0
	minShots, maxShots := -1, 0

	for i := 0; i < duels; i++ {
		result := simulateDuel(sc)
		if result.Winner == 1 {
			firstWins++
		}
		totalShots += result.TotalShots
		if minShots < 0 || result.TotalShots < minShots {
			minShots = result.TotalShots
		}
		if result.TotalShots > maxShots {
			maxShots = result.TotalShots
		}
	}

	cells := sc.BoardSize * sc.BoardSize
	avg := float64(totalShots) / float64(duels)
	winRate := float64(firstWins) / float64(duels) * 100

	fmt.Printf("Cells per board: %d\n", cells)
	fmt.Printf("Average game length: %.1f shots (min %d, max %d)\n", avg, minShots, maxShots)
	fmt.Printf("First shooter win rate: %.1f%%\n", winRate)

	if winRate > 60 {
		fmt.Printf("⚠️  First-mover advantage is heavy; consider more ships or a bigger board\n")
	} else {
		fmt.Printf("✅ First-mover advantage is within a reasonable range\n")
	}
}

// simulateDuel plays one full game: both fleets random, both players shoot
// cells in an independent random order, turns alternate on every resolved
// shot. The duel ends when one board has no ships left.
func simulateDuel(sc Scenario) DuelResult {
	boards := [2]*board.Board{board.New(sc.BoardSize), board.New(sc.BoardSize)}
	boards[0].FillRandom(sc.Ships)
	boards[1].FillRandom(sc.Ships)

	orders := [2][]int{shotOrder(sc.BoardSize), shotOrder(sc.BoardSize)}
	next := [2]int{0, 0}

	shots := 0
	shooter := 0
	for {
		target := 1 - shooter
		cell := orders[shooter][next[shooter]]
		next[shooter]++
		shots++

		x, y := cell%sc.BoardSize, cell/sc.BoardSize
		boards[target].ResolveShot(x, y)
		if boards[target].ShipsRemaining() == 0 {
			return DuelResult{Winner: shooter + 1, TotalShots: shots}
		}
		shooter = target
	}
}

// shotOrder returns a random permutation of all cell indices.
func shotOrder(size int) []int {
	order := make([]int, size*size)
	for i := range order {
		order[i] = i
	}
	rand.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	return order
}
