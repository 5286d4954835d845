// Package puzzle generates the mini-game boards served to visitors. Every
// generator is a pure function of its arguments and the supplied *rand.Rand.
package puzzle

import (
	"math/rand/v2"
	"time"

	"welcomewindow/backend/internal/config"
)

// Grid is a 9x9 sudoku board; 0 marks a blank cell.
type Grid [9][9]int

// Sudoku is a generated board together with its solution.
type Sudoku struct {
	Difficulty string `json:"difficulty"`
	Puzzle     Grid   `json:"puzzle"`
	Solution   Grid   `json:"solution"`
}

// NewRand returns a generator seeded with seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewTimeRand returns a generator seeded from the clock.
func NewTimeRand() *rand.Rand {
	return NewRand(uint64(time.Now().UnixNano()))
}

// CellsToRemove returns the number of blanks for a difficulty.
func CellsToRemove(difficulty string) int {
	if n, ok := config.SudokuCellsToRemove[difficulty]; ok {
		return n
	}
	return config.SudokuDefaultCellsToRemove
}

// GenerateSudoku builds a solved board and blanks out cells according to the
// difficulty (easy 30, medium 40, hard 50, anything else 40).
func GenerateSudoku(difficulty string, rng *rand.Rand) Sudoku {
	var grid Grid

	// The three diagonal boxes are independent of each other.
	for box := 0; box < 9; box += 3 {
		nums := rng.Perm(9)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				grid[box+i][box+j] = nums[i*3+j] + 1
			}
		}
	}
	solve(&grid, rng)
	solution := grid

	cells := rng.Perm(81)
	for _, idx := range cells[:CellsToRemove(difficulty)] {
		grid[idx/9][idx%9] = 0
	}

	return Sudoku{
		Difficulty: difficulty,
		Puzzle:     grid,
		Solution:   solution,
	}
}

// solve fills the blanks by backtracking, trying candidates in random order.
func solve(g *Grid, rng *rand.Rand) bool {
	for row := 0; row < 9; row++ {
		for col := 0; col < 9; col++ {
			if g[row][col] != 0 {
				continue
			}
			for _, n := range rng.Perm(9) {
				num := n + 1
				if canPlace(g, row, col, num) {
					g[row][col] = num
					if solve(g, rng) {
						return true
					}
					g[row][col] = 0
				}
			}
			return false
		}
	}
	return true
}

func canPlace(g *Grid, row, col, num int) bool {
	for i := 0; i < 9; i++ {
		if g[row][i] == num || g[i][col] == num {
			return false
		}
	}
	br, bc := 3*(row/3), 3*(col/3)
	for i := br; i < br+3; i++ {
		for j := bc; j < bc+3; j++ {
			if g[i][j] == num {
				return false
			}
		}
	}
	return true
}

// Valid reports whether a complete grid satisfies the sudoku rules.
func (g Grid) Valid() bool {
	for i := 0; i < 9; i++ {
		var row, col, box [10]bool
		for j := 0; j < 9; j++ {
			r := g[i][j]
			c := g[j][i]
			b := g[3*(i/3)+j/3][3*(i%3)+j%3]
			if r < 1 || r > 9 || c < 1 || c > 9 || b < 1 || b > 9 {
				return false
			}
			if row[r] || col[c] || box[b] {
				return false
			}
			row[r], col[c], box[b] = true, true, true
		}
	}
	return true
}
