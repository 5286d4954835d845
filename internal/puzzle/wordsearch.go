package puzzle

import (
	"math/rand/v2"

	"welcomewindow/backend/internal/config"
)

const (
	maxCandidates    = 10
	maxPlacedWords   = 8
	placementRetries = 100
	fillLetters      = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// WordSearch is a letter grid with the words hidden in it.
type WordSearch struct {
	Theme string     `json:"theme"`
	Size  int        `json:"size"`
	Grid  [][]string `json:"grid"`
	Words []string   `json:"words"`
}

// ClampSize keeps a requested grid size within the supported range.
func ClampSize(size int) int {
	switch {
	case size <= 0:
		return config.WordSearchDefaultSize
	case size < config.WordSearchMinSize:
		return config.WordSearchMinSize
	case size > config.WordSearchMaxSize:
		return config.WordSearchMaxSize
	}
	return size
}

// GenerateWordSearch hides up to eight words of the theme horizontally or
// vertically and fills the rest of the grid with random letters. Unknown
// themes fall back to the general list.
func GenerateWordSearch(theme string, size int, rng *rand.Rand) WordSearch {
	size = ClampSize(size)
	words, ok := Themes[theme]
	if !ok {
		theme = DefaultTheme
		words = Themes[DefaultTheme]
	}

	grid := make([][]byte, size)
	for i := range grid {
		grid[i] = make([]byte, size)
	}

	candidates := sample(words, maxCandidates, rng)
	placed := make([]string, 0, maxPlacedWords)
	for _, word := range candidates {
		if place(grid, word, rng) {
			placed = append(placed, word)
			if len(placed) >= maxPlacedWords {
				break
			}
		}
	}

	out := make([][]string, size)
	for i, row := range grid {
		out[i] = make([]string, size)
		for j, ch := range row {
			if ch == 0 {
				ch = fillLetters[rng.IntN(len(fillLetters))]
			}
			out[i][j] = string(ch)
		}
	}

	return WordSearch{
		Theme: theme,
		Size:  size,
		Grid:  out,
		Words: placed,
	}
}

// place tries random positions until the word fits. Cells may be shared with
// other words when the letters agree.
func place(grid [][]byte, word string, rng *rand.Rand) bool {
	size := len(grid)
	if len(word) > size {
		return false
	}
	for attempt := 0; attempt < placementRetries; attempt++ {
		horizontal := rng.IntN(2) == 0
		row, col := rng.IntN(size), rng.IntN(size)

		if horizontal && col+len(word) > size {
			continue
		}
		if !horizontal && row+len(word) > size {
			continue
		}

		fits := true
		for i := 0; i < len(word) && fits; i++ {
			r, c := row, col+i
			if !horizontal {
				r, c = row+i, col
			}
			if grid[r][c] != 0 && grid[r][c] != word[i] {
				fits = false
			}
		}
		if !fits {
			continue
		}

		for i := 0; i < len(word); i++ {
			if horizontal {
				grid[row][col+i] = word[i]
			} else {
				grid[row+i][col] = word[i]
			}
		}
		return true
	}
	return false
}

func sample(words []string, n int, rng *rand.Rand) []string {
	if n > len(words) {
		n = len(words)
	}
	out := make([]string, 0, n)
	for _, idx := range rng.Perm(len(words))[:n] {
		out = append(out, words[idx])
	}
	return out
}

// ThemeNames lists the available themes.
func ThemeNames() []string {
	names := make([]string, 0, len(Themes))
	for name := range Themes {
		names = append(names, name)
	}
	return names
}
