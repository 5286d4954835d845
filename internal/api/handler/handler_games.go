package handler

import (
	"math/rand/v2"
	"net/http"
	"strconv"

	"welcomewindow/backend/internal/puzzle"
	"welcomewindow/backend/internal/trivia"

	"github.com/gin-gonic/gin"
)

// rng seeds from the optional "seed" query parameter so a board can be
// shared and regenerated.
func rng(c *gin.Context) *rand.Rand {
	if s := c.Query("seed"); s != "" {
		if seed, err := strconv.ParseUint(s, 10, 64); err == nil {
			return puzzle.NewRand(seed)
		}
	}
	return puzzle.NewTimeRand()
}

func (h *Handler) GetWordSearch(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	c.JSON(http.StatusOK, puzzle.GenerateWordSearch(c.DefaultQuery("theme", puzzle.DefaultTheme), size, rng(c)))
}

func (h *Handler) GetSudoku(c *gin.Context) {
	c.JSON(http.StatusOK, puzzle.GenerateSudoku(c.DefaultQuery("difficulty", "medium"), rng(c)))
}

// GetTrivia proxies the Open Trivia DB. Upstream failures yield an empty list.
func (h *Handler) GetTrivia(c *gin.Context) {
	amount, _ := strconv.Atoi(c.DefaultQuery("amount", "10"))
	category, _ := strconv.Atoi(c.Query("category"))
	questions := h.Trivia.Questions(c.Request.Context(), trivia.Params{
		Amount:     amount,
		Category:   category,
		Difficulty: c.Query("difficulty"),
	})
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}
