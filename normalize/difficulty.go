package normalize

import (
	"strings"

	"github.com/poiesic/larder/core"
)

var (
	easyKeywords = []string{"quick", "easy", "weeknight"}
	hardKeywords = []string{"advanced", "complex", "chef"}
)

// EstimateDifficulty guesses a difficulty for sources that do not provide one.
// Category keywords win (easy before hard); otherwise ingredient and step
// counts decide: up to 6 and 5 is easy, up to 12 and 10 is medium.
func EstimateDifficulty(categories []string, ingredientCount, stepCount int) core.Difficulty {
	if anyCategoryContains(categories, easyKeywords) {
		return core.DifficultyEasy
	}
	if anyCategoryContains(categories, hardKeywords) {
		return core.DifficultyHard
	}

	switch {
	case ingredientCount <= 6 && stepCount <= 5:
		return core.DifficultyEasy
	case ingredientCount <= 12 && stepCount <= 10:
		return core.DifficultyMedium
	default:
		return core.DifficultyHard
	}
}

func anyCategoryContains(categories, keywords []string) bool {
	for _, c := range categories {
		lc := strings.ToLower(c)
		for _, k := range keywords {
			if strings.Contains(lc, k) {
				return true
			}
		}
	}
	return false
}
