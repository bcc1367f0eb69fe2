package ai

import "github.com/poiesic/larder/core"

// ScoreRequest carries the recipe fields the quality scorer looks at.
// Every field except Name may be empty.
type ScoreRequest struct {
	Name            string
	Description     string
	Ingredients     []string
	Instructions    []string
	PrepTimeMinutes *int
	CookTimeMinutes *int
	Servings        *int
}

// NewScoreRequest copies the scored fields out of a recipe.
func NewScoreRequest(r *core.Recipe) ScoreRequest {
	return ScoreRequest{
		Name:            r.Name,
		Description:     r.Description,
		Ingredients:     r.Ingredients,
		Instructions:    r.Instructions,
		PrepTimeMinutes: r.PrepTimeMinutes,
		CookTimeMinutes: r.CookTimeMinutes,
		Servings:        r.Servings,
	}
}
