package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/larder/ai"
)

const scoreResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "rating": {"type": "number", "minimum": 0, "maximum": 5},
    "reasoning": {"type": "string"}
  },
  "required": ["rating", "reasoning"],
  "additionalProperties": false
}`

const scorePromptTemplate = `You review recipes for a cooking catalog. Rate how useful and complete the given recipe is and return the verdict as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Rating is a number from 0 (unusable) to 5 (excellent). One decimal place is enough.
- Judge clarity of the instructions, completeness of the ingredient list, and whether times and servings are given.
- Missing fields lower the rating but do not make it 0 unless the recipe cannot be cooked at all.
- Reasoning is one or two short sentences.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input:
Name: Spicy Arrabiata Penne
Ingredients: 1 pound penne rigate, 1/4 cup olive oil, 3 cloves garlic
Instructions:
1. Bring a large pot of water to a boil.
2. Add the penne and cook until al dente.
Output:
{"rating": 3.5, "reasoning": "Clear steps and a short ingredient list, but no sauce preparation or timings."}`

// buildSystemPrompt creates the system prompt with the response schema embedded.
func buildSystemPrompt() string {
	return fmt.Sprintf(scorePromptTemplate, scoreResponseSchema)
}

// buildRecipePrompt renders the fields the scorer sees. Absent fields are omitted.
func buildRecipePrompt(req ai.ScoreRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", scrubString(req.Name))
	if req.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", req.Description)
	}
	if len(req.Ingredients) > 0 {
		fmt.Fprintf(&b, "Ingredients: %s\n", strings.Join(req.Ingredients, ", "))
	}
	if req.PrepTimeMinutes != nil {
		fmt.Fprintf(&b, "Prep time: %d minutes\n", *req.PrepTimeMinutes)
	}
	if req.CookTimeMinutes != nil {
		fmt.Fprintf(&b, "Cook time: %d minutes\n", *req.CookTimeMinutes)
	}
	if req.Servings != nil {
		fmt.Fprintf(&b, "Servings: %d\n", *req.Servings)
	}
	if len(req.Instructions) > 0 {
		b.WriteString("Instructions:\n")
		for i, step := range req.Instructions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, step)
		}
	}
	return strings.TrimSpace(b.String())
}
