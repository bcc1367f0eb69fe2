// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openai

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/poiesic/larder/ai"
	"github.com/poiesic/larder/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const maxParseAttempts = 3

// ErrNoChoices is returned when the model answers without any content.
var ErrNoChoices = errors.New("model returned no choices")

// Scorer implements ai.QualityScorer using OpenAI-compatible chat APIs.
type Scorer struct {
	client llms.Model
	logger *slog.Logger
}

// verdict is the JSON object the model is asked to produce.
type verdict struct {
	Rating    float64 `json:"rating"`
	Reasoning string  `json:"reasoning"`
}

// newScorer is an internal constructor that returns the concrete type.
func newScorer(config *ai.Config) (*Scorer, error) {
	if err := config.ValidateScorer(); err != nil {
		return nil, err
	}

	token := config.ScorerToken
	if token == "" {
		token = "none"
	}
	client, err := openai.New(
		openai.WithBaseURL(config.ScorerHost),
		openai.WithToken(token),
		openai.WithModel(config.ScorerModel),
	)
	if err != nil {
		return nil, err
	}
	return newScorerWithModel(client), nil
}

func newScorerWithModel(model llms.Model) *Scorer {
	return &Scorer{
		client: model,
		logger: slog.Default().With("component", "openai-scorer"),
	}
}

// NewScorer creates a quality scorer using the provided configuration.
//
// Returns ai.QualityScorer interface to enforce abstraction.
func NewScorer(config *ai.Config) (ai.QualityScorer, error) {
	return newScorer(config)
}

// Score asks the model for a 0-5 rating. Ratings outside the range are
// clamped. Unparseable answers are retried up to three times; transport
// errors are returned immediately and the caller falls back.
func (s *Scorer) Score(ctx context.Context, req ai.ScoreRequest) (core.QualityScore, error) {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(buildSystemPrompt())},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(buildRecipePrompt(req))},
		},
	}

	var result verdict
	var lastErr error
	for attempt := 0; attempt < maxParseAttempts; attempt++ {
		response, err := s.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			s.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return core.QualityScore{}, err
		}
		if len(response.Choices) < 1 {
			return core.QualityScore{}, ErrNoChoices
		}

		responseText := stripFences(response.Choices[0].Content)
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			s.logger.Warn("error parsing scorer response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}
		lastErr = nil
		break
	}

	if lastErr != nil {
		s.logger.Error("failed to parse scorer response after retries", "err", lastErr)
		return core.QualityScore{}, lastErr
	}

	score := core.QualityScore{
		Rating:    core.ClampRating(result.Rating),
		Reasoning: strings.TrimSpace(result.Reasoning),
	}
	s.logger.Debug("scored recipe", "name", req.Name, "rating", score.Rating)
	return score, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
