package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Difficulty is the estimated effort needed to cook a recipe.
// The zero value means unknown.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Recipe is the canonical, source-agnostic recipe record every pipeline
// stage after normalization operates on.
type Recipe struct {
	Name            string            `json:"name"`
	Description     string            `json:"description,omitempty"`
	Ingredients     []string          `json:"ingredients"`
	Instructions    []string          `json:"instructions"`
	PrepTimeMinutes *int              `json:"prepTimeMinutes,omitempty"`
	CookTimeMinutes *int              `json:"cookTimeMinutes,omitempty"`
	Servings        *int              `json:"servings,omitempty"`
	Cuisine         string            `json:"cuisine,omitempty"`
	Difficulty      Difficulty        `json:"difficulty,omitempty"`
	Tags            []string          `json:"tags"`
	Images          []string          `json:"images"`
	Nutrition       map[string]string `json:"nutrition,omitempty"`
	Source          string            `json:"source"`
	SourceURL       string            `json:"sourceUrl,omitempty"`
	PublishedDate   *time.Time        `json:"publishedDate,omitempty"`
}

// AddTag appends tag unless an equal tag (ignoring case) is already present.
// Blank tags are ignored.
func (r *Recipe) AddTag(tag string) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return
	}
	for _, existing := range r.Tags {
		if strings.EqualFold(existing, tag) {
			return
		}
	}
	r.Tags = append(r.Tags, tag)
}

// QualityScore is a 0-5 rating with the scorer's rationale.
type QualityScore struct {
	Rating    float64 `json:"rating"`
	Reasoning string  `json:"reasoning"`
}

const (
	MinRating = 0.0
	MaxRating = 5.0

	fallbackRating    = 3.0
	fallbackReasoning = "Quality evaluation skipped"
)

// FallbackScore is used whenever the quality scorer is unavailable.
func FallbackScore() QualityScore {
	return QualityScore{Rating: fallbackRating, Reasoning: fallbackReasoning}
}

// ClampRating limits a rating to the [0, 5] range.
func ClampRating(rating float64) float64 {
	if rating < MinRating {
		return MinRating
	}
	if rating > MaxRating {
		return MaxRating
	}
	return rating
}

// Embedding is a dense vector computed from SourceText by ModelName.
type Embedding struct {
	Vector     []float32 `json:"vector"`
	SourceText string    `json:"sourceText"`
	ModelName  string    `json:"modelName"`
}

// IngestionRecord is a persisted recipe: the canonical recipe plus its
// enrichment and system metadata.
type IngestionRecord struct {
	ID             ID           `json:"id"`
	UUID           string       `json:"uuid"`
	Recipe         Recipe       `json:"recipe"`
	Quality        QualityScore `json:"quality"`
	Embedding      *Embedding   `json:"embedding,omitempty"`
	IsSystemRecipe bool         `json:"isSystemRecipe"`
	DiscoveredAt   time.Time    `json:"discoveredAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
	ViewCount      int          `json:"viewCount"`
	SaveCount      int          `json:"saveCount"`
	CookCount      int          `json:"cookCount"`
}

// NewIngestionRecord builds a system recipe record with zeroed counters.
// ID and UUID are assigned by storage.
func NewIngestionRecord(recipe Recipe, quality QualityScore, embedding *Embedding, discoveredAt time.Time) *IngestionRecord {
	return &IngestionRecord{
		Recipe:         recipe,
		Quality:        quality,
		Embedding:      embedding,
		IsSystemRecipe: true,
		DiscoveredAt:   discoveredAt.UTC(),
		UpdatedAt:      discoveredAt.UTC(),
	}
}

// Vector returns the record's embedding vector, or nil.
func (r *IngestionRecord) Vector() []float32 {
	if r.Embedding == nil {
		return nil
	}
	return r.Embedding.Vector
}

// SearchResult represents a search result with the full record and relevance score.
type SearchResult struct {
	Record *IngestionRecord
	Score  float32
}

// RunError identifies the recipe a per-record failure belongs to.
type RunError struct {
	RecipeName string `json:"recipeName"`
	Error      string `json:"error"`
}

// RunStats accumulates the outcome of one ingestion run. The JSON layout is
// the run log format and must stay stable.
type RunStats struct {
	Total     int        `json:"total"`
	Success   int        `json:"success"`
	Failed    int        `json:"failed"`
	Skipped   int        `json:"skipped"`
	Errors    []RunError `json:"errors"`
	StartTime time.Time  `json:"startTime"`
	EndTime   time.Time  `json:"endTime"`
	Duration  float64    `json:"duration"`

	// Label names the source the run ingested. Not part of the run log.
	Label string `json:"-"`
	// LogPath is where the run log was written, if anywhere.
	LogPath string `json:"-"`
}

// NewRunStats starts a run over total records.
func NewRunStats(label string, total int, start time.Time) *RunStats {
	return &RunStats{
		Total:     total,
		Errors:    []RunError{},
		StartTime: start.UTC(),
		Label:     label,
	}
}

// AddError records a failed recipe.
func (s *RunStats) AddError(recipeName string, err error) {
	s.Failed++
	s.Errors = append(s.Errors, RunError{RecipeName: recipeName, Error: err.Error()})
}

// Finish sets the end time and duration in seconds.
func (s *RunStats) Finish(end time.Time) {
	s.EndTime = end.UTC()
	s.Duration = s.EndTime.Sub(s.StartTime).Seconds()
}

// Processed is the number of records already accounted for.
func (s *RunStats) Processed() int {
	return s.Success + s.Failed + s.Skipped
}

// Coverage counts how many recipes in a collection carry optional fields.
type Coverage struct {
	Total        int `json:"total"`
	WithImages   int `json:"withImages"`
	WithPrepTime int `json:"withPrepTime"`
	WithCookTime int `json:"withCookTime"`
	WithServings int `json:"withServings"`
}

// MeasureCoverage computes coverage over recipes.
func MeasureCoverage(recipes []Recipe) Coverage {
	c := Coverage{Total: len(recipes)}
	for i := range recipes {
		r := &recipes[i]
		if len(r.Images) > 0 {
			c.WithImages++
		}
		if r.PrepTimeMinutes != nil {
			c.WithPrepTime++
		}
		if r.CookTimeMinutes != nil {
			c.WithCookTime++
		}
		if r.Servings != nil {
			c.WithServings++
		}
	}
	return c
}
