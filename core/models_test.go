package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "same content produces same ID", content: "themealdb.com\x00Arrabiata"},
		{name: "empty string", content: ""},
		{name: "long content", content: "https://www.seriouseats.com/the-food-lab-complete-guide-to-sous-vide-steak"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestRecipe_AddTag(t *testing.T) {
	var r Recipe
	r.AddTag("Dessert")
	r.AddTag("  dessert ")
	r.AddTag("")
	r.AddTag("Vegan")

	if len(r.Tags) != 2 || r.Tags[0] != "Dessert" || r.Tags[1] != "Vegan" {
		t.Errorf("AddTag() tags = %v, want [Dessert Vegan]", r.Tags)
	}
}

func TestClampRating(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-1, 0},
		{0, 0},
		{3.5, 3.5},
		{5, 5},
		{7.2, 5},
	}
	for _, tt := range tests {
		if got := ClampRating(tt.in); got != tt.want {
			t.Errorf("ClampRating(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFallbackScore(t *testing.T) {
	score := FallbackScore()
	if score.Rating != 3.0 {
		t.Errorf("FallbackScore().Rating = %v, want 3.0", score.Rating)
	}
	if score.Reasoning != "Quality evaluation skipped" {
		t.Errorf("FallbackScore().Reasoning = %q", score.Reasoning)
	}
}

func TestNewIngestionRecord(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := NewIngestionRecord(Recipe{Name: "Soup"}, FallbackScore(), nil, now)

	if !rec.IsSystemRecipe {
		t.Error("expected system recipe")
	}
	if rec.ViewCount != 0 || rec.SaveCount != 0 || rec.CookCount != 0 {
		t.Error("expected zeroed counters")
	}
	if !rec.DiscoveredAt.Equal(now) {
		t.Errorf("DiscoveredAt = %v, want %v", rec.DiscoveredAt, now)
	}
	if rec.Vector() != nil {
		t.Error("expected nil vector without embedding")
	}
}

func TestRunStats_JSONLayout(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	stats := NewRunStats("mealdb", 3, start)
	stats.Success = 2
	stats.AddError("Pie", errors.New("insert failed"))
	stats.Finish(start.Add(1500 * time.Millisecond))

	data, err := json.Marshal(stats)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := []string{"total", "success", "failed", "skipped", "errors", "startTime", "endTime", "duration"}
	if len(decoded) != len(want) {
		t.Errorf("run log has %d keys, want %d: %v", len(decoded), len(want), decoded)
	}
	for _, key := range want {
		if _, ok := decoded[key]; !ok {
			t.Errorf("run log missing key %q", key)
		}
	}
	if decoded["duration"].(float64) != 1.5 {
		t.Errorf("duration = %v, want 1.5", decoded["duration"])
	}
	if stats.Processed() != 3 {
		t.Errorf("Processed() = %d, want 3", stats.Processed())
	}
}

func TestRunStats_EmptyErrorsSerializeAsArray(t *testing.T) {
	stats := NewRunStats("", 0, time.Now())
	data, err := json.Marshal(stats)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded struct {
		Errors json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(decoded.Errors) != "[]" {
		t.Errorf("errors = %s, want []", decoded.Errors)
	}
}

func TestMeasureCoverage(t *testing.T) {
	minutes := 10
	recipes := []Recipe{
		{Name: "a", Images: []string{"x.jpg"}, PrepTimeMinutes: &minutes},
		{Name: "b", CookTimeMinutes: &minutes, Servings: &minutes},
		{Name: "c"},
	}
	c := MeasureCoverage(recipes)
	if c.Total != 3 || c.WithImages != 1 || c.WithPrepTime != 1 || c.WithCookTime != 1 || c.WithServings != 1 {
		t.Errorf("MeasureCoverage() = %+v", c)
	}
}
