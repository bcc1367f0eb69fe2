package storage

import (
	"testing"
	"time"

	"github.com/poiesic/larder/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDRoundTrip(t *testing.T) {
	for _, id := range []core.ID{0, 1, 255, 70000, core.IDFromContent("x"), 18446744073709551615} {
		decoded, err := UnmarshalID(MarshalID(id))
		require.NoError(t, err)
		assert.Equal(t, id, decoded)
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	for _, data := range [][]byte{nil, {}, {0x80}} {
		_, err := UnmarshalID(data)
		assert.ErrorIs(t, err, ErrSerializationFailed)
	}
}

func TestRecordRoundTrip_PreservesOptionalFields(t *testing.T) {
	prep := 15
	published := time.Date(2021, 4, 5, 0, 0, 0, 0, time.UTC)
	record := core.NewIngestionRecord(core.Recipe{
		Name:            "Banana Bread",
		Ingredients:     []string{"3 bananas", "1 cup sugar"},
		Instructions:    []string{"Mash.", "Bake."},
		PrepTimeMinutes: &prep,
		Difficulty:      core.DifficultyEasy,
		Tags:            []string{"Bread"},
		Nutrition:       map[string]string{"calories": "240"},
		Source:          "seriouseats.com",
		PublishedDate:   &published,
	}, core.QualityScore{Rating: 4.5, Reasoning: "clear steps"}, &core.Embedding{Vector: []float32{0.5, -0.25}, SourceText: "Banana Bread", ModelName: "m"}, published)
	record.ID = 7
	record.UUID = "0b5c2f9e-4a77-4cf0-9f43-0f7d2b1a6c11"
	record.CookCount = 3

	decoded, err := UnmarshalRecord(MarshalRecord(record))
	require.NoError(t, err)

	assert.Equal(t, record, decoded)
	assert.Nil(t, decoded.Recipe.CookTimeMinutes)
	assert.Nil(t, decoded.Recipe.Servings)
	require.NotNil(t, decoded.Recipe.PublishedDate)
	assert.True(t, published.Equal(*decoded.Recipe.PublishedDate))
}

func TestRecordRoundTrip_EmptyCollections(t *testing.T) {
	record := core.NewIngestionRecord(core.Recipe{
		Name:         "Toast",
		Ingredients:  []string{"bread"},
		Instructions: []string{},
		Tags:         []string{},
		Images:       []string{},
		Nutrition:    map[string]string{},
		Source:       "test",
	}, core.FallbackScore(), nil, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	decoded, err := UnmarshalRecord(MarshalRecord(record))
	require.NoError(t, err)

	assert.Equal(t, []string{"bread"}, decoded.Recipe.Ingredients)
	assert.Empty(t, decoded.Recipe.Instructions)
	assert.Empty(t, decoded.Recipe.Tags)
	assert.Nil(t, decoded.Recipe.Nutrition)
	assert.Nil(t, decoded.Embedding)
	assert.Equal(t, core.FallbackScore(), decoded.Quality)
}

func TestUnmarshalRecord_Invalid(t *testing.T) {
	data := MarshalRecord(core.NewIngestionRecord(core.Recipe{Name: "Soup", Source: "test"}, core.FallbackScore(), nil, time.Now()))

	_, err := UnmarshalRecord(data[:len(data)/2])
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestRunRoundTrip_KeepsLabel(t *testing.T) {
	start := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	stats := core.NewRunStats("themealdb", 3, start)
	stats.Success = 2
	stats.AddError("Soup", assert.AnError)
	stats.Finish(start.Add(2 * time.Second))
	stats.LogPath = "/tmp/ingestion.json"

	decoded, err := UnmarshalRun(MarshalRun(stats))
	require.NoError(t, err)

	assert.Equal(t, "themealdb", decoded.Label)
	assert.Equal(t, "/tmp/ingestion.json", decoded.LogPath)
	assert.Equal(t, 1, decoded.Failed)
	assert.Equal(t, 2.0, decoded.Duration)
	assert.True(t, stats.EndTime.Equal(decoded.EndTime))
	assert.Equal(t, []core.RunError{{RecipeName: "Soup", Error: assert.AnError.Error()}}, decoded.Errors)

	empty, err := UnmarshalRun(MarshalRun(core.NewRunStats("web", 0, start)))
	require.NoError(t, err)
	assert.NotNil(t, empty.Errors)
	assert.Empty(t, empty.Errors)

	_, err = UnmarshalRun([]byte{0x02})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}
