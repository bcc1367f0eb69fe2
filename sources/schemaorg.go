package sources

import (
	"context"
	"log/slog"

	"github.com/poiesic/larder/core"
	"github.com/poiesic/larder/normalize"
)

// SchemaOrg reads a local corpus of schema.org Recipe documents. The file
// is a single JSON document: a Recipe, an array, or a @graph.
type SchemaOrg struct {
	name   string
	path   string
	strict bool
	logger *slog.Logger
}

// NewSchemaOrg creates a corpus source. name is used as the source for
// recipes whose documents carry no URL.
func NewSchemaOrg(name, path string, strict bool) *SchemaOrg {
	return &SchemaOrg{
		name:   name,
		path:   path,
		strict: strict,
		logger: slog.Default().With("component", "source", "source", name),
	}
}

func (s *SchemaOrg) Name() string    { return s.name }
func (s *SchemaOrg) Strict() bool    { return s.strict }
func (s *SchemaOrg) Available() bool { return fileExists(s.path) }

// Download is a no-op: the corpus is provided locally.
func (s *SchemaOrg) Download(ctx context.Context) error {
	if !s.Available() {
		return ErrSourceMissing
	}
	return nil
}

// Load extracts and normalizes every Recipe node in the corpus.
func (s *SchemaOrg) Load(ctx context.Context) ([]core.Recipe, error) {
	data, err := readSourceFile(s.path)
	if err != nil {
		return nil, err
	}

	nodes, err := normalize.ExtractSchemaOrgRecipes(data)
	if err != nil {
		return nil, err
	}

	sc := normalize.SourceContext{Name: s.name}
	recipes := make([]core.Recipe, 0, len(nodes))
	for _, node := range nodes {
		recipes = append(recipes, normalize.NormalizeSchemaOrgNode(node, sc))
	}
	s.logger.Debug("corpus loaded", "path", s.path, "recipes", len(recipes))
	return recipes, nil
}
