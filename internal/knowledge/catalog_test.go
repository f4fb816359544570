package knowledge

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `
version: v1.2.0
concepts:
  - id: y_plus
    name: Dimensionless Wall Distance
    description: Non-dimensional distance from the wall to the first cell centre
    prerequisites: [boundary_layer]
    complexity: 3
    key_questions:
      - What y+ does your wall treatment need?
dependencies:
  - prerequisite: y_plus
    dependent: turbulence
applications:
  automotive: [y_plus]
explanations:
  - concept: y_plus
    application: automotive
    text: decides whether wall functions are valid on the vehicle body.
`

func TestParseCatalog_AppliesToGraph(t *testing.T) {
	cat, err := ParseCatalog([]byte(sampleCatalog))
	require.NoError(t, err)
	require.Len(t, cat.Concepts, 1)

	g := DefaultGraph()
	cat.Apply(g)

	c, ok := g.Concept("y_plus")
	require.True(t, ok)
	assert.Equal(t, 3, c.ComplexityLevel)
	assert.Equal(t, []string{ConceptBoundaryLayer}, c.Prerequisites)
	assert.Contains(t, g.Prerequisites(ConceptTurbulence), "y_plus")
	assert.Contains(t, g.ApplicationConcepts("automotive"), "y_plus")
	assert.Contains(t, g.ApplicationExplanation("y_plus", "automotive"), "wall functions")
	require.NoError(t, g.Validate())
}

func TestParseCatalog_SchemaViolation(t *testing.T) {
	tests := map[string]string{
		"missing version":     "concepts: []\n",
		"complexity too high": "version: v1.0.0\nconcepts:\n  - {id: x, name: X, complexity: 9}\n",
		"bad id":              "version: v1.0.0\nconcepts:\n  - {id: Bad-Id, name: X, complexity: 1}\n",
		"unknown field":       "version: v1.0.0\nconcepts: []\nextra: true\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "schema validation failed")
		})
	}
}

func TestParseCatalog_UnsupportedMajor(t *testing.T) {
	_, err := ParseCatalog([]byte("version: v2.0.0\nconcepts: []\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCatalogVersion))
}

func TestParseCatalog_InvalidYAML(t *testing.T) {
	_, err := ParseCatalog([]byte("version: [unclosed"))
	require.Error(t, err)
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0o644))

	cat, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, "v1.2.0", cat.Version)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
