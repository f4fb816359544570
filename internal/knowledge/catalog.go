package knowledge

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// CatalogMajor is the catalog format major version this build understands.
const CatalogMajor = "v1"

// ErrCatalogVersion is returned when a catalog declares an unsupported or
// malformed format version.
var ErrCatalogVersion = errors.New("unsupported catalog version")

//go:embed catalog.schema.json
var catalogSchemaJSON []byte

// Catalog is an authored set of concepts and application mappings, loaded
// from YAML and merged into a Graph at startup.
type Catalog struct {
	Version      string               `yaml:"version"`
	Concepts     []CatalogConcept     `yaml:"concepts"`
	Dependencies []CatalogDependency  `yaml:"dependencies"`
	Applications map[string][]string  `yaml:"applications"`
	Explanations []CatalogExplanation `yaml:"explanations"`
}

// CatalogConcept is the YAML shape of a Concept.
type CatalogConcept struct {
	ID             string   `yaml:"id"`
	Name           string   `yaml:"name"`
	Description    string   `yaml:"description"`
	Prerequisites  []string `yaml:"prerequisites"`
	Complexity     int      `yaml:"complexity"`
	Applications   []string `yaml:"applications"`
	Misconceptions []string `yaml:"misconceptions"`
	KeyQuestions   []string `yaml:"key_questions"`
}

// CatalogDependency is an explicit prerequisite edge.
type CatalogDependency struct {
	Prerequisite string `yaml:"prerequisite"`
	Dependent    string `yaml:"dependent"`
}

// CatalogExplanation is application-specific wording for a concept.
type CatalogExplanation struct {
	Concept     string `yaml:"concept"`
	Application string `yaml:"application"`
	Text        string `yaml:"text"`
}

// LoadCatalog reads and validates a YAML catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	cat, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return cat, nil
}

// ParseCatalog decodes YAML, checks it against the catalog JSON Schema and
// the supported format version.
func ParseCatalog(data []byte) (*Catalog, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := validateCatalogDoc(doc); err != nil {
		return nil, err
	}

	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if !semver.IsValid(cat.Version) || semver.Major(cat.Version) != CatalogMajor {
		return nil, fmt.Errorf("%w: %q (want %s.x.y)", ErrCatalogVersion, cat.Version, CatalogMajor)
	}
	return &cat, nil
}

// Apply merges the catalog into g. Concepts with IDs already present are
// replaced.
func (c *Catalog) Apply(g *Graph) {
	for _, cc := range c.Concepts {
		g.AddConcept(Concept{
			ID:                   cc.ID,
			Name:                 cc.Name,
			Description:          cc.Description,
			Prerequisites:        cc.Prerequisites,
			ComplexityLevel:      cc.Complexity,
			Applications:         cc.Applications,
			CommonMisconceptions: cc.Misconceptions,
			KeyQuestions:         cc.KeyQuestions,
		})
	}
	for _, d := range c.Dependencies {
		g.AddDependency(d.Prerequisite, d.Dependent)
	}
	for app, ids := range c.Applications {
		g.AddApplication(app, ids...)
	}
	for _, e := range c.Explanations {
		g.AddApplicationExplanation(e.Concept, e.Application, e.Text)
	}
}

var (
	catalogSchemaOnce sync.Once
	catalogSchema     *jsonschema.Schema
	catalogSchemaErr  error
)

func compiledCatalogSchema() (*jsonschema.Schema, error) {
	catalogSchemaOnce.Do(func() {
		def, err := jsonschema.UnmarshalJSON(bytes.NewReader(catalogSchemaJSON))
		if err != nil {
			catalogSchemaErr = fmt.Errorf("parse catalog schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		const url = "schema://foamtutor/catalog.json"
		if err := c.AddResource(url, def); err != nil {
			catalogSchemaErr = fmt.Errorf("add catalog schema: %w", err)
			return
		}
		catalogSchema, catalogSchemaErr = c.Compile(url)
	})
	return catalogSchema, catalogSchemaErr
}

// validateCatalogDoc round-trips the YAML tree through JSON so the
// validator sees the same value types it would for a JSON document.
func validateCatalogDoc(doc any) error {
	sch, err := compiledCatalogSchema()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("catalog is not JSON-representable: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("reparse catalog: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("catalog schema validation failed: %w", err)
	}
	return nil
}
