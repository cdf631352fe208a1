package knowledge

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/tokenforge/sage/internal/model"
)

// seedSchema validates seed-file frontmatter before ingestion.
const seedSchema = `{
  "type": "object",
  "required": ["topic", "category"],
  "properties": {
    "topic": {"type": "string", "minLength": 1},
    "subtopic": {"type": "string"},
    "category": {"enum": ["platform", "dictionary", "general", "technical", "marketplace", "kyc"]},
    "confidence": {"type": "integer", "minimum": 0, "maximum": 100},
    "relationships": {"type": "array", "items": {"type": "string"}}
  }
}`

// seedFrontmatter is the YAML frontmatter shape of a seed file.
type seedFrontmatter struct {
	Topic         string   `yaml:"topic"`
	Subtopic      string   `yaml:"subtopic"`
	Category      string   `yaml:"category"`
	Confidence    *int     `yaml:"confidence"`
	Relationships []string `yaml:"relationships"`
}

// ImportResult summarizes one import run.
type ImportResult struct {
	Created int
	Skipped []string // file: reason
}

// ImportDir reads every markdown file under dir, parses its YAML frontmatter,
// validates it against the seed schema and creates a knowledge entry per
// valid file (source=manual, body becomes the information text). Invalid
// files are skipped and reported, never fatal.
func (s *Store) ImportDir(dir string) (*ImportResult, error) {
	schema, err := compileSeedSchema()
	if err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading seed dir: %w", err)
	}

	res := &ImportResult{}
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".md") {
			continue
		}
		path := filepath.Join(dir, de.Name())
		if err := s.importFile(path, schema); err != nil {
			slog.Warn("seed import: skipping file", "file", de.Name(), "err", err)
			res.Skipped = append(res.Skipped, fmt.Sprintf("%s: %v", de.Name(), err))
			continue
		}
		res.Created++
	}
	return res, nil
}

func compileSeedSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("seed.json", strings.NewReader(seedSchema)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	schema, err := compiler.Compile("seed.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return schema, nil
}

func (s *Store) importFile(path string, schema *jsonschema.Schema) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	// yaml.v3 produces map[string]any natively, which the schema validator
	// requires.
	var raw map[string]any
	yamlFormat := frontmatter.NewFormat("---", "---", yaml.Unmarshal)
	body, err := frontmatter.Parse(bytes.NewReader(content), &raw, yamlFormat)
	if err != nil {
		return fmt.Errorf("parsing frontmatter: %w", err)
	}
	if err := schema.Validate(raw); err != nil {
		return fmt.Errorf("frontmatter schema: %w", err)
	}

	var fm seedFrontmatter
	if _, err := frontmatter.Parse(bytes.NewReader(content), &fm, yamlFormat); err != nil {
		return fmt.Errorf("parsing frontmatter: %w", err)
	}

	info := strings.TrimSpace(string(body))
	if info == "" {
		return fmt.Errorf("empty information body")
	}
	confidence := 80
	if fm.Confidence != nil {
		confidence = *fm.Confidence
	}

	_, err = s.Create(model.KnowledgeEntry{
		Topic:         fm.Topic,
		Subtopic:      fm.Subtopic,
		Category:      model.KnowledgeCategory(fm.Category),
		Information:   info,
		Confidence:    confidence,
		Relationships: fm.Relationships,
		Source:        model.KnowledgeSourceManual,
	})
	return err
}
