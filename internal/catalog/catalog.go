// Package catalog serves the static question bank.
package catalog

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/msvee3/Interview-prep/internal/models"
)

//go:embed data/questions.yaml
var dataFS embed.FS

type Catalog struct {
	questions []models.Question
}

// Load reads the embedded question bank.
func Load() (*Catalog, error) {
	raw, err := dataFS.ReadFile("data/questions.yaml")
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}
	return Parse(raw)
}

// Parse builds a catalog from YAML. Ids must be unique and every entry
// needs text and a category.
func Parse(raw []byte) (*Catalog, error) {
	var questions []models.Question
	if err := yaml.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("parse question bank: %w", err)
	}

	seen := make(map[string]bool, len(questions))
	for i, q := range questions {
		if q.ID == "" || q.Text == "" || q.Category == "" {
			return nil, fmt.Errorf("question %d: id, text and category are required", i)
		}
		if seen[q.ID] {
			return nil, fmt.Errorf("question %d: duplicate id %q", i, q.ID)
		}
		seen[q.ID] = true
		if questions[i].Tags == nil {
			questions[i].Tags = []string{}
		}
	}
	return &Catalog{questions: questions}, nil
}

// List returns the questions matching both filters. An empty filter
// matches everything.
func (c *Catalog) List(category, difficulty string) []models.Question {
	out := []models.Question{}
	for _, q := range c.questions {
		if category != "" && q.Category != category {
			continue
		}
		if difficulty != "" && q.Difficulty != difficulty {
			continue
		}
		out = append(out, q)
	}
	return out
}
