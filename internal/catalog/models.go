// Package catalog holds the read-only reference data the wizard and landing
// pages use: selectable AI models, image tools, showcase projects and the
// top-level modes.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrModelNotFound = errors.New("model not found")

const AllCategories = "all"

type Model struct {
	ID        int    `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Category  string `json:"category" yaml:"category"`
	Ethnicity string `json:"ethnicity" yaml:"ethnicity"`
	AgeRange  string `json:"age_range" yaml:"age_range"`
	Featured  bool   `json:"featured" yaml:"featured"`
}

// Catalog is an immutable list of models.
type Catalog struct {
	models []Model
}

func New(models []Model) *Catalog {
	return &Catalog{models: append([]Model(nil), models...)}
}

// Default returns the built-in model roster.
func Default() *Catalog {
	return New([]Model{
		{ID: 1, Name: "Elena Martinez", Category: "Fashion", Ethnicity: "Latina", AgeRange: "25-30", Featured: true},
		{ID: 2, Name: "James Chen", Category: "Lifestyle", Ethnicity: "Asian", AgeRange: "30-35"},
		{ID: 3, Name: "Amara Johnson", Category: "Beauty", Ethnicity: "African American", AgeRange: "20-25", Featured: true},
		{ID: 4, Name: "Lucas Weber", Category: "Sports", Ethnicity: "Caucasian", AgeRange: "25-30"},
		{ID: 5, Name: "Priya Patel", Category: "Business", Ethnicity: "South Asian", AgeRange: "28-33"},
		{ID: 6, Name: "Sofia Rodriguez", Category: "Fashion", Ethnicity: "Latina", AgeRange: "22-27", Featured: true},
	})
}

type catalogFile struct {
	Models []Model `yaml:"models"`
}

// Load reads a YAML catalog of the form `models: [...]`.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	seen := make(map[int]bool, len(file.Models))
	for _, m := range file.Models {
		if seen[m.ID] {
			return nil, fmt.Errorf("duplicate model id %d in catalog", m.ID)
		}
		seen[m.ID] = true
	}
	return New(file.Models), nil
}

func (c *Catalog) All() []Model {
	return append([]Model(nil), c.models...)
}

func (c *Catalog) Find(id int) (Model, error) {
	for _, m := range c.models {
		if m.ID == id {
			return m, nil
		}
	}
	return Model{}, fmt.Errorf("%w: %d", ErrModelNotFound, id)
}

// Filter matches search against name or ethnicity, case-insensitively, and
// category exactly. An empty category or "all" matches every category.
func (c *Catalog) Filter(search, category string) []Model {
	search = strings.ToLower(strings.TrimSpace(search))
	category = strings.TrimSpace(category)

	out := make([]Model, 0, len(c.models))
	for _, m := range c.models {
		matchesSearch := search == "" ||
			strings.Contains(strings.ToLower(m.Name), search) ||
			strings.Contains(strings.ToLower(m.Ethnicity), search)
		matchesCategory := category == "" || strings.EqualFold(category, AllCategories) ||
			strings.EqualFold(m.Category, category)
		if matchesSearch && matchesCategory {
			out = append(out, m)
		}
	}
	return out
}

// Categories lists the distinct model categories in first-seen order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range c.models {
		if !seen[m.Category] {
			seen[m.Category] = true
			out = append(out, m.Category)
		}
	}
	return out
}
