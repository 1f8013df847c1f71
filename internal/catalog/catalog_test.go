package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio-wizard-backend/internal/catalog"
)

func names(models []catalog.Model) []string {
	out := make([]string, len(models))
	for i, m := range models {
		out[i] = m.Name
	}
	return out
}

func TestFilter(t *testing.T) {
	c := catalog.Default()

	tests := []struct {
		name, search, category string
		want                   []string
	}{
		{"everything", "", "all", names(c.All())},
		{"by name", "chen", "", []string{"James Chen"}},
		{"by ethnicity", "LATINA", "", []string{"Elena Martinez", "Sofia Rodriguez"}},
		{"category only", "", "fashion", []string{"Elena Martinez", "Sofia Rodriguez"}},
		{"search and category", "asian", "Business", []string{"Priya Patel"}},
		{"no match", "zzz", "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(c.Filter(tt.search, tt.category)))
		})
	}
}

func TestFind(t *testing.T) {
	c := catalog.Default()

	m, err := c.Find(3)
	require.NoError(t, err)
	assert.Equal(t, "Amara Johnson", m.Name)
	assert.True(t, m.Featured)

	_, err = c.Find(99)
	assert.ErrorIs(t, err, catalog.ErrModelNotFound)

	assert.Equal(t, []string{"Fashion", "Lifestyle", "Beauty", "Sports", "Business"}, c.Categories())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
models:
  - id: 10
    name: Mina Park
    category: Beauty
    ethnicity: Korean
    age_range: 24-29
    featured: true
`), 0o600))

	c, err := catalog.Load(path)
	require.NoError(t, err)
	require.Len(t, c.All(), 1)
	assert.Equal(t, "24-29", c.All()[0].AgeRange)

	dup := filepath.Join(dir, "dup.yaml")
	require.NoError(t, os.WriteFile(dup, []byte("models:\n  - id: 1\n    name: A\n  - id: 1\n    name: B\n"), 0o600))
	_, err = catalog.Load(dup)
	assert.Error(t, err)

	_, err = catalog.Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestModesAndShowcase(t *testing.T) {
	m, err := catalog.ParseMode("projects")
	require.NoError(t, err)
	assert.Equal(t, catalog.ModeProjects, m)
	_, err = catalog.ParseMode("settings")
	assert.Error(t, err)

	assert.Len(t, catalog.Tools(), 6)
	assert.Len(t, catalog.Workflow(), 4)
	projects := catalog.ShowcaseProjects()
	require.Len(t, projects, 2)
	assert.Equal(t, catalog.ProjectReview, projects[1].Status)
}
