// Package supabase wraps the Supabase storage and PostgREST clients used to
// keep saved drafts in a hosted project.
package supabase

import (
	"encoding/json"
	"fmt"

	"github.com/supabase-community/supabase-go"
)

// Table reads and writes rows of one PostgREST table.
type Table struct {
	client *supabase.Client
	name   string
}

func NewTable(supabaseURL, apiKey, name string) (*Table, error) {
	client, err := supabase.NewClient(supabaseURL, apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return &Table{client: client, name: name}, nil
}

func (t *Table) Insert(row interface{}) error {
	if _, _, err := t.client.From(t.name).Insert(row, false, "", "", "").Execute(); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", t.name, err)
	}
	return nil
}

// Select decodes every row into out, optionally filtered by column = value.
func (t *Table) Select(out interface{}, column, value string) error {
	query := t.client.From(t.name).Select("*", "", false)
	if column != "" {
		query = query.Eq(column, value)
	}
	data, _, err := query.Execute()
	if err != nil {
		return fmt.Errorf("failed to select from %s: %w", t.name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s rows: %w", t.name, err)
	}
	return nil
}
