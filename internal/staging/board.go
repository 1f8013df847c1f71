package staging

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type Category string

const (
	MoodBoards      Category = "moodBoards"
	StyleFrames     Category = "styleFrames"
	ColorPalettes   Category = "colorPalettes"
	OtherReferences Category = "otherReferences"
)

// Categories returns the brief categories in display order.
func Categories() []Category {
	return []Category{MoodBoards, StyleFrames, ColorPalettes, OtherReferences}
}

func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// HasDescriptions reports whether the category keeps a free-text description
// next to every file.
func (c Category) HasDescriptions() bool {
	return c == OtherReferences
}

// Board is the categorized collection of brief reference files. Descriptions
// live on the asset itself, so they stay aligned with the file order through
// every add and remove.
//
// Board methods mutate the receiver; callers sharing a Board across goroutines
// must Clone it first.
type Board struct {
	items map[Category][]Asset
}

func NewBoard() Board {
	return Board{items: make(map[Category][]Asset)}
}

// AddFiles appends files to the category, keeping earlier items in place.
// Duplicate names are distinct entries. descriptions is only accepted for
// categories that carry them; missing entries default to "".
func (b *Board) AddFiles(c Category, files []File, descriptions ...string) ([]Asset, error) {
	if _, err := ParseCategory(string(c)); err != nil {
		return nil, err
	}
	if len(descriptions) > 0 && !c.HasDescriptions() {
		return nil, fmt.Errorf("%w: %s", ErrDescriptionsUnsupported, c)
	}
	if b.items == nil {
		b.items = make(map[Category][]Asset)
	}

	added := newAssets(files)
	for i := range added {
		if i < len(descriptions) {
			added[i].Description = descriptions[i]
		}
	}
	b.items[c] = append(append([]Asset(nil), b.items[c]...), added...)
	return added, nil
}

// RemoveFile removes the file at index, and its description with it.
func (b *Board) RemoveFile(c Category, index int) error {
	if _, err := ParseCategory(string(c)); err != nil {
		return err
	}
	next, err := RemoveAssetAt(b.items[c], index)
	if err != nil {
		return err
	}
	b.items[c] = next
	return nil
}

func (b *Board) RemoveByID(c Category, id uuid.UUID) error {
	if _, err := ParseCategory(string(c)); err != nil {
		return err
	}
	next, err := RemoveAsset(b.items[c], id)
	if err != nil {
		return err
	}
	b.items[c] = next
	return nil
}

func (b *Board) SetDescription(c Category, id uuid.UUID, text string) error {
	if !c.HasDescriptions() {
		return fmt.Errorf("%w: %s", ErrDescriptionsUnsupported, c)
	}
	for i, a := range b.items[c] {
		if a.ID == id {
			next := append([]Asset(nil), b.items[c]...)
			next[i].Description = text
			b.items[c] = next
			return nil
		}
	}
	return ErrFileNotFound
}

// Files returns a copy of the category's assets in order.
func (b Board) Files(c Category) []Asset {
	return append([]Asset(nil), b.items[c]...)
}

// Descriptions returns the descriptions aligned with Files. Categories
// without descriptions return nil.
func (b Board) Descriptions(c Category) []string {
	if !c.HasDescriptions() {
		return nil
	}
	out := make([]string, len(b.items[c]))
	for i, a := range b.items[c] {
		out[i] = a.Description
	}
	return out
}

func (b Board) Len(c Category) int {
	return len(b.items[c])
}

func (b Board) Total() int {
	n := 0
	for _, assets := range b.items {
		n += len(assets)
	}
	return n
}

// Find looks an asset up by id across all categories.
func (b Board) Find(id uuid.UUID) (Asset, Category, bool) {
	for _, c := range Categories() {
		for _, a := range b.items[c] {
			if a.ID == id {
				return a, c, true
			}
		}
	}
	return Asset{}, "", false
}

func (b Board) Clone() Board {
	out := NewBoard()
	for c, assets := range b.items {
		out.items[c] = append([]Asset(nil), assets...)
	}
	return out
}

// MarshalJSON renders every category, empty ones included.
func (b Board) MarshalJSON() ([]byte, error) {
	view := make(map[Category][]Asset, len(Categories()))
	for _, c := range Categories() {
		view[c] = append([]Asset{}, b.items[c]...)
	}
	return json.Marshal(view)
}
