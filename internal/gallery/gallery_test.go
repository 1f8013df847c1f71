package gallery_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio-wizard-backend/internal/gallery"
	"studio-wizard-backend/internal/simclock"
)

func newGallery(opts ...gallery.Option) (*gallery.Gallery, *simclock.Manual) {
	clock := simclock.NewManual(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	n := 0
	base := []gallery.Option{
		gallery.WithClock(clock),
		gallery.WithIDs(func() string {
			n++
			return fmt.Sprintf("art-%d", n)
		}),
	}
	return gallery.New(append(base, opts...)...), clock
}

func generated(t *testing.T, g *gallery.Gallery, clock *simclock.Manual) []gallery.Artifact {
	t.Helper()
	var batch []gallery.Artifact
	require.NoError(t, g.Generate(func(b []gallery.Artifact) { batch = b }))
	clock.Advance(gallery.GenerateDelay)
	require.Len(t, batch, gallery.BatchSize)
	return batch
}

func TestGenerate_AccumulatesBatches(t *testing.T) {
	g, clock := newGallery()

	first := generated(t, g, clock)
	assert.Len(t, g.Artifacts(), 4)
	assert.Equal(t, "Generated image 1 based on project brief", first[0].PromptText)
	assert.Equal(t, gallery.PlaceholderURL, first[0].URL)

	generated(t, g, clock)
	all := g.Artifacts()
	require.Len(t, all, 8)
	assert.Equal(t, first, all[:4])
}

func TestGenerate_BlocksWhilePending(t *testing.T) {
	g, clock := newGallery()

	require.NoError(t, g.Generate(nil))
	assert.True(t, g.Generating())
	assert.ErrorIs(t, g.Generate(nil), gallery.ErrGenerationInFlight)

	clock.Advance(gallery.GenerateDelay - time.Millisecond)
	assert.Empty(t, g.Artifacts())
	assert.True(t, g.Generating())

	clock.Advance(time.Millisecond)
	assert.False(t, g.Generating())
	assert.Len(t, g.Artifacts(), 4)
	assert.NoError(t, g.Generate(nil))
}

func TestToggleFavorite_IsItsOwnInverse(t *testing.T) {
	g, clock := newGallery()
	batch := generated(t, g, clock)

	on, err := g.ToggleFavorite(batch[2].ID)
	require.NoError(t, err)
	assert.True(t, on.IsFavorited)

	off, err := g.ToggleFavorite(batch[2].ID)
	require.NoError(t, err)
	assert.Equal(t, batch[2].IsFavorited, off.IsFavorited)

	_, err = g.ToggleFavorite("missing")
	assert.ErrorIs(t, err, gallery.ErrArtifactNotFound)
}

func TestAddComment(t *testing.T) {
	g, clock := newGallery()
	batch := generated(t, g, clock)

	c, err := g.AddComment(batch[0].ID, "", "  Love the light  ")
	require.NoError(t, err)
	assert.Equal(t, gallery.DefaultAuthor, c.Author)
	assert.Equal(t, "Love the light", c.Message)
	assert.Equal(t, clock.Now(), c.Timestamp)

	_, err = g.AddComment(batch[0].ID, "Sarah M.", "Agreed")
	require.NoError(t, err)
	_, err = g.AddComment(batch[0].ID, "", "   ")
	assert.ErrorIs(t, err, gallery.ErrEmptyComment)
	_, err = g.AddComment("missing", "", "hi")
	assert.ErrorIs(t, err, gallery.ErrArtifactNotFound)

	got, ok := g.Get(batch[0].ID)
	require.True(t, ok)
	require.Len(t, got.Comments, 2)
	assert.Equal(t, "Sarah M.", got.Comments[1].Author)

	got.Comments[0].Message = "mutated copy"
	again, _ := g.Get(batch[0].ID)
	assert.Equal(t, "Love the light", again.Comments[0].Message)
}

func TestRegenerate(t *testing.T) {
	g, clock := newGallery()
	batch := generated(t, g, clock)

	_, err := g.Regenerate(batch[1].ID, "  ", nil)
	assert.ErrorIs(t, err, gallery.ErrEmptyPrompt)

	var done *gallery.Artifact
	updated, err := g.Regenerate(batch[1].ID, "Studio shot on velvet", func(a gallery.Artifact) { done = &a })
	require.NoError(t, err)
	assert.Equal(t, "Studio shot on velvet", updated.PromptText)
	assert.True(t, updated.Regenerating)

	clock.Advance(gallery.RegenerateDelay)
	require.NotNil(t, done)
	assert.False(t, done.Regenerating)
	assert.Equal(t, 1, done.Revision)
	assert.Equal(t, "Studio shot on velvet", done.PromptText)
}

func TestRegenerate_DeletedMeanwhile(t *testing.T) {
	g, clock := newGallery()
	batch := generated(t, g, clock)

	called := false
	_, err := g.Regenerate(batch[0].ID, "new", func(gallery.Artifact) { called = true })
	require.NoError(t, err)
	require.NoError(t, g.Delete(batch[0].ID))

	clock.Advance(gallery.RegenerateDelay)
	assert.False(t, called)
	assert.Len(t, g.Artifacts(), 3)
}

func TestDelete_ByID(t *testing.T) {
	g, clock := newGallery()
	batch := generated(t, g, clock)

	require.NoError(t, g.Delete(batch[1].ID))
	assert.ErrorIs(t, g.Delete(batch[1].ID), gallery.ErrArtifactNotFound)

	all := g.Artifacts()
	require.Len(t, all, 3)
	assert.Equal(t, []string{batch[0].ID, batch[2].ID, batch[3].ID}, []string{all[0].ID, all[1].ID, all[2].ID})
}

func TestShowcaseSeed(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	g, clock := newGallery(gallery.WithSeed(gallery.Showcase(now)))

	seed := g.Artifacts()
	require.Len(t, seed, 4)
	assert.True(t, seed[1].IsFavorited)
	assert.Len(t, seed[1].Comments, 1)

	generated(t, g, clock)
	assert.Len(t, g.Artifacts(), 8)
}
