package wizard_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"studio-wizard-backend/internal/gallery"
	"studio-wizard-backend/internal/simclock"
	"studio-wizard-backend/internal/staging"
	"studio-wizard-backend/internal/validation"
	"studio-wizard-backend/internal/wizard"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var epoch = time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) Publish(_ context.Context, _ uuid.UUID, event string, _ map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.events...)
}

type fixture struct {
	clock    *simclock.Manual
	ctrl     *wizard.Controller
	notifier *recorder
	logs     *observer.ObservedLogs
	saved    []wizard.ProjectDraft
	saveErr  error
}

func newFixture(t *testing.T, acceptable bool) *fixture {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	f := &fixture{clock: simclock.NewManual(epoch), notifier: &recorder{}, logs: logs}
	validator := validation.NewSimulator(
		validation.WithClock(f.clock),
		validation.WithQuality(validation.FixedQuality(acceptable)),
		validation.WithDelay(validation.FixedDelay(time.Second)),
	)
	f.ctrl = wizard.New(wizard.Options{
		Clock:     f.clock,
		Validator: validator,
		Gallery:   gallery.New(gallery.WithClock(f.clock)),
		Notifier:  f.notifier,
		Logger:    zap.New(core),
		Persister: wizard.PersistFunc(func(_ context.Context, _ uuid.UUID, d wizard.ProjectDraft) error {
			if f.saveErr != nil {
				return f.saveErr
			}
			f.saved = append(f.saved, d)
			return nil
		}),
	})
	return f
}

func image(name string, size int64) staging.File {
	return staging.File{Name: name, MimeType: "image/jpeg", Size: size}
}

func TestNewDraft(t *testing.T) {
	f := newFixture(t, true)
	d := f.ctrl.Draft()

	assert.Equal(t, "New Project 3/9/2024", d.Name)
	assert.Equal(t, wizard.StepBrief, f.ctrl.Step())
	assert.Zero(t, d.BriefAssets.Total())
	assert.Empty(t, d.ProductImages)
	assert.Empty(t, d.GeneratedImages)
}

func TestStepNavigation(t *testing.T) {
	f := newFixture(t, true)

	s, err := f.ctrl.Prev()
	require.NoError(t, err)
	assert.Equal(t, wizard.StepBrief, s)

	for i := 0; i < 5; i++ {
		s, err = f.ctrl.Next()
		require.NoError(t, err)
	}
	assert.Equal(t, wizard.StepGenerate, s)

	require.NoError(t, f.ctrl.Jump(wizard.StepModel))
	assert.Equal(t, wizard.StepModel, f.ctrl.Step())

	assert.ErrorIs(t, f.ctrl.Jump(0), wizard.ErrStepOutOfRange)
	assert.ErrorIs(t, f.ctrl.Jump(5), wizard.ErrStepOutOfRange)
	assert.Equal(t, wizard.StepModel, f.ctrl.Step())
}

func TestMergeKeepsOtherKeys(t *testing.T) {
	tests := []struct {
		name        string
		renameFirst   bool
	}{
		{name: "rename before validation resolves", renameFirst: true},
		{name: "rename after validation resolves", renameFirst: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)

			_, err := f.ctrl.StageProducts([]staging.File{image("ring.jpg", 1024)})
			require.NoError(t, err)
			if tt.renameFirst {
				require.NoError(t, f.ctrl.Merge(wizard.NamePatch("Summer")))
				f.clock.Advance(2 * time.Second)
			} else {
				f.clock.Advance(2 * time.Second)
				require.NoError(t, f.ctrl.Merge(wizard.NamePatch("Summer")))
			}

			d := f.ctrl.Draft()
			assert.Equal(t, "Summer", d.Name)
			require.Len(t, d.ProductImages, 1)
			assert.Equal(t, staging.StatusValid, d.ProductImages[0].Status)
		})
	}
}

func TestEmptyPatchChangesNothing(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.ctrl.Merge(wizard.NamePatch("Summer")))
	before := f.ctrl.Draft()

	assert.True(t, wizard.DraftPatch{}.Empty())
	assert.False(t, wizard.NotesPatch("").Empty())
	require.NoError(t, f.ctrl.Merge(wizard.DraftPatch{}))
	assert.Equal(t, before, f.ctrl.Draft())

	require.NoError(t, f.ctrl.Close())
	assert.ErrorIs(t, f.ctrl.Merge(wizard.DraftPatch{}), wizard.ErrClosed)
}

func TestDraftIsACopy(t *testing.T) {
	f := newFixture(t, true)
	_, err := f.ctrl.AddModelImages([]staging.File{image("pose.jpg", 10)})
	require.NoError(t, err)

	d := f.ctrl.Draft()
	d.UploadedModelImages[0].Description = "changed"
	d.Name = "changed"

	fresh := f.ctrl.Draft()
	assert.Empty(t, fresh.UploadedModelImages[0].Description)
	assert.NotEqual(t, "changed", fresh.Name)
}

func TestBriefOperations(t *testing.T) {
	f := newFixture(t, true)

	added, err := f.ctrl.AddBriefFiles(staging.MoodBoards, []staging.File{image("a.jpg", 1), image("b.jpg", 1)}, "sunset", "beach")
	require.NoError(t, err)
	require.Len(t, added, 2)

	require.NoError(t, f.ctrl.SetBriefDescription(staging.MoodBoards, added[1].ID, "dunes"))
	require.NoError(t, f.ctrl.RemoveBriefFile(staging.MoodBoards, 0))

	d := f.ctrl.Draft()
	assert.Equal(t, []string{"dunes"}, d.BriefAssets.Descriptions(staging.MoodBoards))

	require.NoError(t, f.ctrl.RemoveBriefFileByID(staging.MoodBoards, added[1].ID))
	assert.Zero(t, f.ctrl.Draft().BriefAssets.Total())

	assert.ErrorIs(t, f.ctrl.RemoveBriefFile(staging.StyleFrames, 0), staging.ErrIndexOutOfRange)
	_, err = f.ctrl.AddBriefFiles(staging.Category("sketches"), []staging.File{image("c.jpg", 1)})
	assert.ErrorIs(t, err, staging.ErrUnknownCategory)
}

func TestToggleModel(t *testing.T) {
	f := newFixture(t, true)

	selected, err := f.ctrl.ToggleModel(2)
	require.NoError(t, err)
	assert.True(t, selected)
	selected, err = f.ctrl.ToggleModel(4)
	require.NoError(t, err)
	assert.True(t, selected)

	d := f.ctrl.Draft()
	require.Len(t, d.SelectedModels, 2)
	assert.Equal(t, 2, d.SelectedModels[0].ID)

	selected, err = f.ctrl.ToggleModel(2)
	require.NoError(t, err)
	assert.False(t, selected)
	d = f.ctrl.Draft()
	require.Len(t, d.SelectedModels, 1)
	assert.Equal(t, 4, d.SelectedModels[0].ID)

	_, err = f.ctrl.ToggleModel(42)
	assert.Error(t, err)
}

func TestModelImages(t *testing.T) {
	f := newFixture(t, true)
	added, err := f.ctrl.AddModelImages([]staging.File{image("a.jpg", 1), image("b.jpg", 1), image("c.jpg", 1)})
	require.NoError(t, err)

	require.NoError(t, f.ctrl.RemoveModelImage(0))
	require.NoError(t, f.ctrl.RemoveModelImageByID(added[2].ID))

	d := f.ctrl.Draft()
	require.Len(t, d.UploadedModelImages, 1)
	assert.Equal(t, added[1].ID, d.UploadedModelImages[0].ID)
	assert.ErrorIs(t, f.ctrl.RemoveModelImage(3), staging.ErrIndexOutOfRange)
}

func TestProductLifecycle(t *testing.T) {
	f := newFixture(t, true)

	added, err := f.ctrl.StageProducts([]staging.File{image("ring.jpg", 1024)})
	require.NoError(t, err)
	id := added[0].ID
	assert.Equal(t, staging.StatusUploading, f.ctrl.Draft().ProductImages[0].Status)
	progress, ok := f.ctrl.ProductProgress()[id]
	assert.True(t, ok)
	assert.Zero(t, progress)

	f.clock.Advance(0)
	assert.Equal(t, staging.StatusProcessing, f.ctrl.Draft().ProductImages[0].Status)

	f.clock.Advance(300 * time.Millisecond)
	assert.Equal(t, 30, f.ctrl.ProductProgress()[id])

	f.clock.Advance(time.Second)
	img := f.ctrl.Draft().ProductImages[0]
	assert.Equal(t, staging.StatusValid, img.Status)
	assert.Empty(t, img.ErrorMessage)
	assert.Equal(t, 100, f.ctrl.ProductProgress()[id])

	assert.Equal(t, []string{"upload_started", "validation_completed"}, f.notifier.Events())
}

func TestOversizedProduct(t *testing.T) {
	f := newFixture(t, true)

	_, err := f.ctrl.StageProducts([]staging.File{image("huge.jpg", 15*1024*1024)})
	require.NoError(t, err)
	f.clock.Advance(2 * time.Second)

	img := f.ctrl.Draft().ProductImages[0]
	assert.Equal(t, staging.StatusError, img.Status)
	assert.Equal(t, "File too large (max 10MB)", img.ErrorMessage)

	require.NoError(t, f.ctrl.RemoveProductAt(0))
	assert.Empty(t, f.ctrl.Draft().ProductImages)
	assert.Empty(t, f.ctrl.ProductProgress())
}

func TestPoorQualityAndWrongType(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.ctrl.StageProducts([]staging.File{
		image("blurry.jpg", 2048),
		{Name: "spec.pdf", MimeType: "application/pdf", Size: 2048},
	})
	require.NoError(t, err)
	f.clock.Advance(2 * time.Second)

	d := f.ctrl.Draft()
	assert.Equal(t, "Poor image quality detected", d.ProductImages[0].ErrorMessage)
	assert.Equal(t, "Invalid file type", d.ProductImages[1].ErrorMessage)
}

func TestRemoveDuringValidation(t *testing.T) {
	f := newFixture(t, true)

	added, err := f.ctrl.StageProducts([]staging.File{image("a.jpg", 1), image("b.jpg", 1)})
	require.NoError(t, err)
	f.clock.Advance(200 * time.Millisecond)

	require.NoError(t, f.ctrl.RemoveProduct(added[0].ID))
	f.clock.Advance(2 * time.Second)

	d := f.ctrl.Draft()
	require.Len(t, d.ProductImages, 1)
	assert.Equal(t, added[1].ID, d.ProductImages[0].ID)
	assert.Equal(t, staging.StatusValid, d.ProductImages[0].Status)
	assert.NotContains(t, f.ctrl.ProductProgress(), added[0].ID)

	assert.ErrorIs(t, f.ctrl.RemoveProduct(added[0].ID), staging.ErrFileNotFound)
}

func TestReplaceDropsStaleResult(t *testing.T) {
	f := newFixture(t, true)

	added, err := f.ctrl.StageProducts([]staging.File{image("huge.jpg", 20*1024*1024)})
	require.NoError(t, err)
	id := added[0].ID
	f.clock.Advance(500 * time.Millisecond)

	replaced, err := f.ctrl.ReplaceProduct(id, image("small.jpg", 512))
	require.NoError(t, err)
	assert.Equal(t, staging.StatusUploading, replaced.Status)

	// the first attempt resolves here and must not win
	f.clock.Advance(600 * time.Millisecond)
	img := f.ctrl.Draft().ProductImages[0]
	assert.NotEqual(t, staging.StatusError, img.Status)

	f.clock.Advance(time.Second)
	img = f.ctrl.Draft().ProductImages[0]
	assert.Equal(t, staging.StatusValid, img.Status)
	assert.Equal(t, "small.jpg", img.File.Name)
}

func TestGenerateFoldsIntoDraft(t *testing.T) {
	f := newFixture(t, true)

	require.NoError(t, f.ctrl.Generate())
	assert.ErrorIs(t, f.ctrl.Generate(), gallery.ErrGenerationInFlight)

	f.clock.Advance(gallery.GenerateDelay)
	assert.Len(t, f.ctrl.Draft().GeneratedImages, gallery.BatchSize)

	require.NoError(t, f.ctrl.Generate())
	f.clock.Advance(gallery.GenerateDelay)
	assert.Len(t, f.ctrl.Draft().GeneratedImages, 2*gallery.BatchSize)

	assert.Equal(t, []string{"generation_started", "generation_completed", "generation_started", "generation_completed"}, f.notifier.Events())
}

func TestSaveAndExit(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.ctrl.Merge(wizard.NamePatch("Autumn")))

	require.NoError(t, f.ctrl.Generate())
	f.clock.Advance(gallery.GenerateDelay)
	artifacts := f.ctrl.Gallery().Artifacts()
	_, err := f.ctrl.Gallery().ToggleFavorite(artifacts[0].ID)
	require.NoError(t, err)

	saved, err := f.ctrl.SaveAndExit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Autumn", saved.Name)
	require.Len(t, f.saved, 1)
	assert.True(t, f.saved[0].GeneratedImages[0].IsFavorited)
	assert.True(t, f.ctrl.Closed())

	_, err = f.ctrl.SaveAndExit(context.Background())
	assert.ErrorIs(t, err, wizard.ErrClosed)
	_, err = f.ctrl.Next()
	assert.ErrorIs(t, err, wizard.ErrClosed)
	assert.ErrorIs(t, f.ctrl.Merge(wizard.NamePatch("late")), wizard.ErrClosed)
}

func TestSaveFailureKeepsSessionOpen(t *testing.T) {
	f := newFixture(t, true)
	f.saveErr = errors.New("disk full")

	_, err := f.ctrl.SaveAndExit(context.Background())
	assert.ErrorContains(t, err, "disk full")
	assert.False(t, f.ctrl.Closed())

	f.saveErr = nil
	_, err = f.ctrl.SaveAndExit(context.Background())
	require.NoError(t, err)
	assert.Len(t, f.saved, 1)
}

func TestCloseDropsPendingWork(t *testing.T) {
	f := newFixture(t, true)

	_, err := f.ctrl.StageProducts([]staging.File{image("a.jpg", 1)})
	require.NoError(t, err)
	require.NoError(t, f.ctrl.Close())
	f.clock.Advance(2 * time.Second)

	assert.Empty(t, f.saved)
	assert.ErrorIs(t, f.ctrl.Close(), wizard.ErrClosed)
	assert.Equal(t, []string{"upload_started", "project_discarded"}, f.notifier.Events())
}

func TestFileLookup(t *testing.T) {
	f := newFixture(t, true)
	brief, err := f.ctrl.AddBriefFiles(staging.StyleFrames, []staging.File{image("frame.jpg", 3)})
	require.NoError(t, err)
	products, err := f.ctrl.StageProducts([]staging.File{image("bag.jpg", 4)})
	require.NoError(t, err)

	got, ok := f.ctrl.File(brief[0].ID)
	require.True(t, ok)
	assert.Equal(t, "frame.jpg", got.Name)
	got, ok = f.ctrl.File(products[0].ID)
	require.True(t, ok)
	assert.Equal(t, "bag.jpg", got.Name)

	_, ok = f.ctrl.File(uuid.New())
	assert.False(t, ok)
	f.clock.Advance(2 * time.Second)
}

func TestSteps(t *testing.T) {
	steps := wizard.Steps()
	require.Len(t, steps, wizard.StepCount)
	assert.Equal(t, "Brief & Concept", steps[0].Title)
	assert.Equal(t, "Generate & Edit", steps[3].Title)
	assert.True(t, wizard.StepProduct.Valid())
	assert.False(t, wizard.Step(0).Valid())
}

func TestGalleryOperationsSyncDraft(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.ctrl.Generate())
	f.clock.Advance(gallery.GenerateDelay)
	id := f.ctrl.Draft().GeneratedImages[0].ID

	_, err := f.ctrl.ToggleFavorite(id)
	require.NoError(t, err)
	_, err = f.ctrl.AddComment(id, "", "love the light")
	require.NoError(t, err)

	a, err := f.ctrl.Regenerate(id, "golden hour on the beach")
	require.NoError(t, err)
	assert.True(t, a.Regenerating)

	d := f.ctrl.Draft()
	assert.True(t, d.GeneratedImages[0].IsFavorited)
	require.Len(t, d.GeneratedImages[0].Comments, 1)
	assert.Equal(t, gallery.DefaultAuthor, d.GeneratedImages[0].Comments[0].Author)
	assert.Equal(t, "golden hour on the beach", d.GeneratedImages[0].PromptText)

	f.clock.Advance(gallery.RegenerateDelay)
	d = f.ctrl.Draft()
	assert.False(t, d.GeneratedImages[0].Regenerating)
	assert.Equal(t, 1, d.GeneratedImages[0].Revision)

	require.NoError(t, f.ctrl.DeleteArtifact(id))
	assert.Len(t, f.ctrl.Draft().GeneratedImages, gallery.BatchSize-1)
	assert.ErrorIs(t, f.ctrl.DeleteArtifact(id), gallery.ErrArtifactNotFound)
}

func TestConcurrentGallerySyncsKeepLatest(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.ctrl.Generate())
	f.clock.Advance(gallery.GenerateDelay)
	artifacts := f.ctrl.Draft().GeneratedImages
	require.Len(t, artifacts, gallery.BatchSize)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ctrl.ToggleFavorite(artifacts[i%len(artifacts)].ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, f.ctrl.Gallery().Artifacts(), f.ctrl.Draft().GeneratedImages)
}

func TestGalleryResultAfterClose(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.ctrl.Generate())
	require.NoError(t, f.ctrl.Close())
	f.clock.Advance(gallery.GenerateDelay)

	entries := f.logs.FilterMessage("gallery result after close").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Zero(t, f.logs.FilterMessage("failed to sync gallery").Len())
	assert.Equal(t, []string{"generation_started", "project_discarded"}, f.notifier.Events())
}
