// Package wizard drives one project creation session: the ordered steps, the
// draft they edit and the handoff to persistence on save.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"studio-wizard-backend/internal/catalog"
	"studio-wizard-backend/internal/events"
	"studio-wizard-backend/internal/gallery"
	"studio-wizard-backend/internal/simclock"
	"studio-wizard-backend/internal/staging"
	"studio-wizard-backend/internal/validation"
)

var (
	ErrClosed         = errors.New("wizard session is closed")
	ErrStepOutOfRange = errors.New("step out of range")
)

// Persister receives the draft on save and exit.
type Persister interface {
	Persist(ctx context.Context, sessionID uuid.UUID, draft ProjectDraft) error
}

type PersistFunc func(ctx context.Context, sessionID uuid.UUID, draft ProjectDraft) error

func (fn PersistFunc) Persist(ctx context.Context, sessionID uuid.UUID, draft ProjectDraft) error {
	return fn(ctx, sessionID, draft)
}

// Notifier publishes session events to whoever is listening.
type Notifier interface {
	Publish(ctx context.Context, sessionID uuid.UUID, event string, payload map[string]interface{}) error
}

type Options struct {
	ID        uuid.UUID
	Clock     simclock.Clock
	Catalog   *catalog.Catalog
	Validator *validation.Simulator
	Gallery   *gallery.Gallery
	Persister Persister
	Notifier  Notifier
	Logger    *zap.Logger
	// PreviewURL derives the display handle of a staged file.
	PreviewURL func(sessionID, fileID uuid.UUID) string
}

type Controller struct {
	id        uuid.UUID
	catalog   *catalog.Catalog
	validator *validation.Simulator
	gallery   *gallery.Gallery
	persister Persister
	notifier  Notifier
	logger    *zap.Logger
	preview   staging.PreviewFunc

	mu       sync.Mutex
	step     Step
	draft    ProjectDraft
	progress map[uuid.UUID]int
	closed   bool
}

func New(opts Options) *Controller {
	if opts.ID == uuid.Nil {
		opts.ID = uuid.New()
	}
	if opts.Clock == nil {
		opts.Clock = simclock.Real()
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.Validator == nil {
		opts.Validator = validation.NewSimulator(validation.WithClock(opts.Clock))
	}
	if opts.Gallery == nil {
		opts.Gallery = gallery.New(gallery.WithClock(opts.Clock))
	}
	if opts.Persister == nil {
		opts.Persister = PersistFunc(func(context.Context, uuid.UUID, ProjectDraft) error { return nil })
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	c := &Controller{
		id:        opts.ID,
		catalog:   opts.Catalog,
		validator: opts.Validator,
		gallery:   opts.Gallery,
		persister: opts.Persister,
		notifier:  opts.Notifier,
		logger:    opts.Logger.With(zap.String("session_id", opts.ID.String())),
		step:      StepBrief,
		draft:     NewDraft(opts.Clock.Now()),
		progress:  make(map[uuid.UUID]int),
	}
	if opts.PreviewURL != nil {
		c.preview = func(fileID uuid.UUID) string { return opts.PreviewURL(opts.ID, fileID) }
	}
	return c
}

func (c *Controller) ID() uuid.UUID {
	return c.id
}

func (c *Controller) Catalog() *catalog.Catalog {
	return c.catalog
}

func (c *Controller) Gallery() *gallery.Gallery {
	return c.gallery
}

func (c *Controller) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// Next moves forward one step. It is a no-op on the last step.
func (c *Controller) Next() (Step, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return c.step, ErrClosed
	}
	if c.step < StepGenerate {
		c.step++
	}
	return c.step, nil
}

// Prev moves back one step. It is a no-op on the first step.
func (c *Controller) Prev() (Step, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return c.step, ErrClosed
	}
	if c.step > StepBrief {
		c.step--
	}
	return c.step, nil
}

func (c *Controller) Jump(s Step) error {
	if !s.Valid() {
		return fmt.Errorf("%w: %d", ErrStepOutOfRange, s)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.step = s
	return nil
}

// Draft returns a copy of the current draft.
func (c *Controller) Draft() ProjectDraft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.Clone()
}

func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Merge applies p on top of the draft. Calls are applied in the order they
// acquire the controller, and only the keys set in p change.
func (c *Controller) Merge(p DraftPatch) error {
	return c.Update(func(ProjectDraft) (DraftPatch, error) { return p, nil })
}

// Update computes a patch from the latest draft and merges it atomically.
// Work that resolves asynchronously must go through Update so it never
// writes back a stale copy of keys it did not compute.
func (c *Controller) Update(fn func(current ProjectDraft) (DraftPatch, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	patch, err := fn(c.draft.Clone())
	if err != nil || patch.Empty() {
		return err
	}
	c.draft.apply(patch)
	return nil
}

// SaveAndExit folds the gallery into the draft, hands it to the persister and
// closes the session. A persister failure leaves the session open.
func (c *Controller) SaveAndExit(ctx context.Context) (ProjectDraft, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ProjectDraft{}, ErrClosed
	}
	c.draft.GeneratedImages = c.gallery.Artifacts()
	draft := c.draft.Clone()
	if err := c.persister.Persist(ctx, c.id, draft); err != nil {
		c.mu.Unlock()
		return ProjectDraft{}, fmt.Errorf("failed to persist draft: %w", err)
	}
	c.closed = true
	c.mu.Unlock()

	c.logger.Info("project saved",
		zap.String("name", draft.Name),
		zap.Int("product_images", len(draft.ProductImages)),
		zap.Int("generated_images", len(draft.GeneratedImages)))
	c.publish(events.ProjectSaved, events.ProjectSavedPayload(c.id, draft.Name))
	return draft, nil
}

// Close discards the draft without saving.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.closed = true
	c.draft = ProjectDraft{}
	c.progress = make(map[uuid.UUID]int)
	c.mu.Unlock()

	c.logger.Info("project discarded")
	c.publish(events.ProjectDiscarded, events.ProjectDiscardedPayload(c.id))
	return nil
}

// File looks a staged file up by id across every upload zone.
func (c *Controller) File(id uuid.UUID) (staging.File, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if a, _, ok := c.draft.BriefAssets.Find(id); ok {
		return a.File, true
	}
	for _, a := range c.draft.UploadedModelImages {
		if a.ID == id {
			return a.File, true
		}
	}
	if img, ok := c.draft.ProductImages.Find(id); ok {
		return img.File, true
	}
	return staging.File{}, false
}

func (c *Controller) publish(event string, payload map[string]interface{}) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.Publish(context.Background(), c.id, event, payload); err != nil {
		c.logger.Warn("failed to publish event", zap.String("event", event), zap.Error(err))
	}
}
