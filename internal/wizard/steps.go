package wizard

import (
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"studio-wizard-backend/internal/catalog"
	"studio-wizard-backend/internal/events"
	"studio-wizard-backend/internal/gallery"
	"studio-wizard-backend/internal/staging"
	"studio-wizard-backend/internal/validation"
)

// Brief step

func (c *Controller) AddBriefFiles(cat staging.Category, files []staging.File, descriptions ...string) ([]staging.Asset, error) {
	var added []staging.Asset
	err := c.Update(func(d ProjectDraft) (DraftPatch, error) {
		board := d.BriefAssets
		var err error
		added, err = board.AddFiles(cat, files, descriptions...)
		if err != nil {
			return DraftPatch{}, err
		}
		return DraftPatch{BriefAssets: &board}, nil
	})
	return added, err
}

func (c *Controller) RemoveBriefFile(cat staging.Category, index int) error {
	return c.Update(func(d ProjectDraft) (DraftPatch, error) {
		board := d.BriefAssets
		if err := board.RemoveFile(cat, index); err != nil {
			return DraftPatch{}, err
		}
		return DraftPatch{BriefAssets: &board}, nil
	})
}

func (c *Controller) RemoveBriefFileByID(cat staging.Category, id uuid.UUID) error {
	return c.Update(func(d ProjectDraft) (DraftPatch, error) {
		board := d.BriefAssets
		if err := board.RemoveByID(cat, id); err != nil {
			return DraftPatch{}, err
		}
		return DraftPatch{BriefAssets: &board}, nil
	})
}

func (c *Controller) SetBriefDescription(cat staging.Category, id uuid.UUID, text string) error {
	return c.Update(func(d ProjectDraft) (DraftPatch, error) {
		board := d.BriefAssets
		if err := board.SetDescription(cat, id, text); err != nil {
			return DraftPatch{}, err
		}
		return DraftPatch{BriefAssets: &board}, nil
	})
}

// Model step

// ToggleModel selects the catalog model if it is not selected yet and
// deselects it otherwise. It reports whether the model is selected afterwards.
func (c *Controller) ToggleModel(modelID int) (bool, error) {
	model, err := c.catalog.Find(modelID)
	if err != nil {
		return false, err
	}

	selected := false
	err = c.Update(func(d ProjectDraft) (DraftPatch, error) {
		next := make([]catalog.Model, 0, len(d.SelectedModels)+1)
		found := false
		for _, m := range d.SelectedModels {
			if m.ID == model.ID {
				found = true
				continue
			}
			next = append(next, m)
		}
		if !found {
			next = append(next, model)
		}
		selected = !found
		return DraftPatch{SelectedModels: &next}, nil
	})
	return selected, err
}

func (c *Controller) AddModelImages(files []staging.File) ([]staging.Asset, error) {
	var added []staging.Asset
	err := c.Update(func(d ProjectDraft) (DraftPatch, error) {
		var next []staging.Asset
		next, added = staging.AppendAssets(d.UploadedModelImages, files)
		return DraftPatch{UploadedModelImages: &next}, nil
	})
	return added, err
}

func (c *Controller) RemoveModelImage(index int) error {
	return c.Update(func(d ProjectDraft) (DraftPatch, error) {
		next, err := staging.RemoveAssetAt(d.UploadedModelImages, index)
		if err != nil {
			return DraftPatch{}, err
		}
		return DraftPatch{UploadedModelImages: &next}, nil
	})
}

func (c *Controller) RemoveModelImageByID(id uuid.UUID) error {
	return c.Update(func(d ProjectDraft) (DraftPatch, error) {
		next, err := staging.RemoveAsset(d.UploadedModelImages, id)
		if err != nil {
			return DraftPatch{}, err
		}
		return DraftPatch{UploadedModelImages: &next}, nil
	})
}

// Product step

// StageProducts appends files as uploading product images and starts one
// validation per file. Results are applied by item id and attempt, so items
// removed or replaced in the meantime are left alone.
func (c *Controller) StageProducts(files []staging.File) ([]staging.ProductImage, error) {
	var added []staging.ProductImage
	err := c.Update(func(d ProjectDraft) (DraftPatch, error) {
		var next staging.Products
		next, added = d.ProductImages.Add(files, c.preview)
		for _, img := range added {
			c.progress[img.ID] = 0
		}
		return ProductsPatch(next), nil
	})
	if err != nil {
		return nil, err
	}

	c.publish(events.UploadStarted, events.UploadStartedPayload(c.id, len(added)))
	for _, img := range added {
		c.validate(img)
	}
	return added, nil
}

// ReplaceProduct swaps the file of a staged image, resets it to uploading and
// validates the new file. A result still pending for the old file is dropped.
func (c *Controller) ReplaceProduct(id uuid.UUID, f staging.File) (staging.ProductImage, error) {
	var replaced staging.ProductImage
	err := c.Update(func(d ProjectDraft) (DraftPatch, error) {
		next, img, err := d.ProductImages.Replace(id, f, c.preview)
		if err != nil {
			return DraftPatch{}, err
		}
		replaced = img
		return ProductsPatch(next), nil
	})
	if err != nil {
		return staging.ProductImage{}, err
	}

	c.setProgress(id, 0)
	c.validate(replaced)
	return replaced, nil
}

func (c *Controller) RemoveProduct(id uuid.UUID) error {
	err := c.Update(func(d ProjectDraft) (DraftPatch, error) {
		next, err := d.ProductImages.Remove(id)
		if err != nil {
			return DraftPatch{}, err
		}
		return ProductsPatch(next), nil
	})
	if err == nil {
		c.clearProgress(id)
	}
	return err
}

// RemoveProductAt removes by position. The index is resolved to an id under
// the controller lock, so it always refers to the current order.
func (c *Controller) RemoveProductAt(index int) error {
	var removed uuid.UUID
	err := c.Update(func(d ProjectDraft) (DraftPatch, error) {
		if index >= 0 && index < len(d.ProductImages) {
			removed = d.ProductImages[index].ID
		}
		next, err := d.ProductImages.RemoveAt(index)
		if err != nil {
			return DraftPatch{}, err
		}
		return ProductsPatch(next), nil
	})
	if err == nil {
		c.clearProgress(removed)
	}
	return err
}

// ProductProgress returns the simulated upload percentage per product id.
func (c *Controller) ProductProgress() map[uuid.UUID]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[uuid.UUID]int, len(c.progress))
	for id, p := range c.progress {
		out[id] = p
	}
	return out
}

func (c *Controller) validate(img staging.ProductImage) {
	id, attempt := img.ID, img.Attempt
	c.validator.Start(img.File, validation.Hooks{
		OnProcessing: func() {
			c.applyProductResult(id, func(p staging.Products) (staging.Products, error) {
				return p.Begin(id, attempt)
			})
		},
		OnProgress: func(percent int) {
			c.mu.Lock()
			defer c.mu.Unlock()
			if img, ok := c.draft.ProductImages.Find(id); ok && img.Attempt == attempt && !c.closed {
				c.progress[id] = percent
			}
		},
		OnResult: func(o validation.Outcome) {
			applied := c.applyProductResult(id, func(p staging.Products) (staging.Products, error) {
				return p.Resolve(id, attempt, o.Status, o.Reason)
			})
			if applied {
				c.logger.Debug("product validated",
					zap.String("image_id", id.String()),
					zap.String("status", string(o.Status)),
					zap.String("reason", o.Reason))
				c.publish(events.ValidationCompleted, events.ValidationCompletedPayload(c.id, id, string(o.Status), o.Reason))
			}
		},
	})
}

// applyProductResult merges an async product transition. Stale results and
// results arriving after close are dropped silently.
func (c *Controller) applyProductResult(id uuid.UUID, fn func(staging.Products) (staging.Products, error)) bool {
	err := c.Update(func(d ProjectDraft) (DraftPatch, error) {
		next, err := fn(d.ProductImages)
		if err != nil {
			return DraftPatch{}, err
		}
		return ProductsPatch(next), nil
	})
	switch {
	case err == nil:
		return true
	case errors.Is(err, staging.ErrStale), errors.Is(err, ErrClosed):
		return false
	default:
		c.logger.Warn("dropped product transition", zap.String("image_id", id.String()), zap.Error(err))
		return false
	}
}

func (c *Controller) setProgress(id uuid.UUID, percent int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.progress[id] = percent
}

func (c *Controller) clearProgress(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.progress, id)
}

// Generate step

// Generate starts a gallery batch and folds the gallery into the draft when
// it completes.
func (c *Controller) Generate() error {
	if c.Closed() {
		return ErrClosed
	}
	err := c.gallery.Generate(func(batch []gallery.Artifact) {
		if err := c.syncGallery(); err != nil {
			c.logSyncError("generate", err)
			return
		}
		c.publish(events.GenerationCompleted, events.GenerationCompletedPayload(c.id, len(batch)))
	})
	if err != nil {
		return err
	}
	c.publish(events.GenerationStarted, events.GenerationStartedPayload(c.id, gallery.BatchSize))
	return nil
}

func (c *Controller) ToggleFavorite(artifactID string) (gallery.Artifact, error) {
	if c.Closed() {
		return gallery.Artifact{}, ErrClosed
	}
	a, err := c.gallery.ToggleFavorite(artifactID)
	if err != nil {
		return gallery.Artifact{}, err
	}
	return a, c.syncGallery()
}

func (c *Controller) AddComment(artifactID, author, message string) (gallery.Comment, error) {
	if c.Closed() {
		return gallery.Comment{}, ErrClosed
	}
	comment, err := c.gallery.AddComment(artifactID, author, message)
	if err != nil {
		return gallery.Comment{}, err
	}
	return comment, c.syncGallery()
}

// Regenerate updates the prompt right away; the draft picks up the new
// revision when the gallery finishes.
func (c *Controller) Regenerate(artifactID, prompt string) (gallery.Artifact, error) {
	if c.Closed() {
		return gallery.Artifact{}, ErrClosed
	}
	a, err := c.gallery.Regenerate(artifactID, prompt, func(gallery.Artifact) {
		if err := c.syncGallery(); err != nil {
			c.logSyncError("regenerate", err)
		}
	})
	if err != nil {
		return gallery.Artifact{}, err
	}
	return a, c.syncGallery()
}

func (c *Controller) DeleteArtifact(artifactID string) error {
	if c.Closed() {
		return ErrClosed
	}
	if err := c.gallery.Delete(artifactID); err != nil {
		return err
	}
	return c.syncGallery()
}

// syncGallery copies the gallery into the draft. The gallery is read under
// the controller lock so concurrent syncs always apply the latest state.
func (c *Controller) syncGallery() error {
	return c.Update(func(ProjectDraft) (DraftPatch, error) {
		artifacts := c.gallery.Artifacts()
		return DraftPatch{GeneratedImages: &artifacts}, nil
	})
}

func (c *Controller) logSyncError(op string, err error) {
	if errors.Is(err, ErrClosed) {
		c.logger.Debug("gallery result after close", zap.String("op", op))
		return
	}
	c.logger.Warn("failed to sync gallery", zap.String("op", op), zap.Error(err))
}
