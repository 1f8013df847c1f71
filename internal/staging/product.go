package staging

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type Status string

const (
	StatusUploading  Status = "uploading"
	StatusProcessing Status = "processing"
	StatusValid      Status = "valid"
	StatusError      Status = "error"
)

func (s Status) Terminal() bool {
	return s == StatusValid || s == StatusError
}

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrStale is returned when an async result targets an item that was
	// removed or replaced after the work started.
	ErrStale = errors.New("stale validation result")
)

// ProductImage is a staged product photo. Attempt increases on every replace
// so results of superseded validations can be told apart.
type ProductImage struct {
	ID           uuid.UUID `json:"id"`
	File         File      `json:"file"`
	Status       Status    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Preview      string    `json:"preview"`
	Attempt      int       `json:"attempt"`
}

// CanTransition reports whether the lifecycle allows moving from s to next.
// Replace is the only way back to uploading and is not a transition.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusUploading:
		return to == StatusProcessing
	case StatusProcessing:
		return to == StatusValid || to == StatusError
	}
	return false
}

// Products is the ordered sequence of staged product images. Every method
// returns a new slice and leaves the receiver untouched, so a snapshot handed
// out earlier never changes underneath its holder.
type Products []ProductImage

// PreviewFunc derives the display handle for a staged item.
type PreviewFunc func(id uuid.UUID) string

// Add appends files as uploading items and returns the new sequence and the
// created items.
func (p Products) Add(files []File, preview PreviewFunc) (Products, []ProductImage) {
	added := make([]ProductImage, len(files))
	for i, f := range files {
		id := uuid.New()
		added[i] = ProductImage{ID: id, File: f, Status: StatusUploading}
		if preview != nil {
			added[i].Preview = preview(id)
		}
	}
	out := make(Products, 0, len(p)+len(added))
	out = append(out, p...)
	return append(out, added...), added
}

func (p Products) Index(id uuid.UUID) int {
	for i, img := range p {
		if img.ID == id {
			return i
		}
	}
	return -1
}

func (p Products) Find(id uuid.UUID) (ProductImage, bool) {
	if i := p.Index(id); i >= 0 {
		return p[i], true
	}
	return ProductImage{}, false
}

func (p Products) RemoveAt(index int) (Products, error) {
	if index < 0 || index >= len(p) {
		return nil, ErrIndexOutOfRange
	}
	out := make(Products, 0, len(p)-1)
	out = append(out, p[:index]...)
	return append(out, p[index+1:]...), nil
}

func (p Products) Remove(id uuid.UUID) (Products, error) {
	i := p.Index(id)
	if i < 0 {
		return nil, ErrFileNotFound
	}
	return p.RemoveAt(i)
}

// Replace swaps the file of an item in place, keeping its id and position,
// and resets it to uploading.
func (p Products) Replace(id uuid.UUID, f File, preview PreviewFunc) (Products, ProductImage, error) {
	i := p.Index(id)
	if i < 0 {
		return nil, ProductImage{}, ErrFileNotFound
	}
	out := p.Clone()
	img := ProductImage{ID: id, File: f, Status: StatusUploading, Attempt: p[i].Attempt + 1}
	if preview != nil {
		img.Preview = preview(id)
	}
	out[i] = img
	return out, img, nil
}

// Begin moves the item of the given attempt to processing.
func (p Products) Begin(id uuid.UUID, attempt int) (Products, error) {
	return p.transition(id, attempt, StatusProcessing, "")
}

// Resolve records the terminal outcome of a validation attempt.
func (p Products) Resolve(id uuid.UUID, attempt int, status Status, message string) (Products, error) {
	if !status.Terminal() {
		return nil, fmt.Errorf("%w: %s is not terminal", ErrInvalidTransition, status)
	}
	if status == StatusValid {
		message = ""
	}
	return p.transition(id, attempt, status, message)
}

func (p Products) transition(id uuid.UUID, attempt int, to Status, message string) (Products, error) {
	i := p.Index(id)
	if i < 0 || p[i].Attempt != attempt {
		return nil, ErrStale
	}
	if !CanTransition(p[i].Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p[i].Status, to)
	}
	out := p.Clone()
	out[i].Status = to
	out[i].ErrorMessage = message
	return out, nil
}

func (p Products) Clone() Products {
	if p == nil {
		return nil
	}
	return append(Products(nil), p...)
}

// Counts tallies items per status.
func (p Products) Counts() map[Status]int {
	counts := make(map[Status]int, 4)
	for _, img := range p {
		counts[img.Status]++
	}
	return counts
}
