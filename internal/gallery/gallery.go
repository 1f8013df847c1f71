// Package gallery holds the placeholder artifacts of the generate step and
// the annotations users attach to them.
package gallery

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"studio-wizard-backend/internal/simclock"
)

const (
	BatchSize       = 4
	GenerateDelay   = 3 * time.Second
	RegenerateDelay = 2 * time.Second
	PlaceholderURL  = "/api/placeholder/400/600"
	DefaultAuthor   = "You"
)

var (
	ErrGenerationInFlight = errors.New("generation already in progress")
	ErrArtifactNotFound   = errors.New("artifact not found")
	ErrEmptyPrompt        = errors.New("prompt is empty")
	ErrEmptyComment       = errors.New("comment is empty")
)

type Comment struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Artifact is one generated placeholder image. Revision increases each time a
// regeneration completes.
type Artifact struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	PromptText   string    `json:"prompt"`
	IsFavorited  bool      `json:"is_favorited"`
	Comments     []Comment `json:"comments"`
	Revision     int       `json:"revision"`
	Regenerating bool      `json:"regenerating"`
	CreatedAt    time.Time `json:"created_at"`
}

func (a Artifact) clone() Artifact {
	a.Comments = append([]Comment{}, a.Comments...)
	return a
}

type Gallery struct {
	clock           simclock.Clock
	generateDelay   time.Duration
	regenerateDelay time.Duration
	newID           func() string

	mu         sync.Mutex
	artifacts  []Artifact
	generating bool
}

type Option func(*Gallery)

func WithClock(c simclock.Clock) Option {
	return func(g *Gallery) { g.clock = c }
}

func WithDelays(generate, regenerate time.Duration) Option {
	return func(g *Gallery) {
		g.generateDelay = generate
		g.regenerateDelay = regenerate
	}
}

// WithSeed starts the gallery with existing artifacts.
func WithSeed(artifacts []Artifact) Option {
	return func(g *Gallery) {
		for _, a := range artifacts {
			g.artifacts = append(g.artifacts, a.clone())
		}
	}
}

func WithIDs(fn func() string) Option {
	return func(g *Gallery) { g.newID = fn }
}

func New(opts ...Option) *Gallery {
	g := &Gallery{
		clock:           simclock.Real(),
		generateDelay:   GenerateDelay,
		regenerateDelay: RegenerateDelay,
		newID:           func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate appends a batch of placeholder artifacts after the generation
// delay. Existing artifacts are kept. A second call while a batch is pending
// returns ErrGenerationInFlight. onDone, if set, receives the new batch.
func (g *Gallery) Generate(onDone func(batch []Artifact)) error {
	g.mu.Lock()
	if g.generating {
		g.mu.Unlock()
		return ErrGenerationInFlight
	}
	g.generating = true
	g.mu.Unlock()

	g.clock.AfterFunc(g.generateDelay, func() {
		now := g.clock.Now()
		batch := make([]Artifact, BatchSize)
		for i := range batch {
			batch[i] = Artifact{
				ID:         g.newID(),
				URL:        PlaceholderURL,
				PromptText: fmt.Sprintf("Generated image %d based on project brief", i+1),
				Comments:   []Comment{},
				CreatedAt:  now,
			}
		}

		g.mu.Lock()
		g.artifacts = append(g.artifacts, batch...)
		g.generating = false
		g.mu.Unlock()

		if onDone != nil {
			onDone(cloneAll(batch))
		}
	})
	return nil
}

func (g *Gallery) Generating() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.generating
}

// Regenerate replaces the prompt of an artifact right away and completes the
// placeholder content swap after the regeneration delay. The completion is
// dropped if the artifact was deleted meanwhile.
func (g *Gallery) Regenerate(id, prompt string, onDone func(Artifact)) (Artifact, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Artifact{}, ErrEmptyPrompt
	}

	updated, err := g.mutate(id, func(a *Artifact) error {
		a.PromptText = prompt
		a.Regenerating = true
		return nil
	})
	if err != nil {
		return Artifact{}, err
	}

	g.clock.AfterFunc(g.regenerateDelay, func() {
		done, err := g.mutate(id, func(a *Artifact) error {
			a.Regenerating = false
			a.Revision++
			return nil
		})
		if err == nil && onDone != nil {
			onDone(done)
		}
	})
	return updated, nil
}

func (g *Gallery) ToggleFavorite(id string) (Artifact, error) {
	return g.mutate(id, func(a *Artifact) error {
		a.IsFavorited = !a.IsFavorited
		return nil
	})
}

// AddComment appends a comment. An empty author is recorded as "You".
func (g *Gallery) AddComment(id, author, message string) (Comment, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Comment{}, ErrEmptyComment
	}
	if strings.TrimSpace(author) == "" {
		author = DefaultAuthor
	}
	comment := Comment{
		ID:        uuid.NewString(),
		Author:    author,
		Message:   message,
		Timestamp: g.clock.Now(),
	}
	_, err := g.mutate(id, func(a *Artifact) error {
		a.Comments = append(a.Comments, comment)
		return nil
	})
	if err != nil {
		return Comment{}, err
	}
	return comment, nil
}

func (g *Gallery) Delete(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, a := range g.artifacts {
		if a.ID == id {
			g.artifacts = append(g.artifacts[:i:i], g.artifacts[i+1:]...)
			return nil
		}
	}
	return ErrArtifactNotFound
}

func (g *Gallery) Get(id string) (Artifact, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, a := range g.artifacts {
		if a.ID == id {
			return a.clone(), true
		}
	}
	return Artifact{}, false
}

// Artifacts returns a copy of every artifact in order.
func (g *Gallery) Artifacts() []Artifact {
	g.mu.Lock()
	defer g.mu.Unlock()
	return cloneAll(g.artifacts)
}

func (g *Gallery) mutate(id string, fn func(*Artifact) error) (Artifact, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.artifacts {
		if g.artifacts[i].ID != id {
			continue
		}
		a := g.artifacts[i].clone()
		if err := fn(&a); err != nil {
			return Artifact{}, err
		}
		g.artifacts[i] = a
		return a.clone(), nil
	}
	return Artifact{}, ErrArtifactNotFound
}

func cloneAll(in []Artifact) []Artifact {
	out := make([]Artifact, len(in))
	for i, a := range in {
		out[i] = a.clone()
	}
	return out
}

// Showcase returns the sample artifacts the demo gallery opens with.
func Showcase(now time.Time) []Artifact {
	prompts := []string{
		"Professional jewelry photography with elegant lighting on marble surface",
		"Modern minimalist product shot with soft shadows",
		"Lifestyle shot with natural lighting and casual styling",
		"High-fashion editorial style with dramatic lighting",
	}
	out := make([]Artifact, len(prompts))
	for i, p := range prompts {
		out[i] = Artifact{
			ID:         fmt.Sprintf("%d", i+1),
			URL:        PlaceholderURL,
			PromptText: p,
			Comments:   []Comment{},
			CreatedAt:  now,
		}
	}
	out[1].IsFavorited = true
	out[1].Comments = []Comment{{
		ID:        "1",
		Author:    "Sarah M.",
		Message:   "Love this composition!",
		Timestamp: now.Add(-2 * time.Minute),
	}}
	return out
}
