// Package validation simulates the asynchronous check a staged product photo
// goes through before it can be used for generation.
package validation

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"studio-wizard-backend/internal/simclock"
	"studio-wizard-backend/internal/staging"
)

const (
	ReasonTooLarge         = "File too large (max 10MB)"
	ReasonInvalidType      = "Invalid file type"
	ReasonPoorQuality      = "Poor image quality detected"
	ReasonProcessingFailed = "Processing failed"

	MaxFileSize = 10 * 1024 * 1024

	DefaultProgressStep     = 10
	DefaultProgressInterval = 100 * time.Millisecond
	progressCap             = 90
)

// Outcome is the terminal result of one validation.
type Outcome struct {
	Status staging.Status `json:"status"`
	Reason string         `json:"reason,omitempty"`
}

func (o Outcome) Valid() bool {
	return o.Status == staging.StatusValid
}

func valid() Outcome {
	return Outcome{Status: staging.StatusValid}
}

func rejected(reason string) Outcome {
	return Outcome{Status: staging.StatusError, Reason: reason}
}

// Hooks receive the progress of a job. Every hook is optional and runs on
// the clock's callback goroutine.
type Hooks struct {
	OnProcessing func()
	OnProgress   func(percent int)
	OnResult     func(Outcome)
}

type Simulator struct {
	clock            simclock.Clock
	quality          QualityChecker
	delay            func() time.Duration
	progressStep     int
	progressInterval time.Duration
}

type Option func(*Simulator)

func WithClock(c simclock.Clock) Option {
	return func(s *Simulator) { s.clock = c }
}

func WithQuality(q QualityChecker) Option {
	return func(s *Simulator) { s.quality = q }
}

// WithDelay overrides the simulated processing time.
func WithDelay(fn func() time.Duration) Option {
	return func(s *Simulator) { s.delay = fn }
}

func WithProgress(step int, interval time.Duration) Option {
	return func(s *Simulator) {
		s.progressStep = step
		s.progressInterval = interval
	}
}

// FixedDelay returns a delay function that always waits d.
func FixedDelay(d time.Duration) func() time.Duration {
	return func() time.Duration { return d }
}

// RandomDelay waits between 1s and 2s.
func RandomDelay() time.Duration {
	return time.Second + rand.N(time.Second)
}

func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{
		clock:            simclock.Real(),
		quality:          NewRandomQuality(DefaultFailureRate, nil),
		delay:            RandomDelay,
		progressStep:     DefaultProgressStep,
		progressInterval: DefaultProgressInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate applies the rules to f immediately. Size and type checks are
// deterministic; the quality collaborator is only asked when both pass.
func (s *Simulator) Evaluate(ctx context.Context, f staging.File) Outcome {
	if f.Size > MaxFileSize {
		return rejected(ReasonTooLarge)
	}
	if !f.IsImage() {
		return rejected(ReasonInvalidType)
	}
	ok, err := s.quality.Assess(ctx, f)
	if err != nil {
		return rejected(ReasonProcessingFailed)
	}
	if !ok {
		return rejected(ReasonPoorQuality)
	}
	return valid()
}

// Job is one running validation. It cannot be cancelled.
type Job struct {
	done    chan struct{}
	once    sync.Once
	mu      sync.Mutex
	outcome Outcome
}

// Done is closed once the outcome is available.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Outcome returns the result. It is only meaningful after Done is closed.
func (j *Job) Outcome() Outcome {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.outcome
}

func (j *Job) finish(o Outcome) {
	j.once.Do(func() {
		j.mu.Lock()
		j.outcome = o
		j.mu.Unlock()
		close(j.done)
	})
}

// Start validates f in the background. Processing begins on the next clock
// callback; progress advances by a fixed step on every interval and stays at
// 90 until the outcome resolves, at which point it reports 100.
func (s *Simulator) Start(f staging.File, hooks Hooks) *Job {
	job := &Job{done: make(chan struct{})}

	s.clock.AfterFunc(0, func() {
		if hooks.OnProcessing != nil {
			hooks.OnProcessing()
		}

		var mu sync.Mutex
		percent := 0
		resolved := false
		ticker := simclock.Every(s.clock, s.progressInterval, func() bool {
			mu.Lock()
			if resolved || percent >= progressCap {
				mu.Unlock()
				return false
			}
			percent += s.progressStep
			if percent > progressCap {
				percent = progressCap
			}
			current := percent
			mu.Unlock()

			if hooks.OnProgress != nil {
				hooks.OnProgress(current)
			}
			return current < progressCap
		})

		s.clock.AfterFunc(s.delay(), func() {
			mu.Lock()
			resolved = true
			mu.Unlock()
			ticker.Stop()

			outcome := s.Evaluate(context.Background(), f)
			if hooks.OnProgress != nil {
				hooks.OnProgress(100)
			}
			if hooks.OnResult != nil {
				hooks.OnResult(outcome)
			}
			job.finish(outcome)
		})
	})

	return job
}
