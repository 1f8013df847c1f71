package validation_test

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"studio-wizard-backend/internal/simclock"
	"studio-wizard-backend/internal/staging"
	"studio-wizard-backend/internal/validation"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

func image(size int64) staging.File {
	return staging.File{Name: "ring.jpg", MimeType: "image/jpeg", Size: size}
}

func newManual() *simclock.Manual {
	return simclock.NewManual(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
}

func TestEvaluate_Rules(t *testing.T) {
	ctx := context.Background()
	sim := validation.NewSimulator(validation.WithQuality(validation.FixedQuality(true)))

	tests := []struct {
		name string
		file staging.File
		want validation.Outcome
	}{
		{"valid image", image(2 << 20), validation.Outcome{Status: staging.StatusValid}},
		{"exactly 10MB", image(validation.MaxFileSize), validation.Outcome{Status: staging.StatusValid}},
		{"too large", image(15 << 20), validation.Outcome{Status: staging.StatusError, Reason: validation.ReasonTooLarge}},
		{"too large and wrong type", staging.File{Name: "a.pdf", MimeType: "application/pdf", Size: 11 << 20},
			validation.Outcome{Status: staging.StatusError, Reason: validation.ReasonTooLarge}},
		{"wrong type", staging.File{Name: "a.pdf", MimeType: "application/pdf", Size: 1},
			validation.Outcome{Status: staging.StatusError, Reason: validation.ReasonInvalidType}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sim.Evaluate(ctx, tt.file))
		})
	}
}

func TestEvaluate_QualityOnlyAfterDeterministicChecks(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int32
	poor := validation.QualityFunc(func(context.Context, staging.File) (bool, error) {
		calls.Add(1)
		return false, nil
	})
	sim := validation.NewSimulator(validation.WithQuality(poor))

	assert.Equal(t, validation.ReasonTooLarge, sim.Evaluate(ctx, image(20<<20)).Reason)
	assert.Equal(t, int32(0), calls.Load())

	for i := 0; i < 5; i++ {
		assert.Equal(t, validation.ReasonPoorQuality, sim.Evaluate(ctx, image(1<<20)).Reason)
	}
	assert.Equal(t, int32(5), calls.Load())
}

func TestEvaluate_QualityErrorIsProcessingFailure(t *testing.T) {
	broken := validation.QualityFunc(func(context.Context, staging.File) (bool, error) {
		return false, errors.New("service down")
	})
	sim := validation.NewSimulator(validation.WithQuality(broken))

	outcome := sim.Evaluate(context.Background(), image(1))
	assert.Equal(t, staging.StatusError, outcome.Status)
	assert.Equal(t, validation.ReasonProcessingFailed, outcome.Reason)
}

func TestRandomQuality_SeededIsRepeatable(t *testing.T) {
	run := func() []bool {
		q := validation.NewRandomQuality(0.5, rand.New(rand.NewPCG(1, 2)))
		out := make([]bool, 20)
		for i := range out {
			out[i], _ = q.Assess(context.Background(), image(1))
		}
		return out
	}
	assert.Equal(t, run(), run())

	never := validation.NewRandomQuality(0, nil)
	for i := 0; i < 50; i++ {
		ok, err := never.Assess(context.Background(), image(1))
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestStart_ProgressCappedUntilResolution(t *testing.T) {
	clock := newManual()
	sim := validation.NewSimulator(
		validation.WithClock(clock),
		validation.WithQuality(validation.FixedQuality(true)),
		validation.WithDelay(validation.FixedDelay(1500*time.Millisecond)),
	)

	var progress []int
	processing := false
	var result *validation.Outcome
	job := sim.Start(image(1), validation.Hooks{
		OnProcessing: func() { processing = true },
		OnProgress:   func(p int) { progress = append(progress, p) },
		OnResult:     func(o validation.Outcome) { result = &o },
	})

	assert.False(t, processing)
	clock.Advance(0)
	assert.True(t, processing)

	clock.Advance(1400 * time.Millisecond)
	assert.Equal(t, []int{10, 20, 30, 40, 50, 60, 70, 80, 90}, progress)
	assert.Nil(t, result)
	select {
	case <-job.Done():
		t.Fatal("job finished before its delay")
	default:
	}

	clock.Advance(100 * time.Millisecond)
	require.NotNil(t, result)
	assert.True(t, result.Valid())
	assert.Equal(t, 100, progress[len(progress)-1])
	<-job.Done()
	assert.Equal(t, *result, job.Outcome())
	assert.Equal(t, 0, clock.Pending())
}

func TestStart_ResolutionBeforeCapStopsTicker(t *testing.T) {
	clock := newManual()
	sim := validation.NewSimulator(
		validation.WithClock(clock),
		validation.WithQuality(validation.FixedQuality(false)),
		validation.WithDelay(validation.FixedDelay(350*time.Millisecond)),
	)

	var progress []int
	job := sim.Start(image(1), validation.Hooks{OnProgress: func(p int) { progress = append(progress, p) }})
	clock.Advance(2 * time.Second)

	assert.Equal(t, []int{10, 20, 30, 100}, progress)
	assert.Equal(t, validation.ReasonPoorQuality, job.Outcome().Reason)
	assert.Equal(t, 0, clock.Pending())
}

func TestStart_IndependentJobsResolveOutOfOrder(t *testing.T) {
	clock := newManual()
	delays := []time.Duration{2 * time.Second, time.Second}
	next := 0
	sim := validation.NewSimulator(
		validation.WithClock(clock),
		validation.WithQuality(validation.FixedQuality(true)),
		validation.WithDelay(func() time.Duration {
			d := delays[next]
			next++
			return d
		}),
	)

	var order []string
	sim.Start(staging.File{Name: "first.jpg", MimeType: "image/jpeg"}, validation.Hooks{
		OnResult: func(validation.Outcome) { order = append(order, "first") },
	})
	sim.Start(staging.File{Name: "second.jpg", MimeType: "image/jpeg"}, validation.Hooks{
		OnResult: func(validation.Outcome) { order = append(order, "second") },
	})

	clock.Advance(3 * time.Second)
	assert.Equal(t, []string{"second", "first"}, order)
}

func TestStart_DeterministicAcrossRuns(t *testing.T) {
	run := func() validation.Outcome {
		clock := newManual()
		sim := validation.NewSimulator(
			validation.WithClock(clock),
			validation.WithQuality(validation.FixedQuality(true)),
		)
		job := sim.Start(staging.File{Name: "a.gif", MimeType: "image/gif", Size: 3 << 20}, validation.Hooks{})
		clock.Advance(2 * time.Second)
		<-job.Done()
		return job.Outcome()
	}
	first := run()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, run())
	}
}

func TestStart_RealClock(t *testing.T) {
	sim := validation.NewSimulator(
		validation.WithQuality(validation.FixedQuality(true)),
		validation.WithDelay(validation.FixedDelay(20*time.Millisecond)),
		validation.WithProgress(30, 5*time.Millisecond),
	)

	job := sim.Start(image(1), validation.Hooks{})
	select {
	case <-job.Done():
	case <-time.After(time.Second):
		t.Fatal("validation did not finish")
	}
	assert.True(t, job.Outcome().Valid())
}

func TestRemoteQuality_Assess(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/assessments", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))

		var req validation.AssessmentRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(validation.AssessmentResponse{
			Acceptable: req.Filename != "blurry.jpg",
			Score:      0.8,
		})
	}))
	defer server.Close()

	client := validation.NewRemoteQuality(server.URL+"/", "test-key").WithBackoffs(time.Millisecond)

	ok, err := client.Assess(context.Background(), image(1))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int32(2), attempts.Load())

	ok, err = client.Assess(context.Background(), staging.File{Name: "blurry.jpg", MimeType: "image/jpeg"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRemoteQuality_RetryExhausted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := validation.NewRemoteQuality(server.URL, "k").WithBackoffs(time.Millisecond)
	sim := validation.NewSimulator(validation.WithQuality(client))

	assert.Equal(t, validation.ReasonProcessingFailed, sim.Evaluate(context.Background(), image(1)).Reason)

	_, err := client.Assess(context.Background(), image(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 3 retries")
}
