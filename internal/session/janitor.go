package session

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ScheduleJanitor sweeps idle sessions on the given cron schedule until ctx
// is done.
func ScheduleJanitor(ctx context.Context, r *Registry, schedule string, maxIdle time.Duration) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if n := r.Sweep(maxIdle); n > 0 {
			r.logger.Info("session sweep", zap.Int("removed", n), zap.Int("remaining", r.Len()))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	c.Start()

	go func() {
		<-ctx.Done()
		c.Stop()
	}()
	return c, nil
}
