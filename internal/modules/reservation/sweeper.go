package reservation

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

const sweepTimeout = time.Minute

// Sweeper runs ExpireStale on a cron schedule. Overlapping runs are skipped.
type Sweeper struct {
	scheduler *cron.Cron
	service   *Service
	loggerf   func(format string, args ...interface{})
}

func NewSweeper(service *Service, spec string, loggerf func(format string, args ...interface{})) (*Sweeper, error) {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}

	sw := &Sweeper{
		scheduler: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
		service: service,
		loggerf: loggerf,
	}
	if _, err := sw.scheduler.AddFunc(spec, sw.tick); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}
	return sw, nil
}

func (sw *Sweeper) Start() {
	sw.scheduler.Start()
	sw.loggerf("level=info msg=expire sweeper started")
}

// Stop waits for a running sweep to finish or ctx to end.
func (sw *Sweeper) Stop(ctx context.Context) {
	done := sw.scheduler.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// RunOnce performs a single sweep.
func (sw *Sweeper) RunOnce(ctx context.Context) (SweepResult, error) {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()
	return sw.service.ExpireStale(ctx)
}

func (sw *Sweeper) tick() {
	if _, err := sw.RunOnce(context.Background()); err != nil {
		sw.loggerf("level=error msg=expire sweep failed err=%v", err)
	}
}
