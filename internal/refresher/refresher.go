// Package refresher keeps a rate table fresh: one refresh at a time, and a
// new refresh signal every interval for as long as it runs.
package refresher

import (
	"context"
	"sync/atomic"
	"time"

	"exchange-form-service/internal/domain/model"
	"exchange-form-service/internal/domain/ports"
	"exchange-form-service/pkg/logger"
)

// Listener receives every refresh event. It is called from the goroutine
// running the refresh.
type Listener interface {
	OnRefresh(ctx context.Context, event model.RefreshEvent)
}

type ListenerFunc func(ctx context.Context, event model.RefreshEvent)

func (f ListenerFunc) OnRefresh(ctx context.Context, event model.RefreshEvent) { f(ctx, event) }

type Refresher struct {
	fetcher  ports.RateFetcher
	listener Listener
	interval time.Duration
	clock    Clock
	log      *logger.Logger

	inFlight atomic.Bool
}

func New(fetcher ports.RateFetcher, listener Listener, interval time.Duration, clock Clock, log *logger.Logger) *Refresher {
	if clock == nil {
		clock = SystemClock()
	}
	return &Refresher{
		fetcher:  fetcher,
		listener: listener,
		interval: interval,
		clock:    clock,
		log:      log,
	}
}

// RequestRefresh starts a refresh unless one is already in flight, in which
// case the signal is dropped. It reports whether a refresh was started and
// does not wait for it to finish.
func (r *Refresher) RequestRefresh(ctx context.Context) bool {
	if !r.inFlight.CompareAndSwap(false, true) {
		r.log.Debug("Refresh already in flight, dropping signal")
		return false
	}

	r.listener.OnRefresh(ctx, model.RefreshEvent{Kind: model.RefreshStarted})
	go r.refresh(ctx)
	return true
}

// InFlight reports whether a refresh is currently running.
func (r *Refresher) InFlight() bool {
	return r.inFlight.Load()
}

func (r *Refresher) refresh(ctx context.Context) {
	defer r.inFlight.Store(false)

	table, err := r.fetcher.FetchRates(ctx)
	if err != nil {
		r.log.Error("Failed to refresh exchange rates", "error", err)
		r.listener.OnRefresh(ctx, model.RefreshEvent{Kind: model.RefreshFailed, Message: err.Error()})
		return
	}

	r.log.Info("Refreshed exchange rates", "base", table.Base, "count", len(table.Rates))
	r.listener.OnRefresh(ctx, model.RefreshEvent{
		Kind:      model.RefreshSucceeded,
		Rates:     table,
		Timestamp: r.clock.Now(),
	})
}

// Run signals a refresh, waits one interval and repeats until ctx is done.
// Failed refreshes do not stop the loop and are not retried early.
func (r *Refresher) Run(ctx context.Context) {
	r.log.Info("Starting rate refresh loop", "interval", r.interval)
	for {
		r.RequestRefresh(ctx)

		select {
		case <-r.clock.After(r.interval):
		case <-ctx.Done():
			r.log.Info("Stopping rate refresh loop")
			return
		}
	}
}
