package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"crypto-watcher/internal/domain/entities"
	"crypto-watcher/internal/domain/interfaces"
	"crypto-watcher/internal/infrastructure/config"
	"crypto-watcher/internal/infrastructure/logging"
	"crypto-watcher/internal/infrastructure/metrics"
)

const refresherComponent = "market refresher"

// ErrTaskPanicked wraps a panic recovered inside the refresh loop
var ErrTaskPanicked = errors.New("refresh task panicked")

// Refresher keeps the market snapshot warm. It is the only writer of the store.
type Refresher struct {
	client     interfaces.MarketDataClient
	store      interfaces.SnapshotStore
	interval   time.Duration
	vsCurrency string
	listeners  []interfaces.SnapshotListener
	now        func() time.Time
}

// NewRefresher crea la tarea de refresco a partir de su configuración
func NewRefresher(client interfaces.MarketDataClient, store interfaces.SnapshotStore, cfg config.RefreshConfig, listeners ...interfaces.SnapshotListener) *Refresher {
	return &Refresher{
		client:     client,
		store:      store,
		interval:   cfg.Interval,
		vsCurrency: strings.ToLower(strings.TrimSpace(cfg.VsCurrency)),
		listeners:  listeners,
		now:        time.Now,
	}
}

// Start launches the loop in its own goroutine. The first tick runs at once,
// then one per interval until the handle is cancelled or parent is done.
func (r *Refresher) Start(parent context.Context) *TaskHandle {
	ctx, cancel := context.WithCancel(parent)
	handle := newTaskHandle(cancel)

	metrics.SetRefreshTaskRunning(true)
	logging.Lifecycle().ComponentStarted(ctx, refresherComponent, logging.Fields{
		logging.FieldInterval:   r.interval.String(),
		logging.FieldVsCurrency: r.vsCurrency,
	})

	go func() {
		defer metrics.SetRefreshTaskRunning(false)
		handle.finish(r.run(ctx))
	}()

	return handle
}

func (r *Refresher) run(ctx context.Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, rec)
			logging.Lifecycle().ComponentFailed(ctx, refresherComponent, err)
		}
	}()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		_ = r.Tick(ctx)

		select {
		case <-ctx.Done():
			logging.Lifecycle().ComponentStopped(ctx, refresherComponent, logging.Fields{
				"reason": "cancelled",
			})
			return nil
		case <-ticker.C:
		}
	}
}

// Tick runs one refresh. A failed fetch leaves the current snapshot untouched.
func (r *Refresher) Tick(ctx context.Context) error {
	start := r.now()

	markets, err := r.client.FetchMarkets(ctx, r.vsCurrency)
	if err != nil {
		if ctx.Err() != nil {
			// cancelado a mitad de la petición, no es un fallo
			return ctx.Err()
		}
		metrics.RecordMarketRefresh(false, 0, 0)
		logging.ErrorWithError(ctx, "Background market refresh failed", err, logging.Fields{
			logging.FieldComponent:  refresherComponent,
			logging.FieldVsCurrency: r.vsCurrency,
		})
		return err
	}

	snapshot := entities.NewSnapshot(r.vsCurrency, markets, r.now())
	if err := r.store.Set(ctx, snapshot); err != nil {
		metrics.RecordMarketRefresh(false, 0, 0)
		logging.ErrorWithError(ctx, "Failed to store market snapshot", err, logging.Fields{
			logging.FieldComponent: refresherComponent,
		})
		return err
	}

	metrics.RecordMarketRefresh(true, snapshot.Len(), float64(snapshot.FetchedAt.Unix()))
	logging.Info(ctx, "Background market refresh completed", logging.Fields{
		logging.FieldComponent:    refresherComponent,
		logging.FieldMarketsCount: snapshot.Len(),
		logging.FieldDuration:     float64(r.now().Sub(start).Nanoseconds()) / 1e6,
	})

	for _, l := range r.listeners {
		l.OnSnapshot(snapshot)
	}

	return nil
}
