package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-watcher/internal/application/services"
	"crypto-watcher/internal/domain/entities"
	"crypto-watcher/internal/infrastructure/config"
	"crypto-watcher/internal/infrastructure/repositories/snapshot"
)

// fakeUpstream counts lifecycle calls and the fetches running at any moment
type fakeUpstream struct {
	inits          atomic.Int32
	closes         atomic.Int32
	inFlight       atomic.Int32
	fetches        atomic.Int32
	inFlightAtStop atomic.Int32
	block          bool
}

func (f *fakeUpstream) InitializeSession() { f.inits.Add(1) }

func (f *fakeUpstream) CloseSession() {
	f.closes.Add(1)
	f.inFlightAtStop.Store(f.inFlight.Load())
}

func (f *fakeUpstream) HasSession() bool { return f.inits.Load() > f.closes.Load() }

func (f *fakeUpstream) FetchMarkets(ctx context.Context, _ string) ([]entities.Market, error) {
	f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	f.fetches.Add(1)

	if f.block {
		<-ctx.Done()
		time.Sleep(20 * time.Millisecond)
		return nil, ctx.Err()
	}
	return []entities.Market{{ID: "bitcoin"}}, nil
}

func (f *fakeUpstream) FetchCoinDetails(context.Context, string) (json.RawMessage, error) {
	return nil, nil
}

func (f *fakeUpstream) FetchCoinList(context.Context) (json.RawMessage, error) { return nil, nil }

func (f *fakeUpstream) Ping(context.Context) error { return nil }

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func newApp(upstream *fakeUpstream, interval time.Duration) *App {
	store := snapshot.NewMemoryStore()
	refresher := services.NewRefresher(upstream, store, config.RefreshConfig{Interval: interval, VsCurrency: "usd"})
	app := NewApp(upstream, refresher)
	app.AddCloser("snapshot store", store)
	return app
}

func shutdownCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestApp_StartupInitializesSessionBeforeTask(t *testing.T) {
	upstream := &fakeUpstream{}
	app := newApp(upstream, time.Hour)

	assert.Nil(t, app.TaskDone())
	app.Startup(context.Background())

	assert.Equal(t, int32(1), upstream.inits.Load())
	require.Eventually(t, func() bool { return upstream.fetches.Load() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, app.Shutdown(shutdownCtx(t)))
}

func TestApp_ShutdownWhileSleepingClosesSessionOnce(t *testing.T) {
	upstream := &fakeUpstream{}
	app := newApp(upstream, time.Hour)
	app.Startup(context.Background())

	require.Eventually(t, func() bool { return upstream.fetches.Load() == 1 }, time.Second, 5*time.Millisecond)

	start := time.Now()
	require.NoError(t, app.Shutdown(shutdownCtx(t)))
	assert.Less(t, time.Since(start), time.Second)

	require.NoError(t, app.Shutdown(shutdownCtx(t)))

	assert.Equal(t, int32(1), upstream.closes.Load())
	select {
	case <-app.TaskDone():
	default:
		t.Fatal("refresh task still running after shutdown")
	}
}

func TestApp_ShutdownWaitsForInFlightFetch(t *testing.T) {
	upstream := &fakeUpstream{block: true}
	app := newApp(upstream, time.Hour)
	app.Startup(context.Background())

	require.Eventually(t, func() bool { return upstream.inFlight.Load() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, app.Shutdown(shutdownCtx(t)))
	assert.Equal(t, int32(0), upstream.inFlightAtStop.Load())
	assert.Equal(t, int32(1), upstream.closes.Load())
}

func TestApp_ShutdownClosesResourcesAndJoinsErrors(t *testing.T) {
	upstream := &fakeUpstream{}
	app := newApp(upstream, time.Hour)

	var order []string
	app.AddCloser("hub", closerFunc(func() error {
		order = append(order, "hub")
		return errors.New("hub already closed")
	}))
	app.AddCloser("extra", closerFunc(func() error {
		order = append(order, "extra")
		return nil
	}))

	app.Startup(context.Background())
	err := app.Shutdown(shutdownCtx(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "hub already closed")
	assert.Equal(t, []string{"hub", "extra"}, order)
	assert.Equal(t, int32(1), upstream.closes.Load())
}

func TestApp_ShutdownWithoutStartup(t *testing.T) {
	upstream := &fakeUpstream{}
	app := newApp(upstream, time.Hour)

	assert.NoError(t, app.Shutdown(shutdownCtx(t)))
	assert.Equal(t, int32(1), upstream.closes.Load())
}
