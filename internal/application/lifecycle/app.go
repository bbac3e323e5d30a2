package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"crypto-watcher/internal/application/services"
	"crypto-watcher/internal/domain/interfaces"
	"crypto-watcher/internal/infrastructure/logging"
)

// TaskStarter launches the background refresh task
type TaskStarter interface {
	Start(ctx context.Context) *services.TaskHandle
}

type namedCloser struct {
	name   string
	closer io.Closer
}

// App owns the upstream session and the refresh task handle.
// Startup and Shutdown are the only places that touch either.
type App struct {
	session interfaces.SessionManager
	task    TaskStarter
	closers []namedCloser

	mu     sync.Mutex
	handle *services.TaskHandle

	shutdownOnce sync.Once
	shutdownErr  error
}

// NewApp crea la aplicación con la sesión y la tarea de refresco
func NewApp(session interfaces.SessionManager, task TaskStarter) *App {
	return &App{
		session: session,
		task:    task,
	}
}

// AddCloser registers a resource closed at the end of Shutdown, in registration order
func (a *App) AddCloser(name string, c io.Closer) {
	a.closers = append(a.closers, namedCloser{name: name, closer: c})
}

// Startup opens the session, then schedules the refresh task
func (a *App) Startup(ctx context.Context) {
	logging.Lifecycle().ComponentStarted(ctx, "application", nil)

	a.session.InitializeSession()

	a.mu.Lock()
	a.handle = a.task.Start(ctx)
	a.mu.Unlock()
}

// TaskDone is closed when the refresh task returns. Nil before Startup.
func (a *App) TaskDone() <-chan struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.handle == nil {
		return nil
	}
	return a.handle.Done()
}

// Shutdown cancels the task and waits for it before closing the session.
// Only the first call does anything; later calls return the same result.
func (a *App) Shutdown(ctx context.Context) error {
	a.shutdownOnce.Do(func() {
		a.shutdownErr = a.shutdown(ctx)
	})
	return a.shutdownErr
}

func (a *App) shutdown(ctx context.Context) error {
	var errs []error

	a.mu.Lock()
	handle := a.handle
	a.mu.Unlock()

	if handle != nil {
		handle.Cancel()
		if err := handle.Wait(ctx); err != nil {
			logging.Lifecycle().ComponentFailed(ctx, "market refresher", err)
			errs = append(errs, fmt.Errorf("refresh task: %w", err))
		}
	}

	a.session.CloseSession()

	for _, c := range a.closers {
		if err := c.closer.Close(); err != nil {
			logging.Lifecycle().ComponentFailed(ctx, c.name, err)
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
			continue
		}
		logging.Lifecycle().ComponentStopped(ctx, c.name, nil)
	}

	logging.Lifecycle().ComponentStopped(ctx, "application", nil)
	return errors.Join(errs...)
}
