// Package scheduler runs a task on a fixed interval in the background,
// with an immediate first run and a cancellable in-flight task on Stop.
package scheduler

import (
	"context"
	"sync"
	"time"

	"feedkeep/backend/pkg/logger"
)

// Worker runs Task on every tick of Interval, starting immediately when
// Start is called.
type Worker struct {
	Name     string
	Task     func(ctx context.Context)
	Interval time.Duration

	stopCh     chan struct{}
	wg         sync.WaitGroup
	cancelFunc context.CancelFunc
	mu         sync.Mutex
}

// New returns a Worker that runs task every interval, labeled name for
// logging.
func New(name string, interval time.Duration, task func(ctx context.Context)) *Worker {
	return &Worker{Name: name, Task: task, Interval: interval, stopCh: make(chan struct{})}
}

// Start launches the worker's background goroutine.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.run()
	logger.Info("worker started", "name", w.Name, "interval", w.Interval)
}

// Stop cancels any in-flight task and waits for the goroutine to exit.
func (w *Worker) Stop() {
	w.mu.Lock()
	if w.cancelFunc != nil {
		w.cancelFunc()
	}
	w.mu.Unlock()

	close(w.stopCh)
	w.wg.Wait()
	logger.Info("worker stopped", "name", w.Name)
}

func (w *Worker) run() {
	defer w.wg.Done()

	w.runOnce()

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.runOnce()
		case <-w.stopCh:
			return
		}
	}
}

func (w *Worker) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), w.Interval)

	w.mu.Lock()
	w.cancelFunc = cancel
	w.mu.Unlock()

	defer func() {
		cancel()
		w.mu.Lock()
		w.cancelFunc = nil
		w.mu.Unlock()
	}()

	w.Task(ctx)
}
