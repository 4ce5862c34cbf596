package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"walletnote/internal/log"
)

// SessionPurger deletes expired sessions and reports how many went.
type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// JanitorConfig holds configuration for the session janitor.
type JanitorConfig struct {
	// Interval between purges (default: 1h)
	Interval time.Duration
}

func DefaultJanitorConfig() JanitorConfig {
	return JanitorConfig{Interval: time.Hour}
}

// Janitor periodically removes expired login sessions.
type Janitor struct {
	purger SessionPurger
	config JanitorConfig
	logger *log.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewJanitor(purger SessionPurger, config JanitorConfig) *Janitor {
	if config.Interval <= 0 {
		config.Interval = DefaultJanitorConfig().Interval
	}
	return &Janitor{
		purger: purger,
		config: config,
		logger: log.WithComponent(log.ComponentWorker),
	}
}

// Start begins the purge loop. Returns an error if already running.
func (j *Janitor) Start(ctx context.Context) error {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return errors.New("janitor is already running")
	}
	j.running = true
	j.stopCh = make(chan struct{})
	j.doneCh = make(chan struct{})
	j.mu.Unlock()

	go j.runLoop(ctx)

	j.logger.InfoContext(ctx, "Session janitor started", "interval", j.config.Interval)
	return nil
}

// Stop signals the loop and waits for it to finish or for ctx to expire.
func (j *Janitor) Stop(ctx context.Context) error {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return nil
	}
	stopCh, doneCh := j.stopCh, j.doneCh
	j.mu.Unlock()

	select {
	case <-stopCh:
	default:
		close(stopCh)
	}

	select {
	case <-doneCh:
	case <-ctx.Done():
		j.logger.WarnContext(ctx, "Session janitor stop timed out")
		return ctx.Err()
	}

	j.mu.Lock()
	j.running = false
	j.mu.Unlock()
	return nil
}

func (j *Janitor) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}

func (j *Janitor) runLoop(ctx context.Context) {
	defer close(j.doneCh)

	ticker := time.NewTicker(j.config.Interval)
	defer ticker.Stop()

	j.purge(ctx)

	for {
		select {
		case <-j.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.purge(ctx)
		}
	}
}

func (j *Janitor) purge(ctx context.Context) {
	n, err := j.purger.PurgeExpiredSessions(ctx)
	if err != nil {
		j.logger.LogError(ctx, "Failed to purge expired sessions", err, log.OpDelete, log.ErrorTypeDatabase)
		return
	}
	if n > 0 {
		j.logger.InfoContext(ctx, "Purged expired sessions", "count", n)
	}
}
