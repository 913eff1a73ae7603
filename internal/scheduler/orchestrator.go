package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/soluk/zamboni/internal/config"
	"github.com/soluk/zamboni/internal/pipeline"
	"github.com/soluk/zamboni/internal/publisher"
	"github.com/soluk/zamboni/internal/store"
	"github.com/soluk/zamboni/internal/store/repository"
)

// Broadcaster pushes a rebuild notification to connected clients. The
// websocket server implements it.
type Broadcaster interface {
	BroadcastRebuild(data []byte)
}

// Orchestrator runs the nightly rebuild and serves manual rebuild triggers.
// Rebuilds never overlap; a trigger during a running rebuild is rejected.
type Orchestrator struct {
	cfg         *config.Config
	builder     *pipeline.Builder
	runs        *repository.RunRepository
	publisher   *publisher.RedisStreamPublisher
	broadcaster Broadcaster
	cancel      context.CancelFunc

	running atomic.Bool
}

// NewOrchestrator creates a new scheduler orchestrator. publisher and
// broadcaster may be nil; rebuilds then complete without notifications.
func NewOrchestrator(cfg *config.Config, builder *pipeline.Builder, db *store.Database, pub *publisher.RedisStreamPublisher, broadcaster Broadcaster) *Orchestrator {
	var runs *repository.RunRepository
	if db != nil {
		runs = repository.NewRunRepository(db)
	}
	return &Orchestrator{
		cfg:         cfg,
		builder:     builder,
		runs:        runs,
		publisher:   pub,
		broadcaster: broadcaster,
	}
}

// Start begins the nightly rebuild loop and blocks until ctx is cancelled.
func (o *Orchestrator) Start(ctx context.Context) {
	log.Printf("→ Nightly rebuild scheduler started (runs at %02d:00 daily)", o.cfg.RebuildHour)

	ctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for {
		now := time.Now()
		nextRun := time.Date(now.Year(), now.Month(), now.Day(), o.cfg.RebuildHour, 0, 0, 0, now.Location())
		if now.After(nextRun) {
			nextRun = nextRun.Add(24 * time.Hour)
		}

		waitDuration := time.Until(nextRun)
		log.Printf("  Next rebuild: %s (in %v)", nextRun.Format("2006-01-02 15:04:05"), waitDuration.Round(time.Second))

		select {
		case <-ctx.Done():
			log.Println("→ Nightly rebuild scheduler stopped")
			return
		case <-time.After(waitDuration):
			log.Println("═══ Nightly Rebuild Starting ═══")
			o.rebuildWithRetry(ctx)
			log.Println("═══ Nightly Rebuild Complete ═══")
		}
	}
}

const (
	maxRebuildAttempts = 3
	rebuildRetryDelay  = 5 * time.Minute
)

// rebuildWithRetry runs the nightly rebuild, retrying transient failures.
func (o *Orchestrator) rebuildWithRetry(ctx context.Context) {
	for attempt := 1; attempt <= maxRebuildAttempts; attempt++ {
		err := o.rebuild(ctx, o.cfg.ForceRefresh)
		if err == nil {
			return
		}

		log.Printf("  ⚠️  Rebuild attempt %d/%d failed: %v", attempt, maxRebuildAttempts, err)
		if attempt < maxRebuildAttempts {
			log.Printf("  Retrying in %v...", rebuildRetryDelay)
			select {
			case <-ctx.Done():
				return
			case <-time.After(rebuildRetryDelay):
			}
		}
	}
	log.Printf("❌ All %d rebuild attempts failed", maxRebuildAttempts)
}

// TriggerRebuild starts a rebuild in the background. It returns an error when
// one is already in flight.
func (o *Orchestrator) TriggerRebuild(ctx context.Context, forceRefresh bool) error {
	if o.running.Load() {
		return fmt.Errorf("a rebuild is already running")
	}

	log.Printf("Manual rebuild triggered (force_refresh=%v)", forceRefresh)
	go func() {
		if err := o.rebuild(context.Background(), forceRefresh); err != nil {
			log.Printf("❌ Manual rebuild failed: %v", err)
		}
	}()
	return nil
}

// Stop gracefully stops the scheduler.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
}

func (o *Orchestrator) rebuild(ctx context.Context, forceRefresh bool) error {
	if !o.running.CompareAndSwap(false, true) {
		return fmt.Errorf("a rebuild is already running")
	}
	defer o.running.Store(false)

	result, err := o.builder.Run(ctx, forceRefresh)
	if err != nil {
		return err
	}

	var runID int64
	if o.runs != nil {
		run := &store.PipelineRun{
			SeasonLabel:  o.cfg.SeasonLabel,
			ForceRefresh: forceRefresh,
			TeamCount:    len(result.Defense),
			RowCount:     len(result.Rows),
			JoinMisses:   len(result.Quality.JoinMisses),
			ConstantSOS:  result.Quality.ConstantSOS,
			StartedAt:    result.StartedAt,
			DurationMS:   result.Duration.Milliseconds(),
		}
		runID, err = o.runs.SaveRun(ctx, run, result.Defense, result.Rows)
		if err != nil {
			return fmt.Errorf("persisting run: %w", err)
		}
		log.Printf("  ✓ persisted run %d", runID)
	}

	event := publisher.RebuildEvent{
		RunID:        runID,
		SeasonLabel:  o.cfg.SeasonLabel,
		TeamCount:    len(result.Defense),
		RowCount:     len(result.Rows),
		ForceRefresh: forceRefresh,
		CompletedAt:  time.Now().UTC(),
	}

	if o.publisher != nil {
		if err := o.publisher.PublishRebuild(ctx, event); err != nil {
			log.Printf("⚠️  failed to publish rebuild event: %v", err)
		}
	}

	if o.broadcaster != nil {
		if data, err := json.Marshal(event); err == nil {
			o.broadcaster.BroadcastRebuild(data)
		}
	}

	return nil
}
