package drafts

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/FolioWorks/entity_layer/internal/app/metrics"
	"github.com/FolioWorks/entity_layer/internal/app/storage"
	"github.com/FolioWorks/entity_layer/pkg/logger"
)

// Janitor sweeps drafts that have not been touched within the TTL. It runs
// on a cron schedule as a lifecycle-managed service.
type Janitor struct {
	store    storage.DraftStore
	ttl      time.Duration
	schedule string
	cron     *cron.Cron
	log      *logger.Logger
}

// NewJanitor constructs a janitor. schedule is a cron expression
// (e.g. "@hourly").
func NewJanitor(store storage.DraftStore, ttl time.Duration, schedule string, log *logger.Logger) *Janitor {
	if log == nil {
		log = logger.NewDefault("draft-janitor")
	}
	if schedule == "" {
		schedule = "@hourly"
	}
	return &Janitor{
		store:    store,
		ttl:      ttl,
		schedule: schedule,
		log:      log,
	}
}

// Name implements system.Service.
func (j *Janitor) Name() string { return "draft-janitor" }

// Start registers the sweep with the cron runner and starts it.
func (j *Janitor) Start(context.Context) error {
	j.cron = cron.New()
	if _, err := j.cron.AddFunc(j.schedule, j.sweep); err != nil {
		return err
	}
	j.cron.Start()
	return nil
}

// Stop halts the cron runner, waiting for a running sweep to finish.
func (j *Janitor) Stop(ctx context.Context) error {
	if j.cron == nil {
		return nil
	}
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (j *Janitor) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().UTC().Add(-j.ttl)
	users, err := j.store.ListDraftsBefore(ctx, cutoff)
	if err != nil {
		j.log.WithError(err).Warn("draft sweep listing failed")
		return
	}

	removed := 0
	for _, userID := range users {
		if err := j.store.DeleteDraft(ctx, userID); err != nil {
			j.log.WithError(err).WithField("user_id", userID).Warn("draft sweep delete failed")
			continue
		}
		removed++
	}
	if removed > 0 {
		metrics.RecordDraftOp("sweep")
		j.log.WithField("count", removed).Info("stale drafts removed")
	}
}
