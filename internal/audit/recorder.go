package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amit1797/Eduadmin-sub000/internal/core/events"
	"github.com/amit1797/Eduadmin-sub000/internal/observability"
)

// Repository is append-only: entries are never updated or deleted.
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	ListBySchool(ctx context.Context, schoolID string, limit, offset int) ([]Entry, error)
}

type Subscriber interface {
	Subscribe(eventType string, handler events.Handler)
}

// Recorder persists audit.recorded events. Failures are logged and counted,
// they never reach the client.
type Recorder struct {
	repo    Repository
	metrics *observability.Metrics
	logger  *slog.Logger
}

func NewRecorder(repo Repository, metrics *observability.Metrics, logger *slog.Logger) *Recorder {
	return &Recorder{
		repo:    repo,
		metrics: metrics,
		logger:  logger,
	}
}

func (rec *Recorder) Register(bus Subscriber) {
	bus.Subscribe(EventTypeRecorded, rec.Handle)
}

func (rec *Recorder) Handle(ctx context.Context, event events.Event) error {
	recorded, ok := event.(*RecordedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T for %s", event, EventTypeRecorded)
	}

	entry := recorded.Entry
	if err := rec.repo.Create(ctx, &entry); err != nil {
		rec.metrics.ObserveAuditEntry(observability.OutcomeFailed)
		rec.logger.Error("audit persist failure",
			"user_id", entry.UserID,
			"action", entry.Action,
			"resource", entry.Resource,
			"error", err)
		return nil
	}

	rec.metrics.ObserveAuditEntry(observability.OutcomePersisted)
	return nil
}
