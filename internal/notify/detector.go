package notify

import (
	"context"
	"log/slog"

	"github.com/tonynouhra/taskmanager/internal/domain"
)

// StatusSource is the point lookup the detector performs before a write.
type StatusSource interface {
	Status(ctx context.Context, kind domain.Kind, id string) (domain.Status, error)
}

// Detector observes work item writes and emits a notification job exactly
// when the status field changed. It is kind-generic: one routine serves
// epics, user stories, and tasks.
//
// Usage is a two-step handshake threaded through the write path as an
// explicit value: Begin before the write captures the persisted status,
// Finish after the commit compares it against the written status.
type Detector struct {
	source StatusSource
	queue  Queue
}

// NewDetector creates a Detector backed by the given status source and queue.
func NewDetector(source StatusSource, queue Queue) *Detector {
	return &Detector{source: source, queue: queue}
}

// Change carries the pre-write status between Begin and Finish. The zero
// value means "no prior status" and always suppresses the notification.
type Change struct {
	kind     domain.Kind
	entityID string
	prior    domain.Status
	hasPrior bool
}

// Begin captures the persisted status of the entity about to be written.
// For entities that do not exist yet it returns the no-prior sentinel, so
// the subsequent Finish stays silent. Lookup failures other than not-found
// are logged and also degrade to the sentinel: a broken notification
// pipeline must never abort the caller's write.
func (d *Detector) Begin(ctx context.Context, kind domain.Kind, id string) Change {
	status, err := d.source.Status(ctx, kind, id)
	if err != nil {
		if !domain.IsNotFound(err) {
			slog.Error("prior status lookup failed, suppressing notification",
				"kind", kind,
				"entity_id", id,
				"error", err,
			)
		}
		return Change{kind: kind, entityID: id}
	}

	return Change{kind: kind, entityID: id, prior: status, hasPrior: true}
}

// Finish compares the captured prior status against the just-written one
// and enqueues exactly one status-changed job when they differ. It is
// fire-and-forget: enqueue failures are logged and the event is dropped.
func (d *Detector) Finish(ch Change, newStatus domain.Status) {
	if !ch.hasPrior || ch.prior == newStatus {
		return
	}

	job := Job{
		Reason:    ReasonStatusChanged,
		Kind:      ch.kind,
		EntityID:  ch.entityID,
		OldStatus: ch.prior,
		NewStatus: newStatus,
	}

	if err := d.queue.Enqueue(job); err != nil {
		slog.Error("failed to enqueue status change notification",
			"kind", ch.kind,
			"entity_id", ch.entityID,
			"old_status", ch.prior,
			"new_status", newStatus,
			"error", err,
		)
		return
	}

	slog.Debug("status change detected",
		"kind", ch.kind,
		"entity_id", ch.entityID,
		"old_status", ch.prior,
		"new_status", newStatus,
	)
}
