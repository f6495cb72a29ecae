// path: notify/notify.go
package notify

import (
	"context"
	"log"
)

// Event is a fire-and-forget notification emitted after a mutation
// commits. Delivery failure is logged by the emitter, never surfaced to
// the request that triggered it.
type Event struct {
	Type     string            `json:"type"`
	RecordID string            `json:"record_id"`
	ActorID  string            `json:"actor_id,omitempty"`
	Detail   map[string]string `json:"detail,omitempty"`
}

// Event types emitted by the engines.
const (
	EventStatusChanged = "issue.status_changed"
	EventAutoHidden    = "issue.auto_hidden"
	EventReviewed      = "issue.reviewed"
	EventBanSignal     = "user.ban_recommended"
)

type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// Log writes events to the process log. The default sink when no broker
// is configured.
type Log struct{}

func (Log) Notify(_ context.Context, ev Event) error {
	log.Printf("notify: %s record=%s actor=%s detail=%v", ev.Type, ev.RecordID, ev.ActorID, ev.Detail)
	return nil
}

// Emit sends ev and logs a failure instead of returning it. Engines call
// this strictly after their transaction commits.
func Emit(ctx context.Context, n Notifier, ev Event) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, ev); err != nil {
		log.Printf("notify: dropping %s for record %s: %v", ev.Type, ev.RecordID, err)
	}
}
