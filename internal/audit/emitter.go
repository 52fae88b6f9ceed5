package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wtaconnect/backoffice/internal/logger"
)

// Publisher sends a JSON payload to the events queue.
type Publisher interface {
	Publish(ctx context.Context, payload interface{}, attributes map[string]string) error
}

// Emitter publishes audit events on a best-effort basis: failures are
// logged and never returned to the caller. A nil Emitter or one without a
// publisher is a no-op.
type Emitter struct {
	pub     Publisher
	log     logger.Logger
	nowFunc func() time.Time
}

func NewEmitter(pub Publisher, log logger.Logger) *Emitter {
	if log == nil {
		log = logger.NewNop()
	}
	return &Emitter{pub: pub, log: log, nowFunc: time.Now}
}

// Emit stamps the event id and time when unset and publishes it.
func (e *Emitter) Emit(ctx context.Context, ev Event) {
	if e == nil || e.pub == nil {
		return
	}
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = e.nowFunc().UTC()
	}
	attrs := map[string]string{"event_type": ev.Type}
	if err := e.pub.Publish(ctx, ev, attrs); err != nil {
		e.log.Warnf(ctx, "publish audit event %s (%s) failed: %v", ev.EventID, ev.Type, err)
	}
}
