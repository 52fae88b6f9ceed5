package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"

	"github.com/wtaconnect/backoffice/internal/audit"
	"github.com/wtaconnect/backoffice/internal/logger"
)

// Processor records audit events delivered through SQS.
type Processor struct {
	store eventRecorder
	log   logger.Logger
}

// NewProcessor creates a new worker processor.
func NewProcessor(store eventRecorder, log logger.Logger) *Processor {
	if log == nil {
		log = logger.NewNop()
	}
	return &Processor{store: store, log: log}
}

// Handle processes an SQS batch. Failed messages are reported as batch item
// failures so only they return to the queue (and eventually the DLQ).
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
	var (
		resp  events.SQSEventResponse
		stats batchStats
	)
	for _, rec := range ev.Records {
		written, err := p.processMessage(ctx, rec)
		switch {
		case err != nil:
			p.log.Errorf(ctx, "[worker] message %s: %v", rec.MessageId, err)
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: rec.MessageId})
			stats.Failed++
		case written:
			stats.Recorded++
		default:
			stats.Duplicates++
		}
	}
	p.log.Infof(ctx, "[worker] batch of %d: recorded=%d duplicates=%d failed=%d",
		len(ev.Records), stats.Recorded, stats.Duplicates, stats.Failed)
	return resp, nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) (bool, error) {
	var msg audit.Event
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		return false, fmt.Errorf("invalid message body: %w", err)
	}
	if msg.EventID == "" || msg.Type == "" {
		return false, fmt.Errorf("incomplete event: id=%q type=%q", msg.EventID, msg.Type)
	}

	written, err := p.store.Record(ctx, msg)
	if err != nil {
		return false, fmt.Errorf("record event %s: %w", msg.EventID, err)
	}
	if !written {
		p.log.Infof(ctx, "[worker] duplicate delivery of event=%s type=%s", msg.EventID, msg.Type)
		return false, nil
	}
	p.log.Debugf(ctx, "[worker] recorded event=%s type=%s tenant=%d order=%d",
		msg.EventID, msg.Type, msg.TenantID, msg.OrderID)
	return true, nil
}
