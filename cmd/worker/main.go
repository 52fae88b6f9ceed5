package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/wtaconnect/backoffice/internal/audit"
	"github.com/wtaconnect/backoffice/internal/aws"
	"github.com/wtaconnect/backoffice/internal/config"
	"github.com/wtaconnect/backoffice/internal/logger"
)

// audit entries expire after a year
const auditRetention = 365 * 24 * time.Hour

func main() {
	ctx := context.Background()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	lg, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer lg.Sync()

	clients, err := aws.NewAWSClients(ctx)
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}
	p := NewProcessor(audit.NewStore(clients.DynamoDB, cfg.Tables.Audit, auditRetention), lg)

	// RUN_LOCAL=true feeds a single message from LOCAL_SQS_BODY through the handler.
	if cfg.App.RunLocal {
		body := os.Getenv("LOCAL_SQS_BODY")
		if body == "" {
			body = `{"event_id":"local-event-1","type":"order.deleted","tenant_id":1,"order_id":1}`
		}
		resp, err := p.Handle(ctx, events.SQSEvent{
			Records: []events.SQSMessage{{MessageId: "local-1", Body: body}},
		})
		if err != nil || len(resp.BatchItemFailures) > 0 {
			log.Fatalf("local handler failed: err=%v failures=%d", err, len(resp.BatchItemFailures))
		}
		return
	}

	lambda.Start(p.Handle)
}
