package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"

	"github.com/wtaconnect/backoffice/internal/audit"
	"github.com/wtaconnect/backoffice/internal/aws"
	"github.com/wtaconnect/backoffice/internal/config"
	"github.com/wtaconnect/backoffice/internal/handlers"
	"github.com/wtaconnect/backoffice/internal/logger"
	"github.com/wtaconnect/backoffice/internal/orders"
	"github.com/wtaconnect/backoffice/internal/period"
	"github.com/wtaconnect/backoffice/internal/session"
	"github.com/wtaconnect/backoffice/internal/tenants"
	"github.com/wtaconnect/backoffice/internal/winthor"
)

func setupRouter(ctx context.Context, cfg *config.Config, clients *aws.AWSClients, lg logger.Logger) (*gin.Engine, error) {
	orderStore := orders.NewStore(clients.DynamoDB, cfg.Tables.Orders).
		WithIndexes(cfg.Tables.OrdersMovtoIndex, cfg.Tables.OrdersKeyIndex)
	tenantStore := tenants.NewStore(clients.DynamoDB, cfg.Tables.Tenants)

	// audit events are optional; a nil publisher makes Emit a no-op
	var pub audit.Publisher
	if cfg.Queue.EventsURL != "" {
		pub = aws.NewPublisher(clients.SQS, cfg.Queue.EventsURL)
	}
	emitter := audit.NewEmitter(pub, lg)

	opts := []winthor.Option{
		winthor.WithLogger(lg),
		winthor.WithTimeout(cfg.Winthor.Timeout),
		winthor.WithTokenTTL(cfg.Winthor.TokenTTL),
	}
	if cfg.Metrics.Namespace != "" {
		opts = append(opts, winthor.WithRecorder(aws.NewMetricsRecorder(clients.CloudWatch, cfg.Metrics.Namespace)))
	}
	if cfg.Redis.Addr != "" {
		rdb, err := winthor.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		opts = append(opts, winthor.WithCache(winthor.NewRedisCache(rdb)))
		lg.Infof(ctx, "winthor token cache: redis %s", cfg.Redis.Addr)
	}
	erp := winthor.NewClient(tenantStore, opts...)

	return handlers.NewRouter(handlers.HandlerConfig{
		Session:   session.NewVerifier(cfg.Auth.Secret, cfg.Auth.CookieName),
		Logger:    lg,
		Dashboard: orders.NewDashboard(orderStore, period.NewPolicy(cfg.Location())),
		Orders:    orders.NewLister(orderStore),
		Deleter:   orders.NewDeleter(orderStore, emitter),
		Invoices:  erp,
		Checkout:  orders.NewCheckout(orderStore, emitter),
		Tenants:   tenantStore,
	}), nil
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
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

	r, err := setupRouter(ctx, cfg, clients, lg)
	if err != nil {
		log.Fatalf("failed to build router: %v", err)
	}

	if cfg.App.RunLocal {
		lg.Infof(ctx, "running local server on %s", cfg.HTTP.Addr)
		if err := r.Run(cfg.HTTP.Addr); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	adapter := ginadapter.New(r)
	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
