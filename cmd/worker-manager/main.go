// cmd/worker-manager/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"

	"realty-workers/internal/common/auth"
	"realty-workers/internal/common/aws"
	"realty-workers/internal/common/camunda"
	"realty-workers/internal/common/config"
	"realty-workers/internal/common/database"
	"realty-workers/internal/common/genai"
	"realty-workers/internal/common/logger"
	"realty-workers/internal/common/observability"
	"realty-workers/internal/httpapi"
	"realty-workers/internal/store"

	// Listing Workers (3)
	gl "realty-workers/internal/workers/listings/get-listing"
	ml "realty-workers/internal/workers/listings/manage-listing"
	sl "realty-workers/internal/workers/listings/search-listings"

	// Customer Request Workers (3)
	bc "realty-workers/internal/workers/inquiries/book-consultation"
	si "realty-workers/internal/workers/inquiries/submit-inquiry"
	urs "realty-workers/internal/workers/inquiries/update-request-status"

	// Admin & Notification Workers (2)
	ds "realty-workers/internal/workers/admin/dashboard-stats"
	na "realty-workers/internal/workers/notifications/notify-admin"

	// AI Workers (2)
	ac "realty-workers/internal/workers/ai-conversation/ai-chat"
	gd "realty-workers/internal/workers/ai-conversation/generate-description"
)

// retryWithBackoff retries an operation with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Int("attempt", i+1),
				zap.Int("max_retries", maxRetries),
				zap.Duration("retry_in", delay),
				zap.Error(err),
			)
			time.Sleep(delay)
			delay *= 2
			if delay > 30*time.Second {
				delay = 30 * time.Second
			}
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Init Config ---
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}

	// --- Init Logger ---
	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting Realty Worker Manager",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	// --- Init Observability ---
	obs := observability.New("realty-workers")
	defer obs.Shutdown()

	// --- Init Zeebe client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe connection")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected", zap.String("gateway", cfg.Camunda.BrokerAddress))

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	if err := pg.Migrate(ctx); err != nil {
		zapLog.Fatal("postgres migration failed", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis (optional snapshot cache) ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 3, time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Warn("redis unavailable, listing snapshot cache disabled", zap.Error(err))
		if rdb != nil {
			rdb.Close()
		}
		rdb = nil
	} else {
		defer rdb.Close()
		zapLog.Info("Redis connected successfully")
	}

	// --- Init Elasticsearch (optional listing mirror) ---
	var es *database.ElasticsearchClient
	if len(cfg.Database.Elasticsearch.Addresses) > 0 {
		err = retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			if err := es.Ping(); err != nil {
				return err
			}
			return es.EnsureIndex(ctx, cfg.Database.Elasticsearch.ListingIndex, database.ListingIndexMapping)
		}, 3, time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Warn("elasticsearch unavailable, listing mirror disabled", zap.Error(err))
			es = nil
		} else {
			zapLog.Info("Elasticsearch connected successfully")
		}
	}

	// --- Init Store ---
	st := newStore(cfg, pg, rdb, es, log)

	// --- Init External Service Clients ---
	// Optional dependencies stay untyped nil so the workers can tell they
	// are missing.
	var authorizer auth.Authorizer
	if cfg.Auth.Keycloak.URL != "" {
		authorizer = auth.NewKeycloakClient(
			cfg.Auth.Keycloak.URL,
			cfg.Auth.Keycloak.Realm,
			cfg.Auth.Keycloak.ClientID,
			cfg.Auth.Keycloak.ClientSecret,
		)
	} else {
		zapLog.Warn("keycloak not configured, admin workers will reject every request")
	}

	var generator genai.Generator
	if gen, err := genai.NewClient(ctx, cfg.APIs.GenAI); err != nil {
		zapLog.Warn("genai client unavailable, AI workers will report AI_NOT_CONFIGURED", zap.Error(err))
	} else {
		generator = gen
	}

	var emailSender na.EmailSender
	if cfg.Notifications.Email.Enabled {
		if ses, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region); err != nil {
			zapLog.Warn("ses client unavailable, admin email disabled", zap.Error(err))
		} else {
			emailSender = ses
		}
	}

	var smsSender na.SMSSender
	if cfg.Notifications.SMS.Enabled {
		if sns, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region); err != nil {
			zapLog.Warn("sns client unavailable, admin sms disabled", zap.Error(err))
		} else {
			smsSender = sns
		}
	}

	var index ml.SearchIndex
	if st.SearchEnabled() {
		index = st
	}

	zapLog.Info("All external service clients initialized")

	// --- Register Workers ---
	workerTimeout := func(taskType string, fallback time.Duration) time.Duration {
		if ms := config.GetWorkerConfig(cfg, taskType).Timeout; ms > 0 {
			return config.GetDuration(ms)
		}
		return fallback
	}

	handlers := map[string]camunda.JobHandler{}

	// --- 1. Listing Workers ---
	{
		c := sl.LoadConfig()
		c.Timeout = workerTimeout(sl.TaskType, c.Timeout)
		if cfg.Listings.ResultLimit > 0 {
			c.ResultLimit = cfg.Listings.ResultLimit
		}
		if cfg.Listings.DefaultPageSize > 0 {
			c.DefaultPageSize = cfg.Listings.DefaultPageSize
		}
		handlers[sl.TaskType] = sl.NewHandler(c, st, authorizer, log, obs)
	}
	{
		c := gl.LoadConfig()
		c.Timeout = workerTimeout(gl.TaskType, c.Timeout)
		handlers[gl.TaskType] = gl.NewHandler(c, st, log, obs)
	}
	{
		c := ml.LoadConfig()
		c.Timeout = workerTimeout(ml.TaskType, c.Timeout)
		handlers[ml.TaskType] = ml.NewHandler(ml.HandlerOptions{
			Config:        c,
			Listings:      st,
			Index:         index,
			Authorizer:    authorizer,
			Logger:        log,
			Observability: obs,
		})
	}

	// --- 2. Customer Request Workers ---
	{
		c := si.LoadConfig()
		c.Timeout = workerTimeout(si.TaskType, c.Timeout)
		handlers[si.TaskType] = si.NewHandler(c, st, log, obs)
	}
	{
		c := bc.LoadConfig()
		c.Timeout = workerTimeout(bc.TaskType, c.Timeout)
		handlers[bc.TaskType] = bc.NewHandler(c, st, log, obs)
	}
	{
		c := urs.LoadConfig()
		c.Timeout = workerTimeout(urs.TaskType, c.Timeout)
		handlers[urs.TaskType] = urs.NewHandler(c, st, authorizer, log, obs)
	}

	// --- 3. Admin & Notification Workers ---
	{
		c := ds.LoadConfig()
		c.Timeout = workerTimeout(ds.TaskType, c.Timeout)
		handlers[ds.TaskType] = ds.NewHandler(c, st, authorizer, log, obs)
	}
	{
		c := na.LoadConfig()
		c.Timeout = workerTimeout(na.TaskType, c.Timeout)
		c.AdminEmail = cfg.Notifications.AdminEmail
		c.AdminPhone = cfg.Notifications.AdminPhone
		c.FromEmail = cfg.Notifications.Email.FromEmail
		c.SenderID = cfg.Notifications.SMS.SenderID
		c.EmailEnabled = cfg.Notifications.Email.Enabled
		c.SMSEnabled = cfg.Notifications.SMS.Enabled
		handlers[na.TaskType] = na.NewHandler(c, emailSender, smsSender, log, obs)
	}

	// --- 4. AI Workers ---
	{
		c := ac.LoadConfig()
		c.Timeout = workerTimeout(ac.TaskType, c.Timeout)
		handlers[ac.TaskType] = ac.NewHandler(c, generator, st, log, obs)
	}
	{
		c := gd.LoadConfig()
		c.Timeout = workerTimeout(gd.TaskType, c.Timeout)
		handlers[gd.TaskType] = gd.NewHandler(c, generator, log, obs)
	}

	var workers []worker.JobWorker
	for taskType, handler := range handlers {
		wcfg := config.GetWorkerConfig(cfg, taskType)
		if w := camunda.StartWorker(zeebe.GetClient(), taskType, wcfg, handler, log); w != nil {
			workers = append(workers, w)
		}
	}
	zapLog.Info("Workers registered", zap.Int("started", len(workers)), zap.Int("known", len(handlers)))

	// --- HTTP Server (listings, health, metrics) ---
	server := httpapi.NewServer(httpapi.Options{
		Address:         cfg.HTTP.Address,
		DefaultPageSize: cfg.Listings.DefaultPageSize,
		ResultLimit:     cfg.Listings.ResultLimit,
		ShutdownTimeout: config.GetDuration(cfg.HTTP.ShutdownTimeout),
	}, st, log)

	serverErr := make(chan error, 1)
	go func() { serverErr <- server.Run(ctx) }()

	// --- Graceful Shutdown ---
	select {
	case <-ctx.Done():
		zapLog.Info("Shutdown signal received, stopping workers...")
	case err := <-serverErr:
		if err != nil {
			zapLog.Error("HTTP server failed", zap.Error(err))
		}
		stop()
	}

	camunda.StopWorkers(workers, log)

	select {
	case <-serverErr:
	case <-time.After(config.GetDuration(cfg.HTTP.ShutdownTimeout) + time.Second):
		zapLog.Warn("HTTP server did not stop in time")
	}

	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// newStore builds the document store. rdb and es may be nil.
func newStore(cfg *config.Config, pg *database.PostgresClient, rdb *database.RedisClient, es *database.ElasticsearchClient, log logger.Logger) *store.Store {
	var search *elasticsearch.Client
	if es != nil {
		search = es.Client
	}

	return store.New(pg.DB, rdb.Cache(), search, store.Options{
		SnapshotLimit: cfg.Listings.SnapshotLimit,
		CacheTTL:      cfg.Listings.CacheTTLDuration(),
		ListingIndex:  cfg.Database.Elasticsearch.ListingIndex,
	}, log)
}
