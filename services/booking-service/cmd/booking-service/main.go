package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/nazmul-karim/slotbook/libs/config"
	"github.com/nazmul-karim/slotbook/libs/db"
	"github.com/nazmul-karim/slotbook/libs/httpx"
	"github.com/nazmul-karim/slotbook/libs/kafkax"
	otelx "github.com/nazmul-karim/slotbook/libs/otel"
	"github.com/nazmul-karim/slotbook/libs/runtime"
	"github.com/nazmul-karim/slotbook/services/booking-service/internal/booking"
	"github.com/nazmul-karim/slotbook/services/booking-service/internal/cache"
	"github.com/nazmul-karim/slotbook/services/booking-service/internal/handlers"
	"github.com/nazmul-karim/slotbook/services/booking-service/internal/outbox"
	"github.com/nazmul-karim/slotbook/services/booking-service/internal/storage"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func splitList(raw string) []string {
	var out []string
	for _, v := range strings.Split(raw, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func main() {
	service := config.String("SERVICE_NAME", "booking-service")
	port, err := config.Port("PORT", "8083")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL, db.Options{
		MaxConns: int32(config.Int("DB_MAX_CONNS", 10)),
	})
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	var rdb *redis.Client
	if addr := strings.TrimSpace(config.String("REDIS_ADDR", "")); addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: addr})
		defer rdb.Close()
	}

	bookingRepo := storage.NewBookingRepository(pool)
	companyRepo := storage.NewCompanyRepository(pool)
	outboxRepo := outbox.NewRepository(pool)
	versions := cache.NewVersions(rdb, logger)

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	svc := booking.NewService(bookingRepo, companyRepo, outboxRepo, versions, logger,
		config.Int("SLOT_GRACE_MINUTES", 10))
	bookingHandler := handlers.NewBookingHandler(svc, logger)
	adminHandler := handlers.NewAdminHandler(companyRepo, logger)

	readyChecks := []runtime.ReadyCheck{
		{Name: "db", Check: db.ReadyCheck(pool)},
	}
	if config.String("KAFKA_BROKERS", "") != "" {
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))})
	}
	if rdb != nil {
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "redis", Check: cache.ReadyCheck(rdb)})
	}

	mux := runtime.NewBaseMuxWithReady(readyChecks...)
	mux.HandleFunc("/api/v1/public/slots", bookingHandler.Slots)
	mux.HandleFunc("/api/v1/public/book", bookingHandler.CreateOrUpdate)
	mux.HandleFunc("/api/v1/appointments", bookingHandler.List)
	mux.HandleFunc("/api/v1/appointments/transition", bookingHandler.Transition)
	mux.HandleFunc("/api/v1/appointments/day-view", bookingHandler.DayView)
	mux.HandleFunc("/api/v1/admin/schedule", adminHandler.Schedule)
	mux.HandleFunc("/api/v1/admin/services", adminHandler.Services)
	mux.HandleFunc("/api/v1/admin/professionals", adminHandler.Professionals)

	middlewares := []httpx.Middleware{
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(1 << 20),
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: splitList(config.String("CORS_ALLOWED_ORIGINS", "")),
			AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Idempotency-Key", "X-Company-Id"},
			MaxAge:         10 * time.Minute,
		}),
	}
	limit := config.Int("RATE_LIMIT_PER_MINUTE", 120)
	if rdb != nil {
		limiter := httpx.NewRedisRateLimiter(rdb, limit, time.Minute, "slots")
		middlewares = append(middlewares, limiter.Middleware(logger, config.Bool("RATE_LIMIT_FAIL_OPEN", true)))
	} else {
		middlewares = append(middlewares, httpx.NewRateLimiter(limit, time.Minute).Middleware())
	}

	httpHandler := httpx.Chain(mux, middlewares...)
	httpHandler = otelhttp.NewHandler(httpHandler, "booking")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
