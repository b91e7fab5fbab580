package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/ryanlhy/webhook-ingest/cmd/ingest/config"
	"github.com/ryanlhy/webhook-ingest/internal/audit"
	"github.com/ryanlhy/webhook-ingest/internal/decoder"
	"github.com/ryanlhy/webhook-ingest/internal/fetcher"
	"github.com/ryanlhy/webhook-ingest/internal/handler"
	"github.com/ryanlhy/webhook-ingest/internal/ingest"
	"github.com/ryanlhy/webhook-ingest/internal/platform/metrics"
	"github.com/ryanlhy/webhook-ingest/internal/platform/rabbitmq"
	"github.com/ryanlhy/webhook-ingest/internal/platform/storage"
	"github.com/ryanlhy/webhook-ingest/internal/poller"
	"github.com/ryanlhy/webhook-ingest/internal/sink"
	"golang.org/x/sync/errgroup"
)

const (
	// UserAgent is user agent header value used when fetching dataset.
	UserAgent = "webhook-ingest/0.1.0"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Msg("can't load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Fatal().
			Err(err).
			Msg("can't parse log level")
	}
	logger = logger.Level(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		logger.Fatal().
			Err(err).
			Msg("can't open database connection")
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)

	if err := db.PingContext(ctx); err != nil {
		logger.Fatal().
			Err(err).
			Msg("can't connect to database")
	}

	if cfg.Database.EnsureSchema {
		if err := storage.EnsureSchema(ctx, db); err != nil {
			logger.Fatal().
				Err(err).
				Msg("can't create database schema")
		}
	}

	pg := storage.NewPostgres(db, storage.WithRunTTL(cfg.Poll.RunTTL))
	met := metrics.New()

	// raw payload audit
	var recorders audit.Multi
	if cfg.AuditFile != "" {
		recorders = append(recorders, audit.NewFile(cfg.AuditFile))
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		recorders = append(recorders, audit.NewRedis(redisClient, cfg.Redis.AuditPrefix, cfg.Redis.AuditTTL))
	}

	dec := decoder.Decoder{}
	snk := sink.NewSink(sink.PoolFunc(func(ctx context.Context) (sink.Conn, error) {
		conn, err := pg.Acquire(ctx)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}), &logger)

	ing := ingest.NewIngestor(
		dec,
		snk,
		&logger,
		ingest.WithRecorder(recorders),
		ingest.WithMetrics(met),
	)

	pol := poller.NewPoller(
		fetcher.NewFetcher(
			&http.Client{Timeout: cfg.Poll.HTTPTimeout},
			UserAgent,
			fetcher.WithToken(cfg.Poll.APIToken),
			fetcher.WithLimiter(fetcher.PerMinute(cfg.Poll.RequestsPerMinute)),
		),
		dec,
		pg,
		ing,
		cfg.Poll.DatasetURL,
		&logger,
		poller.WithTimeout(cfg.Poll.Timeout),
		poller.WithMetrics(met),
	)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.NewHTTPHandler(ing, pol, met, &logger).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("can't serve http: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("can't shutdown http server: %w", err)
		}
		return nil
	})

	if cfg.Poll.Interval > 0 {
		group.Go(func() error {
			return pol.Schedule(groupCtx, cfg.Poll.Interval)
		})
	}

	if cfg.RabbitMQ.URL != "" {
		amqpConnection, err := startConsumer(groupCtx, cfg.RabbitMQ, pol, &logger)
		if err != nil {
			logger.Fatal().
				Err(err).
				Msg("can't start consuming poll commands")
		}

		group.Go(func() error {
			<-groupCtx.Done()
			if err := amqpConnection.Close(); err != nil {
				return fmt.Errorf("can't close RabbitMQ connection: %w", err)
			}
			return nil
		})
	}

	logger.Info().Msg("webhook ingest up and running")

	if err := group.Wait(); err != nil {
		logger.Error().
			Err(err).
			Msg("service stopped with error")
	}

	logger.Info().Msg("graceful shutdown start")

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().
				Err(err).
				Msg("can't close Redis connection")
		}
	}

	if err := db.Close(); err != nil {
		logger.Fatal().
			Err(err).
			Msg("can't close database connection")
	}

	logger.Info().Msg("graceful shutdown successful")
}

// startConsumer declares poll commands queue and starts handling commands from it.
func startConsumer(
	ctx context.Context,
	cfg config.RabbitMQ,
	pol *poller.Poller,
	logger *zerolog.Logger,
) (*amqp.Connection, error) {
	amqpConnection, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("can't open RabbitMQ connection: %w", err)
	}

	mq, err := rabbitmq.NewRabbitMQ(amqpConnection, cfg.Exchange)
	if err != nil {
		return nil, errors.Join(err, amqpConnection.Close())
	}

	if err := mq.DeclareQueue(cfg.Queue, cfg.RoutingKey); err != nil {
		return nil, errors.Join(err, amqpConnection.Close())
	}

	if err := handler.NewRMQHandler(mq, pol, logger).Start(ctx, cfg.Queue); err != nil {
		return nil, errors.Join(err, amqpConnection.Close())
	}

	return amqpConnection, nil
}
