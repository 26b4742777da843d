package di

import (
	"fmt"

	"DerivPulse/internal/aggregate"
	"DerivPulse/internal/allowlist"
	"DerivPulse/internal/domain/repository"
	"DerivPulse/internal/handler/api"
	internalrepo "DerivPulse/internal/repository"
	svccache "DerivPulse/internal/service/cache"
	"DerivPulse/internal/service/ranking"
	"DerivPulse/internal/service/ratelimit"
	"DerivPulse/internal/source"
	"DerivPulse/internal/usecase"
	pkgcache "DerivPulse/pkg/cache"
	"DerivPulse/pkg/config"
	xhttp "DerivPulse/pkg/http"
	pkgkafka "DerivPulse/pkg/kafka"
	applogger "DerivPulse/pkg/logger"
	"DerivPulse/pkg/metrics"
	"DerivPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideHTTPClient creates the resilient upstream client with the
// default geo-block failover table.
func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(
		xhttp.WithTimeout(cfg.HTTPClient.Timeout),
		xhttp.WithFailoverTable(source.DefaultFailoverTable),
	)
}

// ProvideRegistry creates the source registry. Registration order is the
// merge order of aggregated responses.
func ProvideRegistry(cfg *config.Config, client *xhttp.Client) *source.Registry {
	limiter := ratelimit.New()
	return source.NewRegistry(
		source.NewBinance(client, limiter, cfg.Sources.Binance.BaseURL, cfg.Sources.OpenInterest.TopN, cfg.Sources.OpenInterest.BatchSize),
		source.NewBybit(client, cfg.Sources.Bybit.BaseURL),
		source.NewGateIO(client, cfg.Sources.GateIO.BaseURL),
		source.NewBingX(client, cfg.Sources.BingX.BaseURL),
		source.NewHyperliquid(client, cfg.Sources.Hyperliquid.BaseURL),
		source.NewOstium(client, cfg.Sources.Ostium.BaseURL, float64(cfg.Sources.Ostium.EightHourSeconds)),
	)
}

// ProvideOrchestrator creates the fan-out aggregation orchestrator.
func ProvideOrchestrator(registry *source.Registry, m repository.Metrics, log *applogger.Logger) *aggregate.Orchestrator {
	return aggregate.New(registry, m, log)
}

// ProvideResponseCache creates the short-TTL response cache.
func ProvideResponseCache(cfg *config.Config) *svccache.ResponseCache {
	return svccache.NewResponseCache(cfg.Cache.MaxEntries)
}

// ProvideRedis creates the Redis client when enabled, nil otherwise.
func ProvideRedis(cfg *config.Config) (*pkgcache.RedisCache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	r, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Redis.Host),
		pkgcache.WithRedisPort(cfg.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	return r, nil
}

// ProvideAllowlist creates the market-cap allowlist when enabled, nil
// otherwise. Redis, when available, warm-starts the set across restarts;
// without Redis an in-process store covers ranking-source outages within
// a single run.
func ProvideAllowlist(cfg *config.Config, client *xhttp.Client, redis *pkgcache.RedisCache, log *applogger.Logger) *allowlist.Cache {
	if !cfg.Allowlist.Enabled {
		return nil
	}
	src := ranking.New(client, cfg.Allowlist.APIURL, cfg.Allowlist.APIKey)
	var store pkgcache.Service = pkgcache.NewMemoryCache()
	if redis != nil {
		store = redis
	}
	return allowlist.New(src, log, cfg.Allowlist.Size, cfg.Allowlist.MinSize, cfg.Allowlist.TTL,
		allowlist.WithWarmStore(store))
}

// ProvideSnapshotPublisher creates the Kafka snapshot publisher when
// enabled, nil otherwise.
func ProvideSnapshotPublisher(cfg *config.Config) (repository.SnapshotPublisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaSnapshots(producer, cfg.Kafka.Topic)
}

// ProvideMarketService creates the markets use case.
func ProvideMarketService(
	cfg *config.Config,
	orchestrator *aggregate.Orchestrator,
	cache *svccache.ResponseCache,
	allow *allowlist.Cache,
	snapshots repository.SnapshotPublisher,
	m repository.Metrics,
	log *applogger.Logger,
) *usecase.MarketService {
	ttl := usecase.TTLConfig{
		Funding:      cfg.Cache.TTL.Funding,
		OpenInterest: cfg.Cache.TTL.OpenInterest,
		Tickers:      cfg.Cache.TTL.Tickers,
	}
	opts := []usecase.Option{}
	if allow != nil {
		opts = append(opts, usecase.WithAllowlist(allow))
	}
	if snapshots != nil {
		opts = append(opts, usecase.WithSnapshotPublisher(snapshots))
	}
	return usecase.NewMarketService(orchestrator, cache, m, log, ttl, opts...)
}

// ProvideHandler creates the HTTP handler surface.
func ProvideHandler(log *applogger.Logger, markets *usecase.MarketService, m repository.Metrics) xhttp.Handler {
	return api.NewMarketsEchoHandler(log, markets, m)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	snapshots repository.SnapshotPublisher,
	redis *pkgcache.RedisCache,
) *server.App {
	app := server.New(cfg, log, handler)
	if snapshots != nil {
		app.SetSnapshotPublisher(snapshots)
	}
	if redis != nil {
		app.SetRedis(redis)
	}
	return app
}
