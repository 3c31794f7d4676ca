package di

import (
	"context"
	"fmt"

	domrepo "FilingLens/internal/domain/repository"
	"FilingLens/internal/domain/service"
	"FilingLens/internal/handler/api"
	mid "FilingLens/internal/middleware"
	internalrepo "FilingLens/internal/repository"
	"FilingLens/internal/services/engine"
	"FilingLens/internal/usecase"
	"FilingLens/pkg/cache"
	"FilingLens/pkg/config"
	xhttp "FilingLens/pkg/http"
	pkgkafka "FilingLens/pkg/kafka"
	"FilingLens/pkg/logger"
	"FilingLens/pkg/metrics"
	"FilingLens/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
)

const serviceName = "filinglens"

// ProvideLogger builds the root logger. When a producer exists, aggregated
// warn/error entries are shipped through it.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if producer != nil {
		l.AddCollector(&logger.CollectionConfig{
			Service:      serviceName,
			TimeInterval: cfg.Log.CollectInterval,
			Topic:        cfg.Log.CollectTopic,
			Publisher:    producer,
		})
	}
	return l, nil
}

// ProvideRegistry returns a private registry so tests and commands can build
// several apps in one process.
func ProvideRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

func ProvideMetrics(reg *prometheus.Registry) domrepo.Metrics {
	return metrics.New(reg)
}

// ProvideKafkaProducer returns nil when no brokers are configured.
func ProvideKafkaProducer(cfg *config.Config, reg *prometheus.Registry) (*pkgkafka.Producer, error) {
	if !cfg.KafkaEnabled() {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(reg,
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Async),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

func ProvideEventPublisher(cfg *config.Config, producer *pkgkafka.Producer, l *logger.Logger) domrepo.EventPublisher {
	if producer == nil {
		return internalrepo.NewNoopEventPublisher(l)
	}
	return internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.Topic)
}

func ProvideEventPipeline(pub domrepo.EventPublisher, m domrepo.Metrics, l *logger.Logger) *mid.EventPipeline {
	return mid.NewEventPipeline(pub, m, l)
}

// ProvideCache returns nil when caching is disabled.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	switch cfg.Cache.Backend {
	case "layered":
		redis, err := cache.NewRedisCache(context.Background(),
			cache.WithRedisAddr(cfg.Cache.Redis.Host, cfg.Cache.Redis.Port),
			cache.WithRedisAuth(cfg.Cache.Redis.Password, cfg.Cache.Redis.DB),
			cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return cache.NewLayeredCache(redis, cfg.Cache.MemoryMaxSize, cfg.Cache.TTL), nil
	default:
		return cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize)), nil
	}
}

// ProvideEngine builds the paced, breaker-guarded engine client and puts the
// response cache in front of it when one is configured.
func ProvideEngine(cfg *config.Config, c cache.Service, m domrepo.Metrics, l *logger.Logger) (service.AnalyticsEngine, error) {
	opts := []engine.BaseOption{
		engine.WithRateLimit(cfg.Engine.RateLimit.RPS, cfg.Engine.RateLimit.Burst),
		engine.WithMetrics(m),
	}
	if cfg.Engine.Breaker.Enabled {
		opts = append(opts, engine.WithBreaker(cfg.Engine.Breaker.ConsecutiveFailures, cfg.Engine.Breaker.OpenTimeout))
	}

	client, err := engine.NewHTTPClient(cfg.Engine.BaseURL, cfg.Engine.Timeout, engine.QueryOptions{
		HistogramBins: cfg.Engine.HistogramBins,
		VolCutoff:     cfg.Engine.VolCutoff,
	}, l, opts...)
	if err != nil {
		return nil, fmt.Errorf("engine client: %w", err)
	}
	if c == nil {
		return client, nil
	}
	return engine.NewCachedEngine(client, c, cfg.Cache.TTL, cfg.Cache.BoundsTTL, m, l), nil
}

func ProvideDashboard(cfg *config.Config, eng service.AnalyticsEngine, m domrepo.Metrics, pipeline *mid.EventPipeline, l *logger.Logger) *usecase.Dashboard {
	return usecase.NewDashboard(eng, usecase.DashboardConfig{
		QueryTimeout:   cfg.Engine.QueryTimeout,
		PredictTimeout: cfg.Engine.Timeout,
	}, m, pipeline, l)
}

func ProvideDashboardHandler(l *logger.Logger, dash *usecase.Dashboard) *api.DashboardHandler {
	return api.NewDashboardHandler(l, dash)
}

func ProvideHTTPServer(cfg *config.Config, l *logger.Logger, reg *prometheus.Registry, h *api.DashboardHandler) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsPath(cfg.Metrics.Path))
	} else {
		opts = append(opts, xhttp.WithMetricsPath(""))
	}
	return xhttp.NewServer(l, reg, reg, []xhttp.Handler{h}, opts...)
}

func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	dash *usecase.Dashboard,
	pipeline *mid.EventPipeline,
	pub domrepo.EventPublisher,
	srv *xhttp.Server,
	c cache.Service,
) *server.App {
	return server.New(cfg, l, dash, pipeline, pub, srv, c)
}
