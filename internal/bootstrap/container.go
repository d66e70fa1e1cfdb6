package bootstrap

import (
	"context"
	"fmt"

	"insightrag-be/internal/config"
	"insightrag-be/internal/controller"
	"insightrag-be/internal/job"
	"insightrag-be/internal/pkg/logger"
	"insightrag-be/internal/repository/memory"
	"insightrag-be/internal/schedule"
	"insightrag-be/internal/service"
	"insightrag-be/pkg/embedding"
	embeddingFactory "insightrag-be/pkg/embedding/factory"
	"insightrag-be/pkg/extractor"
	llmFactory "insightrag-be/pkg/llm/factory"
	pktNats "insightrag-be/pkg/nats"
	"insightrag-be/pkg/rag/index"
	"insightrag-be/pkg/rag/response"
	"insightrag-be/pkg/rag/session"
	"insightrag-be/pkg/store"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

const EventsTopic = "insightrag.session_events"

type Container struct {
	// Controllers
	SessionController controller.ISessionController

	// Services (the CLI drives SessionService directly)
	SessionService  service.ISessionService
	ConsumerService service.IConsumerService

	// Scheduler is nil when PURGE_SCHEDULE is empty.
	Scheduler schedule.Scheduler

	Logger logger.ILogger

	closers []func()
}

func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	return newContainer(ctx, cfg, &Container{})
}

// newContainer wires into c. On error everything created so far is closed.
func newContainer(ctx context.Context, cfg *config.Config, c *Container) (_ *Container, err error) {
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	llmLogger := logger.NewIsolatedLogger(cfg.App.LLMLogFilePath)
	c.Logger = sysLogger
	c.closers = append(c.closers, func() {
		_ = llmLogger.Sync()
		_ = sysLogger.Sync()
	})

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NopLogger{},
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	var sink service.EventSink
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS, events stay in process", map[string]interface{}{"error": err.Error()})
		} else {
			sink = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	publisherService := service.NewPublisherService(pubSub, EventsTopic)
	c.ConsumerService = service.NewConsumerService(pubSub, EventsTopic, sink, sysLogger)

	// 3. AI Providers
	embedder, err := embeddingFactory.NewEmbeddingProvider(ctx, embeddingFactory.Config{
		Provider: cfg.Ai.EmbeddingProvider,
		Model:    cfg.Ai.EmbeddingModel,
		BaseURL:  embeddingBaseURL(cfg),
		APIKey:   cfg.EmbeddingKey(),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}
	embedder = c.wrapEmbeddingCaches(ctx, cfg, embedder, sysLogger)
	sysLogger.Info("BOOTSTRAP", "Embedding provider ready", map[string]interface{}{
		"provider": cfg.Ai.EmbeddingProvider,
		"model":    embedder.ModelName(),
	})

	llmProvider, err := llmFactory.NewLLMProvider(ctx, llmFactory.Config{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		BaseURL:  llmBaseURL(cfg),
		APIKey:   cfg.LLMKey(),
	})
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	sysLogger.Info("BOOTSTRAP", "LLM provider ready", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	// 4. RAG Pipeline
	indexer, err := index.NewIndexer(embedder, cfg.Rag.IndexWorkers, sysLogger)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, indexer.Release)

	generator := response.NewGenerator(llmProvider, llmLogger, cfg.Ai.LLMMaxTokens, cfg.Ai.LLMTemperature)
	builder := session.NewBuilder(extractor.New(), indexer, generator, session.BuilderConfig{
		ChunkSize:     cfg.Rag.ChunkSize,
		ChunkOverlap:  cfg.Rag.ChunkOverlap,
		TopK:          cfg.Rag.TopK,
		QuestionLimit: cfg.Rag.QuestionLimit,
	}, sysLogger)

	// 5. Session Store
	sessionStore := store.New(
		memory.NewSessionRepository(),
		builder,
		store.WithTTL(cfg.Rag.SessionTTL),
		store.WithPurgeHook(service.StorePurgedHook(publisherService, sysLogger)),
	)
	c.SessionService = service.NewSessionService(sessionStore, publisherService, sysLogger)

	// 6. Background Jobs
	if cfg.Rag.PurgeSchedule != "" {
		scheduler := schedule.NewCronScheduler(sysLogger)
		if err := scheduler.AddJob(job.NewPurgeJob(c.SessionService), cfg.Rag.PurgeSchedule); err != nil {
			return nil, fmt.Errorf("purge schedule: %w", err)
		}
		c.Scheduler = scheduler
	}

	// 7. Controllers
	c.SessionController = controller.NewSessionController(c.SessionService)

	return c, nil
}

// Close releases resources in reverse order of creation.
func (c *Container) Close() {
	if c.Scheduler != nil {
		c.Scheduler.Stop()
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// wrapEmbeddingCaches layers an in-process LRU over an optional shared Redis cache.
func (c *Container) wrapEmbeddingCaches(ctx context.Context, cfg *config.Config, embedder embedding.EmbeddingProvider, log logger.ILogger) embedding.EmbeddingProvider {
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Warn("BOOTSTRAP", "Failed to parse Redis URL, using it as address", map[string]interface{}{"error": err.Error()})
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb := redis.NewClient(opt)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("BOOTSTRAP", "Redis unreachable, shared embedding cache disabled", map[string]interface{}{"error": err.Error()})
			_ = rdb.Close()
		} else {
			embedder = embedding.WrapRedisCache(embedder, rdb, cfg.Ai.EmbeddingCacheTTL)
			c.closers = append(c.closers, func() { _ = rdb.Close() })
		}
	}

	if cfg.Ai.EmbeddingCacheSize > 0 {
		embedder = embedding.WrapLRUCache(embedder, cfg.Ai.EmbeddingCacheSize, cfg.Ai.EmbeddingCacheTTL)
	}
	return embedder
}

func embeddingBaseURL(cfg *config.Config) string {
	if cfg.Ai.EmbeddingBaseURL != "" || cfg.Ai.EmbeddingProvider != "ollama" {
		return cfg.Ai.EmbeddingBaseURL
	}
	return cfg.Ai.OllamaBaseURL
}

func llmBaseURL(cfg *config.Config) string {
	if cfg.Ai.LLMBaseURL != "" || cfg.Ai.LLMProvider != "ollama" {
		return cfg.Ai.LLMBaseURL
	}
	return cfg.Ai.OllamaBaseURL
}
