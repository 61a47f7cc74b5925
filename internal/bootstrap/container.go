package bootstrap

import (
	"context"
	"io"
	"log"
	"os"

	"ai-shopping-be/internal/config"
	"ai-shopping-be/internal/controller"
	"ai-shopping-be/internal/pkg/logger"
	dbrepo "ai-shopping-be/internal/repository/database"
	"ai-shopping-be/internal/repository/memory"
	"ai-shopping-be/internal/repository/redisstore"
	"ai-shopping-be/internal/service"
	"ai-shopping-be/pkg/llm/factory"
	pktNats "ai-shopping-be/pkg/nats"
	"ai-shopping-be/pkg/scraper"
	"ai-shopping-be/pkg/shopping/extract"
	"ai-shopping-be/pkg/shopping/query"
	"ai-shopping-be/pkg/shopping/response"
	"ai-shopping-be/pkg/shopping/search"
	"ai-shopping-be/pkg/shopping/selector"
	"ai-shopping-be/pkg/shopping/suggest"
	"ai-shopping-be/pkg/store"
	"ai-shopping-be/pkg/workflow"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController    controller.IChatController
	PaymentController controller.IPaymentController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	pipelineLogger := newPipelineLogger("logs/llm_pipeline.log")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Session storage backend
	sessions := newSessionStore(db, cfg)

	// 3. AI / Scraping Components
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		llmBaseURL(cfg),
		cfg.Keys.OpenAI,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	firecrawl := scraper.NewClient(cfg.Keys.Firecrawl, "")

	pipeline := service.Pipeline{
		Classifier: query.NewClassifier(llmProvider, pipelineLogger),
		Optimizer:  query.NewOptimizer(llmProvider, pipelineLogger),
		Searcher: search.NewOrchestrator(
			firecrawl,
			cfg.Shop.SiteBase,
			cfg.Shop.SearchPath,
			cfg.Shop.Domain,
			pipelineLogger,
		),
		LinkFilter: search.NewLinkFilter(cfg.Shop.Domain, cfg.Shop.MaxProductLinks),
		Extractor:  extract.NewEngine(firecrawl, cfg.Shop.ExtractConcurrency, pipelineLogger),
		Selector:   selector.NewSelector(llmProvider, pipelineLogger),
		Responder:  response.NewGenerator(llmProvider, pipelineLogger),
		Suggester:  suggest.NewGenerator(llmProvider, pipelineLogger),
	}

	// 4. Services
	publisherService := service.NewPublisherService(cfg.App.StepTopicName, pubSub)
	consumerService := service.NewConsumerService(pubSub, cfg.App.StepTopicName, natsPub)

	engine := workflow.NewEngine(sessions, pipelineLogger)
	chatService, err := service.NewChatService(sessions, pipeline, publisherService, natsPub, sysLogger, engine)
	if err != nil {
		log.Fatalf("[FATAL] Failed to build chat workflow: %v", err)
	}

	paymentService := service.NewPaymentService(
		cfg.Keys.MidtransServer,
		cfg.App.Environment == "production",
		cfg.App.ClientURL,
		natsPub,
		sysLogger,
	)

	// 5. Controllers
	return &Container{
		ChatController:    controller.NewChatController(chatService),
		PaymentController: controller.NewPaymentController(paymentService),
		ConsumerService:   consumerService,
	}
}

// newSessionStore picks the session backend from config. Redis and
// Postgres need their infrastructure up; memory always works.
func newSessionStore(db *gorm.DB, cfg *config.Config) store.SessionStore {
	switch cfg.App.SessionBackend {
	case "redis":
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		log.Println("[INFO] Using Session Backend: REDIS")
		return redisstore.NewSessionRepository(rdb)
	case "database":
		if db == nil {
			log.Fatalf("[FATAL] Session backend 'database' requires DB_CONNECTION_STRING")
		}
		log.Println("[INFO] Using Session Backend: POSTGRES")
		return dbrepo.NewSessionRepository(db)
	default:
		log.Println("[INFO] Using Session Backend: MEMORY")
		return memory.NewSessionRepository()
	}
}

// newPipelineLogger writes the per-step pipeline trace to its own file
// so request traces stay out of the main log. Falls back to stdout when
// the file cannot be opened.
func newPipelineLogger(path string) *log.Logger {
	if err := os.MkdirAll("logs", 0o755); err == nil {
		if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			return log.New(io.MultiWriter(f, os.Stdout), "[PIPELINE] ", log.LstdFlags)
		}
	}
	return log.New(os.Stdout, "[PIPELINE] ", log.LstdFlags)
}

func llmBaseURL(cfg *config.Config) string {
	if cfg.Ai.LLMProvider == "openai" {
		return cfg.Ai.OpenAIBaseURL
	}
	return cfg.Ai.OllamaBaseURL
}
