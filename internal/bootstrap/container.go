package bootstrap

import (
	"context"
	"log"
	"os"

	"ai-notes-rag-be/internal/config"
	"ai-notes-rag-be/internal/controller"
	"ai-notes-rag-be/internal/pkg/logger"
	"ai-notes-rag-be/internal/repository/implementation"
	"ai-notes-rag-be/internal/search"
	"ai-notes-rag-be/internal/service"
	"ai-notes-rag-be/pkg/embedding"
	"ai-notes-rag-be/pkg/embedding/rediscache"
	"ai-notes-rag-be/pkg/llm/factory"
	"ai-notes-rag-be/pkg/rag"
	"ai-notes-rag-be/pkg/rag/generate"
	"ai-notes-rag-be/pkg/rag/grader"
	"ai-notes-rag-be/pkg/rag/retrieve"
	"ai-notes-rag-be/pkg/rag/simple"
	"ai-notes-rag-be/pkg/rag/workflow"
	"ai-notes-rag-be/pkg/store"
	"ai-notes-rag-be/pkg/websearch"

	pktNats "ai-notes-rag-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController
	NoteController controller.INoteController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Infrastructure handles for graceful shutdown
	EventPublisher *pktNats.Publisher
	Logger         logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	ragLogger := log.New(os.Stdout, "", log.LstdFlags)

	noteRepo := implementation.NewNoteRepository(db)
	embeddingRepo := implementation.NewNoteEmbeddingRepository(db)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS Publisher", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		sysLogger.Warn("BOOTSTRAP", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{
			"error": err.Error(),
		})
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		sysLogger.Warn("BOOTSTRAP", "Failed to connect to Redis, embedding cache disabled", map[string]interface{}{
			"error": err.Error(),
		})
		rdb = nil
	}

	// 4. AI Providers
	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaEmbeddingModel,
		)
		sysLogger.Info("BOOTSTRAP", "Using Embedding Provider: OLLAMA", map[string]interface{}{
			"model": cfg.Ai.OllamaEmbeddingModel,
		})
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey)
		sysLogger.Info("BOOTSTRAP", "Using Embedding Provider: GEMINI", nil)
	}
	embeddingProvider = rediscache.New(embeddingProvider, rdb, rediscache.DefaultTTL)

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OpenAIAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	sysLogger.Info("BOOTSTRAP", "Using LLM Provider", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	// 5. Retrieval + Answer Pipeline
	orchestrator := search.NewOrchestrator(embeddingProvider, embeddingRepo, ragLogger)
	retriever := retrieve.New(orchestrator, ragLogger, retrieve.WithTimeout(cfg.Rag.RetrieveTimeout))

	var strategy rag.Strategy
	if cfg.Rag.Mode == "simple" {
		strategy = simple.New(retriever, llmProvider, cfg.Rag.MaxContextNotes, ragLogger)
		sysLogger.Info("BOOTSTRAP", "Using RAG Mode: SIMPLE", nil)
	} else {
		opts := []workflow.Option{
			workflow.WithMaxResults(cfg.Rag.MaxContextNotes),
			workflow.WithMaxCycles(cfg.Rag.MaxCycles),
		}
		if cfg.Ai.TavilyAPIKey != "" {
			opts = append(opts, workflow.WithWebSearch(websearch.NewTavilyClient(cfg.Ai.TavilyAPIKey)))
		} else {
			sysLogger.Warn("BOOTSTRAP", "TAVILY_API_KEY not set, web search fallback disabled", nil)
		}
		strategy = workflow.New(
			retriever,
			grader.New(llmProvider, ragLogger),
			generate.New(llmProvider, ragLogger),
			ragLogger,
			opts...,
		)
		sysLogger.Info("BOOTSTRAP", "Using RAG Mode: GRADED", nil)
	}

	conversations := store.NewConversationStore(cfg.Rag.ConversationWindow, cfg.Rag.ConversationTTL)

	// 6. Services
	publisherService := service.NewPublisherService(cfg.Rag.EmbedNoteTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Rag.EmbedNoteTopic,
		noteRepo,
		embeddingRepo,
		embeddingProvider,
	)

	noteService := service.NewNoteService(noteRepo, embeddingRepo, publisherService)
	// A typed-nil *Publisher inside the interface would defeat the nil
	// check in the service, so it is only assigned when the connect worked.
	var eventPublisher service.IEventPublisher
	if natsPub != nil {
		eventPublisher = natsPub
	}
	chatService := service.NewChatService(strategy, conversations, eventPublisher, sysLogger, cfg.Rag.Mode, cfg.Ai.LLMModel)

	// 7. Controllers
	return &Container{
		ChatController:  controller.NewChatController(chatService),
		NoteController:  controller.NewNoteController(noteService),
		ConsumerService: consumerService,
		EventPublisher:  natsPub,
		Logger:          sysLogger,
	}
}
