package bootstrap

import (
	"log"

	"cs-agent-be/internal/config"
	"cs-agent-be/internal/controller"
	"cs-agent-be/internal/pkg/logger"
	"cs-agent-be/internal/repository/implementation"
	"cs-agent-be/internal/repository/memory"
	"cs-agent-be/internal/repository/unitofwork"
	"cs-agent-be/internal/service"
	"cs-agent-be/pkg/access"
	"cs-agent-be/pkg/agent"
	"cs-agent-be/pkg/async"
	"cs-agent-be/pkg/backend"
	"cs-agent-be/pkg/dispatch"
	"cs-agent-be/pkg/embedding"
	"cs-agent-be/pkg/eval"
	"cs-agent-be/pkg/knowledge"
	"cs-agent-be/pkg/llm/factory"

	pktNats "cs-agent-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Shared infra, exposed for shutdown
	NatsPublisher *pktNats.Publisher
	Logger        logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	pipelineLogger := logger.NewIsolatedLogger("logs/pipeline.log")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.GeminiAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	// NATS is best-effort: a dead bus degrades events, never requests.
	var chatEvents service.EventPublisher
	var evalEvents eval.EventPublisher
	var ticketEvents agent.EventSink
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	} else {
		chatEvents = natsPub
		evalEvents = natsPub
		ticketEvents = natsPub
	}

	stateRepo := memory.NewConversationStateRepository()
	backendClient := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.APIKey, cfg.Backend.Timeout)

	messageRepo := implementation.NewConversationMessageRepository(db)
	chunkRepo := implementation.NewKnowledgeChunkRepository(db)
	evalRepo := implementation.NewEvalRunRepository(db)

	// 5. Domain Components
	resolver := access.NewResolver()
	gateway := knowledge.NewGateway(embeddingProvider, chunkRepo, sysLogger)

	judge := eval.NewJudge(llmProvider, cfg.Eval.JudgeModel)
	evalTrigger := eval.NewTrigger(evalRepo, messageRepo, gateway, judge, evalEvents, pipelineLogger)
	tasks := async.NewRunner(pipelineLogger, cfg.Backend.Timeout*4)
	scheduler := eval.NewScheduler(evalTrigger, tasks)

	prompts := agent.NewPromptBuilder(cfg.Ai.PromptFilePath, sysLogger)
	toolset := agent.NewToolset(gateway, backendClient, llmProvider, stateRepo, scheduler, ticketEvents, sysLogger)
	runner := agent.NewRunner(llmProvider, toolset, prompts, cfg.Ai.MaxToolTurns, sysLogger)

	dispatcher := dispatch.NewDispatcher(uowFactory, backendClient, toolset, stateRepo, pipelineLogger)

	// 6. Services
	publisherService := service.NewPublisherService(cfg.App.TurnTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.TurnTopic,
		resolver,
		dispatcher,
		evalTrigger,
		tasks,
	)

	chatService := service.NewChatService(
		uowFactory,
		resolver,
		runner,
		publisherService,
		chatEvents,
		cfg.Ai.HistoryRuns,
		sysLogger,
	)
	evalService := service.NewEvalService(scheduler, evalRepo, sysLogger)

	// 7. Controllers
	return &Container{
		ChatController:  controller.NewChatController(chatService, evalService),
		ConsumerService: consumerService,
		NatsPublisher:   natsPub,
		Logger:          sysLogger,
	}
}
