// Copyright (C) 2025 Kodiak AI (maintainers@kodiakai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package assistant provides the account knowledge assistant service.
//
// This package contains the main Service type that coordinates all
// components: HTTP routing, the LLM client, the Weaviate-backed retrieval
// pipeline, conversation memory, and observability infrastructure.
//
// # Usage
//
//	cfg := assistant.Config{Port: 3000, LLMBackend: "openai"}
//	svc, err := assistant.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Fatal(svc.Run())
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/KodiakAI/kodiak/services/assistant/conversation"
	"github.com/KodiakAI/kodiak/services/assistant/datatypes"
	"github.com/KodiakAI/kodiak/services/assistant/observability"
	"github.com/KodiakAI/kodiak/services/assistant/rag"
	"github.com/KodiakAI/kodiak/services/assistant/routes"
	"github.com/KodiakAI/kodiak/services/assistant/services"
	"github.com/KodiakAI/kodiak/services/llm"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Service defines the contract for the assistant service.
//
// # Description
//
// Service abstracts the assistant lifecycle, enabling testing and
// alternative implementations. Run() blocks and should only be called once
// per instance.
type Service interface {
	// Run starts the HTTP server and blocks until shutdown or error.
	Run() error

	// Router returns the underlying Gin engine for testing.
	// Callers must not modify the router.
	Router() *gin.Engine
}

// =============================================================================
// Configuration
// =============================================================================

// Config holds assistant configuration options.
//
// # Description
//
// Config centralizes all configuration for the assistant service. Values
// can be populated from environment variables, config files, or
// programmatically for testing. All fields have defaults applied by New().
//
// # Examples
//
//	// Minimal config (uses all defaults)
//	cfg := Config{}
//
//	// Custom port and LLM backend
//	cfg := Config{
//	    Port:       8080,
//	    LLMBackend: "ollama",
//	}
type Config struct {
	// Port is the HTTP server port. Default: 3000
	Port int

	// LLMBackend specifies the LLM provider.
	// Valid values: "openai", "ollama"
	// Default: "openai"
	LLMBackend string

	// WeaviateURL is the Weaviate vector database URL.
	// Required: the retrieval pipeline cannot run without it.
	// Example: "http://localhost:8080"
	WeaviateURL string

	// OTelEndpoint is the OpenTelemetry collector endpoint.
	// Default: "kodiak-otel-collector:4317"
	OTelEndpoint string

	// GinMode sets the Gin framework mode.
	// Valid values: "debug", "release", "test"
	// Default: uses GIN_MODE env var or "debug"
	GinMode string

	// BotName is the assistant persona name used in prompts and rendered
	// history. Default: "Kodiak"
	BotName string

	// AccountName is the client account the knowledge base covers.
	// Default: "Acme"
	AccountName string

	// Memory configures the conversation window store.
	// Zero value uses conversation.DefaultMemoryConfig().
	Memory conversation.MemoryConfig
}

// =============================================================================
// Implementation
// =============================================================================

// service implements Service for production use.
//
// # Thread Safety
//
// Thread-safe after construction. All fields are read-only after New()
// returns.
type service struct {
	config         Config
	router         *gin.Engine
	llmClient      llm.LLMClient
	weaviateClient *weaviate.Client
	retriever      rag.Retriever
	chatService    *services.ChatService
	tracerCleanup  func(context.Context)
}

// =============================================================================
// Constructor
// =============================================================================

// New creates a new assistant Service with the given configuration.
//
// # Description
//
// New initializes all components:
//  1. Applies default configuration for missing values
//  2. Initializes OpenTelemetry tracing
//  3. Initializes Prometheus metrics
//  4. Creates the Weaviate client and ensures the corpus schemas
//  5. Creates the LLM client based on backend type
//  6. Wires the retrieval pipeline and conversation memory
//  7. Sets up HTTP routes
//
// # Inputs
//
//   - cfg: Service configuration. Zero values use defaults, except
//     WeaviateURL which is required.
//
// # Outputs
//
//   - Service: Ready-to-run assistant service
//   - error: Non-nil if initialization fails
//
// # Assumptions
//
//   - Environment variables are set for the LLM provider (API keys, URLs)
//   - EMBEDDING_SERVICE_URL points at the embedding sidecar
func New(cfg Config) (Service, error) {
	s := &service{
		config: applyConfigDefaults(cfg),
	}

	cleanup, err := s.initTracer()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}
	s.tracerCleanup = cleanup

	metrics := observability.InitMetrics()
	slog.Info("Initialized Prometheus metrics")

	if err := s.initWeaviate(); err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to initialize Weaviate: %w", err)
	}

	if err := s.initLLMClient(); err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}

	prompts := rag.Prompts{BotName: s.config.BotName, AccountName: s.config.AccountName}
	store := conversation.NewStore(s.config.Memory)
	s.retriever = rag.NewWeaviateRetriever(s.weaviateClient, rag.NewSidecarEmbedder())

	s.chatService = services.NewChatService(
		store,
		rag.NewClassifier(s.llmClient, prompts),
		rag.NewExpander(s.llmClient, prompts),
		rag.NewAggregator(s.retriever),
		rag.NewWeaviateRecencyProvider(s.weaviateClient),
		s.llmClient,
		prompts,
		metrics,
	)

	s.initRouter()

	return s, nil
}

// =============================================================================
// Service Interface Methods
// =============================================================================

// Run starts the HTTP server and blocks until shutdown or error.
func (s *service) Run() error {
	defer s.cleanup()

	addr := fmt.Sprintf(":%d", s.config.Port)
	slog.Info("Starting assistant server", "port", s.config.Port,
		"bot", s.config.BotName, "account", s.config.AccountName)

	return s.router.Run(addr)
}

// Router returns the underlying Gin engine for testing.
func (s *service) Router() *gin.Engine {
	return s.router
}

// =============================================================================
// Private Initialization Methods
// =============================================================================

// applyConfigDefaults fills in missing configuration values.
func applyConfigDefaults(cfg Config) Config {
	if cfg.Port == 0 {
		cfg.Port = 3000
	}
	if cfg.LLMBackend == "" {
		cfg.LLMBackend = "openai"
	}
	if cfg.OTelEndpoint == "" {
		cfg.OTelEndpoint = "kodiak-otel-collector:4317"
	}
	if cfg.BotName == "" {
		cfg.BotName = "Kodiak"
	}
	if cfg.AccountName == "" {
		cfg.AccountName = "Acme"
	}
	if cfg.Memory == (conversation.MemoryConfig{}) {
		cfg.Memory = conversation.DefaultMemoryConfig()
	}
	if cfg.Memory.BotName == "" {
		cfg.Memory.BotName = cfg.BotName
	}
	return cfg
}

// initTracer initializes OpenTelemetry distributed tracing.
//
// Uses an insecure gRPC connection, appropriate for internal networks.
func (s *service) initTracer() (func(context.Context), error) {
	ctx := context.Background()

	conn, err := grpc.NewClient(s.config.OTelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("assistant-service")))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))

	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	cleanup := func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}

	return cleanup, nil
}

// initWeaviate initializes the Weaviate vector database client.
//
// Unlike optional integrations, Weaviate is a hard dependency here: both
// corpora and the recency block live in it.
func (s *service) initWeaviate() error {
	weaviateURL := strings.Trim(s.config.WeaviateURL, "\"' ")

	if weaviateURL == "" {
		return fmt.Errorf("WeaviateURL is required")
	}

	parsedURL, err := url.Parse(weaviateURL)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return fmt.Errorf("invalid Weaviate URL: %s", weaviateURL)
	}

	clientConf := weaviate.Config{
		Host:   parsedURL.Host,
		Scheme: parsedURL.Scheme,
	}

	s.weaviateClient, err = weaviate.NewClient(clientConf)
	if err != nil {
		return fmt.Errorf("failed to create Weaviate client: %w", err)
	}

	datatypes.EnsureWeaviateSchema(s.weaviateClient)
	slog.Info("Weaviate client initialized", "url", weaviateURL)

	return nil
}

// initLLMClient initializes the LLM provider client.
func (s *service) initLLMClient() error {
	var err error

	switch s.config.LLMBackend {
	case "openai":
		s.llmClient, err = llm.NewOpenAIClient()
		slog.Info("Using OpenAI LLM backend")
	case "ollama":
		s.llmClient, err = llm.NewOllamaClient()
		slog.Info("Using Ollama LLM backend")
	default:
		slog.Warn("Unknown LLM backend, defaulting to openai", "backend", s.config.LLMBackend)
		s.llmClient, err = llm.NewOpenAIClient()
	}

	return err
}

// initRouter sets up the Gin HTTP router with all routes.
func (s *service) initRouter() {
	if s.config.GinMode != "" {
		gin.SetMode(s.config.GinMode)
	}
	s.router = gin.Default()
	s.router.Use(otelgin.Middleware("assistant-service"))

	routes.SetupRoutes(s.router, s.chatService, s.retriever)
}

// cleanup releases all resources held by the service.
func (s *service) cleanup() {
	if s.tracerCleanup != nil {
		s.tracerCleanup(context.Background())
	}
}

// =============================================================================
// Compile-time Interface Compliance
// =============================================================================

var _ Service = (*service)(nil)
