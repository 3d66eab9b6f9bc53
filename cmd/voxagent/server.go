package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	mongooptions "go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/innovate-ai/voxagent/agent"
	"github.com/innovate-ai/voxagent/api/handlers"
	"github.com/innovate-ai/voxagent/browser"
	"github.com/innovate-ai/voxagent/config"
	"github.com/innovate-ai/voxagent/internal/media"
	"github.com/innovate-ai/voxagent/internal/metrics"
	"github.com/innovate-ai/voxagent/internal/server"
	"github.com/innovate-ai/voxagent/internal/telemetry"
	"github.com/innovate-ai/voxagent/internal/tokens"
	"github.com/innovate-ai/voxagent/openai"
	"github.com/innovate-ai/voxagent/speech"
	"github.com/innovate-ai/voxagent/store"
	"github.com/innovate-ai/voxagent/types"
	"github.com/innovate-ai/voxagent/vectorstore"
)

// Server assembles and runs all voxagent services.
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	httpManager    *server.Manager
	metricsManager *server.Manager

	collector *metrics.Collector
	otel      *telemetry.Providers

	db          *gorm.DB
	redisClient *redis.Client
	mongoClient *mongo.Client

	healthHandler      *handlers.HealthHandler
	agentsHandler      *handlers.AgentsHandler
	speechHandler      *handlers.SpeechHandler
	filesHandler       *handlers.FilesHandler
	languageHandler    *handlers.LanguageHandler
	computerUseHandler *handlers.ComputerUseHandler
	sessionHandler     *handlers.SessionHandler
	audioHandler       *handlers.MediaHandler
	screenshotHandler  *handlers.MediaHandler
	indexHandler       *handlers.IndexHandler

	rateLimiterCancel context.CancelFunc
	prunerCancel      context.CancelFunc
}

// NewServer creates the server; components are wired in Start.
func NewServer(cfg *config.Config, logger *zap.Logger, otel *telemetry.Providers) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger,
		otel:   otel,
	}
}

// Start wires every component and brings up both listeners.
func (s *Server) Start() error {
	s.collector = metrics.NewCollector("voxagent", s.logger)

	if err := s.initHandlers(); err != nil {
		return fmt.Errorf("failed to init handlers: %w", err)
	}

	if err := s.startHTTPServer(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	if err := s.startMetricsServer(); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}

	s.startMediaPruner()

	s.logger.Info("All servers started",
		zap.Int("http_port", s.cfg.Server.HTTPPort),
		zap.Int("metrics_port", s.cfg.Server.MetricsPort),
	)

	return nil
}

func (s *Server) initHandlers() error {
	s.healthHandler = handlers.NewHealthHandler(s.logger)

	client := openai.NewClient(openai.Config{
		APIKey:  s.cfg.OpenAI.APIKey,
		BaseURL: s.cfg.OpenAI.BaseURL,
		Timeout: s.cfg.OpenAI.Timeout,
	}, s.logger)

	transcriber := &meteredTranscriber{
		inner:     speech.NewTranscriber(client, s.cfg.OpenAI.TranscriptionModel, s.logger),
		collector: s.collector,
	}

	synthesizer, err := s.buildSynthesizer(client)
	if err != nil {
		return err
	}

	docStore, err := s.buildVectorStore(client)
	if err != nil {
		return err
	}

	var recorder handlers.ConversationRecorder
	var history agent.HistorySource
	if s.cfg.Database.Enabled {
		db, err := store.Open(s.cfg.Database, s.logger)
		if err != nil {
			s.logger.Warn("Database not available, conversation logging disabled", zap.Error(err))
		} else {
			s.db = db
			log := store.NewConversationLog(db, s.logger)
			recorder = &conversationRecorder{log: log}
			history = &conversationHistory{log: log}
			s.registerDatabaseCheck(db)
		}
	}

	counter := tokens.NewCounter()
	detector := agent.NewLanguageDetector(client, s.cfg.OpenAI.ChatModel, s.logger)

	registry := agent.NewRegistry(s.logger,
		agent.NewDefaultProcessor(client, transcriber, history, counter, s.cfg.OpenAI.ChatModel, 0, s.logger),
		agent.NewWebSearchProcessor(client, transcriber, s.cfg.OpenAI.SearchModel, s.cfg.OpenAI.ChatModel, s.logger),
		agent.NewComputerUseProcessor(client, transcriber, s.cfg.OpenAI.ChatModel, s.logger),
		agent.NewFileSearchProcessor(client, transcriber, docStore, s.cfg.OpenAI.ChatModel, s.logger),
	)

	s.agentsHandler = handlers.NewAgentsHandler(registry, s.logger)

	s.speechHandler = handlers.NewSpeechHandler(
		&meteredProcessor{registry: registry, collector: s.collector, counter: counter, model: s.cfg.OpenAI.ChatModel},
		detector,
		synthesizer,
		recorder,
		handlers.SpeechHandlerConfig{
			AudioUploadDir: s.cfg.Uploads.Dir,
			MaxBytes:       s.cfg.Uploads.MaxBytes,
		},
		s.logger,
	)

	s.filesHandler = handlers.NewFilesHandler(docStore, handlers.FilesHandlerConfig{
		FileUploadDir: s.cfg.Uploads.Dir,
		MaxBytes:      s.cfg.Uploads.MaxBytes,
	}, s.logger)

	s.languageHandler = handlers.NewLanguageHandler(detector, s.logger)

	planner := browser.NewResponsesPlanner(client, s.cfg.OpenAI.ComputerUseModel,
		s.cfg.Browser.ViewportWidth, s.cfg.Browser.ViewportHeight)
	navigator := browser.NewNavigator(planner, browser.NavigatorConfig{
		MaxRounds:     s.cfg.Navigation.MaxRounds,
		ScreenshotDir: s.cfg.Navigation.ScreenshotDir,
		Driver: browser.Config{
			Headless:       s.cfg.Browser.Headless,
			ChromePath:     s.cfg.Browser.ChromePath,
			ViewportWidth:  s.cfg.Browser.ViewportWidth,
			ViewportHeight: s.cfg.Browser.ViewportHeight,
			StartURL:       s.cfg.Browser.StartURL,
			SettleDelay:    s.cfg.Browser.SettleDelay,
		},
	}, s.logger)

	runner := &navigatorRunner{
		nav:  navigator,
		mode: s.cfg.Browser.Driver,
		driverCfg: browser.Config{
			ViewportWidth:  s.cfg.Browser.ViewportWidth,
			ViewportHeight: s.cfg.Browser.ViewportHeight,
			StartURL:       s.cfg.Browser.StartURL,
			SettleDelay:    s.cfg.Browser.SettleDelay,
		},
		logger: s.logger,
	}
	s.computerUseHandler = handlers.NewComputerUseHandler(runner, s.collector, s.logger)

	secret := []byte(s.cfg.Session.Secret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return fmt.Errorf("failed to generate session secret: %w", err)
		}
		s.logger.Warn("session secret not configured, using ephemeral per-process key")
	}
	s.sessionHandler = handlers.NewSessionHandler(secret, s.cfg.Session.TTL, s.logger)

	s.audioHandler = handlers.NewMediaHandler(s.cfg.Speech.AudioDir, s.logger)
	s.screenshotHandler = handlers.NewMediaHandler(s.cfg.Navigation.ScreenshotDir, s.logger)
	s.indexHandler = handlers.NewIndexHandler(s.cfg.Server.WebDir)

	s.logger.Info("Handlers initialized")
	return nil
}

// buildSynthesizer assembles the synthesis cascade in configured
// provider order and guarantees the static fallback clip exists.
func (s *Server) buildSynthesizer(client *openai.Client) (*speech.Synthesizer, error) {
	var providers []speech.Provider
	for _, name := range s.cfg.Speech.Providers {
		switch name {
		case "google":
			providers = append(providers, &meteredProvider{
				inner: speech.NewGoogleProvider(speech.GoogleConfig{
					APIKey:       s.cfg.GoogleTTS.APIKey,
					Endpoint:     s.cfg.GoogleTTS.Endpoint,
					SpeakingRate: s.cfg.GoogleTTS.SpeakingRate,
					Timeout:      s.cfg.GoogleTTS.Timeout,
				}, s.logger),
				collector: s.collector,
			})
		case "openai":
			providers = append(providers, &meteredProvider{
				inner:     speech.NewOpenAIProvider(client, s.cfg.OpenAI.TTSModel, s.cfg.OpenAI.TTSVoice, s.logger),
				collector: s.collector,
			})
		default:
			s.logger.Warn("unknown speech provider, skipping", zap.String("provider", name))
		}
	}

	synthesizer := speech.NewSynthesizer(providers, s.cfg.Speech.AudioDir, s.logger)
	if err := synthesizer.EnsureFallback(); err != nil {
		return nil, fmt.Errorf("failed to prepare fallback audio: %w", err)
	}
	return synthesizer, nil
}

// buildVectorStore selects the handle repository backend and wraps it
// in the document store manager.
func (s *Server) buildVectorStore(client *openai.Client) (*meteredDocStore, error) {
	var repo vectorstore.Repository

	switch s.cfg.VectorStore.Repository {
	case "file":
		repo = vectorstore.NewFileRepository(s.cfg.VectorStore.FilePath)
	case "redis":
		s.redisClient = redis.NewClient(&redis.Options{
			Addr:         s.cfg.Redis.Addr,
			Password:     s.cfg.Redis.Password,
			DB:           s.cfg.Redis.DB,
			PoolSize:     s.cfg.Redis.PoolSize,
			MinIdleConns: s.cfg.Redis.MinIdleConns,
		})
		repo = vectorstore.NewRedisRepository(s.redisClient, s.cfg.VectorStore.RedisKey)
		s.healthHandler.RegisterCheck(handlers.NewPingCheck("redis", func(ctx context.Context) error {
			return s.redisClient.Ping(ctx).Err()
		}))
	case "sql":
		db := s.db
		if db == nil {
			opened, err := store.Open(s.cfg.Database, s.logger)
			if err != nil {
				return nil, fmt.Errorf("sql vector store repository needs a database: %w", err)
			}
			db = opened
			s.db = opened
			s.registerDatabaseCheck(opened)
		}
		repo = vectorstore.NewSQLRepository(db, "")
	case "mongo":
		mc, err := mongo.Connect(mongooptions.Client().ApplyURI(s.cfg.Mongo.URI))
		if err != nil {
			return nil, fmt.Errorf("failed to connect mongodb: %w", err)
		}
		s.mongoClient = mc
		coll := mc.Database(s.cfg.Mongo.Database).Collection(s.cfg.Mongo.Collection)
		repo = vectorstore.NewMongoRepository(coll, "")
		s.healthHandler.RegisterCheck(handlers.NewPingCheck("mongodb", func(ctx context.Context) error {
			return mc.Ping(ctx, nil)
		}))
	default:
		return nil, fmt.Errorf("unknown vector store repository: %s", s.cfg.VectorStore.Repository)
	}

	manager := vectorstore.NewManager(client, repo, vectorstore.ManagerConfig{
		StoreName:  s.cfg.VectorStore.StoreName,
		ExpiryDays: s.cfg.VectorStore.ExpiresDays,
	}, s.logger)

	return &meteredDocStore{inner: manager, collector: s.collector}, nil
}

func (s *Server) registerDatabaseCheck(db *gorm.DB) {
	s.healthHandler.RegisterCheck(handlers.NewPingCheck("database", func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}))
}

func (s *Server) startHTTPServer() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.indexHandler.HandleIndex)

	mux.HandleFunc("GET /api/agents", s.agentsHandler.HandleList)
	mux.HandleFunc("POST /api/speech", s.speechHandler.HandleSpeech)
	mux.HandleFunc("POST /api/upload-file", s.filesHandler.HandleUpload)
	mux.HandleFunc("GET /api/files", s.filesHandler.HandleList)
	mux.HandleFunc("DELETE /api/files/{id}", s.filesHandler.HandleDelete)
	mux.HandleFunc("POST /api/detect-language", s.languageHandler.HandleDetect)
	mux.HandleFunc("POST /api/computer-use", s.computerUseHandler.HandleRun)
	mux.HandleFunc("GET /api/computer-use/stream", s.computerUseHandler.HandleStream)
	mux.HandleFunc("POST /api/session", s.sessionHandler.HandleCreate)

	mux.HandleFunc("GET /audio/{file}", s.audioHandler.HandleServe)
	mux.HandleFunc("GET /screenshots/{file}", s.screenshotHandler.HandleServe)

	mux.HandleFunc("/health", s.healthHandler.HandleHealth)
	mux.HandleFunc("/healthz", s.healthHandler.HandleHealth)
	mux.HandleFunc("/ready", s.healthHandler.HandleReady)
	mux.HandleFunc("/readyz", s.healthHandler.HandleReady)
	mux.HandleFunc("/version", s.healthHandler.HandleVersion(Version, BuildTime, GitCommit))

	rateLimiterCtx, rateLimiterCancel := context.WithCancel(context.Background())
	s.rateLimiterCancel = rateLimiterCancel

	middlewares := []Middleware{
		Recovery(s.logger),
		RequestID(),
		SecurityHeaders(),
		RequestLogger(s.logger),
		CORS(s.cfg.Server.AllowedOrigins),
		RateLimiter(rateLimiterCtx, s.cfg.Server.RateLimitRPS, s.cfg.Server.RateLimitBurst, s.logger),
		MetricsMiddleware(s.collector),
		SessionAuth(s.sessionHandler),
	}
	if s.cfg.Telemetry.Enabled {
		middlewares = append(middlewares, OTelTracing())
	}
	handler := Chain(mux, middlewares...)

	serverConfig := server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.HTTPPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		IdleTimeout:     2 * s.cfg.Server.ReadTimeout,
		MaxHeaderBytes:  1 << 20,
		MaxConns:        s.cfg.Server.MaxConns,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}

	s.httpManager = server.NewManager(handler, serverConfig, s.logger)

	if s.cfg.Server.TLSCertFile != "" && s.cfg.Server.TLSKeyFile != "" {
		if err := s.httpManager.StartTLS(s.cfg.Server.TLSCertFile, s.cfg.Server.TLSKeyFile); err != nil {
			return err
		}
	} else if err := s.httpManager.Start(); err != nil {
		return err
	}

	s.logger.Info("HTTP server started", zap.Int("port", s.cfg.Server.HTTPPort))
	return nil
}

func (s *Server) startMetricsServer() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	serverConfig := server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.MetricsPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}

	s.metricsManager = server.NewManager(mux, serverConfig, s.logger)

	if err := s.metricsManager.Start(); err != nil {
		return err
	}

	s.logger.Info("Metrics server started", zap.Int("port", s.cfg.Server.MetricsPort))
	return nil
}

// startMediaPruner sweeps generated audio, screenshots and uploads on
// the configured retention window. The synthesis fallback clip is
// exempt.
func (s *Server) startMediaPruner() {
	if s.cfg.Media.Retention <= 0 {
		return
	}

	pruner := media.NewPruner(media.PrunerConfig{
		Dirs: []string{
			s.cfg.Speech.AudioDir,
			s.cfg.Navigation.ScreenshotDir,
			s.cfg.Uploads.Dir,
		},
		MaxAge:   s.cfg.Media.Retention,
		Interval: s.cfg.Media.SweepInterval,
		Keep:     []string{speech.FallbackFilename},
	}, s.logger)

	ctx, cancel := context.WithCancel(context.Background())
	s.prunerCancel = cancel
	go pruner.Run(ctx)

	s.logger.Info("Media pruner started",
		zap.Duration("retention", s.cfg.Media.Retention),
		zap.Duration("interval", s.cfg.Media.SweepInterval),
	)
}

// WaitForShutdown blocks until a termination signal, then shuts down.
func (s *Server) WaitForShutdown() {
	if s.httpManager != nil {
		s.httpManager.WaitForShutdown()
	}
	s.Shutdown()
}

// Shutdown stops every service gracefully.
func (s *Server) Shutdown() {
	s.logger.Info("Starting graceful shutdown...")

	ctx := context.Background()

	if s.rateLimiterCancel != nil {
		s.rateLimiterCancel()
	}

	if s.prunerCancel != nil {
		s.prunerCancel()
	}

	if s.httpManager != nil {
		if err := s.httpManager.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP server shutdown error", zap.Error(err))
		}
	}

	if s.metricsManager != nil {
		if err := s.metricsManager.Shutdown(ctx); err != nil {
			s.logger.Error("Metrics server shutdown error", zap.Error(err))
		}
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Error("Redis shutdown error", zap.Error(err))
		}
	}

	if s.mongoClient != nil {
		disconnectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := s.mongoClient.Disconnect(disconnectCtx); err != nil {
			s.logger.Error("MongoDB shutdown error", zap.Error(err))
		}
		cancel()
	}

	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			sqlDB.Close()
		}
	}

	if s.otel != nil {
		if err := s.otel.Shutdown(ctx); err != nil {
			s.logger.Error("Telemetry shutdown error", zap.Error(err))
		}
	}

	s.logger.Info("Graceful shutdown completed")
}

// conversationRecorder adapts the conversation log to the speech
// handler's recorder interface.
type conversationRecorder struct {
	log *store.ConversationLog
}

func (r *conversationRecorder) Record(ctx context.Context, sessionID, agentType, userText, assistantText string) error {
	if _, err := r.log.GetOrCreate(ctx, sessionID, agentType); err != nil {
		return err
	}
	return r.log.AppendExchange(ctx, sessionID, userText, assistantText)
}

// conversationHistory adapts stored messages to the agent's replay
// format.
type conversationHistory struct {
	log *store.ConversationLog
}

func (h *conversationHistory) History(ctx context.Context, sessionID string) ([]agent.HistoryMessage, error) {
	messages, err := h.log.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]agent.HistoryMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, agent.HistoryMessage{Role: m.Role, Content: m.Content})
	}
	return out, nil
}

// meteredProcessor records model-call metrics around the agent
// registry. Token counts are tokenizer estimates, not billed usage.
type meteredProcessor struct {
	registry  *agent.Registry
	collector *metrics.Collector
	counter   *tokens.Counter
	model     string
}

func (p *meteredProcessor) Process(ctx context.Context, selector string, in agent.Input) (*agent.Result, types.AgentType, error) {
	start := time.Now()
	result, agentType, err := p.registry.Process(ctx, selector, in)

	status := "success"
	if err != nil {
		status = "error"
	}
	promptTokens, completionTokens := 0, 0
	if result != nil {
		promptTokens = p.counter.Count(p.model, result.Transcript)
		completionTokens = p.counter.Count(p.model, result.Response)
	}
	p.collector.RecordModelRequest("openai", p.model, status, time.Since(start), promptTokens, completionTokens)

	return result, agentType, err
}

// meteredTranscriber counts transcription outcomes.
type meteredTranscriber struct {
	inner     *speech.Transcriber
	collector *metrics.Collector
}

func (t *meteredTranscriber) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	text, err := t.inner.Transcribe(ctx, filename, audio)
	status := "success"
	if err != nil {
		status = "error"
	}
	t.collector.RecordTranscription(status)
	return text, err
}

// meteredProvider counts synthesis outcomes per provider.
type meteredProvider struct {
	inner     speech.Provider
	collector *metrics.Collector
}

func (p *meteredProvider) Name() string { return p.inner.Name() }

func (p *meteredProvider) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	audio, err := p.inner.Synthesize(ctx, text, language)
	status := "success"
	if err != nil {
		status = "error"
	}
	p.collector.RecordSynthesis(p.inner.Name(), status)
	return audio, err
}

// meteredDocStore counts vector store operations.
type meteredDocStore struct {
	inner     *vectorstore.Manager
	collector *metrics.Collector
}

func (d *meteredDocStore) record(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	d.collector.RecordVectorStoreOp(operation, status)
}

func (d *meteredDocStore) Upload(ctx context.Context, filename string, r io.Reader) (string, string, error) {
	fileID, storeID, err := d.inner.Upload(ctx, filename, r)
	d.record("upload", err)
	return fileID, storeID, err
}

func (d *meteredDocStore) List(ctx context.Context) ([]vectorstore.FileInfo, error) {
	files, err := d.inner.List(ctx)
	d.record("list", err)
	return files, err
}

func (d *meteredDocStore) StoreID(ctx context.Context) string {
	return d.inner.StoreID(ctx)
}

func (d *meteredDocStore) Delete(ctx context.Context, fileID string) error {
	err := d.inner.Delete(ctx, fileID)
	d.record("delete", err)
	return err
}

// navigatorRunner adapts the navigator to the handler. When the
// configured driver mode is "simulated" it supplies one per run
// instead of letting the navigator try Chrome first.
type navigatorRunner struct {
	nav       *browser.Navigator
	mode      string
	driverCfg browser.Config
	logger    *zap.Logger
}

func (r *navigatorRunner) Run(ctx context.Context, instructions string, driver browser.Driver, observe func(browser.RoundUpdate)) (*browser.Result, error) {
	if driver == nil && r.mode == "simulated" {
		sim := browser.NewSimulatedDriver(r.driverCfg, r.logger)
		if err := sim.Start(ctx); err != nil {
			res := &browser.Result{
				Instructions: instructions,
				Summary:      "No se pudo iniciar el navegador virtual.",
				Terminal:     browser.TerminalCompleted,
			}
			return res, err
		}
		defer sim.Cleanup()
		result, err := r.nav.Run(ctx, instructions, sim, observe)
		if result != nil && result.DriverKind == "" {
			result.DriverKind = browser.KindSimulated
		}
		return result, err
	}
	return r.nav.Run(ctx, instructions, driver, observe)
}
