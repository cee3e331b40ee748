package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"procurement-radar/api/handler"
	"procurement-radar/api/middleware"
	"procurement-radar/api/router"
	"procurement-radar/job"
	"procurement-radar/logic/chat"
	"procurement-radar/logic/classify"
	"procurement-radar/logic/ingestion"
	"procurement-radar/logic/ingestion/extract"
	"procurement-radar/logic/matching"
	"procurement-radar/logic/notify"
	"procurement-radar/logic/retrieval"
	"procurement-radar/logic/scoring"
	"procurement-radar/logic/source"
	"procurement-radar/service"
	"procurement-radar/storage/es"
	"procurement-radar/storage/postgres"
	"procurement-radar/vars"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := vars.Load()
	if err != nil {
		panic(err)
	}

	log, err := initLogger(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()
	timeout := cfg.Pipeline.CallTimeout

	// 1. 初始化 DB
	db, err := postgres.InitDB(cfg.Database.DSN(), postgres.PoolConfig{
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, log)
	if err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}
	lotRepo := postgres.NewLotRepo(db)
	subscriberRepo := postgres.NewSubscriberRepo(db)
	proposalRepo := postgres.NewProposalRepo(db)

	// 2. 初始化 LLM，所有调用方共用一个实例
	chatModel, err := chat.NewModel(ctx, cfg.LLM, timeout)
	if err != nil {
		log.Fatal("chat model init failed", zap.Error(err))
	}

	// 3. 搜索索引可选
	var index service.LotIndex
	if len(cfg.ES.Addresses) > 0 {
		lotIndexer, err := es.NewLotIndexer(ctx, cfg.ES.Addresses, cfg.ES.Index, log)
		if err != nil {
			log.Warn("elasticsearch unavailable, keyword search disabled", zap.Error(err))
		} else {
			index = lotIndexer
		}
	}

	// 4. 偏好匹配
	catalog, err := matching.LoadCatalog(cfg.Pipeline.CatalogPath)
	if err != nil {
		log.Fatal("nomenclature catalog load failed", zap.Error(err))
	}
	classifier, err := newClassifier(ctx, cfg, chatModel, log)
	if err != nil {
		log.Fatal("classifier init failed", zap.Error(err))
	}
	matcher := matching.NewMatcher(catalog, classifier, cfg.Pipeline.SemanticFallback, log)

	if !cfg.SMTP.Configured() {
		log.Warn("smtp is not configured, digests will fail to send")
	}
	sender := notify.NewSMTPSender(cfg.SMTP, timeout, log)
	fanOut := notify.NewFanOut(subscriberRepo, matcher, sender, cfg.Pipeline.FallbackRecipients, timeout, log)

	// 5. 入库
	var docs ingestion.DocumentFetcher
	if cfg.Pipeline.FetchDocumentation {
		fetcher, err := ingestion.NewDocFetcher(ctx, &http.Client{Timeout: timeout}, log)
		if err != nil {
			log.Fatal("documentation fetcher init failed", zap.Error(err))
		}
		docs = fetcher
	}
	ingestor := ingestion.NewIngestor(lotRepo, docs, cfg.Pipeline.Concurrency, timeout, log)
	feed := source.NewHTTPFeed(cfg.Pipeline.SourceFeeds, timeout, log)

	// 6. 初始化 Service
	proposalSvc := service.NewProposalService(proposalRepo, lotRepo, scoring.NewLLMAssessor(chatModel, timeout, log), log)
	pipelineSvc := service.NewPipelineService(feed, ingestor, index, fanOut, proposalSvc, log)
	cleanupSvc := service.NewCleanupService(lotRepo, index, log)
	lotSvc := service.NewLotService(lotRepo, index,
		retrieval.NewQueryAnalyzer(chatModel, timeout, log),
		extract.NewLotExtractor(chatModel, timeout),
		pipelineSvc, log)
	preferenceSvc := service.NewPreferenceService(subscriberRepo)

	// 7. 定时任务
	scheduler, err := job.NewScheduler(cfg.Pipeline, pipelineSvc, cleanupSvc, log)
	if err != nil {
		log.Fatal("scheduler init failed", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	// 8. 启动 Web Server
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(log))
	h := handler.NewHandler(lotSvc, preferenceSvc, proposalSvc, pipelineSvc, cleanupSvc, cfg.Pipeline.GraceDays, log)
	router.RegisterRoutes(r, h)

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: r}
	go func() {
		log.Info("server running", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
}

func initLogger(cfg vars.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}
	return zapCfg.Build(zap.Fields(zap.String("app", vars.AppName)))
}

func newClassifier(ctx context.Context, cfg vars.Config, gen chat.Generator, log *zap.Logger) (matching.Classifier, error) {
	if cfg.Pipeline.Classifier == "embedding" {
		embedder, err := chat.NewEmbedder(ctx, cfg.LLM, cfg.Pipeline.CallTimeout)
		if err != nil {
			return nil, err
		}
		return classify.NewEmbeddingClassifier(embedder, cfg.Pipeline.EmbeddingThreshold, cfg.Pipeline.CallTimeout, log), nil
	}
	return classify.NewLLMClassifier(gen, cfg.Pipeline.CallTimeout, log), nil
}
