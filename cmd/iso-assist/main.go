package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/vinayk94/iso-assist/internal/ai"
	"github.com/vinayk94/iso-assist/internal/config"
	"github.com/vinayk94/iso-assist/internal/db"
	"github.com/vinayk94/iso-assist/internal/embedcache"
	"github.com/vinayk94/iso-assist/internal/filestore"
	"github.com/vinayk94/iso-assist/internal/handler"
	"github.com/vinayk94/iso-assist/internal/job"
	"github.com/vinayk94/iso-assist/internal/middleware"
	"github.com/vinayk94/iso-assist/internal/pkg/resilience"
	"github.com/vinayk94/iso-assist/internal/repo"
	"github.com/vinayk94/iso-assist/internal/schedule"
	"github.com/vinayk94/iso-assist/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "iso-assist",
		Short: "ERCOT document assistant backend",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the query service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			conn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	rootLogger := logutil.GetLogger(context.Background())
	rootLogger.Info("starting server",
		zap.Int("port", cfg.Port),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("embed_provider", cfg.AI.EmbedProvider),
		zap.String("file_store", cfg.FileStore.Type),
	)

	docRepo := repo.NewDocumentRepo(conn)
	chunkRepo := repo.NewChunkRepo(conn)
	cacheRepo := repo.NewEmbeddingCacheRepo(conn)

	aiProvider, err := ai.NewProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	embedProvider, err := ai.NewEmbedProvider(cfg.AI.EmbedProvider, cfg.AI.EmbedData)
	if err != nil {
		return fmt.Errorf("init embed provider: %w", err)
	}

	embedder := ai.NewEmbedder(embedProvider, cfg.AI.EmbedModel, cfg.AI.Dimension)
	embedder = embedcache.WrapDBCacheToEmbedder(embedder, cacheRepo)
	embedder = embedcache.WrapLruCacheToEmbedder(embedder, cfg.AI.CacheSize, time.Duration(cfg.AI.CacheTTLHours)*time.Hour)

	// The index column and the configured embedder must agree on width or
	// every search would be garbage. Refuse to start on a mismatch.
	columnDim, err := chunkRepo.EmbeddingDimension(context.Background())
	if err != nil {
		return fmt.Errorf("read embedding column dimension: %w", err)
	}
	if columnDim != embedder.Dimension() {
		return fmt.Errorf("embedding dimension mismatch: column has %d, embedder produces %d", columnDim, embedder.Dimension())
	}

	exec := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts: 3,
		BreakerEnabled:   true,
	})

	aiTimeout := time.Duration(cfg.AI.Timeout) * time.Second
	retriever := service.NewRetriever(embedder, chunkRepo, exec, aiTimeout)
	aggregator := service.NewSourceAggregator(cfg.Retrieval.MaxHighlights)
	generator := service.NewAnswerGenerator(
		ai.NewGenerator(aiProvider, cfg.AI.Model),
		exec,
		aiTimeout,
	)
	pipeline := service.NewQueryPipeline(
		retriever,
		aggregator,
		generator,
		service.NewCitationExtractor(),
		cfg.Retrieval.TopK,
		cfg.Retrieval.MaxSources,
	)

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	deps := handler.RouterDeps{
		Query:  handler.NewQueryHandler(pipeline, cfg.Retrieval.MaxSources),
		Files:  handler.NewFileHandler(store, cfg.FileStore),
		Health: handler.NewHealthHandler(conn, docRepo, chunkRepo),
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.RequestID(), middleware.CORS(cfg.CORS))
	engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": "iso-assist", "status": "running"})
	})
	api := engine.Group("/api", gzip.Gzip(gzip.DefaultCompression))
	handler.RegisterRoutes(api, deps)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewEmbeddingCacheCleanupJob(cacheRepo, 30), "0 3 * * *"); err != nil {
		return fmt.Errorf("schedule cleanup job: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: engine}
	go func() {
		rootLogger.Info("http server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			rootLogger.Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	rootLogger.Info("server stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
