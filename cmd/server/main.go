package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stayfinder/internal/config"
	"stayfinder/internal/contextstore"
	"stayfinder/internal/events"
	"stayfinder/internal/geo"
	"stayfinder/internal/handler"
	"stayfinder/internal/llm"
	"stayfinder/internal/logger"
	"stayfinder/internal/repository"
	"stayfinder/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	zlog.Info("starting stayfinder",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	gin.SetMode(cfg.Server.GinMode)

	repo, err := repository.NewPostgresRepository(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
	)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer repo.Close()
	zlog.Info("connected to PostgreSQL")

	// Context store: Redis when configured, in-process otherwise.
	ttl := time.Duration(cfg.Redis.ContextTTLMins) * time.Minute
	var store contextstore.Store
	if cfg.Redis.Enabled {
		redisStore, err := contextstore.NewRedisStore(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, ttl)
		if err != nil {
			zlog.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisStore.Close()
		store = redisStore
		zlog.Info("using redis context store", zap.String("addr", cfg.Redis.Addr))
	} else {
		store = contextstore.NewMemoryStore(ttl)
		zlog.Info("using in-memory context store")
	}

	// Analytics publisher is optional.
	var publisher *events.Publisher
	if cfg.NATS.Enabled {
		publisher, err = events.NewPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix, zlog)
		if err != nil {
			zlog.Warn("failed to connect to nats, events disabled", zap.Error(err))
		} else {
			defer publisher.Close()
			zlog.Info("publishing analytics events", zap.String("url", cfg.NATS.URL))
		}
	}

	var geocoder *geo.Client
	if cfg.Geocode.Enabled {
		geocoder = geo.NewClient(cfg.Geocode.BaseURL, cfg.Geocode.Timeout, zlog)
		zlog.Info("destination validation enabled", zap.String("base_url", cfg.Geocode.BaseURL))
	}

	var llmClient *llm.Client
	var enhancer *llm.Enhancer
	if cfg.LLM.Enabled {
		llmClient = llm.NewClient(&cfg.LLM, zlog)
		enhancer = llm.NewEnhancer(llmClient, zlog)
		zlog.Info("response enhancement enabled",
			zap.String("api_base", cfg.LLM.APIBase),
			zap.String("chat_model", cfg.LLM.ChatModel),
			zap.String("embedding_model", cfg.LLM.EmbeddingModel),
		)
	} else {
		zlog.Info("response enhancement disabled, using rule-based responses only")
	}

	chatService := service.NewChatService(repo, store, publisher, geocoder, enhancer, cfg.Engine, zlog)

	chatHandler := handler.NewChatHandler(chatService, 20, cfg.Engine.CandidateLimit)
	embeddingHandler := handler.NewEmbeddingHandler(chatService, llmClient, cfg.LLM.EmbeddingDimensions)
	feedbackHandler := handler.NewFeedbackHandler(chatService)

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":     "healthy",
			"service":    "stayfinder",
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/chat", chatHandler.Chat)
		apiV1.POST("/chat/stream", chatHandler.ChatStream)
		apiV1.POST("/chat/reset", chatHandler.Reset)
		apiV1.GET("/listings/:id", chatHandler.GetListing)

		apiV1.POST("/embeddings/batch", embeddingHandler.BatchUpdate)

		apiV1.POST("/feedback", feedbackHandler.Submit)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	zlog.Info("listening", zap.String("addr", addr))

	go func() {
		if err := router.Run(addr); err != nil {
			zlog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down")
}
