package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/bibliogenius/bibliogenius-sub000/database"
	"github.com/bibliogenius/bibliogenius-sub000/internal/cache"
	"github.com/bibliogenius/bibliogenius-sub000/internal/config"
	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/handler"
	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/service"
	"github.com/bibliogenius/bibliogenius-sub000/internal/peerclient"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("could not load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	searchCache, err := cache.NewSearchCache(cfg.RedisURL, cfg.SearchCacheTTL)
	if err != nil {
		logger.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	defer searchCache.Close()

	transport := peerclient.New(cfg.PeerTimeout, cfg.PeerRateLimit)

	bookSvc := service.NewBookService(db)
	copySvc := service.NewCopyService(db)
	contactSvc := service.NewContactService(db)
	librarySvc := service.NewLibraryService(db)
	loanSvc := service.NewLoanService(db)
	peerSvc := service.NewPeerService(db, transport, logger)
	borrowSvc := service.NewBorrowService(db, transport, cfg.PublicURL, logger)
	searchSvc := service.NewSearchService(db, transport, searchCache, cfg.PeerTimeout, logger)

	if cfg.GoEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	handler.NewBookHandler(bookSvc).RegisterRoutes(api.Group("/books"))
	handler.NewCopyHandler(copySvc).RegisterRoutes(api.Group("/copies"))
	handler.NewContactHandler(contactSvc).RegisterRoutes(api.Group("/contacts"))
	handler.NewLibraryHandler(librarySvc).RegisterRoutes(api.Group("/libraries"))
	handler.NewLoanHandler(loanSvc).RegisterRoutes(api.Group("/loans"))
	handler.NewPeerHandler(peerSvc, borrowSvc).RegisterRoutes(api.Group("/peers"))
	handler.NewSearchHandler(searchSvc).RegisterRoutes(api)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		logger.Info("server listening", "port", cfg.HTTPPort, "public_url", cfg.PublicURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
	logger.Info("server stopped")
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
