package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coedit/config"
	"coedit/config/database"
	authRepo "coedit/internal/auth/repository"
	authService "coedit/internal/auth/service"
	docRepo "coedit/internal/document/repository"
	docService "coedit/internal/document/service"
	"coedit/pkg/logger"
	"coedit/router"
	"coedit/socket"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables from OS")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.LogLevel)
	defer logger.Sync()

	if cfg.UsingDefaultSecret() {
		logger.Sugar.Warn("JWT_SECRET is not set; tokens are signed with the built-in development secret")
	}

	var (
		users authRepo.UserRepository
		docs  docRepo.DocumentRepository
	)
	if cfg.DatabaseURL != "" {
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			logger.Sugar.Fatalf("Database unavailable: %v", err)
		}
		defer db.Close()
		if err := database.Migrate(db); err != nil {
			logger.Sugar.Fatalf("Failed to apply schema: %v", err)
		}
		users = authRepo.NewPostgresUserRepository(db)
		docs = docRepo.NewPostgresDocumentRepository(db)
	} else {
		logger.Sugar.Info("No database configured, keeping users and documents in memory")
		users = authRepo.NewMemoryUserRepository()
		docs = docRepo.NewMemoryDocumentRepository()
	}

	auth := authService.NewAuthService(users, cfg.JWTSecret, authService.WithTokenTTL(cfg.TokenTTL))
	documents := docService.NewDocumentService(docs)

	scope := socket.ScopeGlobal
	if cfg.RelayScope == config.RelayScopeDocument {
		scope = socket.ScopeDocument
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := socket.NewHub(scope)
	go hub.Run(ctx)

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: router.Setup(auth, documents, hub, router.Options{
			CORSOrigin:    cfg.CORSOrigin,
			WSRequireAuth: cfg.WSRequireAuth,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Sugar.Infof("Server running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Sugar.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Sugar.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar.Errorf("Graceful shutdown failed: %v", err)
	}
	<-hub.Done()
}
