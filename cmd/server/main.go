package main

import (
	"context"
	"dm-lab/auth"
	grpcserver "dm-lab/infrastructure/grpc/server"
	httpserver "dm-lab/infrastructure/http/server"
	"dm-lab/repositories"
	"dm-lab/services"
	"dm-lab/storage"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and keeps the deferred cleanups on the exit path.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Store
	store, err := openStore(config, log)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("Closing store...")
		_ = store.Close()
	}()
	if err = store.EnsureReady(); err != nil {
		return fmt.Errorf("store initialization failed: %w", err)
	}

	// 3. Credentials
	hasher, err := auth.NewPasswordHasher(config.HasherAlgorithm(), config.BcryptCost)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	sessions, err := auth.NewSessionIssuer([]byte(config.JWTSecret), config.AuthTokenDuration)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	// 4. Repositories & Services
	userRepository := repositories.NewUserRepository(store, log)
	messageRepository := repositories.NewMessageRepository(store, log)
	authService := services.NewAuthService(userRepository, hasher, sessions, log)
	chatService := services.NewChatService(userRepository, messageRepository, log)
	userService := services.NewUserService(userRepository)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	errChan := make(chan error, 2)

	// 6. HTTP API
	handlers := httpserver.NewHandlers(authService, chatService, userService, log)
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{
		Addr:              address,
		Handler:           httpserver.NewRouter(handlers, authService, httpserver.CorsOptions(config.AllowedOrigins()), log),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("Starting HTTP server", "address", address, "store", config.StoreBackend)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 7. Optional gRPC health endpoint
	var grpcServer *grpc.Server
	if config.HealthPort > 0 {
		healthAddress := fmt.Sprintf("%s:%d", config.Host, config.HealthPort)
		listener, err := net.Listen("tcp", healthAddress)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", healthAddress, err)
		}
		grpcServer = grpc.NewServer()
		healthServer := grpcserver.NewHealthServer(store, log, config.HealthProbeInterval)
		healthServer.Register(grpcServer)
		go healthServer.Run(ctx)
		go func() {
			log.Info("Starting gRPC health server", "address", healthAddress)
			if err := grpcServer.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				errChan <- fmt.Errorf("gRPC server error: %w", err)
			}
		}()
	}

	// 8. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 9. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown failed", "error", err)
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	log.Info("Program stopped cleanly")
	return nil
}

func openStore(config Config, log *slog.Logger) (storage.Store, error) {
	opts := storage.Options{DegradedReads: config.StoreDegradedReads}
	switch config.StoreBackend {
	case "badger":
		store, err := storage.OpenBadgerStore(config.BadgerFilepath, log, opts)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return storage.NewFileStore(config.DataDir, log, opts), nil
	}
}
