package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/school-directory/internal/config"
	"github.com/school-directory/internal/infrastructure/awscfg"
	"github.com/school-directory/internal/infrastructure/dynamo"
	jwtinfra "github.com/school-directory/internal/infrastructure/jwt"
	"github.com/school-directory/internal/infrastructure/memory"
	s3infra "github.com/school-directory/internal/infrastructure/s3"
	"github.com/school-directory/internal/infrastructure/smtp"
	"github.com/school-directory/internal/pkg/clock"
	transporthttp "github.com/school-directory/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	})))

	ctx := context.Background()

	awsCfg, err := awscfg.Load(ctx, cfg)
	if err != nil {
		log.Fatalf("aws config: %v", err)
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(awsCfg, cfg.AWSEndpointURL)
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	// S3 store.
	s3Client := s3infra.NewClient(awsCfg, cfg.AWSEndpointURL)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName, cfg.S3PublicBaseURL)
	s3Store.EnsureBucket(ctx)

	jwtProvider, err := jwtinfra.NewProvider(cfg.JWTSecret, cfg.JWTExpiry, clock.New())
	if err != nil {
		log.Fatalf("jwt provider: %v", err)
	}

	otpStore := memory.NewOTPStore(memory.OTPStoreConfig{
		TTL:           cfg.OTPTTL,
		SweepInterval: cfg.OTPSweepInterval,
		Clock:         clock.New(),
	})

	deps := &transporthttp.Deps{
		SchoolRepo: dynamo.NewSchoolRepo(dynamoClient, cfg.DynamoTables.Schools),
		ImageStore: s3Store,
		OTPStore:   otpStore,
		Mailer:     smtp.NewMailer(cfg),
		Tokens:     jwtProvider,
		OTPTTL:     cfg.OTPTTL,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	_ = otpStore.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	slog.Info("server stopped")
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
