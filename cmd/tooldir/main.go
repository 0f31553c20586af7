package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/appsquad/tooldir/internal/api"
	"github.com/appsquad/tooldir/internal/auth"
	"github.com/appsquad/tooldir/internal/config"
	"github.com/appsquad/tooldir/internal/email"
	"github.com/appsquad/tooldir/internal/ingest"
	"github.com/appsquad/tooldir/internal/logging"
	"github.com/appsquad/tooldir/internal/store/postgres"
	"github.com/appsquad/tooldir/internal/tool"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := postgres.New(ctx, postgres.Config{
		DSN:      cfg.DB.DSN,
		MaxConns: cfg.DB.MaxConns,
		MinConns: cfg.DB.MinConns,
	})
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}
	defer st.Close()

	// One outbound client shared across every external dependency;
	// per-call deadlines come from the component timeouts.
	httpClient := &http.Client{}

	prober := ingest.NewProber(httpClient, secs(cfg.Ingest.ProbeTimeoutSecs))
	content := ingest.NewContentFetcher(httpClient, cfg.Ingest.ReaderURL, secs(cfg.Ingest.ContentTimeoutSecs))
	completer := ingest.NewOpenAICompleter(
		httpClient,
		cfg.Ingest.OpenAIBaseURL,
		cfg.Ingest.OpenAIAPIKey,
		cfg.Ingest.OpenAIModel,
		secs(cfg.Ingest.LLMTimeoutSecs),
	)
	extractor := ingest.NewExtractor(content, completer)
	favicons := ingest.NewFaviconFetcher(httpClient, cfg.Ingest.FaviconURL, secs(cfg.Ingest.FaviconTimeoutSecs))
	pipeline := ingest.NewPipeline(prober, extractor, favicons, logger)

	toolSvc := tool.NewService(st, pipeline, cfg.Ingest.MaxTools, logger)

	var mailer email.Mailer = email.NoOp{}
	if cfg.Email.Provider == "sendgrid" {
		mailer = email.NewSendGrid(
			cfg.Email.APIKey,
			cfg.Email.SenderAddress,
			cfg.Email.SenderName,
			cfg.Email.FeedbackRecipient,
			logger,
		)
	}

	google := auth.NewGoogleClient(httpClient, auth.GoogleClientConfig{
		ClientID:     cfg.Auth.Google.ClientID,
		ClientSecret: cfg.Auth.Google.ClientSecret,
		RedirectURI:  cfg.Auth.Google.RedirectURI,
		Timeout:      secs(cfg.Auth.ProviderTimeoutSecs),
	})
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.AccessTokenTTL(), cfg.ConfirmTokenTTL())
	authSvc := auth.NewService(st, google, tokens, mailer, cfg.App.URL, logger)

	server := api.NewServer(authSvc, toolSvc, mailer, logger)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.Int("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}

func secs(n int) time.Duration {
	return time.Duration(n) * time.Second
}
