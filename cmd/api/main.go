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

	"github.com/joho/godotenv"

	"github.com/GaryBary/noosa26/internal/config"
	"github.com/GaryBary/noosa26/internal/handler"
	"github.com/GaryBary/noosa26/internal/model/locality"
	"github.com/GaryBary/noosa26/internal/service/ai"
	"github.com/GaryBary/noosa26/internal/service/chat"
	"github.com/GaryBary/noosa26/internal/service/credential"
	"github.com/GaryBary/noosa26/internal/service/session"
	"github.com/GaryBary/noosa26/internal/service/speech"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	localityStore := locality.NewMemoryStore(locality.Seed())
	conversationStore := chat.NewService()

	// Select the credential capability once at startup.
	var provider credential.Provider
	if cfg.Credential.BridgeURL != "" {
		provider = credential.NewHostManaged(cfg.Credential.BridgeURL)
		log.Println("credential bootstrap: host bridge")
	} else {
		provider = credential.NewLocallyManaged(cfg.Gemini.APIKey)
		log.Println("credential bootstrap: locally managed key")
	}
	credentialManager := credential.NewManager(
		provider,
		credential.NewConnectionFlag(cfg.Credential.StatePath),
		time.Duration(cfg.Credential.ProbeTimeoutMillis)*time.Millisecond,
	)

	gateway := ai.NewService(cfg.Gemini)
	if cfg.Gemini.Enabled() {
		log.Println("Gemini gateway initialized")
	} else {
		log.Println("Gemini key not configured, turns will require the credential bootstrap")
	}

	speechService := speech.NewService(cfg.Gemini)
	controller := session.NewController(conversationStore, gateway, speechService, credentialManager)

	router := handler.NewRouter(localityStore, conversationStore, controller, speechService, credentialManager)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Noosa concierge backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
