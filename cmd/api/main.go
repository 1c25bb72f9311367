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

	"github.com/lampadamagica/genio/backend/internal/config"
	"github.com/lampadamagica/genio/backend/internal/handler"
	"github.com/lampadamagica/genio/backend/internal/service/conversation"
	"github.com/lampadamagica/genio/backend/internal/service/genie"
	"github.com/lampadamagica/genio/backend/internal/service/journal"
	"github.com/lampadamagica/genio/backend/internal/service/speech"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Without a credential no session can ever be created, so refuse to start
	// instead of failing on the first turn.
	if !cfg.AI.Enabled() {
		log.Fatalf("failed to start: %v (set ARK_API_KEY or AK/SK pair, and GENIE_MODEL)", genie.ErrMissingCredential)
	}

	holder := genie.NewHolder(cfg.AI)
	dispatcher := genie.NewDispatcher(holder)

	var journalClient *journal.Client
	if cfg.Journal.Enabled() {
		journalClient = journal.NewClient(cfg.Journal)
		log.Println("interaction journal enabled")
	} else {
		log.Println("no LOGGING_ENDPOINT configured, interaction journal disabled")
	}

	var speechSvc *speech.Service
	if cfg.Speech.Enabled {
		speechSvc = speech.NewService(cfg.Speech)
		log.Println("speech service initialized successfully")
	} else {
		log.Println("speech credentials not configured, skipping voice features")
	}

	// Interfaces take nil concrete pointers badly; only wire what exists.
	var journalConsumer conversation.Journal
	if journalClient != nil {
		journalConsumer = journalClient
	}
	var speakerConsumer conversation.Speaker
	if speechSvc != nil {
		speakerConsumer = speechSvc
	}

	conv := conversation.NewService(dispatcher, cfg.Genie.GreetingDelay, journalConsumer, speakerConsumer)

	router := handler.NewRouter(conv, cfg.Genie.GreetingDelay, speechSvc)

	startServer(ctx, cfg.Server, router)
	conv.Drain()
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("genio backend listening on %s", serverCfg.Addr)
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
