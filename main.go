package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nostr-feed/internal/cache"
	"nostr-feed/internal/config"
	"nostr-feed/internal/metrics"
	"nostr-feed/internal/nostr"
	"nostr-feed/internal/note"
	"nostr-feed/internal/qr"
	"nostr-feed/internal/relay"
	"nostr-feed/internal/store"
	"nostr-feed/internal/tui"
	"nostr-feed/internal/types"
)

var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print the version and exit")
	eventsFile := flag.String("events", "", "JSONL file of events to load (overrides EVENTS_FILE)")
	flag.Parse()

	if *showVersion {
		fmt.Println("nostr-feed", version)
		return
	}

	env := config.LoadEnv()
	if *eventsFile != "" {
		env.EventsFile = *eventsFile
	}

	closeLog, err := InitLogger(env.LogLevel, env.LogFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, env); err != nil {
		slog.Error("exiting", "error", err)
		fmt.Fprintln(os.Stderr, err)
		stop()
		closeLog()
		os.Exit(1)
	}
}

func run(ctx context.Context, env config.Env) error {
	feedCfg := config.GetFeedConfig()

	cacheCfg := cache.DefaultConfig()
	backend, kind := cache.New(env.RedisURL, env.CachePrefix, cacheCfg)
	defer backend.Close()
	metrics.SetCacheBackend(kind)

	var viewer string
	if env.SecretKey != "" {
		pk, err := nostr.PubKeyFromSecret(env.SecretKey)
		if err != nil {
			return fmt.Errorf("NOSTR_SECRET_KEY: %w", err)
		}
		viewer = pk
	}

	st := store.New(backend, store.Options{Viewer: viewer, Cache: cacheCfg})
	if env.EventsFile != "" {
		if _, err := st.ImportFile(ctx, env.EventsFile); err != nil {
			return err
		}
	}

	// likes need a signing key; without one the action reports itself unavailable
	var outbox note.Outbox
	if env.SecretKey != "" {
		engine, err := relay.NewEngine(env.SecretKey, config.PublishRelays(), relay.NewPublisher(0), st, feedCfg.OutboxSize)
		if err != nil {
			return err
		}
		engine.ClientTag = config.GetClientConfig().ClientTag(types.KindReaction)
		go engine.Run(ctx)
		defer engine.Close()
		outbox = engine
	}

	if env.MetricsAddr != "" {
		srv := startMetricsServer(env.MetricsAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	sess := note.NewSession(feedCfg.Settings(), feedCfg.HoverDwell())
	walker := note.NewWalker(st, qr.NewEncoder(), feedCfg.MaxDepth)
	dispatcher := note.NewDispatcher(outbox, tui.SystemClipboard{})

	slog.Info("starting feed", "notes", st.Len(), "viewer", nostr.ShortID(viewer), "cache", kind)
	return tui.Run(ctx, tui.NewModel(sess, walker, dispatcher, st))
}

func startMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", metrics.Handler)
	mux.HandleFunc("/health", healthHandler)

	srv := &http.Server{
		Addr:              addr,
		Handler:           RequestLoggingMiddleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("metrics server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "error", err)
		}
	}()
	return srv
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
