package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rmax-ai/wavefront/pkg/api"
	"github.com/rmax-ai/wavefront/pkg/narrator"
	"github.com/rmax-ai/wavefront/pkg/narrator/openai"
	"github.com/rmax-ai/wavefront/pkg/store"
	"github.com/rmax-ai/wavefront/pkg/traversal"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	config, err := LoadConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	run := traversal.NewRun()

	var (
		recorder *store.Recorder
		events   api.EventReader
	)
	if config.DBPath != "" {
		st, err := store.NewStore(config.DBPath)
		if err != nil {
			slog.Error("failed to init store", "error", err, "path", config.DBPath)
			os.Exit(1)
		}
		defer st.Close()
		recorder = store.NewRecorder(st)
		events = st
		slog.Info("store initialized", "path", config.DBPath, "session", recorder.SessionID())
	}

	narr := buildNarrator(ctx, config)

	server := api.NewServer(ctx, run, config.StepInterval, recorder, events, narr, config.Addr)

	go func() {
		if err := server.Start(); err != nil {
			slog.Error("api server failed", "error", err)
			cancel()
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		slog.Info("shutdown initiated", "signal", sig.String())
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Stop(shutdownCtx); err != nil {
		slog.Error("failed to stop api server", "error", err)
	}

	slog.Info("shutdown complete")
}

func buildNarrator(ctx context.Context, config Config) *narrator.Narrator {
	var opts []narrator.Option
	if config.RedisAddr != "" {
		cache, err := narrator.NewCacheAddr(ctx, config.RedisAddr, config.CacheTTL)
		if err != nil {
			slog.Warn("narration cache disabled", "error", err)
		} else {
			opts = append(opts, narrator.WithCache(cache))
			slog.Info("narration cache enabled", "addr", config.RedisAddr)
		}
	}

	if config.OpenAIKey == "" {
		slog.Info("OPENAI_API_KEY not set, using offline narration")
		return narrator.New(narrator.NewMockProvider(), opts...)
	}

	provider, err := openai.New(config.OpenAIKey, config.OpenAIModel)
	if err != nil {
		slog.Warn("openai narration unavailable, using offline narration", "error", err)
		return narrator.New(narrator.NewMockProvider(), opts...)
	}
	slog.Info("openai narration enabled")
	return narrator.New(provider, opts...)
}
