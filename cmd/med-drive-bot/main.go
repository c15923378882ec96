// med-drive-bot
//
// Features:
// - Interactive folder browsing over Telegram inline keyboards
// - Shortcut-resolving navigation with per-chat sessions
// - TTL listing cache with single-flight fills
// - Background watcher announcing new files to a broadcast channel
// - Prometheus metrics & structured logging (zap)
// - Pluggable listing backends (Google Drive, S3)
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/DarmsTdiuM27/med-drive-bot/internal/browse"
	"github.com/DarmsTdiuM27/med-drive-bot/internal/config"
	"github.com/DarmsTdiuM27/med-drive-bot/internal/logging"
	"github.com/DarmsTdiuM27/med-drive-bot/internal/metrics"
	"github.com/DarmsTdiuM27/med-drive-bot/internal/notify"
	"github.com/DarmsTdiuM27/med-drive-bot/internal/remote"
	"github.com/DarmsTdiuM27/med-drive-bot/internal/scan"
	"github.com/DarmsTdiuM27/med-drive-bot/internal/state"
	"github.com/DarmsTdiuM27/med-drive-bot/internal/telegram"
	"github.com/DarmsTdiuM27/med-drive-bot/internal/watch"
	"github.com/DarmsTdiuM27/med-drive-bot/pkg/retry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Can't use structured logging yet
		panic("configuration error: " + err.Error())
	}

	// Initialize structured logging
	if err := logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	}); err != nil {
		panic("logging init error: " + err.Error())
	}
	defer logging.Sync()

	logging.Info("med-drive-bot starting...",
		zap.String("backend", cfg.RemoteBackend),
		zap.String("metrics", cfg.MetricsAddr))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the listing backend (cached + instrumented)
	lister, err := remote.New(ctx, cfg)
	if err != nil {
		logging.Fatal("remote backend init failed", zap.Error(err))
	}
	logging.Info("remote backend initialized", zap.String("backend", cfg.RemoteBackend))

	// Initialize the interactive browser
	sessions := browse.NewSessions(cfg.RootFolderID)
	navigator := browse.NewNavigator(lister, cfg.RootFolderID, cfg.PageSize)
	limiter := telegram.NewLimiter(cfg.ActionsPerMin)

	bot, err := telegram.New(cfg.BotToken, navigator, sessions, limiter)
	if err != nil {
		logging.Fatal("telegram init failed", zap.Error(err))
	}

	// Start the watcher unless no broadcast chat is configured
	watcherDone := make(chan struct{})
	if cfg.BroadcastChatID != 0 {
		store := state.New(cfg.StatePath)
		if err := store.Load(); err != nil {
			logging.Warn("watch state unreadable, starting fresh", zap.Error(err))
		}
		sender := telegram.NewChannelSender(bot.API(), cfg.BroadcastChatID, retry.DefaultConfig())
		dispatcher := notify.NewDispatcher(sender, cfg.MaxPerCycle)
		watcher := watch.New(watch.Config{
			RootFolderID: cfg.RootFolderID,
			Interval:     cfg.WatchInterval,
			MaxDepth:     cfg.ScanMaxDepth,
			MinModule:    cfg.MinModule,
		}, lister, scan.New(lister), dispatcher, store)

		go func() {
			defer close(watcherDone)
			watcher.Run(ctx)
		}()
		logging.Info("watcher started",
			zap.Int64("broadcast_chat", cfg.BroadcastChatID),
			zap.Duration("interval", cfg.WatchInterval),
			zap.Int("max_depth", cfg.ScanMaxDepth))
	} else {
		close(watcherDone)
		logging.Info("watcher disabled (BROADCAST_CHAT_ID unset)")
	}

	// Start metrics server
	var metricsServer *http.Server
	if cfg.MetricsAddr != "off" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		})
		metricsServer = &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			logging.Info("metrics server listening", zap.String("addr", cfg.MetricsAddr))
			if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
				logging.Error("metrics server error", zap.Error(err))
			}
		}()
	}

	// Start periodic cleanup of idle rate-limiter buckets
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				limiter.Cleanup(24 * time.Hour)
			}
		}
	}()

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logging.Info("shutting down...")
		cancel()
	}()

	bot.Run(ctx)

	// The watcher finishes its in-flight cycle before exiting.
	<-watcherDone
	if metricsServer != nil {
		metricsServer.Close()
	}
	logging.Info("med-drive-bot stopped")
}
