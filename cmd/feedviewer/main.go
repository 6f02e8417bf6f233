package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"feedview/internal/config"
	"feedview/internal/di"
	"feedview/internal/playback"
)

func main() {
	cfg := config.LoadConfig()

	// Initialize application with dependency injection
	log.Println("Initializing feed viewer...")
	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	n, err := app.Coordinator.Refresh(ctx)
	if err != nil {
		log.Fatalf("Failed to load feed: %v", err)
	}
	log.Printf("Loaded %d posts from %s source", n, cfg.Feed.Source)

	unsubscribe := app.Sessions.Subscribe(func(slot string, s playback.Snapshot) {
		app.Logger.Debug("feedviewer: session changed",
			"slot", slot,
			"state", s.State.String(),
			"url", s.URL,
			"visible", s.Visible,
		)
	})
	defer unsubscribe()

	app.Viewer.Reload()

	server := &http.Server{
		Addr:           ":" + cfg.Server.DebugPort,
		Handler:        app.Debug,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	go func() {
		log.Printf("Debug API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Debug server failed: %v", err)
		}
	}()

	go simulateScrolling(ctx, app, cfg.Feed)

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Debug server shutdown error: %v", err)
	}

	app.Viewer.Close()
	log.Println("Feed viewer stopped")
}

// simulateScrolling stands in for a user flicking through the feed, wrapping
// back to the top at the end.
func simulateScrolling(ctx context.Context, app *di.App, cfg config.FeedConfig) {
	if cfg.ScrollInterval <= 0 {
		return
	}
	ticker := time.NewTicker(cfg.ScrollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if app.Viewer.AtEnd() {
				app.Viewer.ScrollTo(0)
			} else {
				app.Viewer.ScrollBy(cfg.ScrollStep)
			}
			app.Logger.Info("feedviewer: scrolled",
				"offset", app.Viewer.Offset(),
				"playing", app.Sessions.Active(),
				"cached_images", app.Cache.Len(),
			)
		}
	}
}
