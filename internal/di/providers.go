package di

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"feedview/internal/common"
	"feedview/internal/config"
	"feedview/internal/dbmongo"
	"feedview/internal/dbmysql"
	"feedview/internal/feed"
	"feedview/internal/imagecache"
	"feedview/internal/media"
	"feedview/internal/playback"
	"feedview/internal/viewer"
)

// App is everything the feedviewer binary runs.
type App struct {
	Config      *config.Config
	Logger      *slog.Logger
	Cache       *imagecache.Cache
	Coordinator *feed.Coordinator
	Sessions    *playback.Manager
	Viewer      *viewer.Viewer
	Debug       *feed.DebugHandler
}

func ProvideLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	logger, closer, err := common.NewLogger(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = closer() }, nil
}

func ProvideImageCache(cfg *config.Config) (*imagecache.Cache, error) {
	return imagecache.New(cfg.Cache.CountLimit, cfg.Cache.TotalCostLimit)
}

// ProvideMediaStorage connects to GridFS when MONGO_ENABLED is set and
// returns nil otherwise.
func ProvideMediaStorage(cfg *config.Config, logger *slog.Logger) (*dbmongo.MediaStorage, func(), error) {
	if !cfg.MongoDB.Enabled {
		return nil, func() {}, nil
	}
	client, err := dbmongo.NewMongoConnection(context.Background(), cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("di: gridfs media storage connected", "bucket", cfg.MongoDB.Bucket)
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Close(ctx); err != nil {
			logger.Warn("di: closing mongo failed", "error", err)
		}
	}
	return dbmongo.NewMediaStorage(client), cleanup, nil
}

// ProvideFetcher routes http(s), file and bare paths, plus gridfs:// when
// storage is available.
func ProvideFetcher(cfg *config.Config, storage *dbmongo.MediaStorage) media.Fetcher {
	l := cfg.Loader
	httpFetcher := media.NewHTTPFetcher(l.FetchTimeout, l.RetryMax, l.MaxBytes)
	fileFetcher := media.NewFileFetcher(l.MediaRoot, l.MaxBytes)
	routes := map[string]media.Fetcher{
		"http":  httpFetcher,
		"https": httpFetcher,
		"file":  fileFetcher,
		"":      fileFetcher,
	}
	if storage != nil {
		routes["gridfs"] = media.NewGridFSFetcher(storage, l.MaxBytes)
	}
	return media.NewRouter(routes)
}

func ProvideLoader(cfg *config.Config, cache *imagecache.Cache, fetcher media.Fetcher, logger *slog.Logger) *media.Loader {
	return media.NewLoader(cache, fetcher, media.LoaderOptions{
		MaxConcurrent: cfg.Loader.MaxConcurrent,
		FetchTimeout:  cfg.Loader.FetchTimeout,
		Logger:        logger,
	})
}

func ProvideEngine(cfg *config.Config, fetcher media.Fetcher, logger *slog.Logger) playback.Engine {
	return playback.NewSimEngine(fetcher, playback.SimOptions{
		ClipDuration: cfg.Playback.ClipDuration,
		Buffering:    cfg.Playback.StallCheckInterval / 2,
		Logger:       logger,
	})
}

func ProvideSessions(cfg *config.Config, engine playback.Engine, logger *slog.Logger) (*playback.Manager, func()) {
	m := playback.NewManager(engine, cfg.Playback.StallCheckInterval, logger)
	return m, m.Close
}

// ProvidePostSource picks the feed source from FEED_SOURCE.
func ProvidePostSource(cfg *config.Config, logger *slog.Logger) (common.PostSource, func(), error) {
	switch cfg.Feed.Source {
	case "", "mock":
		return feed.NewMockSource(cfg.Feed.MockPosts, cfg.Server.MediaBaseURL), func() {}, nil
	case "mysql":
		db, err := dbmysql.NewMySQL(cfg)
		if err != nil {
			return nil, nil, err
		}
		return dbmysql.NewPostRepository(db, cfg.Server.MediaBaseURL), closeDB(db, logger), nil
	}
	return nil, nil, fmt.Errorf("unknown feed source %q", cfg.Feed.Source)
}

func closeDB(db *gorm.DB, logger *slog.Logger) func() {
	return func() {
		sqlDB, err := db.DB()
		if err != nil {
			return
		}
		if err := sqlDB.Close(); err != nil {
			logger.Warn("di: closing mysql failed", "error", err)
		}
	}
}

func ProvideCoordinator(cfg *config.Config, source common.PostSource, logger *slog.Logger) *feed.Coordinator {
	return feed.NewCoordinator(source, cfg.Feed.PageSize, logger)
}

func ProvideViewer(cfg *config.Config, coord *feed.Coordinator, loader *media.Loader, sessions *playback.Manager, logger *slog.Logger) *viewer.Viewer {
	return viewer.New(coord, loader, sessions, viewer.Options{
		RowHeight:      cfg.Feed.RowHeight,
		ViewportHeight: cfg.Feed.ViewportHeight,
		PrefetchAhead:  2,
		Logger:         logger,
	})
}

func ProvideDebugHandler(coord *feed.Coordinator, sessions *playback.Manager, cache *imagecache.Cache, logger *slog.Logger) *feed.DebugHandler {
	return feed.NewDebugHandler(coord, sessions, cache, logger)
}
