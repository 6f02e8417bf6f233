package main

import (
	"context"
	"log"
	"net/http"

	"feedview/internal/common"
	"feedview/internal/config"
	"feedview/internal/dbmongo"
	"feedview/internal/media"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	logger, closeLog, err := common.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatal("Failed to set up logging:", err)
	}
	defer closeLog()

	var store media.Store
	if cfg.Server.MediaDir != "" {
		store = media.DirStore{Root: cfg.Server.MediaDir}
		log.Printf("📂 Serving files from directory %s", cfg.Server.MediaDir)
	} else {
		mongoClient, err := dbmongo.NewMongoConnection(context.Background(), cfg, logger)
		if err != nil {
			log.Fatal("Failed to connect to MongoDB:", err)
		}
		defer mongoClient.Close(context.Background())
		store = media.GridFSStore{Storage: dbmongo.NewMediaStorage(mongoClient)}
		log.Printf("📂 Serving files from GridFS bucket %s", cfg.MongoDB.Bucket)
	}

	mediaServer := media.NewHTTPServer(store, logger)

	addr := ":" + cfg.Server.MediaServicePort
	log.Printf("🚀 Media HTTP Server starting on port %s", cfg.Server.MediaServicePort)
	log.Printf("📂 Serving files at: %s{fileId}", cfg.Server.MediaBaseURL)

	if err := http.ListenAndServe(addr, mediaServer); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
