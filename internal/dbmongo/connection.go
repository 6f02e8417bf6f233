// Package dbmongo holds the MongoDB connection and the GridFS media bucket.
package dbmongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"feedview/internal/config"
)

const (
	defaultBucket  = "media_files"
	connectTimeout = 10 * time.Second
)

// MongoClient bundles the client with the database and bucket media is
// served from.
type MongoClient struct {
	Client   *mongo.Client
	Database *mongo.Database
	GridFS   *gridfs.Bucket
	log      *slog.Logger
}

// NewMongoConnection connects, pings and opens the media bucket. ctx bounds
// the whole handshake on top of a fixed connect timeout.
func NewMongoConnection(ctx context.Context, c *config.Config, logger *slog.Logger) (*MongoClient, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.GetMongoURI()))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb %s:%s: %w", c.MongoDB.Host, c.MongoDB.Port, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(c.MongoDB.Database)
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(bucketName(c)))
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("open gridfs bucket %q: %w", bucketName(c), err)
	}

	logger.Info("dbmongo: connected",
		"host", c.MongoDB.Host,
		"database", c.MongoDB.Database,
		"bucket", bucketName(c),
	)
	return &MongoClient{Client: client, Database: db, GridFS: bucket, log: logger}, nil
}

func (mc *MongoClient) Close(ctx context.Context) error {
	if err := mc.Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect mongodb: %w", err)
	}
	mc.log.Info("dbmongo: disconnected")
	return nil
}

func bucketName(c *config.Config) string {
	if c.MongoDB.Bucket == "" {
		return defaultBucket
	}
	return c.MongoDB.Bucket
}
