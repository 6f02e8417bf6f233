package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig `json:"server"`

	// Database Configuration
	Database DatabaseConfig `json:"database"`

	// MongoDB Configuration (GridFS media)
	MongoDB MongoDBConfig `json:"mongodb"`

	// Image cache limits
	Cache CacheConfig `json:"cache"`

	// Asset loader configuration
	Loader LoaderConfig `json:"loader"`

	// Video playback configuration
	Playback PlaybackConfig `json:"playback"`

	// Feed source and layout
	Feed FeedConfig `json:"feed"`

	// Logging Configuration
	Logging LoggingConfig `json:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	DebugPort        string `json:"debug_port"`
	MediaServicePort string `json:"media_service_port"`
	MediaBaseURL     string `json:"media_base_url"`
	MediaDir         string `json:"media_dir"` // serve from disk instead of GridFS when set
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	DatabaseName string `json:"database_name"`
	MaxOpenConns int    `json:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns"`
}

type MongoDBConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	Database string `json:"database"`
	Bucket   string `json:"bucket"`
	Enabled  bool   `json:"enabled"`
}

// CacheConfig bounds the in-memory decoded image cache.
type CacheConfig struct {
	CountLimit     int   `json:"count_limit"`
	TotalCostLimit int64 `json:"total_cost_limit"` // bytes
}

type LoaderConfig struct {
	MaxConcurrent int           `json:"max_concurrent"` // concurrent fetch+decode jobs
	FetchTimeout  time.Duration `json:"fetch_timeout"`
	MaxBytes      int64         `json:"max_bytes"`
	RetryMax      int           `json:"retry_max"`
	MediaRoot     string        `json:"media_root"` // root for file:// and bare paths
}

type PlaybackConfig struct {
	StallCheckInterval time.Duration `json:"stall_check_interval"`
	ClipDuration       time.Duration `json:"clip_duration"` // simulated engine only
}

type FeedConfig struct {
	Source         string        `json:"source"` // mock, mysql
	MockPosts      int           `json:"mock_posts"`
	PageSize       int           `json:"page_size"`
	RowHeight      float64       `json:"row_height"`
	ViewportHeight float64       `json:"viewport_height"`
	ScrollStep     float64       `json:"scroll_step"`
	ScrollInterval time.Duration `json:"scroll_interval"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `json:"level"`       // debug, info, warn, error
	Format     string `json:"format"`      // json, text
	OutputPath string `json:"output_path"` // stdout, stderr, or file path
}

const (
	DefaultCacheCountLimit           = 100
	DefaultCacheTotalCostLimit int64 = 100 * 1024 * 1024
	DefaultStallCheckInterval        = 500 * time.Millisecond
)

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, using system env variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			DebugPort:        getEnv("DEBUG_PORT", "8081"),
			MediaServicePort: getEnv("MEDIA_SERVER_PORT", "8080"),
			MediaDir:         getEnv("MEDIA_DIR", ""),
		},
		Database: DatabaseConfig{
			Host:         getEnv("MYSQL_HOST", "localhost"),
			Port:         getEnv("MYSQL_PORT", "3306"),
			Username:     getEnv("MYSQL_USERNAME", "feedview"),
			Password:     getEnv("MYSQL_PASSWORD", "feedview123"),
			DatabaseName: getEnv("MYSQL_DATABASE", "feedview"),
			MaxOpenConns: getEnvAsInt("MYSQL_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("MYSQL_MAX_IDLE_CONNS", 5),
		},
		MongoDB: MongoDBConfig{
			Host:     getEnv("MONGO_HOST", "localhost"),
			Port:     getEnv("MONGO_PORT", "27017"),
			Username: getEnv("MONGO_USERNAME", ""),
			Password: getEnv("MONGO_PASSWORD", ""),
			Database: getEnv("MONGO_DATABASE", "feedview"),
			Bucket:   getEnv("MONGO_BUCKET", "media_files"),
			Enabled:  getEnvAsBool("MONGO_ENABLED", false),
		},
		Cache: CacheConfig{
			CountLimit:     getEnvAsInt("CACHE_COUNT_LIMIT", DefaultCacheCountLimit),
			TotalCostLimit: getEnvAsInt64("CACHE_TOTAL_COST_LIMIT", DefaultCacheTotalCostLimit),
		},
		Loader: LoaderConfig{
			MaxConcurrent: getEnvAsInt("LOADER_MAX_CONCURRENT", 4),
			FetchTimeout:  getEnvAsDuration("LOADER_FETCH_TIMEOUT", 20*time.Second),
			MaxBytes:      getEnvAsInt64("LOADER_MAX_BYTES", 32*1024*1024),
			RetryMax:      getEnvAsInt("LOADER_RETRY_MAX", 2),
			MediaRoot:     getEnv("MEDIA_ROOT", "."),
		},
		Playback: PlaybackConfig{
			StallCheckInterval: getEnvAsDuration("PLAYBACK_STALL_CHECK_INTERVAL", DefaultStallCheckInterval),
			ClipDuration:       getEnvAsDuration("PLAYBACK_CLIP_DURATION", 10*time.Second),
		},
		Feed: FeedConfig{
			Source:         strings.ToLower(getEnv("FEED_SOURCE", "mock")),
			MockPosts:      getEnvAsInt("FEED_MOCK_POSTS", 20),
			PageSize:       getEnvAsInt("FEED_PAGE_SIZE", 50),
			RowHeight:      getEnvAsFloat("FEED_ROW_HEIGHT", 400),
			ViewportHeight: getEnvAsFloat("FEED_VIEWPORT_HEIGHT", 400),
			ScrollStep:     getEnvAsFloat("FEED_SCROLL_STEP", 400),
			ScrollInterval: getEnvAsDuration("FEED_SCROLL_INTERVAL", 2*time.Second),
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "text"),
			OutputPath: getEnv("LOG_OUTPUT", "stdout"),
		},
	}

	cfg.Server.MediaBaseURL = getEnv("MEDIA_BASE_URL",
		fmt.Sprintf("http://localhost:%s/media/", cfg.Server.MediaServicePort))

	return cfg
}

func (cfg *Config) DSN() string {
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "3306"
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DatabaseName,
	)
}

func (cfg *Config) GetMongoURI() string {
	m := cfg.MongoDB
	if m.Username != "" && m.Password != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%s/%s?authSource=admin",
			m.Username, m.Password, m.Host, m.Port, m.Database)
	}
	return fmt.Sprintf("mongodb://%s:%s/%s", m.Host, m.Port, m.Database)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if v, err := strconv.ParseInt(getEnv(key, ""), 10, 64); err == nil {
		return v
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return v
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}
