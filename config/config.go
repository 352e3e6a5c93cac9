// Package config loads backend connection settings from the environment
// and builds capability handlers from them. The active backend variant is
// an explicit enum value, never inferred.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Backend variant names accepted in KEV_BACKEND.
const (
	BackendMemory  = "memory"
	BackendRedis   = "redis"
	BackendObject  = "object"
	BackendHybrid  = "hybrid"
	BackendMongoDB = "mongodb"
)

// Config holds every backend's connection settings plus ambient options.
type Config struct {
	Backend   string
	Debug     bool
	Redis     RedisConfig
	MinIO     MinIOConfig
	MongoDB   MongoDBConfig
	RateLimit RateLimitConfig
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// RateLimitConfig paces backend calls when RPS > 0.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// Load reads configuration from environment variables and an optional .env
// file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("KEV_BACKEND", BackendMemory)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("MINIO_BUCKET", "kev")
	viper.SetDefault("MONGODB_DATABASE", "kev")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("KEV_RATE_LIMIT_BURST", 1)

	cfg := &Config{
		Backend: viper.GetString("KEV_BACKEND"),
		Debug:   viper.GetBool("KEV_DEBUG"),
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		MinIO: MinIOConfig{
			Endpoint:  viper.GetString("MINIO_ENDPOINT"),
			AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
			SecretKey: viper.GetString("MINIO_SECRET_KEY"),
			UseSSL:    viper.GetBool("MINIO_USE_SSL"),
			Bucket:    viper.GetString("MINIO_BUCKET"),
		},
		MongoDB: MongoDBConfig{
			URI:      viper.GetString("MONGODB_URI"),
			Database: viper.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		RateLimit: RateLimitConfig{
			RPS:   viper.GetFloat64("KEV_RATE_LIMIT_RPS"),
			Burst: viper.GetInt("KEV_RATE_LIMIT_BURST"),
		},
	}

	switch cfg.Backend {
	case BackendMemory, BackendRedis, BackendObject, BackendHybrid, BackendMongoDB:
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	return cfg, nil
}
