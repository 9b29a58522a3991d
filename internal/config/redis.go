package config

// This file defines a Redis client constructor for the application.  Redis is
// used for HTTP response caching of the public list endpoints.  If the
// connection fails during startup, the function returns nil and callers
// degrade gracefully by disabling caching.

import (
    "context"
    "crypto/tls"
    "time"

    "github.com/redis/go-redis/v9"
)

// RedisConfig holds the optional Redis connection settings (REDIS_*).
type RedisConfig struct {
    Addr     string `env:"ADDR"`     // host:port; empty disables redis
    Password string `env:"PASSWORD"` // optional password
    DB       int    `env:"DB" envDefault:"0"`
    TLS      bool   `env:"TLS" envDefault:"false"`
}

// NewRedisClient instantiates a Redis client from cfg.  The returned client
// is nil when no address is configured or the server cannot be reached.
func NewRedisClient(cfg RedisConfig) *redis.Client {
    if cfg.Addr == "" {
        return nil
    }
    var tlsConf *tls.Config
    if cfg.TLS {
        tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
    }
    client := redis.NewClient(&redis.Options{
        Addr:         cfg.Addr,
        Password:     cfg.Password,
        DB:           cfg.DB,
        TLSConfig:    tlsConf,
        DialTimeout:  5 * time.Second,
        ReadTimeout:  2 * time.Second,
        WriteTimeout: 2 * time.Second,
    })
    // Ping the server with a short timeout.  Return nil on failure.
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        _ = client.Close()
        return nil
    }
    return client
}
