package config

// Redis backs the booking rate limiter and the catalog response cache.  When
// the server cannot be reached at startup NewRedisClient returns nil and both
// middlewares become pass-through.

import (
	"context"
	"crypto/tls"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// NewRedisClient builds a client from the environment:
//
//	REDIS_URL               full redis:// URL, wins over everything else
//	REDIS_HOST, REDIS_PORT  host and port
//	REDIS_ADDR              host:port shorthand
//	REDIS_PASSWORD, REDIS_DB, REDIS_TLS
func NewRedisClient() *redis.Client {
	opts, err := redisOptions()
	if err != nil {
		logrus.WithError(err).Warn("redis: invalid REDIS_URL, caching and rate limiting disabled")
		return nil
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logrus.WithError(err).WithField("addr", opts.Addr).Warn("redis: unreachable, caching and rate limiting disabled")
		_ = client.Close()
		return nil
	}
	logrus.WithField("addr", opts.Addr).Info("redis: connected")
	return client
}

func redisOptions() (*redis.Options, error) {
	if raw := os.Getenv("REDIS_URL"); raw != "" {
		return redis.ParseURL(raw)
	}
	addr := os.Getenv("REDIS_ADDR")
	if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
		addr = host + ":" + port
	}
	if addr == "" {
		addr = "localhost:6379"
	}
	dbNum := 0
	if n, err := strconv.Atoi(os.Getenv("REDIS_DB")); err == nil {
		dbNum = n
	}
	var tlsConf *tls.Config
	if v := os.Getenv("REDIS_TLS"); strings.EqualFold(v, "true") || v == "1" {
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return &redis.Options{
		Addr:      addr,
		Password:  os.Getenv("REDIS_PASSWORD"),
		DB:        dbNum,
		TLSConfig: tlsConf,
	}, nil
}
