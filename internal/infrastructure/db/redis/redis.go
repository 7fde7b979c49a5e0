// Package redis keeps the short-lived account state: password recovery
// codes and revoked session tokens. Nothing here is a source of truth for
// the domain; losing the keyspace only logs users out and voids pending codes.
package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	pingTimeout = 5 * time.Second
	ioTimeout   = 2 * time.Second

	keyPrefix = "fundacion:"
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

// Connect opens a client with short I/O deadlines and fails fast when the
// server does not answer a ping.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  ioTimeout,
		WriteTimeout: ioTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

func resetKey(email string) string {
	return keyPrefix + "reset:" + strings.ToLower(strings.TrimSpace(email))
}

func resetFailuresKey(email string) string {
	return keyPrefix + "reset-failures:" + strings.ToLower(strings.TrimSpace(email))
}

func revokedKey(tokenID string) string {
	return keyPrefix + "revoked:" + tokenID
}
