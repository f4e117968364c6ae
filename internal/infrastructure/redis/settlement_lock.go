// Package redis implementa el lock distribuido de cancelaciones sobre go-redis.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/Impuestos-api/internal/application/taxes"
	"github.com/jhoicas/Impuestos-api/pkg/config"
)

const (
	defaultKeyPrefix = "impuestos:settlement-lock:"
	defaultTTL       = 30 * time.Second
	retryInterval    = 50 * time.Millisecond
)

// unlockScript borra la clave solo si el token coincide, para no liberar un lock ajeno
// cuando el propio ya expiró.
var unlockScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SettlementLock implementa taxes.SettlementLocker con SET NX + TTL.
type SettlementLock struct {
	client    goredis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

var _ taxes.SettlementLocker = (*SettlementLock)(nil)

// NewClient abre la conexión a Redis y verifica que responda.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// NewSettlementLock construye el lock sobre un cliente existente. ttl <= 0 usa 30s.
func NewSettlementLock(client goredis.UniversalClient, ttl time.Duration) *SettlementLock {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &SettlementLock{client: client, keyPrefix: defaultKeyPrefix, ttl: ttl}
}

// Lock reintenta SET NX hasta obtener la clave o hasta que se cancele el contexto.
func (l *SettlementLock) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	redisKey := l.keyPrefix + key

	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("redis setnx %s: %w", redisKey, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true
		// Se libera con un contexto propio: el de la request puede estar cancelado.
		unlockCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = unlockScript.Run(unlockCtx, l.client, []string{redisKey}, token).Err()
	}, nil
}
