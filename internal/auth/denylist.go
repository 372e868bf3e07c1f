package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist - redis-список отозванных access-токенов.
// Access-токены не хранятся в БД, поэтому "выход" реализуется
// денайлистом с TTL равным остатку жизни токена.
//
// При nil-клиенте деградирует в no-op: access-токены тогда живут
// до естественного истечения (15 минут).
type Denylist struct {
	client *redis.Client
}

func NewDenylist(client *redis.Client) *Denylist {
	return &Denylist{client: client}
}

const denylistPrefix = "denylist:"

// Revoke помещает токен в денайлист на ttl
func (d *Denylist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if d.client == nil || ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, denylistPrefix+HashToken(token), "1", ttl).Err()
}

// IsRevoked проверяет, отозван ли токен
func (d *Denylist) IsRevoked(ctx context.Context, token string) (bool, error) {
	if d.client == nil {
		return false, nil
	}
	n, err := d.client.Exists(ctx, denylistPrefix+HashToken(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
