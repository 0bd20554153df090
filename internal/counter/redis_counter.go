package counter

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store es el contador atomico compartido entre workers. Toda mutacion corre
// como script Lua del lado del servidor: nunca read-modify-write en la app.
type Store interface {
	IncrAndGet(ctx context.Context, key string) (int64, error)
	// IncrWithCeiling incrementa y devuelve el valor resultante, o -1 si el
	// incremento superaria el limite (en ese caso el contador queda intacto).
	IncrWithCeiling(ctx context.Context, key string, limit int64, ttl time.Duration) (int64, error)
	// DecrFloor decrementa sin bajar de cero. Se usa para devolver un cupo
	// consumido cuando el envio falla despues del chequeo.
	DecrFloor(ctx context.Context, key string) (int64, error)
	Get(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
	TTLReset(ctx context.Context, key string, boundary time.Time) error
}

const incrWithCeilingScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[2])
end
if current > tonumber(ARGV[1]) then
  redis.call("DECR", KEYS[1])
  return -1
end
return current
`

const decrFloorScript = `
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
if current <= 0 then
  return 0
end
return redis.call("DECR", KEYS[1])
`

// redisCmds es el subconjunto de comandos que usa el store; permite testear
// sin un Redis real.
type redisCmds interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	ExpireAt(ctx context.Context, key string, tm time.Time) *redis.BoolCmd
}

type RedisStore struct {
	client redisCmds
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	if client == nil {
		return nil
	}
	return &RedisStore{client: client, prefix: "engage:ctr:"}
}

func (s *RedisStore) key(key string) string {
	return s.prefix + strings.TrimSpace(key)
}

func (s *RedisStore) IncrAndGet(ctx context.Context, key string) (int64, error) {
	return s.client.Incr(ctx, s.key(key)).Result()
}

func (s *RedisStore) IncrWithCeiling(ctx context.Context, key string, limit int64, ttl time.Duration) (int64, error) {
	seconds := int(ttl.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	return s.client.Eval(ctx, incrWithCeilingScript, []string{s.key(key)}, limit, seconds).Int64()
}

func (s *RedisStore) DecrFloor(ctx context.Context, key string) (int64, error) {
	return s.client.Eval(ctx, decrFloorScript, []string{s.key(key)}).Int64()
}

func (s *RedisStore) Get(ctx context.Context, key string) (int64, error) {
	val, err := s.client.Get(ctx, s.key(key)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return val, err
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

func (s *RedisStore) TTLReset(ctx context.Context, key string, boundary time.Time) error {
	return s.client.ExpireAt(ctx, s.key(key), boundary).Err()
}
