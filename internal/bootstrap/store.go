package bootstrap

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/localink/localink-backend/config"
	"github.com/localink/localink-backend/internal/relay/repository"
	"github.com/redis/go-redis/v9"
)

// RelayStore picks the snapshot backend named by RELAY_STORE.
func RelayStore(kind string, db *pgxpool.Pool, rdb *redis.Client) (repository.Store, error) {
	switch kind {
	case config.StorePostgres:
		if db == nil {
			return nil, fmt.Errorf("postgres relay store needs a database pool")
		}
		return repository.NewPostgresStore(db), nil
	case config.StoreRedis:
		if rdb == nil {
			return nil, fmt.Errorf("redis relay store needs a redis client")
		}
		return repository.NewRedisStore(rdb), nil
	case config.StoreMemory:
		return repository.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown relay store %q", kind)
	}
}
