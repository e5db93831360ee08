package repository

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/axellelanca/urlregistry/internal/config"
)

// Storage types accepted by NewStore.
const (
	TypeFile   = "file"
	TypeSQLite = "sqlite"
	TypeRedis  = "redis"
	TypeMemory = "memory"
)

// NewStore initializes the persistence backend selected by cfg.Storage.Type.
func NewStore(cfg *config.Config, logger *zap.SugaredLogger) (Store, error) {
	switch cfg.Storage.Type {
	case TypeFile, "":
		logger.Debugw("using file storage", "path", cfg.Storage.FilePath)
		return NewFileStore(afero.NewOsFs(), cfg.Storage.FilePath), nil

	case TypeSQLite:
		logger.Debugw("using sqlite storage", "database", cfg.Database.Name)
		db, err := OpenSQLite(cfg.Database.Name)
		if err != nil {
			return nil, err
		}
		return NewSQLiteStore(db)

	case TypeRedis:
		logger.Debugw("using redis storage", "addr", cfg.Redis.Addr, "key", cfg.Redis.Key)
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return NewRedisStore(client, WithRedisKey(cfg.Redis.Key)), nil

	case TypeMemory:
		logger.Debug("using memory storage")
		return NewMemoryStore(), nil
	}

	return nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
}
