package clinic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const configKey = "clinic:config"

// Store persists the clinic config in Redis.
type Store struct {
	redis    *redis.Client
	defaults *Config
}

// NewStore creates a store; defaults is returned while nothing has been saved.
func NewStore(redisClient *redis.Client, defaults *Config) *Store {
	if defaults == nil {
		defaults = DefaultConfig()
	}
	return &Store{redis: redisClient, defaults: defaults}
}

// Get retrieves clinic config, returning the defaults if not found.
func (s *Store) Get(ctx context.Context) (*Config, error) {
	if s == nil || s.redis == nil {
		return s.fallback(), nil
	}
	data, err := s.redis.Get(ctx, configKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return s.fallback(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("clinic: get config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("clinic: unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Set saves clinic config.
func (s *Store) Set(ctx context.Context, cfg *Config) error {
	if cfg == nil {
		return errors.New("clinic: config required")
	}
	if s == nil || s.redis == nil {
		return errors.New("clinic: store not configured")
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("clinic: marshal config: %w", err)
	}
	if err := s.redis.Set(ctx, configKey, data, 0).Err(); err != nil {
		return fmt.Errorf("clinic: set config: %w", err)
	}
	return nil
}

func (s *Store) fallback() *Config {
	if s == nil || s.defaults == nil {
		return DefaultConfig()
	}
	cp := *s.defaults
	return &cp
}
