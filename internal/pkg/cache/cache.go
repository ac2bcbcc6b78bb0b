package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shanejorr-team/personal-blog/internal/pkg/imaging"
)

// DimensionCache remembers probed image sizes between builds
type DimensionCache interface {
	Get(ctx context.Context, key string) (imaging.Dimensions, bool, error)
	Set(ctx context.Context, key string, dims imaging.Dimensions) error
}

// Memory is a process-local cache
type Memory struct {
	mu   sync.RWMutex
	dims map[string]imaging.Dimensions
}

// NewMemory creates an empty in-memory cache
func NewMemory() *Memory {
	return &Memory{dims: make(map[string]imaging.Dimensions)}
}

func (m *Memory) Get(ctx context.Context, key string) (imaging.Dimensions, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.dims[key]
	return d, ok, nil
}

func (m *Memory) Set(ctx context.Context, key string, dims imaging.Dimensions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dims[key] = dims
	return nil
}

const redisKeyPrefix = "portfolio:dims:"

// Redis stores dimensions as "WxH" strings with a TTL
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis wraps a connected client
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, key string) (imaging.Dimensions, bool, error) {
	val, err := r.client.Get(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return imaging.Dimensions{}, false, nil
		}
		return imaging.Dimensions{}, false, err
	}
	dims, err := parseDimensions(val)
	if err != nil {
		// a corrupt entry is treated as a miss and overwritten on Set
		return imaging.Dimensions{}, false, nil
	}
	return dims, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, dims imaging.Dimensions) error {
	return r.client.Set(ctx, redisKeyPrefix+key, formatDimensions(dims), r.ttl).Err()
}

func formatDimensions(d imaging.Dimensions) string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

func parseDimensions(s string) (imaging.Dimensions, error) {
	w, h, ok := strings.Cut(s, "x")
	if !ok {
		return imaging.Dimensions{}, fmt.Errorf("malformed dimensions %q", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return imaging.Dimensions{}, err
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return imaging.Dimensions{}, err
	}
	return imaging.Dimensions{Width: width, Height: height}, nil
}
