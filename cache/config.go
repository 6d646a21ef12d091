package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/KOMKZ/yogan-hiera/validator"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Store types
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreChain  = "chain" // memory L1 + redis L2
	StoreDisk   = "disk"  // memory L1 + badger L2，跨进程复用
)

// Defaults
const (
	DefaultTTL       = 5 * time.Minute
	DefaultMaxSize   = 10000
	DefaultKeyPrefix = "hiera:"
	defaultDirName   = "hieractl"
)

// Config document cache configuration
type Config struct {
	// Store backend type: memory, redis, chain, disk
	Store string `mapstructure:"store" json:"store"`

	// TTL expiration time of cached data files
	TTL time.Duration `mapstructure:"ttl" json:"ttl"`

	// MaxSize maximum item count of the memory store
	MaxSize int `mapstructure:"max_size" json:"max_size"`

	// RedisAddr redis address, required by redis and chain
	RedisAddr string `mapstructure:"redis_addr" json:"redis_addr"`

	// KeyPrefix redis key prefix
	KeyPrefix string `mapstructure:"key_prefix" json:"key_prefix"`

	// Dir badger 数据目录，disk 使用，默认 $XDG_CACHE_HOME/hieractl
	Dir string `mapstructure:"dir" json:"dir"`
}

// DefaultConfig returns the in-process memory cache configuration
func DefaultConfig() Config {
	c := Config{}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults Apply default values
func (c *Config) ApplyDefaults() {
	if c.Store == "" {
		c.Store = StoreMemory
	}
	if c.TTL <= 0 {
		c.TTL = DefaultTTL
	}
	if c.MaxSize <= 0 {
		c.MaxSize = DefaultMaxSize
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = DefaultKeyPrefix
	}
	if c.Store == StoreDisk && c.Dir == "" {
		c.Dir = defaultDir()
	}
}

func defaultDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, defaultDirName)
}

// Validate configuration
func (c Config) Validate() error {
	needsRedis := c.Store == StoreRedis || c.Store == StoreChain
	return validation.ValidateStruct(&c,
		validation.Field(&c.Store, validation.Required, validation.In(StoreMemory, StoreRedis, StoreChain, StoreDisk)),
		validation.Field(&c.TTL, validation.Min(time.Duration(0))),
		validation.Field(&c.MaxSize, validation.Min(0)),
		validation.Field(&c.RedisAddr, validation.When(needsRedis, validation.Required)),
		validation.Field(&c.Dir, validation.When(c.Store == StoreDisk, validation.Required)),
	)
}

// NewStore builds the store described by cfg
func NewStore(ctx context.Context, cfg Config) (Store, error) {
	cfg.ApplyDefaults()
	if err := validator.Validate(cfg, ErrConfigInvalid); err != nil {
		return nil, err
	}

	switch cfg.Store {
	case StoreRedis:
		return DialRedisStore(ctx, "redis", cfg.RedisAddr, cfg.KeyPrefix)
	case StoreChain:
		l2, err := DialRedisStore(ctx, "redis", cfg.RedisAddr, cfg.KeyPrefix)
		if err != nil {
			return nil, err
		}
		l1 := NewMemoryStore("memory", cfg.MaxSize)
		return NewChainStore("chain", l1, l2), nil
	case StoreDisk:
		l2, err := OpenDiskStore("disk", cfg.Dir)
		if err != nil {
			return nil, err
		}
		l1 := NewMemoryStore("memory", cfg.MaxSize)
		return NewChainStore("chain", l1, l2), nil
	default:
		return NewMemoryStore("memory", cfg.MaxSize), nil
	}
}
