package replay

import (
	"fmt"
	"time"

	contractx "github.com/tanpawarit/voice-diary/agent/contract"
)

// Backends of the replay cache.
const (
	BackendNone    = "none"
	BackendMemory  = "memory"
	BackendRedis   = "redis"
	BackendUpstash = "upstash"
)

type Config struct {
	Backend   string        `envconfig:"BACKEND" split_words:"true" default:"memory"`
	TTL       time.Duration `envconfig:"TTL" split_words:"true" default:"10m"`
	KeyPrefix string        `envconfig:"KEY_PREFIX" split_words:"true" default:"voice-diary:turn:"`
}

func (c Config) Validate() error {
	switch c.Backend {
	case BackendNone, BackendMemory, BackendRedis, BackendUpstash:
	default:
		return fmt.Errorf("%w: unknown replay backend %q", contractx.ErrConfiguration, c.Backend)
	}
	if c.TTL < 0 {
		return fmt.Errorf("%w: replay ttl must be >= 0", contractx.ErrConfiguration)
	}
	return nil
}
