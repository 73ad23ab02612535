package replay

import (
	"errors"
	"testing"
	"time"

	contractx "github.com/tanpawarit/voice-diary/agent/contract"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "memory", cfg: Config{Backend: BackendMemory, TTL: time.Minute}},
		{name: "disabled", cfg: Config{Backend: BackendNone}},
		{name: "unknown backend", cfg: Config{Backend: "etcd"}, wantErr: true},
		{name: "negative ttl", cfg: Config{Backend: BackendRedis, TTL: -time.Second}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, contractx.ErrConfiguration) {
				t.Fatalf("Validate() error = %v, want configuration class", err)
			}
		})
	}
}
