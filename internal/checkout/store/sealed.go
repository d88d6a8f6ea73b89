package store

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/washpay/pkg/cryptox"
)

// SealedKV encrypts values before they reach the underlying KV. The key is
// bound as additional data, so a value copied under another key fails to open.
type SealedKV struct {
	inner  KV
	sealer *cryptox.Sealer
}

// NewSealedKV wraps inner.
func NewSealedKV(inner KV, sealer *cryptox.Sealer) *SealedKV {
	return &SealedKV{inner: inner, sealer: sealer}
}

func (s *SealedKV) Get(ctx context.Context, key string) (string, error) {
	sealed, err := s.inner.Get(ctx, key)
	if err != nil || sealed == "" {
		return "", err
	}
	value, err := s.sealer.OpenString(sealed, key)
	if err != nil {
		return "", fmt.Errorf("failed to open %q: %w", key, err)
	}
	return value, nil
}

func (s *SealedKV) Set(ctx context.Context, key, value string) error {
	sealed, err := s.sealer.SealString(value, key)
	if err != nil {
		return fmt.Errorf("failed to seal %q: %w", key, err)
	}
	return s.inner.Set(ctx, key, sealed)
}

func (s *SealedKV) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}
