package utils

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"RxClinic/cache"

	"github.com/pkg/errors"
)

const ResetCodeExpiry = 15 * time.Minute

// ResetCodes stores password reset codes in the cache, keyed by email.
type ResetCodes struct {
	cache *cache.Cache
}

func NewResetCodes(c *cache.Cache) *ResetCodes {
	return &ResetCodes{cache: c}
}

// GenerateResetCode generates a random 6-digit reset code.
func GenerateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", errors.Wrap(err, "failed to generate reset code")
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Enabled reports whether codes can be stored at all. Without redis they cannot.
func (r *ResetCodes) Enabled() bool {
	return r.cache.Enabled()
}

func resetKey(email string) string {
	return "reset_code:" + email
}

func (r *ResetCodes) Set(ctx context.Context, email, code string) error {
	return r.cache.Set(ctx, resetKey(email), code, ResetCodeExpiry)
}

// Verify reports whether code is the live code for email.
func (r *ResetCodes) Verify(ctx context.Context, email, code string) (bool, error) {
	stored, err := r.cache.Get(ctx, resetKey(email))
	if err != nil {
		return false, err
	}
	return stored != "" && stored == code, nil
}

func (r *ResetCodes) Delete(ctx context.Context, email string) error {
	return r.cache.Delete(ctx, resetKey(email))
}
