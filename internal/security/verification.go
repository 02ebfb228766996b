package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// NewVerificationCode returns a uniformly random 6-digit code in
// [100000, 999999]. Codes never start with zero so they survive
// round-trips through clients that strip leading zeros.
func NewVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
