package helpers

import (
	"crypto/rand"
	"math/big"
)

// GenOTPCode generates a secure random 6-digit code, uniformly distributed
// over 100000-999999 so there is never a leading zero to strip.
func GenOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return big.NewInt(0).Add(n, big.NewInt(100000)).String(), nil
}
