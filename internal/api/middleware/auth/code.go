package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// HashCode creates a bcrypt hash of a confirmation code so codes are never
// stored in plaintext.
func HashCode(code string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// VerifyCode checks if the provided confirmation code matches the stored hash.
func VerifyCode(hashedCode, providedCode string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedCode), []byte(providedCode))
}
