package utils

import "golang.org/x/crypto/bcrypt"

// HashKey returns the bcrypt hash of a device key using the given cost.
func HashKey(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyKey compares a bcrypt hash with a plain key in constant time.
func VerifyKey(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
