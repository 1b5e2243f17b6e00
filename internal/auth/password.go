package auth

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword generates a bcrypt hash of the password, suitable for ADMIN_PASSWORD.
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plaintext password with a stored bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CheckAdminCredentials compares the submitted login with the configured one.
// A configured password starting with "$2" is treated as a bcrypt hash.
func CheckAdminCredentials(username, password, wantUsername, wantPassword string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(wantUsername)) == 1
	var passOK bool
	if strings.HasPrefix(wantPassword, "$2") {
		passOK = CheckPasswordHash(password, wantPassword)
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(wantPassword)) == 1
	}
	return userOK && passOK
}
