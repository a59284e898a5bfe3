package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// Admin holds the single administrator credential.
type Admin struct {
	User         string
	PasswordHash []byte
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify checks a username and password against the stored credential.
func (a Admin) Verify(user, password string) bool {
	if len(a.PasswordHash) == 0 {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(a.User)) == 1
	passOK := bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(password)) == nil
	return userOK && passOK
}
