package session

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Credentials holds the single shared host login.
type Credentials struct {
	username []byte
	hash     []byte
}

// NewCredentials prepares the host login. When passwordHash is empty the plain
// password is hashed once at startup.
func NewCredentials(username, password, passwordHash string) (*Credentials, error) {
	hash := []byte(passwordHash)
	if len(hash) == 0 {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash admin password: %w", err)
		}
	} else if _, err := bcrypt.Cost(hash); err != nil {
		return nil, fmt.Errorf("invalid admin password hash: %w", err)
	}
	return &Credentials{username: []byte(username), hash: hash}, nil
}

// Check reports whether username and password match the host login.
func (c *Credentials) Check(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), c.username) == 1
	passOK := bcrypt.CompareHashAndPassword(c.hash, []byte(password)) == nil
	return userOK && passOK
}
