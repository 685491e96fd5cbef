package domain

import (
	"errors"
	"strings"
	"time"
)

// User is a chat participant. Created on first sight, either through the
// create-user endpoint or through a heartbeat referencing an unknown id.
type User struct {
	ID            int64
	UserName      string
	LastTimestamp time.Time
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if strings.TrimSpace(u.UserName) == "" {
		return errors.New("userName is required")
	}
	return nil
}
