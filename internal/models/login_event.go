package models

import (
	"time"
)

// LoginEvent is one row of the login audit log.
type LoginEvent struct {
	UserID    string // empty when the username did not resolve
	Username  string
	Success   bool
	IPAddress string
	UserAgent string
	CreatedAt time.Time
}
