package domain

import "time"

// OTPRecord is a pending login code. At most one exists per email.
type OTPRecord struct {
	Email     string
	Code      string
	ExpiresAt time.Time
}

// Expired reports whether the record is no longer usable at now.
func (r OTPRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
