// Package clock abstracts time so expiry logic can be driven by tests.
package clock

import "time"

// Clocker returns the current time.
type Clocker interface {
	Now() time.Time
}

// System is the production Clocker backed by time.Now.
type System struct{}

// New returns a System clock.
func New() System { return System{} }

func (System) Now() time.Time { return time.Now() }
