package memory

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/school-directory/internal/domain"
	"github.com/school-directory/internal/pkg/clock"
)

const (
	DefaultOTPTTL        = 10 * time.Minute
	DefaultSweepInterval = 5 * time.Minute
)

// OTPStoreConfig configures an OTPStore. Zero values fall back to defaults.
type OTPStoreConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
	Clock         clock.Clocker
	// Generate returns a new code. Defaults to a uniform draw from [100000, 999999].
	Generate func() (string, error)
}

// OTPStore holds pending login codes keyed by email, one per email.
// Expired records are dropped lazily by Verify and eagerly by a background
// sweep that runs until Close is called.
type OTPStore struct {
	mu       sync.Mutex
	records  map[string]domain.OTPRecord
	ttl      time.Duration
	clock    clock.Clocker
	generate func() (string, error)

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewOTPStore creates the store and starts its sweep loop.
func NewOTPStore(cfg OTPStoreConfig) *OTPStore {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultOTPTTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Generate == nil {
		cfg.Generate = GenerateCode
	}
	s := &OTPStore{
		records:  make(map[string]domain.OTPRecord),
		ttl:      cfg.TTL,
		clock:    cfg.Clock,
		generate: cfg.Generate,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go s.sweepLoop(cfg.SweepInterval)
	return s
}

// GenerateCode returns a six digit code uniformly distributed over [100000, 999999].
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// Issue creates a fresh code for email, replacing any outstanding one.
func (s *OTPStore) Issue(email string) (string, error) {
	code, err := s.generate()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[email] = domain.OTPRecord{
		Email:     email,
		Code:      code,
		ExpiresAt: s.clock.Now().Add(s.ttl),
	}
	return code, nil
}

// Verify consumes the code for email if it matches and has not expired.
// A wrong code leaves the record in place so the caller may retry.
func (s *OTPStore) Verify(email, code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[email]
	if !ok {
		return false
	}
	if rec.Expired(s.clock.Now()) {
		delete(s.records, email)
		return false
	}
	if rec.Code != code {
		return false
	}
	delete(s.records, email)
	return true
}

// Remove drops any pending code for email.
func (s *OTPStore) Remove(email string) {
	s.mu.Lock()
	delete(s.records, email)
	s.mu.Unlock()
}

// ExpiresAt returns the expiry of the pending code for email, if any.
func (s *OTPStore) ExpiresAt(email string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[email]
	return rec.ExpiresAt, ok
}

// Len returns the number of pending records, expired or not.
func (s *OTPStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Sweep deletes every record already past its expiry and returns how many were removed.
func (s *OTPStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	removed := 0
	for email, rec := range s.records {
		if rec.Expired(now) {
			delete(s.records, email)
			removed++
		}
	}
	return removed
}

// Close stops the sweep loop and waits for it to exit. Safe to call more than once.
func (s *OTPStore) Close() error {
	s.closeOnce.Do(func() { close(s.stop) })
	<-s.done
	return nil
}

func (s *OTPStore) sweepLoop(interval time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.Debug("swept expired otp records", "removed", n)
			}
		}
	}
}
