package visitor

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidID = errors.New("invalid visitor id")

// Service issues and validates the opaque ids that scope a visitor's saved state.
type Service struct {
	cookieTTL time.Duration
}

func New(cookieTTL time.Duration) *Service {
	if cookieTTL <= 0 {
		cookieTTL = 365 * 24 * time.Hour
	}
	return &Service{cookieTTL: cookieTTL}
}

// Issue returns a fresh random visitor id.
func (s *Service) Issue() string {
	return uuid.NewString()
}

// Resolve validates a presented id and returns its canonical form.
func (s *Service) Resolve(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidID
	}
	id, err := uuid.Parse(raw)
	if err != nil || id.Version() != 4 {
		return "", ErrInvalidID
	}
	return id.String(), nil
}

func (s *Service) CookieMaxAgeSeconds() int {
	return int(s.cookieTTL.Seconds())
}
