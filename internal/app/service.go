/**
 * @description
 * This file contains the Service struct, which orchestrates the core business
 * logic of the finance-service: the ledger engine, analytics, budgets, and
 * account/category/user management. It coordinates the repository, the event
 * producer, token issuance, and the optional write rate limiter.
 *
 * @dependencies
 * - internal/store: The data access layer (Repository interface).
 * - pkg/rabbitmq: For publishing ledger events.
 */

package app

import (
	"time"

	"github.com/finwell/finance-service/internal/store"
	"github.com/finwell/finance-service/pkg/rabbitmq"
)

// Service orchestrates the business logic of the finance-service.
type Service struct {
	repo          store.Repository
	events        rabbitmq.Publisher
	eventExchange string

	jwtSecret       []byte
	refreshSecret   []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration

	writeLimiter        WriteRateLimiter
	writeLimitPerMinute int
}

// NewService creates a new Service. The events publisher may be nil, in which
// case ledger events are not published.
func NewService(
	repo store.Repository,
	events rabbitmq.Publisher,
	eventExchange string,
	jwtSecret string,
	refreshSecret string,
	accessTokenTTL time.Duration,
	refreshTokenTTL time.Duration,
) *Service {
	return &Service{
		repo:            repo,
		events:          events,
		eventExchange:   eventExchange,
		jwtSecret:       []byte(jwtSecret),
		refreshSecret:   []byte(refreshSecret),
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
	}
}

// SetWriteRateLimiter wires an optional distributed rate limiter for ledger
// mutations. A nil limiter or a non-positive limit disables enforcement.
func (s *Service) SetWriteRateLimiter(limiter WriteRateLimiter, perMinute int) {
	s.writeLimiter = limiter
	s.writeLimitPerMinute = perMinute
}
