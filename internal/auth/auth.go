package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/stockbin/internal/cache"
	"github.com/andresuchdata/stockbin/internal/domain"
	"github.com/andresuchdata/stockbin/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

var (
	// ErrUnauthenticated covers missing, invalid and expired tokens as well as
	// session checks that did not finish in time.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Claims are the fields read from the auth provider's access token.
type Claims struct {
	Email     string `json:"email"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// SessionKey identifies the auth session; refreshed tokens keep the same key.
func (c *Claims) SessionKey() string {
	if c.SessionID != "" {
		return c.SessionID
	}
	return c.Subject
}

type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify checks the HS256 signature and the standard time claims.
func (v *Verifier) Verify(token string) (*Claims, error) {
	if len(v.secret) == 0 {
		return nil, fmt.Errorf("%w: no signing secret configured", ErrUnauthenticated)
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}
	return claims, nil
}

// MembershipResolver derives the team of a user once per auth session
type MembershipResolver struct {
	repo    repository.TeamRepository
	cache   cache.MembershipCache
	timeout time.Duration
}

func NewMembershipResolver(repo repository.TeamRepository, c cache.MembershipCache, timeout time.Duration) *MembershipResolver {
	if c == nil {
		c = cache.NewMemoryMembershipCache()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &MembershipResolver{repo: repo, cache: c, timeout: timeout}
}

// Resolve returns domain.ErrNoTeam for users without a team, remembered for the
// auth session like any other membership, and
// ErrUnauthenticated when the lookup did not answer within the timeout.
func (r *MembershipResolver) Resolve(ctx context.Context, claims *Claims) (*domain.TeamMembership, error) {
	key := claims.SessionKey()
	if m, ok, err := r.cache.Get(ctx, key); err == nil && ok && m.UserID == claims.Subject {
		if m.TeamID == "" {
			return nil, domain.ErrNoTeam
		}
		return m, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("auth: membership cache get failed")
	}

	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	m, err := r.repo.GetMembership(lookupCtx, claims.Subject)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		// a membership without team stands for "no team" until Remember replaces it
		if err := r.cache.Set(ctx, key, &domain.TeamMembership{UserID: claims.Subject}); err != nil {
			log.Warn().Err(err).Msg("auth: membership cache set failed")
		}
		return nil, domain.ErrNoTeam
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(lookupCtx.Err(), context.DeadlineExceeded):
		log.Warn().Str("user_id", claims.Subject).Dur("timeout", r.timeout).Msg("auth: membership lookup timed out")
		return nil, fmt.Errorf("%w: session check timed out", ErrUnauthenticated)
	case err != nil:
		return nil, err
	}

	if err := r.cache.Set(ctx, key, m); err != nil {
		log.Warn().Err(err).Msg("auth: membership cache set failed")
	}
	return m, nil
}

// Remember stores a membership created during the session, e.g. a new team.
func (r *MembershipResolver) Remember(ctx context.Context, claims *Claims, m *domain.TeamMembership) {
	if err := r.cache.Set(ctx, claims.SessionKey(), m); err != nil {
		log.Warn().Err(err).Msg("auth: membership cache set failed")
	}
}
