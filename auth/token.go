package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/xy-planning-network/messleave"
)

// DefaultSessionTTL bounds the lifetime of issued session tokens
// when no other duration is configured.
const DefaultSessionTTL = 30 * time.Minute

// A Session is the authenticated subject recovered from a verified session token.
type Session struct {
	UserID string
	Email  string
	Name   string
}

// GetID implements logger.LogUser.
func (s Session) GetID() string { return s.UserID }

// GetEmail implements logger.LogUser.
func (s Session) GetEmail() string { return s.Email }

// sessionClaims is the wire shape of a session token's payload.
type sessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Codec mints and validates the self-contained bearer credentials
// the app hands out after a successful authentication.
//
// Tokens are HS256-signed JWTs carrying the subject id, email and name,
// time-boxed to the configured ttl. The signing key is process-wide
// configuration; rotating it invalidates every outstanding token,
// which is acceptable for sessions this short-lived.
type Codec struct {
	key    []byte
	ttl    time.Duration
	parser *jwt.Parser
	now    func() time.Time
}

// NewCodec constructs a *Codec signing with key and expiring tokens after ttl.
// A non-positive ttl falls back to DefaultSessionTTL.
func NewCodec(key string, ttl time.Duration) (*Codec, error) {
	if key == "" {
		return nil, fmt.Errorf(`%w: signing key cannot be ""`, messleave.ErrBadConfig)
	}

	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	return &Codec{
		key:    []byte(key),
		ttl:    ttl,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
		now:    time.Now,
	}, nil
}

// TTL returns the configured token lifetime.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue mints a signed session token for the given subject.
//
// The ttl is fixed at construction, never caller-supplied,
// so no caller can mint an unbounded-lifetime credential.
func (c *Codec) Issue(userID, email, name string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("%w: cannot issue a token without a subject", messleave.ErrMissingData)
	}

	now := c.now()
	claims := sessionClaims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("%w: %s", messleave.ErrUnexpected, err)
	}

	return signed, nil
}

// Verify decodes tokenString, checking its signature and expiry,
// and recovers the Session it encodes.
//
// Verify is the sole authorization gate for authenticated requests;
// it deliberately involves no storage round trip.
func (c *Codec) Verify(tokenString string) (Session, error) {
	claims := new(sessionClaims)
	_, err := c.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return c.key, nil
	})

	var ve *jwt.ValidationError
	switch {
	case err == nil:
		// carry on

	case errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0:
		return Session{}, fmt.Errorf("%w: %s", ErrTokenExpired, err)

	default:
		return Session{}, fmt.Errorf("%w: %s", ErrTokenInvalid, err)
	}

	if claims.Subject == "" {
		return Session{}, fmt.Errorf("%w: token missing subject", ErrTokenInvalid)
	}

	return Session{UserID: claims.Subject, Email: claims.Email, Name: claims.Name}, nil
}
