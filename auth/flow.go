package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xy-planning-network/messleave"
	"github.com/xy-planning-network/messleave/logger"
)

// A Result is the successful terminal state of an authentication attempt:
// a freshly minted session token and the identity it was minted for.
type Result struct {
	Token string
	User  messleave.User
}

// Flow orchestrates a single authentication attempt:
// verify the identity assertion, upsert the local user record,
// mint a session token.
//
// Each attempt is independent; Flow holds no per-request state
// and is safe for concurrent use.
type Flow struct {
	verifier Verifier
	store    UserStore
	codec    *Codec
	l        logger.Logger
	now      func() time.Time
}

// NewFlow constructs a *Flow from its collaborators.
func NewFlow(verifier Verifier, store UserStore, codec *Codec, l logger.Logger) (*Flow, error) {
	if verifier == nil || store == nil || codec == nil {
		return nil, fmt.Errorf("%w: verifier, store and codec are all required", messleave.ErrBadConfig)
	}

	if l == nil {
		l = logger.New()
	}

	return &Flow{verifier: verifier, store: store, codec: codec, l: l, now: time.Now}, nil
}

// Authenticate runs the whole flow for one raw identity assertion.
//
// Verification failures pass through as ErrInvalidAssertion or
// ErrExpiredAssertion without any storage mutation. Storage failures surface
// as ErrUnavailable and no token is issued. On success the token encodes the
// now-current identity fields of the stored record.
//
// Two first logins for the same subject can race; the persistence layer
// enforces primary-key uniqueness and a losing Create is retried as an
// update rather than surfaced.
func (f *Flow) Authenticate(ctx context.Context, rawAssertion string) (Result, error) {
	claims, err := f.verifier.Verify(ctx, rawAssertion)
	if err != nil {
		return Result{}, err
	}

	user, err := f.store.FindByID(ctx, claims.Subject)
	switch {
	case err == nil:
		user, err = f.refresh(ctx, claims, user)

	case errors.Is(err, messleave.ErrNotFound):
		user, err = f.provision(ctx, claims)

	default:
		err = fmt.Errorf("%w: %s", ErrUnavailable, err)
	}

	if err != nil {
		return Result{}, err
	}

	token, err := f.codec.Issue(user.ID, user.Email, user.Name)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}

	return Result{Token: token, User: user}, nil
}

// VerifyRequest recovers the authenticated subject from a bearer token.
//
// It deliberately performs no storage round trip: session validity is
// entirely signature plus expiry, trading staleness for availability.
// A record deleted upstream stays "authenticated" until its token expires.
func (f *Flow) VerifyRequest(bearerToken string) (Session, error) {
	return f.codec.Verify(bearerToken)
}

// provision creates the record for a subject's first successful authentication.
// The record's last_login is set at creation, not via a separate touch.
func (f *Flow) provision(ctx context.Context, claims Claims) (messleave.User, error) {
	user, err := f.store.Create(ctx, messleave.User{
		ID:            claims.Subject,
		Email:         claims.Email,
		Name:          claims.Name,
		Picture:       claims.Picture,
		EmailVerified: claims.EmailVerified,
		LastLogin:     f.stamp(),
	})

	if errors.Is(err, messleave.ErrExists) {
		// lost a concurrent first-login race; the record is there now,
		// so fall through to the existing-user path
		f.l.Debug("create lost upsert race, retrying as update", &logger.LogContext{Error: err})

		user, err = f.store.FindByID(ctx, claims.Subject)
		if err != nil {
			return messleave.User{}, fmt.Errorf("%w: %s", ErrUnavailable, err)
		}

		return f.refresh(ctx, claims, user)
	}

	if err != nil {
		return messleave.User{}, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}

	return user, nil
}

// refresh applies any changed identity claims to an existing record
// and stamps its last_login.
func (f *Flow) refresh(ctx context.Context, claims Claims, user messleave.User) (messleave.User, error) {
	fields := make(map[string]any)
	if claims.Name != user.Name {
		fields["name"] = claims.Name
	}

	if claims.Picture != user.Picture {
		fields["picture"] = claims.Picture
	}

	if claims.EmailVerified != user.EmailVerified {
		fields["email_verified"] = claims.EmailVerified
	}

	if len(fields) > 0 {
		var err error
		user, err = f.store.Update(ctx, user.ID, fields)
		if err != nil {
			return messleave.User{}, fmt.Errorf("%w: %s", ErrUnavailable, err)
		}
	}

	now := f.stamp()
	if err := f.store.TouchLastLogin(ctx, user.ID, now); err != nil {
		return messleave.User{}, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}

	user.LastLogin = now
	return user, nil
}

// stamp returns the current time at the microsecond precision timestamptz
// columns hold, so a returned record carries the stored value exactly.
func (f *Flow) stamp() time.Time { return f.now().Truncate(time.Microsecond) }
