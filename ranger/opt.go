package ranger

import (
	"context"
	"fmt"
	"net/http"

	"github.com/xy-planning-network/messleave"
	"github.com/xy-planning-network/messleave/auth"
	"github.com/xy-planning-network/messleave/http/resp"
	"github.com/xy-planning-network/messleave/http/router"
	"github.com/xy-planning-network/messleave/logger"
	"github.com/xy-planning-network/messleave/postgres"
)

// A RangerOption configures a *Ranger either (1) directly, immediately upon being called
// or (2) in the OptFollowup it returns.
// Some RangerOptions require data in others and thus an OptFollowup can be returned
// in order to be called at a later time when that data is available.
type RangerOption func(rng *Ranger) (OptFollowup, error)
type OptFollowup func() error

// WithContext exposes the provided context.Context to the messleave app.
func WithContext(ctx context.Context) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.ctx = ctx
		return nil, nil
	}
}

// WithDB exposes the provided *postgres.DB to the messleave app.
//
// WithDB assumes a connection has already been established
// and migrations have already been run.
func WithDB(db *postgres.DB) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.db = db
		return nil, nil
	}
}

// WithEnv casts the provided string into a valid messleave.Environment,
// or, reads from the ENVIRONMENT environment variable a valid one.
//
// If both fail, the Environment is set to Development.
func WithEnv(envVar string) RangerOption {
	e := messleave.Environment(envVar)
	if err := e.Valid(); err == nil {
		return func(rng *Ranger) (OptFollowup, error) {
			rng.env = e
			return nil, nil
		}
	}

	return func(rng *Ranger) (OptFollowup, error) {
		rng.env = messleave.EnvVarOrEnv(environmentEnvVar, messleave.Development)
		return nil, nil
	}
}

// WithFlow exposes the provided *auth.Flow to the messleave app,
// superseding the one constructed from GOOGLE_CLIENT_ID and SESSION_KEY.
func WithFlow(f *auth.Flow) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.flow = f
		return nil, nil
	}
}

// WithLogger exposes the provided logger.Logger to the messleave app.
func WithLogger(l logger.Logger) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.l = l
		return nil, nil
	}
}

// WithResponder exposes the provided *resp.Responder to the messleave app.
func WithResponder(d *resp.Responder) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.Responder = d
		return nil, nil
	}
}

// WithRouter constructs a followup option that, when called,
// exposes the *router.Router to the messleave app.
func WithRouter(r *router.Router) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		return func() error {
			if rng.srv == nil {
				rng.srv = defaultServer(rng.ctx)
			}

			rng.Router = r
			rng.srv.Handler = r

			return nil
		}, nil
	}
}

// WithServer exposes the *http.Server to the messleave app.
func WithServer(s *http.Server) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		old := rng.srv
		rng.srv = s

		if old != nil {
			rng.srv.Handler = old.Handler
		}

		return nil, nil
	}
}

// WithUserStore exposes the provided auth.UserStore to the messleave app,
// superseding the postgres-backed one.
func WithUserStore(users auth.UserStore) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		if users == nil {
			return nil, fmt.Errorf("%w: nil auth.UserStore", ErrBadConfig)
		}

		rng.users = users
		return nil, nil
	}
}
