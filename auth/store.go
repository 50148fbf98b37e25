package auth

import (
	"context"
	"time"

	"github.com/xy-planning-network/messleave"
)

// UserStore is the persistence port the authentication flow provisions
// identities through. The postgres package provides the concrete adapter.
//
// Implementations surface messleave.ErrNotFound for missing records,
// messleave.ErrExists for unique violations and messleave.ErrUnexpected
// for infrastructure faults. All operations are idempotent with respect
// to repeated identical calls.
type UserStore interface {
	FindByID(ctx context.Context, id string) (messleave.User, error)
	FindByEmail(ctx context.Context, email string) (messleave.User, error)
	Create(ctx context.Context, user messleave.User) (messleave.User, error)

	// Update applies a partial update; columns absent from fields are left unchanged.
	Update(ctx context.Context, id string, fields map[string]any) (messleave.User, error)

	// TouchLastLogin stamps the record's last_login with at.
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}
