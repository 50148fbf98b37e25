package messleave

import "time"

// A User is one external identity provisioned by the authentication flow.
//
// ID is the identity provider's stable subject id and the only durable key.
// Email is unique across records but can change upstream, so it never
// identifies a User. A record is created on the first successful
// authentication for a subject and updated on every one after that;
// this application never deletes them.
type User struct {
	ID            string    `db:"id" json:"user_id"`
	Email         string    `db:"email" json:"email"`
	Name          string    `db:"name" json:"name"`
	Picture       string    `db:"picture" json:"picture,omitempty"`
	EmailVerified bool      `db:"email_verified" json:"email_verified"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
	LastLogin     time.Time `db:"last_login" json:"lastLogin"`
}

func (u User) Exists() bool { return !u.CreatedAt.IsZero() }

// GetID retrieves the provider subject id for the User.
//
// GetID implements logger.LogUser.
func (u User) GetID() string { return u.ID }

// GetEmail retrieves the email address of the User.
//
// GetEmail implements logger.LogUser.
func (u User) GetEmail() string { return u.Email }
