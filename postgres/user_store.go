package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/xy-planning-network/messleave"
)

// UserStore is the concrete persistence adapter for user identity records,
// implementing the auth package's UserStore port over a *DB.
//
// The database enforces the invariants the port promises:
// id is the primary key, email carries a unique constraint,
// so a losing concurrent Create surfaces as messleave.ErrExists.
type UserStore struct {
	db *DB
}

// NewUserStore constructs a *UserStore atop db.
func NewUserStore(db *DB) (*UserStore, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: db is required", messleave.ErrBadConfig)
	}

	return &UserStore{db: db}, nil
}

// FindByID retrieves the user record keyed by the provider subject id.
func (s *UserStore) FindByID(ctx context.Context, id string) (messleave.User, error) {
	var user messleave.User
	if id == "" {
		return user, fmt.Errorf(`%w: id cannot be ""`, messleave.ErrNotValid)
	}

	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user)
	return user, err
}

// FindByEmail retrieves the user record holding email.
//
// Email is unique but not the identifier; prefer FindByID wherever
// a subject id is at hand.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (messleave.User, error) {
	var user messleave.User
	if email == "" {
		return user, fmt.Errorf(`%w: email cannot be ""`, messleave.ErrNotValid)
	}

	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user)
	return user, err
}

// Create inserts the user record, returning it with database-set timestamps.
//
// If a record with user.ID or user.Email already exists, ErrExists returns.
func (s *UserStore) Create(ctx context.Context, user messleave.User) (messleave.User, error) {
	if user.ID == "" {
		return messleave.User{}, fmt.Errorf(`%w: id cannot be ""`, messleave.ErrNotValid)
	}

	if err := s.db.WithContext(ctx).Create(&user); err != nil {
		return messleave.User{}, err
	}

	return user, nil
}

// Update applies a partial update to the record keyed by id,
// leaving columns absent from fields unchanged,
// and returns the record as now stored.
//
// If no record with id exists, ErrNotFound returns.
func (s *UserStore) Update(ctx context.Context, id string, fields map[string]any) (messleave.User, error) {
	if id == "" {
		return messleave.User{}, fmt.Errorf(`%w: id cannot be ""`, messleave.ErrNotValid)
	}

	updates := Updates(fields)
	updates.StripNils()

	err := s.db.WithContext(ctx).Model(new(messleave.User)).Where("id = ?", id).Update(updates)
	if err != nil {
		return messleave.User{}, err
	}

	return s.FindByID(ctx, id)
}

// TouchLastLogin stamps the record's last_login with at.
//
// If no record with id exists, ErrNotFound returns.
func (s *UserStore) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	if id == "" {
		return fmt.Errorf(`%w: id cannot be ""`, messleave.ErrNotValid)
	}

	return s.db.WithContext(ctx).
		Model(new(messleave.User)).
		Where("id = ?", id).
		Update(Updates{"last_login": at})
}
