package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/messleave"
)

var errStoreDown = errors.New("connection refused")

type stubVerifier struct {
	claims Claims
	err    error
	calls  int
}

func (s *stubVerifier) Verify(_ context.Context, _ string) (Claims, error) {
	s.calls++
	return s.claims, s.err
}

// memStore is an in-memory UserStore enforcing the same uniqueness
// rules the postgres adapter does.
type memStore struct {
	mu    sync.Mutex
	users map[string]messleave.User

	// findMisses forces that many FindByID calls to report ErrNotFound
	// even when the record exists, standing in for a lost upsert race.
	findMisses int
	down       bool

	creates int
	finds   int
	touches int
	updates int
}

func newMemStore() *memStore {
	return &memStore{users: make(map[string]messleave.User)}
}

func (m *memStore) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creates + m.finds + m.touches + m.updates
}

func (m *memStore) FindByID(_ context.Context, id string) (messleave.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.finds++
	if m.down {
		return messleave.User{}, errStoreDown
	}

	if m.findMisses > 0 {
		m.findMisses--
		return messleave.User{}, messleave.ErrNotFound
	}

	u, ok := m.users[id]
	if !ok {
		return messleave.User{}, messleave.ErrNotFound
	}

	return u, nil
}

func (m *memStore) FindByEmail(_ context.Context, email string) (messleave.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.finds++
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}

	return messleave.User{}, messleave.ErrNotFound
}

func (m *memStore) Create(_ context.Context, user messleave.User) (messleave.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.creates++
	if m.down {
		return messleave.User{}, errStoreDown
	}

	if _, ok := m.users[user.ID]; ok {
		return messleave.User{}, fmt.Errorf("%w: users.id", messleave.ErrExists)
	}

	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.users[user.ID] = user
	return user, nil
}

func (m *memStore) Update(_ context.Context, id string, fields map[string]any) (messleave.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.updates++
	if m.down {
		return messleave.User{}, errStoreDown
	}

	u, ok := m.users[id]
	if !ok {
		return messleave.User{}, messleave.ErrNotFound
	}

	if v, ok := fields["name"].(string); ok {
		u.Name = v
	}
	if v, ok := fields["picture"].(string); ok {
		u.Picture = v
	}
	if v, ok := fields["email_verified"].(bool); ok {
		u.EmailVerified = v
	}

	u.UpdatedAt = time.Now()
	m.users[id] = u
	return u, nil
}

func (m *memStore) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.touches++
	if m.down {
		return errStoreDown
	}

	u, ok := m.users[id]
	if !ok {
		return messleave.ErrNotFound
	}

	u.LastLogin = at
	m.users[id] = u
	return nil
}

func testClaims() Claims {
	return Claims{
		Subject:       "fake-google-sub",
		Email:         "mess@example.com",
		Name:          "Cadet Mess",
		Picture:       "https://example.com/p.png",
		EmailVerified: true,
	}
}

func newTestFlow(t *testing.T, v Verifier, store UserStore) (*Flow, *Codec) {
	t.Helper()

	codec, err := NewCodec("test-key", time.Minute)
	require.Nil(t, err)

	flow, err := NewFlow(v, store, codec, nil)
	require.Nil(t, err)

	return flow, codec
}

func TestNewFlow(t *testing.T) {
	// Act
	_, err := NewFlow(nil, nil, nil, nil)

	// Assert
	require.ErrorIs(t, err, messleave.ErrBadConfig)
}

func TestFlowAuthenticateFirstLogin(t *testing.T) {
	// Arrange
	store := newMemStore()
	flow, codec := newTestFlow(t, &stubVerifier{claims: testClaims()}, store)

	// Act
	result, err := flow.Authenticate(context.Background(), "raw-assertion")

	// Assert
	require.Nil(t, err)
	require.Equal(t, 1, store.creates)
	require.Zero(t, store.updates)

	u := store.users["fake-google-sub"]
	require.Equal(t, "mess@example.com", u.Email)
	require.Equal(t, "Cadet Mess", u.Name)
	require.NotZero(t, u.LastLogin)

	s, err := codec.Verify(result.Token)
	require.Nil(t, err)
	require.Equal(t, Session{UserID: "fake-google-sub", Email: "mess@example.com", Name: "Cadet Mess"}, s)
}

func TestFlowAuthenticateReturningUser(t *testing.T) {
	// Arrange
	store := newMemStore()
	_, err := store.Create(context.Background(), messleave.User{
		ID:    "fake-google-sub",
		Email: "mess@example.com",
		Name:  "Old Name",
	})
	require.Nil(t, err)
	store.creates = 0

	flow, _ := newTestFlow(t, &stubVerifier{claims: testClaims()}, store)

	// Act
	result, err := flow.Authenticate(context.Background(), "raw-assertion")

	// Assert
	require.Nil(t, err)
	require.Zero(t, store.creates)
	require.Equal(t, 1, store.updates)
	require.Equal(t, 1, store.touches)
	require.Equal(t, "Cadet Mess", result.User.Name)
	require.Equal(t, "Cadet Mess", store.users["fake-google-sub"].Name)
}

func TestFlowAuthenticateUnchangedUserSkipsUpdate(t *testing.T) {
	// Arrange
	claims := testClaims()
	store := newMemStore()
	_, err := store.Create(context.Background(), messleave.User{
		ID:            claims.Subject,
		Email:         claims.Email,
		Name:          claims.Name,
		Picture:       claims.Picture,
		EmailVerified: claims.EmailVerified,
	})
	require.Nil(t, err)

	flow, _ := newTestFlow(t, &stubVerifier{claims: claims}, store)

	// Act
	_, err = flow.Authenticate(context.Background(), "raw-assertion")

	// Assert
	require.Nil(t, err)
	require.Zero(t, store.updates)
	require.Equal(t, 1, store.touches)
}

func TestFlowAuthenticateLastLoginMatchesStored(t *testing.T) {
	// Arrange
	store := newMemStore()
	flow, _ := newTestFlow(t, &stubVerifier{claims: testClaims()}, store)

	// Act - first login
	result, err := flow.Authenticate(context.Background(), "raw-assertion")

	// Assert - the returned record holds the stored stamp, not a second reading
	require.Nil(t, err)
	require.Equal(t, store.users["fake-google-sub"].LastLogin, result.User.LastLogin)
	require.True(t, result.User.LastLogin.Equal(result.User.LastLogin.Truncate(time.Microsecond)))

	// Act - the same subject again
	result, err = flow.Authenticate(context.Background(), "raw-assertion")

	// Assert
	require.Nil(t, err)
	require.Equal(t, store.users["fake-google-sub"].LastLogin, result.User.LastLogin)
}

func TestFlowAuthenticateInvalidAssertion(t *testing.T) {
	for _, tc := range []struct {
		name     string
		err      error
		expected error
	}{
		{"Invalid", fmt.Errorf("%w: bad audience", ErrInvalidAssertion), ErrInvalidAssertion},
		{"Expired", fmt.Errorf("%w: too old", ErrExpiredAssertion), ErrExpiredAssertion},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			store := newMemStore()
			flow, _ := newTestFlow(t, &stubVerifier{err: tc.err}, store)

			// Act
			_, err := flow.Authenticate(context.Background(), "raw-assertion")

			// Assert - no storage mutation or access of any kind
			require.ErrorIs(t, err, tc.expected)
			require.Zero(t, store.calls(), "a rejected assertion must never touch storage")
		})
	}
}

func TestFlowAuthenticateLostUpsertRace(t *testing.T) {
	// Arrange - the record exists, but the first lookup misses,
	// so the flow attempts a create and loses.
	store := newMemStore()
	_, err := store.Create(context.Background(), messleave.User{
		ID:    "fake-google-sub",
		Email: "mess@example.com",
		Name:  "Old Name",
	})
	require.Nil(t, err)
	store.creates = 0
	store.findMisses = 1

	flow, _ := newTestFlow(t, &stubVerifier{claims: testClaims()}, store)

	// Act
	result, err := flow.Authenticate(context.Background(), "raw-assertion")

	// Assert - recovered by retrying as an update
	require.Nil(t, err)
	require.Equal(t, 1, store.creates)
	require.Equal(t, 1, store.updates)
	require.Equal(t, "Cadet Mess", result.User.Name)
}

func TestFlowAuthenticateConcurrentFirstLogins(t *testing.T) {
	// Arrange
	store := newMemStore()
	flow, _ := newTestFlow(t, &stubVerifier{claims: testClaims()}, store)

	// Act
	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = flow.Authenticate(context.Background(), "raw-assertion")
		}(i)
	}
	wg.Wait()

	// Assert - every attempt succeeds and exactly one record exists
	for _, err := range errs {
		require.Nil(t, err)
	}
	require.Len(t, store.users, 1)
}

func TestFlowAuthenticateStorageDown(t *testing.T) {
	// Arrange
	store := newMemStore()
	store.down = true
	flow, _ := newTestFlow(t, &stubVerifier{claims: testClaims()}, store)

	// Act
	_, err := flow.Authenticate(context.Background(), "raw-assertion")

	// Assert
	require.ErrorIs(t, err, ErrUnavailable)
	require.NotErrorIs(t, err, ErrInvalidAssertion)
}

func TestFlowVerifyRequest(t *testing.T) {
	// Arrange
	store := newMemStore()
	flow, codec := newTestFlow(t, &stubVerifier{claims: testClaims()}, store)

	token, err := codec.Issue("fake-google-sub", "mess@example.com", "Cadet Mess")
	require.Nil(t, err)

	// Act
	s, err := flow.VerifyRequest(token)

	// Assert - token checks alone, no storage round trip
	require.Nil(t, err)
	require.Equal(t, "fake-google-sub", s.UserID)
	require.Zero(t, store.calls())

	// Act
	_, err = flow.VerifyRequest("garbage")

	// Assert
	require.ErrorIs(t, err, ErrTokenInvalid)
	require.Zero(t, store.calls())
}
