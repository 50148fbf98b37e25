package ranger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/messleave"
	"github.com/xy-planning-network/messleave/auth"
	"github.com/xy-planning-network/messleave/postgres"
	"github.com/xy-planning-network/messleave/ranger"
)

type stubStore struct{}

func (stubStore) FindByID(context.Context, string) (messleave.User, error) {
	return messleave.User{}, messleave.ErrNotFound
}
func (stubStore) FindByEmail(context.Context, string) (messleave.User, error) {
	return messleave.User{}, messleave.ErrNotFound
}
func (stubStore) Create(_ context.Context, u messleave.User) (messleave.User, error) {
	return u, nil
}
func (stubStore) Update(context.Context, string, map[string]any) (messleave.User, error) {
	return messleave.User{}, messleave.ErrNotFound
}
func (stubStore) TouchLastLogin(context.Context, string, time.Time) error { return nil }

func TestNew(t *testing.T) {
	t.Run("Missing-Google-Client-ID", func(t *testing.T) {
		// Arrange
		t.Setenv(ranger.GoogleClientIDEnvVar, "")
		t.Setenv(ranger.SessionKeyEnvVar, "test-key")

		// Act
		_, err := ranger.New(
			ranger.WithEnv(messleave.Testing.String()),
			ranger.WithDB(postgres.NewDB(nil)),
			ranger.WithUserStore(stubStore{}),
		)

		// Assert
		require.ErrorIs(t, err, ranger.ErrBadConfig)
	})

	t.Run("Missing-Session-Key", func(t *testing.T) {
		// Arrange
		t.Setenv(ranger.GoogleClientIDEnvVar, "client-id.apps.googleusercontent.com")
		t.Setenv(ranger.SessionKeyEnvVar, "")

		// Act
		_, err := ranger.New(
			ranger.WithEnv(messleave.Testing.String()),
			ranger.WithDB(postgres.NewDB(nil)),
			ranger.WithUserStore(stubStore{}),
		)

		// Assert
		require.ErrorIs(t, err, ranger.ErrBadConfig)
	})

	t.Run("Success", func(t *testing.T) {
		// Arrange
		t.Setenv(ranger.GoogleClientIDEnvVar, "client-id.apps.googleusercontent.com")
		t.Setenv(ranger.SessionKeyEnvVar, "test-key")

		// Act
		rng, err := ranger.New(
			ranger.WithEnv(messleave.Testing.String()),
			ranger.WithDB(postgres.NewDB(nil)),
			ranger.WithUserStore(stubStore{}),
		)

		// Assert - the whole API surface is assembled
		require.Nil(t, err)
		require.NotNil(t, rng.Router)
		require.NotNil(t, rng.Responder)
		require.NotNil(t, rng.EmitFlow())
		require.NotNil(t, rng.EmitLogger())
		require.Equal(t, messleave.Testing, rng.Env())
	})

	t.Run("Flow-Option-Supersedes", func(t *testing.T) {
		// Arrange
		t.Setenv(ranger.GoogleClientIDEnvVar, "")
		t.Setenv(ranger.SessionKeyEnvVar, "")

		codec, err := auth.NewCodec("test-key", 0)
		require.Nil(t, err)

		verifier, err := auth.NewGoogleVerifier("client-id.apps.googleusercontent.com")
		require.Nil(t, err)

		flow, err := auth.NewFlow(verifier, stubStore{}, codec, nil)
		require.Nil(t, err)

		// Act - no auth env vars needed when the flow is supplied
		rng, err := ranger.New(
			ranger.WithEnv(messleave.Testing.String()),
			ranger.WithDB(postgres.NewDB(nil)),
			ranger.WithUserStore(stubStore{}),
			ranger.WithFlow(flow),
		)

		// Assert
		require.Nil(t, err)
		require.Equal(t, flow, rng.EmitFlow())
	})
}
