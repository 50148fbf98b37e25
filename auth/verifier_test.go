package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/messleave"
	"google.golang.org/api/idtoken"
)

func TestNewGoogleVerifier(t *testing.T) {
	// Act
	_, err := NewGoogleVerifier("")

	// Assert
	require.ErrorIs(t, err, messleave.ErrBadConfig)

	// Act
	v, err := NewGoogleVerifier("client-id.apps.googleusercontent.com")

	// Assert
	require.Nil(t, err)
	require.NotNil(t, v)
}

func TestGoogleVerifierVerify(t *testing.T) {
	for _, tc := range []struct {
		name     string
		payload  *idtoken.Payload
		err      error
		expected Claims
		failure  error
	}{
		{
			name: "Success",
			payload: &idtoken.Payload{
				Subject: "fake-google-sub",
				Claims: map[string]any{
					"email":          "mess@example.com",
					"name":           "Cadet Mess",
					"picture":        "https://example.com/p.png",
					"email_verified": true,
				},
			},
			expected: Claims{
				Subject:       "fake-google-sub",
				Email:         "mess@example.com",
				Name:          "Cadet Mess",
				Picture:       "https://example.com/p.png",
				EmailVerified: true,
			},
		},
		{
			name: "Success-Stringy-Email-Verified",
			payload: &idtoken.Payload{
				Subject: "fake-google-sub",
				Claims: map[string]any{
					"email":          "mess@example.com",
					"email_verified": "true",
				},
			},
			expected: Claims{
				Subject:       "fake-google-sub",
				Email:         "mess@example.com",
				EmailVerified: true,
			},
		},
		{
			name:    "Expired",
			err:     errors.New("idtoken: token expired"),
			failure: ErrExpiredAssertion,
		},
		{
			name:    "Bad-Signature",
			err:     errors.New("idtoken: could not verify signature"),
			failure: ErrInvalidAssertion,
		},
		{
			name:    "Missing-Subject",
			payload: &idtoken.Payload{Claims: map[string]any{"email": "mess@example.com"}},
			failure: ErrInvalidAssertion,
		},
		{
			name:    "Missing-Email",
			payload: &idtoken.Payload{Subject: "fake-google-sub", Claims: map[string]any{}},
			failure: ErrInvalidAssertion,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			v, err := NewGoogleVerifier("client-id.apps.googleusercontent.com")
			require.Nil(t, err)

			var audience string
			v.validate = func(_ context.Context, _, aud string) (*idtoken.Payload, error) {
				audience = aud
				return tc.payload, tc.err
			}

			// Act
			claims, err := v.Verify(context.Background(), "raw-assertion")

			// Assert
			require.Equal(t, "client-id.apps.googleusercontent.com", audience)
			if tc.failure != nil {
				require.ErrorIs(t, err, tc.failure)
				return
			}

			require.Nil(t, err)
			require.Equal(t, tc.expected, claims)
		})
	}
}
