package authapi

import "github.com/xy-planning-network/messleave"

// A GoogleAuthRequest carries the raw Google ID token asserted by the client.
type GoogleAuthRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// An AuthResponse is the successful terminal payload of a login.
type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        UserResponse `json:"user"`
}

// A UserResponse is the public shape of a user record.
type UserResponse struct {
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Picture       string `json:"picture,omitempty"`
	EmailVerified bool   `json:"email_verified"`
}

// A MessageResponse wraps a human-readable acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

func newUserResponse(u messleave.User) UserResponse {
	return UserResponse{
		UserID:        u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Picture:       u.Picture,
		EmailVerified: u.EmailVerified,
	}
}
