package authapi

import (
	"errors"
	"net/http"

	"github.com/xy-planning-network/messleave"
	"github.com/xy-planning-network/messleave/auth"
	"github.com/xy-planning-network/messleave/http/req"
	"github.com/xy-planning-network/messleave/http/resp"
	"github.com/xy-planning-network/messleave/http/router"
)

// Handler serves the authentication endpoints.
//
// It shares one initialized *resp.Responder across all responses.
type Handler struct {
	*resp.Responder
	parser *req.Parser
	flow   *auth.Flow
	users  auth.UserStore
}

// NewHandler constructs a Handler from its collaborators.
func NewHandler(d *resp.Responder, flow *auth.Flow, users auth.UserStore) *Handler {
	return &Handler{Responder: d, parser: req.NewParser(), flow: flow, users: users}
}

// UnauthedRoutes are the endpoints reachable without a bearer token.
func (h *Handler) UnauthedRoutes() []router.Route {
	return []router.Route{
		{Path: "/auth/google", Method: http.MethodPost, Handler: h.GoogleLogin},
		{Path: "/auth/logout", Method: http.MethodPost, Handler: h.Logout},
		{Path: "/health", Method: http.MethodGet, Handler: h.Health},
	}
}

// AuthedRoutes are the endpoints requiring an authenticated session.
func (h *Handler) AuthedRoutes() []router.Route {
	return []router.Route{
		{Path: "/auth/user/me", Method: http.MethodGet, Handler: h.Me},
	}
}

// GoogleLogin exchanges a Google ID token for a messleave session token.
//
// POST /api/auth/google
func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var body GoogleAuthRequest
	if err := h.parser.ParseBody(r.Body, &body); err != nil {
		h.Err(w, r, err, resp.Code(http.StatusBadRequest))
		return
	}

	result, err := h.flow.Authenticate(r.Context(), body.IDToken)
	if err != nil {
		h.Err(w, r, err, resp.Code(authStatus(err)))
		return
	}

	payload := AuthResponse{
		AccessToken: result.Token,
		TokenType:   "bearer",
		User:        newUserResponse(result.User),
	}
	if err := h.Json(w, r, resp.Data(payload), resp.User(result.User)); err != nil {
		h.Err(w, r, err)
	}
}

// Me returns the current record for the authenticated session's subject.
//
// The session itself proves only signature and expiry; the record is read
// fresh so the client sees identity fields as they are now, not as they
// were when the token was minted.
//
// GET /api/auth/user/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	s, ok := r.Context().Value(messleave.CurrentUserKey).(auth.Session)
	if !ok {
		h.Err(w, r, auth.ErrTokenInvalid, resp.Code(http.StatusUnauthorized))
		return
	}

	user, err := h.users.FindByID(r.Context(), s.UserID)
	if errors.Is(err, messleave.ErrNotFound) {
		h.Err(w, r, err, resp.Code(http.StatusNotFound))
		return
	}

	if err != nil {
		h.Err(w, r, err, resp.Code(http.StatusServiceUnavailable))
		return
	}

	if err := h.Json(w, r, resp.Data(newUserResponse(user)), resp.User(user)); err != nil {
		h.Err(w, r, err)
	}
}

// Logout acknowledges a logout.
//
// Session tokens are stateless bearer credentials, so there is nothing to
// invalidate server-side; the client discards its copy.
//
// POST /api/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	payload := MessageResponse{Message: "Logged out successfully"}
	if err := h.Json(w, r, resp.Data(payload)); err != nil {
		h.Err(w, r, err)
	}
}

// Health reports process liveness.
//
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Json(w, r, resp.Data(map[string]string{"status": "ok"})); err != nil {
		h.Err(w, r, err)
	}
}

// Root confirms the API is up for clients probing the bare hostname.
//
// GET /
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	payload := MessageResponse{Message: "Mess Leave Management System API is running"}
	if err := h.Json(w, r, resp.Data(payload)); err != nil {
		h.Err(w, r, err)
	}
}

// authStatus maps an authentication failure to the HTTP status owed the client:
// the caller's fault reads as unauthorized, ours as service unavailable.
func authStatus(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidAssertion),
		errors.Is(err, auth.ErrExpiredAssertion),
		errors.Is(err, auth.ErrTokenInvalid),
		errors.Is(err, auth.ErrTokenExpired):
		return http.StatusUnauthorized

	case errors.Is(err, auth.ErrUnavailable):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}
