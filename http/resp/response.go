package resp

import (
	"net/http"

	"github.com/xy-planning-network/messleave/logger"
)

// A Response is the accumulated state for responding to a single HTTP request,
// built up by applying [Fn] functional options.
type Response struct {
	r *http.Request
	w http.ResponseWriter

	code int
	data any
	err  error
	user logger.LogUser
}
