package resp

import (
	"fmt"
	"net/http"

	"github.com/xy-planning-network/messleave/logger"
)

// A Fn is a functional option that modifies a *Response under construction.
type Fn func(Responder, *Response) error

// Code sets the response's HTTP status code.
func Code(c int) Fn {
	return func(_ Responder, r *Response) error {
		if c < http.StatusContinue || c > http.StatusNetworkAuthenticationRequired {
			return fmt.Errorf("%w: %d is not a valid HTTP status code", ErrInvalid, c)
		}

		r.code = c
		return nil
	}
}

// Data sets the payload to encode as the response body.
func Data(d any) Fn {
	return func(_ Responder, r *Response) error {
		r.data = d
		return nil
	}
}

// Err attaches the error that put the request in its current state,
// so responding can log it. The error itself is never written to the client.
func Err(e error) Fn {
	return func(_ Responder, r *Response) error {
		r.err = e
		return nil
	}
}

// User attaches the user active for the request, for log context.
func User(u logger.LogUser) Fn {
	return func(_ Responder, r *Response) error {
		r.user = u
		return nil
	}
}
