package resp

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/xy-planning-network/messleave/logger"
)

const responderFrames = 0

// Responder maintains reusable pieces for responding to HTTP requests.
//
// The messleave API speaks JSON only, so Responder exposes [Responder.Json]
// for well-formed payloads and [Responder.Err] for exceptional states.
// A single instance configured at boot suffices for the whole application.
type Responder struct {
	logger logger.Logger

	// Pool of *bytes.Buffer to prerender responses into
	pool *sync.Pool
}

// NewResponder constructs a *Responder using the ResponderOptFns passed in.
func NewResponder(opts ...ResponderOptFn) *Responder {
	d := &Responder{
		pool: &sync.Pool{New: func() any { return new(bytes.Buffer) }},
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.logger == nil {
		d.logger = logger.New()
	}

	if l, ok := d.logger.(logger.SkipLogger); ok {
		d.logger = l.AddSkip(responderFrames)
	}

	return d
}

// A ResponderOptFn is a functional option configuring a Responder when constructing a new one.
type ResponderOptFn func(*Responder)

// WithLogger sets the logger.Logger the Responder logs response errors with.
func WithLogger(l logger.Logger) ResponderOptFn {
	return func(d *Responder) { d.logger = l }
}

// Json responds with the payload set by Data in JSON format,
// setting appropriate headers.
//
// The default status code is 200.
// When an error was attached with Err, Json logs it before writing:
// at debug for client-fault statuses, at error for server-fault ones.
func (doer *Responder) Json(w http.ResponseWriter, r *http.Request, opts ...Fn) error {
	rr, err := doer.do(w, r, opts...)
	if err != nil {
		doer.Err(w, r, err)
		return err
	}

	if rr.code == 0 {
		rr.code = http.StatusOK
	}

	doer.logResponseErr(rr)

	b := doer.pool.Get().(*bytes.Buffer)
	b.Reset()
	defer doer.pool.Put(b)

	if err := json.NewEncoder(b).Encode(rr.data); err != nil {
		doer.Err(w, r, err)
		return err
	}

	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(rr.code)
	if _, err := b.WriteTo(w); err != nil {
		return err
	}

	return nil
}

// Err logs the error putting the request in a failure state
// and writes a sanitized JSON body in its place.
//
// Use in exceptional circumstances when no well-formed Json can occur.
// The client only ever sees the status text for the code,
// never signing or storage detail.
func (doer *Responder) Err(w http.ResponseWriter, r *http.Request, err error, opts ...Fn) {
	rr, nested := doer.do(w, r, append(opts, Err(err))...)
	if nested != nil {
		doer.logger.Error(nested.Error(), &logger.LogContext{Error: nested, Request: r})
	}

	if rr.code == 0 {
		rr.code = http.StatusInternalServerError
	}

	doer.logResponseErr(rr)

	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(rr.code)
	json.NewEncoder(w).Encode(map[string]string{"error": http.StatusText(rr.code)})
}

// do applies all options to the passed in http.ResponseWriter and *http.Request.
func (doer *Responder) do(w http.ResponseWriter, r *http.Request, opts ...Fn) (*Response, error) {
	rr := &Response{r: r, w: w}

	if r != nil {
		select {
		case <-r.Context().Done():
			return rr, ErrDone
		default:
		}
	}

	for _, opt := range opts {
		if err := opt(*doer, rr); err != nil {
			return rr, err
		}
	}

	return rr, nil
}

// logResponseErr writes the attached response error to the logger,
// keyed off who is at fault for the status code.
func (doer *Responder) logResponseErr(rr *Response) {
	if rr.err == nil {
		return
	}

	ctx := &logger.LogContext{Error: rr.err, Request: rr.r, User: rr.user}
	if rr.code >= http.StatusInternalServerError {
		doer.logger.Error(rr.err.Error(), ctx)
		return
	}

	doer.logger.Debug(rr.err.Error(), ctx)
}
