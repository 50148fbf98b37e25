package middleware

import (
	"net/http"
	"strings"

	sentryhttp "github.com/getsentry/sentry-go/http"
)

// ReportPanic wraps an http.Handler in sentryhttp.Handle in order to recover
// and report panics. In a development environment it is a passthrough.
func ReportPanic(env string) Adapter {
	if strings.EqualFold(env, "development") || strings.EqualFold(env, "testing") {
		return NoopAdapter
	}

	sh := sentryhttp.New(sentryhttp.Options{
		Repanic:         false,
		WaitForDelivery: true,
	})
	return func(h http.Handler) http.Handler {
		return sh.Handle(h)
	}
}
