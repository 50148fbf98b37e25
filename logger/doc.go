/*
Package logger provides logging functionality to the messleave app by defining the required behavior in [Logger]
and providing an implementation of it with [MessleaveLogger].

# Overview

The Logger interface outputs messages at certain levels of importance.
LogLevel is the type to use to represent those levels.
An implementation of Logger may be initialized at a certain [LogLevel]
and only emit messages at or above that level of importance.
For example, [MessleaveLogger] accepts a [LogLevel],
and if initialized with [LogLevelWarn],
only [*MessleaveLogger.Warn], [*MessleaveLogger.Error], and [*MessleaveLogger.Fatal] produce messages.

Log messages emitted by [MessleaveLogger] are composed of a few parts:
  - timestamp
  - log level
  - call site
  - message
  - log context

Here's an example:

	2024/02/08 15:55:21 [INFO] authapi/handler.go:43 'authenticated' log_context: "{"user":{"id": "1085..", "email": "mess@example.com"}}"

The log context is a JSON-encoded [*LogContext], carrying additional data
inessential to the message proper.

# SentryLogger

When SENTRY_DSN is set, [New] promotes the logger to a [SentryLogger],
which additionally ships warning and worse logs with their [*LogContext.Error]
to Sentry.
*/
package logger
