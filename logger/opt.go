package logger

import "log"

// A LoggerOptFn is a functional option configuring a MessleaveLogger when constructing a new one.
type LoggerOptFn func(*MessleaveLogger)

// WithEnv sets the environment MessleaveLogger is operating in.
func WithEnv(env string) func(*MessleaveLogger) {
	return func(l *MessleaveLogger) {
		l.env = env
	}
}

// WithLevel sets the log level MessleaveLogger uses.
func WithLevel(level LogLevel) func(*MessleaveLogger) {
	return func(l *MessleaveLogger) {
		l.ll = level
	}
}

// WithLogger sets the log.Logger MessleaveLogger uses.
func WithLogger(log *log.Logger) func(*MessleaveLogger) {
	return func(l *MessleaveLogger) {
		l.l = log
	}
}

// WithSkip sets the number of frames in the call stack
// to skip in order to log the desired file and line number
// of the calling code.
func WithSkip(skip int) func(*MessleaveLogger) {
	return func(l *MessleaveLogger) {
		l.skip = skip
	}
}
