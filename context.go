package ledger

import (
	"context"

	"github.com/tendermint/tendermint/libs/log"
)

type contextKey int // local to the ledger module

const (
	contextKeyLogger contextKey = iota
	contextKeyEvents
)

// DefaultLogger is used for all context that have not
// set anything themselves
var DefaultLogger = log.NewNopLogger()

// WithLogger sets the logger for this context
func WithLogger(ctx context.Context, logger log.Logger) context.Context {
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// WithLogInfo accepts keyvalue pairs, and returns another
// context like this, after passing all the keyvals to the
// Logger
func WithLogInfo(ctx context.Context, keyvals ...interface{}) context.Context {
	logger := GetLogger(ctx).With(keyvals...)
	return WithLogger(ctx, logger)
}

// GetLogger returns the currently set logger, or
// DefaultLogger if none was set
func GetLogger(ctx context.Context) log.Logger {
	val, ok := ctx.Value(contextKeyLogger).(log.Logger)
	if !ok {
		return DefaultLogger
	}
	return val
}

// WithEventSink returns a context that routes all emitted events to the
// given sink.
func WithEventSink(ctx context.Context, sink EventSink) context.Context {
	return context.WithValue(ctx, contextKeyEvents, sink)
}

// GetEventSink returns the event sink set on the context. If none was set,
// a sink that drops all events is returned.
func GetEventSink(ctx context.Context) EventSink {
	val, ok := ctx.Value(contextKeyEvents).(EventSink)
	if !ok {
		return discardSink{}
	}
	return val
}

// Emit publishes events using the sink set on the context.
func Emit(ctx context.Context, events ...Event) {
	sink := GetEventSink(ctx)
	for _, e := range events {
		sink.Emit(e)
	}
}
