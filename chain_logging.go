package chain

import "time"

// LookupEvent describes one resolution attempt for logging.
type LookupEvent struct {
	Key      any
	Policy   Policy
	LayerHit int // index of the first containing layer, -1 when none
	Duration time.Duration
	Err      error
}

// LookupLogger records chain lookups.
type LookupLogger interface {
	LogLookup(LookupEvent)
}

// LookupLoggerFunc adapts a function to LookupLogger.
type LookupLoggerFunc func(LookupEvent)

// LogLookup implements LookupLogger.
func (f LookupLoggerFunc) LogLookup(event LookupEvent) {
	if f != nil {
		f(event)
	}
}

type noopLookupLogger struct{}

func (noopLookupLogger) LogLookup(LookupEvent) {}

// ProgramCache stores compiled selection programs keyed by expression
// strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}
