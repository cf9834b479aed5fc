package rng

import "go.uber.org/zap"

// LoggedSource wraps a Source and logs every draw at debug level. Used when
// diagnosing why a choreography sequence diverged between runs.
type LoggedSource struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedSource creates a LoggedSource that draws from src and logs each
// value to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedSource(src Source, logger *zap.Logger) *LoggedSource {
	return &LoggedSource{src: src, logger: logger}
}

// Intn draws from the underlying source and logs the result.
func (l *LoggedSource) Intn(n int) int {
	v := l.src.Intn(n)
	l.logger.Debug("rng draw",
		zap.String("kind", "intn"),
		zap.Int("n", n),
		zap.Int("value", v),
	)
	return v
}

// Float64 draws from the underlying source and logs the result.
func (l *LoggedSource) Float64() float64 {
	v := l.src.Float64()
	l.logger.Debug("rng draw",
		zap.String("kind", "float64"),
		zap.Float64("value", v),
	)
	return v
}
