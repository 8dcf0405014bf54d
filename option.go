package jackpot

import (
	"time"

	"github.com/sirupsen/logrus"
)

type Option func(config *Config)

// WithLimit caps how many connections the pool owns at once. Non-positive
// values fall back to the default of 20.
func WithLimit(limit int) Option {
	return func(config *Config) {
		config.Limit = limit
	}
}

// WithRetries sets how many extra attempts Pull makes beyond the first.
func WithRetries(retries int) Option {
	return func(config *Config) {
		config.Retries = retries
	}
}

// WithRetryDelay bounds the backoff window between Pull attempts.
func WithRetryDelay(min, max time.Duration) Option {
	return func(config *Config) {
		config.RetryMinDelay = min
		config.RetryMaxDelay = max
	}
}

// WithRetryFactor sets the backoff multiplier between Pull attempts.
func WithRetryFactor(factor float64) Option {
	return func(config *Config) {
		config.RetryFactor = factor
	}
}

// WithRetryJitter sets the randomization factor applied to each delay.
func WithRetryJitter(jitter float64) Option {
	return func(config *Config) {
		config.RetryJitter = jitter
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(config *Config) {
		config.Logger = logger
	}
}

func WithMonitor(monitor *Monitor) Option {
	return func(config *Config) {
		config.Monitor = monitor
	}
}

// WithRand replaces the scorer's random source, mainly for tests.
func WithRand(rnd func(n int) int) Option {
	return func(config *Config) {
		config.Rand = rnd
	}
}
