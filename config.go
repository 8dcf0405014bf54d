package jackpot

import (
	"io"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	defaultLimit       = 20
	defaultRetries     = 5
	defaultRetryMin    = time.Second
	defaultRetryMax    = time.Minute
	defaultRetryFactor = 3.0
	defaultRetryJitter = 0.5
)

type Config struct {
	Limit         int           // max connections owned at once (active + pending)
	Retries       int           // extra Pull attempts beyond the first
	RetryMinDelay time.Duration // first backoff delay
	RetryMaxDelay time.Duration // backoff delay ceiling
	RetryFactor   float64       // backoff multiplier
	RetryJitter   float64       // randomization factor applied to each delay, 0..1

	Logger  logrus.FieldLogger
	Monitor *Monitor

	// Rand supplies the scorer's random fallback; returns [0, n).
	Rand func(n int) int
}

func DefaultConfig() *Config {
	return &Config{
		Limit:         defaultLimit,
		Retries:       defaultRetries,
		RetryMinDelay: defaultRetryMin,
		RetryMaxDelay: defaultRetryMax,
		RetryFactor:   defaultRetryFactor,
		RetryJitter:   defaultRetryJitter,
	}
}

func LoadConfig(options ...Option) *Config {
	config := DefaultConfig()
	for _, option := range options {
		option(config)
	}
	return config
}

func (c *Config) Validate() error {
	if c.RetryMinDelay <= 0 || c.RetryMaxDelay < c.RetryMinDelay {
		return ErrBackoffSetting
	}
	if c.RetryFactor < 1 || c.RetryJitter < 0 || c.RetryJitter > 1 {
		return ErrBackoffSetting
	}
	return nil
}

// normalize falls back to defaults for fields where any value is accepted
// but only positive ones make sense.
func (c *Config) normalize() {
	if c.Limit <= 0 {
		c.Limit = defaultLimit
	}
	if c.Retries <= 0 {
		c.Retries = defaultRetries
	}
	if c.Rand == nil {
		c.Rand = rand.Intn
	}
	if c.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		c.Logger = l
	}
}
