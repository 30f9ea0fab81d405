package llm

import (
	"math/rand"
	"time"
)

// RetryConfig controls retries of transient failures.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts       int
	BackoffBase       time.Duration
	BackoffMultiplier float64
	MaxBackoff        time.Duration
}

// DefaultRetryConfig returns the retry defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		BackoffBase:       2 * time.Second,
		BackoffMultiplier: 2.0,
		MaxBackoff:        30 * time.Second,
	}
}

func (r RetryConfig) withDefaults() RetryConfig {
	d := DefaultRetryConfig()
	if r.MaxAttempts <= 0 {
		r.MaxAttempts = d.MaxAttempts
	}
	if r.BackoffBase <= 0 {
		r.BackoffBase = d.BackoffBase
	}
	if r.BackoffMultiplier < 1 {
		r.BackoffMultiplier = d.BackoffMultiplier
	}
	if r.MaxBackoff <= 0 {
		r.MaxBackoff = d.MaxBackoff
	}
	return r
}

// backoff returns the wait after the given failed attempt, with +/-25% jitter.
func (r RetryConfig) backoff(attempt int) time.Duration {
	multiplier := 1.0
	for i := 1; i < attempt; i++ {
		multiplier *= r.BackoffMultiplier
	}

	wait := time.Duration(float64(r.BackoffBase) * multiplier)
	if wait > r.MaxBackoff {
		wait = r.MaxBackoff
	}

	jitter := float64(wait) * 0.25 * (rand.Float64()*2 - 1)
	return wait + time.Duration(jitter)
}
