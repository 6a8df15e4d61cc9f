// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for poll cadence selection.
// Each cadence mode (fixed, backoff, quiet-hours) has its own strategy
// that encapsulates the logic for spacing notification polls.

package services

import (
	"fmt"
	"time"
)

// Cadence is the strategy interface for spacing successive polls. Each
// implementation maps the base interval and the count of consecutive
// failures to the delay before the next poll.
type Cadence interface {
	// Next returns how long to wait before the next poll, given the base
	// interval and the number of consecutive failed polls so far.
	Next(base time.Duration, consecutiveFailures int, now time.Time) time.Duration
}

// FixedCadence polls at the base interval regardless of failures. This is
// the portal dashboard's own behavior: a failed poll is logged and retried
// on the next tick with no suppression.
type FixedCadence struct{}

func (FixedCadence) Next(base time.Duration, _ int, _ time.Time) time.Duration {
	return base
}

// BackoffCadence doubles the interval per consecutive failure, capped at
// the configured ceiling. Intended for deployments where hammering a
// failing backend matters more than notification freshness.
type BackoffCadence struct {
	// Cap bounds the backed-off interval. Zero means 10x the base.
	Cap time.Duration
}

func (c BackoffCadence) Next(base time.Duration, consecutiveFailures int, _ time.Time) time.Duration {
	ceiling := c.Cap
	if ceiling <= 0 {
		ceiling = 10 * base
	}
	next := base
	for i := 0; i < consecutiveFailures; i++ {
		next *= 2
		if next >= ceiling {
			return ceiling
		}
	}
	return next
}

// QuietHoursCadence stretches the interval outside office hours, when the
// admin surfaces nobody is watching don't need minute-fresh data.
type QuietHoursCadence struct {
	// StartHour and EndHour bound the active window in local time.
	StartHour int
	EndHour   int
	// QuietMultiplier scales the base interval outside the window.
	// Zero means 5x.
	QuietMultiplier int
}

func (c QuietHoursCadence) Next(base time.Duration, _ int, now time.Time) time.Duration {
	mult := c.QuietMultiplier
	if mult <= 0 {
		mult = 5
	}
	hour := now.Hour()
	if hour >= c.StartHour && hour < c.EndHour {
		return base
	}
	return base * time.Duration(mult)
}

// cadenceStrategies maps mode names to their corresponding strategies.
// This registry enables O(1) lookup and easy extension for new modes.
var cadenceStrategies = map[string]Cadence{
	"fixed":       FixedCadence{},
	"backoff":     BackoffCadence{},
	"quiet-hours": QuietHoursCadence{StartHour: 7, EndHour: 19},
}

// GetCadence returns the poll cadence strategy for a mode name.
// Returns an error if the mode is not supported.
func GetCadence(mode string) (Cadence, error) {
	cadence, ok := cadenceStrategies[mode]
	if !ok {
		return nil, fmt.Errorf("unknown cadence mode: %s", mode)
	}
	return cadence, nil
}

// RegisterCadence allows registering custom cadence strategies for new
// modes without modifying this package.
func RegisterCadence(mode string, cadence Cadence) {
	cadenceStrategies[mode] = cadence
}
