package extraction

import (
	"errors"
	"time"

	"vidresolve/internal/services"
)

// Outcome classifies one strategy attempt.
type Outcome string

const (
	OutcomeOK          Outcome = "ok"
	OutcomeUnavailable Outcome = "unavailable"
	OutcomeInvalid     Outcome = "invalid"
	OutcomeTransport   Outcome = "transport"
	OutcomeError       Outcome = "error"
)

// Attempt records one strategy run.
type Attempt struct {
	VideoID  string        `json:"videoId"`
	Strategy string        `json:"strategy"`
	Outcome  Outcome       `json:"outcome"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration"`
}

// ErrorText returns the attempt's error text, or "".
func (a Attempt) ErrorText() string {
	if a.Err == nil {
		return ""
	}
	return a.Err.Error()
}

// Observer receives every attempt. Implementations must not block.
type Observer interface {
	ObserveAttempt(Attempt)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Attempt)

func (f ObserverFunc) ObserveAttempt(a Attempt) { f(a) }

// Observers fans attempts out to each non-nil observer.
type Observers []Observer

func (o Observers) ObserveAttempt(a Attempt) {
	for _, obs := range o {
		if obs != nil {
			obs.ObserveAttempt(a)
		}
	}
}

func classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, services.ErrStrategyUnavailable):
		return OutcomeUnavailable
	case errors.Is(err, services.ErrStrategyInvalidResult):
		return OutcomeInvalid
	case errors.Is(err, services.ErrStrategyTransport):
		return OutcomeTransport
	default:
		return OutcomeError
	}
}
