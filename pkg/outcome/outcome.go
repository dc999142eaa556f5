// Package outcome records the result of best-effort operations whose public
// contract swallows failure. Callers discard the value; tests and metrics
// inspect it to assert on what was suppressed.
package outcome

// Status classifies how a best-effort operation ended.
type Status int

const (
	// OK means the operation completed and had its effect.
	OK Status = iota
	// Skipped means the operation was not attempted because a precondition
	// (authorization, enablement) ruled it out. Not a fault.
	Skipped
	// Suppressed means the operation was attempted and failed, and the
	// failure was absorbed per policy.
	Suppressed
)

// Outcome is the value form of a swallowed error.
type Outcome struct {
	Status Status
	Reason string
	Err    error
}

func Ok() Outcome {
	return Outcome{Status: OK}
}

func Skip(reason string) Outcome {
	return Outcome{Status: Skipped, Reason: reason}
}

func Suppress(reason string, err error) Outcome {
	return Outcome{Status: Suppressed, Reason: reason, Err: err}
}

// Applied reports whether the operation took effect.
func (o Outcome) Applied() bool {
	return o.Status == OK
}
