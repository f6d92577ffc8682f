package errors

import (
	"fmt"
	"math"

	"github.com/cockroachdb/errors"
)

// NumericalInstabilityError reports a NaN or Inf produced while scoring.
type NumericalInstabilityError struct {
	Operation string
	Value     float64
	Label     string
}

func (e *NumericalInstabilityError) Error() string {
	return fmt.Sprintf("textnb: numerical instability detected in %s for label %q: %g", e.Operation, e.Label, e.Value)
}

// CheckScalar checks a single scalar value for numerical instability.
func CheckScalar(operation, label string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return errors.WithStack(&NumericalInstabilityError{Operation: operation, Value: value, Label: label})
	}
	return nil
}

// SafeDivide performs division with protection against division by zero.
// Returns 0 if the denominator is zero or the quotient is not a number.
func SafeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	q := numerator / denominator
	if math.IsNaN(q) {
		return 0
	}
	return q
}

// ClipValue clips a value to the range [min, max].
func ClipValue(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
