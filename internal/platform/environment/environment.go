package environment

import (
	apperrors "github.com/bruhmagedon/advanced-jwt-server/internal/platform/errors"
)

// Variable is the environment variable that selects the runtime mode.
const Variable = "NODE_ENV"

// DevelopmentValue is the only value of Variable that enables development mode.
const DevelopmentValue = "development"

// Mode is the runtime mode derived from Variable.
type Mode int

const (
	NonDevelopment Mode = iota
	Development
)

func (m Mode) String() string {
	if m == Development {
		return "development"
	}
	return "non-development"
}

// IsDevelopment reports whether m is Development.
func (m Mode) IsDevelopment() bool {
	return m == Development
}

// LookupFunc has the shape of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Fallback consults primary first and asks secondary only for keys primary
// does not have.
func Fallback(primary, secondary LookupFunc) LookupFunc {
	return func(key string) (string, bool) {
		if value, ok := primary(key); ok {
			return value, true
		}
		return secondary(key)
	}
}

// Policy decides what an unset Variable means.
type Policy int

const (
	// DefaultNonDevelopment treats an unset variable as non-development.
	DefaultNonDevelopment Policy = iota
	// RequirePresent fails with a missing-configuration error when the variable is unset.
	RequirePresent
)

// Classify maps a raw variable value to a Mode. Only the exact string
// "development" selects Development.
func Classify(value string) Mode {
	if value == DevelopmentValue {
		return Development
	}
	return NonDevelopment
}

// Resolve reads Variable through lookup and classifies it under policy.
func Resolve(lookup LookupFunc, policy Policy) (Mode, error) {
	value, ok := lookup(Variable)
	if !ok {
		if policy == RequirePresent {
			return NonDevelopment, apperrors.MissingConfigurationError(Variable)
		}
		return NonDevelopment, nil
	}
	return Classify(value), nil
}

// Snapshot is Resolve with DefaultNonDevelopment. It never fails.
func Snapshot(lookup LookupFunc) Mode {
	mode, _ := Resolve(lookup, DefaultNonDevelopment)
	return mode
}

// Require is Resolve with RequirePresent.
func Require(lookup LookupFunc) (Mode, error) {
	return Resolve(lookup, RequirePresent)
}
