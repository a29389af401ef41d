package models

import "fmt"

// Environment selects which backend deployment the store reads from.
type Environment int

const (
	// Stage is the staging deployment.
	Stage Environment = iota
	// Live is the production deployment.
	Live
)

// EnvironmentFromLive maps the isLiveAPI flag to an Environment.
func EnvironmentFromLive(live bool) Environment {
	if live {
		return Live
	}
	return Stage
}

// String returns the environment name.
func (e Environment) String() string {
	switch e {
	case Live:
		return "live"
	case Stage:
		return "stage"
	default:
		return "unknown"
	}
}

// IsLive reports whether e is the live deployment.
func (e Environment) IsLive() bool {
	return e == Live
}

// HeaderValue is the value sent in the Use-Live-Api-For-Import-Frozen header.
func (e Environment) HeaderValue() string {
	if e == Live {
		return "1"
	}
	return "0"
}

// ParseEnvironment accepts "live" or "stage".
func ParseEnvironment(s string) (Environment, bool) {
	switch s {
	case "live":
		return Live, true
	case "stage":
		return Stage, true
	}
	return Stage, false
}

// MarshalText encodes the environment by name.
func (e Environment) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText accepts "live" or "stage".
func (e *Environment) UnmarshalText(b []byte) error {
	env, ok := ParseEnvironment(string(b))
	if !ok {
		return fmt.Errorf("unknown environment %q", string(b))
	}
	*e = env
	return nil
}
