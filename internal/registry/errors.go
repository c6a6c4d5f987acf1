package registry

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is matching.
var (
	ErrConfiguration   = errors.New("configuration error")
	ErrUnknownResource = errors.New("unknown resource")
	ErrUnknownKey      = errors.New("unknown key")
)

// ConfigurationError reports that the project root or a resource could not
// be resolved while building the registry.
type ConfigurationError struct {
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrConfiguration) match any ConfigurationError.
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// UnknownResourceError reports a PathFor lookup of an unregistered name.
type UnknownResourceError struct {
	Name string
}

func (e *UnknownResourceError) Error() string {
	return fmt.Sprintf("unknown resource %q: no path registered under this name", e.Name)
}

func (e *UnknownResourceError) Is(target error) bool { return target == ErrUnknownResource }

// UnknownKeyError reports an ExpectedValue lookup of an absent key.
type UnknownKeyError struct {
	Key string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown key %q: no expected value registered under this key", e.Key)
}

func (e *UnknownKeyError) Is(target error) bool { return target == ErrUnknownKey }
