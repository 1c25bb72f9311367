package genie

import "errors"

// ErrMissingCredential means no provider credential was configured. Fatal: no
// session can ever be created without it, so callers must surface it instead
// of retrying.
var ErrMissingCredential = errors.New("model provider credential missing")

// ProviderError wraps a transport or provider failure raised during a turn.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return "provider turn failed: " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
