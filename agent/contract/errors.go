package contract

import "errors"

var (
	ErrModelInvoke        = errors.New("model invoke failed")
	ErrModelNetwork       = errors.New("model network failure")
	ErrMissingCredentials = errors.New("model credentials missing")
	ErrValidation         = errors.New("validation failed")
	ErrToolNotFound       = errors.New("tool not found")
	ErrInvalidSession     = errors.New("session id is empty")
	ErrStateNotFound      = errors.New("conversation snapshot not found")
)
