package profile

import "errors"

var (
	ErrBadRequest     = errors.New("bad request")
	ErrNotFound       = errors.New("not found")
	ErrAlreadyApplied = errors.New("membership application already pending")
	ErrAlreadyActive  = errors.New("membership already active")
	ErrNotPending     = errors.New("no pending membership application")
)
