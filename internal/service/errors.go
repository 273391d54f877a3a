package service

import "errors"

var (
	ErrNotFound         = errors.New("error not found")
	ErrDuplicate        = errors.New("error ticker already added")
	ErrStoreUnavailable = errors.New("error store unavailable")
	ErrInvalidArgument  = errors.New("error invalid argument")
	ErrClosed           = errors.New("error portfolio closed")
)
