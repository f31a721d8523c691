package employee

import "errors"

var (
	ErrNotFound     = errors.New("employee not found")
	ErrNotInCompany = errors.New("employee not found in this company")
	ErrInactive     = errors.New("employee is inactive")
	ErrInvalidPin   = errors.New("invalid PIN")
)
