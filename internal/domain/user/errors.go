package user

import "errors"

var (
	ErrInvalidToken            = errors.New("invalid or missing access token")
	ErrCompanyIDRequired       = errors.New("company ID is required")
	ErrInvalidRole             = errors.New("invalid role")
	ErrEmployeeRequired        = errors.New("caller is not linked to an employee")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)
