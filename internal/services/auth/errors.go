package auth

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUsernameTaken    = errors.New("user with that username already exists")
	ErrEmailTaken       = errors.New("user with that email already exists")
	ErrReservedUsername = errors.New("username is reserved")
	ErrForgedCode       = errors.New("confirmation code is invalid for this user")
	ErrMailDispatch     = errors.New("failed to send confirmation email")
)
