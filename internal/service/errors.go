package service

import "errors"

var (
	ErrNotAuthor          = errors.New("only the author may edit this post")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrSessionExpired     = errors.New("session expired or replaced")
)
