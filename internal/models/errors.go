package models

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrNotFound  = status.Error(codes.NotFound, "not found")
	ErrForbidden = status.Error(codes.PermissionDenied, "forbidden")
)

// Validationf marks an error as user-correctable input rejection.
func Validationf(format string, args ...any) error {
	return status.Errorf(codes.InvalidArgument, format, args...)
}

// Upstreamf marks a failure of an external collaborator (media host).
func Upstreamf(format string, args ...any) error {
	return status.Errorf(codes.Unavailable, format, args...)
}

// Forbiddenf marks an authorization rejection with a specific message.
func Forbiddenf(format string, args ...any) error {
	return status.Errorf(codes.PermissionDenied, format, args...)
}
