// Package securefs provides a sandboxed blob directory for uploaded files.
package securefs

import (
	"github.com/smartfarm/smartfarm-go/internal/errors"
)

// Sentinel errors for the securefs package.
var (
	// ErrPathTraversal indicates an attempt to escape the base directory with "../".
	ErrPathTraversal = errors.NewStd("security error: path attempts to traverse outside base directory")

	// ErrInvalidPath indicates an absolute, empty or nested name where a base name is required.
	ErrInvalidPath = errors.NewStd("security error: invalid path specification")

	// ErrNotRegularFile indicates an attempt to serve something that is not a regular file.
	ErrNotRegularFile = errors.NewStd("security error: not a regular file")
)
