package fs

import (
	"errors"
	"syscall"
)

// isTransient decides whether a failed copy or rename is worth another attempt.
// Anything not listed here fails the operation immediately.

func isTransient(err error) bool {
	return errors.Is(err, errSourceChanged) ||
		errors.Is(err, syscall.EAGAIN) ||
		errors.Is(err, syscall.EBUSY) ||
		errors.Is(err, syscall.EINTR) ||
		errors.Is(err, syscall.ETIMEDOUT)
}
