package errors

import "github.com/pkg/errors"

var (
	// mailbox errors
	ErrMailboxNotFound = errors.New("mailbox not found")
	ErrMailboxExists   = errors.New("mailbox already exists")
	ErrQuotaExceeded   = errors.New("daily send quota exceeded")

	// warmup email errors
	ErrWarmupEmailNotFound = errors.New("warmup email not found")
	ErrAlreadyReplied      = errors.New("warmup email already replied")

	// profile errors
	ErrProfileNotFound  = errors.New("warmup profile not found")
	ErrProfileProtected = errors.New("system profiles cannot be modified")

	// content errors
	ErrProviderNotConfigured = errors.New("ai provider not configured")
)
