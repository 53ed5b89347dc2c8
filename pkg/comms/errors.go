package comms

import "errors"

// Domain-specific errors for adapter operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotConnected is returned when Publish, Send or Disconnect is
	// invoked without a live broker session.
	ErrNotConnected = errors.New("comms: not connected")

	// ErrConnectionFailed is returned when a connection attempt fails.
	// The adapter does not retry; the caller decides retry policy.
	ErrConnectionFailed = errors.New("comms: connection failed")

	// ErrSubscribeFailed is returned when the subscribe request issued
	// during Connect fails.
	ErrSubscribeFailed = errors.New("comms: subscribe failed")

	// ErrPublishFailed is returned when a publish operation fails.
	ErrPublishFailed = errors.New("comms: publish failed")

	// ErrInvalidCertificate is returned at construction time when the
	// configured CA certificate material cannot be read or parsed.
	ErrInvalidCertificate = errors.New("comms: invalid CA certificate")
)
