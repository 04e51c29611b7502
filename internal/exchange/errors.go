package exchange

import (
	"errors"
	"fmt"
)

// ErrDecode matches every *DecodeError via errors.Is.
var ErrDecode = errors.New("exchange payload rejected")

type Reason string

const (
	ReasonMissingPayload Reason = "missing_payload"
	ReasonInvalidURI     Reason = "invalid_uri"
	ReasonInvalidBase64  Reason = "invalid_base64"
	ReasonInvalidJSON    Reason = "invalid_json"
	ReasonForeignPayload Reason = "foreign_payload"
	ReasonMissingID      Reason = "missing_id"
)

type DecodeError struct {
	Reason Reason
	Cause  error
}

func newDecodeError(reason Reason, cause error) *DecodeError {
	return &DecodeError{Reason: reason, Cause: cause}
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", ErrDecode, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrDecode, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}
