package authenticator

import (
	"errors"
	"fmt"

	"github.com/k9mail/accountauth/internal/bundle"
)

// Error codes recognised by the host account manager.
const (
	// CodeRemoteException signals a failure inside the authenticator
	// or its account store.
	CodeRemoteException = 1
	// CodeNetworkError is reserved for online verification failures.
	CodeNetworkError = 3
	// CodeCanceled signals a cancelled operation.
	CodeCanceled = 4
	// CodeInvalidResponse signals a malformed authenticator result.
	CodeInvalidResponse = 5
	// CodeUnsupportedOperation signals an operation this
	// authenticator intentionally does not implement.
	CodeUnsupportedOperation = 6
	// CodeBadArguments signals malformed caller input.
	CodeBadArguments = 7
	// CodeBadRequest signals a missing required request container.
	CodeBadRequest = 8
)

// Error is the typed failure produced by the backend. It carries the
// host error code and message and projects into an error bundle at the
// bridge boundary.
type Error struct {
	Code    int
	Message string
}

// NewError returns an Error with the given host code and message.
func NewError(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Errorf returns an Error with a formatted message.
func Errorf(code int, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return fmt.Sprintf("authenticator error %d: %s", e.Code, e.Message)
}

// ToBundle projects the error into its bundle form, the channel the
// host expects failures to travel in.
func (e *Error) ToBundle() *bundle.Bundle {
	b := bundle.New()
	b.PutInt(bundle.KeyErrorCode, e.Code)
	b.PutString(bundle.KeyErrorMessage, e.Message)
	return b
}

// AsError unwraps err to an *Error if one is in its chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// remoteError wraps an account store failure into the remote-exception
// error code.
func remoteError(op string, err error) *Error {
	return Errorf(CodeRemoteException, "account store %s: %v", op, err)
}
