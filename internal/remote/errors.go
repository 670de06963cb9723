package remote

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrTransport        = errors.New("remote transport failure")
	ErrApplication      = errors.New("remote application failure")
	ErrUnauthorized     = errors.New("remote authorization failure")
	ErrThrottled        = errors.New("remote request throttled")
	ErrMalformedPayload = errors.New("remote payload is malformed")
)

// GenericTransportMessage is shown when no application message is available.
const GenericTransportMessage = "Unable to reach the store service. Please try again."

// TransportError means no usable payload came back: the request could not be
// sent, the response could not be read, or its body was not the expected JSON.
type TransportError struct {
	Method   string
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

// ApplicationError carries a payload whose status field was not "OK".
type ApplicationError struct {
	Method     string
	Endpoint   string
	HTTPStatus int
	Message    string
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Method, e.Endpoint, e.Message)
}

func (e *ApplicationError) Is(target error) bool {
	switch target {
	case ErrApplication:
		return true
	case ErrUnauthorized:
		return e.Unauthorized()
	}
	return false
}

func (e *ApplicationError) Unauthorized() bool {
	return e.HTTPStatus == http.StatusUnauthorized || e.HTTPStatus == http.StatusForbidden
}

// UserMessage returns the remote message verbatim when there is one and a
// generic transport message otherwise.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var appErr *ApplicationError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	if errors.Is(err, ErrTransport) {
		return GenericTransportMessage
	}
	return err.Error()
}
