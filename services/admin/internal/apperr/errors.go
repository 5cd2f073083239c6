// Package apperr classifies failures of the admin client's data layer.
//
// Three shapes matter at the boundary: a server validation error carrying a
// per-field message map (shown in the form), a CustomError raised while a
// request was being built (always toasted), and everything else.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

const CustomErrorName = "CustomError"

type Kind int

const (
	KindGeneric Kind = iota
	KindEntity
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindEntity:
		return "entity"
	case KindCustom:
		return "custom"
	default:
		return "generic"
	}
}

// FetchError is a failed request. Status is 0 when no response arrived.
type FetchError struct {
	Status int
	Data   any
	Cause  error
}

func (e *FetchError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("fetch failed: %v", e.Cause)
	}
	if msg, ok := e.Message(); ok {
		return fmt.Sprintf("status %d: %s", e.Status, msg)
	}
	return fmt.Sprintf("status %d", e.Status)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

func (e *FetchError) Name() string {
	return "FetchError"
}

// Message returns body.error when it is a plain string.
func (e *FetchError) Message() (string, bool) {
	body, ok := e.Data.(map[string]any)
	if !ok {
		return "", false
	}
	msg, ok := body["error"].(string)
	return msg, ok
}

// CustomError is raised while assembling a request from local data.
type CustomError struct {
	Message string
}

func NewCustomError(message string) *CustomError {
	return &CustomError{Message: message}
}

func (e *CustomError) Error() string {
	return e.Message
}

func (e *CustomError) Name() string {
	return CustomErrorName
}

// Name returns the discriminator of err, "Error" when it has none.
func Name(err error) string {
	var named interface{ Name() string }
	if errors.As(err, &named) {
		return named.Name()
	}
	return "Error"
}

func IsCustomError(err error) bool {
	var custom *CustomError
	return errors.As(err, &custom)
}

// EntityFields extracts the per-field messages of a 422 response whose
// body.error is an object.
func EntityFields(err error) (map[string]string, bool) {
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) || fetchErr.Status != http.StatusUnprocessableEntity {
		return nil, false
	}
	body, ok := fetchErr.Data.(map[string]any)
	if !ok {
		return nil, false
	}
	raw, ok := body["error"].(map[string]any)
	if !ok {
		return nil, false
	}

	fields := make(map[string]string, len(raw))
	for name, value := range raw {
		msg, ok := value.(string)
		if !ok {
			return nil, false
		}
		fields[name] = msg
	}
	return fields, true
}

func IsEntityError(err error) bool {
	_, ok := EntityFields(err)
	return ok
}

// PayloadErrorMessage reports whether a rejected payload is a server error
// with a top-level string message.
func PayloadErrorMessage(payload any) (string, bool) {
	fetchErr, ok := payload.(*FetchError)
	if !ok || fetchErr == nil || fetchErr.Status == 0 {
		return "", false
	}
	return fetchErr.Message()
}

func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindGeneric
	case IsCustomError(err):
		return KindCustom
	case IsEntityError(err):
		return KindEntity
	default:
		return KindGeneric
	}
}
