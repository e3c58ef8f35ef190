package errs

import (
	"errors"
	"fmt"
)

// Common sentinel errors.
var (
	ErrNotFound               = errors.New("not found")
	ErrInvalidInput           = errors.New("invalid input")
	ErrDataConflict           = errors.New("data conflict")
	ErrAlreadyProcessed       = errors.New("already processed")
	ErrNotEnoughFunds         = errors.New("not enough funds")
	ErrDuplicateTransactionNo = errors.New("duplicate transaction number")
	ErrCustomerSuspended      = errors.New("customer suspended")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrRateLimit              = errors.New("rate limit")
	ErrRequiredBodyParam      = errors.New("required body parameter is missing")
	ErrInvalidPayload         = errors.New("invalid payload")
	ErrInvalidContentType     = errors.New("invalid content type")
)

// Type just for marshalling purpose.
// Should only be used immediately before marshalling.
type JSON struct {
	Error string `json:"error"`
}

// Let users know which required request parameter is not provided.
type RequiredJSONBodyParamError struct {
	ParamName string
}

func (e *RequiredJSONBodyParamError) Error() string {
	return fmt.Sprintf("JSON body argument %q is required, but not found", e.ParamName)
}

func (e *RequiredJSONBodyParamError) Unwrap() error {
	return ErrRequiredBodyParam
}

// Authorization errors wrapper.
type InvalidAuthorizationError struct {
	Message string
}

func (e *InvalidAuthorizationError) Error() string {
	return fmt.Sprintf("invalid authorization data: %s", e.Message)
}

// Provides details at which field unique violation has occurred.
type AlreadyExistsError struct {
	FieldName string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("record with field %q already exists", e.FieldName)
}

func (e *AlreadyExistsError) Unwrap() error {
	return ErrDataConflict
}
