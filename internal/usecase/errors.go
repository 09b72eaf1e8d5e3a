package usecase

import "errors"

const (
	CodeValidation              = "VALIDATION_ERROR"
	CodeReferenceNotFound       = "REFERENCE_NOT_FOUND"
	CodeDuplicateEmail          = "DUPLICATE_EMAIL"
	CodeAlreadyWaitlisted       = "ALREADY_WAITLISTED"
	CodeDuplicateAccount        = "DUPLICATE_ACCOUNT"
	CodeNotFound                = "NOT_FOUND"
	CodeStepOutOfOrder          = "STEP_OUT_OF_ORDER"
	CodeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"

	CodeStorageUnavailable = "STORAGE_UNAVAILABLE"
	CodeUnknown            = "UNKNOWN"
)

type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is compara pelo Code, então errors.Is(err, ErrNotFound) funciona com mensagens próprias.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func (e *TechnicalError) Is(target error) bool {
	t, ok := target.(*TechnicalError)
	return ok && t.Code == e.Code
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

// Retryable indica falha transitória de banco: o chamador pode repetir a operação.
func Retryable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}

var (
	ErrReferenceNotFound       = &DomainError{Code: CodeReferenceNotFound, Message: "referenced lead does not exist"}
	ErrDuplicateEmail          = &DomainError{Code: CodeDuplicateEmail, Message: "email already registered"}
	ErrAlreadyWaitlisted       = &DomainError{Code: CodeAlreadyWaitlisted, Message: WaitlistAlreadyJoinedMessage}
	ErrDuplicateAccount        = &DomainError{Code: CodeDuplicateAccount, Message: "an account already exists for this email"}
	ErrNotFound                = &DomainError{Code: CodeNotFound, Message: "resource not found"}
	ErrStepOutOfOrder          = &DomainError{Code: CodeStepOutOfOrder, Message: "identification step must be completed before payment"}
	ErrInvalidStatusTransition = &DomainError{Code: CodeInvalidStatusTransition, Message: "waitlist status can only move forward from ACTIVE"}

	ErrStorageUnavailable = &TechnicalError{Code: CodeStorageUnavailable, Message: "storage temporarily unavailable, please retry"}
	ErrUnknown            = &TechnicalError{Code: CodeUnknown, Message: "an unexpected error occurred"}
)
