package taxcalc

import "errors"

// Ошибки валидации входных значений калькулятора.
var (
	ErrInvalidType         = errors.New("invalid value type passed to function")
	ErrInvalidPercentValue = errors.New("invalid percent value: has to be >= 0 and <= 1")
	ErrInvalidValue        = errors.New("invalid value")
)

// FieldError привязывает ошибку валидации к конкретному полю.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field == "" {
		return e.Err.Error()
	}
	return e.Field + ": " + e.Err.Error()
}

func (e *FieldError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func fieldError(field string, err error) error {
	return &FieldError{Field: field, Err: err}
}
