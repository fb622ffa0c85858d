package compliance

import (
	"errors"
	"fmt"
)

const BulkUpdateLimit = 500

var (
	ErrInvalidInput               = errors.New("invalid input")
	ErrQualificationTypeNotFound  = errors.New("qualification type not found")
	ErrDuplicateQualification     = errors.New("qualification already exists for car and type")
	ErrStaleQualification         = errors.New("qualification was modified by another update")
	ErrQualificationNotFound      = errors.New("qualification not found")
	ErrCarIDRequired              = fmt.Errorf("%w: car_id is required", ErrInvalidInput)
	ErrExemptReasonRequired       = fmt.Errorf("%w: exempt_reason is required when is_exempt is true", ErrInvalidInput)
	ErrDerivedStatusNotAssignable = fmt.Errorf("%w: only exempt may be assigned, other statuses are derived from dates", ErrInvalidInput)
)

// InvalidDateError reports caller supplied date text that does not parse.
type InvalidDateError struct {
	Field string
	Value string
}

func (e *InvalidDateError) Error() string {
	return "Invalid " + e.Field
}

// LimitError reports a batch larger than the permitted ceiling.
type LimitError struct {
	Operation string
	Limit     int
	Got       int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s limited to %d qualifications, got %d", e.Operation, e.Limit, e.Got)
}

func IsInvalidDate(err error) bool {
	var target *InvalidDateError
	return errors.As(err, &target)
}

func IsLimit(err error) bool {
	var target *LimitError
	return errors.As(err, &target)
}
