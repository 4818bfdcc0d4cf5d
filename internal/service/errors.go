package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderNotPayable      = errors.New("order cannot be paid")
	ErrPaymentInProgress    = errors.New("payment already in progress")
	ErrInvalidPlan          = errors.New("invalid plan")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrValidation           = errors.New("validation failed")
	ErrConnectionNotFound   = errors.New("connection not found")
	ErrNoConnection         = errors.New("please connect an API first")
	ErrRateLimited          = errors.New("rate limit exceeded")
	ErrUpstream             = errors.New("upstream request failed")
)

// RedirectError tells the caller to send the user elsewhere instead of
// rendering the requested step
type RedirectError struct {
	Location string
	Reason   string
	Message  string
	cause    error
}

func (e *RedirectError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "redirect to " + e.Location
}

func (e *RedirectError) Unwrap() error {
	return e.cause
}

// validationError flattens validator output into a single ErrValidation
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "email":
			msgs = append(msgs, "please enter a valid email address")
		case "url":
			msgs = append(msgs, field+" must be a valid URL")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}
