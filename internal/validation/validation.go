// Package validation checks people before they are saved. The same rules apply to new and to
// edited records.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gitlab.com/dirk.krummacker/people-service/internal/model"
)

// FieldError is a single problem with a single form field. Field is the name of the form field,
// Tag names the violated rule and doubles as the message key suffix ("salary.min").
type FieldError struct {
	Field   string
	Tag     string
	Message string
}

// Key returns the message key of the error.
func (e FieldError) Key() string {
	return e.Field + "." + e.Tag
}

// Validator validates people against the current date.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// New returns a validator that uses the wall clock.
func New() *Validator {
	return NewWithClock(time.Now)
}

// NewWithClock returns a validator with a custom notion of "today".
func NewWithClock(now func() time.Time) *Validator {
	v := &Validator{validate: validator.New(), now: now}
	v.validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	for tag, fn := range map[string]validator.Func{"past": v.past, "amountmin": amountMin} {
		if err := v.validate.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	return v
}

// past accepts dates strictly before today.
func (v *Validator) past(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	now := v.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return date.Before(today)
}

// amountMin compares decimals exactly against the lower bound given as parameter.
func amountMin(fl validator.FieldLevel) bool {
	amount, ok := fl.Field().Interface().(decimal.Decimal)
	if !ok {
		return false
	}
	return amount.GreaterThanOrEqual(decimal.RequireFromString(fl.Param()))
}

// ruleKeys maps validator tags to the rule names used in message keys.
var ruleKeys = map[string]string{"amountmin": "min"}

// Validate returns every field error of the person, or nil if the person is valid. Messages are
// the English defaults; callers translate them through the key.
func (v *Validator) Validate(p model.Person) []FieldError {
	err := v.validate.Struct(p)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []FieldError{{Field: "", Tag: "invalid", Message: err.Error()}}
	}
	result := make([]FieldError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		tag := fe.Tag()
		if key, found := ruleKeys[tag]; found {
			tag = key
		}
		result = append(result, NewError(fe.Field(), tag))
	}
	return result
}

// NewError builds a field error with its default message.
func NewError(field string, tag string) FieldError {
	return FieldError{Field: field, Tag: tag, Message: defaultMessage(field, tag)}
}

// Messages holds the default message of every field/rule pair, keyed like FieldError.Key.
var Messages = map[string]string{
	"firstName.required":   "First name is required",
	"lastName.required":    "Last name is required",
	"dateOfBirth.required": "Date of birth is required",
	"dateOfBirth.past":     "Date of birth must be in the past",
	"dateOfBirth.format":   "Date of birth must use the format yyyy-MM-dd",
	"email.required":       "Email is required",
	"email.email":          "Invalid email address",
	"salary.required":      "Salary is required",
	"salary.min":           "Salary must be at least 1000",
	"salary.format":        "Salary must be a decimal number",
}

func defaultMessage(field string, tag string) string {
	if message, found := Messages[field+"."+tag]; found {
		return message
	}
	return field + " is invalid"
}
