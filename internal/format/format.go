// Package format converts between the strings found in HTML forms and the typed fields of a
// person. Every formatter is symmetric: Print produces text that Parse accepts.
package format

import (
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical date representation. HTML date inputs send and expect exactly
// this layout, so it is used both for parsing submissions and for pre-filling edit forms.
const DateLayout = "2006-01-02"

// ErrUnsupported is returned by formatters that only work in one direction.
var ErrUnsupported = errors.New("format: parsing not supported")

// Formatter converts a value of type T to and from its textual form.
type Formatter[T any] interface {
	Parse(text string) (T, error)
	Print(value T) string
}

// FormatError reports text that does not match the expected representation.
type FormatError struct {
	Text   string
	Layout string
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format: %q does not match %s", e.Text, e.Layout)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// DateFormatter handles calendar dates. Parsed dates are at midnight UTC. Only years 0000 to
// 9999 survive a round trip; Print of a later year yields text that Parse rejects.
type DateFormatter struct{}

var _ Formatter[time.Time] = DateFormatter{}

func (DateFormatter) Parse(text string) (time.Time, error) {
	t, err := time.Parse(DateLayout, text)
	if err != nil {
		return time.Time{}, &FormatError{Text: text, Layout: "yyyy-MM-dd", Err: err}
	}
	return t, nil
}

func (DateFormatter) Print(value time.Time) string {
	return value.Format(DateLayout)
}

// SalaryFormatter handles monetary amounts.
type SalaryFormatter struct{}

var _ Formatter[decimal.Decimal] = SalaryFormatter{}

func (SalaryFormatter) Parse(text string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, &FormatError{Text: text, Layout: "a decimal number", Err: err}
	}
	return d, nil
}

// Print shows at least two decimal places and never drops a digit of the stored value.
func (SalaryFormatter) Print(value decimal.Decimal) string {
	if value.Exponent() < -2 {
		return value.String()
	}
	return value.StringFixed(2)
}

// FileFormatter renders uploaded files by name. Uploads are write-only, so parsing is not
// possible.
type FileFormatter struct{}

var _ Formatter[*multipart.FileHeader] = FileFormatter{}

func (FileFormatter) Parse(string) (*multipart.FileHeader, error) {
	return nil, ErrUnsupported
}

func (FileFormatter) Print(value *multipart.FileHeader) string {
	if value == nil {
		return ""
	}
	return value.Filename
}
