package validation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gitlab.com/dirk.krummacker/people-service/internal/model"
)

// today is the fixed "now" of these tests.
var today = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

func newValidator() *Validator {
	return NewWithClock(func() time.Time { return today })
}

func date(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func amount(text string) *decimal.Decimal {
	d := decimal.RequireFromString(text)
	return &d
}

func validPerson() model.Person {
	return model.Person{
		FirstName:   "John",
		LastName:    "Doe",
		DateOfBirth: date(1980, time.January, 1),
		Email:       "john@x.com",
		Salary:      amount("1000"),
	}
}

func TestValidPerson(t *testing.T) {
	assert.Nil(t, newValidator().Validate(validPerson()))
}

// TestInvalidPeople changes one field at a time and expects exactly one error for that field.
func TestInvalidPeople(t *testing.T) {
	tests := []struct {
		name   string
		change func(p *model.Person)
		field  string
		tag    string
	}{
		{"empty first name", func(p *model.Person) { p.FirstName = "" }, "firstName", "required"},
		{"empty last name", func(p *model.Person) { p.LastName = "" }, "lastName", "required"},
		{"missing birth date", func(p *model.Person) { p.DateOfBirth = nil }, "dateOfBirth", "required"},
		{"born today", func(p *model.Person) { p.DateOfBirth = date(2024, time.March, 15) }, "dateOfBirth", "past"},
		{"born in the future", func(p *model.Person) { p.DateOfBirth = date(2030, time.January, 1) }, "dateOfBirth", "past"},
		{"empty email", func(p *model.Person) { p.Email = "" }, "email", "required"},
		{"malformed email", func(p *model.Person) { p.Email = "john.x.com" }, "email", "email"},
		{"missing salary", func(p *model.Person) { p.Salary = nil }, "salary", "required"},
		{"salary too low", func(p *model.Person) { p.Salary = amount("999") }, "salary", "min"},
		{"salary just too low", func(p *model.Person) { p.Salary = amount("999.99") }, "salary", "min"},
		{"salary below 1000 beyond float precision", func(p *model.Person) { p.Salary = amount("999.99999999999999999") }, "salary", "min"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := validPerson()
			test.change(&p)
			errs := newValidator().Validate(p)
			if assert.Len(t, errs, 1) {
				assert.Equal(t, test.field, errs[0].Field)
				assert.Equal(t, test.tag, errs[0].Tag)
				assert.Equal(t, Messages[test.field+"."+test.tag], errs[0].Message)
			}
		})
	}
}

func TestBornYesterday(t *testing.T) {
	p := validPerson()
	p.DateOfBirth = date(2024, time.March, 14)
	assert.Nil(t, newValidator().Validate(p))
}

func TestSeveralErrors(t *testing.T) {
	errs := newValidator().Validate(model.Person{})
	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Key())
	}
	assert.ElementsMatch(t, []string{
		"firstName.required",
		"lastName.required",
		"dateOfBirth.required",
		"email.required",
		"salary.required",
	}, fields)
}

func TestNewErrorFallbackMessage(t *testing.T) {
	assert.Equal(t, "Salary must be a decimal number", NewError("salary", "format").Message)
	assert.Equal(t, "nickname is invalid", NewError("nickname", "required").Message)
}
