package service

import (
	"errors"
	"strconv"

	"gitlab.com/dirk.krummacker/people-service/internal/format"
	"gitlab.com/dirk.krummacker/people-service/internal/model"
	"gitlab.com/dirk.krummacker/people-service/internal/validation"
)

var (
	dates    format.DateFormatter
	salaries format.SalaryFormatter
	files    format.FileFormatter
)

// bindPerson converts the submitted form into a person. Text that the codecs reject becomes a
// field error with the tag "format"; empty fields stay unset so that validation reports them
// as missing. A malformed id is not a field error but a bad request.
func bindPerson(form model.PersonForm) (model.Person, []validation.FieldError, error) {
	var person model.Person
	var bindErrs []validation.FieldError
	if form.Id != "" {
		id, err := strconv.ParseInt(form.Id, 10, 64)
		if err != nil || id < 0 {
			return person, nil, badRequest("invalid id parameter %q", form.Id)
		}
		person.Id = id
	}
	person.FirstName = form.FirstName
	person.LastName = form.LastName
	person.Email = form.Email
	if form.DateOfBirth != "" {
		date, err := dates.Parse(form.DateOfBirth)
		if err != nil {
			bindErrs = append(bindErrs, formatError("dateOfBirth", err))
		} else {
			person.DateOfBirth = &date
		}
	}
	if form.Salary != "" {
		salary, err := salaries.Parse(form.Salary)
		if err != nil {
			bindErrs = append(bindErrs, formatError("salary", err))
		} else {
			person.Salary = &salary
		}
	}
	return person, bindErrs, nil
}

func formatError(field string, err error) validation.FieldError {
	var formatErr *format.FormatError
	if !errors.As(err, &formatErr) {
		return validation.NewError(field, "invalid")
	}
	return validation.NewError(field, "format")
}

// mergeErrors appends the rule violations to the conversion errors. A field that could not be
// converted is unset, so its "required" violation would only repeat the conversion error.
func mergeErrors(bindErrs []validation.FieldError, ruleErrs []validation.FieldError) []validation.FieldError {
	failed := make(map[string]bool, len(bindErrs))
	for _, e := range bindErrs {
		failed[e.Field] = true
	}
	result := bindErrs
	for _, e := range ruleErrs {
		if !failed[e.Field] {
			result = append(result, e)
		}
	}
	return result
}

// formOf fills the form with a stored person, the way an edit starts.
func formOf(p model.Person) model.PersonForm {
	form := model.PersonForm{
		Id:        strconv.FormatInt(p.Id, 10),
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
	}
	if p.DateOfBirth != nil {
		form.DateOfBirth = dates.Print(*p.DateOfBirth)
	}
	if p.Salary != nil {
		form.Salary = salaries.Print(*p.Salary)
	}
	return form
}
