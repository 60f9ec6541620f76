package service

import (
	"embed"
	"html/template"

	"gitlab.com/dirk.krummacker/people-service/internal/i18n"
	"gitlab.com/dirk.krummacker/people-service/internal/model"
	"gitlab.com/dirk.krummacker/people-service/internal/validation"
)

//go:embed templates/*.html
var templateFS embed.FS

// templates are parsed once; a broken template is a programming error.
var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// personRow is a person as shown in the list, formatted for the request's locale.
type personRow struct {
	Id          int64
	FirstName   string
	LastName    string
	DateOfBirth string
	Email       string
	Salary      string
}

// peoplePage is the model of people.html.
type peoplePage struct {
	Lang   string
	T      func(key string) string
	People []personRow
	Form   model.PersonForm
	Errors map[string][]string
}

// Editing reports whether the form holds a stored person.
func (p peoplePage) Editing() bool {
	return p.Form.Id != "" && p.Form.Id != "0"
}

// errorPage is the model of error.html.
type errorPage struct {
	Lang    string
	T       func(key string) string
	Status  int
	Message string
}

func newPeoplePage(locale i18n.Locale, people []model.Person, form model.PersonForm, errs []validation.FieldError) peoplePage {
	rows := make([]personRow, 0, len(people))
	for _, p := range people {
		row := personRow{Id: p.Id, FirstName: p.FirstName, LastName: p.LastName, Email: p.Email}
		if p.DateOfBirth != nil {
			row.DateOfBirth = locale.Date(*p.DateOfBirth)
		}
		if p.Salary != nil {
			row.Salary = locale.Amount(*p.Salary)
		}
		rows = append(rows, row)
	}
	var messages map[string][]string
	if len(errs) > 0 {
		messages = make(map[string][]string, len(errs))
		for _, e := range errs {
			messages[e.Field] = append(messages[e.Field], translateError(locale, e))
		}
	}
	return peoplePage{
		Lang:   locale.Name(),
		T:      locale.T,
		People: rows,
		Form:   form,
		Errors: messages,
	}
}

// translateError looks up the message of a field error, falling back to its default text.
func translateError(locale i18n.Locale, e validation.FieldError) string {
	if text := locale.T(e.Key()); text != e.Key() {
		return text
	}
	return e.Message
}

func newErrorPage(locale i18n.Locale, status int, messageKey string) errorPage {
	return errorPage{
		Lang:    locale.Name(),
		T:       locale.T,
		Status:  status,
		Message: locale.T(messageKey),
	}
}

// peopleURL is the list URL, keeping an explicit language choice.
func peopleURL(lang string) string {
	if lang == "" {
		return "/people"
	}
	return "/people?lang=" + template.URLQueryEscaper(lang)
}
