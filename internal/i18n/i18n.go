// Package i18n holds the message catalogue of the web pages and the locale-aware display
// formatting of dates and amounts. A Locale is chosen per request and handed to the views; no
// locale is kept between requests.
package i18n

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/locales/de"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/shopspring/decimal"
	"gitlab.com/dirk.krummacker/people-service/internal/validation"
	"golang.org/x/text/language"
)

// messages maps a locale to its message keys and texts.
var messages = map[string]map[string]string{
	"en": {
		"title":       "People",
		"id":          "ID",
		"firstName":   "First name",
		"lastName":    "Last name",
		"dateOfBirth": "Date of birth",
		"email":       "Email",
		"salary":      "Salary",
		"photo":       "Photo",
		"save":        "Save",
		"edit":        "Edit",
		"delete":      "Delete",
		"cancel":      "Cancel",
		"empty":       "No people found.",
		"errorTitle":  "Something went wrong",
		"notFound":    "The requested person does not exist.",
		"badRequest":  "The request could not be understood.",
		"serverError": "The request could not be completed.",
		"back":        "Back to the list",
	},
	"de": {
		"title":       "Personen",
		"id":          "ID",
		"firstName":   "Vorname",
		"lastName":    "Nachname",
		"dateOfBirth": "Geburtsdatum",
		"email":       "E-Mail",
		"salary":      "Gehalt",
		"photo":       "Foto",
		"save":        "Speichern",
		"edit":        "Bearbeiten",
		"delete":      "Löschen",
		"cancel":      "Abbrechen",
		"empty":       "Keine Personen gefunden.",
		"errorTitle":  "Es ist ein Fehler aufgetreten",
		"notFound":    "Die angeforderte Person existiert nicht.",
		"badRequest":  "Die Anfrage ist ungültig.",
		"serverError": "Die Anfrage konnte nicht abgeschlossen werden.",
		"back":        "Zurück zur Liste",

		"firstName.required":   "Vorname ist erforderlich",
		"lastName.required":    "Nachname ist erforderlich",
		"dateOfBirth.required": "Geburtsdatum ist erforderlich",
		"dateOfBirth.past":     "Geburtsdatum muss in der Vergangenheit liegen",
		"dateOfBirth.format":   "Geburtsdatum muss das Format JJJJ-MM-TT haben",
		"email.required":       "E-Mail ist erforderlich",
		"email.email":          "Ungültige E-Mail-Adresse",
		"salary.required":      "Gehalt ist erforderlich",
		"salary.min":           "Gehalt muss mindestens 1000 betragen",
		"salary.format":        "Gehalt muss eine Dezimalzahl sein",
	},
}

// Catalog resolves locales and their translations.
type Catalog struct {
	uni      *ut.UniversalTranslator
	fallback string
}

// New builds the catalogue. The fallback locale is used whenever a request asks for nothing we
// support; an unsupported fallback falls back to English.
func New(fallback string) (*Catalog, error) {
	uni := ut.New(en.New(), en.New(), de.New())
	for locale, texts := range messages {
		trans, found := uni.GetTranslator(locale)
		if !found {
			return nil, fmt.Errorf("i18n: no translator for locale %s", locale)
		}
		if err := add(trans, texts); err != nil {
			return nil, err
		}
	}
	// The validation rules carry their own English texts.
	english, _ := uni.GetTranslator("en")
	if err := add(english, validation.Messages); err != nil {
		return nil, err
	}
	if _, found := uni.GetTranslator(fallback); !found {
		fallback = "en"
	}
	return &Catalog{uni: uni, fallback: fallback}, nil
}

func add(trans ut.Translator, texts map[string]string) error {
	for key, text := range texts {
		if err := trans.Add(key, text, false); err != nil {
			return fmt.Errorf("i18n: add %s/%s: %w", trans.Locale(), key, err)
		}
	}
	return nil
}

// Default returns the fallback locale.
func (c *Catalog) Default() Locale {
	trans, _ := c.uni.GetTranslator(c.fallback)
	return Locale{trans: trans}
}

// Resolve picks the locale for a request. An explicit choice (the lang parameter) wins over the
// Accept-Language header, which wins over the fallback.
func (c *Catalog) Resolve(explicit string, acceptLanguage string) Locale {
	var candidates []string
	if explicit != "" {
		candidates = append(candidates, explicit)
	}
	tags, _, _ := language.ParseAcceptLanguage(acceptLanguage)
	for _, tag := range tags {
		candidates = append(candidates, strings.ReplaceAll(tag.String(), "-", "_"))
		if base, confidence := tag.Base(); confidence != language.No {
			candidates = append(candidates, base.String())
		}
	}
	for _, candidate := range candidates {
		if trans, found := c.uni.GetTranslator(candidate); found {
			return Locale{trans: trans}
		}
	}
	return c.Default()
}

// Locale is the presentation configuration of one request.
type Locale struct {
	trans ut.Translator
}

// Name returns the locale identifier, e.g. "en" or "de".
func (l Locale) Name() string {
	return l.trans.Locale()
}

// T translates a message key. Unknown keys are returned unchanged.
func (l Locale) T(key string) string {
	text, err := l.trans.T(key)
	if err != nil {
		return key
	}
	return text
}

// Date renders a date for reading, e.g. "January 1, 1980".
func (l Locale) Date(t time.Time) string {
	return l.trans.FmtDateLong(t)
}

// Amount renders a decimal with grouping and two decimal places, rounding half away from zero.
func (l Locale) Amount(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return l.trans.FmtNumber(f, 2)
}
