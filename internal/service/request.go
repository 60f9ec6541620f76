package service

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/url"
	"strconv"
	"strings"

	"gitlab.com/dirk.krummacker/people-service/internal/model"
)

// action is what a POST to /people asks for. All four actions share the same URL and method,
// so the submission is decoded into one of them before anything else happens.
type action interface {
	name() string
}

// createAction saves a new or an edited person.
type createAction struct {
	form  model.PersonForm
	photo *multipart.FileHeader
}

// deleteAction removes the selected people. No selection means nothing to do.
type deleteAction struct {
	ids []int64
}

// editAction loads a person into the form.
type editAction struct {
	id int64
}

// cancelAction abandons an edit.
type cancelAction struct{}

func (createAction) name() string { return "create" }
func (deleteAction) name() string { return "delete" }
func (editAction) name() string { return "edit" }
func (cancelAction) name() string { return "cancel" }

// badRequestError marks submissions that cannot be understood at all, e.g. non-numeric ids.
type badRequestError struct {
	err error
}

func (e *badRequestError) Error() string { return e.err.Error() }
func (e *badRequestError) Unwrap() error { return e.err }

func badRequest(format string, args ...any) error {
	return &badRequestError{err: fmt.Errorf(format, args...)}
}

func isBadRequest(err error) bool {
	var target *badRequestError
	return errors.As(err, &target)
}

// decodeAction looks at the marker fields of a submission. If several markers are present the
// first one in the order delete, edit, cancel wins; without markers the submission is a create.
func decodeAction(form url.Values, photo *multipart.FileHeader) (action, error) {
	if form.Get("delete") == "true" {
		ids := make([]int64, 0, len(form["selections"]))
		for _, value := range form["selections"] {
			id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
			if err != nil {
				return nil, badRequest("invalid selections parameter %q", value)
			}
			ids = append(ids, id)
		}
		return deleteAction{ids: ids}, nil
	}
	if form.Has("edit") {
		value := form.Get("edit")
		id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return nil, badRequest("invalid edit parameter %q", value)
		}
		return editAction{id: id}, nil
	}
	if form.Get("cancel") == "true" {
		return cancelAction{}, nil
	}
	return createAction{
		form: model.PersonForm{
			Id:          strings.TrimSpace(form.Get("id")),
			FirstName:   strings.TrimSpace(form.Get("firstName")),
			LastName:    strings.TrimSpace(form.Get("lastName")),
			DateOfBirth: strings.TrimSpace(form.Get("dateOfBirth")),
			Email:       strings.TrimSpace(form.Get("email")),
			Salary:      strings.TrimSpace(form.Get("salary")),
		},
		photo: photo,
	}, nil
}
