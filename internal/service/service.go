package service

import (
	"errors"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"gitlab.com/dirk.krummacker/people-service/internal/i18n"
	"gitlab.com/dirk.krummacker/people-service/internal/model"
	"gitlab.com/dirk.krummacker/people-service/internal/store"
	"gitlab.com/dirk.krummacker/people-service/internal/validation"
	"go.uber.org/zap"
)

// localeKey is the gin context key of the request's locale.
const localeKey = "locale"

// langKey is the gin context key of an explicitly chosen language.
const langKey = "lang"

// Service serves the people page. It keeps no state between requests apart from its
// collaborators and the metrics.
type Service struct {
	store     store.Store
	catalog   *i18n.Catalog
	validator *validation.Validator
	logger    *zap.Logger
	metrics   *metrics
}

// NewService wires the page handlers to a store. The catalogue supplies texts and display
// formats, the validator the rules every saved person has to satisfy.
func NewService(s store.Store, catalog *i18n.Catalog, validator *validation.Validator, logger *zap.Logger) *Service {
	return &Service{
		store:     s,
		catalog:   catalog,
		validator: validator,
		logger:    logger,
		metrics:   newMetrics(),
	}
}

// SetupHttpRouter initializes the router and registers all endpoints.
func (s *Service) SetupHttpRouter(requestLogging bool) *gin.Engine {
	var router *gin.Engine
	if requestLogging {
		router = gin.Default()
	} else {
		s.logger.Info("turning off HTTP request logging")
		router = gin.New()
		router.Use(gin.Recovery())
	}
	router.SetHTMLTemplate(templates)
	router.Use(s.resolveLocale, s.handleErrors)
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, peopleURL(c.GetString(langKey)))
	})
	router.GET("/people", s.listPeople)
	router.POST("/people", s.submitPeople)
	router.GET("/metrics", gin.WrapH(s.metrics.handler()))
	return router
}

// resolveLocale picks the locale of the request from the lang parameter, the Accept-Language
// header and the configured default, in that order.
func (s *Service) resolveLocale(c *gin.Context) {
	lang := c.Query("lang")
	locale := s.catalog.Resolve(lang, c.GetHeader("Accept-Language"))
	if lang != "" && lang == locale.Name() {
		c.Set(langKey, lang)
	}
	c.Set(localeKey, locale)
	c.Next()
}

func (s *Service) localeOf(c *gin.Context) i18n.Locale {
	if value, found := c.Get(localeKey); found {
		if locale, ok := value.(i18n.Locale); ok {
			return locale
		}
	}
	return s.catalog.Default()
}

// handleErrors renders the error page for errors recorded by the handlers. Unknown people
// result in 404, undecodable submissions in 400 and everything else in 500.
func (s *Service) handleErrors(c *gin.Context) {
	c.Next()
	last := c.Errors.Last()
	if last == nil || c.Writer.Written() {
		return
	}
	status := http.StatusInternalServerError
	messageKey := "serverError"
	switch {
	case errors.Is(last.Err, store.ErrNotFound):
		status = http.StatusNotFound
		messageKey = "notFound"
	case isBadRequest(last.Err):
		status = http.StatusBadRequest
		messageKey = "badRequest"
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(last.Err))
	} else {
		s.logger.Info("request rejected", zap.String("path", c.Request.URL.Path), zap.Int("status", status), zap.Error(last.Err))
	}
	c.HTML(status, "error.html", newErrorPage(s.localeOf(c), status, messageKey))
}

// listPeople renders all people and an empty form.
//
// Example call:
//
//	> curl "http://localhost:8080/people?lang=de"
func (s *Service) listPeople(c *gin.Context) {
	s.metrics.count("list")
	s.renderPeople(c, model.PersonForm{}, nil)
}

// submitPeople handles every form posted to /people. The submission is decoded into exactly one
// action first.
//
// Example calls:
//
//	> curl http://localhost:8080/people --data "firstName=John&lastName=Doe&dateOfBirth=1990-05-17&email=john@example.com&salary=2500"
//	> curl http://localhost:8080/people --data "edit=3"
//	> curl http://localhost:8080/people --data "delete=true&selections=1&selections=4"
//	> curl http://localhost:8080/people --data "cancel=true"
func (s *Service) submitPeople(c *gin.Context) {
	form, photo, err := readForm(c)
	if err != nil {
		_ = c.Error(badRequest("unreadable form: %v", err))
		return
	}
	act, err := decodeAction(form, photo)
	if err != nil {
		_ = c.Error(err)
		return
	}
	s.metrics.count(act.name())
	switch a := act.(type) {
	case deleteAction:
		s.deletePeople(c, a)
	case editAction:
		s.editPerson(c, a)
	case cancelAction:
		s.redirectToList(c)
	case createAction:
		s.savePerson(c, a)
	}
}

// readForm parses url-encoded as well as multipart submissions.
func readForm(c *gin.Context) (url.Values, *multipart.FileHeader, error) {
	if strings.HasPrefix(c.ContentType(), gin.MIMEMultipartPOSTForm) {
		multipartForm, err := c.MultipartForm()
		if err != nil {
			return nil, nil, err
		}
		var photo *multipart.FileHeader
		if headers := multipartForm.File["photoFileName"]; len(headers) > 0 {
			photo = headers[0]
		}
		return c.Request.PostForm, photo, nil
	}
	if err := c.Request.ParseForm(); err != nil {
		return nil, nil, err
	}
	return c.Request.PostForm, nil, nil
}

func (s *Service) deletePeople(c *gin.Context, a deleteAction) {
	if len(a.ids) > 0 {
		if err := s.store.DeleteAllById(c.Request.Context(), a.ids); err != nil {
			_ = c.Error(err)
			return
		}
		s.logger.Info("people deleted", zap.Int64s("ids", a.ids))
	}
	s.redirectToList(c)
}

func (s *Service) editPerson(c *gin.Context, a editAction) {
	person, err := s.store.FindById(c.Request.Context(), a.id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	s.renderPeople(c, formOf(person), nil)
}

func (s *Service) savePerson(c *gin.Context, a createAction) {
	if a.photo != nil {
		s.logger.Info("photo received",
			zap.String("photoFileName", files.Print(a.photo)),
			zap.Int64("photoFileSize", a.photo.Size))
	}
	person, bindErrs, err := bindPerson(a.form)
	if err != nil {
		_ = c.Error(err)
		return
	}
	fieldErrs := mergeErrors(bindErrs, s.validator.Validate(person))
	if len(fieldErrs) > 0 {
		s.logger.Info("person rejected", zap.Int("errors", len(fieldErrs)))
		s.renderPeople(c, a.form, fieldErrs)
		return
	}
	saved, err := s.store.Save(c.Request.Context(), person)
	if err != nil {
		_ = c.Error(err)
		return
	}
	s.logger.Info("person saved", zap.Int64("id", saved.Id))
	s.redirectToList(c)
}

// redirectToList sends the browser back to the list so that reloading does not resubmit.
func (s *Service) redirectToList(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, peopleURL(c.GetString(langKey)))
}

// renderPeople shows the current collection together with the given form state.
func (s *Service) renderPeople(c *gin.Context, form model.PersonForm, fieldErrs []validation.FieldError) {
	people, err := s.store.FindAll(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.HTML(http.StatusOK, "people.html", newPeoplePage(s.localeOf(c), people, form, fieldErrs))
}
