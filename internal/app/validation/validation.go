// Package validation checks submitted HTML forms with go-playground/validator
// and collects failures as translatable message keys per form field.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Message keys understood by the locale bundles.
const (
	KeyRequired  = "required"
	KeyDate      = "typeMismatch.date"
	KeyNotFuture = "notFuture"
	KeyTelephone = "telephone.invalid"
	KeyDuplicate = "duplicate"
	KeyPetType   = "petType.invalid"
	KeyNotFound  = "notFound"
)

// DateLayout is the accepted date format.
const DateLayout = "2006-01-02"

var telephonePattern = regexp.MustCompile(`^\d{10}$`)

// Now is the clock notfuture compares against.
var Now = time.Now

var tagKeys = map[string]string{
	"required":  KeyRequired,
	"notblank":  KeyRequired,
	"isodate":   KeyDate,
	"notfuture": KeyNotFuture,
	"telephone": KeyTelephone,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "isodate", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "notfuture", func(fl validator.FieldLevel) bool {
		d, err := ParseDate(fl.Field().String())
		if err != nil {
			// isodate reports unparsable values.
			return true
		}
		return !IsFuture(d)
	})
	mustRegister(v, "telephone", func(fl validator.FieldLevel) bool {
		return telephonePattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// ParseDate parses a YYYY-MM-DD value.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(value))
}

// IsFuture reports whether d lies after today's local date.
func IsFuture(d time.Time) bool {
	return d.Format(DateLayout) > Now().Format(DateLayout)
}

// Validate runs the struct's `validate` rules. The result is never nil; use
// Empty to check for failures.
func Validate(form interface{}) *Errors {
	errs := &Errors{}
	err := validate.Struct(form)
	if err == nil {
		return errs
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs.Add("", err.Error())
		return errs
	}
	for _, fe := range fieldErrs {
		key, ok := tagKeys[fe.Tag()]
		if !ok {
			key = fe.Tag()
		}
		errs.Add(fe.Field(), key)
	}
	return errs
}

// Translator resolves a message key to display text.
type Translator interface {
	T(key string) string
}

// Errors maps form fields to message keys, preserving insertion order.
type Errors struct {
	order  []string
	fields map[string][]string
}

// Add records a failure for field.
func (e *Errors) Add(field, key string) {
	if e.fields == nil {
		e.fields = make(map[string][]string)
	}
	if _, seen := e.fields[field]; !seen {
		e.order = append(e.order, field)
	}
	e.fields[field] = append(e.fields[field], key)
}

// Has reports whether field has at least one failure.
func (e *Errors) Has(field string) bool {
	return e != nil && len(e.fields[field]) > 0
}

// Keys returns the message keys recorded for field.
func (e *Errors) Keys(field string) []string {
	if e == nil {
		return nil
	}
	return e.fields[field]
}

// Fields returns the failing fields in the order they were added.
func (e *Errors) Fields() []string {
	if e == nil {
		return nil
	}
	return append([]string(nil), e.order...)
}

// Empty reports whether no failure was recorded.
func (e *Errors) Empty() bool {
	return e == nil || len(e.order) == 0
}

func (e *Errors) Error() string {
	if e.Empty() {
		return "validation passed"
	}
	parts := make([]string, 0, len(e.order))
	for _, field := range e.order {
		parts = append(parts, field+": "+strings.Join(e.fields[field], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Translate renders every field's messages through t, joined by ", ".
func (e *Errors) Translate(t Translator) map[string]string {
	out := make(map[string]string, len(e.Fields()))
	for _, field := range e.Fields() {
		keys := e.fields[field]
		msgs := make([]string, len(keys))
		for i, key := range keys {
			msgs[i] = t.T(key)
		}
		out[field] = strings.Join(msgs, ", ")
	}
	return out
}
