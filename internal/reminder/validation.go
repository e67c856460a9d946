package reminder

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// FieldError is a validation failure attached to one form field.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// FieldErrors is returned when a draft fails validation.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	if len(fe) == 1 {
		return fe[0].Message
	}
	msgs := make([]string, len(fe))
	for i, e := range fe {
		msgs[i] = e.Message
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
}

// For returns the message for field, or "" when the field is valid.
func (fe FieldErrors) For(field string) string {
	for _, e := range fe {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}

// Sorted returns the errors with the named fields first, in the given
// order, followed by the rest in their original order.
func (fe FieldErrors) Sorted(fields ...string) FieldErrors {
	out := make(FieldErrors, 0, len(fe))
	used := make([]bool, len(fe))
	for _, f := range fields {
		for i, e := range fe {
			if !used[i] && e.Field == f {
				out = append(out, e)
				used[i] = true
			}
		}
	}
	for i, e := range fe {
		if !used[i] {
			out = append(out, e)
		}
	}
	return out
}

var fieldLabels = map[string]string{
	"title":       "Title",
	"description": "Description",
	"dueDate":     "Due date",
	"priority":    "Priority",
}

// Validator checks drafts before they are sent anywhere.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// NewValidator creates a validator. now supplies the submission instant;
// nil means time.Now.
func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	v := &Validator{validate: validator.New(), now: now}

	v.validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	v.validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if ts, ok := field.Interface().(Timestamp); ok {
			return ts.Time
		}
		return nil
	}, Timestamp{})

	v.validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	v.validate.RegisterValidation("notpast", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		if !ok || t.IsZero() {
			return false
		}
		return !t.Before(v.now().Truncate(time.Second))
	})
	v.validate.RegisterValidation("future", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		return ok && t.After(v.now())
	})

	return v
}

// Draft validates a normalized draft against the client-side rules:
// non-blank title, due date not in the past, known priority.
func (v *Validator) Draft(d Draft) error {
	return v.Struct(d.Normalize())
}

// Struct validates any struct using the registered rules and returns
// FieldErrors on failure.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(FieldErrors, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, FieldError{
			Field:   e.Field(),
			Tag:     e.Tag(),
			Message: message(e),
		})
	}
	return out
}

func message(e validator.FieldError) string {
	label, ok := fieldLabels[e.Field()]
	if !ok {
		label = e.Field()
	}

	switch e.Tag() {
	case "required", "notblank":
		return label + " is required."
	case "notpast":
		switch t := e.Value().(type) {
		case time.Time:
			if t.IsZero() {
				return label + " is required."
			}
		case Timestamp:
			if t.IsZero() {
				return label + " is required."
			}
		}
		return "Due date cannot be in the past. Please select a future date and time."
	case "future":
		return label + " must be in the future."
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", label, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s.", label, strings.ReplaceAll(e.Param(), " ", ", "))
	}
	return fmt.Sprintf("%s is invalid (%s).", label, e.Tag())
}
