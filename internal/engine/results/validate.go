package results

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"vreport/internal/core/errors"
)

// Validator checks decoded records and envelopes before they reach the
// navigation engine.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s != "" && Slug(s) == s
	})
	v.RegisterStructValidation(recordIdentity, Record{})
	return &Validator{v: v}
}

// recordIdentity rejects records whose id does not derive from their fields.
func recordIdentity(sl validator.StructLevel) {
	rec := sl.Current().Interface().(Record)
	if rec.ID == "" || rec.ComponentTagName == "" || rec.StoryName == "" {
		return
	}
	if rec.ID != BuildID(rec.ComponentTagName, rec.StoryName, rec.ViewportType, rec.BrowserName) {
		sl.ReportError(rec.ID, "id", "ID", "identity", "")
	}
}

func (v *Validator) Record(rec Record) error {
	return v.check(rec, "invalid result record")
}

func (v *Validator) ResultSet(set ResultSet) error {
	return v.check(set, "invalid result set")
}

func (v *Validator) Report(report Report) error {
	return v.check(report, "invalid report")
}

func (v *Validator) check(value interface{}, msg string) error {
	err := v.v.Struct(value)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.Wrap(err, errors.CodeInternal, msg)
	}
	return errors.Wrap(formatValidationErrors(verrs), errors.CodeValidationError, msg)
}

func formatValidationErrors(verrs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if idx := strings.Index(field, "."); idx >= 0 {
			field = field[idx+1:]
		}
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value()))
		case "slug":
			msgs = append(msgs, fmt.Sprintf("%s must be a lowercase hyphenated slug, got %q", field, fe.Value()))
		case "identity":
			msgs = append(msgs, fmt.Sprintf("%s %q does not match its component, story, viewport and browser", field, fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return stderrors.New(strings.Join(msgs, "; "))
}
