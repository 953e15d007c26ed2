package listing

import (
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/stockroom/console/internal/shared"
)

// DateLayout is the calendar date format the backend accepts.
const DateLayout = "2006-01-02"

var (
	phonePattern = regexp.MustCompile(`^[0-9+\-\s()]+$`)
	codePattern  = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator. Errors are reported under the
// field's JSON name so they line up with form input names.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("code", func(fl validator.FieldLevel) bool {
			return codePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(DateLayout, fl.Field().String())
			return err == nil
		})
		validate = v
	})
	return validate
}

// Validate checks v's struct tags and returns one message per failing field.
func Validate(v any) shared.FieldErrors {
	errs := shared.FieldErrors{}
	err := Validator().Struct(v)
	if err == nil {
		return errs
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs.Add("general", err.Error())
		return errs
	}
	for _, fe := range verrs {
		errs.Add(fe.Field(), message(fe))
	}
	return errs
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "phone":
		return "Invalid phone number"
	case "code":
		return "Only letters, digits and underscores are allowed"
	case "isodate":
		return "Enter a valid date as YYYY-MM-DD"
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "min", "gte":
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(e.Param(), " ", ", ")
	default:
		return "Invalid value"
	}
}
