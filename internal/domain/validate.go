package domain

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate     = newValidator()
	contactRegex = regexp.MustCompile(`^09\d{9}$`)
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("contact_ph", func(fl validator.FieldLevel) bool {
		return contactRegex.MatchString(fl.Field().String())
	})
	return v
}

// ValidEmail reports whether s is a well-formed, non-empty address.
func ValidEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

// FieldErrors maps a field name to its human-readable problems.
type FieldErrors map[string][]string

func (fe FieldErrors) add(field, message string) {
	fe[field] = append(fe[field], message)
}

// Validate checks the submission shape and format. The input must be
// normalized first. Returns nil when the input is acceptable.
func (in *RegistrationInput) Validate() FieldErrors {
	fieldErrs := FieldErrors{}

	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fieldErrs.add(fe.Field(), messageFor(fe))
			}
		}
	}

	if in.HasVehicle && in.PlateNumber == "" {
		fieldErrs.add("plateNumber", "Plate number is required when vehicle is YES.")
	}

	if in.Role == RoleOthers && in.RoleOther == "" {
		fieldErrs.add("roleOther", "Please specify your role or ministry.")
	}

	if len(fieldErrs) == 0 {
		return nil
	}
	return fieldErrs
}

func messageFor(fe validator.FieldError) string {
	switch fe.Field() {
	case "fullName":
		return "Full name must be at least 3 characters."
	case "contactNumber":
		return "Contact number must be in PH format: 09XXXXXXXXX."
	case "email":
		return "Please enter a valid email address."
	case "church":
		return "Church associated with is required."
	default:
		return "Invalid value."
	}
}
