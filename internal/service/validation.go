package service

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/student-marks-api/pkg/errors"
)

var academicYearPattern = regexp.MustCompile(`^\d{4}-\d{4}$`)

// NewValidator builds the shared request validator: field names come from
// json tags and the academic_year format rule is registered.
func NewValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("academic_year", func(fl validator.FieldLevel) bool {
		return academicYearPattern.MatchString(fl.Field().String())
	})

	return v
}

// validationError turns validator output into a 400 carrying every violated
// field, not just the first.
func validationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}

	fields := make([]appErrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, appErrors.FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return appErrors.WithFields(appErrors.ErrValidation, fields)
}

// constraintError builds the 400 returned when the storage engine rejects a
// write, attributed to the offending field.
func constraintError(field, message string) error {
	return appErrors.WithFields(
		appErrors.Clone(appErrors.ErrConstraint, message),
		[]appErrors.FieldError{{Field: field, Message: message}},
	)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "email":
		return "Invalid email address"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), strings.Join(strings.Fields(fe.Param()), ", "))
	case "uuid":
		return fmt.Sprintf("Invalid %s", fe.Field())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", fe.Field(), fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a date in format YYYY-MM-DD", fe.Field())
	case "academic_year":
		return "Academic year must be in format YYYY-YYYY"
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
