package auth

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError is a client-side input rejection. It is always
// user-visible and always produced before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Form holds raw auth input as typed by the user. It is validated on
// submit and never persisted beyond the session.
type Form struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	OTP             string
}

// Per-flow validation structs. Field order matters: validator reports
// failures in declaration order, giving first-failure-wins semantics.
type signUpForm struct {
	Username        string `validate:"min=4"`
	Email           string `validate:"required,naiveemail"`
	Password        string `validate:"min=6"`
	ConfirmPassword string `validate:"eqfield=Password"`
}

type loginForm struct {
	Email    string `validate:"required,naiveemail"`
	Password string `validate:"min=6"`
}

type forgotPasswordForm struct {
	Email string `validate:"required,naiveemail"`
}

type resetPasswordForm struct {
	Email           string `validate:"required,naiveemail"`
	Password        string `validate:"min=6"`
	ConfirmPassword string `validate:"eqfield=Password"`
	OTP             string `validate:"min=6"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Deliberately naive email check matching the backend's expectations;
	// a full RFC validation would reject addresses the server accepts.
	must(v.RegisterValidation("naiveemail", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return strings.Contains(s, "@") && strings.Contains(s, ".com")
	}))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// messages maps (struct field, failed tag) to the user-visible message.
var messages = map[string]map[string]string{
	"Username": {
		"min": "Username too short",
	},
	"Email": {
		"required":   "Email cannot be empty",
		"naiveemail": "Invalid email",
	},
	"Password": {
		"min": "Password too short",
	},
	"ConfirmPassword": {
		"eqfield": "Password and confirmPassword does NOT match",
	},
	"OTP": {
		"min": "OTP too short",
	},
}

// fieldNames maps struct fields to the wire-facing field identifiers the
// UI highlights.
var fieldNames = map[string]string{
	"Username":        "username",
	"Email":           "email",
	"Password":        "password",
	"ConfirmPassword": "confirmPassword",
	"OTP":             "otp",
}

// firstValidationError converts a validator result into the first
// ValidationError in field order, or nil when the form is valid.
func firstValidationError(err error) *ValidationError {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Field: "form", Message: "Invalid input"}
	}

	fe := verrs[0]
	field := fieldNames[fe.StructField()]
	if field == "" {
		field = strings.ToLower(fe.StructField())
	}
	message := messages[fe.StructField()][fe.Tag()]
	if message == "" {
		message = "Invalid " + field
	}
	return &ValidationError{Field: field, Message: message}
}

func validateSignUp(f Form) *ValidationError {
	return firstValidationError(validate.Struct(signUpForm{
		Username:        f.Username,
		Email:           f.Email,
		Password:        f.Password,
		ConfirmPassword: f.ConfirmPassword,
	}))
}

func validateLogin(f Form) *ValidationError {
	return firstValidationError(validate.Struct(loginForm{
		Email:    f.Email,
		Password: f.Password,
	}))
}

func validateForgotPassword(f Form) *ValidationError {
	return firstValidationError(validate.Struct(forgotPasswordForm{
		Email: f.Email,
	}))
}

func validateResetPassword(f Form) *ValidationError {
	return firstValidationError(validate.Struct(resetPasswordForm{
		Email:           f.Email,
		Password:        f.Password,
		ConfirmPassword: f.ConfirmPassword,
		OTP:             f.OTP,
	}))
}
