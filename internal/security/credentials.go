package security

import (
	"regexp"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	MsgMissingSignupFields = "You must provide an email, password and name"
	MsgInvalidEmail        = "Provide a valid email address."
	MsgWeakPassword        = "Password must have at least 6 characters and contain at least one number, one lowercase and one uppercase letter."

	minPasswordLength = 6
)

// ValidationError carries a message that is safe to show to the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`)

var credentials = newCredentialsValidator()

func newCredentialsValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// registration only fails on an empty tag name, which these are not
	_ = v.RegisterValidation("signup_email", func(fl validator.FieldLevel) bool {
		return emailShape.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("strong_password", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})

	return v
}

// ValidateSignup checks signup input and stops at the first failure:
// emptiness, then email shape, then password strength.
func ValidateSignup(email, password, name string) error {
	for _, field := range []string{email, password, name} {
		if credentials.Var(field, "required") != nil {
			return &ValidationError{Message: MsgMissingSignupFields}
		}
	}

	if credentials.Var(email, "signup_email") != nil {
		return &ValidationError{Message: MsgInvalidEmail}
	}

	if credentials.Var(password, "strong_password") != nil {
		return &ValidationError{Message: MsgWeakPassword}
	}

	return nil
}

// IsStrongPassword: at least 6 characters with an ASCII digit, lowercase and uppercase letter.
func IsStrongPassword(p string) bool {
	if utf8.RuneCountInString(p) < minPasswordLength {
		return false
	}

	var digit, lower, upper bool

	for i := 0; i < len(p); i++ {
		switch c := p[i]; {
		case c >= '0' && c <= '9':
			digit = true
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= 'A' && c <= 'Z':
			upper = true
		}
	}

	return digit && lower && upper
}
