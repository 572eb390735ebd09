// Package validation holds the pre-submit form rules the gateway enforces
// before a request ever reaches the upstream. Violations come back as the
// same array-shaped error envelope the upstream uses, so the frontend maps
// them onto fields with one code path.
package validation

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/accountgate/accountgate/internal/models"
)

var validate = validator.New()

const (
	msgEmailRequired   = "Email is required"
	msgEmailFormat     = "Email must be a valid email format"
	msgPasswordPolicy  = "Password must contain at least one uppercase letter, one special character, and be at least 7 characters long"
	msgUsernamePolicy  = "Username must be 3-10 characters, can contain uppercase or lowercase letters, numbers, periods, and underscores, and cannot start, end, or have consecutive periods or underscores."
	msgConfirmMismatch = "Confirm Password must match with password"
)

func checkEmail(email string) *models.FieldError {
	if email == "" {
		return &models.FieldError{Property: "email", Message: msgEmailRequired}
	}
	if err := validate.Var(email, "email"); err != nil {
		return &models.FieldError{Property: "email", Message: msgEmailFormat}
	}
	return nil
}

// passwordPolicy: at least 7 characters, one uppercase letter and one
// special (non-word) character. Spelled out because RE2 has no lookaheads.
func passwordPolicy(s string) bool {
	if len(s) < 7 {
		return false
	}
	var upper, special bool
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '_':
			special = true
		}
	}
	return upper && special
}

// usernamePolicy: 3-10 chars of letters, digits, periods and underscores;
// no leading/trailing/consecutive period or underscore.
func usernamePolicy(s string) bool {
	if len(s) < 3 || len(s) > 10 {
		return false
	}
	prev := byte(0)
	for i := 0; i < len(s); i++ {
		c := s[i]
		sep := c == '.' || c == '_'
		alnum := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if !sep && !alnum {
			return false
		}
		if sep {
			if i == 0 || i == len(s)-1 {
				return false
			}
			if prev == '.' || prev == '_' {
				return false
			}
		}
		prev = c
	}
	return true
}

// LoginRequest carries the credential exchange payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() []models.FieldError {
	var errs []models.FieldError
	if fe := checkEmail(r.Email); fe != nil {
		errs = append(errs, *fe)
	}
	if r.Password == "" {
		errs = append(errs, models.FieldError{Property: "password", Message: "Password is required"})
	}
	return errs
}

type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (r RegisterRequest) Validate() []models.FieldError {
	var errs []models.FieldError
	if fe := checkEmail(r.Email); fe != nil {
		errs = append(errs, *fe)
	}
	switch {
	case r.Password == "":
		errs = append(errs, models.FieldError{Property: "password", Message: "Password is required"})
	case !passwordPolicy(r.Password):
		errs = append(errs, models.FieldError{Property: "password", Message: msgPasswordPolicy})
	}
	switch {
	case r.ConfirmPassword == "":
		errs = append(errs, models.FieldError{Property: "confirmPassword", Message: "Confirm Password is required"})
	case r.ConfirmPassword != r.Password:
		errs = append(errs, models.FieldError{Property: "confirmPassword", Message: msgConfirmMismatch})
	}
	return errs
}

// EmailRequest serves both the email-verification and forgot-password forms.
type EmailRequest struct {
	Email string `json:"email"`
}

func (r EmailRequest) Validate() []models.FieldError {
	if fe := checkEmail(r.Email); fe != nil {
		return []models.FieldError{*fe}
	}
	return nil
}

type ResetPasswordRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (r ResetPasswordRequest) Validate() []models.FieldError {
	var errs []models.FieldError
	switch {
	case r.Password == "":
		errs = append(errs, models.FieldError{Property: "password", Message: "Password is required"})
	case !passwordPolicy(r.Password):
		errs = append(errs, models.FieldError{Property: "password", Message: msgPasswordPolicy})
	}
	switch {
	case r.ConfirmPassword == "":
		errs = append(errs, models.FieldError{Property: "confirmPassword", Message: "Confirm Password is required"})
	case r.ConfirmPassword != r.Password:
		errs = append(errs, models.FieldError{Property: "confirmPassword", Message: msgConfirmMismatch})
	}
	return errs
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (r ChangePasswordRequest) Validate() []models.FieldError {
	var errs []models.FieldError
	if r.CurrentPassword == "" {
		errs = append(errs, models.FieldError{Property: "currentPassword", Message: "Current password is required"})
	}
	switch {
	case r.NewPassword == "":
		errs = append(errs, models.FieldError{Property: "newPassword", Message: "New password is required"})
	case !passwordPolicy(r.NewPassword):
		errs = append(errs, models.FieldError{Property: "newPassword", Message: msgPasswordPolicy})
	}
	switch {
	case r.ConfirmPassword == "":
		errs = append(errs, models.FieldError{Property: "confirmPassword", Message: "Confirm password is required"})
	case r.ConfirmPassword != r.NewPassword:
		errs = append(errs, models.FieldError{Property: "confirmPassword", Message: "Confirm Password must match with new password"})
	}
	return errs
}

type UpdateProfileRequest struct {
	Username  string `json:"username"`
	BirthDate string `json:"birthDate"`
}

func (r UpdateProfileRequest) Validate() []models.FieldError {
	var errs []models.FieldError
	switch {
	case r.Username == "":
		errs = append(errs, models.FieldError{Property: "username", Message: "Username is required"})
	case !usernamePolicy(r.Username):
		errs = append(errs, models.FieldError{Property: "username", Message: msgUsernamePolicy})
	}
	switch {
	case r.BirthDate == "":
		errs = append(errs, models.FieldError{Property: "birthDate", Message: "Birth date is required"})
	case !parseableDate(r.BirthDate):
		errs = append(errs, models.FieldError{Property: "birthDate", Message: "Birth Date must be a valid Date"})
	}
	return errs
}

func parseableDate(s string) bool {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
