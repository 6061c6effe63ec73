package validators

import (
	"RxClinic/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// ValidateLogin checks the credentials posted to the login route.
func ValidateLogin(email, password string) error {
	err := validation.Errors{
		"email":    validation.Validate(email, validation.Required, is.EmailFormat),
		"password": validation.Validate(password, validation.Required),
	}.Filter()
	return toValidationError(err, nil)
}

// ValidatePasswordReset checks the reset code and the new password.
func ValidatePasswordReset(email, resetCode, newPassword string) error {
	err := validation.Errors{
		"email":      validation.Validate(email, validation.Required, is.EmailFormat),
		"reset_code": validation.Validate(resetCode, validation.Required, validation.Length(6, 6), is.Digit),
		"password":   ValidatePassword(newPassword),
	}.Filter()
	return toValidationError(err, nil)
}

// ValidateResetRequest checks the email a reset code is requested for.
func ValidateResetRequest(email string) error {
	err := validation.Errors{
		"email": validation.Validate(email, validation.Required, is.EmailFormat),
	}.Filter()
	return toValidationError(err, nil)
}

// ValidateVerification checks a verification decision on a doctor.
func ValidateVerification(status string) error {
	err := validation.Errors{
		"verification_status": validation.Validate(status, validation.Required, in(models.VerificationStatuses)),
	}.Filter()
	return toValidationError(err, nil)
}

// ValidateStatus checks a lifecycle flip against the values allowed for a table.
func ValidateStatus(column, status string, allowed []string) error {
	err := validation.Errors{
		column: validation.Validate(status, validation.Required, in(allowed)),
	}.Filter()
	return toValidationError(err, nil)
}
