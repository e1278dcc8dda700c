package action

import "github.com/kbukum/pmnps/validation"

// modePattern matches mode names that can form a script key.
const modePattern = `^[A-Za-z0-9][A-Za-z0-9_.-]*$`

// Member names are not checked here: they are matched against the
// manifests, which reject unknown names with the valid choices.

func (o PlanOptions) validate() error {
	return checked(validation.New().Pattern("mode", o.Mode, modePattern))
}

func (o PublishOptions) validate() error {
	return checked(validation.New().Pattern("otp", o.OTP, `^[0-9]{6,8}$`))
}

// checked keeps a nil *AppError from becoming a non-nil error.
func checked(v *validation.Validator) error {
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
