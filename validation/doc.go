// Package validation checks configuration structs and command options.
//
// Struct tag validation uses go-playground/validator and is applied to the
// loaded workspace config:
//
//	type InstallConfig struct {
//	    Retries int `json:"retries" validate:"gte=0,lte=10"`
//	}
//	err := validation.Validate(cfg)
//
// Programmatic validation collects errors for CLI options:
//
//	v := validation.New().
//	    Required("workspace", name).
//	    Pattern("mode", mode, `^[a-z0-9-]+$`)
//	if appErr := v.Validate(); appErr != nil {
//	    return appErr
//	}
package validation
