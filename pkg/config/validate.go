package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/skiffworks/skiff/internal/auth"
)

// Validate checks cfg against the struct validation tags plus the
// cross-field rules the tags cannot express.
func Validate(cfg *Config) error {
	v := validator.New()

	// Report config-file key names (from the mapstructure tags) instead of
	// Go struct field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describeFieldError(fe))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}

	// A configured secret must decode and be long enough to sign with.
	secret, err := cfg.Auth.SecretBytes()
	if err != nil {
		return err
	}
	if secret != nil && len(secret) < auth.SecretLength {
		return fmt.Errorf("auth.token_secret must decode to at least %d bytes, got %d",
			auth.SecretLength, len(secret))
	}

	// Backend token and username/password are alternative credentials.
	if cfg.Backend.Token != "" && cfg.Backend.Username != "" {
		return errors.New("backend.token and backend.username are mutually exclusive")
	}

	return nil
}

// describeFieldError renders one validation failure as config-file
// terminology rather than Go struct paths.
func describeFieldError(fe validator.FieldError) string {
	key := strings.TrimPrefix(fe.Namespace(), "Config.")

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", key)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", key, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", key, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", key, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", key, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", key, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", key, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", key)
	default:
		return fmt.Sprintf("%s failed %s validation", key, fe.Tag())
	}
}
