package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

// newValidator builds the validator applied to the unmarshalled Config.
// Violations are reported under mapstructure key names, so an operator sees
// the key as it appears in config.yaml. The one custom rule is
// readable_file, used on directory.users_file.
func newValidator() (*validator.Validate, ut.Translator, error) {
	enLocale := en.New()
	translator, found := ut.New(enLocale, enLocale).GetTranslator("en")
	if !found {
		return nil, nil, fmt.Errorf("english translator is not registered")
	}

	validate := validator.New()
	if err := enTranslations.RegisterDefaultTranslations(validate, translator); err != nil {
		return nil, nil, fmt.Errorf("register default translations: %w", err)
	}
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("mapstructure"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := validate.RegisterValidation("readable_file", isReadableFile); err != nil {
		return nil, nil, fmt.Errorf("register readable_file validation: %w", err)
	}
	if err := validate.RegisterTranslation("readable_file", translator,
		func(t ut.Translator) error {
			return t.Add("readable_file", "{0} must point to a readable file", true)
		},
		func(t ut.Translator, fieldError validator.FieldError) string {
			message, _ := t.T("readable_file", fieldError.Field())
			return message
		},
	); err != nil {
		return nil, nil, fmt.Errorf("register readable_file translation: %w", err)
	}

	return validate, translator, nil
}

// isReadableFile accepts paths to existing regular files that the process can
// open for reading.
func isReadableFile(fl validator.FieldLevel) bool {
	path := fl.Field().String()

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	_ = file.Close()
	return true
}
