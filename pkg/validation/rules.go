package validation

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// registerRules регистрирует теги, которые мы используем в struct tags
func registerRules(v *validator.Validate) error {
	if err := v.RegisterValidation("field_key", isFieldKey); err != nil {
		return err
	}
	if err := v.RegisterValidation("ext_list", isExtensionList); err != nil {
		return err
	}
	if err := v.RegisterValidation("field_type", isKnownFieldType); err != nil {
		return err
	}
	return nil
}

var fieldKeyRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// isFieldKey - внутренние имена полей: snake_case, начинаются с буквы
func isFieldKey(fl validator.FieldLevel) bool {
	return fieldKeyRegex.MatchString(fl.Field().String())
}

var extTokenRegex = regexp.MustCompile(`^\.?[a-zA-Z0-9]+$`)

// isExtensionList - строка вида "jpg,png,pdf" или wildcard "image/*"
func isExtensionList(fl validator.FieldLevel) bool {
	raw := strings.TrimSpace(fl.Field().String())
	if raw == "" {
		return true
	}
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if token == "image/*" {
			continue
		}
		if !extTokenRegex.MatchString(token) {
			return false
		}
	}
	return true
}

var fieldTypeSet = map[string]bool{
	"text": true, "number": true, "date": true, "textarea": true,
	"select": true, "multiselect": true, "radio": true, "checkbox": true,
	"file": true, "image": true, "email": true, "phone": true, "url": true,
}

func isKnownFieldType(fl validator.FieldLevel) bool {
	return fieldTypeSet[fl.Field().String()]
}
