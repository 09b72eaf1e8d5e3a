package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/xavierca1/ligue-funnel/internal/entity"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors lista todos os campos inválidos de uma entrada.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Field+" ("+e.Message+")")
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Fields retorna os nomes dos campos inválidos, na ordem da struct.
func (v ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(v))
	for _, e := range v {
		fields = append(fields, e.Field)
	}
	return fields
}

var validate = NewValidator()

// NewValidator registra as regras do funil (br_phone, password) e usa a tag json
// como nome do campo.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("br_phone", func(fl validator.FieldLevel) bool {
		return entity.IsValidBrazilianPhone(fl.Field().String())
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return entity.IsValidPassword(fl.Field().String())
	})
	return v
}

// Espaços em volta do email vêm de copiar e colar; removidos antes da tag email.
func (in *CreateLeadInput) normalize()     { in.Email = strings.TrimSpace(in.Email) }
func (in *CreateUserInput) normalize()     { in.Email = strings.TrimSpace(in.Email) }
func (in *IdentificationInput) normalize() { in.Email = strings.TrimSpace(in.Email) }

func (in *UpdateUserInput) normalize() {
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		in.Email = &email
	}
}

func validateStruct(input any) ValidationErrors {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationErrors{{Field: "input", Message: "is invalid"}}
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{Field: fe.Field(), Message: validationMessage(fe)})
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "is invalid"
	case "br_phone":
		return "must be a valid Brazilian phone number"
	case "password":
		return fmt.Sprintf("must have %d-%d characters with upper case, lower case and a digit",
			entity.PasswordMinLength, entity.PasswordMaxLength)
	case "min":
		return fmt.Sprintf("must have at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}
