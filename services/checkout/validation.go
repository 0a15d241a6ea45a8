package checkout

import (
	"errors"
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/pixshop/storefront/services/checkoutapi"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	nonDigits = regexp.MustCompile(`[^0-9]`)
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
			return isValidTaxID(fl.Field().String())
		})
		_ = validate.RegisterValidation("brphone", func(fl validator.FieldLevel) bool {
			digits := nonDigits.ReplaceAllString(fl.Field().String(), "")
			return len(digits) == 10 || len(digits) == 11
		})
	})
	return validate
}

type identityRules struct {
	FullName string `validate:"required"`
	Email    string `validate:"required,email"`
	TaxID    string `validate:"required,cpf"`
	Phone    string `validate:"required,brphone"`
}

// validateIdentity evaluates all four rules together: every failing field
// gets its own entry so the shopper sees all problems at once.
func validateIdentity(identity checkoutapi.CustomerIdentity) FieldErrors {
	fieldErrors := FieldErrors{}

	err := getValidator().Struct(identityRules{
		FullName: identity.FullName,
		Email:    identity.Email,
		TaxID:    identity.TaxID,
		Phone:    identity.Phone,
	})
	if err == nil {
		return fieldErrors
	}

	validationErrors := validator.ValidationErrors{}
	if !errors.As(err, &validationErrors) {
		fieldErrors["fullName"] = "Dados inválidos"
		return fieldErrors
	}

	for _, fieldError := range validationErrors {
		switch fieldError.StructField() {
		case "FullName":
			fieldErrors["fullName"] = "Nome é obrigatório"
		case "Email":
			fieldErrors["email"] = "Email inválido"
		case "TaxID":
			fieldErrors["taxId"] = "CPF inválido"
		case "Phone":
			fieldErrors["phone"] = "Telefone inválido"
		}
	}

	return fieldErrors
}

func validateDelivery(address checkoutapi.DeliveryAddress) FieldErrors {
	fieldErrors := FieldErrors{}

	if address.PostalCode == "" {
		fieldErrors["postalCode"] = "CEP é obrigatório"
	}
	if address.HouseNumber == "" {
		fieldErrors["houseNumber"] = "Número é obrigatório"
	}
	if !address.Resolved {
		fieldErrors["postalCode"] = "CEP não encontrado"
	}

	return fieldErrors
}

// isValidTaxID implements the two-pass weighted modulo-11 check over an
// 11-digit sequence. Sequences of 11 identical digits pass the arithmetic
// but are not real tax ids, so they are rejected outright.
func isValidTaxID(value string) bool {
	digits := nonDigits.ReplaceAllString(value, "")
	if len(digits) != 11 {
		return false
	}

	allSame := true
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return false
	}

	return int(digits[9]-'0') == taxIDCheckDigit(digits, 9) &&
		int(digits[10]-'0') == taxIDCheckDigit(digits, 10)
}

func taxIDCheckDigit(digits string, position int) int {
	sum := 0
	for i := 0; i < position; i++ {
		sum += int(digits[i]-'0') * (position + 1 - i)
	}
	digit := 11 - sum%11
	if digit >= 10 {
		return 0
	}
	return digit
}
