package translate

// Translator resolves a message key to shopper-facing text. The engine and
// gate only ever produce keys; rendering concerns stay out of the core.
type Translator interface {
	T(key string) string
}

// Map is a simple lookup-by-key translator. Unknown keys fall through
// unchanged so a missing translation is visible instead of silent.
type Map map[string]string

// T implements Translator.
func (m Map) T(key string) string {
	if text, ok := m[key]; ok {
		return text
	}
	return key
}

// Default returns the built-in English messages.
func Default() Map {
	return Map{
		"error_format":       "Please enter a valid VAT number.",
		"error_invalid":      "This VAT number is not valid.",
		"error_company_name": "The VAT number is not registered to this company name.",
		"error_valid_native": "The VAT number is valid, but domestic orders are always charged VAT.",
		"error_mail":         "Please enter a valid email address.",
		"error_technical":    "Something went wrong while validating your VAT number. Please try again.",
		"error_login":        "Please login or create an account to order tax exempt.",
	}
}
