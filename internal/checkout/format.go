package checkout

import (
	"regexp"
	"strings"
)

// vatNumberPattern is a whitelist of the VAT formats the shop serves:
// Belgium (BE0 + 9 digits), the Netherlands (NL + 9 digits + B + 2 digits)
// and Germany (DE + 9 digits). Well-formed numbers from any other country
// are rejected at this layer.
var vatNumberPattern = regexp.MustCompile(`(?i)^((BE0)[0-9]{9}|(NL)[0-9]{9}B[0-9]{2}|(DE)[0-9]{9})$`)

var emailPattern = regexp.MustCompile(`(?i)^[\w\-.]+@([\w-]+\.)+[\w-]{2,4}$`)

var companyNameNoise = regexp.MustCompile(`[^\w\s]`)

// MatchesVATFormat reports whether text matches one of the supported
// per-country VAT number formats.
func MatchesVATFormat(text string) bool {
	return vatNumberPattern.MatchString(text)
}

// MatchesEmailFormat reports whether text looks like an email address.
// The empty string passes: the invoice email field is optional.
func MatchesEmailFormat(text string) bool {
	if text == "" {
		return true
	}
	return emailPattern.MatchString(text)
}

// CompanyNamesMatch compares the shipping company name against the name the
// VAT registry returned. Both names are lowercased and stripped of
// punctuation, then compared character by character; at least 90% of the
// longer name must match positionally. This tolerates suffix noise like
// "B.V." vs "bv" but not transpositions, which is acceptable for the
// registry data it runs against.
func CompanyNamesMatch(shippingCompany, registryCompany string) bool {
	a := normalizeCompanyName(shippingCompany)
	b := normalizeCompanyName(registryCompany)

	maxLen := len(a)
	minLen := len(b)
	if len(b) > len(a) {
		maxLen, minLen = len(b), len(a)
	}

	matches := 0
	for i := 0; i < minLen; i++ {
		if a[i] == b[i] {
			matches++
		}
	}
	return float64(matches) >= 0.9*float64(maxLen)
}

func normalizeCompanyName(name string) string {
	return companyNameNoise.ReplaceAllString(strings.ToLower(name), "")
}
