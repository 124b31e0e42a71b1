package checkout

import (
	"regexp"
	"strings"
)

type Address struct {
	FullName     string `json:"full_name"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
	Phone        string `json:"phone"`
}

var (
	postalPattern = regexp.MustCompile(`^\d{5}$`)
	phonePattern  = regexp.MustCompile(`^[+]?[0-9\s-]{8,20}$`)
)

// ValidateAddress returns one human-readable message per failing field, or
// nil when the address is complete.
func ValidateAddress(a Address) []string {
	var errs []string

	if len(strings.TrimSpace(a.FullName)) < 2 {
		errs = append(errs, "full name is required (minimum 2 characters)")
	}
	if len(strings.TrimSpace(a.AddressLine1)) < 5 {
		errs = append(errs, "address line is required (minimum 5 characters)")
	}
	if len(strings.TrimSpace(a.City)) < 2 {
		errs = append(errs, "city is required")
	}
	if !postalPattern.MatchString(a.PostalCode) {
		errs = append(errs, "postal code must be 5 digits")
	}
	if len(strings.TrimSpace(a.Country)) < 2 {
		errs = append(errs, "country is required")
	}
	if !phonePattern.MatchString(a.Phone) {
		errs = append(errs, "phone number is invalid")
	}
	return errs
}

// FormatAddress renders an address as postal-label lines.
func FormatAddress(a Address) string {
	var b strings.Builder
	b.WriteString(a.FullName)
	b.WriteString("\n")
	b.WriteString(a.AddressLine1)
	if a.AddressLine2 != "" {
		b.WriteString("\n")
		b.WriteString(a.AddressLine2)
	}
	b.WriteString("\n")
	b.WriteString(a.PostalCode)
	b.WriteString(" ")
	b.WriteString(a.City)
	b.WriteString("\n")
	b.WriteString(a.Country)
	if a.Phone != "" {
		b.WriteString("\nTél: ")
		b.WriteString(a.Phone)
	}
	return b.String()
}
